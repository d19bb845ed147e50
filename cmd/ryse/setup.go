package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srg/ryse/internal/device"
	"github.com/srg/ryse/internal/devicefactory"
	"github.com/srg/ryse/internal/session"
	"github.com/srg/ryse/pkg/config"
)

// loadConfig reads --config if given, then applies the device flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if v, _ := cmd.Flags().GetString("address"); v != "" {
		cfg.Device.Address = v
	}
	if v, _ := cmd.Flags().GetString("notify-uuid"); v != "" {
		cfg.Device.NotifyUUID = v
	}
	if v, _ := cmd.Flags().GetString("write-uuid"); v != "" {
		cfg.Device.WriteUUID = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// prepare loads configuration and logger; runtime errors after this point
// do not print usage.
func prepare(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger, err := configureLogger(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true
	return cfg, logger, nil
}

func newSession(cfg *config.Config, logger logrus.FieldLogger) *session.Session {
	transport := devicefactory.NewTransport(cfg.Device.ScanTimeout, logger)
	return session.New(transport, device.Identity{
		Address:    cfg.Device.Address,
		NotifyUUID: device.NormalizeUUID(cfg.Device.NotifyUUID),
		WriteUUID:  device.NormalizeUUID(cfg.Device.WriteUUID),
	}, logger, &session.Options{
		ConnectTimeout: cfg.Device.ConnectTimeout,
		NameMatch:      cfg.Device.NameMatch,
	})
}

// pairSession creates a session, registers onPosition (may be nil) and pairs.
// The caller must Unpair.
func pairSession(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger, onPosition session.PositionCallback) (*session.Session, error) {
	if cfg.Device.NotifyUUID == "" {
		return nil, fmt.Errorf("notify UUID required: set device.notify_uuid or --notify-uuid")
	}

	sess := newSession(cfg, logger)
	sess.OnPositionUpdate(onPosition)
	if err := connect(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// connect pairs by address when one is configured, otherwise by name.
func connect(ctx context.Context, sess *session.Session) error {
	var ok bool
	if sess.Identity().Address != "" {
		ok = sess.Pair(ctx)
	} else {
		ok = sess.ScanAndPair(ctx)
	}

	if err := ctx.Err(); err != nil {
		sess.Unpair()
		return err
	}
	if !ok {
		return ErrPairFailed
	}
	return nil
}
