package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srg/ryse/internal/cover"
	"github.com/srg/ryse/internal/mqtt"
	"github.com/srg/ryse/pkg/config"
)

// linkPollInterval bounds how quickly monitor notices a dropped link.
var linkPollInterval = 500 * time.Millisecond

// mqttBroker is what monitor needs from an MQTT connection.
type mqttBroker interface {
	mqtt.Broker
	Close() error
}

// connectBroker is overridden in tests.
var connectBroker = func(cfg config.MQTTConfig, device string, logger logrus.FieldLogger) (mqttBroker, error) {
	return mqtt.Connect(cfg, device, logger)
}

func newMonitorCmd() *cobra.Command {
	var withMQTT bool

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Follow cover position changes",
		Long: `Pairs with the cover (by address, or by scanning for the configured
name fragment) and prints every position report until Ctrl+C or until the
connection drops. The connection is not re-established automatically.

With MQTT enabled (mqtt.enabled or --mqtt) the cover state is also published
to <prefix>/<device>/state and frames sent to <prefix>/<device>/command are
written to the cover.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMonitor(cmd, withMQTT)
		},
	}
	cmd.Flags().BoolVar(&withMQTT, "mqtt", false, "Bridge the cover to MQTT (overrides mqtt.enabled)")
	return cmd
}

func runMonitor(cmd *cobra.Command, withMQTT bool) error {
	cfg, logger, err := prepare(cmd)
	if err != nil {
		return err
	}
	if withMQTT {
		cfg.MQTT.Enabled = true
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	out := cmd.OutOrStdout()
	c := cover.New(cfg.Device.Name, logger)
	highlight := color.New(color.FgCyan)
	c.Subscribe("cli", func(st cover.State) {
		fmt.Fprintf(out, "%s position=%d state=%s\n",
			st.UpdatedAt.Format(time.RFC3339), st.Position, highlight.Sprint(st.Condition))
	})

	sess, err := pairSession(ctx, cfg, logger, c.OnPositionUpdate)
	if err != nil {
		return err
	}
	defer sess.Unpair()

	if cfg.MQTT.Enabled {
		broker, err := connectBroker(cfg.MQTT, cfg.Device.Name, logger)
		if err != nil {
			return err
		}
		defer broker.Close()

		bridge := mqtt.NewBridge(broker, c, sess, logger)
		if err := bridge.Start(); err != nil {
			return err
		}
		defer bridge.Stop()
	}

	fmt.Fprintf(out, "Monitoring %s (%s), press Ctrl+C to stop\n", cfg.Device.Name, sess.Identity().Address)
	return waitForDisconnect(ctx, sess)
}

type connectedChecker interface {
	IsConnected() bool
}

// waitForDisconnect blocks until ctx is done or the link is gone.
func waitForDisconnect(ctx context.Context, sess connectedChecker) error {
	ticker := time.NewTicker(linkPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !sess.IsConnected() {
				return ErrConnectionLost
			}
		}
	}
}
