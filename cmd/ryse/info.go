package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the GATT layout of the cover",
		Args:  cobra.NoArgs,
		RunE:  runInfo,
	}
}

func runInfo(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := prepare(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	sess, err := pairSession(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer sess.Unpair()

	info := sess.DeviceInfo(ctx)
	if info == nil {
		return ErrNoInfo
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(info)
}
