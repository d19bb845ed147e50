package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srg/ryse/internal/frame"
)

func newWriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write <hex>",
		Short: "Write a raw frame to the cover",
		Long: `Pairs with the cover and writes a raw frame to the write characteristic.
The frame is hex; spaces, colons and a 0x prefix are accepted.

Examples:
  ryse write "f5 03 01 01 32" --config ryse.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: runWrite,
	}
}

func runWrite(cmd *cobra.Command, args []string) error {
	data, err := frame.ParseHex(args[0])
	if err != nil {
		return fmt.Errorf("failed to parse data: %w", err)
	}

	cfg, logger, err := prepare(cmd)
	if err != nil {
		return err
	}
	if cfg.Device.WriteUUID == "" {
		return fmt.Errorf("write UUID required: set device.write_uuid or --write-uuid")
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	sess, err := pairSession(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer sess.Unpair()

	if err := sess.Write(ctx, data); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sent %d bytes\n", len(data))
	return nil
}
