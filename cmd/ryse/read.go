package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srg/ryse/internal/frame"
)

func newReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read",
		Short: "Read and decode the current frame",
		Long: `Pairs with the cover, reads the notify characteristic once and prints
the raw frame in hex together with its classification.

Examples:
  ryse read --address AA:BB:CC:DD:EE:FF --notify-uuid 2a19
  ryse read --config ryse.yaml`,
		Args: cobra.NoArgs,
		RunE: runRead,
	}
}

func runRead(cmd *cobra.Command, _ []string) error {
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

	data := sess.ReadData(ctx)
	if data == nil {
		return ErrReadFailed
	}

	out := cmd.OutOrStdout()
	result := frame.Classify(data)
	fmt.Fprintf(out, "Data: %s\n", hex.EncodeToString(data))
	if result.Kind == frame.PositionUpdate {
		fmt.Fprintf(out, "Frame: %s %d\n", result.Kind, result.Position)
	} else {
		fmt.Fprintf(out, "Frame: %s\n", result.Kind)
	}
	return nil
}
