package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/srg/ryse/internal/device"
	"github.com/srg/ryse/internal/devicefactory"
)

func newScanCmd() *cobra.Command {
	var matchesOnly bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan for BLE devices",
		Long: `Scans for nearby BLE peripherals and lists them in discovery order.

Peripherals whose advertised name contains the configured name fragment
(device.name_match, case-insensitive) are marked as covers; the first of
them is the one "monitor" pairs with when no address is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd, matchesOnly)
		},
	}
	cmd.Flags().BoolVar(&matchesOnly, "matches", false, "Only list peripherals matching the name fragment")
	return cmd
}

func runScan(cmd *cobra.Command, matchesOnly bool) error {
	cfg, logger, err := prepare(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	transport := devicefactory.NewTransport(cfg.Device.ScanTimeout, logger)
	ads, err := transport.Discover(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scan failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(ads) == 0 {
		fmt.Fprintln(out, "No devices discovered")
		return nil
	}

	match := color.New(color.FgGreen, color.Bold)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tADDRESS\tRSSI\tCOVER")
	fmt.Fprintln(w, strings.Repeat("-", 60))

	shown := 0
	for _, adv := range ads {
		isCover := device.NameMatches(adv.LocalName(), cfg.Device.NameMatch)
		if matchesOnly && !isCover {
			continue
		}

		name := adv.LocalName()
		if name == "" {
			name = "(unnamed)"
		}
		if len(name) > 24 {
			name = name[:21] + "..."
		}

		mark := ""
		if isCover {
			mark = match.Sprint("yes")
		}
		fmt.Fprintf(w, "%s\t%s\t%d dBm\t%s\n", name, adv.Addr(), adv.RSSI(), mark)
		shown++
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if shown == 0 {
		fmt.Fprintf(out, "No devices matching %q\n", cfg.Device.NameMatch)
	}
	return nil
}
