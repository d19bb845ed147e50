package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// formatVersion adds 'v' prefix if version starts with a digit
func formatVersion(ver string) string {
	if len(ver) > 0 && unicode.IsDigit(rune(ver[0])) {
		return "v" + ver
	}
	return ver
}

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ryse",
		Short: "BLE motorized cover driver",
		Long: `Drives a BLE motorized window cover:

- Scan for nearby covers and pair by address or advertised name
- Read and decode position reports
- Write raw command frames
- Dump the GATT service layout
- Monitor position changes and bridge them to MQTT`,
		Version: formatVersion(version),
		// main() prints clean errors
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "Path to YAML configuration file")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("verbose", false, "Enable debug logging")
	root.PersistentFlags().String("address", "", "Device address; scan by name when empty")
	root.PersistentFlags().String("notify-uuid", "", "Notify characteristic UUID")
	root.PersistentFlags().String("write-uuid", "", "Write characteristic UUID")

	root.SetVersionTemplate(fmt.Sprintf("ryse {{.Version}} (commit %s, built %s)\n", commit, date))

	root.AddCommand(newScanCmd())
	root.AddCommand(newReadCmd())
	root.AddCommand(newWriteCmd())
	root.AddCommand(newInfoCmd())
	root.AddCommand(newMonitorCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Ctrl+C is a normal exit, not an error - exit silently
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", FormatUserError(err))
		os.Exit(1)
	}
}
