package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srg/ryse/pkg/config"
)

// configureLogger creates a logger with the appropriate log level based on flags.
// --log-level takes precedence over --verbose, which takes precedence over the
// log_level of an explicitly loaded config file. Otherwise logging is silent.
func configureLogger(cmd *cobra.Command, cfg *config.Config) (*logrus.Logger, error) {
	// Default to panic level (essentially silent for normal operations)
	logLevel := logrus.PanicLevel

	logLevelStr, _ := cmd.Flags().GetString("log-level")
	verbose, _ := cmd.Flags().GetBool("verbose")
	configPath, _ := cmd.Flags().GetString("config")

	switch {
	case logLevelStr != "":
		switch logLevelStr {
		case "debug":
			logLevel = logrus.DebugLevel
		case "info":
			logLevel = logrus.InfoLevel
		case "warn":
			logLevel = logrus.WarnLevel
		case "error":
			logLevel = logrus.ErrorLevel
		default:
			return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", logLevelStr)
		}
	case verbose:
		logLevel = logrus.DebugLevel
	case configPath != "" && cfg != nil:
		logLevel = cfg.Level()
	}

	if cfg == nil {
		cfg = config.Default()
	}
	logger := cfg.NewLogger()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(logLevel)

	return logger, nil
}
