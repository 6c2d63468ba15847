// Package main implements the trelloimport CLI.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"trelloimport/internal/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var logLevel string

var rootCmd = &cobra.Command{
	Use:          "trelloimport",
	Short:        "Convert Trello board exports into boards and blocks",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}

// newLogger writes text logs to the command's stderr so stdout stays
// machine readable.
func newLogger(cmd *cobra.Command) *slog.Logger {
	return logger.New(cmd.ErrOrStderr(), logLevel, false)
}
