// Lanscan discovers computers running a LAN sync client on the local network.
//
// It passively listens on UDP port 17500 for the discovery announcements sync
// clients broadcast, for a fixed window (60 seconds by default), and prints
// every distinct client it heard. Nothing is ever transmitted.
//
// Usage:
//
//	lanscan [command] [flags]
//
// Running without a command starts a scan.
// See 'lanscan --help' for available commands.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/lanscan/internal/config"
	"github.com/muurk/lanscan/internal/logging"
	"github.com/muurk/lanscan/internal/version"
)

// reportedError marks failures already shown to the user
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

func main() {
	err := rootCmd.Execute()
	if err != nil {
		logging.Error("Command failed", zap.Error(err))
	}
	logging.Sync()
	if err != nil {
		var shown reportedError
		if !errors.As(err, &shown) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var (
	logLevel   string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "lanscan",
	Short: "Discover LAN sync clients on the local network",
	Long: `Discovers computers running a LAN sync client on your local network.

Lanscan opens UDP port 17500 and listens for the discovery announcements
sync clients broadcast. It never sends anything. After the listening window
it lists every distinct client heard, with its address, host name and the
number of shared folders it announced.

If no command is specified, a scan starts.`,
	Version:       version.Version,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Silent unless --log-level or LANSCAN_LOG_LEVEL is set
		return logging.Initialize(logLevel)
	},
	RunE: runScan,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); logs go to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is the OS config directory)")

	addScanFlags(rootCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the --config file or the default one
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lanscan %s\n", version.Full())
		fmt.Fprintf(cmd.OutOrStdout(), "built with %s\n", version.Platform())
	},
}
