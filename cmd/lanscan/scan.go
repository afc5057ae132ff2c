package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/lanscan/internal/config"
	"github.com/muurk/lanscan/internal/discovery"
	"github.com/muurk/lanscan/internal/logging"
	"github.com/muurk/lanscan/internal/report"
	"github.com/muurk/lanscan/internal/resolve"
	"github.com/muurk/lanscan/internal/ui"
)

// Scan flags, shared by the root command and 'scan'
var (
	flagTimeout   int
	flagPort      int
	flagFormat    string
	flagNoResolve bool
	flagDNSServer string
	flagYes       bool
)

// Messages shown when a scan fails
const (
	addrInUseMessage = "The required network resource might already be in use. Are you " +
		"running a LAN sync client on this computer? If so, please exit it and re-run the tool."
	genericMessage = "The discovery process wasn't complete because an error happened. " +
		"Please try again, and if the problem persists, report it with the details below."
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Listen for LAN sync announcements",
	Long: `Listen for LAN sync discovery announcements on the local network.

The scan binds UDP port 17500 on IPv4 and, where available, IPv6, then
listens for the configured window. Clients are identified by the host
identifier in their announcements; the first announcement heard from each
client is the one reported.

If your network spans several subnets, run the scan once from each of them.`,
	Example: `  # Scan for 60 seconds (default)
  lanscan scan

  # Quick scan without the confirmation prompt
  lanscan scan --timeout 15 --yes

  # Machine-readable output
  lanscan scan --yes --format json > peers.json

  # Resolve names against the router instead of the system resolver
  lanscan scan --dns-server 192.168.1.1`,
	RunE: runScan,
}

func init() {
	addScanFlags(scanCmd)
}

func addScanFlags(cmd *cobra.Command) {
	defaults := config.DefaultPreferences()
	cmd.Flags().IntVar(&flagTimeout, "timeout", defaults.TimeoutSeconds, "Listening window in seconds")
	cmd.Flags().IntVar(&flagPort, "port", defaults.Port, "UDP port to listen on")
	addOutputFlags(cmd)
	cmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Start without asking for confirmation")
}

// addOutputFlags registers the flags shared with 'replay'
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagFormat, "format", config.FormatTable, "Output format (table, json, yaml)")
	cmd.Flags().BoolVar(&flagNoResolve, "no-resolve", false, "Do not look up host names")
	cmd.Flags().StringVar(&flagDNSServer, "dns-server", "", "DNS server for reverse lookups (host[:port])")
}

// effectivePreferences merges the config file with explicitly set flags
func effectivePreferences(cmd *cobra.Command) (*config.Preferences, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	prefs := *cfg.Preferences
	applyFlags(cmd, &prefs)

	if err := prefs.Validate(); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// applyFlags overrides preferences with flags the user actually set
func applyFlags(cmd *cobra.Command, prefs *config.Preferences) {
	flags := cmd.Flags()
	if flags.Changed("timeout") {
		prefs.TimeoutSeconds = flagTimeout
	}
	if flags.Changed("port") {
		prefs.Port = flagPort
	}
	if flags.Changed("format") {
		prefs.Format = flagFormat
	}
	if flags.Changed("no-resolve") {
		prefs.ResolveNames = !flagNoResolve
	}
	if flags.Changed("dns-server") {
		prefs.DNSServer = flagDNSServer
	}
	if flags.Changed("yes") {
		prefs.AssumeYes = flagYes
	}
}

// newResolver picks the host name strategy for prefs
func newResolver(prefs *config.Preferences) discovery.HostResolver {
	switch {
	case !prefs.ResolveNames:
		return resolve.Static{}
	case prefs.DNSServer != "":
		return resolve.NewDNS(prefs.DNSServer, resolve.DefaultTimeout)
	default:
		return resolve.NewSystem()
	}
}

// progressOutput keeps stdout clean for structured formats
func progressOutput(format string) *os.File {
	if format == config.FormatTable {
		return os.Stdout
	}
	return os.Stderr
}

func runScan(cmd *cobra.Command, args []string) error {
	// Suppress usage on execution errors (we're past argument parsing)
	cmd.SilenceUsage = true

	prefs, err := effectivePreferences(cmd)
	if err != nil {
		return err
	}

	progress := progressOutput(prefs.Format)
	runner := ui.NewScanRunner(ui.ScanRunnerConfig{
		Command: cmd.CommandPath(),
		Params:  scanParams(prefs),
		Output:  progress,
		Live:    ui.IsTerminal(progress) && ui.IsTerminal(os.Stdin),
	})

	runner.PrintHeader()
	if !prefs.AssumeYes && ui.IsTerminal(os.Stdin) {
		fmt.Fprintln(progress, ui.RenderWelcome(prefs.Port, ui.GetTerminalWidth()))
		fmt.Fprintln(progress)
		ok, err := ui.Confirm(os.Stdin, progress, "Would you like to start the discovery process now?")
		if err != nil || !ok {
			return err
		}
	}

	scanner := discovery.NewScanner()
	scanner.Timeout = prefs.Timeout()
	scanner.Port = prefs.Port
	scanner.Resolver = newResolver(prefs)
	scanner.Logger = logging.GetLogger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	result, err := runner.Run(ctx, scanner)
	if err != nil {
		showScanFailure(runner, err)
		return reportedError{err}
	}

	return report.Write(os.Stdout, prefs.Format, result)
}

func scanParams(prefs *config.Preferences) []ui.Param {
	names := "system resolver"
	switch {
	case !prefs.ResolveNames:
		names = "disabled"
	case prefs.DNSServer != "":
		names = prefs.DNSServer
	}
	return []ui.Param{
		{Key: "Port", Value: "UDP " + strconv.Itoa(prefs.Port)},
		{Key: "Window", Value: prefs.Timeout().String()},
		{Key: "Names", Value: names},
	}
}

// failureText returns the title and explanation for a scan error
func failureText(err error) (title, message string) {
	switch {
	case discovery.IsAddressInUse(err):
		return "Discovery port in use", addrInUseMessage
	case errors.Is(err, context.Canceled):
		return "Discovery interrupted", "The scan was stopped before the listening window ended."
	default:
		return "Discovery failed", genericMessage
	}
}

func showScanFailure(runner *ui.ScanRunner, err error) {
	title, message := failureText(err)
	runner.PrintMessage(message)
	runner.PrintFailure(title, err, discovery.Troubleshooting(err))
}
