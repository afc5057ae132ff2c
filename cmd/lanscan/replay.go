package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/lanscan/internal/capture"
	"github.com/muurk/lanscan/internal/logging"
	"github.com/muurk/lanscan/internal/report"
	"github.com/muurk/lanscan/internal/ui"
)

var flagWindow time.Duration

var replayCmd = &cobra.Command{
	Use:   "replay <capture.pcap>",
	Short: "Discover LAN sync clients from a packet capture",
	Long: `Run discovery offline against a pcap or pcapng capture.

Announcements are decoded and de-duplicated exactly like a live scan, using
the capture timestamps. Record a capture with, for example:

  tcpdump -i eth0 -w lan.pcap udp port 17500`,
	Example: `  # Everything in the capture
  lanscan replay lan.pcap

  # Only the first minute, as a live scan would see it
  lanscan replay lan.pcapng --window 60s --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().DurationVar(&flagWindow, "window", 0, "Only count announcements within this long of the first packet (0 = "+durationFlagValue(0)+")")
	replayCmd.Flags().IntVar(&flagPort, "port", 17500, "Discovery port to filter on")
	addOutputFlags(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	prefs, err := effectivePreferences(cmd)
	if err != nil {
		return err
	}

	replayer := capture.NewReplayer()
	replayer.Port = prefs.Port
	replayer.Window = flagWindow
	replayer.Resolver = newResolver(prefs)
	replayer.Logger = logging.GetLogger()

	result, stats, err := replayer.ReplayFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	printStats(progressOutput(prefs.Format),
		"Read %d packets: %d datagrams to port %d, %d announcements (%d after the %s window)",
		stats.Packets, stats.Datagrams, prefs.Port, stats.Beacons, stats.Late, durationFlagValue(flagWindow))

	return report.Write(os.Stdout, prefs.Format, result)
}

// printStats writes a one-line summary to w
func printStats(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, ui.MutedStyle.Render(fmt.Sprintf(format, args...)))
}

// durationFlagValue formats d for help output
func durationFlagValue(d time.Duration) string {
	if d == 0 {
		return "whole capture"
	}
	return d.String()
}
