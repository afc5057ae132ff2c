package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/lanscan/internal/discovery"
)

// ScanRunnerConfig holds configuration for a scan's terminal output
type ScanRunnerConfig struct {
	Title   string    // Banner title (default "LAN Sync Discovery")
	Command string    // e.g., "lanscan scan"
	Params  []Param   // Parameters to display in the header
	Output  io.Writer // Output writer (default: os.Stdout)
	Input   io.Reader // Keyboard input for the live view (default: os.Stdin)
	Live    bool      // Use the Bubble Tea live view instead of a plain line
}

// ScanRunner orchestrates header, live countdown and teardown around a
// discovery.Scanner run
type ScanRunner struct {
	config ScanRunnerConfig
	header *Header
	out    io.Writer
	width  int
}

// NewScanRunner creates a new runner
func NewScanRunner(config ScanRunnerConfig) *ScanRunner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Input == nil {
		config.Input = os.Stdin
	}
	if config.Title == "" {
		config.Title = "LAN Sync Discovery"
	}

	width := GetTerminalWidth()
	return &ScanRunner{
		config: config,
		header: NewHeader(config.Title, config.Command, config.Params).SetWidth(width),
		out:    config.Output,
		width:  width,
	}
}

// PrintHeader prints the banner
func (r *ScanRunner) PrintHeader() {
	_, _ = fmt.Fprintln(r.out, r.header.Render())
	_, _ = fmt.Fprintln(r.out)
}

// Run executes the scan while showing progress. The scanner's Reporter is
// replaced for the duration of the run.
func (r *ScanRunner) Run(ctx context.Context, scanner *discovery.Scanner) (*discovery.ResultSet, error) {
	if !r.config.Live {
		return r.runPlain(ctx, scanner)
	}
	return r.runLive(ctx, scanner)
}

func (r *ScanRunner) runPlain(ctx context.Context, scanner *discovery.Scanner) (*discovery.ResultSet, error) {
	lines := NewLineReporter(r.out)
	scanner.Reporter = lines

	result, err := scanner.Scan(ctx)
	lines.Clear()
	return result, err
}

func (r *ScanRunner) runLive(ctx context.Context, scanner *discovery.Scanner) (*discovery.ResultSet, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := tea.NewProgram(
		NewScanView(scanner.Timeout, cancel),
		tea.WithOutput(r.out),
		tea.WithInput(r.config.Input),
	)
	relay := newProgressRelay()
	scanner.Reporter = relay
	go relay.forward(ctx, prog.Send)

	outcome := make(chan scanDoneMsg, 1)
	go func() {
		result, err := scanner.Scan(ctx)
		msg := scanDoneMsg{result: result, err: err}
		outcome <- msg
		prog.Send(msg)
	}()

	if _, err := prog.Run(); err != nil {
		cancel()
		<-outcome
		return nil, fmt.Errorf("terminal UI failed: %w", err)
	}

	done := <-outcome
	return done.result, done.err
}

// PrintResult prints the peer table or the empty message
func (r *ScanRunner) PrintResult(rs *discovery.ResultSet) {
	_, _ = fmt.Fprintln(r.out, RenderPeers(rs))
}

// PrintMessage prints a wrapped paragraph followed by a blank line
func (r *ScanRunner) PrintMessage(text string) {
	_, _ = fmt.Fprintln(r.out, BodyStyle.Width(r.width-4).Render(text))
	_, _ = fmt.Fprintln(r.out)
}

// PrintFailure prints an error box with troubleshooting tips
func (r *ScanRunner) PrintFailure(title string, err error, troubleshooting []string) {
	_, _ = fmt.Fprintln(r.out, RenderFailure(title, err, troubleshooting, r.width))
}
