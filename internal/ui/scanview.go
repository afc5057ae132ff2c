package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/lanscan/internal/discovery"
)

// progressMsg carries one scanner report into the Bubble Tea loop
type progressMsg discovery.Progress

// scanDoneMsg ends the live view
type scanDoneMsg struct {
	result *discovery.ResultSet
	err    error
}

// ScanView is the live countdown shown while a scan is listening
type ScanView struct {
	Total       uint64
	Remaining   uint64
	Peers       int
	Last        *discovery.PeerInfo
	Done        bool
	Interrupted bool

	Spinner     spinner.Model
	ProgressBar progress.Model
	Width       int

	cancel context.CancelFunc
}

// NewScanView creates the live view for a scan of the given length. cancel
// is invoked when the user presses ctrl+c or q.
func NewScanView(timeout time.Duration, cancel context.CancelFunc) ScanView {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	total := uint64(timeout / time.Second)
	return ScanView{
		Total:       total,
		Remaining:   total,
		Spinner:     s,
		ProgressBar: bar,
		Width:       GetTerminalWidth(),
		cancel:      cancel,
	}
}

// Init implements tea.Model
func (m ScanView) Init() tea.Cmd {
	return m.Spinner.Tick
}

// Update implements tea.Model
func (m ScanView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.Interrupted = true
			if m.cancel != nil {
				m.cancel()
			}
		}

	case tea.WindowSizeMsg:
		m.Width = clampWidth(msg.Width, nil)
		m.ProgressBar.Width = min(max(m.Width-30, 20), 50)

	case progressMsg:
		m.Remaining = msg.Remaining
		m.Peers = msg.Peers
		if msg.Found != nil && msg.New {
			m.Last = msg.Found
		}

	case scanDoneMsg:
		m.Done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// Fraction returns how much of the listening window has passed
func (m ScanView) Fraction() float64 {
	if m.Total == 0 || m.Remaining > m.Total {
		return 1
	}
	return float64(m.Total-m.Remaining) / float64(m.Total)
}

// View implements tea.Model
func (m ScanView) View() string {
	if m.Done {
		return ""
	}

	status := fmt.Sprintf("%s Running discovery... (%d seconds remaining)", m.Spinner.View(), m.Remaining)
	if m.Interrupted {
		status = "  Stopping..."
	}

	lines := []string{
		"",
		CountdownStyle.Render(status),
		"",
		lipgloss.NewStyle().PaddingLeft(2).Render(m.ProgressBar.ViewAs(m.Fraction())),
		"",
		"  " + FoundStyle.Render(peerCount(m.Peers)+" found so far"),
	}
	if m.Last != nil {
		lines = append(lines, MutedStyle.Render(fmt.Sprintf("  Latest: %s (%s)", m.Last.IP(), m.Last.Host)))
	}
	lines = append(lines, "", MutedStyle.Render("  Press q to stop early"))

	return strings.Join(lines, "\n")
}

// LineReporter prints a single self-overwriting countdown line. It is used
// when the output is not a terminal capable of running the live view.
type LineReporter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewLineReporter creates a LineReporter writing to out
func NewLineReporter(out io.Writer) *LineReporter {
	return &LineReporter{out: out}
}

// Progress implements discovery.Reporter
func (l *LineReporter) Progress(p discovery.Progress) {
	if p.Found != nil && !p.New {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("Running discovery... (%d seconds remaining)", p.Remaining)
	if p.Peers > 0 {
		line += fmt.Sprintf(", %s found", peerCount(p.Peers))
	}
	l.clear()
	_, _ = fmt.Fprint(l.out, line)
}

// Clear erases the countdown line
func (l *LineReporter) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clear()
}

func (l *LineReporter) clear() {
	_, _ = fmt.Fprintf(l.out, "\r%78s\r", "")
}

func peerCount(n int) string {
	if n == 1 {
		return "1 peer"
	}
	return fmt.Sprintf("%d peers", n)
}
