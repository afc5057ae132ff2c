package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// WelcomeText explains what a scan does before the port is opened
func WelcomeText(port int) []string {
	return []string{
		"This tool discovers computers running a LAN sync client on your local network.",
		fmt.Sprintf("When the discovery starts it opens UDP port %d and watches for the "+
			"announcements sync clients broadcast within the wired or wireless network "+
			"this computer is connected to. Nothing is ever sent.", port),
		"If your network spans several IP subnets (for example separate wired and " +
			"wireless networks, or more than one Wi-Fi network), re-run the scan from " +
			"each of them to get a complete result.",
	}
}

// RenderWelcome renders the welcome paragraphs word-wrapped to width
func RenderWelcome(port, width int) string {
	width = max(width, MinTerminalWidth)
	style := BodyStyle.Width(width - 4)

	paragraphs := WelcomeText(port)
	rendered := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		rendered[i] = style.Render(p)
	}
	return strings.Join(rendered, "\n\n")
}

// Confirm writes question followed by a [Y/n] hint and reads one line from
// in. An empty answer, "y" or "yes" (any case) confirms. A closed input
// counts as a refusal.
func Confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	_, _ = fmt.Fprint(out, PromptStyle.Render(question+" [Y/n] "))

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		_, _ = fmt.Fprintln(out)
		return false, nil
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	_, _ = fmt.Fprintln(out)

	switch answer {
	case "", "y", "yes":
		return true, nil
	default:
		cancel := lipgloss.NewStyle().Foreground(MutedColor)
		_, _ = fmt.Fprintln(out, cancel.Render("  Discovery cancelled."))
		return false, nil
	}
}
