package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/lanscan/internal/discovery"
)

// Result table column widths
const (
	colAddress = 18
	colHost    = 32
	colFolders = 15
)

// ResultHeading returns the pluralised summary line for n peers
func ResultHeading(n int) string {
	if n == 1 {
		return "1 device is running a LAN sync client:"
	}
	return fmt.Sprintf("%d devices are running a LAN sync client:", n)
}

// EmptyMessage is shown when a scan hears nothing
const EmptyMessage = "Couldn't find a LAN sync client running on any of the analyzed networks."

// RenderPeers renders the result table, or the empty message when rs holds
// no peers. Peers are listed in address order.
func RenderPeers(rs *discovery.ResultSet) string {
	if rs.Len() == 0 {
		return RenderEmpty()
	}

	var b strings.Builder
	b.WriteString(SuccessTitleStyle.Render(SuccessMarker + " " + ResultHeading(rs.Len())))
	b.WriteString("\n\n")

	header := padRight("IP address", colAddress) + " " +
		padRight("Computer name", colHost) + " " +
		"Sync folders"
	b.WriteString(TableHeaderStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(MutedStyle.Render(
		strings.Repeat("-", colAddress) + "-" + strings.Repeat("-", colHost) + "-" + strings.Repeat("-", colFolders)))
	b.WriteString("\n")

	for _, p := range rs.Peers() {
		row := padRight(p.IP().String(), colAddress) + " " +
			padRight(p.Host, colHost) + " " +
			fmt.Sprintf("%d", p.Namespaces)
		b.WriteString(TableCellStyle.Render(row))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderEmpty renders the message for a scan that found nothing
func RenderEmpty() string {
	return WarningTitleStyle.Render(WarningMarker+" "+EmptyMessage) + "\n"
}

// RenderFailure renders an error box with troubleshooting tips
func RenderFailure(title string, err error, troubleshooting []string, width int) string {
	width = max(width, MinTerminalWidth)

	lines := []string{
		"",
		ErrorTitleStyle.Render(fmt.Sprintf("   %s  FAILED  ─  %s", FailureMarker, title)),
		"",
	}

	if err != nil {
		msg := lipgloss.NewStyle().Width(width - 12).Render("Error: " + err.Error())
		lines = append(lines, ErrorMessageStyle.PaddingLeft(3).Render(msg), "")
	}

	if len(troubleshooting) > 0 {
		tips := []string{TroubleshootingTitleStyle.Render("Troubleshooting:"), ""}
		for _, tip := range troubleshooting {
			tips = append(tips, TroubleshootingItemStyle.Render("  • "+tip))
		}
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(MutedColor).
			Width(max(width-12, 40)).
			Padding(0, 1).
			MarginLeft(3).
			Render(strings.Join(tips, "\n"))
		lines = append(lines, box, "")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(ErrorColor).
		Width(width-2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))
}
