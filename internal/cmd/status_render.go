package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Iron-Ham/laneguard/internal/util"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	primaryColor = lipgloss.Color("#A78BFA")
	activeColor  = lipgloss.Color("#10B981")
	stoppedColor = lipgloss.Color("#9CA3AF")
	warningColor = lipgloss.Color("#F59E0B")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(stoppedColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)

	statusStyles = map[string]lipgloss.Style{
		"active":  lipgloss.NewStyle().Foreground(activeColor),
		"stopped": lipgloss.NewStyle().Foreground(stoppedColor),
	}
)

const (
	defaultTableWidth = 100
	minColumnWidth    = 6
	columnGap         = "  "
	timeLayout        = "2006-01-02 15:04:05"
)

// subagentColumns are rendered left to right; the last column absorbs any
// width the terminal cannot give.
var subagentColumns = []string{"AGENT", "TYPE", "STATUS", "TARGET", "LAST TOOL", "LAST FILE"}

// Columns whose tail is the informative part get truncated from the left.
const (
	targetColumn   = 3
	lastFileColumn = 5
)

func renderStatusTable(report *statusReport, width int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("State:"), report.StatePath)
	switch {
	case !report.Exists:
		b.WriteString(mutedStyle.Render("No state recorded yet.") + "\n")
		return b.String()
	case report.Corrupt:
		b.WriteString(warningStyle.Render("State file is not valid JSON; the next hook run will reset it.") + "\n")
	}
	if report.Modified != nil {
		fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Modified:"), report.Modified.Local().Format(timeLayout))
	}

	if len(report.Sessions) == 0 {
		b.WriteString("\n" + mutedStyle.Render("No sessions.") + "\n")
		return b.String()
	}

	for _, sess := range report.Sessions {
		b.WriteString("\n")
		b.WriteString(renderSessionHeader(sess))
		b.WriteString(renderSubagentRows(sess.Subagents, width))
	}
	return b.String()
}

func renderSessionHeader(sess sessionReport) string {
	parts := []string{
		titleStyle.Render("Session " + sess.Key),
		"mode=" + modeOrDefault(sess.Mode),
	}
	if sess.SharedLaneID != "" {
		parts = append(parts, "lane="+sess.SharedLaneID)
	}
	parts = append(parts, "started="+formatTime(sess.CreatedAt))
	if sess.StoppedAt != nil {
		parts = append(parts, statusStyles["stopped"].Render("stopped="+formatTime(*sess.StoppedAt)))
	}
	return strings.Join(parts, "  ") + "\n"
}

func renderSubagentRows(subs []subagentReport, width int) string {
	if len(subs) == 0 {
		return mutedStyle.Render("  (no sub-agents)") + "\n"
	}

	rows := make([][]string, 0, len(subs))
	for _, sub := range subs {
		rows = append(rows, []string{
			sub.AgentID,
			sub.AgentType,
			sub.Status,
			sub.WorkspaceTarget,
			dashIfEmpty(sub.LastToolName),
			dashIfEmpty(sub.LastFilePath),
		})
	}
	widths := columnWidths(subagentColumns, rows, width-2)

	var b strings.Builder
	b.WriteString("  " + renderRow(subagentColumns, widths, func(int, string) lipgloss.Style { return headerStyle }) + "\n")
	for _, row := range rows {
		b.WriteString("  " + renderRow(row, widths, func(col int, value string) lipgloss.Style {
			if col == 2 {
				if style, ok := statusStyles[value]; ok {
					return style
				}
			}
			return lipgloss.NewStyle()
		}) + "\n")
	}
	return b.String()
}

func renderRow(cells []string, widths []int, styleFor func(col int, value string) lipgloss.Style) string {
	rendered := make([]string, len(cells))
	for i, cell := range cells {
		text := util.Truncate(cell, widths[i])
		if i == targetColumn || i == lastFileColumn {
			text = util.TruncateLeft(cell, widths[i])
		}
		// Pad before styling so escape codes do not skew alignment.
		padded := text + strings.Repeat(" ", widths[i]-lipgloss.Width(text))
		rendered[i] = styleFor(i, cell).Render(padded)
	}
	return strings.TrimRight(strings.Join(rendered, columnGap), " ")
}

// columnWidths sizes each column to its widest cell, then shrinks the
// widest columns until the row fits in total.
func columnWidths(header []string, rows [][]string, total int) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	budget := total - len(columnGap)*(len(widths)-1)
	for sum(widths) > budget {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColumnWidth {
			break
		}
		widths[widest]--
	}
	return widths
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns w's column count when it is a terminal.
func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultTableWidth
}
