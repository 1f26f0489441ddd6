package receipt

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ghreceipt/ghreceipt/internal/domain"
)

var (
	paperStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("244")).
			Padding(1, 2)
	ruleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	titleStyle = lipgloss.NewStyle().Bold(true)
)

// ANSI renders the receipt for terminal display: the plain-text layout
// wrapped in a rounded border, with the title bold and the rules faint.
func ANSI(stats *domain.DerivedStats) string {
	lines := strings.Split(Text(stats), "\n")
	for i, line := range lines {
		switch {
		case i == 0:
			lines[i] = titleStyle.Render(line)
		case strings.HasPrefix(line, "-") && strings.TrimRight(line, "-") == "":
			lines[i] = ruleStyle.Render(line)
		}
	}
	return paperStyle.Render(strings.Join(lines, "\n"))
}
