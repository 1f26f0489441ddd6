// Package receipt renders derived stats as a stylized retail receipt:
// plain text, ANSI-styled terminal output, and a standalone SVG.
package receipt

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ghreceipt/ghreceipt/internal/domain"
)

// width is the fixed column width of the printed receipt.
const width = 40

// TextFilename is the name used for saved plain-text receipts.
func TextFilename(login string) string {
	return login + "-receipt.txt"
}

// SVGFilename is the name used for saved SVG receipts.
func SVGFilename(login string) string {
	return login + "-receipt.svg"
}

// Text renders the receipt as fixed-width plain text.
func Text(stats *domain.DerivedStats) string {
	var b strings.Builder
	writeLine := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	writeLine(center("GITHUB RECEIPT"))
	writeLine(center("OFFICIAL DEVELOPER STATEMENT"))
	writeLine("")
	writeLine(center(stats.GeneratedAt.Format("Monday, January 2, 2006")))
	writeLine(center(stats.GeneratedAt.Format("3:04 PM")))
	writeLine(rule())
	writeLine(row("ORDER", "#"+stats.Decorations.OrderID))
	writeLine(row("CUSTOMER", stats.DisplayName))
	writeLine(row("", "@"+stats.Login))
	if stats.Location != "" {
		writeLine(row("LOCATION", stats.Location))
	}
	writeLine(rule())
	writeLine(item("REPOSITORIES", stats.TotalRepos))
	writeLine(item("STARS EARNED", stats.TotalStars))
	writeLine(item("REPO FORKS", stats.TotalForks))
	writeLine(item("FOLLOWERS", stats.Followers))
	writeLine(item("FOLLOWING", stats.Following))
	writeLine(item("DISK USAGE (KB)", stats.TotalSizeKB))
	writeLine(rule())
	writeLine(fit("TOP LANGUAGES: " + stats.TopLanguagesDisplay()))
	writeLine(fit("MOST ACTIVE DAY: " + strings.ToUpper(stats.MostActiveDay.String())))
	writeLine(item("PUSHES (30D)", stats.RecentPushes))
	if stats.CommitsLast30Days != nil {
		writeLine(item("COMMITS (30D)", *stats.CommitsLast30Days))
	}
	writeLine(rowRight("AVG STARS/REPO", strconv.FormatFloat(stats.AvgStarsPerRepo, 'f', 1, 64)))
	writeLine(rowRight("MEDIAN SIZE (KB)", strconv.FormatFloat(stats.MedianRepoSizeKB, 'f', 0, 64)))
	writeLine(rule())
	writeLine(item("CONTRIBUTION SCORE", stats.Score))
	writeLine(rule())
	writeLine(fit("SERVED BY: " + stats.Decorations.Cashier))
	writeLine(fit("COUPON: " + stats.Decorations.CouponCode))
	writeLine(fit("CARD: **** **** **** " + stats.Decorations.CardLast4))
	writeLine(fit("AUTH CODE: " + stats.Decorations.AuthCode))
	writeLine(rule())
	writeLine(center(stats.Decorations.Fortune))
	writeLine("")
	writeLine(center(barcode(stats.Login)))
	writeLine(center("github.com/" + stats.Login))
	writeLine("")
	writeLine(center("THANK YOU FOR COMMITTING!"))

	return strings.TrimRight(b.String(), "\n")
}

// Save writes the text and SVG artifacts into dir, named after the
// looked-up handle, and returns the written paths.
func Save(dir string, stats *domain.DerivedStats) ([]string, error) {
	textPath := filepath.Join(dir, TextFilename(stats.Login))
	if err := os.WriteFile(textPath, []byte(Text(stats)+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write text receipt: %w", err)
	}

	svgData, err := SVG(stats)
	if err != nil {
		return nil, err
	}
	svgPath := filepath.Join(dir, SVGFilename(stats.Login))
	if err := os.WriteFile(svgPath, svgData, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write svg receipt: %w", err)
	}

	return []string{textPath, svgPath}, nil
}

func rule() string {
	return strings.Repeat("-", width)
}

func center(s string) string {
	s = fit(s)
	pad := (width - lipgloss.Width(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

// item lays out a label on the left and an integer value flush right.
func item(label string, value int) string {
	return rowRight(label, strconv.Itoa(value))
}

func rowRight(label, value string) string {
	gap := width - lipgloss.Width(label) - lipgloss.Width(value)
	if gap < 1 {
		gap = 1
	}
	return label + strings.Repeat(" ", gap) + value
}

func row(label, value string) string {
	if label == "" {
		return fit(value)
	}
	return fit(label + ": " + value)
}

// fit truncates s to the receipt width. Names, locations, and fortunes are
// arbitrary Unicode, so measurement is display width and truncation is by
// rune, never by byte.
func fit(s string) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

// barcode derives a decorative pseudo-barcode from the login bytes.
func barcode(login string) string {
	patterns := []string{"|", "||", "| |", "|||"}
	var b strings.Builder
	for _, r := range login {
		b.WriteString(patterns[int(r)%len(patterns)])
		if b.Len() >= width-4 {
			break
		}
	}
	return b.String()
}
