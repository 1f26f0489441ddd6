package receipt

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/ghreceipt/ghreceipt/internal/domain"
)

const (
	svgWidth      = 380
	svgLineHeight = 16
	svgTopPad     = 28
	svgBottomPad  = 24
)

//go:embed templates/receipt.svg.tmpl
var receiptTemplate string

var receiptTmpl = template.Must(
	template.New("receipt").
		Funcs(template.FuncMap{
			"mul": func(a, b int) int { return a * b },
			"add": func(a, b int) int { return a + b },
		}).
		Parse(receiptTemplate),
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

type receiptViewModel struct {
	Width      int
	Height     int
	LineHeight int
	TopPad     int
	Lines      []string
}

// SVG renders the receipt as a standalone SVG document.
func SVG(stats *domain.DerivedStats) ([]byte, error) {
	lines := strings.Split(Text(stats), "\n")
	for i, line := range lines {
		lines[i] = xmlEscaper.Replace(line)
	}

	vm := receiptViewModel{
		Width:      svgWidth,
		Height:     svgTopPad + len(lines)*svgLineHeight + svgBottomPad,
		LineHeight: svgLineHeight,
		TopPad:     svgTopPad,
		Lines:      lines,
	}

	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, vm); err != nil {
		return nil, fmt.Errorf("render svg: %w", err)
	}
	return buf.Bytes(), nil
}
