package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/trebuchet-org/gasbench/internal/usecase"
)

// EncodeRenderer prints an encoded parameter followed by its decoded fields
type EncodeRenderer struct {
	out     io.Writer
	rawOnly bool
}

// NewEncodeRenderer creates a new encode renderer. rawOnly prints the encoding alone.
func NewEncodeRenderer(out io.Writer, rawOnly bool) *EncodeRenderer {
	return &EncodeRenderer{out: out, rawOnly: rawOnly}
}

// Render renders an encoding result
func (r *EncodeRenderer) Render(result *usecase.EncodeCalldataResult) error {
	if r.rawOnly {
		if result.Kind == usecase.EncodePercent {
			fmt.Fprintln(r.out, result.Value)
			return nil
		}
		fmt.Fprintln(r.out, result.Hex)
		return nil
	}

	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "%s\n", result.Hex)
	if result.Value != nil {
		fmt.Fprintf(r.out, "  %s %s\n", faintStyle.Sprint("value:"), result.Value)
	}
	for _, line := range result.Decoded {
		fmt.Fprintf(r.out, "  %s\n", faintStyle.Sprint(line))
	}
	return nil
}
