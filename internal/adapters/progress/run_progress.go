package progress

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/trebuchet-org/gasbench/internal/cli/render"
	"github.com/trebuchet-org/gasbench/internal/domain"
	"github.com/trebuchet-org/gasbench/internal/usecase"
)

// RunProgress prints each gas measurement as it is recorded and drives the spinner in between
type RunProgress struct {
	out     io.Writer
	spinner *SpinnerProgressReporter
}

func NewRunProgress(out io.Writer) *RunProgress {
	return &RunProgress{
		out:     out,
		spinner: NewSpinnerProgressReporter(),
	}
}

// OnProgress prints measurements and forwards everything else to the spinner
func (n *RunProgress) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	if m, ok := event.Metadata.(*domain.GasMeasurement); ok {
		n.spinner.pause(func() {
			fmt.Fprintf(n.out, "  %s %-12s %-18s %s gas\n",
				color.GreenString("✓"),
				m.Scenario,
				string(m.Protocol),
				render.FormatGas(m.GasUsed),
			)
		})
		return
	}

	n.spinner.OnProgress(ctx, event)
	if event.Stage == usecase.StageComplete {
		n.spinner.Stop()
	}
}

func (n *RunProgress) Info(message string) {
	n.spinner.Info(message)
}

func (n *RunProgress) Error(message string) {
	n.spinner.Error(message)
}

// Ensure RunProgress implements ProgressSink
var _ usecase.ProgressSink = (*RunProgress)(nil)
