package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/trebuchet-org/gasbench/internal/usecase"
)

// ForkRenderer renders fork operation results
type ForkRenderer struct {
	out io.Writer
}

// NewForkRenderer creates a new fork renderer
func NewForkRenderer(out io.Writer) *ForkRenderer {
	return &ForkRenderer{out: out}
}

// Render renders the fork operation result
func (r *ForkRenderer) Render(result *usecase.ManageForkResult) error {
	switch result.Operation {
	case usecase.ForkStart, usecase.ForkRestart:
		return r.renderStart(result)
	case usecase.ForkStop:
		return r.renderStop(result)
	case usecase.ForkStatus:
		return r.renderStatus(result)
	case usecase.ForkLogs:
		return r.RenderLogsHeader(result)
	default:
		return fmt.Errorf("unknown operation: %s", result.Operation)
	}
}

func (r *ForkRenderer) renderStart(result *usecase.ManageForkResult) error {
	if !result.Success {
		return nil
	}
	color.New(color.FgGreen).Fprintf(r.out, "✅ %s\n", result.Message)
	color.New(color.FgYellow).Fprintf(r.out, "📋 Logs: %s\n", result.Status.LogFile)
	color.New(color.FgBlue).Fprintf(r.out, "🌐 RPC URL: %s\n", result.Status.RPCURL)
	fmt.Fprintf(r.out, "🍴 Forking %s", result.Instance.ForkURL)
	if result.Instance.ForkBlockNumber != 0 {
		fmt.Fprintf(r.out, " at block %d", result.Instance.ForkBlockNumber)
	}
	fmt.Fprintln(r.out)
	return nil
}

func (r *ForkRenderer) renderStop(result *usecase.ManageForkResult) error {
	if result.Success {
		color.New(color.FgGreen).Fprintf(r.out, "✅ %s\n", result.Message)
	}
	return nil
}

func (r *ForkRenderer) renderStatus(result *usecase.ManageForkResult) error {
	status := result.Status
	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "📊 Fork Status ('%s'):\n", result.Instance.Name)

	if result.Instance.URL != "" {
		color.New(color.FgHiBlack).Fprintf(r.out, "External node: %s\n", result.Instance.URL)
	}
	if !status.Running {
		color.New(color.FgRed).Fprintln(r.out, "Status: 🔴 Not running")
		color.New(color.FgHiBlack).Fprintf(r.out, "PID file: %s\n", result.Instance.PidFile)
		color.New(color.FgHiBlack).Fprintf(r.out, "Log file: %s\n", result.Instance.LogFile)
		return nil
	}

	if status.PID != 0 {
		color.New(color.FgGreen).Fprintf(r.out, "Status: 🟢 Running (PID %d)\n", status.PID)
	} else {
		color.New(color.FgGreen).Fprintln(r.out, "Status: 🟢 Running")
	}
	color.New(color.FgBlue).Fprintf(r.out, "RPC URL: %s\n", status.RPCURL)
	if status.LogFile != "" {
		color.New(color.FgYellow).Fprintf(r.out, "Log file: %s\n", status.LogFile)
	}

	if status.RPCHealthy {
		color.New(color.FgGreen).Fprintf(r.out, "RPC Health: ✅ Responding (block %d)\n", status.BlockNumber)
	} else {
		color.New(color.FgRed).Fprintln(r.out, "RPC Health: ❌ Not responding")
		if status.Error != "" {
			color.New(color.FgHiBlack).Fprintln(r.out, status.Error)
		}
	}
	return nil
}

// RenderLogsHeader renders the header for logs streaming
func (r *ForkRenderer) RenderLogsHeader(result *usecase.ManageForkResult) error {
	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "📋 Showing fork '%s' logs (Ctrl+C to exit):\n", result.Instance.Name)
	color.New(color.FgHiBlack).Fprintf(r.out, "Log file: %s\n\n", result.Instance.LogFile)
	return nil
}
