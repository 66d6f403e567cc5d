package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/trebuchet-org/gasbench/internal/domain"
	"github.com/trebuchet-org/gasbench/internal/domain/config"
)

// Fork operations
const (
	ForkStart   = "start"
	ForkStop    = "stop"
	ForkRestart = "restart"
	ForkStatus  = "status"
	ForkLogs    = "logs"
)

// ForkInstance describes the anvil fork configured in cfg
func ForkInstance(cfg *config.RuntimeConfig) *domain.AnvilInstance {
	instance := &domain.AnvilInstance{
		Name:            cfg.Fork.Name,
		Port:            cfg.Fork.Port,
		ForkURL:         cfg.Fork.RPCURL,
		ForkBlockNumber: cfg.Fork.BlockNumber,
		URL:             cfg.RPCURL,
	}
	if cfg.ChainID != 0 {
		instance.ChainID = strconv.FormatUint(cfg.ChainID, 10)
	}
	return instance
}

// ManageFork handles the lifecycle of the benchmark fork
type ManageFork struct {
	config       *config.RuntimeConfig
	anvilManager AnvilManager
	progress     ProgressSink
}

// NewManageFork creates a new fork management use case
func NewManageFork(cfg *config.RuntimeConfig, anvilManager AnvilManager, progress ProgressSink) *ManageFork {
	return &ManageFork{
		config:       cfg,
		anvilManager: anvilManager,
		progress:     progress,
	}
}

// ManageForkParams contains parameters for fork operations
type ManageForkParams struct {
	Operation string // start, stop, restart, status, logs
}

// ManageForkResult contains the result of fork operations
type ManageForkResult struct {
	Operation string
	Instance  *domain.AnvilInstance
	Status    *domain.AnvilStatus
	Success   bool
	Message   string
}

// Execute performs the fork management operation
func (m *ManageFork) Execute(ctx context.Context, params ManageForkParams) (*ManageForkResult, error) {
	instance := ForkInstance(m.config)
	if instance.URL != "" && params.Operation != ForkStatus {
		return nil, fmt.Errorf("an external node is configured at %s, gasbench does not manage it", instance.URL)
	}

	switch params.Operation {
	case ForkStart:
		return m.start(ctx, instance)
	case ForkStop:
		return m.stop(ctx, instance)
	case ForkRestart:
		return m.restart(ctx, instance)
	case ForkStatus:
		return m.status(ctx, instance)
	case ForkLogs:
		return m.logs(ctx, instance)
	default:
		return nil, fmt.Errorf("unknown operation: %s", params.Operation)
	}
}

func (m *ManageFork) start(ctx context.Context, instance *domain.AnvilInstance) (*ManageForkResult, error) {
	if instance.ForkURL == "" {
		return nil, fmt.Errorf("no fork URL configured, set fork.rpc_url in gasbench.toml or pass --fork-url")
	}
	m.progress.Info(fmt.Sprintf("🔨 Starting fork '%s' on port %s...", instance.Name, instance.Port))

	status, err := m.anvilManager.GetStatus(ctx, instance)
	if err == nil && status.Running {
		return nil, fmt.Errorf("fork '%s' is already running (PID %d)", instance.Name, status.PID)
	}

	if err := m.anvilManager.Start(ctx, instance); err != nil {
		return nil, fmt.Errorf("failed to start fork: %w", err)
	}

	status, err = m.anvilManager.GetStatus(ctx, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to get status after start: %w", err)
	}

	return &ManageForkResult{
		Operation: ForkStart,
		Instance:  instance,
		Status:    status,
		Success:   true,
		Message:   fmt.Sprintf("Fork '%s' started with PID %d", instance.Name, status.PID),
	}, nil
}

func (m *ManageFork) stop(ctx context.Context, instance *domain.AnvilInstance) (*ManageForkResult, error) {
	m.progress.Info(fmt.Sprintf("🛑 Stopping fork '%s'...", instance.Name))

	status, err := m.anvilManager.GetStatus(ctx, instance)
	if err != nil || !status.Running {
		return &ManageForkResult{
			Operation: ForkStop,
			Instance:  instance,
			Success:   true,
			Message:   fmt.Sprintf("Fork '%s' is not running", instance.Name),
		}, nil
	}

	if err := m.anvilManager.Stop(ctx, instance); err != nil {
		return nil, fmt.Errorf("failed to stop fork: %w", err)
	}

	return &ManageForkResult{
		Operation: ForkStop,
		Instance:  instance,
		Success:   true,
		Message:   "Fork stopped",
	}, nil
}

func (m *ManageFork) restart(ctx context.Context, instance *domain.AnvilInstance) (*ManageForkResult, error) {
	m.progress.Info(fmt.Sprintf("🔄 Restarting fork '%s'...", instance.Name))

	status, err := m.anvilManager.GetStatus(ctx, instance)
	if err == nil && status.Running {
		if err := m.anvilManager.Stop(ctx, instance); err != nil {
			return nil, fmt.Errorf("failed to stop fork: %w", err)
		}
	}

	if err := m.anvilManager.Start(ctx, instance); err != nil {
		return nil, fmt.Errorf("failed to start fork: %w", err)
	}

	status, err = m.anvilManager.GetStatus(ctx, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to get status after restart: %w", err)
	}

	return &ManageForkResult{
		Operation: ForkRestart,
		Instance:  instance,
		Status:    status,
		Success:   true,
		Message:   fmt.Sprintf("Fork '%s' restarted with PID %d", instance.Name, status.PID),
	}, nil
}

func (m *ManageFork) status(ctx context.Context, instance *domain.AnvilInstance) (*ManageForkResult, error) {
	status, err := m.anvilManager.GetStatus(ctx, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	return &ManageForkResult{
		Operation: ForkStatus,
		Instance:  instance,
		Status:    status,
		Success:   true,
	}, nil
}

// logs only resolves the log file; the renderer streams it
func (m *ManageFork) logs(ctx context.Context, instance *domain.AnvilInstance) (*ManageForkResult, error) {
	status, err := m.anvilManager.GetStatus(ctx, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	return &ManageForkResult{
		Operation: ForkLogs,
		Instance:  instance,
		Status:    status,
		Success:   true,
	}, nil
}
