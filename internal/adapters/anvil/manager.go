package anvil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/trebuchet-org/gasbench/internal/domain"
)

const (
	DefaultAnvilPort = "8545"
	defaultName      = "anvil"

	readyTimeout  = 60 * time.Second
	pollInterval  = 250 * time.Millisecond
	logTailLength = 2048
)

// Manager runs anvil forks as background processes and drives their dev RPC methods
type Manager struct {
	binary string
	log    *slog.Logger
}

// NewManager creates a new anvil manager
func NewManager() *Manager {
	return &Manager{binary: "anvil", log: slog.Default()}
}

// NewManagerWithLogger creates a manager that logs through log
func NewManagerWithLogger(log *slog.Logger) *Manager {
	m := NewManager()
	m.log = log.With("component", "anvil")
	return m
}

// setFilePaths fills in defaults for a partially configured instance
func (m *Manager) setFilePaths(instance *domain.AnvilInstance) {
	if instance.Name == "" {
		instance.Name = defaultName
	}
	if instance.Port == "" {
		instance.Port = DefaultAnvilPort
	}
	if instance.PidFile == "" {
		if instance.Name == defaultName {
			instance.PidFile = "/tmp/gasbench-anvil-pid"
		} else {
			instance.PidFile = fmt.Sprintf("/tmp/gasbench-%s.pid", instance.Name)
		}
	}
	if instance.LogFile == "" {
		instance.LogFile = fmt.Sprintf("/tmp/gasbench-%s.log", instance.Name)
	}
}

func buildAnvilArgs(instance *domain.AnvilInstance) []string {
	args := []string{"--port", instance.Port, "--host", "0.0.0.0"}
	if instance.ChainID != "" {
		args = append(args, "--chain-id", instance.ChainID)
	}
	if instance.ForkURL != "" {
		args = append(args, "--fork-url", instance.ForkURL)
		if instance.ForkBlockNumber > 0 {
			args = append(args, "--fork-block-number", strconv.FormatUint(instance.ForkBlockNumber, 10))
		}
	}
	return args
}

// Start launches anvil in the background and waits until its RPC answers
func (m *Manager) Start(ctx context.Context, instance *domain.AnvilInstance) error {
	m.setFilePaths(instance)

	if pid, err := readPid(instance.PidFile); err == nil && processAlive(pid) {
		return fmt.Errorf("anvil '%s' is already running (pid %d)", instance.Name, pid)
	}
	if _, err := exec.LookPath(m.binary); err != nil {
		return fmt.Errorf("anvil not found on PATH, install foundry: %w", err)
	}

	logFile, err := os.Create(instance.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()

	args := buildAnvilArgs(instance)
	// #nosec G204 -- binary is fixed and args come from configuration
	cmd := exec.Command(m.binary, args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	m.log.Debug("starting anvil", "name", instance.Name, "port", instance.Port, "fork", instance.ForkURL != "")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start anvil: %w", err)
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	if err := os.WriteFile(instance.PidFile, []byte(strconv.Itoa(cmd.Process.Pid)), 0o600); err != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("failed to write pid file: %w", err)
	}

	if err := m.waitReady(ctx, instance, exited); err != nil {
		_ = cmd.Process.Kill()
		_ = os.Remove(instance.PidFile)
		return fmt.Errorf("%w\n%s", err, tail(instance.LogFile))
	}

	m.log.Info("anvil started", "name", instance.Name, "pid", cmd.Process.Pid, "rpc", instance.RPCURL())
	return nil
}

func (m *Manager) waitReady(ctx context.Context, instance *domain.AnvilInstance, exited <-chan error) error {
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-exited:
			return fmt.Errorf("anvil exited during startup: %v", err)
		case <-ctx.Done():
			return fmt.Errorf("anvil did not become ready: %w", ctx.Err())
		case <-ticker.C:
			var chainID hexutil.Big
			if err := m.call(ctx, instance, &chainID, "eth_chainId"); err == nil {
				return nil
			}
		}
	}
}

// Stop terminates a running anvil instance
func (m *Manager) Stop(ctx context.Context, instance *domain.AnvilInstance) error {
	m.setFilePaths(instance)

	pid, err := readPid(instance.PidFile)
	if err != nil {
		return fmt.Errorf("anvil '%s' is not running", instance.Name)
	}
	defer os.Remove(instance.PidFile)

	if !processAlive(pid) {
		return nil
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find anvil process: %w", err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to stop anvil: %w", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for processAlive(pid) && time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	if processAlive(pid) {
		_ = process.Kill()
	}

	m.log.Info("anvil stopped", "name", instance.Name, "pid", pid)
	return nil
}

// GetStatus reports whether the instance process runs and its RPC answers
func (m *Manager) GetStatus(ctx context.Context, instance *domain.AnvilInstance) (*domain.AnvilStatus, error) {
	m.setFilePaths(instance)

	status := &domain.AnvilStatus{
		RPCURL:  instance.RPCURL(),
		LogFile: instance.LogFile,
	}

	if instance.URL == "" {
		pid, err := readPid(instance.PidFile)
		if err != nil || !processAlive(pid) {
			return status, nil
		}
		status.PID = pid
	}
	status.Running = true

	var block hexutil.Uint64
	if err := m.call(ctx, instance, &block, "eth_blockNumber"); err != nil {
		status.Error = err.Error()
		return status, nil
	}
	status.RPCHealthy = true
	status.BlockNumber = uint64(block)
	return status, nil
}

// StreamLogs copies the instance log to writer and follows it until ctx is done
func (m *Manager) StreamLogs(ctx context.Context, instance *domain.AnvilInstance, writer io.Writer) error {
	m.setFilePaths(instance)

	f, err := os.Open(instance.LogFile)
	if err != nil {
		return fmt.Errorf("failed to open anvil log: %w", err)
	}
	defer f.Close()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if _, err := io.Copy(writer, f); err != nil {
			return fmt.Errorf("failed to read anvil log: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// TakeSnapshot records the current chain state and returns its id
func (m *Manager) TakeSnapshot(ctx context.Context, instance *domain.AnvilInstance) (string, error) {
	var id string
	if err := m.call(ctx, instance, &id, "evm_snapshot"); err != nil {
		return "", fmt.Errorf("failed to take snapshot: %w", err)
	}
	return id, nil
}

// RevertSnapshot restores a snapshot. Anvil deletes the snapshot once reverted to.
func (m *Manager) RevertSnapshot(ctx context.Context, instance *domain.AnvilInstance, snapshotID string) error {
	var ok bool
	if err := m.call(ctx, instance, &ok, "evm_revert", snapshotID); err != nil {
		return fmt.Errorf("failed to revert snapshot %s: %w", snapshotID, err)
	}
	if !ok {
		return fmt.Errorf("failed to revert snapshot %s: evm_revert returned false", snapshotID)
	}
	return nil
}

// SetBalance sets the ETH balance of account
func (m *Manager) SetBalance(ctx context.Context, instance *domain.AnvilInstance, account common.Address, wei *big.Int) error {
	if err := m.call(ctx, instance, nil, "anvil_setBalance", account, hexutil.EncodeBig(wei)); err != nil {
		return fmt.Errorf("failed to set balance of %s: %w", account.Hex(), err)
	}
	return nil
}

// Impersonate lets eth_sendTransaction send from account without its key
func (m *Manager) Impersonate(ctx context.Context, instance *domain.AnvilInstance, account common.Address) error {
	if err := m.call(ctx, instance, nil, "anvil_impersonateAccount", account); err != nil {
		return fmt.Errorf("failed to impersonate %s: %w", account.Hex(), err)
	}
	return nil
}

// StopImpersonating reverts Impersonate
func (m *Manager) StopImpersonating(ctx context.Context, instance *domain.AnvilInstance, account common.Address) error {
	if err := m.call(ctx, instance, nil, "anvil_stopImpersonatingAccount", account); err != nil {
		return fmt.Errorf("failed to stop impersonating %s: %w", account.Hex(), err)
	}
	return nil
}

func (m *Manager) call(ctx context.Context, instance *domain.AnvilInstance, result interface{}, method string, args ...interface{}) error {
	client, err := rpc.DialContext(ctx, instance.RPCURL())
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", instance.RPCURL(), err)
	}
	defer client.Close()

	m.log.Debug("rpc", "method", method)
	return client.CallContext(ctx, result, method, args...)
}

func readPid(pidFile string) (int, error) {
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid pid file %s: %w", pidFile, err)
	}
	return pid, nil
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

// tail returns the end of the log file for error messages
func tail(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	if len(data) > logTailLength {
		data = data[len(data)-logTailLength:]
	}
	return strings.TrimSpace(string(data))
}
