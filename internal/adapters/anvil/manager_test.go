package anvil

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/gasbench/internal/domain"
)

func TestBuildAnvilArgs_Basic(t *testing.T) {
	instance := &domain.AnvilInstance{
		Port: "8545",
	}
	args := buildAnvilArgs(instance)
	assert.Equal(t, []string{"--port", "8545", "--host", "0.0.0.0"}, args)
}

func TestBuildAnvilArgs_WithChainID(t *testing.T) {
	instance := &domain.AnvilInstance{
		Port:    "9000",
		ChainID: "31337",
	}
	args := buildAnvilArgs(instance)
	assert.Equal(t, []string{"--port", "9000", "--host", "0.0.0.0", "--chain-id", "31337"}, args)
}

func TestBuildAnvilArgs_WithForkURL(t *testing.T) {
	instance := &domain.AnvilInstance{
		Port:    "9000",
		ForkURL: "https://rpc.sepolia.org",
	}
	args := buildAnvilArgs(instance)
	assert.Equal(t, []string{"--port", "9000", "--host", "0.0.0.0", "--fork-url", "https://rpc.sepolia.org"}, args)
}

func TestBuildAnvilArgs_WithChainIDAndForkURL(t *testing.T) {
	instance := &domain.AnvilInstance{
		Port:    "9000",
		ChainID: "11155111",
		ForkURL: "https://rpc.sepolia.org",
	}
	args := buildAnvilArgs(instance)
	assert.Equal(t, []string{
		"--port", "9000",
		"--host", "0.0.0.0",
		"--chain-id", "11155111",
		"--fork-url", "https://rpc.sepolia.org",
	}, args)
}

func TestBuildAnvilArgs_WithForkBlock(t *testing.T) {
	instance := &domain.AnvilInstance{
		Port:            "8545",
		ChainID:         "1",
		ForkURL:         "https://eth.llamarpc.com",
		ForkBlockNumber: 19_000_000,
	}
	args := buildAnvilArgs(instance)
	assert.Equal(t, []string{
		"--port", "8545",
		"--host", "0.0.0.0",
		"--chain-id", "1",
		"--fork-url", "https://eth.llamarpc.com",
		"--fork-block-number", "19000000",
	}, args)
}

func TestBuildAnvilArgs_ForkBlockIgnoredWithoutForkURL(t *testing.T) {
	instance := &domain.AnvilInstance{Port: "8545", ForkBlockNumber: 5}
	assert.NotContains(t, buildAnvilArgs(instance), "--fork-block-number")
}

func TestBuildAnvilArgs_WithoutForkURL(t *testing.T) {
	instance := &domain.AnvilInstance{
		Port:    "8545",
		ChainID: "31337",
	}
	args := buildAnvilArgs(instance)
	// Should NOT contain --fork-url
	for _, arg := range args {
		assert.NotEqual(t, "--fork-url", arg)
	}
}

func TestSetFilePaths_DefaultInstance(t *testing.T) {
	m := NewManager()
	instance := &domain.AnvilInstance{}
	m.setFilePaths(instance)

	assert.Equal(t, "anvil", instance.Name)
	assert.Equal(t, DefaultAnvilPort, instance.Port)
	assert.Equal(t, "/tmp/gasbench-anvil-pid", instance.PidFile)
	assert.Equal(t, "/tmp/gasbench-anvil.log", instance.LogFile)
}

func TestSetFilePaths_NamedInstance(t *testing.T) {
	m := NewManager()
	instance := &domain.AnvilInstance{
		Name: "testnet",
		Port: "9000",
	}
	m.setFilePaths(instance)

	assert.Equal(t, "/tmp/gasbench-testnet.pid", instance.PidFile)
	assert.Equal(t, "/tmp/gasbench-testnet.log", instance.LogFile)
}

func TestSetFilePaths_ForkInstance(t *testing.T) {
	m := NewManager()
	instance := &domain.AnvilInstance{
		Name: "fork-sepolia",
		Port: "54321",
	}
	m.setFilePaths(instance)

	assert.Equal(t, "/tmp/gasbench-fork-sepolia.pid", instance.PidFile)
	assert.Equal(t, "/tmp/gasbench-fork-sepolia.log", instance.LogFile)
}

func TestSetFilePaths_PresetPathsPreserved(t *testing.T) {
	m := NewManager()
	instance := &domain.AnvilInstance{
		Name:    "fork-sepolia",
		Port:    "54321",
		PidFile: "/custom/path/my.pid",
		LogFile: "/custom/path/my.log",
	}
	m.setFilePaths(instance)

	assert.Equal(t, "/custom/path/my.pid", instance.PidFile)
	assert.Equal(t, "/custom/path/my.log", instance.LogFile)
}

type rpcRequest struct {
	Jsonrpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  []interface{}   `json:"params"`
	ID      json.RawMessage `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	Result  interface{}     `json:"result"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// newMockRPCServer creates a test HTTP server that responds to JSON-RPC requests
func newMockRPCServer(t *testing.T, handler func(req rpcRequest) rpcResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode RPC request: %v", err)
		}
		resp := handler(req)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("failed to encode RPC response: %v", err)
		}
	}))
}

// instanceForServer creates an AnvilInstance pointing at the test server
func instanceForServer(t *testing.T, server *httptest.Server) *domain.AnvilInstance {
	t.Helper()
	// Extract port from server URL (format: http://127.0.0.1:<port>)
	parts := strings.Split(server.URL, ":")
	port := parts[len(parts)-1]
	return &domain.AnvilInstance{
		Name:    "test",
		Port:    port,
		PidFile: "/tmp/nonexistent-test.pid",
		LogFile: "/tmp/nonexistent-test.log",
	}
}

func TestTakeSnapshot_Success(t *testing.T) {
	server := newMockRPCServer(t, func(req rpcRequest) rpcResponse {
		assert.Equal(t, "evm_snapshot", req.Method)
		return rpcResponse{
			Jsonrpc: "2.0",
			Result:  "0x1",
			ID:      req.ID,
		}
	})
	defer server.Close()

	m := NewManager()
	instance := instanceForServer(t, server)

	snapshotID, err := m.TakeSnapshot(context.Background(), instance)
	require.NoError(t, err)
	assert.Equal(t, "0x1", snapshotID)
}

func TestTakeSnapshot_RPCError(t *testing.T) {
	server := newMockRPCServer(t, func(req rpcRequest) rpcResponse {
		return rpcResponse{
			Jsonrpc: "2.0",
			Error:   &rpcError{Code: -32000, Message: "snapshot failed"},
			ID:      req.ID,
		}
	})
	defer server.Close()

	m := NewManager()
	instance := instanceForServer(t, server)

	_, err := m.TakeSnapshot(context.Background(), instance)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot failed")
}

func TestRevertSnapshot_Success(t *testing.T) {
	server := newMockRPCServer(t, func(req rpcRequest) rpcResponse {
		assert.Equal(t, "evm_revert", req.Method)
		require.Len(t, req.Params, 1)
		assert.Equal(t, "0x1", req.Params[0])
		return rpcResponse{
			Jsonrpc: "2.0",
			Result:  true,
			ID:      req.ID,
		}
	})
	defer server.Close()

	m := NewManager()
	instance := instanceForServer(t, server)

	err := m.RevertSnapshot(context.Background(), instance, "0x1")
	require.NoError(t, err)
}

func TestRevertSnapshot_ReturnsFalse(t *testing.T) {
	server := newMockRPCServer(t, func(req rpcRequest) rpcResponse {
		return rpcResponse{
			Jsonrpc: "2.0",
			Result:  false,
			ID:      req.ID,
		}
	})
	defer server.Close()

	m := NewManager()
	instance := instanceForServer(t, server)

	err := m.RevertSnapshot(context.Background(), instance, "0xbad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evm_revert returned false")
}

func TestRevertSnapshot_RPCError(t *testing.T) {
	server := newMockRPCServer(t, func(req rpcRequest) rpcResponse {
		return rpcResponse{
			Jsonrpc: "2.0",
			Error:   &rpcError{Code: -32000, Message: "revert failed"},
			ID:      req.ID,
		}
	})
	defer server.Close()

	m := NewManager()
	instance := instanceForServer(t, server)

	err := m.RevertSnapshot(context.Background(), instance, "0x1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revert failed")
}

func TestSetBalance(t *testing.T) {
	account := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	server := newMockRPCServer(t, func(req rpcRequest) rpcResponse {
		assert.Equal(t, "anvil_setBalance", req.Method)
		require.Len(t, req.Params, 2)
		assert.True(t, strings.EqualFold(account.Hex(), req.Params[0].(string)))
		assert.Equal(t, "0xde0b6b3a7640000", req.Params[1])
		return rpcResponse{Jsonrpc: "2.0", Result: nil, ID: req.ID}
	})
	defer server.Close()

	m := NewManager()
	err := m.SetBalance(context.Background(), instanceForServer(t, server), account, big.NewInt(1e18))
	require.NoError(t, err)
}

func TestImpersonate(t *testing.T) {
	var methods []string
	server := newMockRPCServer(t, func(req rpcRequest) rpcResponse {
		methods = append(methods, req.Method)
		return rpcResponse{Jsonrpc: "2.0", Result: nil, ID: req.ID}
	})
	defer server.Close()

	m := NewManager()
	instance := instanceForServer(t, server)
	whale := common.HexToAddress("0x28C6c06298d514Db089934071355E5743bf21d60")

	require.NoError(t, m.Impersonate(context.Background(), instance, whale))
	require.NoError(t, m.StopImpersonating(context.Background(), instance, whale))
	assert.Equal(t, []string{"anvil_impersonateAccount", "anvil_stopImpersonatingAccount"}, methods)
}

func TestGetStatus_AttachedNode(t *testing.T) {
	server := newMockRPCServer(t, func(req rpcRequest) rpcResponse {
		assert.Equal(t, "eth_blockNumber", req.Method)
		return rpcResponse{Jsonrpc: "2.0", Result: "0x10", ID: req.ID}
	})
	defer server.Close()

	m := NewManager()
	instance := &domain.AnvilInstance{Name: "external", URL: server.URL}

	status, err := m.GetStatus(context.Background(), instance)
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.True(t, status.RPCHealthy)
	assert.Equal(t, uint64(16), status.BlockNumber)
	assert.Equal(t, server.URL, status.RPCURL)
}

func TestGetStatus_NotRunning(t *testing.T) {
	m := NewManager()
	instance := &domain.AnvilInstance{
		Name:    "stopped",
		PidFile: filepath.Join(t.TempDir(), "missing.pid"),
	}

	status, err := m.GetStatus(context.Background(), instance)
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.False(t, status.RPCHealthy)
}

func TestStop_NotRunning(t *testing.T) {
	m := NewManager()
	instance := &domain.AnvilInstance{
		Name:    "stopped",
		PidFile: filepath.Join(t.TempDir(), "missing.pid"),
	}
	err := m.Stop(context.Background(), instance)
	assert.Error(t, err)
}

func TestStreamLogs(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "anvil.log")
	require.NoError(t, os.WriteFile(logFile, []byte("Listening on 0.0.0.0:8545\n"), 0o600))

	m := NewManager()
	instance := &domain.AnvilInstance{Name: "logs", LogFile: logFile}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	var out strings.Builder
	require.NoError(t, m.StreamLogs(ctx, instance, &out))
	assert.Equal(t, "Listening on 0.0.0.0:8545\n", out.String())
}
