package usecase_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/gasbench/internal/adapters/senders"
	"github.com/trebuchet-org/gasbench/internal/domain"
	"github.com/trebuchet-org/gasbench/internal/usecase"
)

var (
	weth = domain.Token{
		Symbol:   "WETH",
		Address:  common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
		Decimals: 18,
	}
	usdc = domain.Token{
		Symbol:   "USDC",
		Address:  common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
		Decimals: 6,
		Whale:    common.HexToAddress("0x28C6c06298d514Db089934071355E5743bf21d60"),
	}
	usdcWethPool = common.HexToAddress("0x88e6A0c2dDD26FEEb64F039a2c41296FcB3f5640")
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func wethUsdc(protocols ...domain.ProtocolKey) domain.Scenario {
	if len(protocols) == 0 {
		protocols = domain.AllProtocols
	}
	return domain.Scenario{
		Name:        "weth-usdc",
		Sell:        weth,
		Buy:         usdc,
		SellAmount:  big.NewInt(100_000_000_000_000_000), // 0.1 WETH
		BuyAmount:   big.NewInt(10_000),                  // 0.01 USDC
		Pool:        usdcWethPool,
		Fee:         500,
		SlippagePct: 1,
		Protocols:   protocols,
	}
}

// MockChainClient is a mock implementation of ChainClient
type MockChainClient struct {
	mock.Mock
}

func (m *MockChainClient) Connect(ctx context.Context, rpcURL string, chainID uint64) error {
	return m.Called(ctx, rpcURL, chainID).Error(0)
}

func (m *MockChainClient) CheckContract(ctx context.Context, address common.Address) (bool, string, error) {
	args := m.Called(ctx, address)
	return args.Bool(0), args.String(1), args.Error(2)
}

func (m *MockChainClient) Send(ctx context.Context, from usecase.AccountSigner, call usecase.Call) (*domain.Submission, error) {
	args := m.Called(ctx, from, call)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockChainClient) SendAs(ctx context.Context, call usecase.Call) (*domain.Submission, error) {
	args := m.Called(ctx, call)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockChainClient) Call(ctx context.Context, call usecase.Call) ([]byte, error) {
	args := m.Called(ctx, call)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockChainClient) TokenBalance(ctx context.Context, token, account common.Address) (*big.Int, error) {
	args := m.Called(ctx, token, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockChainClient) BlockTime(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

// happyChain accepts every setup call of a fixture
func happyChain() *MockChainClient {
	chain := &MockChainClient{}
	chain.On("Connect", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	chain.On("CheckContract", mock.Anything, mock.Anything).Return(true, "", nil).Maybe()
	chain.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(&domain.Submission{GasUsed: 21000}, nil).Maybe()
	chain.On("SendAs", mock.Anything, mock.Anything).Return(&domain.Submission{GasUsed: 50000}, nil).Maybe()
	chain.On("BlockTime", mock.Anything).Return(uint64(1_700_000_000), nil).Maybe()
	return chain
}

// MockAnvilManager is a mock implementation of AnvilManager
type MockAnvilManager struct {
	mock.Mock
}

func (m *MockAnvilManager) Start(ctx context.Context, instance *domain.AnvilInstance) error {
	return m.Called(ctx, instance).Error(0)
}

func (m *MockAnvilManager) Stop(ctx context.Context, instance *domain.AnvilInstance) error {
	return m.Called(ctx, instance).Error(0)
}

func (m *MockAnvilManager) GetStatus(ctx context.Context, instance *domain.AnvilInstance) (*domain.AnvilStatus, error) {
	args := m.Called(ctx, instance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnvilStatus), args.Error(1)
}

func (m *MockAnvilManager) StreamLogs(ctx context.Context, instance *domain.AnvilInstance, writer io.Writer) error {
	return m.Called(ctx, instance, writer).Error(0)
}

// fakeDevChain hands out increasing snapshot ids and records every dev call
type fakeDevChain struct {
	mu        sync.Mutex
	next      int
	reverts   []string
	balances  map[common.Address]*big.Int
	pranks    []common.Address
	stopPrank []common.Address
}

func newFakeDevChain() *fakeDevChain {
	return &fakeDevChain{balances: map[common.Address]*big.Int{}}
}

func (f *fakeDevChain) TakeSnapshot(context.Context, *domain.AnvilInstance) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return fmt.Sprintf("0x%x", f.next), nil
}

func (f *fakeDevChain) RevertSnapshot(_ context.Context, _ *domain.AnvilInstance, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reverts = append(f.reverts, id)
	return nil
}

func (f *fakeDevChain) SetBalance(_ context.Context, _ *domain.AnvilInstance, account common.Address, wei *big.Int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[account] = new(big.Int).Set(wei)
	return nil
}

func (f *fakeDevChain) Impersonate(_ context.Context, _ *domain.AnvilInstance, account common.Address) error {
	f.pranks = append(f.pranks, account)
	return nil
}

func (f *fakeDevChain) StopImpersonating(_ context.Context, _ *domain.AnvilInstance, account common.Address) error {
	f.stopPrank = append(f.stopPrank, account)
	return nil
}

// testAccounts resolves the anvil dev accounts
type testAccounts map[string]usecase.AccountSigner

func newTestAccounts(t *testing.T) testAccounts {
	t.Helper()
	maker, err := senders.NewKeySigner(usecase.MakerAccount, senders.DefaultMakerKey)
	require.NoError(t, err)
	taker, err := senders.NewKeySigner(usecase.TakerAccount, senders.DefaultTakerKey)
	require.NoError(t, err)
	return testAccounts{usecase.MakerAccount: maker, usecase.TakerAccount: taker}
}

func (a testAccounts) GetSender(name string) (usecase.AccountSigner, error) {
	if s, ok := a[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("account '%s' not found", name)
}

// recordingProgress keeps every progress event
type recordingProgress struct {
	usecase.NopProgress
	events []usecase.ProgressEvent
}

func (r *recordingProgress) OnProgress(_ context.Context, event usecase.ProgressEvent) {
	r.events = append(r.events, event)
}

// callTo matches a Call sent to addr
func callTo(addr common.Address) interface{} {
	return mock.MatchedBy(func(c usecase.Call) bool { return c.To == addr })
}
