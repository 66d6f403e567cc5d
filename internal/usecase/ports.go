package usecase

import (
	"context"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/gasbench/internal/domain"
)

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// Benchmark stages reported through ProgressSink
const (
	StageFork     = "Fork"
	StageFixture  = "Fixture"
	StageSubmit   = "Submitting"
	StageComplete = "Completed"
)

// AnvilManager manages local anvil node instances
type AnvilManager interface {
	Start(ctx context.Context, instance *domain.AnvilInstance) error
	Stop(ctx context.Context, instance *domain.AnvilInstance) error
	GetStatus(ctx context.Context, instance *domain.AnvilInstance) (*domain.AnvilStatus, error)
	StreamLogs(ctx context.Context, instance *domain.AnvilInstance, writer io.Writer) error
}

// DevChain drives the state-manipulation methods of a development node
type DevChain interface {
	TakeSnapshot(ctx context.Context, instance *domain.AnvilInstance) (string, error)
	RevertSnapshot(ctx context.Context, instance *domain.AnvilInstance, id string) error
	SetBalance(ctx context.Context, instance *domain.AnvilInstance, account common.Address, wei *big.Int) error
	Impersonate(ctx context.Context, instance *domain.AnvilInstance, account common.Address) error
	StopImpersonating(ctx context.Context, instance *domain.AnvilInstance, account common.Address) error
}

// AccountSigner is a test account holding its own key
type AccountSigner = domain.AccountSigner

// AccountProvider resolves the maker and taker accounts by name
type AccountProvider interface {
	GetSender(name string) (AccountSigner, error)
}

// Call is a single contract interaction
type Call struct {
	// Label names the call in errors and logs
	Label string
	From  common.Address
	To    common.Address
	Data  []byte
	Value *big.Int
}

// ChainClient reads chain state and submits transactions to the fork
type ChainClient interface {
	Connect(ctx context.Context, rpcURL string, chainID uint64) error
	CheckContract(ctx context.Context, address common.Address) (exists bool, reason string, err error)
	// Send signs call with from's key and waits for the receipt
	Send(ctx context.Context, from AccountSigner, call Call) (*domain.Submission, error)
	// SendAs submits call from an impersonated account, unsigned
	SendAs(ctx context.Context, call Call) (*domain.Submission, error)
	Call(ctx context.Context, call Call) ([]byte, error)
	TokenBalance(ctx context.Context, token, account common.Address) (*big.Int, error)
	BlockTime(ctx context.Context) (uint64, error)
}

// ScenarioSelector handles interactive selection of scenarios
type ScenarioSelector interface {
	SelectScenarios(ctx context.Context, scenarios []domain.Scenario, prompt string) ([]domain.Scenario, error)
}
