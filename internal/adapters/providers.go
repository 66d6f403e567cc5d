package adapters

import (
	"os"

	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/gasbench/internal/adapters/anvil"
	"github.com/trebuchet-org/gasbench/internal/adapters/blockchain"
	"github.com/trebuchet-org/gasbench/internal/adapters/interactive"
	"github.com/trebuchet-org/gasbench/internal/adapters/progress"
	"github.com/trebuchet-org/gasbench/internal/adapters/senders"
	"github.com/trebuchet-org/gasbench/internal/usecase"
)

// ProvideProgressSink picks the spinner for interactive table output and stays silent otherwise
func ProvideProgressSink(v *viper.Viper) usecase.ProgressSink {
	if v.GetBool("non_interactive") || v.GetString("format") != "table" {
		return progress.NewNopSink()
	}
	return progress.NewRunProgress(os.Stderr)
}

// AnvilSet provides the fork process manager and its dev RPC methods
var AnvilSet = wire.NewSet(
	anvil.NewManagerWithLogger,
	wire.Bind(new(usecase.AnvilManager), new(*anvil.Manager)),
	wire.Bind(new(usecase.DevChain), new(*anvil.Manager)),
)

// BlockchainSet provides chain reads and transaction submission
var BlockchainSet = wire.NewSet(
	blockchain.NewClient,
	wire.Bind(new(usecase.ChainClient), new(*blockchain.Client)),
)

// SendersSet provides the maker and taker signers
var SendersSet = wire.NewSet(
	senders.NewService,
	wire.Bind(new(usecase.AccountProvider), new(*senders.Service)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.ScenarioSelector), new(*interactive.SelectorAdapter)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	AnvilSet,
	BlockchainSet,
	SendersSet,
	InteractiveSet,
)
