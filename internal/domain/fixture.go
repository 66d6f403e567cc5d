package domain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Account is a funded test account on the fork
type Account struct {
	Name    string         `json:"name"`
	Address common.Address `json:"address"`
}

// AccountSigner is a test account holding its own key
type AccountSigner interface {
	Address() common.Address
	SignTypedData(ctx context.Context, data apitypes.TypedData) ([]byte, error)
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// Fixture is the prepared chain state every benchmark of a scenario starts from
type Fixture struct {
	ChainID   *big.Int
	Maker     Account
	Taker     Account
	Tokens    map[string]Token
	Contracts Contracts
	// BlockTime is the timestamp of the latest block after setup
	BlockTime uint64
	// SnapshotID is the evm_snapshot that later loads revert to
	SnapshotID string
}

// Submission is the outcome of one benchmark transaction
type Submission struct {
	TxHash  common.Hash
	GasUsed uint64
}
