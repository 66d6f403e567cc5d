package senders

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/gasbench/internal/domain/config"
)

func mailTypedData() apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
			},
			"Mail": {
				{Name: "to", Type: "address"},
				{Name: "contents", Type: "string"},
			},
		},
		PrimaryType: "Mail",
		Domain: apitypes.TypedDataDomain{
			Name: "test",
		},
		Message: apitypes.TypedDataMessage{
			"to":       "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC",
			"contents": "hello",
		},
	}
}

func TestNewKeySigner(t *testing.T) {
	s, err := NewKeySigner(Maker, DefaultMakerKey)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"), s.Address())
	assert.Equal(t, Maker, s.Name())

	_, err = NewKeySigner("bad", "0x1234")
	assert.Error(t, err)
}

func TestKeySigner_SignTypedData(t *testing.T) {
	s, err := NewKeySigner(Maker, DefaultMakerKey)
	require.NoError(t, err)

	td := mailTypedData()

	sig, err := s.SignTypedData(context.Background(), td)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	assert.Contains(t, []byte{27, 28}, sig[64])

	again, err := s.SignTypedData(context.Background(), td)
	require.NoError(t, err)
	assert.Equal(t, sig, again, "signatures must be deterministic")

	digest, _, err := apitypes.TypedDataAndHash(td)
	require.NoError(t, err)

	recoverable := append([]byte{}, sig...)
	recoverable[64] -= 27
	pub, err := crypto.SigToPub(digest, recoverable)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), crypto.PubkeyToAddress(*pub))
}

func TestKeySigner_SignTx(t *testing.T) {
	s, err := NewKeySigner(Taker, DefaultTakerKey)
	require.NoError(t, err)

	chainID := big.NewInt(1)
	to := s.Address()
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     0,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(100),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(0),
	})

	signed, err := s.SignTx(tx, chainID)
	require.NoError(t, err)

	from, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), from)
}

func TestNewService(t *testing.T) {
	svc, err := NewService(&config.RuntimeConfig{})
	require.NoError(t, err)

	maker, err := svc.GetSender("MAKER")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"), maker.Address())

	taker, err := svc.GetSender(Taker)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"), taker.Address())

	_, err = svc.GetSender("solver")
	assert.Error(t, err)
}

func TestNewService_Invalid(t *testing.T) {
	_, err := NewService(&config.RuntimeConfig{Accounts: config.AccountsConfig{MakerKey: "not-a-key"}})
	assert.Error(t, err)

	_, err = NewService(&config.RuntimeConfig{Accounts: config.AccountsConfig{MakerKey: DefaultTakerKey}})
	assert.Error(t, err)
}
