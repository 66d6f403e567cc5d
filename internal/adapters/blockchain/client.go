package blockchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/trebuchet-org/gasbench/internal/domain"
	"github.com/trebuchet-org/gasbench/internal/usecase"
)

const erc20BalanceABI = `[{"type":"function","name":"balanceOf","stateMutability":"view",` +
	`"inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}]`

var erc20ABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(erc20BalanceABI))
	if err != nil {
		panic(err)
	}
	return parsed
}()

// gasHeadroom is added to every estimate, in percent
const gasHeadroom = 25

// Client implements the ChainClient interface using ethclient
type Client struct {
	client  *ethclient.Client
	chainID *big.Int
	log     *slog.Logger
}

// NewClient creates a new chain client
func NewClient(log *slog.Logger) *Client {
	return &Client{log: log.With("component", "chain")}
}

// Connect establishes connection to the node and verifies it serves chainID
func (c *Client) Connect(ctx context.Context, rpcURL string, chainID uint64) error {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RPC: %w", err)
	}

	networkChainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return fmt.Errorf("failed to get chain ID: %w", err)
	}

	// If chainID was 0, use the network's chain ID
	if chainID != 0 && networkChainID.Uint64() != chainID {
		client.Close()
		return fmt.Errorf("%w: expected %d, got %d", domain.ErrChainIDMismatch, chainID, networkChainID.Uint64())
	}

	if c.client != nil {
		c.client.Close()
	}
	c.client = client
	c.chainID = networkChainID
	return nil
}

// Close releases the RPC connection
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
}

func (c *Client) connected() error {
	if c.client == nil {
		return fmt.Errorf("not connected to blockchain")
	}
	return nil
}

// CheckContract checks if a contract exists at the given address
func (c *Client) CheckContract(ctx context.Context, address common.Address) (exists bool, reason string, err error) {
	if err := c.connected(); err != nil {
		return false, "", err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	code, err := c.client.CodeAt(ctx, address, nil)
	if err != nil {
		return false, "", fmt.Errorf("failed to check code at %s: %w", address.Hex(), err)
	}

	if len(code) == 0 {
		return false, "no code at address", nil
	}

	return true, "", nil
}

// Send signs a dynamic fee transaction with from's key, submits it and waits for the receipt
func (c *Client) Send(ctx context.Context, from usecase.AccountSigner, call usecase.Call) (*domain.Submission, error) {
	if err := c.connected(); err != nil {
		return nil, err
	}
	call.From = from.Address()

	gas, err := c.estimate(ctx, call)
	if err != nil {
		return nil, err
	}

	nonce, err := c.client.PendingNonceAt(ctx, call.From)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce for %s: %w", call.From.Hex(), err)
	}
	tip, err := c.client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest gas tip: %w", err)
	}
	head, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest header: %w", err)
	}
	feeCap := new(big.Int).Set(tip)
	if head.BaseFee != nil {
		feeCap.Add(feeCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &call.To,
		Value:     valueOf(call),
		Data:      call.Data,
	})
	signed, err := from.SignTx(tx, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign %s: %w", call.Label, err)
	}
	if err := c.client.SendTransaction(ctx, signed); err != nil {
		return nil, &domain.RevertedError{Label: call.Label, Reason: revertReason(err)}
	}

	return c.wait(ctx, call.Label, signed)
}

// SendAs submits call from an impersonated account and waits for the receipt
func (c *Client) SendAs(ctx context.Context, call usecase.Call) (*domain.Submission, error) {
	if err := c.connected(); err != nil {
		return nil, err
	}

	args := map[string]interface{}{
		"from":  call.From,
		"to":    call.To,
		"data":  hexutil.Bytes(call.Data),
		"value": (*hexutil.Big)(valueOf(call)),
	}
	var hash common.Hash
	if err := c.client.Client().CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return nil, &domain.RevertedError{Label: call.Label, Reason: revertReason(err)}
	}

	tx, _, err := c.client.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", hash.Hex(), err)
	}
	return c.wait(ctx, call.Label, tx)
}

func (c *Client) wait(ctx context.Context, label string, tx *types.Transaction) (*domain.Submission, error) {
	receipt, err := bind.WaitMined(ctx, c.client, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for %s (%s): %w", label, tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, &domain.RevertedError{Label: label, TxHash: tx.Hash(), GasUsed: receipt.GasUsed}
	}

	c.log.Debug("transaction mined", "label", label, "tx", tx.Hash().Hex(), "gas", receipt.GasUsed)
	return &domain.Submission{TxHash: tx.Hash(), GasUsed: receipt.GasUsed}, nil
}

func (c *Client) estimate(ctx context.Context, call usecase.Call) (uint64, error) {
	gas, err := c.client.EstimateGas(ctx, callMsg(call))
	if err != nil {
		return 0, &domain.RevertedError{Label: call.Label, Reason: revertReason(err)}
	}
	return gas + gas*gasHeadroom/100, nil
}

// Call executes call against the latest block without submitting it
func (c *Client) Call(ctx context.Context, call usecase.Call) ([]byte, error) {
	if err := c.connected(); err != nil {
		return nil, err
	}
	out, err := c.client.CallContract(ctx, callMsg(call), nil)
	if err != nil {
		return nil, &domain.RevertedError{Label: call.Label, Reason: revertReason(err)}
	}
	return out, nil
}

// TokenBalance returns the ERC20 balance of account
func (c *Client) TokenBalance(ctx context.Context, token, account common.Address) (*big.Int, error) {
	if err := c.connected(); err != nil {
		return nil, err
	}
	contract := bind.NewBoundContract(token, erc20ABI, c.client, c.client, c.client)

	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", account); err != nil {
		return nil, fmt.Errorf("failed to read balance of %s on %s: %w", account.Hex(), token.Hex(), err)
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

// BlockTime returns the timestamp of the latest block
func (c *Client) BlockTime(ctx context.Context) (uint64, error) {
	if err := c.connected(); err != nil {
		return 0, err
	}
	head, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest header: %w", err)
	}
	return head.Time, nil
}

func callMsg(call usecase.Call) ethereum.CallMsg {
	to := call.To
	return ethereum.CallMsg{From: call.From, To: &to, Data: call.Data, Value: valueOf(call)}
}

func valueOf(call usecase.Call) *big.Int {
	if call.Value == nil {
		return new(big.Int)
	}
	return call.Value
}

// revertReason extracts the Error(string) message a node attaches to a failed call
func revertReason(err error) string {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if s, ok := dataErr.ErrorData().(string); ok {
			if data, decodeErr := hexutil.Decode(s); decodeErr == nil {
				if reason, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
					return reason
				}
				if len(data) >= 4 {
					return fmt.Sprintf("%s (selector %s)", err.Error(), hexutil.Encode(data[:4]))
				}
			}
		}
	}
	return err.Error()
}

// Ensure the adapter implements the interface
var _ usecase.ChainClient = (*Client)(nil)
