package domain

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for domain operations
var (
	// ErrMissingField is returned when a required order or scenario field is absent
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidAmount is returned when an amount is negative or does not fit its ABI type
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrPathLength is returned when a swap path does not have exactly one more token than fees
	ErrPathLength = errors.New("path/fee length mismatch")

	// ErrUnknownFlag is returned when a flag value has no fixed bit assignment
	ErrUnknownFlag = errors.New("unknown flag value")

	// ErrInvalidPool is returned when a pool reference cannot be packed
	ErrInvalidPool = errors.New("invalid pool")

	// ErrInvalidPercentage is returned when a percentage is outside [0, 100]
	ErrInvalidPercentage = errors.New("invalid percentage")

	// ErrInvalidSignature is returned when a signature has the wrong length or recovery byte
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrContractNotFound is returned when there is no code at a protocol address
	ErrContractNotFound = errors.New("contract not found")

	// ErrCallReverted is returned when a submitted transaction or call reverts
	ErrCallReverted = errors.New("call reverted")

	// ErrBalanceMismatch is returned when a fill moved a different amount than the order states
	ErrBalanceMismatch = errors.New("balance mismatch")

	// ErrUnknownProtocol is returned for protocol keys that gasbench does not benchmark
	ErrUnknownProtocol = errors.New("unknown protocol")

	// ErrUnknownScenario is returned when a scenario name is not configured
	ErrUnknownScenario = errors.New("unknown scenario")

	// ErrUnknownToken is returned when a token symbol is not configured
	ErrUnknownToken = errors.New("unknown token")

	// ErrChainIDMismatch is returned when the node reports a different chain than configured
	ErrChainIDMismatch = errors.New("chain ID mismatch")
)

// MissingFieldError reports a required field that was not supplied to an order builder
type MissingFieldError struct {
	Order string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s order: %s is required", e.Order, e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// PathLengthError reports a token path that does not match its fee list
type PathLengthError struct {
	Tokens int
	Fees   int
}

func (e *PathLengthError) Error() string {
	return fmt.Sprintf("path has %d tokens and %d fees, want tokens = fees + 1", e.Tokens, e.Fees)
}

func (e *PathLengthError) Is(target error) bool { return target == ErrPathLength }

// UnknownFlagError reports a flag value without a bit assignment
type UnknownFlagError struct {
	Flag  string
	Value string
}

func (e *UnknownFlagError) Error() string {
	return fmt.Sprintf("unknown %s value %q", e.Flag, e.Value)
}

func (e *UnknownFlagError) Is(target error) bool { return target == ErrUnknownFlag }

// ContractNotFoundError reports a stale or wrong protocol address on the fork
type ContractNotFoundError struct {
	Name    string
	Address common.Address
	Reason  string
}

func (e *ContractNotFoundError) Error() string {
	msg := fmt.Sprintf("contract not found: %s at %s", e.Name, e.Address.Hex())
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *ContractNotFoundError) Is(target error) bool { return target == ErrContractNotFound }

// RevertedError reports a transaction that was mined with a failed status or rejected on estimation
type RevertedError struct {
	Label   string
	TxHash  common.Hash
	GasUsed uint64
	Reason  string
}

func (e *RevertedError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%s: call reverted", e.Label))
	if e.TxHash != (common.Hash{}) {
		parts = append(parts, fmt.Sprintf("tx %s, gas used %d", e.TxHash.Hex(), e.GasUsed))
	}
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	return strings.Join(parts, ": ")
}

func (e *RevertedError) Is(target error) bool { return target == ErrCallReverted }

// BalanceMismatchError reports a fill whose observed balance delta differs from the order amount
type BalanceMismatchError struct {
	Account  string
	Token    string
	Expected *big.Int
	Actual   *big.Int
	// AtLeast is set when any change of Expected or more was acceptable
	AtLeast bool
}

func (e *BalanceMismatchError) Error() string {
	expected := e.Expected.String()
	if e.AtLeast {
		expected = "at least " + expected
	}
	return fmt.Sprintf("%s %s balance changed by %s, expected %s", e.Account, e.Token, e.Actual, expected)
}

func (e *BalanceMismatchError) Is(target error) bool { return target == ErrBalanceMismatch }
