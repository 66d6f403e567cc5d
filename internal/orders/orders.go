// Package orders holds what the protocol order builders share: the signer capability,
// EIP-712 domain construction, signature splitting and required-field validation.
package orders

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/trebuchet-org/gasbench/internal/domain"
)

// TypedDataSigner produces EIP-712 signatures. Builders only ever see this capability,
// never a private key.
type TypedDataSigner interface {
	Address() common.Address
	// SignTypedData returns a 65 byte r || s || v signature over the typed data hash
	SignTypedData(ctx context.Context, data apitypes.TypedData) ([]byte, error)
}

// Domain builds an EIP-712 domain. An empty version is left out of the domain entirely.
func Domain(name, version string, chainID *big.Int, verifyingContract common.Address) apitypes.TypedDataDomain {
	if chainID == nil {
		chainID = big.NewInt(1)
	}
	return apitypes.TypedDataDomain{
		Name:              name,
		Version:           version,
		ChainId:           (*math.HexOrDecimal256)(new(big.Int).Set(chainID)),
		VerifyingContract: verifyingContract.Hex(),
	}
}

// domainType lists the EIP712Domain fields present in d, in canonical order
func domainType(d apitypes.TypedDataDomain) []apitypes.Type {
	var fields []apitypes.Type
	if d.Name != "" {
		fields = append(fields, apitypes.Type{Name: "name", Type: "string"})
	}
	if d.Version != "" {
		fields = append(fields, apitypes.Type{Name: "version", Type: "string"})
	}
	if d.ChainId != nil {
		fields = append(fields, apitypes.Type{Name: "chainId", Type: "uint256"})
	}
	if d.VerifyingContract != "" {
		fields = append(fields, apitypes.Type{Name: "verifyingContract", Type: "address"})
	}
	return fields
}

// NewTypedData assembles a signing payload, adding the EIP712Domain type that matches domain
func NewTypedData(d apitypes.TypedDataDomain, primaryType string, types apitypes.Types, message apitypes.TypedDataMessage) apitypes.TypedData {
	all := apitypes.Types{"EIP712Domain": domainType(d)}
	for name, fields := range types {
		all[name] = fields
	}
	return apitypes.TypedData{
		Types:       all,
		PrimaryType: primaryType,
		Domain:      d,
		Message:     message,
	}
}

// Hash returns the EIP-712 digest of data
func Hash(data apitypes.TypedData) (common.Hash, error) {
	digest, _, err := apitypes.TypedDataAndHash(data)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to hash %s: %w", data.PrimaryType, err)
	}
	return common.BytesToHash(digest), nil
}

// Sign asks signer for a signature over data and normalizes v to 27/28
func Sign(ctx context.Context, signer TypedDataSigner, data apitypes.TypedData) ([]byte, error) {
	if signer == nil {
		return nil, &domain.MissingFieldError{Order: data.PrimaryType, Field: "signer"}
	}
	sig, err := signer.SignTypedData(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to sign %s: %w", data.PrimaryType, err)
	}
	return NormalizeV(sig)
}

// Message value helpers. apitypes encodes addresses from hex strings and nested structs from
// plain maps.

func Addr(a common.Address) string { return a.Hex() }

func Bytes(b []byte) string { return hexutil.Encode(b) }

func Bytes32(b [32]byte) string { return hexutil.Encode(b[:]) }

func Uint(v uint64) *big.Int { return new(big.Int).SetUint64(v) }

// Recover returns the address that produced sig over data
func Recover(data apitypes.TypedData, sig []byte) (common.Address, error) {
	digest, err := Hash(data)
	if err != nil {
		return common.Address{}, err
	}
	norm, err := NormalizeV(sig)
	if err != nil {
		return common.Address{}, err
	}
	norm[64] -= 27
	pub, err := crypto.SigToPub(digest.Bytes(), norm)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// SignAs signs data and fails when signer is not the expected account
func SignAs(ctx context.Context, signer TypedDataSigner, want common.Address, data apitypes.TypedData) ([]byte, error) {
	if signer != nil && signer.Address() != want {
		return nil, fmt.Errorf("%s must be signed by %s, got signer %s", data.PrimaryType, want.Hex(), signer.Address().Hex())
	}
	return Sign(ctx, signer, data)
}
