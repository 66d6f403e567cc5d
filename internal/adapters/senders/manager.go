package senders

import (
	"fmt"
	"strings"

	"github.com/trebuchet-org/gasbench/internal/domain"
	"github.com/trebuchet-org/gasbench/internal/domain/config"
)

// Account names the benchmark uses
const (
	Maker = "maker"
	Taker = "taker"
)

// Anvil's default dev accounts #1 and #2
const (
	DefaultMakerKey = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d" //nolint:gosec // public anvil dev key
	DefaultTakerKey = "0x5de4111afa1a4b94908f83103eb1f1706367c2e68ca870fc3fb9a804cdab365a" //nolint:gosec // public anvil dev key
)

// Service manages the signing accounts of a benchmark run
type Service struct {
	signers map[string]*KeySigner
}

// NewService creates the maker and taker signers from the runtime configuration
func NewService(cfg *config.RuntimeConfig) (*Service, error) {
	s := &Service{signers: make(map[string]*KeySigner)}

	makerKey, takerKey := cfg.Accounts.MakerKey, cfg.Accounts.TakerKey
	if makerKey == "" {
		makerKey = DefaultMakerKey
	}
	if takerKey == "" {
		takerKey = DefaultTakerKey
	}

	if err := s.add(Maker, makerKey); err != nil {
		return nil, err
	}
	if err := s.add(Taker, takerKey); err != nil {
		return nil, err
	}
	if s.signers[Maker].Address() == s.signers[Taker].Address() {
		return nil, fmt.Errorf("maker and taker must use different keys")
	}
	return s, nil
}

func (s *Service) add(name, key string) error {
	if !isValidPrivateKey(key) {
		return fmt.Errorf("invalid private key format for %s account", name)
	}
	signer, err := NewKeySigner(name, key)
	if err != nil {
		return err
	}
	s.signers[name] = signer
	return nil
}

// GetSender retrieves a signer by account name
func (s *Service) GetSender(name string) (domain.AccountSigner, error) {
	if signer, ok := s.signers[name]; ok {
		return signer, nil
	}

	// Try case-insensitive lookup
	nameLower := strings.ToLower(name)
	for key, signer := range s.signers {
		if strings.ToLower(key) == nameLower {
			return signer, nil
		}
	}

	return nil, fmt.Errorf("account '%s' not found", name)
}

func isValidPrivateKey(key string) bool {
	key = strings.TrimPrefix(key, "0x")

	if len(key) != 64 {
		return false
	}

	for _, c := range key {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}

	return true
}
