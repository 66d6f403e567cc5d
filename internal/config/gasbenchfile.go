package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the project configuration file gasbench looks for
const ConfigFileName = "gasbench.toml"

// gasbenchFile is the raw gasbench.toml structure
type gasbenchFile struct {
	Fork      forkSection                `toml:"fork"`
	Accounts  accountsSection            `toml:"accounts"`
	Tokens    map[string]tokenSection    `toml:"tokens"`
	Protocols map[string]protocolSection `toml:"protocols"`
	Scenarios []scenarioSection          `toml:"scenarios"`
}

type forkSection struct {
	Name        string `toml:"name"`
	RPCURL      string `toml:"rpc_url"`
	BlockNumber uint64 `toml:"block_number"`
	ChainID     uint64 `toml:"chain_id"`
	Port        int    `toml:"port"`
}

type accountsSection struct {
	MakerKey string `toml:"maker_key"`
	TakerKey string `toml:"taker_key"`
	FundETH  string `toml:"fund_eth"`
}

type tokenSection struct {
	Address  string `toml:"address"`
	Decimals *uint8 `toml:"decimals"`
	Whale    string `toml:"whale"`
	Fund     string `toml:"fund"`
}

type protocolSection struct {
	Address string `toml:"address"`
}

type scenarioSection struct {
	Name       string   `toml:"name"`
	Sell       string   `toml:"sell"`
	Buy        string   `toml:"buy"`
	SellAmount string   `toml:"sell_amount"`
	BuyAmount  string   `toml:"buy_amount"`
	Pool       string   `toml:"pool"`
	Fee        uint32   `toml:"fee"`
	Slippage   *uint64  `toml:"slippage"`
	Protocols  []string `toml:"protocols"`
}

// loadGasbenchFile decodes gasbench.toml and expands environment references.
// Returns (nil, nil) if the file doesn't exist.
func loadGasbenchFile(path string) (*gasbenchFile, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	var raw gasbenchFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in %s", undecoded[0].String(), filepath.Base(path))
	}

	if err := raw.expand(); err != nil {
		return nil, fmt.Errorf("failed to expand %s: %w", filepath.Base(path), err)
	}
	return &raw, nil
}

// expand resolves ${VAR} references in the values that commonly carry secrets or endpoints
func (f *gasbenchFile) expand() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"fork.rpc_url", &f.Fork.RPCURL},
		{"accounts.maker_key", &f.Accounts.MakerKey},
		{"accounts.taker_key", &f.Accounts.TakerKey},
	}
	for _, field := range fields {
		if *field.value == "" {
			continue
		}
		expanded, err := expandValue(field.name, *field.value)
		if err != nil {
			return err
		}
		*field.value = expanded
	}
	return nil
}

// merge overlays f on top of base. Tokens and protocol addresses merge by key;
// scenarios replace the base list when f defines any.
func (f *gasbenchFile) merge(base *gasbenchFile) *gasbenchFile {
	out := *base

	if f.Fork.Name != "" {
		out.Fork.Name = f.Fork.Name
	}
	if f.Fork.RPCURL != "" {
		out.Fork.RPCURL = f.Fork.RPCURL
	}
	if f.Fork.BlockNumber != 0 {
		out.Fork.BlockNumber = f.Fork.BlockNumber
	}
	if f.Fork.ChainID != 0 {
		out.Fork.ChainID = f.Fork.ChainID
	}
	if f.Fork.Port != 0 {
		out.Fork.Port = f.Fork.Port
	}

	if f.Accounts.MakerKey != "" {
		out.Accounts.MakerKey = f.Accounts.MakerKey
	}
	if f.Accounts.TakerKey != "" {
		out.Accounts.TakerKey = f.Accounts.TakerKey
	}
	if f.Accounts.FundETH != "" {
		out.Accounts.FundETH = f.Accounts.FundETH
	}

	out.Tokens = make(map[string]tokenSection, len(base.Tokens)+len(f.Tokens))
	for symbol, token := range base.Tokens {
		out.Tokens[strings.ToUpper(symbol)] = token
	}
	for symbol, token := range f.Tokens {
		symbol = strings.ToUpper(symbol)
		if existing, ok := out.Tokens[symbol]; ok {
			token = existing.overlay(token)
		}
		out.Tokens[symbol] = token
	}

	out.Protocols = make(map[string]protocolSection, len(base.Protocols)+len(f.Protocols))
	for key, p := range base.Protocols {
		out.Protocols[key] = p
	}
	for key, p := range f.Protocols {
		out.Protocols[key] = p
	}

	if len(f.Scenarios) > 0 {
		out.Scenarios = f.Scenarios
	}
	return &out
}

func (t tokenSection) overlay(o tokenSection) tokenSection {
	if o.Address != "" {
		t.Address = o.Address
	}
	if o.Decimals != nil {
		t.Decimals = o.Decimals
	}
	if o.Whale != "" {
		t.Whale = o.Whale
	}
	if o.Fund != "" {
		t.Fund = o.Fund
	}
	return t
}
