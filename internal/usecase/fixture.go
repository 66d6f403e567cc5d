package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/trebuchet-org/gasbench/internal/calldata"
	"github.com/trebuchet-org/gasbench/internal/domain"
	"github.com/trebuchet-org/gasbench/internal/domain/config"
)

// Account names resolved through AccountProvider
const (
	MakerAccount = "maker"
	TakerAccount = "taker"
)

// gas money for impersonated accounts, which are often contracts without ETH
var impersonationBalance = new(big.Int).Exp(big.NewInt(10), big.NewInt(19), nil)

// Permit2 allowances are uint160 amounts expiring at a uint48 timestamp
var (
	maxUint160 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 160), big.NewInt(1))
	maxUint48  = uint64(1)<<48 - 1
)

// FixtureLoader prepares the chain state a scenario is benchmarked from and keeps one
// snapshot per prepared scenario, so every protocol run starts from identical state.
//
// Snapshots are consumed by a revert and reverting also drops every later snapshot,
// so the loader keeps its entries ordered and truncates behind a revert.
type FixtureLoader struct {
	chain    ChainClient
	dev      DevChain
	accounts AccountProvider
	config   *config.RuntimeConfig
	log      *slog.Logger

	entries []fixtureEntry
}

type fixtureEntry struct {
	scenario string
	fixture  domain.Fixture
}

// NewFixtureLoader creates a new fixture loader
func NewFixtureLoader(
	chain ChainClient,
	dev DevChain,
	accounts AccountProvider,
	cfg *config.RuntimeConfig,
	log *slog.Logger,
) *FixtureLoader {
	return &FixtureLoader{
		chain:    chain,
		dev:      dev,
		accounts: accounts,
		config:   cfg,
		log:      log.With("component", "fixture"),
	}
}

// Load returns the fixture of scenario with the chain reverted to its freshly prepared state.
// The first load of a scenario runs the setup; later loads only revert.
func (l *FixtureLoader) Load(ctx context.Context, node *domain.AnvilInstance, scenario domain.Scenario) (*domain.Fixture, error) {
	for i, e := range l.entries {
		if e.scenario == scenario.Name {
			return l.restore(ctx, node, i)
		}
	}

	if n := len(l.entries); n > 0 {
		if _, err := l.restore(ctx, node, n-1); err != nil {
			return nil, err
		}
	}

	fx, err := l.setup(ctx, node, scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to set up scenario %s: %w", scenario.Name, err)
	}
	id, err := l.dev.TakeSnapshot(ctx, node)
	if err != nil {
		return nil, err
	}
	fx.SnapshotID = id
	l.entries = append(l.entries, fixtureEntry{scenario: scenario.Name, fixture: *fx})

	l.log.Debug("fixture ready", "scenario", scenario.Name, "snapshot", id)
	out := *fx
	return &out, nil
}

// Reset forgets every prepared scenario
func (l *FixtureLoader) Reset() {
	l.entries = nil
}

func (l *FixtureLoader) restore(ctx context.Context, node *domain.AnvilInstance, i int) (*domain.Fixture, error) {
	entry := &l.entries[i]
	if err := l.dev.RevertSnapshot(ctx, node, entry.fixture.SnapshotID); err != nil {
		return nil, err
	}
	l.entries = l.entries[:i+1]

	id, err := l.dev.TakeSnapshot(ctx, node)
	if err != nil {
		return nil, err
	}
	entry.fixture.SnapshotID = id

	blockTime, err := l.chain.BlockTime(ctx)
	if err != nil {
		return nil, err
	}
	entry.fixture.BlockTime = blockTime

	out := entry.fixture
	return &out, nil
}

func (l *FixtureLoader) setup(ctx context.Context, node *domain.AnvilInstance, scenario domain.Scenario) (*domain.Fixture, error) {
	contracts := l.config.Contracts

	// nothing may change on the fork before every address is known to hold code
	if err := l.checkContracts(ctx, scenario, contracts); err != nil {
		return nil, err
	}

	maker, err := l.accounts.GetSender(MakerAccount)
	if err != nil {
		return nil, err
	}
	taker, err := l.accounts.GetSender(TakerAccount)
	if err != nil {
		return nil, err
	}
	signers := []AccountSigner{maker, taker}
	names := []string{MakerAccount, TakerAccount}

	if err := l.fund(ctx, node, scenario, contracts, signers); err != nil {
		return nil, err
	}

	byName := map[string]AccountSigner{MakerAccount: maker, TakerAccount: taker}
	for _, a := range Approvals(scenario, contracts) {
		if err := l.approve(ctx, byName[a.Owner], a); err != nil {
			return nil, err
		}
	}

	if scenario.Includes(domain.ProtocolCoW) {
		if err := l.registerSolver(ctx, node, contracts.GPv2Settlement, taker.Address()); err != nil {
			return nil, err
		}
	}

	// the first transaction of an account pays for touching it; keep that out of the measurement
	for i, s := range signers {
		if _, err := l.chain.Send(ctx, s, Call{Label: "warm up " + names[i], To: s.Address()}); err != nil {
			return nil, err
		}
	}

	blockTime, err := l.chain.BlockTime(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.Fixture{
		ChainID:   new(big.Int).SetUint64(l.config.ChainID),
		Maker:     domain.Account{Name: MakerAccount, Address: maker.Address()},
		Taker:     domain.Account{Name: TakerAccount, Address: taker.Address()},
		Tokens:    map[string]domain.Token{scenario.Sell.Symbol: scenario.Sell, scenario.Buy.Symbol: scenario.Buy},
		Contracts: contracts,
		BlockTime: blockTime,
	}, nil
}

func (l *FixtureLoader) checkContracts(ctx context.Context, scenario domain.Scenario, contracts domain.Contracts) error {
	required := contracts.Required(scenario.Protocols)
	if scenario.Includes(domain.ProtocolCoW) {
		required = append(required, domain.NamedContract{Name: "CoW GPv2VaultRelayer", Address: contracts.GPv2VaultRelayer})
	}
	required = append(required,
		domain.NamedContract{Name: scenario.Sell.Symbol, Address: scenario.Sell.Address},
		domain.NamedContract{Name: scenario.Buy.Symbol, Address: scenario.Buy.Address},
	)

	for _, c := range required {
		exists, reason, err := l.chain.CheckContract(ctx, c.Address)
		if err != nil {
			return err
		}
		if !exists {
			return &domain.ContractNotFoundError{Name: c.Name, Address: c.Address, Reason: reason}
		}
	}
	return nil
}

// fund gives both accounts gas money and enough of both scenario tokens for either side of a trade
func (l *FixtureLoader) fund(ctx context.Context, node *domain.AnvilInstance, scenario domain.Scenario, contracts domain.Contracts, signers []AccountSigner) error {
	sides := []struct {
		token  domain.Token
		amount *big.Int
	}{
		{scenario.Sell, scenario.SellAmount},
		{scenario.Buy, scenario.BuyAmount},
	}

	eth := new(big.Int)
	if l.config.Accounts.FundETH != nil {
		eth.Set(l.config.Accounts.FundETH)
	}
	for i, side := range sides {
		amount := new(big.Int).Set(side.amount)
		if side.token.Fund != nil && side.token.Fund.Cmp(amount) > 0 {
			amount.Set(side.token.Fund)
		}
		sides[i].amount = amount
		if side.token.Address == contracts.WETH {
			eth.Add(eth, amount)
		}
	}

	for _, s := range signers {
		if err := l.dev.SetBalance(ctx, node, s.Address(), eth); err != nil {
			return err
		}
	}

	for _, side := range sides {
		if side.token.Address == contracts.WETH {
			if err := l.wrap(ctx, contracts.WETH, side.amount, signers); err != nil {
				return err
			}
			continue
		}
		if err := l.transferFromWhale(ctx, node, side.token, side.amount, signers); err != nil {
			return err
		}
	}
	return nil
}

func (l *FixtureLoader) wrap(ctx context.Context, weth common.Address, amount *big.Int, signers []AccountSigner) error {
	data, err := calldata.WETHDeposit()
	if err != nil {
		return err
	}
	for _, s := range signers {
		if _, err := l.chain.Send(ctx, s, Call{Label: "wrap WETH", To: weth, Data: data, Value: amount}); err != nil {
			return err
		}
	}
	return nil
}

func (l *FixtureLoader) transferFromWhale(ctx context.Context, node *domain.AnvilInstance, token domain.Token, amount *big.Int, signers []AccountSigner) (err error) {
	if token.Whale == (common.Address{}) {
		return fmt.Errorf("token %s has no whale to fund test accounts from", token.Symbol)
	}
	if err := l.dev.SetBalance(ctx, node, token.Whale, impersonationBalance); err != nil {
		return err
	}
	if err := l.dev.Impersonate(ctx, node, token.Whale); err != nil {
		return err
	}
	defer func() {
		if stopErr := l.dev.StopImpersonating(ctx, node, token.Whale); stopErr != nil && err == nil {
			err = stopErr
		}
	}()

	for _, s := range signers {
		data, err := calldata.ERC20Transfer(s.Address(), amount)
		if err != nil {
			return err
		}
		label := fmt.Sprintf("fund %s from whale", token.Symbol)
		if _, err := l.chain.SendAs(ctx, Call{Label: label, From: token.Whale, To: token.Address, Data: data}); err != nil {
			return err
		}
	}
	l.log.Debug("funded accounts", "token", token.Symbol, "whale", token.Whale.Hex(), "amount", amount)
	return nil
}

// Approval is an allowance one test account grants a protocol contract
type Approval struct {
	Owner   string
	Token   domain.Token
	Spender domain.NamedContract
	// Permit2Spender is set when the allowance is granted through Permit2 on top of the ERC20 approval
	Permit2Spender common.Address
}

// Approvals lists the allowances the protocols of scenario need. The maker always sells the
// sell token; the taker pays with the sell token on swaps and with the buy token on fills.
func Approvals(scenario domain.Scenario, c domain.Contracts) []Approval {
	var out []Approval
	seen := map[string]bool{}
	add := func(a Approval) {
		key := fmt.Sprintf("%s/%s/%s/%s", a.Owner, a.Token.Address.Hex(), a.Spender.Address.Hex(), a.Permit2Spender.Hex())
		if !seen[key] {
			seen[key] = true
			out = append(out, a)
		}
	}
	maker := func(spender domain.NamedContract) {
		add(Approval{Owner: MakerAccount, Token: scenario.Sell, Spender: spender})
	}
	fill := func(spender domain.NamedContract) {
		add(Approval{Owner: TakerAccount, Token: scenario.Buy, Spender: spender})
	}

	for _, p := range scenario.Protocols {
		target := c.Target(p)
		switch p {
		case domain.ProtocolOneInchUnoswap:
			add(Approval{Owner: TakerAccount, Token: scenario.Sell, Spender: target})
		case domain.ProtocolUniswapUniversal:
			add(Approval{
				Owner:          TakerAccount,
				Token:          scenario.Sell,
				Spender:        domain.NamedContract{Name: "Permit2", Address: c.Permit2},
				Permit2Spender: c.UniversalRouter,
			})
		case domain.ProtocolUniswapX:
			maker(domain.NamedContract{Name: "Permit2", Address: c.Permit2})
			fill(target)
		case domain.ProtocolCoW:
			maker(domain.NamedContract{Name: "CoW GPv2VaultRelayer", Address: c.GPv2VaultRelayer})
			fill(target)
		case domain.ProtocolOneInchLOP, domain.ProtocolZeroExRFQ, domain.ProtocolParaswapRFQ:
			maker(target)
			fill(target)
		}
	}
	return out
}

func (l *FixtureLoader) approve(ctx context.Context, owner AccountSigner, a Approval) error {
	data, err := calldata.ERC20Approve(a.Spender.Address, math.MaxBig256)
	if err != nil {
		return err
	}
	label := fmt.Sprintf("%s approves %s for %s", a.Owner, a.Spender.Name, a.Token.Symbol)
	if _, err := l.chain.Send(ctx, owner, Call{Label: label, To: a.Token.Address, Data: data}); err != nil {
		return err
	}

	if a.Permit2Spender == (common.Address{}) {
		return nil
	}
	data, err = calldata.Permit2Approve(a.Token.Address, a.Permit2Spender, maxUint160, maxUint48)
	if err != nil {
		return err
	}
	label = fmt.Sprintf("%s permits %s for %s", a.Owner, a.Permit2Spender.Hex(), a.Token.Symbol)
	_, err = l.chain.Send(ctx, owner, Call{Label: label, To: a.Spender.Address, Data: data})
	return err
}

// registerSolver allow-lists solver on the settlement's authenticator by impersonating its manager
func (l *FixtureLoader) registerSolver(ctx context.Context, node *domain.AnvilInstance, settlement, solver common.Address) (err error) {
	authenticator, err := l.callAddress(ctx, "authenticator", settlement, calldata.GPv2Authenticator)
	if err != nil {
		return err
	}
	registered, err := l.isSolver(ctx, authenticator, solver)
	if err != nil || registered {
		return err
	}

	manager, err := l.callAddress(ctx, "manager", authenticator, calldata.GPv2Manager)
	if err != nil {
		return err
	}
	if err := l.dev.SetBalance(ctx, node, manager, impersonationBalance); err != nil {
		return err
	}
	if err := l.dev.Impersonate(ctx, node, manager); err != nil {
		return err
	}
	defer func() {
		if stopErr := l.dev.StopImpersonating(ctx, node, manager); stopErr != nil && err == nil {
			err = stopErr
		}
	}()

	data, err := calldata.GPv2AddSolver(solver)
	if err != nil {
		return err
	}
	if _, err := l.chain.SendAs(ctx, Call{Label: "addSolver", From: manager, To: authenticator, Data: data}); err != nil {
		return err
	}

	registered, err = l.isSolver(ctx, authenticator, solver)
	if err != nil {
		return err
	}
	if !registered {
		return fmt.Errorf("%s is not a solver after addSolver", solver.Hex())
	}
	l.log.Debug("registered solver", "solver", solver.Hex(), "manager", manager.Hex())
	return nil
}

func (l *FixtureLoader) callAddress(ctx context.Context, label string, to common.Address, encode func() ([]byte, error)) (common.Address, error) {
	data, err := encode()
	if err != nil {
		return common.Address{}, err
	}
	out, err := l.chain.Call(ctx, Call{Label: label, To: to, Data: data})
	if err != nil {
		return common.Address{}, err
	}
	return calldata.DecodeAddress(out)
}

func (l *FixtureLoader) isSolver(ctx context.Context, authenticator, solver common.Address) (bool, error) {
	data, err := calldata.GPv2IsSolver(solver)
	if err != nil {
		return false, err
	}
	out, err := l.chain.Call(ctx, Call{Label: "isSolver", To: authenticator, Data: data})
	if err != nil {
		return false, err
	}
	return calldata.DecodeBool(out)
}
