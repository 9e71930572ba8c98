package chain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

var (
	admin    = common.HexToAddress("0x00000000000000000000000000000000000000A0")
	gp1      = common.HexToAddress("0x00000000000000000000000000000000000000B1")
	gp2      = common.HexToAddress("0x00000000000000000000000000000000000000B2")
	investor = common.HexToAddress("0x00000000000000000000000000000000000000C1")
	investo2 = common.HexToAddress("0x00000000000000000000000000000000000000C2")
	outsider = common.HexToAddress("0x00000000000000000000000000000000000000D1")

	factoryAddr = common.HexToAddress("0x00000000000000000000000000000000000000F0")
)

type testEnv struct {
	node      *Node
	registry  *IdentityRegistry
	module    *ComplianceModule
	factory   *FundFactory
	ledger    *InvestmentLedger
	portfolio *PortfolioRegistry
}

// newTestEnv wires the full contract set under a fixed clock, admin-owned.
func newTestEnv() *testEnv {
	node := NewNode()
	node.SetClock(func() time.Time { return time.Unix(1700000000, 0) })
	registry := NewIdentityRegistry(admin)
	module := NewComplianceModule(admin, registry)
	factory := NewFundFactory(factoryAddr, admin, registry, module)
	ledger := NewInvestmentLedger(admin, registry)
	portfolio := NewPortfolioRegistry(admin)
	node.Register(registry)
	node.Register(module)
	node.Register(factory)
	node.Register(ledger)
	node.Register(portfolio)
	return &testEnv{
		node:      node,
		registry:  registry,
		module:    module,
		factory:   factory,
		ledger:    ledger,
		portfolio: portfolio,
	}
}

// submit runs fn as admin and panics-free asserts are left to callers.
func (e *testEnv) submit(from common.Address, fn func(tx *TxContext) error) (*Receipt, error) {
	return e.node.Submit(from, fn)
}

func (e *testEnv) mustRegisterIdentity(addr common.Address, country uint16) {
	_, err := e.submit(admin, func(tx *TxContext) error {
		return e.registry.RegisterIdentity(tx, addr, country)
	})
	if err != nil {
		panic(err)
	}
}

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}
