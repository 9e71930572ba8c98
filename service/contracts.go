package service

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fundchain/chain"
)

// ErrNotInitialized is returned by every adapter call made before the facade
// connected to its manifest and network.
var ErrNotInitialized = errors.New("contract service not initialized")

// ErrEventNotFound wraps a missing expected event in a receipt; an
// integration fault, not a user input problem.
var ErrEventNotFound = errors.New("event not found in receipt")

// Config is the environment-derived contract service configuration.
type Config struct {
	RPCURL       string
	ChainID      int64
	PrivateKey   string
	Mnemonic     string
	ManifestPath string
}

// Contracts is the top-level contract service facade. Initialization is
// non-fatal by design: a missing manifest or unreachable network leaves the
// facade uninitialized and the rest of the application boots with
// blockchain-dependent endpoints disabled.
type Contracts struct {
	mu          sync.Mutex
	cfg         Config
	initialized bool

	manifest   *Manifest
	signerKey  *ecdsa.PrivateKey
	signerAddr common.Address
	sink       EventSink

	node      *chain.Node
	registry  *chain.IdentityRegistry
	module    *chain.ComplianceModule
	factory   *chain.FundFactory
	ledger    *chain.InvestmentLedger
	portfolio *chain.PortfolioRegistry
}

func New(cfg Config) *Contracts {
	return &Contracts{cfg: cfg}
}

// Init loads the deployment manifest, resolves the signer and wires the
// contract bindings. Errors are logged and swallowed; callers check
// IsInitialized.
func (c *Contracts) Init() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return
	}

	manifest, err := LoadManifest(c.cfg.ManifestPath)
	if err != nil {
		log.Printf("contract service disabled: %v", err)
		return
	}

	key, err := resolveSignerKey(c.cfg.PrivateKey, c.cfg.Mnemonic)
	if err != nil {
		log.Printf("contract service disabled: %v", err)
		return
	}

	if c.cfg.RPCURL != "" {
		client, err := ethclient.Dial(c.cfg.RPCURL)
		if err != nil {
			log.Printf("contract service disabled: dial %s: %v", c.cfg.RPCURL, err)
			return
		}
		chainID, err := client.ChainID(context.Background())
		client.Close()
		if err != nil {
			log.Printf("contract service disabled: chain id query: %v", err)
			return
		}
		if c.cfg.ChainID != 0 && chainID.Int64() != c.cfg.ChainID {
			// logged only, not enforced
			log.Printf("warning: RPC chain id %d does not match expected %d", chainID.Int64(), c.cfg.ChainID)
		}
	}

	c.manifest = manifest
	c.signerKey = key
	c.signerAddr = crypto.PubkeyToAddress(key.PublicKey)
	c.wireContracts()
	c.initialized = true
	log.Printf("contract service initialized: network=%s signer=%s", manifest.Network, c.signerAddr.Hex())
}

// wireContracts stands up the embedded contract set at the manifest
// addresses, owned by the operator signer.
func (c *Contracts) wireContracts() {
	factoryAddr := common.HexToAddress(c.manifestAddress(ContractFundFactory))

	c.node = chain.NewNode()
	c.registry = chain.NewIdentityRegistry(c.signerAddr)
	c.module = chain.NewComplianceModule(c.signerAddr, c.registry)
	c.factory = chain.NewFundFactory(factoryAddr, c.signerAddr, c.registry, c.module)
	c.ledger = chain.NewInvestmentLedger(c.signerAddr, c.registry)
	c.portfolio = chain.NewPortfolioRegistry(c.signerAddr)

	c.node.Register(c.registry)
	c.node.Register(c.module)
	c.node.Register(c.factory)
	c.node.Register(c.ledger)
	c.node.Register(c.portfolio)
}

func (c *Contracts) manifestAddress(name string) string {
	addr, err := c.manifest.Address(name)
	if err != nil {
		return ""
	}
	return addr
}

func (c *Contracts) IsInitialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

func (c *Contracts) ensure() error {
	if !c.IsInitialized() {
		return ErrNotInitialized
	}
	return nil
}

// Signer returns the operator address transactions are signed with.
func (c *Contracts) Signer() common.Address {
	return c.signerAddr
}

func (c *Contracts) Identity() *IdentityService {
	return &IdentityService{c: c}
}

func (c *Contracts) Funds() *FundService {
	return &FundService{c: c}
}

func (c *Contracts) Tokens() *TokenService {
	return &TokenService{c: c}
}

func (c *Contracts) Investments() *InvestmentService {
	return &InvestmentService{c: c}
}

func (c *Contracts) Portfolio() *PortfolioService {
	return &PortfolioService{c: c}
}

// EventSink receives the decoded events of every committed transaction.
// The backend plugs in its audit-log repository here.
type EventSink interface {
	RecordEvents(txHash string, blockNumber uint64, events []chain.Event)
}

func (c *Contracts) SetEventSink(sink EventSink) {
	c.mu.Lock()
	c.sink = sink
	c.mu.Unlock()
}

// submit runs one transaction and awaits its receipt.
func (c *Contracts) submit(from common.Address, fn func(tx *chain.TxContext) error) (*chain.Receipt, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	rcpt, err := c.node.Submit(from, fn)
	if err != nil {
		return nil, err
	}
	if c.sink != nil && len(rcpt.Events) > 0 {
		c.sink.RecordEvents(rcpt.TxHash.Hex(), rcpt.BlockNumber, rcpt.Events)
	}
	return rcpt, nil
}

// query runs fn under the node's read lock so read adapters do not race a
// concurrent Submit.
func (c *Contracts) query(fn func()) error {
	if err := c.ensure(); err != nil {
		return err
	}
	c.node.Query(fn)
	return nil
}

// requireEvent locates a named event in a receipt or fails with a
// descriptive integration error.
func requireEvent(rcpt *chain.Receipt, name string) (*chain.Event, error) {
	ev := rcpt.FindEvent(name)
	if ev == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrEventNotFound)
	}
	return ev, nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}
