package chain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type complianceConfig struct {
	restricted         bool
	maxHolders         int // 0 = unlimited
	minHoldingPeriod   time.Duration
	accreditedRequired bool
	allowedCountries   map[uint16]bool
	holderCount        int
}

// ComplianceModule holds per-token transfer restrictions and evaluates them
// before any fund-token movement. Configuration mutators are owner-only; the
// check itself is pure.
type ComplianceModule struct {
	owner    common.Address
	registry *IdentityRegistry
	tokens   map[common.Address]*complianceConfig
}

func NewComplianceModule(owner common.Address, registry *IdentityRegistry) *ComplianceModule {
	return &ComplianceModule{
		owner:    owner,
		registry: registry,
		tokens:   make(map[common.Address]*complianceConfig),
	}
}

func (m *ComplianceModule) onlyOwner(tx *TxContext) error {
	if tx.Caller != m.owner {
		return revert(ErrUnauthorized, "caller is not the compliance owner")
	}
	return nil
}

func (m *ComplianceModule) config(token common.Address) *complianceConfig {
	cfg, ok := m.tokens[token]
	if !ok {
		cfg = &complianceConfig{allowedCountries: make(map[uint16]bool)}
		m.tokens[token] = cfg
	}
	return cfg
}

var zeroConfig = complianceConfig{}

// configRead is the query-path counterpart of config: it never allocates, so
// reads stay safe under the node's read lock.
func (m *ComplianceModule) configRead(token common.Address) *complianceConfig {
	if cfg, ok := m.tokens[token]; ok {
		return cfg
	}
	return &zeroConfig
}

// initToken is called by the factory at deployment. Factory-created tokens
// start restricted: transfers require verified parties from the first block.
func (m *ComplianceModule) initToken(token common.Address) {
	m.config(token).restricted = true
}

func (m *ComplianceModule) SetRestricted(tx *TxContext, token common.Address, restricted bool) error {
	if err := m.onlyOwner(tx); err != nil {
		return err
	}
	m.config(token).restricted = restricted
	return nil
}

func (m *ComplianceModule) SetMaxHolders(tx *TxContext, token common.Address, max int) error {
	if err := m.onlyOwner(tx); err != nil {
		return err
	}
	if max < 0 {
		return revert(ErrInvalidParameter, "max holders is negative")
	}
	m.config(token).maxHolders = max
	return nil
}

func (m *ComplianceModule) SetMinHoldingPeriod(tx *TxContext, token common.Address, d time.Duration) error {
	if err := m.onlyOwner(tx); err != nil {
		return err
	}
	m.config(token).minHoldingPeriod = d
	return nil
}

func (m *ComplianceModule) SetAccreditedRequired(tx *TxContext, token common.Address, required bool) error {
	if err := m.onlyOwner(tx); err != nil {
		return err
	}
	m.config(token).accreditedRequired = required
	return nil
}

func (m *ComplianceModule) AllowCountry(tx *TxContext, token common.Address, country uint16) error {
	if err := m.onlyOwner(tx); err != nil {
		return err
	}
	m.config(token).allowedCountries[country] = true
	return nil
}

func (m *ComplianceModule) DisallowCountry(tx *TxContext, token common.Address, country uint16) error {
	if err := m.onlyOwner(tx); err != nil {
		return err
	}
	delete(m.config(token).allowedCountries, country)
	return nil
}

func (m *ComplianceModule) IsRestricted(token common.Address) bool {
	return m.configRead(token).restricted
}

func (m *ComplianceModule) GetMaxHolders(token common.Address) int {
	return m.configRead(token).maxHolders
}

func (m *ComplianceModule) GetMinHoldingPeriod(token common.Address) time.Duration {
	return m.configRead(token).minHoldingPeriod
}

func (m *ComplianceModule) IsAccreditedRequired(token common.Address) bool {
	return m.configRead(token).accreditedRequired
}

// IsCountryAllowed reports true when the country is on the allow-list or
// when no allow-list is configured at all.
func (m *ComplianceModule) IsCountryAllowed(token common.Address, country uint16) bool {
	cfg := m.configRead(token)
	return len(cfg.allowedCountries) == 0 || cfg.allowedCountries[country]
}

func (m *ComplianceModule) HolderCount(token common.Address) int {
	return m.configRead(token).holderCount
}

// CanTransfer evaluates the restriction chain for a prospective transfer.
// newHolder reports whether the recipient's balance would cross up from zero;
// the max-holder check applies only then. Returns (allowed, reason).
func (m *ComplianceModule) CanTransfer(token, from, to common.Address, newHolder bool) (bool, string) {
	cfg := m.configRead(token)
	if !cfg.restricted {
		return true, ""
	}
	if !m.registry.IsVerified(from) {
		return false, "Sender identity not verified"
	}
	if !m.registry.IsVerified(to) {
		return false, "Recipient identity not verified"
	}
	if len(cfg.allowedCountries) > 0 {
		country, err := m.registry.GetCountry(to)
		if err != nil || !cfg.allowedCountries[country] {
			return false, "Recipient country not allowed"
		}
	}
	if cfg.accreditedRequired && !m.registry.HasClaim(to, ClaimAccredited) {
		return false, "Recipient not accredited"
	}
	if newHolder && cfg.maxHolders > 0 && cfg.holderCount >= cfg.maxHolders {
		return false, "Maximum holder count reached"
	}
	return true, ""
}

// holderAdded / holderRemoved are called by the fund token when a balance
// crosses zero in either direction.
func (m *ComplianceModule) holderAdded(token common.Address) {
	m.config(token).holderCount++
}

func (m *ComplianceModule) holderRemoved(token common.Address) {
	cfg := m.config(token)
	if cfg.holderCount > 0 {
		cfg.holderCount--
	}
}

func (m *ComplianceModule) snapshot() any {
	out := make(map[common.Address]*complianceConfig, len(m.tokens))
	for t, cfg := range m.tokens {
		countries := make(map[uint16]bool, len(cfg.allowedCountries))
		for c, v := range cfg.allowedCountries {
			countries[c] = v
		}
		cp := *cfg
		cp.allowedCountries = countries
		out[t] = &cp
	}
	return out
}

func (m *ComplianceModule) restore(s any) {
	m.tokens = s.(map[common.Address]*complianceConfig)
}
