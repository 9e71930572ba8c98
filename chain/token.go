package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type holderState struct {
	balance *big.Int
	frozen  *big.Int // partially frozen amount
	freezed bool     // full freeze flag
}

// FundToken is the transfer-restricted fund share ledger. Every movement is
// intercepted by the compliance module and identity registry while
// complianceEnabled is set. The owner is the fund's GP.
type FundToken struct {
	addr              common.Address
	owner             common.Address
	name              string
	symbol            string
	totalSupply       *big.Int
	holders           map[common.Address]*holderState
	registry          *IdentityRegistry
	compliance        *ComplianceModule
	complianceEnabled bool
}

func NewFundToken(addr, owner common.Address, name, symbol string, registry *IdentityRegistry, compliance *ComplianceModule) *FundToken {
	return &FundToken{
		addr:              addr,
		owner:             owner,
		name:              name,
		symbol:            symbol,
		totalSupply:       new(big.Int),
		holders:           make(map[common.Address]*holderState),
		registry:          registry,
		compliance:        compliance,
		complianceEnabled: true,
	}
}

func (t *FundToken) Address() common.Address { return t.addr }
func (t *FundToken) Owner() common.Address   { return t.owner }
func (t *FundToken) Name() string            { return t.name }
func (t *FundToken) Symbol() string          { return t.symbol }

func (t *FundToken) TotalSupply() *big.Int {
	return new(big.Int).Set(t.totalSupply)
}

func (t *FundToken) onlyOwner(tx *TxContext) error {
	if tx.Caller != t.owner {
		return revert(ErrUnauthorized, "caller is not the token owner")
	}
	return nil
}

func (t *FundToken) holder(addr common.Address) *holderState {
	h, ok := t.holders[addr]
	if !ok {
		h = &holderState{balance: new(big.Int), frozen: new(big.Int)}
		t.holders[addr] = h
	}
	return h
}

func (t *FundToken) BalanceOf(addr common.Address) *big.Int {
	if h, ok := t.holders[addr]; ok {
		return new(big.Int).Set(h.balance)
	}
	return new(big.Int)
}

func (t *FundToken) FrozenTokens(addr common.Address) *big.Int {
	if h, ok := t.holders[addr]; ok {
		return new(big.Int).Set(h.frozen)
	}
	return new(big.Int)
}

func (t *FundToken) IsFrozen(addr common.Address) bool {
	h, ok := t.holders[addr]
	return ok && h.freezed
}

// AvailableBalance is balance minus partially frozen tokens, or zero under a
// full freeze.
func (t *FundToken) AvailableBalance(addr common.Address) *big.Int {
	h, ok := t.holders[addr]
	if !ok || h.freezed {
		return new(big.Int)
	}
	avail := new(big.Int).Sub(h.balance, h.frozen)
	if avail.Sign() < 0 {
		return new(big.Int)
	}
	return avail
}

// CanTransfer is the query-only pre-check: it reports whether a transfer would
// go through and the reason when it would not, without touching state.
func (t *FundToken) CanTransfer(from, to common.Address, amount *big.Int) (bool, string) {
	if amount == nil || amount.Sign() <= 0 {
		return false, "Transfer amount must be positive"
	}
	fromHolder, ok := t.holders[from]
	if ok && fromHolder.freezed {
		return false, "Sender account frozen"
	}
	if toHolder, ok := t.holders[to]; ok && toHolder.freezed {
		return false, "Recipient account frozen"
	}
	if t.AvailableBalance(from).Cmp(amount) < 0 {
		return false, "Insufficient unfrozen balance"
	}
	if t.complianceEnabled {
		newHolder := t.BalanceOf(to).Sign() == 0
		if ok, reason := t.compliance.CanTransfer(t.addr, from, to, newHolder); !ok {
			return false, reason
		}
	}
	return true, ""
}

// move applies a validated balance change and keeps the compliance holder
// count in sync with zero-crossings.
func (t *FundToken) move(from, to common.Address, amount *big.Int) {
	src := t.holder(from)
	dst := t.holder(to)
	wasHolder := dst.balance.Sign() > 0
	src.balance.Sub(src.balance, amount)
	dst.balance.Add(dst.balance, amount)
	if !wasHolder && dst.balance.Sign() > 0 {
		t.compliance.holderAdded(t.addr)
	}
	if src.balance.Sign() == 0 {
		t.compliance.holderRemoved(t.addr)
	}
}

func (t *FundToken) Transfer(tx *TxContext, to common.Address, amount *big.Int) error {
	if ok, reason := t.CanTransfer(tx.Caller, to, amount); !ok {
		return revert(ErrComplianceDenied, "%s", reason)
	}
	t.move(tx.Caller, to, amount)
	tx.Emit("Transfer", map[string]any{"from": tx.Caller, "to": to, "amount": amount})
	return nil
}

// BatchTransfer fails the whole batch on an array length mismatch or on any
// single disallowed transfer; the node rolls back partial movements.
func (t *FundToken) BatchTransfer(tx *TxContext, tos []common.Address, amounts []*big.Int) error {
	if len(tos) != len(amounts) {
		return revert(ErrInvalidParameter, "recipient and amount arrays length mismatch")
	}
	for i := range tos {
		if err := t.Transfer(tx, tos[i], amounts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (t *FundToken) Mint(tx *TxContext, to common.Address, amount *big.Int) error {
	if err := t.onlyOwner(tx); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return revert(ErrInvalidParameter, "mint amount must be positive")
	}
	if t.complianceEnabled && !t.registry.IsVerified(to) {
		return revert(ErrComplianceDenied, "Recipient identity not verified")
	}
	h := t.holder(to)
	wasHolder := h.balance.Sign() > 0
	h.balance.Add(h.balance, amount)
	t.totalSupply.Add(t.totalSupply, amount)
	if !wasHolder {
		t.compliance.holderAdded(t.addr)
	}
	tx.Emit("Mint", map[string]any{"to": to, "amount": amount})
	return nil
}

func (t *FundToken) BatchMint(tx *TxContext, tos []common.Address, amounts []*big.Int) error {
	if len(tos) != len(amounts) {
		return revert(ErrInvalidParameter, "recipient and amount arrays length mismatch")
	}
	for i := range tos {
		if err := t.Mint(tx, tos[i], amounts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (t *FundToken) FreezeAccount(tx *TxContext, addr common.Address) error {
	if err := t.onlyOwner(tx); err != nil {
		return err
	}
	h := t.holder(addr)
	if h.freezed {
		return revert(ErrInvalidState, "account already frozen")
	}
	h.freezed = true
	tx.Emit("AccountFrozen", map[string]any{"account": addr})
	return nil
}

func (t *FundToken) UnfreezeAccount(tx *TxContext, addr common.Address) error {
	if err := t.onlyOwner(tx); err != nil {
		return err
	}
	h := t.holder(addr)
	if !h.freezed {
		return revert(ErrInvalidState, "account not frozen")
	}
	h.freezed = false
	tx.Emit("AccountUnfrozen", map[string]any{"account": addr})
	return nil
}

func (t *FundToken) FreezePartialTokens(tx *TxContext, addr common.Address, amount *big.Int) error {
	if err := t.onlyOwner(tx); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return revert(ErrInvalidParameter, "freeze amount must be positive")
	}
	h := t.holder(addr)
	free := new(big.Int).Sub(h.balance, h.frozen)
	if free.Cmp(amount) < 0 {
		return revert(ErrInvalidParameter, "freeze amount exceeds unfrozen balance")
	}
	h.frozen.Add(h.frozen, amount)
	tx.Emit("TokensFrozen", map[string]any{"account": addr, "amount": amount})
	return nil
}

func (t *FundToken) UnfreezePartialTokens(tx *TxContext, addr common.Address, amount *big.Int) error {
	if err := t.onlyOwner(tx); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return revert(ErrInvalidParameter, "unfreeze amount must be positive")
	}
	h := t.holder(addr)
	if h.frozen.Cmp(amount) < 0 {
		return revert(ErrInvalidParameter, "unfreeze amount exceeds frozen amount")
	}
	h.frozen.Sub(h.frozen, amount)
	tx.Emit("TokensUnfrozen", map[string]any{"account": addr, "amount": amount})
	return nil
}

// ForcedTransfer bypasses sender authorization and compliance checks but is
// still bounded by the sender's unfrozen balance.
func (t *FundToken) ForcedTransfer(tx *TxContext, from, to common.Address, amount *big.Int) error {
	if err := t.onlyOwner(tx); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return revert(ErrInvalidParameter, "transfer amount must be positive")
	}
	if t.AvailableBalance(from).Cmp(amount) < 0 {
		return revert(ErrComplianceDenied, "Insufficient unfrozen balance")
	}
	t.move(from, to, amount)
	tx.Emit("ForcedTransfer", map[string]any{"from": from, "to": to, "amount": amount})
	return nil
}

// RecoveryTransfer moves an entire balance to a replacement wallet, for lost
// key remediation. The destination must verify on its own.
func (t *FundToken) RecoveryTransfer(tx *TxContext, lost, replacement common.Address) error {
	if err := t.onlyOwner(tx); err != nil {
		return err
	}
	if replacement == (common.Address{}) {
		return revert(ErrInvalidParameter, "replacement wallet address is zero")
	}
	if t.complianceEnabled && !t.registry.IsVerified(replacement) {
		return revert(ErrComplianceDenied, "Recipient identity not verified")
	}
	h := t.holder(lost)
	if h.balance.Sign() == 0 {
		return revert(ErrInvalidState, "nothing to recover")
	}
	amount := new(big.Int).Set(h.balance)
	frozen := new(big.Int).Set(h.frozen)
	t.move(lost, replacement, amount)
	// frozen amount follows the balance
	h.frozen.SetInt64(0)
	t.holder(replacement).frozen.Add(t.holder(replacement).frozen, frozen)
	tx.Emit("TokensRecovered", map[string]any{"lost": lost, "replacement": replacement, "amount": amount})
	return nil
}

func (t *FundToken) SetComplianceEnabled(tx *TxContext, enabled bool) error {
	if err := t.onlyOwner(tx); err != nil {
		return err
	}
	t.complianceEnabled = enabled
	return nil
}

func (t *FundToken) SetIdentityRegistry(tx *TxContext, registry *IdentityRegistry) error {
	if err := t.onlyOwner(tx); err != nil {
		return err
	}
	if registry == nil {
		return revert(ErrInvalidParameter, "identity registry is nil")
	}
	t.registry = registry
	return nil
}

func (t *FundToken) SetComplianceModule(tx *TxContext, compliance *ComplianceModule) error {
	if err := t.onlyOwner(tx); err != nil {
		return err
	}
	if compliance == nil {
		return revert(ErrInvalidParameter, "compliance module is nil")
	}
	t.compliance = compliance
	return nil
}

type tokenState struct {
	totalSupply       *big.Int
	holders           map[common.Address]*holderState
	registry          *IdentityRegistry
	compliance        *ComplianceModule
	complianceEnabled bool
}

func (t *FundToken) snapshot() any {
	holders := make(map[common.Address]*holderState, len(t.holders))
	for a, h := range t.holders {
		holders[a] = &holderState{
			balance: new(big.Int).Set(h.balance),
			frozen:  new(big.Int).Set(h.frozen),
			freezed: h.freezed,
		}
	}
	return &tokenState{
		totalSupply:       new(big.Int).Set(t.totalSupply),
		holders:           holders,
		registry:          t.registry,
		compliance:        t.compliance,
		complianceEnabled: t.complianceEnabled,
	}
}

func (t *FundToken) restore(s any) {
	st := s.(*tokenState)
	t.totalSupply = st.totalSupply
	t.holders = st.holders
	t.registry = st.registry
	t.compliance = st.compliance
	t.complianceEnabled = st.complianceEnabled
}
