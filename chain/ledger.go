package chain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// InvestmentStatus is the on-chain status enum. Withdrawn is reserved.
type InvestmentStatus uint8

const (
	StatusPending InvestmentStatus = iota
	StatusConfirmed
	StatusCancelled
	StatusWithdrawn
)

func (s InvestmentStatus) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusConfirmed:
		return "Confirmed"
	case StatusCancelled:
		return "Cancelled"
	case StatusWithdrawn:
		return "Withdrawn"
	}
	return "Unknown"
}

// LedgerFund is the investment ledger's own fund record, keyed 0-based and
// deliberately separate from the factory's (the two are linked only by the
// caller supplying matching token addresses).
type LedgerFund struct {
	ID                uint64
	Token             common.Address
	GP                common.Address
	TargetAmount      *big.Int
	RaisedAmount      *big.Int
	MinimumInvestment *big.Int
	Active            bool
	InvestorCount     int
}

// Investment is keyed (fundId, id) with ids sequential per fund.
type Investment struct {
	FundID      uint64
	ID          uint64
	Investor    common.Address
	Token       common.Address
	Amount      *big.Int
	TokenAmount *big.Int
	CreatedAt   time.Time
	Status      InvestmentStatus
	ExternalRef string
}

// InvestmentLedger records pending/confirmed/cancelled investments per fund
// and aggregates raised amounts, investor counts and total platform volume.
type InvestmentLedger struct {
	owner          common.Address
	registry       *IdentityRegistry
	managers       map[common.Address]bool
	gps            map[common.Address]bool
	funds          []*LedgerFund
	investments    map[uint64][]*Investment
	investorFunds  map[common.Address][]uint64            // raw append-only history
	investorTotals map[uint64]map[common.Address]*big.Int // confirmed per (fund, investor)
	totalVolume    *big.Int
}

func NewInvestmentLedger(owner common.Address, registry *IdentityRegistry) *InvestmentLedger {
	l := &InvestmentLedger{
		owner:          owner,
		registry:       registry,
		managers:       make(map[common.Address]bool),
		gps:            make(map[common.Address]bool),
		investments:    make(map[uint64][]*Investment),
		investorFunds:  make(map[common.Address][]uint64),
		investorTotals: make(map[uint64]map[common.Address]*big.Int),
		totalVolume:    new(big.Int),
	}
	l.managers[owner] = true
	return l
}

func (l *InvestmentLedger) isManager(addr common.Address) bool {
	return l.managers[addr]
}

func (l *InvestmentLedger) onlyManager(tx *TxContext) error {
	if !l.isManager(tx.Caller) {
		return revert(ErrUnauthorized, "caller is not a fund manager")
	}
	return nil
}

func (l *InvestmentLedger) AddManager(tx *TxContext, addr common.Address) error {
	if tx.Caller != l.owner {
		return revert(ErrUnauthorized, "caller is not the ledger owner")
	}
	if addr == (common.Address{}) {
		return revert(ErrInvalidParameter, "manager address is zero")
	}
	l.managers[addr] = true
	return nil
}

// RegisterFund creates a ledger fund record and grants the GP role to the
// supplied address as a side effect.
func (l *InvestmentLedger) RegisterFund(tx *TxContext, token, gp common.Address, target, minimum *big.Int) (*LedgerFund, error) {
	if err := l.onlyManager(tx); err != nil {
		return nil, err
	}
	if token == (common.Address{}) {
		return nil, revert(ErrInvalidParameter, "token address is zero")
	}
	if gp == (common.Address{}) {
		return nil, revert(ErrInvalidParameter, "GP address is zero")
	}
	if target == nil || target.Sign() <= 0 {
		return nil, revert(ErrInvalidParameter, "target amount must be positive")
	}
	if minimum == nil {
		minimum = new(big.Int)
	}
	fund := &LedgerFund{
		ID:                uint64(len(l.funds)),
		Token:             token,
		GP:                gp,
		TargetAmount:      new(big.Int).Set(target),
		RaisedAmount:      new(big.Int),
		MinimumInvestment: new(big.Int).Set(minimum),
		Active:            true,
	}
	l.funds = append(l.funds, fund)
	l.gps[gp] = true
	tx.Emit("FundRegistered", map[string]any{
		"fundId":       fund.ID,
		"tokenAddress": token,
		"gp":           gp,
		"targetAmount": fund.TargetAmount,
	})
	return fund, nil
}

func (l *InvestmentLedger) GetFund(id uint64) (*LedgerFund, error) {
	if id >= uint64(len(l.funds)) {
		return nil, revert(ErrNotFound, "fund %d not found", id)
	}
	return l.funds[id], nil
}

func (l *InvestmentLedger) FundCount() int {
	return len(l.funds)
}

// RecordInvestment creates a Pending investment. The investor's fund history
// is appended on every call, repeat investments included; InvestorFundSet
// exposes the deduplicated view.
func (l *InvestmentLedger) RecordInvestment(tx *TxContext, fundID uint64, investor common.Address, amount, tokenAmount *big.Int, externalRef string) (*Investment, error) {
	fund, err := l.GetFund(fundID)
	if err != nil {
		return nil, err
	}
	if !fund.Active {
		return nil, revert(ErrInvalidState, "fund is not active")
	}
	if !l.registry.IsVerified(investor) {
		return nil, revert(ErrComplianceDenied, "Investor identity not verified")
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, revert(ErrInvalidParameter, "investment amount must be positive")
	}
	if amount.Cmp(fund.MinimumInvestment) < 0 {
		return nil, revert(ErrInvalidParameter, "amount below minimum investment")
	}
	if tokenAmount == nil {
		tokenAmount = new(big.Int)
	}
	inv := &Investment{
		FundID:      fundID,
		ID:          uint64(len(l.investments[fundID])),
		Investor:    investor,
		Token:       fund.Token,
		Amount:      new(big.Int).Set(amount),
		TokenAmount: new(big.Int).Set(tokenAmount),
		CreatedAt:   tx.Time,
		Status:      StatusPending,
		ExternalRef: externalRef,
	}
	l.investments[fundID] = append(l.investments[fundID], inv)
	l.investorFunds[investor] = append(l.investorFunds[investor], fundID)
	tx.Emit("InvestmentRecorded", map[string]any{
		"fundId":       fundID,
		"investmentId": inv.ID,
		"investor":     investor,
		"amount":       inv.Amount,
		"tokenAmount":  inv.TokenAmount,
	})
	return inv, nil
}

func (l *InvestmentLedger) GetInvestment(fundID, id uint64) (*Investment, error) {
	invs, ok := l.investments[fundID]
	if !ok || id >= uint64(len(invs)) {
		return nil, revert(ErrNotFound, "investment %d not found in fund %d", id, fundID)
	}
	return invs[id], nil
}

// ConfirmInvestment transitions Pending → Confirmed, adds the amount to the
// fund's raised total and the global volume, and bumps the fund's investor
// count only on the investor's first confirmed investment in that fund.
func (l *InvestmentLedger) ConfirmInvestment(tx *TxContext, fundID, id uint64) error {
	if err := l.onlyManager(tx); err != nil {
		return err
	}
	inv, err := l.GetInvestment(fundID, id)
	if err != nil {
		return err
	}
	if inv.Status != StatusPending {
		return revert(ErrInvalidState, "investment is not pending")
	}
	fund := l.funds[fundID]
	inv.Status = StatusConfirmed
	fund.RaisedAmount.Add(fund.RaisedAmount, inv.Amount)
	l.totalVolume.Add(l.totalVolume, inv.Amount)

	totals, ok := l.investorTotals[fundID]
	if !ok {
		totals = make(map[common.Address]*big.Int)
		l.investorTotals[fundID] = totals
	}
	prev, ok := totals[inv.Investor]
	if !ok {
		prev = new(big.Int)
		totals[inv.Investor] = prev
	}
	if prev.Sign() == 0 {
		fund.InvestorCount++
	}
	prev.Add(prev, inv.Amount)

	tx.Emit("InvestmentConfirmed", map[string]any{
		"fundId":       fundID,
		"investmentId": id,
		"investor":     inv.Investor,
		"amount":       inv.Amount,
	})
	return nil
}

// CancelInvestment is permitted only for the investment's own investor or a
// fund manager, and only while Pending.
func (l *InvestmentLedger) CancelInvestment(tx *TxContext, fundID, id uint64) error {
	inv, err := l.GetInvestment(fundID, id)
	if err != nil {
		return err
	}
	if tx.Caller != inv.Investor && !l.isManager(tx.Caller) {
		return revert(ErrUnauthorized, "caller may not cancel this investment")
	}
	if inv.Status != StatusPending {
		return revert(ErrInvalidState, "investment is not pending")
	}
	inv.Status = StatusCancelled
	tx.Emit("InvestmentCancelled", map[string]any{
		"fundId":       fundID,
		"investmentId": id,
		"investor":     inv.Investor,
	})
	return nil
}

func (l *InvestmentLedger) CloseFund(tx *TxContext, fundID uint64) error {
	fund, err := l.GetFund(fundID)
	if err != nil {
		return err
	}
	if !l.isManager(tx.Caller) && tx.Caller != fund.GP {
		return revert(ErrUnauthorized, "caller may not close this fund")
	}
	if !fund.Active {
		return revert(ErrInvalidState, "fund already closed")
	}
	fund.Active = false
	tx.Emit("FundClosed", map[string]any{"fundId": fundID})
	return nil
}

// InvestorFunds returns the raw append-only fund-id history for an investor,
// duplicates included.
func (l *InvestmentLedger) InvestorFunds(investor common.Address) []uint64 {
	out := make([]uint64, len(l.investorFunds[investor]))
	copy(out, l.investorFunds[investor])
	return out
}

// InvestorFundSet returns the deduplicated fund ids in first-seen order.
func (l *InvestmentLedger) InvestorFundSet(investor common.Address) []uint64 {
	seen := make(map[uint64]bool)
	out := make([]uint64, 0)
	for _, id := range l.investorFunds[investor] {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (l *InvestmentLedger) InvestorTotal(fundID uint64, investor common.Address) *big.Int {
	if totals, ok := l.investorTotals[fundID]; ok {
		if t, ok := totals[investor]; ok {
			return new(big.Int).Set(t)
		}
	}
	return new(big.Int)
}

func (l *InvestmentLedger) TotalVolume() *big.Int {
	return new(big.Int).Set(l.totalVolume)
}

func (l *InvestmentLedger) InvestmentCount(fundID uint64) int {
	return len(l.investments[fundID])
}

type ledgerState struct {
	managers       map[common.Address]bool
	gps            map[common.Address]bool
	funds          []*LedgerFund
	investments    map[uint64][]*Investment
	investorFunds  map[common.Address][]uint64
	investorTotals map[uint64]map[common.Address]*big.Int
	totalVolume    *big.Int
}

func (l *InvestmentLedger) snapshot() any {
	st := &ledgerState{
		managers:       make(map[common.Address]bool, len(l.managers)),
		gps:            make(map[common.Address]bool, len(l.gps)),
		funds:          make([]*LedgerFund, len(l.funds)),
		investments:    make(map[uint64][]*Investment, len(l.investments)),
		investorFunds:  make(map[common.Address][]uint64, len(l.investorFunds)),
		investorTotals: make(map[uint64]map[common.Address]*big.Int, len(l.investorTotals)),
		totalVolume:    new(big.Int).Set(l.totalVolume),
	}
	for a, v := range l.managers {
		st.managers[a] = v
	}
	for a, v := range l.gps {
		st.gps[a] = v
	}
	for i, fund := range l.funds {
		cp := *fund
		cp.TargetAmount = new(big.Int).Set(fund.TargetAmount)
		cp.RaisedAmount = new(big.Int).Set(fund.RaisedAmount)
		cp.MinimumInvestment = new(big.Int).Set(fund.MinimumInvestment)
		st.funds[i] = &cp
	}
	for fundID, invs := range l.investments {
		cps := make([]*Investment, len(invs))
		for i, inv := range invs {
			cp := *inv
			cp.Amount = new(big.Int).Set(inv.Amount)
			cp.TokenAmount = new(big.Int).Set(inv.TokenAmount)
			cps[i] = &cp
		}
		st.investments[fundID] = cps
	}
	for a, ids := range l.investorFunds {
		cp := make([]uint64, len(ids))
		copy(cp, ids)
		st.investorFunds[a] = cp
	}
	for fundID, totals := range l.investorTotals {
		cp := make(map[common.Address]*big.Int, len(totals))
		for a, t := range totals {
			cp[a] = new(big.Int).Set(t)
		}
		st.investorTotals[fundID] = cp
	}
	return st
}

func (l *InvestmentLedger) restore(s any) {
	st := s.(*ledgerState)
	l.managers = st.managers
	l.gps = st.gps
	l.funds = st.funds
	l.investments = st.investments
	l.investorFunds = st.investorFunds
	l.investorTotals = st.investorTotals
	l.totalVolume = st.totalVolume
}
