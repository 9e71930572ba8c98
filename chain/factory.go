package chain

import (
	"encoding/binary"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Fund is the factory-level fund record. Ids are sequential and 1-based; id 0
// is the not-found sentinel.
type Fund struct {
	ID                uint64
	GP                common.Address
	Token             common.Address
	Name              string
	Symbol            string
	TargetAmount      *big.Int
	MinimumInvestment *big.Int
	CreatedAt         time.Time
	Active            bool
}

// FundFactory gates fund creation on GP approval, deploys one FundToken per
// fund and keeps the token-address reverse index.
type FundFactory struct {
	addr        common.Address
	owner       common.Address
	registry    *IdentityRegistry
	compliance  *ComplianceModule
	approvedGPs map[common.Address]bool
	funds       []*Fund
	tokens      map[common.Address]*FundToken
	byToken     map[common.Address]uint64
}

func NewFundFactory(addr, owner common.Address, registry *IdentityRegistry, compliance *ComplianceModule) *FundFactory {
	return &FundFactory{
		addr:        addr,
		owner:       owner,
		registry:    registry,
		compliance:  compliance,
		approvedGPs: make(map[common.Address]bool),
		tokens:      make(map[common.Address]*FundToken),
		byToken:     make(map[common.Address]uint64),
	}
}

func (f *FundFactory) onlyOwner(tx *TxContext) error {
	if tx.Caller != f.owner {
		return revert(ErrUnauthorized, "caller is not the factory owner")
	}
	return nil
}

func (f *FundFactory) ApproveGP(tx *TxContext, gp common.Address) error {
	if err := f.onlyOwner(tx); err != nil {
		return err
	}
	if gp == (common.Address{}) {
		return revert(ErrInvalidParameter, "GP address is zero")
	}
	if f.approvedGPs[gp] {
		return revert(ErrInvalidState, "GP already approved")
	}
	f.approvedGPs[gp] = true
	tx.Emit("GPApproved", map[string]any{"gp": gp})
	return nil
}

func (f *FundFactory) RevokeGP(tx *TxContext, gp common.Address) error {
	if err := f.onlyOwner(tx); err != nil {
		return err
	}
	if !f.approvedGPs[gp] {
		return revert(ErrInvalidState, "GP not approved")
	}
	delete(f.approvedGPs, gp)
	tx.Emit("GPRevoked", map[string]any{"gp": gp})
	return nil
}

// BatchApproveGPs skips zero addresses and already-approved entries instead of
// failing the batch.
func (f *FundFactory) BatchApproveGPs(tx *TxContext, gps []common.Address) error {
	if err := f.onlyOwner(tx); err != nil {
		return err
	}
	for _, gp := range gps {
		if gp == (common.Address{}) || f.approvedGPs[gp] {
			continue
		}
		f.approvedGPs[gp] = true
		tx.Emit("GPApproved", map[string]any{"gp": gp})
	}
	return nil
}

func (f *FundFactory) IsApprovedGP(gp common.Address) bool {
	return f.approvedGPs[gp]
}

// CreateFund deploys a FundToken owned by the calling GP, assigns the next
// sequential id and records the token reverse index. Deploy and record commit
// or revert together.
func (f *FundFactory) CreateFund(tx *TxContext, name, symbol string, target, minimum *big.Int) (*Fund, error) {
	if !f.approvedGPs[tx.Caller] {
		return nil, revert(ErrUnauthorized, "caller is not an approved GP")
	}
	if name == "" {
		return nil, revert(ErrInvalidParameter, "fund name is empty")
	}
	if symbol == "" {
		return nil, revert(ErrInvalidParameter, "fund symbol is empty")
	}
	if target == nil || target.Sign() <= 0 {
		return nil, revert(ErrInvalidParameter, "target amount must be positive")
	}
	if minimum == nil || minimum.Sign() <= 0 {
		return nil, revert(ErrInvalidParameter, "minimum investment must be positive")
	}

	id := uint64(len(f.funds) + 1)
	tokenAddr := f.tokenAddress(id)
	token := NewFundToken(tokenAddr, tx.Caller, name, symbol, f.registry, f.compliance)
	tx.Adopt(token)

	fund := &Fund{
		ID:                id,
		GP:                tx.Caller,
		Token:             tokenAddr,
		Name:              name,
		Symbol:            symbol,
		TargetAmount:      new(big.Int).Set(target),
		MinimumInvestment: new(big.Int).Set(minimum),
		CreatedAt:         tx.Time,
		Active:            true,
	}
	f.funds = append(f.funds, fund)
	f.tokens[tokenAddr] = token
	f.byToken[tokenAddr] = id
	f.compliance.initToken(tokenAddr)

	tx.Emit("FundCreated", map[string]any{
		"fundId":       id,
		"gp":           tx.Caller,
		"name":         name,
		"symbol":       symbol,
		"tokenAddress": tokenAddr,
	})
	return fund, nil
}

func (f *FundFactory) tokenAddress(id uint64) common.Address {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	h := crypto.Keccak256Hash(f.addr.Bytes(), buf[:])
	return common.BytesToAddress(h.Bytes()[12:])
}

func (f *FundFactory) GetFund(id uint64) (*Fund, error) {
	if id == 0 || id > uint64(len(f.funds)) {
		return nil, revert(ErrNotFound, "fund %d not found", id)
	}
	return f.funds[id-1], nil
}

func (f *FundFactory) GetFundByToken(token common.Address) (*Fund, error) {
	id, ok := f.byToken[token]
	if !ok {
		return nil, revert(ErrNotFound, "no fund for token %s", token.Hex())
	}
	return f.funds[id-1], nil
}

// Token returns the deployed FundToken for a fund's token address.
func (f *FundFactory) Token(addr common.Address) (*FundToken, error) {
	t, ok := f.tokens[addr]
	if !ok {
		return nil, revert(ErrNotFound, "no token at %s", addr.Hex())
	}
	return t, nil
}

func (f *FundFactory) FundCount() int {
	return len(f.funds)
}

// GetActiveFunds pages over active funds in creation order. Offsets past the
// active count yield an empty slice; limit must be in [1,100].
func (f *FundFactory) GetActiveFunds(offset, limit int) ([]*Fund, error) {
	if offset < 0 {
		return nil, revert(ErrInvalidParameter, "offset is negative")
	}
	if limit <= 0 || limit > 100 {
		return nil, revert(ErrInvalidParameter, "limit must be between 1 and 100")
	}
	active := make([]*Fund, 0, len(f.funds))
	for _, fund := range f.funds {
		if fund.Active {
			active = append(active, fund)
		}
	}
	if offset >= len(active) {
		return []*Fund{}, nil
	}
	end := offset + limit
	if end > len(active) {
		end = len(active)
	}
	return active[offset:end], nil
}

func (f *FundFactory) DeactivateFund(tx *TxContext, id uint64) error {
	fund, err := f.GetFund(id)
	if err != nil {
		return err
	}
	if tx.Caller != fund.GP {
		return revert(ErrUnauthorized, "caller is not the fund's GP")
	}
	if !fund.Active {
		return revert(ErrInvalidState, "fund already inactive")
	}
	fund.Active = false
	tx.Emit("FundDeactivated", map[string]any{"fundId": id})
	return nil
}

func (f *FundFactory) ReactivateFund(tx *TxContext, id uint64) error {
	fund, err := f.GetFund(id)
	if err != nil {
		return err
	}
	if tx.Caller != fund.GP {
		return revert(ErrUnauthorized, "caller is not the fund's GP")
	}
	if fund.Active {
		return revert(ErrInvalidState, "fund already active")
	}
	fund.Active = true
	tx.Emit("FundReactivated", map[string]any{"fundId": id})
	return nil
}

type factoryState struct {
	approvedGPs map[common.Address]bool
	funds       []*Fund
	tokens      map[common.Address]*FundToken
	byToken     map[common.Address]uint64
}

func (f *FundFactory) snapshot() any {
	gps := make(map[common.Address]bool, len(f.approvedGPs))
	for a, v := range f.approvedGPs {
		gps[a] = v
	}
	funds := make([]*Fund, len(f.funds))
	for i, fund := range f.funds {
		cp := *fund
		cp.TargetAmount = new(big.Int).Set(fund.TargetAmount)
		cp.MinimumInvestment = new(big.Int).Set(fund.MinimumInvestment)
		funds[i] = &cp
	}
	tokens := make(map[common.Address]*FundToken, len(f.tokens))
	for a, t := range f.tokens {
		tokens[a] = t
	}
	byToken := make(map[common.Address]uint64, len(f.byToken))
	for a, id := range f.byToken {
		byToken[a] = id
	}
	return &factoryState{approvedGPs: gps, funds: funds, tokens: tokens, byToken: byToken}
}

func (f *FundFactory) restore(s any) {
	st := s.(*factoryState)
	f.approvedGPs = st.approvedGPs
	f.funds = st.funds
	f.tokens = st.tokens
	f.byToken = st.byToken
}
