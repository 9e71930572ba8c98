package chain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Company is a portfolio company record, keyed 0-based.
type Company struct {
	ID           uint64
	Name         string
	Industry     string
	Country      string
	FoundedYear  int
	RegisteredBy common.Address
	RegisteredAt time.Time
	Active       bool
}

// CompanyInvestment is one equity stake record for (company, fund). Equity is
// expressed in basis points; stakes for the same pair accumulate across
// records.
type CompanyInvestment struct {
	CompanyID uint64
	Index     int
	FundID    uint64
	Amount    *big.Int
	EquityBP  uint32
	Valuation *big.Int
	Timestamp time.Time
	Active    bool
}

// PortfolioRegistry records portfolio companies and each fund's equity stakes
// in them.
type PortfolioRegistry struct {
	owner       common.Address
	managers    map[common.Address]bool
	companies   []*Company
	investments map[uint64][]*CompanyInvestment
	portfolios  map[uint64][]uint64 // fund -> company ids, deduplicated
	activeIDs   []uint64
}

func NewPortfolioRegistry(owner common.Address) *PortfolioRegistry {
	p := &PortfolioRegistry{
		owner:       owner,
		managers:    make(map[common.Address]bool),
		investments: make(map[uint64][]*CompanyInvestment),
		portfolios:  make(map[uint64][]uint64),
	}
	p.managers[owner] = true
	return p
}

func (p *PortfolioRegistry) onlyManager(tx *TxContext) error {
	if !p.managers[tx.Caller] {
		return revert(ErrUnauthorized, "caller is not a fund manager")
	}
	return nil
}

func (p *PortfolioRegistry) AddManager(tx *TxContext, addr common.Address) error {
	if tx.Caller != p.owner {
		return revert(ErrUnauthorized, "caller is not the registry owner")
	}
	if addr == (common.Address{}) {
		return revert(ErrInvalidParameter, "manager address is zero")
	}
	p.managers[addr] = true
	return nil
}

func (p *PortfolioRegistry) RegisterCompany(tx *TxContext, name, industry, country string, foundedYear int) (*Company, error) {
	if err := p.onlyManager(tx); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, revert(ErrInvalidParameter, "company name is empty")
	}
	c := &Company{
		ID:           uint64(len(p.companies)),
		Name:         name,
		Industry:     industry,
		Country:      country,
		FoundedYear:  foundedYear,
		RegisteredBy: tx.Caller,
		RegisteredAt: tx.Time,
		Active:       true,
	}
	p.companies = append(p.companies, c)
	p.activeIDs = append(p.activeIDs, c.ID)
	tx.Emit("CompanyRegistered", map[string]any{
		"companyId":    c.ID,
		"name":         name,
		"industry":     industry,
		"registeredBy": tx.Caller,
	})
	return c, nil
}

func (p *PortfolioRegistry) GetCompany(id uint64) (*Company, error) {
	if id >= uint64(len(p.companies)) {
		return nil, revert(ErrNotFound, "company %d not found", id)
	}
	return p.companies[id], nil
}

func (p *PortfolioRegistry) CompanyCount() int {
	return len(p.companies)
}

// RecordInvestment appends an equity stake. The fund's portfolio index gains
// the company only once, by membership check.
func (p *PortfolioRegistry) RecordInvestment(tx *TxContext, companyID, fundID uint64, amount *big.Int, equityBP uint32, valuation *big.Int) (*CompanyInvestment, error) {
	if err := p.onlyManager(tx); err != nil {
		return nil, err
	}
	c, err := p.GetCompany(companyID)
	if err != nil {
		return nil, err
	}
	if !c.Active {
		return nil, revert(ErrInvalidState, "company is not active")
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, revert(ErrInvalidParameter, "investment amount must be positive")
	}
	if equityBP == 0 || equityBP > 10000 {
		return nil, revert(ErrInvalidParameter, "equity must be between 1 and 10000 basis points")
	}
	if valuation == nil {
		valuation = new(big.Int)
	}
	rec := &CompanyInvestment{
		CompanyID: companyID,
		Index:     len(p.investments[companyID]),
		FundID:    fundID,
		Amount:    new(big.Int).Set(amount),
		EquityBP:  equityBP,
		Valuation: new(big.Int).Set(valuation),
		Timestamp: tx.Time,
		Active:    true,
	}
	p.investments[companyID] = append(p.investments[companyID], rec)
	if !p.inPortfolio(fundID, companyID) {
		p.portfolios[fundID] = append(p.portfolios[fundID], companyID)
	}
	tx.Emit("CompanyInvestmentRecorded", map[string]any{
		"companyId": companyID,
		"fundId":    fundID,
		"amount":    rec.Amount,
		"equityBP":  equityBP,
	})
	return rec, nil
}

func (p *PortfolioRegistry) inPortfolio(fundID, companyID uint64) bool {
	for _, id := range p.portfolios[fundID] {
		if id == companyID {
			return true
		}
	}
	return false
}

// UpdateValuation rejects a record index that belongs to a different fund.
func (p *PortfolioRegistry) UpdateValuation(tx *TxContext, companyID, fundID uint64, index int, valuation *big.Int) error {
	if err := p.onlyManager(tx); err != nil {
		return err
	}
	recs := p.investments[companyID]
	if index < 0 || index >= len(recs) {
		return revert(ErrNotFound, "investment record %d not found for company %d", index, companyID)
	}
	rec := recs[index]
	if rec.FundID != fundID {
		return revert(ErrInvalidParameter, "fund mismatch for investment record")
	}
	if valuation == nil || valuation.Sign() < 0 {
		return revert(ErrInvalidParameter, "valuation must not be negative")
	}
	rec.Valuation = new(big.Int).Set(valuation)
	tx.Emit("ValuationUpdated", map[string]any{
		"companyId": companyID,
		"fundId":    fundID,
		"index":     index,
		"valuation": rec.Valuation,
	})
	return nil
}

func (p *PortfolioRegistry) DeactivateCompany(tx *TxContext, id uint64) error {
	if err := p.onlyManager(tx); err != nil {
		return err
	}
	c, err := p.GetCompany(id)
	if err != nil {
		return err
	}
	if !c.Active {
		return revert(ErrInvalidState, "company already inactive")
	}
	c.Active = false
	for i, aid := range p.activeIDs {
		if aid == id {
			p.activeIDs = append(p.activeIDs[:i], p.activeIDs[i+1:]...)
			break
		}
	}
	tx.Emit("CompanyDeactivated", map[string]any{"companyId": id})
	return nil
}

func (p *PortfolioRegistry) ReactivateCompany(tx *TxContext, id uint64) error {
	if err := p.onlyManager(tx); err != nil {
		return err
	}
	c, err := p.GetCompany(id)
	if err != nil {
		return err
	}
	if c.Active {
		return revert(ErrInvalidState, "company already active")
	}
	c.Active = true
	p.activeIDs = append(p.activeIDs, id)
	tx.Emit("CompanyReactivated", map[string]any{"companyId": id})
	return nil
}

func (p *PortfolioRegistry) ActiveCompanies() []uint64 {
	out := make([]uint64, len(p.activeIDs))
	copy(out, p.activeIDs)
	return out
}

func (p *PortfolioRegistry) CompanyInvestments(companyID uint64) []*CompanyInvestment {
	return p.investments[companyID]
}

// TotalInvestedIn sums all investment records for a company across funds.
func (p *PortfolioRegistry) TotalInvestedIn(companyID uint64) *big.Int {
	total := new(big.Int)
	for _, rec := range p.investments[companyID] {
		total.Add(total, rec.Amount)
	}
	return total
}

// FundEquityIn sums a fund's equity basis points across its records for one
// company. Aggregate equity is a sum by design.
func (p *PortfolioRegistry) FundEquityIn(fundID, companyID uint64) uint32 {
	var total uint32
	for _, rec := range p.investments[companyID] {
		if rec.FundID == fundID {
			total += rec.EquityBP
		}
	}
	return total
}

// FundPortfolio lists the companies a fund holds stakes in, each exactly once.
func (p *PortfolioRegistry) FundPortfolio(fundID uint64) []uint64 {
	out := make([]uint64, len(p.portfolios[fundID]))
	copy(out, p.portfolios[fundID])
	return out
}

type portfolioState struct {
	managers    map[common.Address]bool
	companies   []*Company
	investments map[uint64][]*CompanyInvestment
	portfolios  map[uint64][]uint64
	activeIDs   []uint64
}

func (p *PortfolioRegistry) snapshot() any {
	st := &portfolioState{
		managers:    make(map[common.Address]bool, len(p.managers)),
		companies:   make([]*Company, len(p.companies)),
		investments: make(map[uint64][]*CompanyInvestment, len(p.investments)),
		portfolios:  make(map[uint64][]uint64, len(p.portfolios)),
		activeIDs:   make([]uint64, len(p.activeIDs)),
	}
	for a, v := range p.managers {
		st.managers[a] = v
	}
	for i, c := range p.companies {
		cp := *c
		st.companies[i] = &cp
	}
	for id, recs := range p.investments {
		cps := make([]*CompanyInvestment, len(recs))
		for i, rec := range recs {
			cp := *rec
			cp.Amount = new(big.Int).Set(rec.Amount)
			cp.Valuation = new(big.Int).Set(rec.Valuation)
			cps[i] = &cp
		}
		st.investments[id] = cps
	}
	for fundID, ids := range p.portfolios {
		cp := make([]uint64, len(ids))
		copy(cp, ids)
		st.portfolios[fundID] = cp
	}
	copy(st.activeIDs, p.activeIDs)
	return st
}

func (p *PortfolioRegistry) restore(s any) {
	st := s.(*portfolioState)
	p.managers = st.managers
	p.companies = st.companies
	p.investments = st.investments
	p.portfolios = st.portfolios
	p.activeIDs = st.activeIDs
}
