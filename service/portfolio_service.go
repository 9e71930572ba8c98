package service

import (
	"github.com/fundchain/chain"
)

// PortfolioService adapts the portfolio company registry contract.
type PortfolioService struct {
	c *Contracts
}

// CompanyInfo is the company read-model.
type CompanyInfo struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	Industry     string `json:"industry"`
	Country      string `json:"country"`
	FoundedYear  int    `json:"foundedYear"`
	RegisteredBy string `json:"registeredBy"`
	RegisteredAt int64  `json:"registeredAt"`
	Active       bool   `json:"active"`
}

// CompanyInvestmentInfo is one equity stake record, amounts as decimal
// strings and equity in basis points.
type CompanyInvestmentInfo struct {
	CompanyID uint64 `json:"companyId"`
	Index     int    `json:"index"`
	FundID    uint64 `json:"fundId"`
	Amount    string `json:"amount"`
	EquityBP  uint32 `json:"equityBasisPoints"`
	Valuation string `json:"valuation"`
	Timestamp int64  `json:"timestamp"`
}

func companyInfo(c *chain.Company) *CompanyInfo {
	return &CompanyInfo{
		ID:           c.ID,
		Name:         c.Name,
		Industry:     c.Industry,
		Country:      c.Country,
		FoundedYear:  c.FoundedYear,
		RegisteredBy: c.RegisteredBy.Hex(),
		RegisteredAt: c.RegisteredAt.Unix(),
		Active:       c.Active,
	}
}

// RegisterCompanyResult carries the company id decoded from the
// CompanyRegistered event.
type RegisterCompanyResult struct {
	TxResult
	CompanyID uint64 `json:"companyId"`
}

func (s *PortfolioService) RegisterCompany(name, industry, country string, foundedYear int) (*RegisterCompanyResult, error) {
	rcpt, err := s.c.submit(s.c.signerAddr, func(tx *chain.TxContext) error {
		_, e := s.c.portfolio.RegisterCompany(tx, name, industry, country, foundedYear)
		return e
	})
	if err != nil {
		return nil, err
	}
	ev, err := requireEvent(rcpt, "CompanyRegistered")
	if err != nil {
		return nil, err
	}
	return &RegisterCompanyResult{
		TxResult:  *txResult(rcpt),
		CompanyID: ev.Args["companyId"].(uint64),
	}, nil
}

func (s *PortfolioService) RecordInvestment(companyID, fundID uint64, amount string, equityBP uint32, valuation string) (*TxResult, error) {
	value, err := ParseUnits(amount)
	if err != nil {
		return nil, err
	}
	val, err := ParseUnits(valuation)
	if err != nil {
		return nil, err
	}
	rcpt, err := s.c.submit(s.c.signerAddr, func(tx *chain.TxContext) error {
		_, e := s.c.portfolio.RecordInvestment(tx, companyID, fundID, value, equityBP, val)
		return e
	})
	if err != nil {
		return nil, err
	}
	if _, err := requireEvent(rcpt, "CompanyInvestmentRecorded"); err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}

func (s *PortfolioService) UpdateValuation(companyID, fundID uint64, index int, valuation string) (*TxResult, error) {
	val, err := ParseUnits(valuation)
	if err != nil {
		return nil, err
	}
	rcpt, err := s.c.submit(s.c.signerAddr, func(tx *chain.TxContext) error {
		return s.c.portfolio.UpdateValuation(tx, companyID, fundID, index, val)
	})
	if err != nil {
		return nil, err
	}
	if _, err := requireEvent(rcpt, "ValuationUpdated"); err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}

func (s *PortfolioService) DeactivateCompany(companyID uint64) (*TxResult, error) {
	rcpt, err := s.c.submit(s.c.signerAddr, func(tx *chain.TxContext) error {
		return s.c.portfolio.DeactivateCompany(tx, companyID)
	})
	if err != nil {
		return nil, err
	}
	if _, err := requireEvent(rcpt, "CompanyDeactivated"); err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}

func (s *PortfolioService) ReactivateCompany(companyID uint64) (*TxResult, error) {
	rcpt, err := s.c.submit(s.c.signerAddr, func(tx *chain.TxContext) error {
		return s.c.portfolio.ReactivateCompany(tx, companyID)
	})
	if err != nil {
		return nil, err
	}
	if _, err := requireEvent(rcpt, "CompanyReactivated"); err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}

func (s *PortfolioService) GetCompany(companyID uint64) (*CompanyInfo, error) {
	var (
		c    *chain.Company
		qerr error
	)
	if err := s.c.query(func() { c, qerr = s.c.portfolio.GetCompany(companyID) }); err != nil {
		return nil, err
	}
	if qerr != nil {
		return nil, qerr
	}
	return companyInfo(c), nil
}

func (s *PortfolioService) ActiveCompanies() ([]*CompanyInfo, error) {
	var (
		out  []*CompanyInfo
		qerr error
	)
	if err := s.c.query(func() {
		ids := s.c.portfolio.ActiveCompanies()
		out = make([]*CompanyInfo, 0, len(ids))
		for _, id := range ids {
			c, err := s.c.portfolio.GetCompany(id)
			if err != nil {
				qerr = err
				return
			}
			out = append(out, companyInfo(c))
		}
	}); err != nil {
		return nil, err
	}
	if qerr != nil {
		return nil, qerr
	}
	return out, nil
}

func (s *PortfolioService) CompanyInvestments(companyID uint64) ([]*CompanyInvestmentInfo, error) {
	var out []*CompanyInvestmentInfo
	if err := s.c.query(func() {
		recs := s.c.portfolio.CompanyInvestments(companyID)
		out = make([]*CompanyInvestmentInfo, len(recs))
		for i, rec := range recs {
			out[i] = &CompanyInvestmentInfo{
				CompanyID: rec.CompanyID,
				Index:     rec.Index,
				FundID:    rec.FundID,
				Amount:    FormatUnits(rec.Amount),
				EquityBP:  rec.EquityBP,
				Valuation: FormatUnits(rec.Valuation),
				Timestamp: rec.Timestamp.Unix(),
			}
		}
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PortfolioService) TotalInvestedIn(companyID uint64) (string, error) {
	var total string
	if err := s.c.query(func() { total = FormatUnits(s.c.portfolio.TotalInvestedIn(companyID)) }); err != nil {
		return "", err
	}
	return total, nil
}

func (s *PortfolioService) FundEquityIn(fundID, companyID uint64) (uint32, error) {
	var equity uint32
	if err := s.c.query(func() { equity = s.c.portfolio.FundEquityIn(fundID, companyID) }); err != nil {
		return 0, err
	}
	return equity, nil
}

func (s *PortfolioService) FundPortfolio(fundID uint64) ([]uint64, error) {
	var ids []uint64
	if err := s.c.query(func() { ids = s.c.portfolio.FundPortfolio(fundID) }); err != nil {
		return nil, err
	}
	return ids, nil
}
