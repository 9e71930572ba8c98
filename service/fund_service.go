package service

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/fundchain/chain"
)

// FundService adapts the fund factory contract. Role-gated operations take
// the acting GP address explicitly.
type FundService struct {
	c *Contracts
}

// FundInfo is the read-model of a factory fund, currency values rendered as
// decimal strings.
type FundInfo struct {
	ID                uint64 `json:"id"`
	GP                string `json:"gp"`
	TokenAddress      string `json:"tokenAddress"`
	Name              string `json:"name"`
	Symbol            string `json:"symbol"`
	TargetAmount      string `json:"targetAmount"`
	MinimumInvestment string `json:"minimumInvestment"`
	CreatedAt         int64  `json:"createdAt"`
	Active            bool   `json:"active"`
}

func fundInfo(f *chain.Fund) *FundInfo {
	return &FundInfo{
		ID:                f.ID,
		GP:                f.GP.Hex(),
		TokenAddress:      f.Token.Hex(),
		Name:              f.Name,
		Symbol:            f.Symbol,
		TargetAmount:      FormatUnits(f.TargetAmount),
		MinimumInvestment: FormatUnits(f.MinimumInvestment),
		CreatedAt:         f.CreatedAt.Unix(),
		Active:            f.Active,
	}
}

// CreateFundResult combines the receipt with the fields decoded from the
// FundCreated event.
type CreateFundResult struct {
	TxResult
	FundID       uint64 `json:"fundId"`
	TokenAddress string `json:"tokenAddress"`
}

func (s *FundService) ApproveGP(gp string) (*TxResult, error) {
	addr, err := parseAddress(gp)
	if err != nil {
		return nil, err
	}
	rcpt, err := s.c.submit(s.c.signerAddr, func(tx *chain.TxContext) error {
		return s.c.factory.ApproveGP(tx, addr)
	})
	if err != nil {
		return nil, err
	}
	if _, err := requireEvent(rcpt, "GPApproved"); err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}

// BatchApproveGPs approves a list of GPs in one transaction. Zero addresses
// and already-approved entries are skipped, not failed.
func (s *FundService) BatchApproveGPs(gps []string) (*TxResult, error) {
	addrs := make([]common.Address, len(gps))
	for i, gp := range gps {
		addr, err := parseAddress(gp)
		if err != nil {
			return nil, err
		}
		addrs[i] = addr
	}
	rcpt, err := s.c.submit(s.c.signerAddr, func(tx *chain.TxContext) error {
		return s.c.factory.BatchApproveGPs(tx, addrs)
	})
	if err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}

func (s *FundService) RevokeGP(gp string) (*TxResult, error) {
	addr, err := parseAddress(gp)
	if err != nil {
		return nil, err
	}
	rcpt, err := s.c.submit(s.c.signerAddr, func(tx *chain.TxContext) error {
		return s.c.factory.RevokeGP(tx, addr)
	})
	if err != nil {
		return nil, err
	}
	if _, err := requireEvent(rcpt, "GPRevoked"); err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}

func (s *FundService) CreateFund(gp, name, symbol, targetAmount, minimumInvestment string) (*CreateFundResult, error) {
	gpAddr, err := parseAddress(gp)
	if err != nil {
		return nil, err
	}
	target, err := ParseUnits(targetAmount)
	if err != nil {
		return nil, err
	}
	minimum, err := ParseUnits(minimumInvestment)
	if err != nil {
		return nil, err
	}
	rcpt, err := s.c.submit(gpAddr, func(tx *chain.TxContext) error {
		_, e := s.c.factory.CreateFund(tx, name, symbol, target, minimum)
		return e
	})
	if err != nil {
		return nil, err
	}
	ev, err := requireEvent(rcpt, "FundCreated")
	if err != nil {
		return nil, err
	}
	return &CreateFundResult{
		TxResult:     *txResult(rcpt),
		FundID:       ev.Args["fundId"].(uint64),
		TokenAddress: ev.Args["tokenAddress"].(common.Address).Hex(),
	}, nil
}

func (s *FundService) GetFund(id uint64) (*FundInfo, error) {
	var (
		f    *chain.Fund
		qerr error
	)
	if err := s.c.query(func() { f, qerr = s.c.factory.GetFund(id) }); err != nil {
		return nil, err
	}
	if qerr != nil {
		return nil, qerr
	}
	return fundInfo(f), nil
}

func (s *FundService) GetActiveFunds(offset, limit int) ([]*FundInfo, error) {
	var (
		funds []*chain.Fund
		qerr  error
	)
	if err := s.c.query(func() { funds, qerr = s.c.factory.GetActiveFunds(offset, limit) }); err != nil {
		return nil, err
	}
	if qerr != nil {
		return nil, qerr
	}
	out := make([]*FundInfo, len(funds))
	for i, f := range funds {
		out[i] = fundInfo(f)
	}
	return out, nil
}

func (s *FundService) DeactivateFund(gp string, id uint64) (*TxResult, error) {
	gpAddr, err := parseAddress(gp)
	if err != nil {
		return nil, err
	}
	rcpt, err := s.c.submit(gpAddr, func(tx *chain.TxContext) error {
		return s.c.factory.DeactivateFund(tx, id)
	})
	if err != nil {
		return nil, err
	}
	if _, err := requireEvent(rcpt, "FundDeactivated"); err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}

func (s *FundService) ReactivateFund(gp string, id uint64) (*TxResult, error) {
	gpAddr, err := parseAddress(gp)
	if err != nil {
		return nil, err
	}
	rcpt, err := s.c.submit(gpAddr, func(tx *chain.TxContext) error {
		return s.c.factory.ReactivateFund(tx, id)
	})
	if err != nil {
		return nil, err
	}
	if _, err := requireEvent(rcpt, "FundReactivated"); err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}
