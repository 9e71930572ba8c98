package service

import (
	"github.com/fundchain/chain"
)

// InvestmentService adapts the investment ledger contract.
type InvestmentService struct {
	c *Contracts
}

// LedgerFundInfo is the ledger's fund read-model.
type LedgerFundInfo struct {
	ID                uint64 `json:"id"`
	TokenAddress      string `json:"tokenAddress"`
	GP                string `json:"gp"`
	TargetAmount      string `json:"targetAmount"`
	RaisedAmount      string `json:"raisedAmount"`
	MinimumInvestment string `json:"minimumInvestment"`
	Active            bool   `json:"active"`
	InvestorCount     int    `json:"investorCount"`
}

// InvestmentInfo is the investment read-model.
type InvestmentInfo struct {
	FundID      uint64 `json:"fundId"`
	ID          uint64 `json:"investmentId"`
	Investor    string `json:"investor"`
	Token       string `json:"tokenAddress"`
	Amount      string `json:"amount"`
	TokenAmount string `json:"tokenAmount"`
	CreatedAt   int64  `json:"createdAt"`
	Status      string `json:"status"`
	ExternalRef string `json:"externalRef,omitempty"`
}

func ledgerFundInfo(f *chain.LedgerFund) *LedgerFundInfo {
	return &LedgerFundInfo{
		ID:                f.ID,
		TokenAddress:      f.Token.Hex(),
		GP:                f.GP.Hex(),
		TargetAmount:      FormatUnits(f.TargetAmount),
		RaisedAmount:      FormatUnits(f.RaisedAmount),
		MinimumInvestment: FormatUnits(f.MinimumInvestment),
		Active:            f.Active,
		InvestorCount:     f.InvestorCount,
	}
}

func investmentInfo(inv *chain.Investment) *InvestmentInfo {
	return &InvestmentInfo{
		FundID:      inv.FundID,
		ID:          inv.ID,
		Investor:    inv.Investor.Hex(),
		Token:       inv.Token.Hex(),
		Amount:      FormatUnits(inv.Amount),
		TokenAmount: FormatUnits(inv.TokenAmount),
		CreatedAt:   inv.CreatedAt.Unix(),
		Status:      inv.Status.String(),
		ExternalRef: inv.ExternalRef,
	}
}

// RegisterFundResult carries the fund id decoded from the FundRegistered
// event.
type RegisterFundResult struct {
	TxResult
	FundID uint64 `json:"fundId"`
}

func (s *InvestmentService) RegisterFund(tokenAddress, gp, targetAmount, minimumInvestment string) (*RegisterFundResult, error) {
	token, err := parseAddress(tokenAddress)
	if err != nil {
		return nil, err
	}
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
	rcpt, err := s.c.submit(s.c.signerAddr, func(tx *chain.TxContext) error {
		_, e := s.c.ledger.RegisterFund(tx, token, gpAddr, target, minimum)
		return e
	})
	if err != nil {
		return nil, err
	}
	ev, err := requireEvent(rcpt, "FundRegistered")
	if err != nil {
		return nil, err
	}
	return &RegisterFundResult{
		TxResult: *txResult(rcpt),
		FundID:   ev.Args["fundId"].(uint64),
	}, nil
}

// RecordInvestmentResult carries the ids decoded from the InvestmentRecorded
// event.
type RecordInvestmentResult struct {
	TxResult
	FundID       uint64 `json:"fundId"`
	InvestmentID uint64 `json:"investmentId"`
}

func (s *InvestmentService) RecordInvestment(fundID uint64, investor, amount, tokenAmount, externalRef string) (*RecordInvestmentResult, error) {
	investorAddr, err := parseAddress(investor)
	if err != nil {
		return nil, err
	}
	value, err := ParseUnits(amount)
	if err != nil {
		return nil, err
	}
	tokens, err := ParseUnits(tokenAmount)
	if err != nil {
		return nil, err
	}
	rcpt, err := s.c.submit(s.c.signerAddr, func(tx *chain.TxContext) error {
		_, e := s.c.ledger.RecordInvestment(tx, fundID, investorAddr, value, tokens, externalRef)
		return e
	})
	if err != nil {
		return nil, err
	}
	ev, err := requireEvent(rcpt, "InvestmentRecorded")
	if err != nil {
		return nil, err
	}
	return &RecordInvestmentResult{
		TxResult:     *txResult(rcpt),
		FundID:       ev.Args["fundId"].(uint64),
		InvestmentID: ev.Args["investmentId"].(uint64),
	}, nil
}

func (s *InvestmentService) ConfirmInvestment(fundID, investmentID uint64) (*TxResult, error) {
	rcpt, err := s.c.submit(s.c.signerAddr, func(tx *chain.TxContext) error {
		return s.c.ledger.ConfirmInvestment(tx, fundID, investmentID)
	})
	if err != nil {
		return nil, err
	}
	if _, err := requireEvent(rcpt, "InvestmentConfirmed"); err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}

// CancelInvestment submits from the given caller so the contract can enforce
// its investor-or-manager rule.
func (s *InvestmentService) CancelInvestment(caller string, fundID, investmentID uint64) (*TxResult, error) {
	callerAddr, err := parseAddress(caller)
	if err != nil {
		return nil, err
	}
	rcpt, err := s.c.submit(callerAddr, func(tx *chain.TxContext) error {
		return s.c.ledger.CancelInvestment(tx, fundID, investmentID)
	})
	if err != nil {
		return nil, err
	}
	if _, err := requireEvent(rcpt, "InvestmentCancelled"); err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}

func (s *InvestmentService) CloseFund(caller string, fundID uint64) (*TxResult, error) {
	callerAddr, err := parseAddress(caller)
	if err != nil {
		return nil, err
	}
	rcpt, err := s.c.submit(callerAddr, func(tx *chain.TxContext) error {
		return s.c.ledger.CloseFund(tx, fundID)
	})
	if err != nil {
		return nil, err
	}
	if _, err := requireEvent(rcpt, "FundClosed"); err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}

func (s *InvestmentService) GetFund(fundID uint64) (*LedgerFundInfo, error) {
	var (
		f    *chain.LedgerFund
		qerr error
	)
	if err := s.c.query(func() { f, qerr = s.c.ledger.GetFund(fundID) }); err != nil {
		return nil, err
	}
	if qerr != nil {
		return nil, qerr
	}
	return ledgerFundInfo(f), nil
}

func (s *InvestmentService) GetInvestment(fundID, investmentID uint64) (*InvestmentInfo, error) {
	var (
		inv  *chain.Investment
		qerr error
	)
	if err := s.c.query(func() { inv, qerr = s.c.ledger.GetInvestment(fundID, investmentID) }); err != nil {
		return nil, err
	}
	if qerr != nil {
		return nil, qerr
	}
	return investmentInfo(inv), nil
}

// InvestorFunds returns the deduplicated fund ids an investor has invested
// in; the raw on-chain history keeps duplicates.
func (s *InvestmentService) InvestorFunds(investor string) ([]uint64, error) {
	addr, err := parseAddress(investor)
	if err != nil {
		return nil, err
	}
	var ids []uint64
	if err := s.c.query(func() { ids = s.c.ledger.InvestorFundSet(addr) }); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *InvestmentService) TotalVolume() (string, error) {
	var total string
	if err := s.c.query(func() { total = FormatUnits(s.c.ledger.TotalVolume()) }); err != nil {
		return "", err
	}
	return total, nil
}
