package service

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fundchain/chain"
)

// ComplianceService adapts the per-token compliance configuration.
type ComplianceService struct {
	c *Contracts
}

func (c *Contracts) Compliance() *ComplianceService {
	return &ComplianceService{c: c}
}

// ComplianceInfo is the per-token configuration read-model.
type ComplianceInfo struct {
	Restricted         bool  `json:"restricted"`
	MaxHolders         int   `json:"maxHolders"`
	MinHoldingPeriod   int64 `json:"minHoldingPeriodSeconds"`
	AccreditedRequired bool  `json:"accreditedRequired"`
	HolderCount        int   `json:"holderCount"`
}

func (s *ComplianceService) configOp(token string, fn func(tx *chain.TxContext, addr common.Address) error) (*TxResult, error) {
	addr, err := parseAddress(token)
	if err != nil {
		return nil, err
	}
	rcpt, err := s.c.submit(s.c.signerAddr, func(tx *chain.TxContext) error {
		return fn(tx, addr)
	})
	if err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}

func (s *ComplianceService) SetRestricted(token string, restricted bool) (*TxResult, error) {
	return s.configOp(token, func(tx *chain.TxContext, addr common.Address) error {
		return s.c.module.SetRestricted(tx, addr, restricted)
	})
}

func (s *ComplianceService) SetMaxHolders(token string, max int) (*TxResult, error) {
	return s.configOp(token, func(tx *chain.TxContext, addr common.Address) error {
		return s.c.module.SetMaxHolders(tx, addr, max)
	})
}

func (s *ComplianceService) SetMinHoldingPeriod(token string, seconds int64) (*TxResult, error) {
	return s.configOp(token, func(tx *chain.TxContext, addr common.Address) error {
		return s.c.module.SetMinHoldingPeriod(tx, addr, time.Duration(seconds)*time.Second)
	})
}

func (s *ComplianceService) SetAccreditedRequired(token string, required bool) (*TxResult, error) {
	return s.configOp(token, func(tx *chain.TxContext, addr common.Address) error {
		return s.c.module.SetAccreditedRequired(tx, addr, required)
	})
}

func (s *ComplianceService) AllowCountry(token string, country uint16) (*TxResult, error) {
	return s.configOp(token, func(tx *chain.TxContext, addr common.Address) error {
		return s.c.module.AllowCountry(tx, addr, country)
	})
}

func (s *ComplianceService) DisallowCountry(token string, country uint16) (*TxResult, error) {
	return s.configOp(token, func(tx *chain.TxContext, addr common.Address) error {
		return s.c.module.DisallowCountry(tx, addr, country)
	})
}

func (s *ComplianceService) GetConfig(token string) (*ComplianceInfo, error) {
	addr, err := parseAddress(token)
	if err != nil {
		return nil, err
	}
	var info *ComplianceInfo
	if err := s.c.query(func() {
		info = &ComplianceInfo{
			Restricted:         s.c.module.IsRestricted(addr),
			MaxHolders:         s.c.module.GetMaxHolders(addr),
			MinHoldingPeriod:   int64(s.c.module.GetMinHoldingPeriod(addr) / time.Second),
			AccreditedRequired: s.c.module.IsAccreditedRequired(addr),
			HolderCount:        s.c.module.HolderCount(addr),
		}
	}); err != nil {
		return nil, err
	}
	return info, nil
}
