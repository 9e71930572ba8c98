package service

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/fundchain/chain"
)

// IdentityService adapts the identity registry contract. All mutators submit
// from the operator signer, which owns the registry.
type IdentityService struct {
	c *Contracts
}

// TxResult carries the inclusion proof of a successful write.
type TxResult struct {
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber"`
}

func txResult(rcpt *chain.Receipt) *TxResult {
	return &TxResult{TxHash: rcpt.TxHash.Hex(), BlockNumber: rcpt.BlockNumber}
}

func (s *IdentityService) RegisterIdentity(address string, country uint16) (*TxResult, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return nil, err
	}
	rcpt, err := s.c.submit(s.c.signerAddr, func(tx *chain.TxContext) error {
		return s.c.registry.RegisterIdentity(tx, addr, country)
	})
	if err != nil {
		return nil, err
	}
	if _, err := requireEvent(rcpt, "IdentityRegistered"); err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}

// BatchRegisterIdentities registers parallel address/country arrays in one
// transaction; a failure anywhere rolls back the whole batch.
func (s *IdentityService) BatchRegisterIdentities(addresses []string, countries []uint16) (*TxResult, error) {
	addrs := make([]common.Address, len(addresses))
	for i, a := range addresses {
		addr, err := parseAddress(a)
		if err != nil {
			return nil, err
		}
		addrs[i] = addr
	}
	rcpt, err := s.c.submit(s.c.signerAddr, func(tx *chain.TxContext) error {
		return s.c.registry.BatchRegisterIdentities(tx, addrs, countries)
	})
	if err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}

// OnboardInvestor registers an identity and grants its claims atomically:
// the KYC claim always, the accredited claim when flagged. A failure at any
// step rolls back the whole onboarding.
func (s *IdentityService) OnboardInvestor(address string, country uint16, accredited bool) (*TxResult, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return nil, err
	}
	rcpt, err := s.c.submit(s.c.signerAddr, func(tx *chain.TxContext) error {
		if err := s.c.registry.RegisterIdentity(tx, addr, country); err != nil {
			return err
		}
		if err := s.c.registry.AddClaim(tx, addr, chain.ClaimKYCVerified); err != nil {
			return err
		}
		if accredited {
			return s.c.registry.AddClaim(tx, addr, chain.ClaimAccredited)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if _, err := requireEvent(rcpt, "IdentityRegistered"); err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}

func (s *IdentityService) RemoveIdentity(address string) (*TxResult, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return nil, err
	}
	rcpt, err := s.c.submit(s.c.signerAddr, func(tx *chain.TxContext) error {
		return s.c.registry.RemoveIdentity(tx, addr)
	})
	if err != nil {
		return nil, err
	}
	if _, err := requireEvent(rcpt, "IdentityRemoved"); err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}

func (s *IdentityService) AddClaim(address string, topic uint) (*TxResult, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return nil, err
	}
	rcpt, err := s.c.submit(s.c.signerAddr, func(tx *chain.TxContext) error {
		return s.c.registry.AddClaim(tx, addr, topic)
	})
	if err != nil {
		return nil, err
	}
	if _, err := requireEvent(rcpt, "ClaimAdded"); err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}

func (s *IdentityService) RemoveClaim(address string, topic uint) (*TxResult, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return nil, err
	}
	rcpt, err := s.c.submit(s.c.signerAddr, func(tx *chain.TxContext) error {
		return s.c.registry.RemoveClaim(tx, addr, topic)
	})
	if err != nil {
		return nil, err
	}
	if _, err := requireEvent(rcpt, "ClaimRemoved"); err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}

func (s *IdentityService) UpdateCountry(address string, country uint16) (*TxResult, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return nil, err
	}
	rcpt, err := s.c.submit(s.c.signerAddr, func(tx *chain.TxContext) error {
		return s.c.registry.UpdateCountry(tx, addr, country)
	})
	if err != nil {
		return nil, err
	}
	if _, err := requireEvent(rcpt, "CountryUpdated"); err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}

func (s *IdentityService) LinkWallet(primary, secondary string) (*TxResult, error) {
	p, err := parseAddress(primary)
	if err != nil {
		return nil, err
	}
	sec, err := parseAddress(secondary)
	if err != nil {
		return nil, err
	}
	rcpt, err := s.c.submit(s.c.signerAddr, func(tx *chain.TxContext) error {
		return s.c.registry.LinkWallet(tx, p, sec)
	})
	if err != nil {
		return nil, err
	}
	if _, err := requireEvent(rcpt, "WalletLinked"); err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}

func (s *IdentityService) IsVerified(address string) (bool, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return false, err
	}
	var verified bool
	if err := s.c.query(func() { verified = s.c.registry.IsVerified(addr) }); err != nil {
		return false, err
	}
	return verified, nil
}

func (s *IdentityService) HasClaim(address string, topic uint) (bool, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return false, err
	}
	var has bool
	if err := s.c.query(func() { has = s.c.registry.HasClaim(addr, topic) }); err != nil {
		return false, err
	}
	return has, nil
}

func (s *IdentityService) GetCountry(address string) (uint16, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return 0, err
	}
	var (
		country uint16
		qerr    error
	)
	if err := s.c.query(func() { country, qerr = s.c.registry.GetCountry(addr) }); err != nil {
		return 0, err
	}
	return country, qerr
}
