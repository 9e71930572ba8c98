package service

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fundchain/chain"
)

// TokenService adapts a deployed fund token. Owner-only operations submit
// from the token owner (the fund's GP), passed explicitly.
type TokenService struct {
	c *Contracts
}

// BalanceInfo is the token view of one holder, amounts as decimal strings.
type BalanceInfo struct {
	Balance          string `json:"balance"`
	FrozenTokens     string `json:"frozenTokens"`
	AvailableBalance string `json:"availableBalance"`
	Frozen           bool   `json:"frozen"`
}

// TransferCheck is the non-mutating pre-validation result the frontend uses
// before submitting a transfer.
type TransferCheck struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func (s *TokenService) token(tokenAddress string) (*chain.FundToken, error) {
	addr, err := parseAddress(tokenAddress)
	if err != nil {
		return nil, err
	}
	var (
		token *chain.FundToken
		qerr  error
	)
	if err := s.c.query(func() { token, qerr = s.c.factory.Token(addr) }); err != nil {
		return nil, err
	}
	return token, qerr
}

func (s *TokenService) ownerOp(tokenAddress string, event string, fn func(t *chain.FundToken, tx *chain.TxContext) error) (*TxResult, error) {
	token, err := s.token(tokenAddress)
	if err != nil {
		return nil, err
	}
	rcpt, err := s.c.submit(token.Owner(), func(tx *chain.TxContext) error {
		return fn(token, tx)
	})
	if err != nil {
		return nil, err
	}
	if event != "" {
		if _, err := requireEvent(rcpt, event); err != nil {
			return nil, err
		}
	}
	return txResult(rcpt), nil
}

func (s *TokenService) Mint(tokenAddress, to, amount string) (*TxResult, error) {
	toAddr, err := parseAddress(to)
	if err != nil {
		return nil, err
	}
	value, err := ParseUnits(amount)
	if err != nil {
		return nil, err
	}
	return s.ownerOp(tokenAddress, "Mint", func(t *chain.FundToken, tx *chain.TxContext) error {
		return t.Mint(tx, toAddr, value)
	})
}

func (s *TokenService) BatchMint(tokenAddress string, tos []string, amounts []string) (*TxResult, error) {
	addrs := make([]common.Address, len(tos))
	for i, to := range tos {
		a, err := parseAddress(to)
		if err != nil {
			return nil, err
		}
		addrs[i] = a
	}
	values := make([]*big.Int, len(amounts))
	for i, amt := range amounts {
		v, err := ParseUnits(amt)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return s.ownerOp(tokenAddress, "", func(t *chain.FundToken, tx *chain.TxContext) error {
		return t.BatchMint(tx, addrs, values)
	})
}

func (s *TokenService) Transfer(tokenAddress, from, to, amount string) (*TxResult, error) {
	token, err := s.token(tokenAddress)
	if err != nil {
		return nil, err
	}
	fromAddr, err := parseAddress(from)
	if err != nil {
		return nil, err
	}
	toAddr, err := parseAddress(to)
	if err != nil {
		return nil, err
	}
	value, err := ParseUnits(amount)
	if err != nil {
		return nil, err
	}
	rcpt, err := s.c.submit(fromAddr, func(tx *chain.TxContext) error {
		return token.Transfer(tx, toAddr, value)
	})
	if err != nil {
		return nil, err
	}
	if _, err := requireEvent(rcpt, "Transfer"); err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}

// BatchTransfer sends from one holder to parallel recipient/amount arrays;
// any denial fails the whole batch.
func (s *TokenService) BatchTransfer(tokenAddress, from string, tos []string, amounts []string) (*TxResult, error) {
	token, err := s.token(tokenAddress)
	if err != nil {
		return nil, err
	}
	fromAddr, err := parseAddress(from)
	if err != nil {
		return nil, err
	}
	addrs := make([]common.Address, len(tos))
	for i, to := range tos {
		a, err := parseAddress(to)
		if err != nil {
			return nil, err
		}
		addrs[i] = a
	}
	values := make([]*big.Int, len(amounts))
	for i, amt := range amounts {
		v, err := ParseUnits(amt)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	rcpt, err := s.c.submit(fromAddr, func(tx *chain.TxContext) error {
		return token.BatchTransfer(tx, addrs, values)
	})
	if err != nil {
		return nil, err
	}
	return txResult(rcpt), nil
}

func (s *TokenService) FreezeAccount(tokenAddress, account string) (*TxResult, error) {
	addr, err := parseAddress(account)
	if err != nil {
		return nil, err
	}
	return s.ownerOp(tokenAddress, "AccountFrozen", func(t *chain.FundToken, tx *chain.TxContext) error {
		return t.FreezeAccount(tx, addr)
	})
}

func (s *TokenService) UnfreezeAccount(tokenAddress, account string) (*TxResult, error) {
	addr, err := parseAddress(account)
	if err != nil {
		return nil, err
	}
	return s.ownerOp(tokenAddress, "AccountUnfrozen", func(t *chain.FundToken, tx *chain.TxContext) error {
		return t.UnfreezeAccount(tx, addr)
	})
}

func (s *TokenService) FreezePartialTokens(tokenAddress, account, amount string) (*TxResult, error) {
	addr, err := parseAddress(account)
	if err != nil {
		return nil, err
	}
	value, err := ParseUnits(amount)
	if err != nil {
		return nil, err
	}
	return s.ownerOp(tokenAddress, "TokensFrozen", func(t *chain.FundToken, tx *chain.TxContext) error {
		return t.FreezePartialTokens(tx, addr, value)
	})
}

func (s *TokenService) UnfreezePartialTokens(tokenAddress, account, amount string) (*TxResult, error) {
	addr, err := parseAddress(account)
	if err != nil {
		return nil, err
	}
	value, err := ParseUnits(amount)
	if err != nil {
		return nil, err
	}
	return s.ownerOp(tokenAddress, "TokensUnfrozen", func(t *chain.FundToken, tx *chain.TxContext) error {
		return t.UnfreezePartialTokens(tx, addr, value)
	})
}

func (s *TokenService) ForcedTransfer(tokenAddress, from, to, amount string) (*TxResult, error) {
	fromAddr, err := parseAddress(from)
	if err != nil {
		return nil, err
	}
	toAddr, err := parseAddress(to)
	if err != nil {
		return nil, err
	}
	value, err := ParseUnits(amount)
	if err != nil {
		return nil, err
	}
	return s.ownerOp(tokenAddress, "ForcedTransfer", func(t *chain.FundToken, tx *chain.TxContext) error {
		return t.ForcedTransfer(tx, fromAddr, toAddr, value)
	})
}

func (s *TokenService) RecoveryTransfer(tokenAddress, lost, replacement string) (*TxResult, error) {
	lostAddr, err := parseAddress(lost)
	if err != nil {
		return nil, err
	}
	replAddr, err := parseAddress(replacement)
	if err != nil {
		return nil, err
	}
	return s.ownerOp(tokenAddress, "TokensRecovered", func(t *chain.FundToken, tx *chain.TxContext) error {
		return t.RecoveryTransfer(tx, lostAddr, replAddr)
	})
}

func (s *TokenService) BalanceOf(tokenAddress, holder string) (*BalanceInfo, error) {
	token, err := s.token(tokenAddress)
	if err != nil {
		return nil, err
	}
	addr, err := parseAddress(holder)
	if err != nil {
		return nil, err
	}
	var info *BalanceInfo
	if err := s.c.query(func() {
		info = &BalanceInfo{
			Balance:          FormatUnits(token.BalanceOf(addr)),
			FrozenTokens:     FormatUnits(token.FrozenTokens(addr)),
			AvailableBalance: FormatUnits(token.AvailableBalance(addr)),
			Frozen:           token.IsFrozen(addr),
		}
	}); err != nil {
		return nil, err
	}
	return info, nil
}

// CheckTransfer pre-validates a transfer without mutating state.
func (s *TokenService) CheckTransfer(tokenAddress, from, to, amount string) (*TransferCheck, error) {
	token, err := s.token(tokenAddress)
	if err != nil {
		return nil, err
	}
	fromAddr, err := parseAddress(from)
	if err != nil {
		return nil, err
	}
	toAddr, err := parseAddress(to)
	if err != nil {
		return nil, err
	}
	value, err := ParseUnits(amount)
	if err != nil {
		return nil, err
	}
	var (
		ok     bool
		reason string
	)
	if err := s.c.query(func() { ok, reason = token.CanTransfer(fromAddr, toAddr, value) }); err != nil {
		return nil, err
	}
	return &TransferCheck{Allowed: ok, Reason: reason}, nil
}
