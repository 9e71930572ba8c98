package chain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFund approves gp1 and creates one fund, returning the fund and its
// token. Factory tokens come up restricted with no country allow-list.
func newFund(t *testing.T, env *testEnv) (*Fund, *FundToken) {
	t.Helper()
	_, err := env.submit(admin, func(tx *TxContext) error {
		return env.factory.ApproveGP(tx, gp1)
	})
	require.NoError(t, err)

	var fund *Fund
	_, err = env.submit(gp1, func(tx *TxContext) error {
		var e error
		fund, e = env.factory.CreateFund(tx, "Growth Fund I", "GFI", eth(1000), eth(10))
		return e
	})
	require.NoError(t, err)

	token, err := env.factory.Token(fund.Token)
	require.NoError(t, err)
	return fund, token
}

func restrict(t *testing.T, env *testEnv, token common.Address) {
	t.Helper()
	_, err := env.submit(admin, func(tx *TxContext) error {
		if err := env.module.SetRestricted(tx, token, true); err != nil {
			return err
		}
		if err := env.module.AllowCountry(tx, token, 840); err != nil {
			return err
		}
		return env.module.AllowCountry(tx, token, 276)
	})
	require.NoError(t, err)
}

func TestMintRequiresVerifiedRecipient(t *testing.T) {
	env := newTestEnv()
	_, token := newFund(t, env)

	_, err := env.submit(gp1, func(tx *TxContext) error {
		return token.Mint(tx, investor, eth(100))
	})
	assert.ErrorIs(t, err, ErrComplianceDenied)

	env.mustRegisterIdentity(investor, 840)
	rcpt, err := env.submit(gp1, func(tx *TxContext) error {
		return token.Mint(tx, investor, eth(100))
	})
	require.NoError(t, err)
	require.NotNil(t, rcpt.FindEvent("Mint"))
	assert.Equal(t, eth(100), token.BalanceOf(investor))
	assert.Equal(t, eth(100), token.TotalSupply())
	assert.Equal(t, 1, env.module.HolderCount(token.Address()))
}

func TestTransferComplianceDenial(t *testing.T) {
	env := newTestEnv()
	_, token := newFund(t, env)
	restrict(t, env, token.Address())
	env.mustRegisterIdentity(investor, 840)

	_, err := env.submit(gp1, func(tx *TxContext) error {
		return token.Mint(tx, investor, eth(100))
	})
	require.NoError(t, err)

	// recipient unverified: transfer denied with a verification reason
	ok, reason := token.CanTransfer(investor, investo2, eth(50))
	assert.False(t, ok)
	assert.Equal(t, "Recipient identity not verified", reason)

	_, err = env.submit(investor, func(tx *TxContext) error {
		return token.Transfer(tx, investo2, eth(50))
	})
	assert.ErrorIs(t, err, ErrComplianceDenied)
	assert.Equal(t, eth(100), token.BalanceOf(investor))

	// after registration the identical transfer succeeds
	env.mustRegisterIdentity(investo2, 276)
	_, err = env.submit(investor, func(tx *TxContext) error {
		return token.Transfer(tx, investo2, eth(50))
	})
	require.NoError(t, err)
	assert.Equal(t, eth(50), token.BalanceOf(investo2))
	assert.Equal(t, 2, env.module.HolderCount(token.Address()))
}

func TestTransferCountryAndAccreditation(t *testing.T) {
	env := newTestEnv()
	_, token := newFund(t, env)
	restrict(t, env, token.Address())
	env.mustRegisterIdentity(investor, 840)
	env.mustRegisterIdentity(investo2, 999) // not on the allow-list

	_, err := env.submit(gp1, func(tx *TxContext) error {
		return token.Mint(tx, investor, eth(100))
	})
	require.NoError(t, err)

	ok, reason := token.CanTransfer(investor, investo2, eth(10))
	assert.False(t, ok)
	assert.Equal(t, "Recipient country not allowed", reason)

	_, err = env.submit(admin, func(tx *TxContext) error {
		return env.registry.UpdateCountry(tx, investo2, 276)
	})
	require.NoError(t, err)

	_, err = env.submit(admin, func(tx *TxContext) error {
		return env.module.SetAccreditedRequired(tx, token.Address(), true)
	})
	require.NoError(t, err)

	ok, reason = token.CanTransfer(investor, investo2, eth(10))
	assert.False(t, ok)
	assert.Equal(t, "Recipient not accredited", reason)

	_, err = env.submit(admin, func(tx *TxContext) error {
		return env.registry.AddClaim(tx, investo2, ClaimAccredited)
	})
	require.NoError(t, err)

	ok, _ = token.CanTransfer(investor, investo2, eth(10))
	assert.True(t, ok)
}

func TestMaxHoldersOnlyForNewHolders(t *testing.T) {
	env := newTestEnv()
	_, token := newFund(t, env)
	restrict(t, env, token.Address())
	env.mustRegisterIdentity(investor, 840)
	env.mustRegisterIdentity(investo2, 276)

	_, err := env.submit(admin, func(tx *TxContext) error {
		return env.module.SetMaxHolders(tx, token.Address(), 1)
	})
	require.NoError(t, err)

	_, err = env.submit(gp1, func(tx *TxContext) error {
		return token.Mint(tx, investor, eth(100))
	})
	require.NoError(t, err)

	// a second holder would exceed the cap
	ok, reason := token.CanTransfer(investor, investo2, eth(10))
	assert.False(t, ok)
	assert.Equal(t, "Maximum holder count reached", reason)

	// topping up an existing holder is fine
	ok, _ = token.CanTransfer(investor, investor, eth(10))
	assert.True(t, ok)
}

func TestAvailableBalanceInvariant(t *testing.T) {
	env := newTestEnv()
	_, token := newFund(t, env)
	env.mustRegisterIdentity(investor, 840)

	_, err := env.submit(gp1, func(tx *TxContext) error {
		return token.Mint(tx, investor, eth(100))
	})
	require.NoError(t, err)
	assert.Equal(t, eth(100), token.AvailableBalance(investor))

	_, err = env.submit(gp1, func(tx *TxContext) error {
		return token.FreezePartialTokens(tx, investor, eth(30))
	})
	require.NoError(t, err)
	assert.Equal(t, eth(70), token.AvailableBalance(investor))
	assert.Equal(t, eth(30), token.FrozenTokens(investor))

	// freeze/unfreeze of the same amount restores availability
	_, err = env.submit(gp1, func(tx *TxContext) error {
		return token.UnfreezePartialTokens(tx, investor, eth(30))
	})
	require.NoError(t, err)
	assert.Equal(t, eth(100), token.AvailableBalance(investor))

	// unfreeze beyond frozen amount rejected
	_, err = env.submit(gp1, func(tx *TxContext) error {
		return token.UnfreezePartialTokens(tx, investor, eth(1))
	})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	// full freeze zeroes availability regardless of partial state
	_, err = env.submit(gp1, func(tx *TxContext) error {
		return token.FreezeAccount(tx, investor)
	})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(0), token.AvailableBalance(investor))

	ok, reason := token.CanTransfer(investor, investo2, eth(1))
	assert.False(t, ok)
	assert.Equal(t, "Sender account frozen", reason)
}

func TestInsufficientUnfrozenBalance(t *testing.T) {
	env := newTestEnv()
	_, token := newFund(t, env)
	env.mustRegisterIdentity(investor, 840)
	env.mustRegisterIdentity(investo2, 276)

	_, err := env.submit(gp1, func(tx *TxContext) error {
		if err := token.Mint(tx, investor, eth(100)); err != nil {
			return err
		}
		return token.FreezePartialTokens(tx, investor, eth(60))
	})
	require.NoError(t, err)

	_, err = env.submit(investor, func(tx *TxContext) error {
		return token.Transfer(tx, investo2, eth(50))
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrComplianceDenied)
	assert.Equal(t, "Insufficient unfrozen balance", err.Error())
}

func TestForcedTransferRespectsUnfrozenBalance(t *testing.T) {
	env := newTestEnv()
	_, token := newFund(t, env)
	env.mustRegisterIdentity(investor, 840)

	_, err := env.submit(gp1, func(tx *TxContext) error {
		if err := token.Mint(tx, investor, eth(100)); err != nil {
			return err
		}
		return token.FreezePartialTokens(tx, investor, eth(80))
	})
	require.NoError(t, err)

	// forced transfer skips compliance but not the frozen bound
	_, err = env.submit(gp1, func(tx *TxContext) error {
		return token.ForcedTransfer(tx, investor, outsider, eth(50))
	})
	assert.ErrorIs(t, err, ErrComplianceDenied)

	rcpt, err := env.submit(gp1, func(tx *TxContext) error {
		return token.ForcedTransfer(tx, investor, outsider, eth(20))
	})
	require.NoError(t, err)
	require.NotNil(t, rcpt.FindEvent("ForcedTransfer"))
	assert.Equal(t, eth(20), token.BalanceOf(outsider))
}

func TestRecoveryTransfer(t *testing.T) {
	env := newTestEnv()
	_, token := newFund(t, env)
	env.mustRegisterIdentity(investor, 840)

	_, err := env.submit(gp1, func(tx *TxContext) error {
		return token.Mint(tx, investor, eth(100))
	})
	require.NoError(t, err)

	replacement := common.HexToAddress("0x00000000000000000000000000000000000000C7")

	// destination must verify independently
	_, err = env.submit(gp1, func(tx *TxContext) error {
		return token.RecoveryTransfer(tx, investor, replacement)
	})
	assert.ErrorIs(t, err, ErrComplianceDenied)

	env.mustRegisterIdentity(replacement, 840)
	rcpt, err := env.submit(gp1, func(tx *TxContext) error {
		return token.RecoveryTransfer(tx, investor, replacement)
	})
	require.NoError(t, err)
	require.NotNil(t, rcpt.FindEvent("TokensRecovered"))
	assert.Equal(t, big.NewInt(0), token.BalanceOf(investor))
	assert.Equal(t, eth(100), token.BalanceOf(replacement))
}

func TestBatchTransferAtomicity(t *testing.T) {
	env := newTestEnv()
	_, token := newFund(t, env)
	env.mustRegisterIdentity(investor, 840)
	env.mustRegisterIdentity(investo2, 276)

	_, err := env.submit(gp1, func(tx *TxContext) error {
		return token.Mint(tx, investor, eth(100))
	})
	require.NoError(t, err)

	// length mismatch fails the whole batch
	_, err = env.submit(investor, func(tx *TxContext) error {
		return token.BatchTransfer(tx, []common.Address{investo2}, []*big.Int{eth(10), eth(20)})
	})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	// a failing later entry rolls back the earlier ones
	_, err = env.submit(investor, func(tx *TxContext) error {
		return token.BatchTransfer(tx,
			[]common.Address{investo2, investo2},
			[]*big.Int{eth(10), eth(1000)})
	})
	require.Error(t, err)
	assert.Equal(t, eth(100), token.BalanceOf(investor))
	assert.Equal(t, big.NewInt(0), token.BalanceOf(investo2))
}

func TestComplianceDisabledAllowsAll(t *testing.T) {
	env := newTestEnv()
	_, token := newFund(t, env)
	env.mustRegisterIdentity(investor, 840)

	_, err := env.submit(gp1, func(tx *TxContext) error {
		return token.Mint(tx, investor, eth(100))
	})
	require.NoError(t, err)

	_, err = env.submit(gp1, func(tx *TxContext) error {
		return token.SetComplianceEnabled(tx, false)
	})
	require.NoError(t, err)

	// unverified recipient is fine once compliance is off
	_, err = env.submit(investor, func(tx *TxContext) error {
		return token.Transfer(tx, outsider, eth(25))
	})
	require.NoError(t, err)
	assert.Equal(t, eth(25), token.BalanceOf(outsider))
}
