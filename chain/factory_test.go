package chain

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFundRequiresApprovedGP(t *testing.T) {
	env := newTestEnv()

	_, err := env.submit(gp1, func(tx *TxContext) error {
		_, e := env.factory.CreateFund(tx, "Fund", "FND", eth(1000), eth(10))
		return e
	})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 0, env.factory.FundCount())
}

func TestCreateFundSequentialIDs(t *testing.T) {
	env := newTestEnv()
	_, err := env.submit(admin, func(tx *TxContext) error {
		return env.factory.BatchApproveGPs(tx, []common.Address{gp1, gp2})
	})
	require.NoError(t, err)

	gps := []common.Address{gp1, gp2, gp1}
	for i, gp := range gps {
		var fund *Fund
		rcpt, err := env.submit(gp, func(tx *TxContext) error {
			var e error
			fund, e = env.factory.CreateFund(tx, "Fund", "FND", eth(1000), eth(10))
			return e
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(i+1), fund.ID)
		ev := rcpt.FindEvent("FundCreated")
		require.NotNil(t, ev)
		assert.Equal(t, uint64(i+1), ev.Args["fundId"])
		assert.Equal(t, gp, ev.Args["gp"])
	}

	// token addresses are unique and reverse-indexed
	f1, err := env.factory.GetFund(1)
	require.NoError(t, err)
	f2, err := env.factory.GetFund(2)
	require.NoError(t, err)
	assert.NotEqual(t, f1.Token, f2.Token)

	byToken, err := env.factory.GetFundByToken(f2.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), byToken.ID)
}

func TestCreateFundValidation(t *testing.T) {
	env := newTestEnv()
	_, err := env.submit(admin, func(tx *TxContext) error {
		return env.factory.ApproveGP(tx, gp1)
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		fund   string
		symbol string
		target int64
		min    int64
	}{
		{"empty name", "", "FND", 1000, 10},
		{"empty symbol", "Fund", "", 1000, 10},
		{"zero target", "Fund", "FND", 0, 10},
		{"zero minimum", "Fund", "FND", 1000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.submit(gp1, func(tx *TxContext) error {
				_, e := env.factory.CreateFund(tx, tt.fund, tt.symbol, eth(tt.target), eth(tt.min))
				return e
			})
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
	assert.Equal(t, 0, env.factory.FundCount())
}

func TestGetFundNotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.factory.GetFund(0)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.factory.GetFund(1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGPApprovalStateGuards(t *testing.T) {
	env := newTestEnv()

	_, err := env.submit(admin, func(tx *TxContext) error {
		return env.factory.ApproveGP(tx, gp1)
	})
	require.NoError(t, err)

	_, err = env.submit(admin, func(tx *TxContext) error {
		return env.factory.ApproveGP(tx, gp1)
	})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = env.submit(admin, func(tx *TxContext) error {
		return env.factory.RevokeGP(tx, gp2)
	})
	assert.ErrorIs(t, err, ErrInvalidState)

	// batch approval skips zero addresses and duplicates instead of failing
	rcpt, err := env.submit(admin, func(tx *TxContext) error {
		return env.factory.BatchApproveGPs(tx, []common.Address{{}, gp1, gp2})
	})
	require.NoError(t, err)
	assert.Len(t, rcpt.Events, 1)
	assert.True(t, env.factory.IsApprovedGP(gp2))
}

func TestGetActiveFundsPagination(t *testing.T) {
	env := newTestEnv()
	_, err := env.submit(admin, func(tx *TxContext) error {
		return env.factory.ApproveGP(tx, gp1)
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := env.submit(gp1, func(tx *TxContext) error {
			_, e := env.factory.CreateFund(tx, "Fund", "FND", eth(1000), eth(10))
			return e
		})
		require.NoError(t, err)
	}

	funds, err := env.factory.GetActiveFunds(1, 10)
	require.NoError(t, err)
	require.Len(t, funds, 2)
	assert.Equal(t, uint64(2), funds[0].ID)
	assert.Equal(t, uint64(3), funds[1].ID)

	funds, err = env.factory.GetActiveFunds(10, 10)
	require.NoError(t, err)
	assert.Empty(t, funds)

	_, err = env.factory.GetActiveFunds(0, 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = env.factory.GetActiveFunds(0, 101)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	// deactivated funds drop out of the page
	_, err = env.submit(gp1, func(tx *TxContext) error {
		return env.factory.DeactivateFund(tx, 2)
	})
	require.NoError(t, err)
	funds, err = env.factory.GetActiveFunds(0, 10)
	require.NoError(t, err)
	require.Len(t, funds, 2)
	assert.Equal(t, uint64(1), funds[0].ID)
	assert.Equal(t, uint64(3), funds[1].ID)
}

func TestFundActivationGuards(t *testing.T) {
	env := newTestEnv()
	fund, _ := newFund(t, env)

	// only the fund's own GP may toggle
	_, err := env.submit(admin, func(tx *TxContext) error {
		return env.factory.DeactivateFund(tx, fund.ID)
	})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = env.submit(gp1, func(tx *TxContext) error {
		return env.factory.ReactivateFund(tx, fund.ID)
	})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = env.submit(gp1, func(tx *TxContext) error {
		return env.factory.DeactivateFund(tx, fund.ID)
	})
	require.NoError(t, err)

	_, err = env.submit(gp1, func(tx *TxContext) error {
		return env.factory.DeactivateFund(tx, fund.ID)
	})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = env.submit(gp1, func(tx *TxContext) error {
		return env.factory.ReactivateFund(tx, fund.ID)
	})
	require.NoError(t, err)
}
