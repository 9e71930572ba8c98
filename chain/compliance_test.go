package chain

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplianceReadsDoNotCreateConfig(t *testing.T) {
	env := newTestEnv()
	unknown := common.HexToAddress("0x00000000000000000000000000000000000000E1")

	assert.False(t, env.module.IsRestricted(unknown))
	assert.Equal(t, 0, env.module.GetMaxHolders(unknown))
	assert.Equal(t, time.Duration(0), env.module.GetMinHoldingPeriod(unknown))
	assert.False(t, env.module.IsAccreditedRequired(unknown))
	assert.Equal(t, 0, env.module.HolderCount(unknown))
	assert.True(t, env.module.IsCountryAllowed(unknown, 840))

	ok, _ := env.module.CanTransfer(unknown, investor, investo2, true)
	assert.True(t, ok)

	// getters on an unconfigured token must leave the config map untouched
	assert.Empty(t, env.module.tokens)
}

func TestFactoryFundRestrictedFromDeployment(t *testing.T) {
	env := newTestEnv()
	_, token := newFund(t, env)
	env.mustRegisterIdentity(investor, 840)

	_, err := env.submit(gp1, func(tx *TxContext) error {
		return token.Mint(tx, investor, eth(100))
	})
	require.NoError(t, err)

	// no configuration beyond deployment: the token is already restricted,
	// so an unverified recipient is denied
	assert.True(t, env.module.IsRestricted(token.Address()))
	ok, reason := token.CanTransfer(investor, investo2, eth(10))
	assert.False(t, ok)
	assert.Equal(t, "Recipient identity not verified", reason)

	// an empty allow-list restricts no country, so any verified recipient
	// passes
	env.mustRegisterIdentity(investo2, 999)
	ok, _ = token.CanTransfer(investor, investo2, eth(10))
	assert.True(t, ok)
}
