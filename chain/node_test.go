package chain

import (
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Read-path safety under concurrent writes: queries hold the node's read
// lock while a mint loop commits transactions. Run with -race.
func TestConcurrentQueriesDuringSubmit(t *testing.T) {
	env := newTestEnv()
	_, token := newFund(t, env)
	env.mustRegisterIdentity(investor, 840)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			fresh := common.BigToAddress(big.NewInt(int64(0x1000 + n)))
			for {
				select {
				case <-stop:
					return
				default:
				}
				env.node.Query(func() {
					env.module.IsRestricted(token.Address())
					env.module.HolderCount(fresh)
					env.module.CanTransfer(fresh, investor, investo2, true)
					env.registry.IsVerified(investor)
					token.BalanceOf(investor)
				})
			}
		}(i)
	}

	for i := 0; i < 200; i++ {
		_, err := env.submit(gp1, func(tx *TxContext) error {
			return token.Mint(tx, investor, eth(1))
		})
		require.NoError(t, err)
	}
	close(stop)
	wg.Wait()

	assert.Equal(t, eth(200), token.BalanceOf(investor))
}
