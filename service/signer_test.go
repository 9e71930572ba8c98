package service

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// well-known development account 0, safe to hardcode
const (
	devPrivateKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devMnemonic   = "test test test test test test test test test test test junk"
	devAddress    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestResolveSignerKeyFromHex(t *testing.T) {
	key, err := resolveSignerKey(devPrivateKey, "")
	require.NoError(t, err)
	assert.Equal(t, devAddress, crypto.PubkeyToAddress(key.PublicKey).Hex())

	// without the 0x prefix too
	key, err = resolveSignerKey(devPrivateKey[2:], "")
	require.NoError(t, err)
	assert.Equal(t, devAddress, crypto.PubkeyToAddress(key.PublicKey).Hex())
}

func TestResolveSignerKeyFromMnemonic(t *testing.T) {
	key, err := resolveSignerKey("", devMnemonic)
	require.NoError(t, err)
	assert.Equal(t, devAddress, crypto.PubkeyToAddress(key.PublicKey).Hex())
}

func TestResolveSignerKeyPrivateKeyWins(t *testing.T) {
	key, err := resolveSignerKey(devPrivateKey, "some other mnemonic that would not parse")
	require.NoError(t, err)
	assert.Equal(t, devAddress, crypto.PubkeyToAddress(key.PublicKey).Hex())
}

func TestResolveSignerKeyErrors(t *testing.T) {
	_, err := resolveSignerKey("", "")
	assert.Error(t, err)

	_, err = resolveSignerKey("not-hex", "")
	assert.Error(t, err)

	_, err = resolveSignerKey("", "definitely not a valid mnemonic phrase")
	assert.Error(t, err)
}
