package service

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUnits(t *testing.T) {
	cases := []struct {
		name string
		in   *big.Int
		want string
	}{
		{"nil", nil, "0"},
		{"zero", big.NewInt(0), "0"},
		{"whole", new(big.Int).Mul(big.NewInt(5), big.NewInt(1e18)), "5"},
		{"fractional", big.NewInt(1500000000000000000), "1.5"},
		{"one wei", big.NewInt(1), "0.000000000000000001"},
		{"large", new(big.Int).Mul(big.NewInt(1000000), big.NewInt(1e18)), "1000000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatUnits(tc.in))
		})
	}
}

func TestParseUnits(t *testing.T) {
	v, err := ParseUnits("1.5")
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", v.String())

	v, err = ParseUnits("0")
	require.NoError(t, err)
	assert.Equal(t, "0", v.String())

	v, err = ParseUnits("1000000")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000000000", v.String())

	// full precision survives
	v, err = ParseUnits("0.000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, "1", v.String())
}

func TestParseUnitsRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "abc", "1,5", "-1", "-0.5", "0.0000000000000000001"} {
		_, err := ParseUnits(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, s := range []string{"0.1", "42", "999.999999999999999999"} {
		v, err := ParseUnits(s)
		require.NoError(t, err)
		assert.Equal(t, s, FormatUnits(v))
	}
}
