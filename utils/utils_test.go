package utils

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestDefaultHashSum(t *testing.T) {
	a, b := []byte("solution"), []byte("key")
	require.Equal(t, crypto.Keccak256(a, b), DefaultHashSum(a, b))
	require.Equal(t, crypto.Keccak256([]byte("solutionkey")), DefaultHashSum(a, b))
}

func TestParseBigInt(t *testing.T) {
	for _, tc := range []struct {
		in  string
		exp int64
	}{
		{"0x0000000000000000000000000000000000000000000000000000000000000031", 49},
		{"0x1", 1},
		{"0X0a", 10},
		{"49", 49},
		{" 7 ", 7},
	} {
		v, err := ParseBigInt(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, big.NewInt(tc.exp), v, tc.in)
	}

	for _, bad := range []string{"", "0x", "0xzz", "-1", "12a"} {
		_, err := ParseBigInt(bad)
		require.Error(t, err, bad)
	}
}
