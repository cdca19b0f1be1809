package utils

import (
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
	"hash"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// DefaultHasher returns a fresh legacy Keccak-256 state, the hash used by
// the EVM and therefore by solution keys.
func DefaultHasher() hash.Hash {
	return crypto.NewKeccakState()
}

// DefaultHashSum hashes the concatenation of ins.
func DefaultHashSum(ins ...[]byte) []byte {
	hasher := DefaultHasher()
	for _, in := range ins {
		if _, err := hasher.Write(in); err != nil {
			panic(err)
		}
	}
	return hasher.Sum(nil)
}

// ParseBigInt reads a 0x-prefixed hexadecimal or a decimal string. Unlike
// hexutil it accepts leading zeros and odd-length hex, which is how
// ZoKrates and snarkjs print field elements.
func ParseBigInt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty number")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits := s[2:]
		if digits == "" {
			return nil, fmt.Errorf("empty hex number %q", s)
		}
		if len(digits)%2 == 1 {
			digits = "0" + digits
		}
		bz, err := hex.DecodeString(digits)
		if err != nil {
			return nil, fmt.Errorf("invalid hex number %q: %w", s, err)
		}
		return new(big.Int).SetBytes(bz), nil
	}
	bi, ok := new(big.Int).SetString(s, 10)
	if !ok || bi.Sign() < 0 {
		return nil, fmt.Errorf("invalid decimal number %q", s)
	}
	return bi, nil
}

func RandBytes(n int) []byte {
	rbz := make([]byte, n)
	_, _ = crand.Read(rbz)
	return rbz
}
