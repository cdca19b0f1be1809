package types

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/kysee/zknft/utils"
)

// Word is a 256-bit unsigned value, the unit of every ABI-encoded proof
// coordinate, public input and token id. It is comparable and can be used as
// a map key.
type Word uint256.Int

func NewWord(v uint64) Word {
	var w Word
	(*uint256.Int)(&w).SetUint64(v)
	return w
}

// WordFromBig converts b, failing if it is negative or does not fit in 256 bits.
func WordFromBig(b *big.Int) (Word, error) {
	if b.Sign() < 0 {
		return Word{}, fmt.Errorf("negative value %s", b)
	}
	u, overflow := uint256.FromBig(b)
	if overflow {
		return Word{}, fmt.Errorf("value overflows 256 bits: %s", b)
	}
	return Word(*u), nil
}

// ParseWord reads a 0x-prefixed hex (leading zeros allowed) or decimal string.
func ParseWord(s string) (Word, error) {
	bi, err := utils.ParseBigInt(s)
	if err != nil {
		return Word{}, err
	}
	return WordFromBig(bi)
}

func MustParseWord(s string) Word {
	w, err := ParseWord(s)
	if err != nil {
		panic(err)
	}
	return w
}

func (w Word) Uint256() *uint256.Int {
	u := uint256.Int(w)
	return &u
}

func (w Word) Big() *big.Int {
	return w.Uint256().ToBig()
}

// Bytes32 returns the big-endian, zero-padded encoding used by abi.encodePacked.
func (w Word) Bytes32() [32]byte {
	return w.Uint256().Bytes32()
}

func (w Word) IsZero() bool {
	return w.Uint256().IsZero()
}

func (w Word) Cmp(o Word) int {
	return w.Uint256().Cmp(o.Uint256())
}

// Hex returns the 0x-prefixed 64 digit form ZoKrates writes.
func (w Word) Hex() string {
	bz := w.Bytes32()
	return hexutil.Encode(bz[:])
}

// String returns the decimal form.
func (w Word) String() string {
	return w.Uint256().Dec()
}

func (w Word) MarshalText() ([]byte, error) {
	return []byte(w.Hex()), nil
}

func (w *Word) UnmarshalText(text []byte) error {
	v, err := ParseWord(string(text))
	if err != nil {
		return err
	}
	*w = v
	return nil
}
