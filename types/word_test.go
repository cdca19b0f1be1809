package types

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWordParse(t *testing.T) {
	w, err := ParseWord("0x0000000000000000000000000000000000000000000000000000000000000031")
	require.NoError(t, err)
	require.Equal(t, NewWord(49), w)
	require.Equal(t, "49", w.String())

	w, err = ParseWord("49")
	require.NoError(t, err)
	require.Equal(t, NewWord(49), w)

	_, err = ParseWord("0x1" + strings.Repeat("0", 64))
	require.Error(t, err, "257 bit value must overflow")

	_, err = WordFromBig(big.NewInt(-1))
	require.Error(t, err)
}

func TestWordBytes32(t *testing.T) {
	bz := NewWord(0x0102).Bytes32()
	require.Equal(t, byte(0x01), bz[30])
	require.Equal(t, byte(0x02), bz[31])
	for _, b := range bz[:30] {
		require.Zero(t, b)
	}
}

func TestWordJSON(t *testing.T) {
	w := NewWord(1)
	bz, err := json.Marshal(w)
	require.NoError(t, err)
	require.Equal(t, `"0x0000000000000000000000000000000000000000000000000000000000000001"`, string(bz))

	var back Word
	require.NoError(t, json.Unmarshal(bz, &back))
	require.Equal(t, w, back)

	require.NoError(t, json.Unmarshal([]byte(`"100"`), &back))
	require.Equal(t, NewWord(100), back)

	require.Error(t, json.Unmarshal([]byte(`"0xno"`), &back))
}

func TestWordAsMapKey(t *testing.T) {
	m := map[Word]int{}
	m[MustParseWord("0x01")] = 1
	m[MustParseWord("1")]++
	require.Len(t, m, 1)
	require.Equal(t, 2, m[NewWord(1)])
}
