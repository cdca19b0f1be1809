package testutil

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kysee/zknft/types"
	"github.com/kysee/zknft/utils"
)

var (
	// Owner deploys the token and is the only account allowed to mint.
	Owner = common.HexToAddress("0x1d41247a91dbcb4699b08987cc172cf746c241a5")
	// Alice and Bob are ordinary accounts.
	Alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	Bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

// FixtureProof returns a ZoKrates proof of knowledge of a square root of 49.
// It is well formed but only verifies against the key it was generated with,
// which is not available, so use it with verifier.AcceptAll.
func FixtureProof() (types.Proof, []types.Word) {
	w := types.MustParseWord
	proof := types.Proof{
		A: types.G1Point{
			w("0x22121f467ba36d13e46aa52138484da49cd258af9127c26b5c5c0ba6ac6b3b2f"),
			w("0x292a38cb9464600ca9c4c7fde5d70dc8129d3646ee9aeac6ea27cf33c3956544"),
		},
		B: types.G2Point{
			{
				w("0x0c73607394426dc92e1d65c7f930eb058769ee196313d7f034d82203dae24344"),
				w("0x1e77beaaa71dcea2b5b483d3f6c104a976bc2b99d88b4f888287baafbf887b62"),
			},
			{
				w("0x0c86de45135abb2ff9a22eb5b984c2a674d8da5103b071796584132e2d775959"),
				w("0x0646076a36e734975b6166b42ea5d2e8273a1c43624f03e30d0e10424815b986"),
			},
		},
		C: types.G1Point{
			w("0x0e4374b116660f34cb611f9d15e0e62013842cfe33895d44ce06eba58643fc0b"),
			w("0x1cc3dd1b7374ec5e1b8b0bab1c7864d7f6d111ff59d17b8d33dc829ede5f42e5"),
		},
	}
	inputs := []types.Word{
		w("0x0000000000000000000000000000000000000000000000000000000000000031"),
		w("0x0000000000000000000000000000000000000000000000000000000000000001"),
	}
	return proof, inputs
}

// RandomProof returns a well formed but meaningless proof with random
// coordinates below 2^248, so every coordinate is a canonical field element.
func RandomProof() (types.Proof, []types.Word) {
	r := func() types.Word {
		w, err := types.WordFromBig(new(big.Int).SetBytes(utils.RandBytes(31)))
		if err != nil {
			panic(err)
		}
		return w
	}
	proof := types.Proof{
		A: types.G1Point{r(), r()},
		B: types.G2Point{{r(), r()}, {r(), r()}},
		C: types.G1Point{r(), r()},
	}
	return proof, []types.Word{r(), types.NewWord(1)}
}
