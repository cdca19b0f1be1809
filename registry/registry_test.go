package registry

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/kysee/zknft/db"
	"github.com/kysee/zknft/db/metadb"
	"github.com/kysee/zknft/internal/testutil"
	"github.com/kysee/zknft/types"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) *Registry {
	reg, err := New(0)
	require.NoError(t, err)
	return reg
}

func TestBuildKeyPacked(t *testing.T) {
	proof, inputs := testutil.FixtureProof()

	// abi.encodePacked(address, uint[2], uint[2][2], uint[2], uint[2])
	var packed []byte
	packed = append(packed, testutil.Alice.Bytes()...)
	for _, w := range []types.Word{
		proof.A[0], proof.A[1],
		proof.B[0][0], proof.B[0][1], proof.B[1][0], proof.B[1][1],
		proof.C[0], proof.C[1],
		inputs[0], inputs[1],
	} {
		bz := w.Bytes32()
		packed = append(packed, bz[:]...)
	}
	require.Len(t, packed, 20+32*10)

	key := BuildKey(testutil.Alice, proof.A, proof.B, proof.C, inputs)
	require.Equal(t, crypto.Keccak256Hash(packed), key)
	require.Equal(t, key, KeyOf(testutil.Alice, proof, inputs))
}

func TestBuildKeySensitivity(t *testing.T) {
	proof, inputs := testutil.FixtureProof()
	base := BuildKey(testutil.Alice, proof.A, proof.B, proof.C, inputs)

	// deterministic
	require.Equal(t, base, BuildKey(testutil.Alice, proof.A, proof.B, proof.C, inputs))

	// recipient binding
	require.NotEqual(t, base, BuildKey(testutil.Bob, proof.A, proof.B, proof.C, inputs))

	// every coordinate and input participates
	one := types.NewWord(1)
	a := proof.A
	a[1] = one
	require.NotEqual(t, base, BuildKey(testutil.Alice, a, proof.B, proof.C, inputs))
	b := proof.B
	b[1][1] = one
	require.NotEqual(t, base, BuildKey(testutil.Alice, proof.A, b, proof.C, inputs))
	c := proof.C
	c[0] = one
	require.NotEqual(t, base, BuildKey(testutil.Alice, proof.A, proof.B, c, inputs))
	require.NotEqual(t, base, BuildKey(testutil.Alice, proof.A, proof.B, proof.C, []types.Word{inputs[0], types.NewWord(2)}))
	require.NotEqual(t, base, BuildKey(testutil.Alice, proof.A, proof.B, proof.C, inputs[:1]))

	// the G2 order matters: swapping the limbs changes the key
	b = proof.B
	b[0][0], b[0][1] = b[0][1], b[0][0]
	require.NotEqual(t, base, BuildKey(testutil.Alice, proof.A, b, proof.C, inputs))
}

func TestAddSolution(t *testing.T) {
	database := metadb.ForTest()
	reg := newRegistry(t)
	proof, inputs := testutil.FixtureProof()
	key := KeyOf(testutil.Alice, proof, inputs)

	exists, err := reg.CheckIfSolutionExists(database, key)
	require.NoError(t, err)
	require.False(t, exists)

	wTx := database.WriteTx()
	gotKey, sol, err := reg.AddSolution(wTx, testutil.Alice, proof.A, proof.B, proof.C, inputs)
	require.NoError(t, err)
	require.Equal(t, key, gotKey)
	require.Equal(t, uint64(0), sol.Index)
	require.Equal(t, testutil.Alice, sol.To)
	require.False(t, sol.Minted)

	// visible inside the transaction, not outside
	exists, err = reg.CheckIfSolutionExists(wTx, key)
	require.NoError(t, err)
	require.True(t, exists)
	exists, err = reg.CheckIfSolutionExists(database, key)
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, wTx.Commit())
	reg.Remember(key)

	exists, err = reg.CheckIfSolutionExists(database, key)
	require.NoError(t, err)
	require.True(t, exists)

	count, err := reg.Count(database)
	require.NoError(t, err)
	require.Equal(t, uint64(1), count)

	stored, err := reg.Solution(database, key)
	require.NoError(t, err)
	require.Equal(t, sol, stored)
}

func TestAddSolutionDuplicate(t *testing.T) {
	database := metadb.ForTest()
	reg := newRegistry(t)
	proof, inputs := testutil.FixtureProof()

	wTx := database.WriteTx()
	_, _, err := reg.AddSolution(wTx, testutil.Alice, proof.A, proof.B, proof.C, inputs)
	require.NoError(t, err)
	require.NoError(t, wTx.Commit())

	// a fresh registry has a cold cache, so the store must reject it
	cold := newRegistry(t)
	wTx = database.WriteTx()
	defer wTx.Discard()
	_, _, err = cold.AddSolution(wTx, testutil.Alice, proof.A, proof.B, proof.C, inputs)
	require.ErrorIs(t, err, ErrDuplicateSolution)

	// the same proof for another recipient is another solution
	key, sol, err := cold.AddSolution(wTx, testutil.Bob, proof.A, proof.B, proof.C, inputs)
	require.NoError(t, err)
	require.Equal(t, uint64(1), sol.Index)
	require.Equal(t, KeyOf(testutil.Bob, proof, inputs), key)

	// the warm path rejects without touching the store
	reg.Remember(KeyOf(testutil.Alice, proof, inputs))
	_, _, err = reg.AddSolution(failingStore{}, testutil.Alice, proof.A, proof.B, proof.C, inputs)
	require.ErrorIs(t, err, ErrDuplicateSolution)
}

func TestIndexesAreSequential(t *testing.T) {
	database := metadb.ForTest()
	reg := newRegistry(t)

	for i := uint64(0); i < 5; i++ {
		proof, inputs := testutil.RandomProof()
		wTx := database.WriteTx()
		_, sol, err := reg.AddSolution(wTx, testutil.Alice, proof.A, proof.B, proof.C, inputs)
		require.NoError(t, err)
		require.Equal(t, i, sol.Index)
		require.NoError(t, wTx.Commit())
	}
	count, err := reg.Count(database)
	require.NoError(t, err)
	require.Equal(t, uint64(5), count)
}

func TestMarkMinted(t *testing.T) {
	database := metadb.ForTest()
	reg := newRegistry(t)
	proof, inputs := testutil.FixtureProof()

	wTx := database.WriteTx()
	key, _, err := reg.AddSolution(wTx, testutil.Alice, proof.A, proof.B, proof.C, inputs)
	require.NoError(t, err)
	require.NoError(t, reg.MarkMinted(wTx, key, types.NewWord(100)))
	require.NoError(t, wTx.Commit())

	sol, err := reg.Solution(database, key)
	require.NoError(t, err)
	require.True(t, sol.Minted)
	require.Equal(t, types.NewWord(100), sol.TokenID)

	wTx = database.WriteTx()
	defer wTx.Discard()
	err = reg.MarkMinted(wTx, common.Hash{1}, types.NewWord(1))
	require.ErrorIs(t, err, ErrSolutionNotFound)
}

func TestSolutionRLP(t *testing.T) {
	sol := &Solution{Index: 3, To: testutil.Bob, Minted: true, TokenID: types.MustParseWord("0xffff")}
	var back Solution
	require.NoError(t, rlp.DecodeBytes(sol.Bytes(), &back))
	require.Equal(t, *sol, back)
}

type failingStore struct{}

func (failingStore) Get([]byte) ([]byte, error)       { return nil, db.ErrConflict }
func (failingStore) Set([]byte, []byte) error         { return db.ErrConflict }
func (failingStore) PutIfAbsent([]byte, []byte) error { return db.ErrConflict }
