// Package registry records which proof solutions have already been used.
//
// A solution is identified by the Keccak-256 hash of the recipient address
// followed by every proof coordinate and public input, each as a 32 byte
// big-endian word. The derivation matches
// keccak256(abi.encodePacked(to, a, b, c, inputs)) so keys agree with the
// on-chain registry.
package registry

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/kysee/zknft/db"
	"github.com/kysee/zknft/metrics"
	"github.com/kysee/zknft/types"
	"github.com/kysee/zknft/utils"
)

var (
	ErrDuplicateSolution = errors.New("solution already exists")
	ErrSolutionNotFound  = errors.New("solution not found")
)

const DefaultCacheSize = 4096

var (
	solutionPrefix   = []byte("s/")
	solutionCountKey = []byte("sc")
)

// Store is the write side the registry needs. db.WriteTx satisfies it.
type Store interface {
	db.Getter
	db.Setter
	PutIfAbsent(key, value []byte) error
}

// Registry manages solution records. Records themselves live in the Store
// passed to each call; the Registry only keeps a cache of keys known to be
// committed, since records are never removed.
type Registry struct {
	known *lru.Cache[common.Hash, struct{}]
}

func New(cacheSize int) (*Registry, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[common.Hash, struct{}](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Registry{known: cache}, nil
}

// BuildKey derives the solution key. It is pure: identical arguments always
// give the same key.
func BuildKey(to common.Address, a types.G1Point, b types.G2Point, c types.G1Point, inputs []types.Word) common.Hash {
	hasher := utils.DefaultHasher()
	_, _ = hasher.Write(to.Bytes())
	write := func(w types.Word) {
		bz := w.Bytes32()
		_, _ = hasher.Write(bz[:])
	}
	write(a[0])
	write(a[1])
	write(b[0][0])
	write(b[0][1])
	write(b[1][0])
	write(b[1][1])
	write(c[0])
	write(c[1])
	for _, in := range inputs {
		write(in)
	}
	return common.BytesToHash(hasher.Sum(nil))
}

// KeyOf is BuildKey over a Proof.
func KeyOf(to common.Address, proof types.Proof, inputs []types.Word) common.Hash {
	return BuildKey(to, proof.A, proof.B, proof.C, inputs)
}

// CheckIfSolutionExists reports whether key is recorded in r.
func (reg *Registry) CheckIfSolutionExists(r db.Getter, key common.Hash) (bool, error) {
	if reg.known.Contains(key) {
		return true, nil
	}
	_, err := r.Get(solutionKey(key))
	if errors.Is(err, db.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read solution %x: %w", key, err)
	}
	return true, nil
}

// AddSolution records the solution for to and returns its key. It fails with
// ErrDuplicateSolution, leaving the store untouched, if the key is already
// recorded.
func (reg *Registry) AddSolution(
	s Store, to common.Address,
	a types.G1Point, b types.G2Point, c types.G1Point, inputs []types.Word,
) (common.Hash, *Solution, error) {
	key := BuildKey(to, a, b, c, inputs)
	if reg.known.Contains(key) {
		metrics.DuplicateSolutions.Inc()
		return key, nil, fmt.Errorf("%w: %x", ErrDuplicateSolution, key)
	}
	count, err := db.GetUint64(s, solutionCountKey)
	if err != nil {
		return key, nil, err
	}
	sol := &Solution{Index: count, To: to}
	if err := s.PutIfAbsent(solutionKey(key), sol.Bytes()); err != nil {
		if errors.Is(err, db.ErrKeyExists) {
			metrics.DuplicateSolutions.Inc()
			return key, nil, fmt.Errorf("%w: %x", ErrDuplicateSolution, key)
		}
		return key, nil, fmt.Errorf("failed to store solution %x: %w", key, err)
	}
	if err := db.SetUint64(s, solutionCountKey, count+1); err != nil {
		return key, nil, err
	}
	return key, sol, nil
}

// MarkMinted records that tokenID was issued for the solution under key.
func (reg *Registry) MarkMinted(s Store, key common.Hash, tokenID types.Word) error {
	sol, err := reg.Solution(s, key)
	if err != nil {
		return err
	}
	sol.Minted = true
	sol.TokenID = tokenID
	return s.Set(solutionKey(key), sol.Bytes())
}

func (reg *Registry) Solution(r db.Getter, key common.Hash) (*Solution, error) {
	bz, err := r.Get(solutionKey(key))
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %x", ErrSolutionNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	sol := new(Solution)
	if err := rlp.DecodeBytes(bz, sol); err != nil {
		return nil, fmt.Errorf("failed to decode solution %x: %w", key, err)
	}
	return sol, nil
}

// Count returns how many solutions have been recorded.
func (reg *Registry) Count(r db.Getter) (uint64, error) {
	return db.GetUint64(r, solutionCountKey)
}

// Remember marks key as committed. Call it only after the transaction that
// added the solution has been committed.
func (reg *Registry) Remember(key common.Hash) {
	reg.known.Add(key, struct{}{})
}

func solutionKey(key common.Hash) []byte {
	return append(append([]byte{}, solutionPrefix...), key.Bytes()...)
}
