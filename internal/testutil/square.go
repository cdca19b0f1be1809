// Package testutil provides proofs and fixtures shared by tests.
package testutil

import (
	"sync"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/kysee/zknft/types"
	"github.com/kysee/zknft/verifier"
	"github.com/stretchr/testify/require"
)

// SquareCircuit proves knowledge of A such that A*A == B, with the constant
// public output Result == 1 that ZoKrates square programs return.
type SquareCircuit struct {
	A      frontend.Variable
	B      frontend.Variable `gnark:",public"`
	Result frontend.Variable `gnark:",public"`
}

func (c *SquareCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(api.Mul(c.A, c.A), c.B)
	api.AssertIsEqual(c.Result, 1)
	return nil
}

type SquareProver struct {
	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
	vk  groth16.VerifyingKey
}

var (
	squareOnce   sync.Once
	squareProver *SquareProver
	squareErr    error
)

func compileSquare() (*SquareProver, error) {
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &SquareCircuit{})
	if err != nil {
		return nil, err
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, err
	}
	return &SquareProver{ccs: ccs, pk: pk, vk: vk}, nil
}

// Square returns the process-wide square circuit prover, running the
// trusted setup on first use.
func Square(t testing.TB) *SquareProver {
	squareOnce.Do(func() {
		squareProver, squareErr = compileSquare()
	})
	require.NoError(t, squareErr)
	return squareProver
}

// Key returns the verification key in the ZoKrates layout.
func (s *SquareProver) Key(t testing.TB) *verifier.VerifyingKey {
	vk, err := verifier.ExportVerifyingKey(s.vk.(*groth16_bn254.VerifyingKey))
	require.NoError(t, err)
	return vk
}

func (s *SquareProver) Verifier(t testing.TB) *verifier.Groth16 {
	v, err := verifier.NewGroth16(s.Key(t))
	require.NoError(t, err)
	return v
}

// Prove proves knowledge of a square root of a*a and returns the proof with
// its public inputs [a*a, 1]. Each call yields a fresh randomized proof.
func (s *SquareProver) Prove(t testing.TB, a uint64) (types.Proof, []types.Word) {
	assignment := &SquareCircuit{A: a, B: a * a, Result: 1}
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	require.NoError(t, err)
	proof, err := groth16.Prove(s.ccs, s.pk, w)
	require.NoError(t, err)
	return verifier.ExportProof(proof.(*groth16_bn254.Proof)), []types.Word{types.NewWord(a * a), types.NewWord(1)}
}
