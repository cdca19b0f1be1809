// Package verifier checks zk-SNARK proofs of solution knowledge.
package verifier

import (
	"errors"

	"github.com/kysee/zknft/types"
)

// ErrInvalidProof is wrapped by every verification failure.
var ErrInvalidProof = errors.New("invalid proof")

// Verifier decides whether proof attests to knowledge of a solution for the
// given public inputs. It returns nil on success. Implementations must be
// pure and safe for concurrent use.
type Verifier interface {
	Verify(proof types.Proof, inputs []types.Word) error
}

// Func adapts an ordinary function to the Verifier interface.
type Func func(proof types.Proof, inputs []types.Word) error

func (f Func) Verify(proof types.Proof, inputs []types.Word) error {
	return f(proof, inputs)
}

// AcceptAll accepts every proof. It is meant for development setups that
// have no verification key.
var AcceptAll Verifier = Func(func(types.Proof, []types.Word) error { return nil })

// RejectAll rejects every proof.
var RejectAll Verifier = Func(func(types.Proof, []types.Word) error { return ErrInvalidProof })
