package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"
)

var (
	ErrMalformedProof  = errors.New("malformed proof")
	ErrMalformedInputs = errors.New("malformed public inputs")
)

var (
	baseFieldModulus   = uint256.MustFromBig(fp.Modulus())
	scalarFieldModulus = uint256.MustFromBig(fr.Modulus())
)

// G1Point is an affine BN254 G1 point as [x, y].
type G1Point [2]Word

// G2Point is an affine BN254 G2 point as [[x.A0, x.A1], [y.A0, y.A1]], the
// coordinate order ZoKrates writes. The EVM pairing precompile takes the
// reverse order; ZoKrates' Solidity verifier swaps them itself.
type G2Point [2][2]Word

// Proof is a Groth16 proof in the layout of a ZoKrates proof.json.
type Proof struct {
	A G1Point `json:"a"`
	B G2Point `json:"b"`
	C G1Point `json:"c"`
}

// ProofFile is the full ZoKrates proof artifact.
type ProofFile struct {
	Scheme string `json:"scheme,omitempty"`
	Curve  string `json:"curve,omitempty"`
	Proof  Proof  `json:"proof"`
	Inputs []Word `json:"inputs"`
}

func (p *G1Point) UnmarshalJSON(data []byte) error {
	var ws []Word
	if err := json.Unmarshal(data, &ws); err != nil {
		return err
	}
	if len(ws) != 2 {
		return fmt.Errorf("%w: G1 point needs 2 coordinates, got %d", ErrMalformedProof, len(ws))
	}
	copy(p[:], ws)
	return nil
}

func (p *G2Point) UnmarshalJSON(data []byte) error {
	var ws [][]Word
	if err := json.Unmarshal(data, &ws); err != nil {
		return err
	}
	if len(ws) != 2 || len(ws[0]) != 2 || len(ws[1]) != 2 {
		return fmt.Errorf("%w: G2 point needs 2x2 coordinates", ErrMalformedProof)
	}
	p[0] = [2]Word{ws[0][0], ws[0][1]}
	p[1] = [2]Word{ws[1][0], ws[1][1]}
	return nil
}

func (p *Proof) UnmarshalJSON(data []byte) error {
	var raw struct {
		A *G1Point `json:"a"`
		B *G2Point `json:"b"`
		C *G1Point `json:"c"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.A == nil:
		return fmt.Errorf("%w: missing a", ErrMalformedProof)
	case raw.B == nil:
		return fmt.Errorf("%w: missing b", ErrMalformedProof)
	case raw.C == nil:
		return fmt.Errorf("%w: missing c", ErrMalformedProof)
	}
	p.A, p.B, p.C = *raw.A, *raw.B, *raw.C
	return nil
}

func (pf *ProofFile) UnmarshalJSON(data []byte) error {
	var raw struct {
		Scheme string `json:"scheme"`
		Curve  string `json:"curve"`
		Proof  *Proof `json:"proof"`
		Inputs []Word `json:"inputs"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Proof == nil {
		return fmt.Errorf("%w: missing proof", ErrMalformedProof)
	}
	if raw.Inputs == nil {
		return fmt.Errorf("%w: missing inputs", ErrMalformedInputs)
	}
	*pf = ProofFile{Scheme: raw.Scheme, Curve: raw.Curve, Proof: *raw.Proof, Inputs: raw.Inputs}
	return nil
}

// Validate checks every coordinate is a canonical base field element.
// Non-canonical encodings of the same point would otherwise derive a
// different solution key. The all-zero encoding of the point at infinity is
// never part of a valid proof.
func (p G1Point) Validate() error {
	if p[0].IsZero() && p[1].IsZero() {
		return fmt.Errorf("%w: point at infinity", ErrMalformedProof)
	}
	for i, w := range p {
		if !w.Uint256().Lt(baseFieldModulus) {
			return fmt.Errorf("%w: coordinate %d is not a base field element", ErrMalformedProof, i)
		}
	}
	return nil
}

func (p G2Point) Validate() error {
	if p[0][0].IsZero() && p[0][1].IsZero() && p[1][0].IsZero() && p[1][1].IsZero() {
		return fmt.Errorf("%w: point at infinity", ErrMalformedProof)
	}
	for i := range p {
		for j, w := range p[i] {
			if !w.Uint256().Lt(baseFieldModulus) {
				return fmt.Errorf("%w: coordinate %d.%d is not a base field element", ErrMalformedProof, i, j)
			}
		}
	}
	return nil
}

func (p *Proof) Validate() error {
	if err := p.A.Validate(); err != nil {
		return fmt.Errorf("a: %w", err)
	}
	if err := p.B.Validate(); err != nil {
		return fmt.Errorf("b: %w", err)
	}
	if err := p.C.Validate(); err != nil {
		return fmt.Errorf("c: %w", err)
	}
	return nil
}

// ValidateInputs checks every public input is a canonical scalar field element.
func ValidateInputs(inputs []Word) error {
	for i, in := range inputs {
		if !in.Uint256().Lt(scalarFieldModulus) {
			return fmt.Errorf("%w: input %d is not a scalar field element", ErrMalformedInputs, i)
		}
	}
	return nil
}

func (pf *ProofFile) Validate() error {
	switch pf.Scheme {
	case "", "g16":
	default:
		return fmt.Errorf("%w: unsupported scheme %q", ErrMalformedProof, pf.Scheme)
	}
	switch pf.Curve {
	case "", "bn128", "bn254":
	default:
		return fmt.Errorf("%w: unsupported curve %q", ErrMalformedProof, pf.Curve)
	}
	if err := pf.Proof.Validate(); err != nil {
		return err
	}
	return ValidateInputs(pf.Inputs)
}

// ParseProofFile decodes and validates a ZoKrates proof.json.
func ParseProofFile(data []byte) (*ProofFile, error) {
	pf := new(ProofFile)
	if err := json.Unmarshal(data, pf); err != nil {
		return nil, fmt.Errorf("failed to parse proof JSON: %w", err)
	}
	if err := pf.Validate(); err != nil {
		return nil, err
	}
	return pf, nil
}

func LoadProofFile(path string) (*ProofFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read proof file: %w", err)
	}
	return ParseProofFile(data)
}
