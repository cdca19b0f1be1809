package verifier

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/kysee/zknft/metrics"
	"github.com/kysee/zknft/types"
)

// VerifyingKey is a Groth16 BN254 verification key in the ZoKrates
// verification.key JSON layout.
type VerifyingKey struct {
	Scheme   string          `json:"scheme,omitempty"`
	Curve    string          `json:"curve,omitempty"`
	Alpha    types.G1Point   `json:"alpha"`
	Beta     types.G2Point   `json:"beta"`
	Gamma    types.G2Point   `json:"gamma"`
	Delta    types.G2Point   `json:"delta"`
	GammaABC []types.G1Point `json:"gamma_abc"`
}

func ParseVerifyingKey(data []byte) (*VerifyingKey, error) {
	vk := new(VerifyingKey)
	if err := json.Unmarshal(data, vk); err != nil {
		return nil, fmt.Errorf("failed to parse verification key JSON: %w", err)
	}
	switch vk.Scheme {
	case "", "g16":
	default:
		return nil, fmt.Errorf("unsupported proving scheme %q", vk.Scheme)
	}
	if len(vk.GammaABC) == 0 {
		return nil, fmt.Errorf("verification key has no gamma_abc points")
	}
	return vk, nil
}

func LoadVerifyingKey(path string) (*VerifyingKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read verification key: %w", err)
	}
	return ParseVerifyingKey(data)
}

// Groth16 verifies ZoKrates-format Groth16 proofs on BN254 against a fixed
// verification key.
type Groth16 struct {
	vk       *groth16_bn254.VerifyingKey
	nbInputs int
}

var _ Verifier = (*Groth16)(nil)

func NewGroth16(key *VerifyingKey) (*Groth16, error) {
	alpha, err := toG1(key.Alpha)
	if err != nil {
		return nil, fmt.Errorf("failed to convert alpha: %w", err)
	}
	beta, err := toG2(key.Beta)
	if err != nil {
		return nil, fmt.Errorf("failed to convert beta: %w", err)
	}
	gamma, err := toG2(key.Gamma)
	if err != nil {
		return nil, fmt.Errorf("failed to convert gamma: %w", err)
	}
	delta, err := toG2(key.Delta)
	if err != nil {
		return nil, fmt.Errorf("failed to convert delta: %w", err)
	}
	k := make([]bn254.G1Affine, len(key.GammaABC))
	for i, p := range key.GammaABC {
		g, err := toG1(p)
		if err != nil {
			return nil, fmt.Errorf("failed to convert gamma_abc[%d]: %w", i, err)
		}
		k[i] = *g
	}

	vk := &groth16_bn254.VerifyingKey{}
	vk.G1.Alpha = *alpha
	vk.G1.K = k
	vk.G2.Beta = *beta
	vk.G2.Gamma = *gamma
	vk.G2.Delta = *delta
	if err := vk.Precompute(); err != nil {
		return nil, fmt.Errorf("failed to precompute verification key: %w", err)
	}
	return &Groth16{vk: vk, nbInputs: len(k) - 1}, nil
}

// NbInputs returns how many public inputs proofs must carry.
func (g *Groth16) NbInputs() int {
	return g.nbInputs
}

// ExportSolidity writes a Solidity contract that verifies the same proofs
// on chain.
func (g *Groth16) ExportSolidity(w io.Writer) error {
	return g.vk.ExportSolidity(w)
}

func (g *Groth16) Verify(proof types.Proof, inputs []types.Word) error {
	start := time.Now()
	defer func() { metrics.ProofVerifySeconds.Observe(time.Since(start).Seconds()) }()

	if len(inputs) != g.nbInputs {
		return fmt.Errorf("%w: expected %d public inputs, got %d", ErrInvalidProof, g.nbInputs, len(inputs))
	}
	if err := types.ValidateInputs(inputs); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProof, err)
	}
	ar, err := toG1(proof.A)
	if err != nil {
		return fmt.Errorf("%w: a: %w", ErrInvalidProof, err)
	}
	bs, err := toG2(proof.B)
	if err != nil {
		return fmt.Errorf("%w: b: %w", ErrInvalidProof, err)
	}
	krs, err := toG1(proof.C)
	if err != nil {
		return fmt.Errorf("%w: c: %w", ErrInvalidProof, err)
	}
	if ar.IsInfinity() || bs.IsInfinity() || krs.IsInfinity() {
		return fmt.Errorf("%w: point at infinity", ErrInvalidProof)
	}

	public := make([]fr.Element, len(inputs))
	for i, in := range inputs {
		public[i].SetBigInt(in.Big())
	}
	p := &groth16_bn254.Proof{Ar: *ar, Bs: *bs, Krs: *krs}
	if err := groth16_bn254.Verify(p, g.vk, public); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	return nil
}

func toG1(p types.G1Point) (*bn254.G1Affine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	g := new(bn254.G1Affine)
	g.X.SetBigInt(p[0].Big())
	g.Y.SetBigInt(p[1].Big())
	if !g.IsOnCurve() {
		return nil, fmt.Errorf("G1 point is not on the curve")
	}
	if !g.IsInSubGroup() {
		return nil, fmt.Errorf("G1 point is not in the subgroup")
	}
	return g, nil
}

// toG2 reads the ZoKrates [A0, A1] coordinate order.
func toG2(p types.G2Point) (*bn254.G2Affine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	g := new(bn254.G2Affine)
	g.X.A0.SetBigInt(p[0][0].Big())
	g.X.A1.SetBigInt(p[0][1].Big())
	g.Y.A0.SetBigInt(p[1][0].Big())
	g.Y.A1.SetBigInt(p[1][1].Big())
	if !g.IsOnCurve() {
		return nil, fmt.Errorf("G2 point is not on the curve")
	}
	if !g.IsInSubGroup() {
		return nil, fmt.Errorf("G2 point is not in the subgroup")
	}
	return g, nil
}

func fromG1(g *bn254.G1Affine) types.G1Point {
	return types.G1Point{wordOf(g.X.BigInt(new(big.Int))), wordOf(g.Y.BigInt(new(big.Int)))}
}

func fromG2(g *bn254.G2Affine) types.G2Point {
	return types.G2Point{
		{wordOf(g.X.A0.BigInt(new(big.Int))), wordOf(g.X.A1.BigInt(new(big.Int)))},
		{wordOf(g.Y.A0.BigInt(new(big.Int))), wordOf(g.Y.A1.BigInt(new(big.Int)))},
	}
}

// wordOf never fails for reduced field elements.
func wordOf(b *big.Int) types.Word {
	w, err := types.WordFromBig(b)
	if err != nil {
		panic(err)
	}
	return w
}

// ExportVerifyingKey writes a gnark verification key in the ZoKrates layout.
// Keys of circuits using commitments are not supported.
func ExportVerifyingKey(vk *groth16_bn254.VerifyingKey) (*VerifyingKey, error) {
	if len(vk.PublicAndCommitmentCommitted) > 0 {
		return nil, fmt.Errorf("verification keys with commitments are not supported")
	}
	out := &VerifyingKey{
		Scheme: "g16",
		Curve:  "bn128",
		Alpha:  fromG1(&vk.G1.Alpha),
		Beta:   fromG2(&vk.G2.Beta),
		Gamma:  fromG2(&vk.G2.Gamma),
		Delta:  fromG2(&vk.G2.Delta),
	}
	for i := range vk.G1.K {
		out.GammaABC = append(out.GammaABC, fromG1(&vk.G1.K[i]))
	}
	return out, nil
}

// ExportProof writes a gnark proof in the ZoKrates layout.
func ExportProof(p *groth16_bn254.Proof) types.Proof {
	return types.Proof{
		A: fromG1(&p.Ar),
		B: fromG2(&p.Bs),
		C: fromG1(&p.Krs),
	}
}
