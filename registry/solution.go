package registry

import (
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/kysee/zknft/types"
)

// Solution is the record stored under a solution key.
type Solution struct {
	// Index is the position of the solution in submission order.
	Index uint64
	// To is the recipient the proof was bound to.
	To common.Address
	// Minted is set once a token has been issued for this solution.
	Minted bool
	// TokenID is meaningful only when Minted is set.
	TokenID types.Word
}

func (s *Solution) Bytes() []byte {
	b, err := rlp.EncodeToBytes(s)
	if err != nil {
		panic(fmt.Sprintf("failed to RLP encode Solution: %v", err))
	}
	return b
}

// EncodeRLP implements rlp.Encoder. TokenID travels as a big.Int.
func (s *Solution) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, []interface{}{
		s.Index,
		s.To,
		s.Minted,
		s.TokenID.Big(),
	})
}

// DecodeRLP implements rlp.Decoder.
func (s *Solution) DecodeRLP(st *rlp.Stream) error {
	var temp struct {
		Index   uint64
		To      common.Address
		Minted  bool
		TokenID *big.Int
	}
	if err := st.Decode(&temp); err != nil {
		return err
	}
	tokenID, err := types.WordFromBig(temp.TokenID)
	if err != nil {
		return fmt.Errorf("token id: %w", err)
	}
	s.Index = temp.Index
	s.To = temp.To
	s.Minted = temp.Minted
	s.TokenID = tokenID
	return nil
}
