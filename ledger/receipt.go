package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/kysee/zknft/types"
)

const (
	EventSolutionAdded = "SolutionAdded"
	EventTransfer      = "Transfer"
	EventApproval      = "Approval"
)

// Event is a log entry emitted by a committed transaction. Only the fields
// relevant to Name are set.
type Event struct {
	Name     string          `json:"event"`
	Index    *uint64         `json:"index,omitempty"`
	From     *common.Address `json:"from,omitempty"`
	To       *common.Address `json:"to,omitempty"`
	Approved *common.Address `json:"approved,omitempty"`
	TokenID  *types.Word     `json:"tokenId,omitempty"`
}

// Receipt identifies a committed transaction and what it did.
type Receipt struct {
	TxID    uuid.UUID    `json:"txId"`
	Key     *common.Hash `json:"key,omitempty"`
	TokenID *types.Word  `json:"tokenId,omitempty"`
	Events  []Event      `json:"events"`
}

func newReceipt() *Receipt {
	return &Receipt{TxID: uuid.New(), Events: []Event{}}
}

func solutionAdded(index uint64, to common.Address) Event {
	return Event{Name: EventSolutionAdded, Index: &index, To: &to}
}

func transfer(from, to common.Address, tokenID types.Word) Event {
	return Event{Name: EventTransfer, From: &from, To: &to, TokenID: &tokenID}
}

func approval(owner, approved common.Address, tokenID types.Word) Event {
	return Event{Name: EventApproval, From: &owner, Approved: &approved, TokenID: &tokenID}
}
