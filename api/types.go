package api

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/kysee/zknft/types"
)

// SolutionRequest carries a ZoKrates proof.json together with the recipient
// it is redeemed for.
type SolutionRequest struct {
	To     string       `json:"to"`
	Proof  types.Proof  `json:"proof"`
	Inputs []types.Word `json:"inputs"`
}

type MintRequest struct {
	SolutionRequest
	TokenID types.Word `json:"tokenId"`
}

type TransferRequest struct {
	From    string     `json:"from"`
	To      string     `json:"to"`
	TokenID types.Word `json:"tokenId"`
}

type ApproveRequest struct {
	To      string     `json:"to"`
	TokenID types.Word `json:"tokenId"`
}

type KeyResponse struct {
	Key    common.Hash `json:"key"`
	Exists bool        `json:"exists"`
}

type SolutionResponse struct {
	Key     common.Hash     `json:"key"`
	Exists  bool            `json:"exists"`
	Index   *uint64         `json:"index,omitempty"`
	To      *common.Address `json:"to,omitempty"`
	Minted  bool            `json:"minted"`
	TokenID *types.Word     `json:"tokenId,omitempty"`
}

type TokenResponse struct {
	TokenID  types.Word      `json:"tokenId"`
	Owner    common.Address  `json:"owner"`
	Approved *common.Address `json:"approved,omitempty"`
	URI      string          `json:"uri"`
}

type AccountResponse struct {
	Address common.Address `json:"address"`
	Balance uint64         `json:"balance"`
	Tokens  []types.Word   `json:"tokens"`
}

type SupplyResponse struct {
	Name        string         `json:"name"`
	Symbol      string         `json:"symbol"`
	Owner       common.Address `json:"owner"`
	TotalSupply uint64         `json:"totalSupply"`
	Solutions   uint64         `json:"solutions"`
}
