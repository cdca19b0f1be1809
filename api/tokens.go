package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kysee/zknft/types"
)

// POST /transfer
func (a *API) transfer(w http.ResponseWriter, r *http.Request) {
	req := &TransferRequest{}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.WithErr(err).Write(w)
		return
	}
	from, err := types.ParseAddress(req.From)
	if err != nil {
		ErrMalformedAddress.WithErr(err).Write(w)
		return
	}
	to, err := types.ParseAddress(req.To)
	if err != nil {
		ErrMalformedAddress.WithErr(err).Write(w)
		return
	}
	receipt, err := a.ledger.TransferFrom(a.ledger.Owner(), from, to, req.TokenID)
	if err != nil {
		ledgerError(err).Write(w)
		return
	}
	httpWriteJSON(w, receipt)
}

// POST /approve
func (a *API) approve(w http.ResponseWriter, r *http.Request) {
	req := &ApproveRequest{}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.WithErr(err).Write(w)
		return
	}
	to, err := types.ParseAddress(req.To)
	if err != nil {
		ErrMalformedAddress.WithErr(err).Write(w)
		return
	}
	receipt, err := a.ledger.Approve(a.ledger.Owner(), to, req.TokenID)
	if err != nil {
		ledgerError(err).Write(w)
		return
	}
	httpWriteJSON(w, receipt)
}

// GET /tokens/{tokenId}
func (a *API) token(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseWord(chi.URLParam(r, TokenURLParam))
	if err != nil {
		ErrMalformedParam.WithErr(err).Write(w)
		return
	}
	owner, err := a.ledger.OwnerOf(id)
	if err != nil {
		ledgerError(err).Write(w)
		return
	}
	uri, err := a.ledger.TokenURI(id)
	if err != nil {
		ledgerError(err).Write(w)
		return
	}
	res := &TokenResponse{TokenID: id, Owner: owner, URI: uri}
	approved, err := a.ledger.GetApproved(id)
	if err != nil {
		ledgerError(err).Write(w)
		return
	}
	if !types.IsZeroAddress(approved) {
		res.Approved = &approved
	}
	httpWriteJSON(w, res)
}

// GET /accounts/{address}
func (a *API) account(w http.ResponseWriter, r *http.Request) {
	addr, err := types.ParseAddress(chi.URLParam(r, AddressURLParam))
	if err != nil {
		ErrMalformedAddress.WithErr(err).Write(w)
		return
	}
	balance, err := a.ledger.BalanceOf(addr)
	if err != nil {
		ledgerError(err).Write(w)
		return
	}
	ids, err := a.ledger.TokensOf(addr)
	if err != nil {
		ledgerError(err).Write(w)
		return
	}
	if ids == nil {
		ids = []types.Word{}
	}
	httpWriteJSON(w, &AccountResponse{Address: addr, Balance: balance, Tokens: ids})
}

// GET /supply
func (a *API) supply(w http.ResponseWriter, r *http.Request) {
	total, err := a.ledger.TotalSupply()
	if err != nil {
		ledgerError(err).Write(w)
		return
	}
	solutions, err := a.ledger.SolutionCount()
	if err != nil {
		ledgerError(err).Write(w)
		return
	}
	httpWriteJSON(w, &SupplyResponse{
		Name:        a.ledger.Name(),
		Symbol:      a.ledger.Symbol(),
		Owner:       a.ledger.Owner(),
		TotalSupply: total,
		Solutions:   solutions,
	})
}
