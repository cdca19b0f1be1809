package api

import (
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"
	"github.com/kysee/zknft/types"
)

// decodeSolution reads and validates a SolutionRequest body.
func decodeSolution(w http.ResponseWriter, r *http.Request, req any, sol *SolutionRequest) (common.Address, *Error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		apiErr := ErrMalformedBody.WithErr(err)
		return common.Address{}, &apiErr
	}
	to, err := types.ParseAddress(sol.To)
	if err != nil {
		apiErr := ErrMalformedAddress.WithErr(err)
		return common.Address{}, &apiErr
	}
	if err := sol.Proof.Validate(); err != nil {
		apiErr := ErrMalformedProof.WithErr(err)
		return common.Address{}, &apiErr
	}
	if err := types.ValidateInputs(sol.Inputs); err != nil {
		apiErr := ErrMalformedProof.WithErr(err)
		return common.Address{}, &apiErr
	}
	return to, nil
}

// POST /solutions/key
func (a *API) solutionKey(w http.ResponseWriter, r *http.Request) {
	req := &SolutionRequest{}
	to, apiErr := decodeSolution(w, r, req, req)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	key := a.ledger.BuildKey(to, req.Proof, req.Inputs)
	exists, err := a.ledger.CheckIfSolutionExists(key)
	if err != nil {
		ledgerError(err).Write(w)
		return
	}
	httpWriteJSON(w, &KeyResponse{Key: key, Exists: exists})
}

// GET /solutions/{key}
func (a *API) solution(w http.ResponseWriter, r *http.Request) {
	bz, err := hexutil.Decode(chi.URLParam(r, KeyURLParam))
	if err != nil || len(bz) != common.HashLength {
		ErrMalformedParam.Withf("solution key must be 32 hex encoded bytes").Write(w)
		return
	}
	key := common.BytesToHash(bz)
	exists, err := a.ledger.CheckIfSolutionExists(key)
	if err != nil {
		ledgerError(err).Write(w)
		return
	}
	res := &SolutionResponse{Key: key, Exists: exists}
	if exists {
		sol, err := a.ledger.Solution(key)
		if err != nil {
			ledgerError(err).Write(w)
			return
		}
		res.Index = &sol.Index
		res.To = &sol.To
		res.Minted = sol.Minted
		if sol.Minted {
			res.TokenID = &sol.TokenID
		}
	}
	httpWriteJSON(w, res)
}

// POST /solutions
func (a *API) addSolution(w http.ResponseWriter, r *http.Request) {
	req := &SolutionRequest{}
	to, apiErr := decodeSolution(w, r, req, req)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	receipt, err := a.ledger.AddSolution(to, req.Proof, req.Inputs)
	if err != nil {
		ledgerError(err).Write(w)
		return
	}
	httpWriteJSON(w, receipt)
}

// POST /mint
func (a *API) mint(w http.ResponseWriter, r *http.Request) {
	req := &MintRequest{}
	to, apiErr := decodeSolution(w, r, req, &req.SolutionRequest)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	receipt, err := a.ledger.MintNFT(a.ledger.Owner(), to, req.TokenID, req.Proof, req.Inputs)
	if err != nil {
		ledgerError(err).Write(w)
		return
	}
	httpWriteJSON(w, receipt)
}
