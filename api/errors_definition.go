//nolint:lll
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kysee/zknft/db"
	"github.com/kysee/zknft/registry"
	"github.com/kysee/zknft/token"
	"github.com/kysee/zknft/types"
	"github.com/kysee/zknft/verifier"
)

// Codes in the 40001-49999 range are the caller's fault, 50001-59999 the
// server's. Never change or reuse a code, only append.
var (
	ErrResourceNotFound  = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrMalformedBody     = Error{Code: 40002, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrMalformedParam    = Error{Code: 40003, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed parameter")}
	ErrMalformedAddress  = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed address")}
	ErrMalformedProof    = Error{Code: 40005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed proof")}
	ErrInvalidProof      = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid proof")}
	ErrDuplicateSolution = Error{Code: 40007, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("solution already used")}
	ErrDuplicateToken    = Error{Code: 40008, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("token already minted")}
	ErrUnauthorizedMint  = Error{Code: 40009, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("unauthorized mint")}
	ErrNotAuthorized     = Error{Code: 40010, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("not owner nor approved")}
	ErrNotTokenOwner     = Error{Code: 40011, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("not the token owner")}
	ErrInvalidRecipient  = Error{Code: 40012, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid recipient")}
	ErrTokenNotFound     = Error{Code: 40013, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("token not found")}
	ErrSolutionNotFound  = Error{Code: 40014, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("solution not found")}
	ErrApprovalToOwner   = Error{Code: 40015, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("approval to current owner")}

	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
	ErrStorageConflict            = Error{Code: 50003, HTTPstatus: http.StatusServiceUnavailable, Err: fmt.Errorf("storage conflict, try again")}
)

// ledgerError maps an error returned by the ledger to its API error.
func ledgerError(err error) Error {
	switch {
	case errors.Is(err, types.ErrMalformedProof), errors.Is(err, types.ErrMalformedInputs):
		return ErrMalformedProof.WithErr(err)
	case errors.Is(err, verifier.ErrInvalidProof):
		return ErrInvalidProof.WithErr(err)
	case errors.Is(err, registry.ErrDuplicateSolution):
		return ErrDuplicateSolution.WithErr(err)
	case errors.Is(err, registry.ErrSolutionNotFound):
		return ErrSolutionNotFound.WithErr(err)
	case errors.Is(err, token.ErrDuplicateToken):
		return ErrDuplicateToken.WithErr(err)
	case errors.Is(err, token.ErrUnauthorizedMint):
		return ErrUnauthorizedMint.WithErr(err)
	case errors.Is(err, token.ErrNotAuthorized):
		return ErrNotAuthorized.WithErr(err)
	case errors.Is(err, token.ErrNotTokenOwner):
		return ErrNotTokenOwner.WithErr(err)
	case errors.Is(err, token.ErrInvalidRecipient):
		return ErrInvalidRecipient.WithErr(err)
	case errors.Is(err, token.ErrTokenNotFound):
		return ErrTokenNotFound.WithErr(err)
	case errors.Is(err, token.ErrApprovalToOwner):
		return ErrApprovalToOwner.WithErr(err)
	case errors.Is(err, db.ErrConflict):
		return ErrStorageConflict.WithErr(err)
	default:
		return ErrGenericInternalServerError.WithErr(err)
	}
}
