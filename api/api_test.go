package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/kysee/zknft/db/metadb"
	"github.com/kysee/zknft/internal/testutil"
	"github.com/kysee/zknft/ledger"
	"github.com/kysee/zknft/types"
	"github.com/kysee/zknft/verifier"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func newTestAPI(c *qt.C, v verifier.Verifier) (*API, *ledger.Ledger) {
	l, err := ledger.New(metadb.ForTest(), &ledger.Config{Owner: testutil.Owner, Verifier: v})
	c.Assert(err, qt.IsNil)
	a, err := New(&APIConfig{Ledger: l})
	c.Assert(err, qt.IsNil)
	return a, l
}

func doRequest(c *qt.C, a *API, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		c.Assert(json.NewEncoder(&buf).Encode(body), qt.IsNil)
	}
	req, err := http.NewRequest(method, path, &buf)
	c.Assert(err, qt.IsNil)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)
	return rr
}

func decode[T any](c *qt.C, rr *httptest.ResponseRecorder) T {
	var v T
	c.Assert(json.Unmarshal(rr.Body.Bytes(), &v), qt.IsNil, qt.Commentf("body: %s", rr.Body.String()))
	return v
}

func solutionRequest(to string) *SolutionRequest {
	proof, inputs := testutil.FixtureProof()
	return &SolutionRequest{To: to, Proof: proof, Inputs: inputs}
}

func TestNewValidation(t *testing.T) {
	c := qt.New(t)
	_, err := New(nil)
	c.Assert(err, qt.IsNotNil)
	_, err = New(&APIConfig{})
	c.Assert(err, qt.IsNotNil)
}

func TestPingAndMetrics(t *testing.T) {
	c := qt.New(t)
	a, _ := newTestAPI(c, verifier.AcceptAll)

	rr := doRequest(c, a, http.MethodGet, PingEndpoint, nil)
	c.Assert(rr.Code, qt.Equals, http.StatusOK)

	rr = doRequest(c, a, http.MethodGet, MetricsEndpoint, nil)
	c.Assert(rr.Code, qt.Equals, http.StatusOK)
	c.Assert(rr.Body.String(), qt.Contains, "zknft_api_requests_total")

	rr = doRequest(c, a, http.MethodGet, "/nowhere", nil)
	c.Assert(rr.Code, qt.Equals, http.StatusNotFound)
	c.Assert(decode[errorResponse](c, rr).Code, qt.Equals, ErrResourceNotFound.Code)
}

func TestSolutions(t *testing.T) {
	c := qt.New(t)
	a, l := newTestAPI(c, verifier.AcceptAll)
	bob := strings.ToLower(testutil.Bob.Hex())
	req := solutionRequest(bob)
	expectedKey := l.BuildKey(testutil.Bob, req.Proof, req.Inputs)

	c.Run("KeyBeforeAdd", func(c *qt.C) {
		rr := doRequest(c, a, http.MethodPost, SolutionKeyEndpoint, req)
		c.Assert(rr.Code, qt.Equals, http.StatusOK)
		res := decode[KeyResponse](c, rr)
		c.Assert(res.Key, qt.Equals, expectedKey)
		c.Assert(res.Exists, qt.IsFalse)
	})

	c.Run("Add", func(c *qt.C) {
		rr := doRequest(c, a, http.MethodPost, SolutionsEndpoint, req)
		c.Assert(rr.Code, qt.Equals, http.StatusOK)
		receipt := decode[ledger.Receipt](c, rr)
		c.Assert(receipt.Key, qt.IsNotNil)
		c.Assert(*receipt.Key, qt.Equals, expectedKey)
		c.Assert(receipt.Events, qt.HasLen, 1)
		c.Assert(receipt.Events[0].Name, qt.Equals, ledger.EventSolutionAdded)
	})

	c.Run("Duplicate", func(c *qt.C) {
		rr := doRequest(c, a, http.MethodPost, SolutionsEndpoint, req)
		c.Assert(rr.Code, qt.Equals, http.StatusConflict)
		c.Assert(decode[errorResponse](c, rr).Code, qt.Equals, ErrDuplicateSolution.Code)
	})

	c.Run("Status", func(c *qt.C) {
		rr := doRequest(c, a, http.MethodGet, EndpointWithParam(SolutionEndpoint, KeyURLParam, expectedKey.Hex()), nil)
		c.Assert(rr.Code, qt.Equals, http.StatusOK)
		res := decode[SolutionResponse](c, rr)
		c.Assert(res.Exists, qt.IsTrue)
		c.Assert(res.Index, qt.IsNotNil)
		c.Assert(*res.Index, qt.Equals, uint64(0))
		c.Assert(*res.To, qt.Equals, testutil.Bob)
		c.Assert(res.Minted, qt.IsFalse)

		rr = doRequest(c, a, http.MethodPost, SolutionKeyEndpoint, req)
		c.Assert(decode[KeyResponse](c, rr).Exists, qt.IsTrue)
	})

	c.Run("UnknownKey", func(c *qt.C) {
		other := "0x" + strings.Repeat("ab", 32)
		rr := doRequest(c, a, http.MethodGet, EndpointWithParam(SolutionEndpoint, KeyURLParam, other), nil)
		c.Assert(rr.Code, qt.Equals, http.StatusOK)
		c.Assert(decode[SolutionResponse](c, rr).Exists, qt.IsFalse)
	})

	c.Run("MalformedKey", func(c *qt.C) {
		rr := doRequest(c, a, http.MethodGet, EndpointWithParam(SolutionEndpoint, KeyURLParam, "0x1234"), nil)
		c.Assert(rr.Code, qt.Equals, http.StatusBadRequest)
		c.Assert(decode[errorResponse](c, rr).Code, qt.Equals, ErrMalformedParam.Code)
	})
}

func TestMalformedSolutionRequests(t *testing.T) {
	c := qt.New(t)
	a, _ := newTestAPI(c, verifier.AcceptAll)

	rr := doRequest(c, a, http.MethodPost, SolutionsEndpoint, "not an object")
	c.Assert(rr.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(decode[errorResponse](c, rr).Code, qt.Equals, ErrMalformedBody.Code)

	rr = doRequest(c, a, http.MethodPost, SolutionsEndpoint, solutionRequest("0x1234"))
	c.Assert(rr.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(decode[errorResponse](c, rr).Code, qt.Equals, ErrMalformedAddress.Code)

	req := solutionRequest(testutil.Bob.Hex())
	req.Proof.A[0] = types.MustParseWord("0x" + strings.Repeat("ff", 32))
	rr = doRequest(c, a, http.MethodPost, SolutionsEndpoint, req)
	c.Assert(rr.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(decode[errorResponse](c, rr).Code, qt.Equals, ErrMalformedProof.Code)

	req = solutionRequest(testutil.Bob.Hex())
	req.Inputs[0] = types.MustParseWord("0x" + strings.Repeat("ff", 32))
	rr = doRequest(c, a, http.MethodPost, SolutionsEndpoint, req)
	c.Assert(rr.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(decode[errorResponse](c, rr).Code, qt.Equals, ErrMalformedProof.Code)
}

func TestMissingProof(t *testing.T) {
	c := qt.New(t)
	a, l := newTestAPI(c, verifier.AcceptAll)

	body := map[string]any{"to": testutil.Alice.Hex(), "inputs": []string{}, "tokenId": "1"}
	rr := doRequest(c, a, http.MethodPost, MintEndpoint, body)
	c.Assert(rr.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(decode[errorResponse](c, rr).Code, qt.Equals, ErrMalformedProof.Code)

	body["proof"] = map[string]any{"a": []string{"0x1", "0x2"}}
	rr = doRequest(c, a, http.MethodPost, MintEndpoint, body)
	c.Assert(rr.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(decode[errorResponse](c, rr).Code, qt.Equals, ErrMalformedBody.Code)

	supply, err := l.TotalSupply()
	c.Assert(err, qt.IsNil)
	c.Assert(supply, qt.Equals, uint64(0))
}

func TestInvalidProof(t *testing.T) {
	c := qt.New(t)
	a, l := newTestAPI(c, verifier.RejectAll)

	rr := doRequest(c, a, http.MethodPost, SolutionsEndpoint, solutionRequest(testutil.Bob.Hex()))
	c.Assert(rr.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(decode[errorResponse](c, rr).Code, qt.Equals, ErrInvalidProof.Code)

	count, err := l.SolutionCount()
	c.Assert(err, qt.IsNil)
	c.Assert(count, qt.Equals, uint64(0))
}

func TestMintAndQueries(t *testing.T) {
	c := qt.New(t)
	a, _ := newTestAPI(c, verifier.AcceptAll)
	tokenPath := EndpointWithParam(TokenEndpoint, TokenURLParam, "1")

	mint := &MintRequest{SolutionRequest: *solutionRequest(testutil.Alice.Hex()), TokenID: types.NewWord(1)}
	rr := doRequest(c, a, http.MethodPost, MintEndpoint, mint)
	c.Assert(rr.Code, qt.Equals, http.StatusOK)
	receipt := decode[ledger.Receipt](c, rr)
	c.Assert(receipt.TokenID, qt.IsNotNil)
	c.Assert(*receipt.TokenID, qt.Equals, types.NewWord(1))
	c.Assert(receipt.Events, qt.HasLen, 2)

	// same proof, same recipient
	mint.TokenID = types.NewWord(2)
	rr = doRequest(c, a, http.MethodPost, MintEndpoint, mint)
	c.Assert(rr.Code, qt.Equals, http.StatusConflict)
	c.Assert(decode[errorResponse](c, rr).Code, qt.Equals, ErrDuplicateSolution.Code)

	// fresh proof, taken token id
	proof, inputs := testutil.RandomProof()
	dup := &MintRequest{
		SolutionRequest: SolutionRequest{To: testutil.Bob.Hex(), Proof: proof, Inputs: inputs},
		TokenID:         types.NewWord(1),
	}
	rr = doRequest(c, a, http.MethodPost, MintEndpoint, dup)
	c.Assert(rr.Code, qt.Equals, http.StatusConflict)
	c.Assert(decode[errorResponse](c, rr).Code, qt.Equals, ErrDuplicateToken.Code)

	rr = doRequest(c, a, http.MethodGet, tokenPath, nil)
	c.Assert(rr.Code, qt.Equals, http.StatusOK)
	tok := decode[TokenResponse](c, rr)
	c.Assert(tok.Owner, qt.Equals, testutil.Alice)
	c.Assert(tok.Approved, qt.IsNil)
	c.Assert(strings.HasSuffix(tok.URI, "/1"), qt.IsTrue, qt.Commentf("uri %s", tok.URI))

	rr = doRequest(c, a, http.MethodGet, EndpointWithParam(TokenEndpoint, TokenURLParam, "2"), nil)
	c.Assert(rr.Code, qt.Equals, http.StatusNotFound)
	c.Assert(decode[errorResponse](c, rr).Code, qt.Equals, ErrTokenNotFound.Code)

	rr = doRequest(c, a, http.MethodGet, EndpointWithParam(AccountEndpoint, AddressURLParam, testutil.Alice.Hex()), nil)
	c.Assert(rr.Code, qt.Equals, http.StatusOK)
	acc := decode[AccountResponse](c, rr)
	c.Assert(acc.Balance, qt.Equals, uint64(1))
	c.Assert(acc.Tokens, qt.DeepEquals, []types.Word{types.NewWord(1)})

	rr = doRequest(c, a, http.MethodGet, EndpointWithParam(AccountEndpoint, AddressURLParam, testutil.Bob.Hex()), nil)
	c.Assert(rr.Code, qt.Equals, http.StatusOK)
	acc = decode[AccountResponse](c, rr)
	c.Assert(acc.Balance, qt.Equals, uint64(0))
	c.Assert(acc.Tokens, qt.HasLen, 0)

	rr = doRequest(c, a, http.MethodGet, SupplyEndpoint, nil)
	c.Assert(rr.Code, qt.Equals, http.StatusOK)
	supply := decode[SupplyResponse](c, rr)
	c.Assert(supply.TotalSupply, qt.Equals, uint64(1))
	c.Assert(supply.Solutions, qt.Equals, uint64(1))
	c.Assert(supply.Owner, qt.Equals, testutil.Owner)
}

func TestTransfer(t *testing.T) {
	c := qt.New(t)
	a, l := newTestAPI(c, verifier.AcceptAll)

	_, err := l.Mint(testutil.Owner, testutil.Owner, types.NewWord(7))
	c.Assert(err, qt.IsNil)
	_, err = l.Mint(testutil.Owner, testutil.Alice, types.NewWord(8))
	c.Assert(err, qt.IsNil)

	rr := doRequest(c, a, http.MethodPost, TransferEndpoint, &TransferRequest{
		From: testutil.Owner.Hex(), To: testutil.Bob.Hex(), TokenID: types.NewWord(7),
	})
	c.Assert(rr.Code, qt.Equals, http.StatusOK)
	receipt := decode[ledger.Receipt](c, rr)
	c.Assert(receipt.Events, qt.HasLen, 1)
	c.Assert(receipt.Events[0].Name, qt.Equals, ledger.EventTransfer)

	owner, err := l.OwnerOf(types.NewWord(7))
	c.Assert(err, qt.IsNil)
	c.Assert(owner, qt.Equals, testutil.Bob)

	// the operator is neither owner nor approved for token 8
	rr = doRequest(c, a, http.MethodPost, TransferEndpoint, &TransferRequest{
		From: testutil.Alice.Hex(), To: testutil.Bob.Hex(), TokenID: types.NewWord(8),
	})
	c.Assert(rr.Code, qt.Equals, http.StatusForbidden)
	c.Assert(decode[errorResponse](c, rr).Code, qt.Equals, ErrNotAuthorized.Code)

	rr = doRequest(c, a, http.MethodPost, TransferEndpoint, &TransferRequest{
		From: testutil.Owner.Hex(), To: "bob", TokenID: types.NewWord(7),
	})
	c.Assert(rr.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(decode[errorResponse](c, rr).Code, qt.Equals, ErrMalformedAddress.Code)
}

func TestApprove(t *testing.T) {
	c := qt.New(t)
	a, l := newTestAPI(c, verifier.AcceptAll)
	tokenPath := EndpointWithParam(TokenEndpoint, TokenURLParam, "7")

	_, err := l.Mint(testutil.Owner, testutil.Owner, types.NewWord(7))
	c.Assert(err, qt.IsNil)
	_, err = l.Mint(testutil.Owner, testutil.Alice, types.NewWord(8))
	c.Assert(err, qt.IsNil)

	rr := doRequest(c, a, http.MethodPost, ApproveEndpoint, &ApproveRequest{To: testutil.Bob.Hex(), TokenID: types.NewWord(7)})
	c.Assert(rr.Code, qt.Equals, http.StatusOK)
	receipt := decode[ledger.Receipt](c, rr)
	c.Assert(receipt.Events, qt.HasLen, 1)
	c.Assert(receipt.Events[0].Name, qt.Equals, ledger.EventApproval)

	rr = doRequest(c, a, http.MethodGet, tokenPath, nil)
	c.Assert(rr.Code, qt.Equals, http.StatusOK)
	tok := decode[TokenResponse](c, rr)
	c.Assert(tok.Approved, qt.IsNotNil)
	c.Assert(*tok.Approved, qt.Equals, testutil.Bob)

	// the operator does not own token 8
	rr = doRequest(c, a, http.MethodPost, ApproveEndpoint, &ApproveRequest{To: testutil.Bob.Hex(), TokenID: types.NewWord(8)})
	c.Assert(rr.Code, qt.Equals, http.StatusForbidden)
	c.Assert(decode[errorResponse](c, rr).Code, qt.Equals, ErrNotAuthorized.Code)

	rr = doRequest(c, a, http.MethodPost, ApproveEndpoint, &ApproveRequest{To: testutil.Owner.Hex(), TokenID: types.NewWord(7)})
	c.Assert(rr.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(decode[errorResponse](c, rr).Code, qt.Equals, ErrApprovalToOwner.Code)
}
