package api

import "strings"

const (
	PingEndpoint    = "/ping"
	MetricsEndpoint = "/metrics"

	KeyURLParam     = "key"
	TokenURLParam   = "tokenId"
	AddressURLParam = "address"

	SolutionsEndpoint   = "/solutions"                                 // POST: verify and record a solution
	SolutionKeyEndpoint = SolutionsEndpoint + "/key"                   // POST: derive a solution key
	SolutionEndpoint    = SolutionsEndpoint + "/{" + KeyURLParam + "}" // GET: solution status
	MintEndpoint        = "/mint"                                      // POST: verify, record and mint
	TransferEndpoint    = "/transfer"                                  // POST: transfer a token
	ApproveEndpoint     = "/approve"                                   // POST: approve an operator for a token
	TokenEndpoint       = "/tokens/{" + TokenURLParam + "}"            // GET: token owner and URI
	AccountEndpoint     = "/accounts/{" + AddressURLParam + "}"        // GET: balance and owned tokens
	SupplyEndpoint      = "/supply"                                    // GET: collection info
)

// EndpointWithParam replaces the {param} placeholder of endpoint with value.
func EndpointWithParam(endpoint, param, value string) string {
	return strings.Replace(endpoint, "{"+param+"}", value, 1)
}
