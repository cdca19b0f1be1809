// Package api serves the ledger over HTTP. Mutating endpoints act on behalf
// of the configured operator account, the contract owner, so transfers and
// approvals only succeed for tokens that account owns or is approved for.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kysee/zknft/ledger"
	"github.com/kysee/zknft/log"
	"github.com/kysee/zknft/metrics"
)

const maxRequestBodySize = 1 << 20

type APIConfig struct {
	Host   string
	Port   int
	Ledger *ledger.Ledger
}

type API struct {
	router *chi.Mux
	ledger *ledger.Ledger
	host   string
	port   int
}

// New creates the API and its router. It does not listen, see Server.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Ledger == nil {
		return nil, fmt.Errorf("missing ledger instance")
	}
	a := &API{ledger: conf.Ledger, host: conf.Host, port: conf.Port}
	a.initRouter()
	return a, nil
}

// Router returns the chi router for testing purposes
func (a *API) Router() *chi.Mux {
	return a.router
}

// Server returns an http.Server for the API bound to the configured host
// and port.
func (a *API) Server() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.host, a.port),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (a *API) registerHandlers() {
	log.Infow("register handler", "endpoint", PingEndpoint, "method", "GET")
	a.router.Get(PingEndpoint, func(w http.ResponseWriter, r *http.Request) {
		httpWriteOK(w)
	})
	log.Infow("register handler", "endpoint", MetricsEndpoint, "method", "GET")
	a.router.Method(http.MethodGet, MetricsEndpoint, metrics.Handler())

	log.Infow("register handler", "endpoint", SolutionKeyEndpoint, "method", "POST")
	a.router.Post(SolutionKeyEndpoint, a.solutionKey)
	log.Infow("register handler", "endpoint", SolutionEndpoint, "method", "GET")
	a.router.Get(SolutionEndpoint, a.solution)
	log.Infow("register handler", "endpoint", SolutionsEndpoint, "method", "POST")
	a.router.Post(SolutionsEndpoint, a.addSolution)

	log.Infow("register handler", "endpoint", MintEndpoint, "method", "POST")
	a.router.Post(MintEndpoint, a.mint)
	log.Infow("register handler", "endpoint", TransferEndpoint, "method", "POST")
	a.router.Post(TransferEndpoint, a.transfer)
	log.Infow("register handler", "endpoint", ApproveEndpoint, "method", "POST")
	a.router.Post(ApproveEndpoint, a.approve)
	log.Infow("register handler", "endpoint", TokenEndpoint, "method", "GET")
	a.router.Get(TokenEndpoint, a.token)
	log.Infow("register handler", "endpoint", AccountEndpoint, "method", "GET")
	a.router.Get(AccountEndpoint, a.account)
	log.Infow("register handler", "endpoint", SupplyEndpoint, "method", "GET")
	a.router.Get(SupplyEndpoint, a.supply)
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}).Handler)
	a.router.Use(metricsMiddleware)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.Timeout(45 * time.Second))
	a.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		ErrResourceNotFound.Withf("%s %s", r.Method, r.URL.Path).Write(w)
	})

	a.registerHandlers()
}
