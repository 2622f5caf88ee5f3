package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/minhkq1998/SampleJWT/internal/accounts/service"
	"github.com/minhkq1998/SampleJWT/internal/accounts/store"
	"github.com/minhkq1998/SampleJWT/pkg/httpx"
	"github.com/minhkq1998/SampleJWT/pkg/jwtx"
	"github.com/minhkq1998/SampleJWT/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
//
// Every request passes through the logging, CORS and bearer-filter
// middlewares. The filter only attaches a principal; the account routes are
// all on the public allow-list and decide for themselves what the token must
// prove, while anything outside the allow-list is gated by RequireAuth.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	AccountService *service.AccountService
	TokenService   *service.TokenService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(),
		httpx.BearerAuth(r.verifier),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAccounts() {
	// Credential endpoints get the strict profile (brute force prevention).
	r.Mux.Handle("POST /signin",
		httpx.Chain(&SignInHandler{AccountService: r.AccountService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /signup",
		httpx.Chain(&SignUpHandler{AccountService: r.AccountService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /edit",
		httpx.Chain(&EditHandler{AccountService: r.AccountService},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /delete",
		httpx.Chain(&DeleteHandler{AccountService: r.AccountService},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// Root stays public; everything not registered above requires an
	// authenticated principal.
	r.Mux.Handle("/{$}", RootHandler(r.buildVersion))
	r.Mux.Handle("/",
		httpx.Chain(notFoundHandler(),
			httpx.RequireAuth(),
		),
	)
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteMessage(w, http.StatusNotFound, "Error: Not found")
	})
}
