package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"pnyx/internal/api/handler"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Wallet *handler.WalletHandler
	Issue  *handler.IssueHandler
	Stake  *handler.StakeHandler
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// NewRouter sets up and returns a new HTTP router.
func NewRouter(h Handlers, allowedOrigins []string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	r.Post("/users", h.Wallet.CreateUser)
	r.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/wallet", h.Wallet.GetWallet)
		r.Get("/wallet/transactions", h.Wallet.GetTransactionHistory)
		r.Get("/stakes", h.Stake.GetUserStakes)
	})

	r.Route("/issues", func(r chi.Router) {
		r.Post("/", h.Issue.CreateIssue)
		r.Get("/", h.Issue.ListIssues)
		r.Get("/top", h.Issue.GetTopIssues)
		r.Route("/{issueID}", func(r chi.Router) {
			r.Get("/", h.Issue.GetIssue)
			r.Post("/proposals", h.Issue.CreateProposal)
			r.Get("/proposals", h.Issue.ListProposals)
			r.Get("/proposals/top", h.Issue.GetTopProposals)
		})
	})

	r.Route("/proposals", func(r chi.Router) {
		r.Put("/stake", h.Stake.Stake)
		r.Post("/{proposalID}/votes", h.Issue.CastVote)
	})

	r.Post("/stakes/rollback-expired", h.Stake.RollbackExpired)

	logger.Debug("HTTP routes registered")
	return r
}
