package handler

import (
	"log/slog"
	"net/http"

	"pnyx/internal/api/types"
	"pnyx/internal/domain"
	"pnyx/internal/service"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// WalletHandler handles user registration and wallet reads.
type WalletHandler struct {
	responder
	ledger service.LedgerService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledger service.LedgerService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{responder: newResponder(logger), ledger: ledger}
}

// CreateUserRequest represents the request body for registration.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=32"`
}

// CreateUser registers a user with a funded wallet.
// POST /users
func (h *WalletHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	user, wallet, err := h.ledger.CreateUserWithWallet(r.Context(), req.Username)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, types.UserResponse{User: *user, Wallet: *wallet})
}

// GetWallet returns the user's wallet and balance.
// GET /users/{userID}/wallet
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	wallet, err := h.ledger.GetWallet(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, wallet)
}

// GetTransactionHistory pages through the wallet's transactions, newest first.
// GET /users/{userID}/wallet/transactions
func (h *WalletHandler) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	limit, err := queryInt(r, "limit", defaultPageSize)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	switch {
	case limit == 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	transactions, total, err := h.ledger.GetTransactionHistory(r.Context(), userID, limit, offset)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.PaginatedResponse[domain.WalletTransaction]{
		Data:       transactions,
		Limit:      limit,
		Offset:     offset,
		TotalCount: total,
	})
}
