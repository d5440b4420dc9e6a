package handler

import (
	"log/slog"
	"net/http"

	"pnyx/internal/api/types"
	"pnyx/internal/service"
)

// StakeHandler handles staking requests.
type StakeHandler struct {
	responder
	staking service.StakingService
}

// NewStakeHandler creates a new StakeHandler.
func NewStakeHandler(staking service.StakingService, logger *slog.Logger) *StakeHandler {
	return &StakeHandler{responder: newResponder(logger), staking: staking}
}

// StakeRequest names the proposal to stake on as item_id.
type StakeRequest struct {
	UserID int64 `json:"user_id" validate:"gt=0"`
	ItemID int64 `json:"item_id" validate:"gt=0"`
}

// Stake puts the user's stake on a proposal.
// PUT /proposals/stake
func (h *StakeHandler) Stake(w http.ResponseWriter, r *http.Request) {
	var req StakeRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	stake, err := h.staking.StakeProposal(r.Context(), req.ItemID, req.UserID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, types.NewStakeResponse(stake))
}

// GetUserStakes lists the user's active stakes.
// GET /users/{userID}/stakes
func (h *StakeHandler) GetUserStakes(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	stakes, err := h.staking.GetActiveStakes(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	resp := make([]types.StakeResponse, 0, len(stakes))
	for i := range stakes {
		resp = append(resp, types.NewStakeResponse(&stakes[i]))
	}
	h.respondWithJSON(w, http.StatusOK, resp)
}

// RollbackExpired runs the expired stake sweep now.
// POST /stakes/rollback-expired
func (h *StakeHandler) RollbackExpired(w http.ResponseWriter, r *http.Request) {
	n, err := h.staking.RollbackInvalidStakedProposals(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]int{"rolled_back": n})
}
