package handler

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"pnyx/internal/service"
	"pnyx/internal/util"
)

const defaultTopLimit = 10

// IssueHandler handles issues, proposals and votes.
type IssueHandler struct {
	responder
	issues service.IssueService
}

// NewIssueHandler creates a new IssueHandler.
func NewIssueHandler(issues service.IssueService, logger *slog.Logger) *IssueHandler {
	return &IssueHandler{responder: newResponder(logger), issues: issues}
}

// CreateIssueRequest represents the request body for a new issue.
type CreateIssueRequest struct {
	UserID      int64      `json:"user_id" validate:"gt=0"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description" validate:"required"`
	DueDate     *time.Time `json:"due_date"`
}

// CreateProposalRequest represents the request body for a new proposal.
type CreateProposalRequest struct {
	UserID      int64  `json:"user_id" validate:"gt=0"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// VoteRequest represents the request body for a vote.
type VoteRequest struct {
	UserID int64 `json:"user_id" validate:"gt=0"`
}

// CreateIssue handles POST /issues.
func (h *IssueHandler) CreateIssue(w http.ResponseWriter, r *http.Request) {
	var req CreateIssueRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	issue, err := h.issues.CreateIssue(r.Context(), req.UserID, req.Title, req.Description, req.DueDate)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, issue)
}

// ListIssues handles GET /issues.
func (h *IssueHandler) ListIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := h.issues.ListIssues(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, issues)
}

// GetIssue handles GET /issues/{issueID}.
func (h *IssueHandler) GetIssue(w http.ResponseWriter, r *http.Request) {
	issueID, err := pathID(r, "issueID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	issue, err := h.issues.GetIssue(r.Context(), issueID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, issue)
}

// GetTopIssues handles GET /issues/top?limit=N or ?percent=P.
func (h *IssueHandler) GetTopIssues(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("percent"); raw != "" {
		percent, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(percent) || math.IsInf(percent, 0) || percent < 0 {
			h.respondWithError(w, util.NewValidationError("percent", "must be a non-negative number"))
			return
		}
		issues, err := h.issues.GetTopStakedIssuesPercentage(r.Context(), percent)
		if err != nil {
			h.respondWithError(w, err)
			return
		}
		h.respondWithJSON(w, http.StatusOK, issues)
		return
	}

	limit, err := queryInt(r, "limit", defaultTopLimit)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	issues, err := h.issues.GetTopStakedIssues(r.Context(), limit)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, issues)
}

// CreateProposal handles POST /issues/{issueID}/proposals.
func (h *IssueHandler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	issueID, err := pathID(r, "issueID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	var req CreateProposalRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	proposal, err := h.issues.CreateProposal(r.Context(), issueID, req.UserID, req.Title, req.Description)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, proposal)
}

// ListProposals handles GET /issues/{issueID}/proposals.
func (h *IssueHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	issueID, err := pathID(r, "issueID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	proposals, err := h.issues.ListProposals(r.Context(), issueID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, proposals)
}

// GetTopProposals handles GET /issues/{issueID}/proposals/top?limit=N.
func (h *IssueHandler) GetTopProposals(w http.ResponseWriter, r *http.Request) {
	issueID, err := pathID(r, "issueID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	limit, err := queryInt(r, "limit", defaultTopLimit)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	proposals, err := h.issues.GetTopStakedProposals(r.Context(), issueID, limit)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, proposals)
}

// CastVote handles POST /proposals/{proposalID}/votes.
func (h *IssueHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	proposalID, err := pathID(r, "proposalID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	var req VoteRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	vote, err := h.issues.CastVote(r.Context(), proposalID, req.UserID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, vote)
}
