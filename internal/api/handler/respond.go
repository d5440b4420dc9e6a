package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"pnyx/internal/service"
	"pnyx/internal/util"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 30 * time.Second

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// responder carries the JSON helpers shared by all handlers.
type responder struct {
	logger    *slog.Logger
	validator *service.ValidationHelper
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: logger, validator: service.NewValidationHelper()}
}

func (h responder) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

var notFoundMessages = []struct {
	err     error
	message string
}{
	{util.ErrUserNotFound, "User not found"},
	{util.ErrWalletNotFound, "Wallet not found"},
	{util.ErrIssueNotFound, "Issue not found"},
	{util.ErrProposalNotFound, "Proposal not found"},
}

// respondWithError maps service errors onto status codes.
func (h responder) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	body := ErrorResponse{Error: "Internal server error"}

	var verr *util.ValidationError
	switch {
	case errors.As(err, &verr):
		statusCode = http.StatusBadRequest
		body = ErrorResponse{Error: "Validation failed", Details: verr.Fields}
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		body.Error = err.Error()
	case util.IsError(err, util.ErrTransactionTypeNotFound):
		// The fee schedule is seeded at startup; a missing type is a server fault.
		h.logger.Error("Fee schedule incomplete", "error", err)
	case util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		body.Error = "Resource not found"
		for _, nf := range notFoundMessages {
			if util.IsError(err, nf.err) {
				body.Error = nf.message
				break
			}
		}
	case util.IsError(err, util.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired
		body.Error = "Insufficient funds"
	case util.IsError(err, util.ErrAlreadyStaked):
		statusCode = http.StatusConflict
		body.Error = "Proposal already staked"
	case util.IsError(err, util.ErrAlreadyVoted):
		statusCode = http.StatusConflict
		body.Error = "Proposal already voted"
	case util.IsError(err, util.ErrDuplicateEntry):
		statusCode = http.StatusConflict
		body.Error = "Resource already exists"
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, body)
}

// decodeAndValidate reads a JSON body into dst, rejecting unknown fields, and
// runs the struct's validate tags.
func (h responder) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", util.ErrInvalidInput, err)
	}
	return h.validator.ValidateStruct(dst)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", util.ErrInvalidInput, name)
	}
	return id, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: invalid %s", util.ErrInvalidInput, name)
	}
	return v, nil
}
