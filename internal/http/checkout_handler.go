package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/checkout"
	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/domain"
)

type CheckoutHandler struct {
	orchestrator *checkout.Orchestrator
	timeout      time.Duration
}

func NewCheckoutHandler(orchestrator *checkout.Orchestrator, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		orchestrator: orchestrator,
		timeout:      timeout,
	}
}

type CheckoutStateDTO struct {
	State string              `json:"state"`
	Form  domain.CheckoutForm `json:"form"`
}

// GET /api/v1/checkout
func (h *CheckoutHandler) GetState(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "missing cart session")
		return
	}

	state, form := h.orchestrator.Snapshot(sessionID)
	respondJSON(w, http.StatusOK, CheckoutStateDTO{State: state.String(), Form: form})
}

// PUT /api/v1/checkout/form
func (h *CheckoutHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "missing cart session")
		return
	}

	var form domain.CheckoutForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.orchestrator.UpdateForm(sessionID, form); err != nil {
		handleCheckoutError(w, err)
		return
	}

	state, updated := h.orchestrator.Snapshot(sessionID)
	respondJSON(w, http.StatusOK, CheckoutStateDTO{State: state.String(), Form: updated})
}

// POST /api/v1/checkout/review
func (h *CheckoutHandler) Review(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "missing cart session")
		return
	}

	review, err := h.orchestrator.Review(ctx, sessionID)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, review)
}

// POST /api/v1/checkout/cancel
func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "missing cart session")
		return
	}

	if err := h.orchestrator.Cancel(sessionID); err != nil {
		handleCheckoutError(w, err)
		return
	}

	state, form := h.orchestrator.Snapshot(sessionID)
	respondJSON(w, http.StatusOK, CheckoutStateDTO{State: state.String(), Form: form})
}

// POST /api/v1/checkout/confirm
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "missing cart session")
		return
	}

	confirmation, err := h.orchestrator.Confirm(ctx, sessionID)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, confirmation)
}

// POST /api/v1/checkout/reset
func (h *CheckoutHandler) Reset(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "missing cart session")
		return
	}

	if err := h.orchestrator.Reset(sessionID); err != nil {
		handleCheckoutError(w, err)
		return
	}

	state, form := h.orchestrator.Snapshot(sessionID)
	respondJSON(w, http.StatusOK, CheckoutStateDTO{State: state.String(), Form: form})
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	var validationErr *checkout.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   validationErr.Error(),
			Code:    "validation_failed",
			Details: strings.Join(validationErr.MissingFields, ", "),
		})
	case errors.Is(err, checkout.IllegalTransitionError):
		respondError(w, http.StatusConflict, "illegal_transition", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "checkout failed")
	}
}
