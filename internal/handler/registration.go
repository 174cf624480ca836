package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/raghuenggcollege/campus-events/internal/model"
	"github.com/raghuenggcollege/campus-events/internal/repository"
	"github.com/raghuenggcollege/campus-events/internal/service"
)

// RegistrationHandler holds all HTTP handlers for the registrations API.
type RegistrationHandler struct {
	svc *service.RegistrationService
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(svc *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

// Register handles POST /api/registrations/events/{eventID}
// Registers the caller for the event; CONFIRMED while seats remain,
// WAITLIST once the event is full.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing "+userIDHeader+" header")
		return
	}
	eventID := chi.URLParam(r, "eventID")

	reg, err := h.svc.Register(r.Context(), eventID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "event not found")
		case errors.Is(err, service.ErrAlreadyRegistered):
			writeError(w, http.StatusConflict, "you are already registered for this event")
		case errors.Is(err, service.ErrBusy):
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusServiceUnavailable, "event is busy, please retry")
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, reg)
}

// Cancel handles DELETE /api/registrations/{id}
// Only the owning user may cancel; a freed seat promotes the oldest
// waitlisted registration.
func (h *RegistrationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing "+userIDHeader+" header")
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.svc.Cancel(r.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "registration not found")
		case errors.Is(err, service.ErrUnauthorized):
			writeError(w, http.StatusForbidden, "you may only cancel your own registration")
		case errors.Is(err, service.ErrBusy):
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusServiceUnavailable, "event is busy, please retry")
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MyRegistrations handles GET /api/registrations/my
func (h *RegistrationHandler) MyRegistrations(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing "+userIDHeader+" header")
		return
	}

	regs, err := h.svc.ListForUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list registrations")
		return
	}

	if regs == nil {
		regs = []model.Registration{}
	}

	writeJSON(w, http.StatusOK, regs)
}

// ListForEvent handles GET /api/events/{id}/registrations
func (h *RegistrationHandler) ListForEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	regs, err := h.svc.ListForEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list registrations")
		return
	}

	if regs == nil {
		regs = []model.Registration{}
	}

	writeJSON(w, http.StatusOK, regs)
}
