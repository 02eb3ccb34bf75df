package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/KabiruH/attendance-agent/internal/application"
	"github.com/KabiruH/attendance-agent/internal/domain"
)

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ready")
}

func (h *Handler) today(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, h.service.TodayView())
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Refresh(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "refresh", err)
		return
	}
	writeSuccess(w, http.StatusOK, view)
}

func (h *Handler) lastKnownLocation(w http.ResponseWriter, r *http.Request) {
	sample, err := h.service.LastKnownLocation(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "last_known_location", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"last_known": sample})
}

func (h *Handler) journal(w http.ResponseWriter, r *http.Request) {
	limit := parseIntDefault(r.URL.Query().Get("limit"), 20)
	entries, err := h.service.RecentJournal(r.Context(), limit)
	if err != nil {
		writeMappedError(r.Context(), w, "journal", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) workCheckIn(w http.ResponseWriter, r *http.Request) {
	h.performAction(w, r, "work_check_in", application.ActionRequest{Kind: domain.ActionWorkCheckIn})
}

func (h *Handler) workCheckOut(w http.ResponseWriter, r *http.Request) {
	h.performAction(w, r, "work_check_out", application.ActionRequest{Kind: domain.ActionWorkCheckOut})
}

func (h *Handler) classCheckIn(w http.ResponseWriter, r *http.Request) {
	classID, err := classIDFromURL(r)
	if err != nil {
		writeValidationError(r.Context(), w, "class_check_in", err)
		return
	}
	h.performAction(w, r, "class_check_in", application.ActionRequest{
		Kind:    domain.ActionClassCheckIn,
		ClassID: classID,
	})
}

func (h *Handler) classCheckOut(w http.ResponseWriter, r *http.Request) {
	classID, err := classIDFromURL(r)
	if err != nil {
		writeValidationError(r.Context(), w, "class_check_out", err)
		return
	}
	h.performAction(w, r, "class_check_out", application.ActionRequest{
		Kind:    domain.ActionClassCheckOut,
		ClassID: classID,
	})
}

func (h *Handler) performAction(w http.ResponseWriter, r *http.Request, operation string, req application.ActionRequest) {
	result, err := h.service.PerformAction(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, operation, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"action": result,
		"today":  h.service.TodayView(),
	})
}

func classIDFromURL(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "classID")
	if raw == "" {
		return 0, nil
	}
	classID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || classID <= 0 {
		return 0, domain.ErrClassRequired
	}
	return classID, nil
}
