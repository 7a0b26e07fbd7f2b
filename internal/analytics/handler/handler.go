// Package handler wires the analytics endpoint to the analytics service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"worklens/internal/analytics"
	"worklens/pkg/platform/httputil"
	"worklens/pkg/requestcontext"
)

// Service defines the interface for analytics operations.
type Service interface {
	Overview(ctx context.Context, months int, staffGroup analytics.StaffGroup) (analytics.Overview, error)
}

// Handler serves the legacy analytics overview.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an analytics handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts analytics endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/analytics", h.HandleOverview)
}

// HandleOverview handles GET /analytics requests.
func (h *Handler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	months := 6
	if raw := r.URL.Query().Get("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 36 {
			httputil.BadRequest(w, "months must be an integer between 1 and 36")
			return
		}
		months = parsed
	}

	var staffGroup analytics.StaffGroup
	if raw := r.URL.Query().Get("staff_group"); raw != "" {
		staffGroup = analytics.StaffGroup(raw)
		if !staffGroup.Valid() {
			httputil.BadRequest(w, "unknown staff_group")
			return
		}
	}

	overview, err := h.service.Overview(ctx, months, staffGroup)
	if err != nil {
		h.logger.ErrorContext(ctx, "analytics overview failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.Internal(w)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, overview)
}
