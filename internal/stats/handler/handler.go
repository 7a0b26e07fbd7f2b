// Package handler exposes the published-statistics read API. All data served
// here has already been k-anonymized and noised; the handlers only filter and
// shape it.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"worklens/internal/aggregation/models"
	"worklens/pkg/platform/httputil"
	"worklens/pkg/requestcontext"
)

const (
	dateLayout         = "2006-01-02"
	defaultCountryCode = "DEU"
)

// Service defines the interface for published-statistics queries.
type Service interface {
	List(ctx context.Context, filter models.StatFilter) ([]models.PublishedStatistic, error)
	Latest(ctx context.Context, countryCode string, limit int) ([]models.PublishedStatistic, error)
	Summary(ctx context.Context, countryCode string) (models.StatsSummary, error)
}

// Handler serves published statistics over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a stats handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the stats endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/stats", func(r chi.Router) {
		r.Get("/by-state-specialty", h.HandleList)
		r.Get("/by-state-specialty/latest", h.HandleLatest)
		r.Get("/summary", h.HandleSummary)
	})
}

// statResponse mirrors one published row on the wire.
type statResponse struct {
	ID                string    `json:"id"`
	CountryCode       string    `json:"country_code"`
	StateCode         string    `json:"state_code"`
	Specialty         string    `json:"specialty"`
	RoleLevel         string    `json:"role_level"`
	PeriodStart       string    `json:"period_start"`
	PeriodEnd         string    `json:"period_end"`
	NUsers            int       `json:"n_users"`
	AvgPlannedNoised  float64   `json:"avg_planned_hours_noised"`
	AvgActualNoised   float64   `json:"avg_actual_hours_noised"`
	AvgOvertimeNoised float64   `json:"avg_overtime_hours_noised"`
	KMinThreshold     int       `json:"k_min_threshold"`
	NoiseEpsilon      float64   `json:"noise_epsilon"`
	ComputedAt        time.Time `json:"computed_at"`
}

func toResponse(stat models.PublishedStatistic) statResponse {
	return statResponse{
		ID:                stat.ID.String(),
		CountryCode:       stat.CountryCode,
		StateCode:         stat.StateCode,
		Specialty:         stat.Specialty,
		RoleLevel:         stat.RoleLevel,
		PeriodStart:       stat.PeriodStart.Format(dateLayout),
		PeriodEnd:         stat.PeriodEnd.Format(dateLayout),
		NUsers:            stat.Contributors,
		AvgPlannedNoised:  stat.AvgPlannedNoised,
		AvgActualNoised:   stat.AvgActualNoised,
		AvgOvertimeNoised: stat.AvgOvertimeNoised,
		KMinThreshold:     stat.KMinThreshold,
		NoiseEpsilon:      stat.Epsilon,
		ComputedAt:        stat.ComputedAt,
	}
}

func toResponses(stats []models.PublishedStatistic) []statResponse {
	out := make([]statResponse, 0, len(stats))
	for _, stat := range stats {
		out = append(out, toResponse(stat))
	}
	return out
}

// HandleList handles GET /stats/by-state-specialty requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := models.StatFilter{
		CountryCode: q.Get("country_code"),
		StateCode:   q.Get("state_code"),
		Specialty:   q.Get("specialty"),
		RoleLevel:   q.Get("role_level"),
	}

	if raw := q.Get("period_start"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			httputil.BadRequest(w, "period_start must be a date in YYYY-MM-DD form")
			return
		}
		filter.PeriodStart = &parsed
	}

	limit, err := intParam(q.Get("limit"), 100, 1, 1000)
	if err != nil {
		httputil.BadRequest(w, "limit must be an integer between 1 and 1000")
		return
	}
	filter.Limit = limit

	offset, err := intParam(q.Get("offset"), 0, 0, 1<<30)
	if err != nil {
		httputil.BadRequest(w, "offset must be a non-negative integer")
		return
	}
	filter.Offset = offset

	stats, err := h.service.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "stats list failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.Internal(w)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(stats))
}

// HandleLatest handles GET /stats/by-state-specialty/latest requests.
func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	country := q.Get("country_code")
	if country == "" {
		country = defaultCountryCode
	}

	limit, err := intParam(q.Get("limit"), 50, 1, 100)
	if err != nil {
		httputil.BadRequest(w, "limit must be an integer between 1 and 100")
		return
	}

	stats, err := h.service.Latest(ctx, country, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "latest stats failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.Internal(w)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(stats))
}

// HandleSummary handles GET /stats/summary requests.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	country := r.URL.Query().Get("country_code")
	if country == "" {
		country = defaultCountryCode
	}

	summary, err := h.service.Summary(ctx, country)
	if err != nil {
		h.logger.ErrorContext(ctx, "stats summary failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.Internal(w)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

// intParam parses an optional integer query parameter with an inclusive range.
func intParam(raw string, def, min, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < min || parsed > max {
		return 0, strconv.ErrRange
	}
	return parsed, nil
}
