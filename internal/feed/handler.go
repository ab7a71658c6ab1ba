// Package feed serves subscription calendar feeds over HTTP. It is a thin
// adapter: it loads events from the store and hands them to the encoder.
package feed

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parishplan/parishplan/internal/ics"
	"github.com/parishplan/parishplan/internal/models"
)

const (
	// Feed window: a month of history plus six months ahead. The feed is
	// pull-based; clients poll within this freshness window.
	pastWindow   = time.Hour * 24 * 30
	futureMonths = 6
)

// Store is the read surface the feed consumes.
type Store interface {
	ListForRange(ctx context.Context, churchID uuid.UUID, from, to time.Time) ([]*models.Event, error)
}

type Handler struct {
	store   Store
	encoder *ics.Encoder
	token   string
	logger  *slog.Logger
}

// NewHandler creates the feed handler. An empty token disables auth; the
// logger must not be nil.
func NewHandler(store Store, token string, logger *slog.Logger) *Handler {
	return &Handler{
		store:   store,
		encoder: ics.NewEncoder(),
		token:   token,
		logger:  logger,
	}
}

// Register mounts the feed route on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/feed/", h.authMiddleware(h.handleFeed))
}

func (h *Handler) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.token != "" && r.URL.Query().Get("token") != h.token {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// handleFeed serves GET /feed/{churchID}.ics. A store failure after partial
// data still yields a valid (possibly partial) calendar: some client apps
// permanently disable a subscription after one failed fetch.
func (h *Handler) handleFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/feed/")
	name = strings.TrimSuffix(name, ".ics")
	churchID, err := uuid.Parse(name)
	if err != nil {
		http.Error(w, "Invalid calendar identifier", http.StatusBadRequest)
		return
	}

	now := time.Now()
	from := now.Add(-pastWindow)
	to := now.AddDate(0, futureMonths, 0)

	events, storeErr := h.store.ListForRange(r.Context(), churchID, from, to)
	if storeErr != nil {
		h.logger.Error("feed: loading events failed",
			"church_id", churchID, "err", storeErr)
		if len(events) == 0 {
			http.Error(w, "Calendar temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	data := h.encoder.Encode(events, "ParishPlan Calendar")

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("feed: writing response failed", "err", err)
	}
}
