package analytics_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ms-barpos/internal/aggregation"
	"ms-barpos/internal/analytics"
	"ms-barpos/internal/logger"
	"ms-barpos/internal/models"
	"ms-barpos/internal/sse"
	"ms-barpos/internal/utils"

	"github.com/go-chi/chi/v5"
)

const keepAliveInterval = 25 * time.Second

// Handler handles statistics HTTP endpoints
type Handler struct {
	Service *analytics.Service
	Live    *analytics.Live
	Emitter *sse.StatsEmitter
	Logger  *logger.Logger
}

// NewHandler creates a new statistics handler
func NewHandler(service *analytics.Service, live *analytics.Live, emitter *sse.StatsEmitter, logger *logger.Logger) *Handler {
	return &Handler{Service: service, Live: live, Emitter: emitter, Logger: logger}
}

// RegisterRoutes registers the statistics routes on a chi router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/stats", func(r chi.Router) {
		r.Get("/active", h.GetActiveStats)
		r.Get("/open-tabs", h.GetOpenTabsStats)
		r.Get("/events/{eventId}", h.GetEventStats)
		r.Get("/stream", h.StreamStats)
	})
}

func (h *Handler) GetActiveStats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.ActiveStats(r.Context())
	if err != nil {
		h.Logger.Error("ANALYTICS", fmt.Sprintf("GetActiveStats: %v", err))
		utils.SendError(w, "Failed to compute stats", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Active event stats", summary))
}

func (h *Handler) GetOpenTabsStats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.OpenTabsStats(r.Context())
	if err != nil {
		h.Logger.Error("ANALYTICS", fmt.Sprintf("GetOpenTabsStats: %v", err))
		utils.SendError(w, "Failed to compute stats", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Open tab stats", summary))
}

// GetEventStats serves frozen stats for completed events and live stats
// for the running one. ?excludePaid=true limits a running event to open tabs.
func (h *Handler) GetEventStats(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	opts := aggregation.Options{ExcludePaid: r.URL.Query().Get("excludePaid") == "true"}

	stats, err := h.Service.EventStats(r.Context(), eventID, opts)
	if err != nil {
		utils.SendError(w, "Failed to compute stats", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Event stats", stats))
}

// StreamStats pushes stats updates over SSE. ?eventId= narrows the stream to
// one event; without it every event's updates are sent.
func (h *Handler) StreamStats(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	eventID := r.URL.Query().Get("eventId")
	setupSSEHeaders(w)

	ctx := r.Context()
	updates := h.Emitter.SubscribeToEvent(ctx, eventID)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"eventId\":%q}\n\n", eventID)
	flusher.Flush()
	h.Logger.Info("SSE", fmt.Sprintf("Client connected to stats stream (event=%q)", eventID))

	if initial, ok := h.initialUpdate(r, eventID); ok {
		h.writeUpdate(w, initial)
		flusher.Flush()
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.writeUpdate(w, update)
			flusher.Flush()

		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()

		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("Client disconnected from stats stream (event=%q)", eventID))
			return
		}
	}
}

// initialUpdate picks what a new subscriber sees first: the last broadcast
// stats of the event, or a fresh computation.
func (h *Handler) initialUpdate(r *http.Request, eventID string) (models.StatsUpdate, bool) {
	if eventID == "" {
		summary, err := h.Service.ActiveStats(r.Context())
		if err != nil || summary.Event == nil {
			return models.StatsUpdate{}, false
		}
		eventID = summary.Event.ID
	}
	if h.Live != nil {
		if snap, ok := h.Live.Snapshot(eventID); ok {
			return snap, true
		}
	}
	stats, err := h.Service.EventStats(r.Context(), eventID, aggregation.Options{})
	if err != nil {
		return models.StatsUpdate{EventID: eventID, Stale: true, Error: err.Error(), At: time.Now().UnixMilli()}, true
	}
	return models.StatsUpdate{EventID: eventID, Stats: stats, At: time.Now().UnixMilli()}, true
}

func (h *Handler) writeUpdate(w http.ResponseWriter, update models.StatsUpdate) {
	jsonData, err := json.Marshal(update)
	if err != nil {
		h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize stats update: %v", err))
		return
	}
	name := "stats"
	if update.Error != "" {
		name = "stats_error"
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, jsonData)
}

func setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
