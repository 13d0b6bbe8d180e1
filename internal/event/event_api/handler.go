package event_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ms-barpos/internal/event"
	"ms-barpos/internal/logger"
	"ms-barpos/internal/models"
	"ms-barpos/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	EventService *event.EventService
	Logger       *logger.Logger
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Post("/", h.CreateEvent)
		r.Get("/active", h.GetActive)
		r.Post("/active/ensure", h.EnsureActive)
		r.Post("/active/complete", h.CompleteActive)
		r.Get("/history", h.History)
		r.Get("/{eventId}", h.GetEvent)
	})
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.EventService.List(r.Context())
	if err != nil {
		utils.SendError(w, "Failed to list events", err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Events retrieved", events))
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	events, err := h.EventService.History(r.Context())
	if err != nil {
		utils.SendError(w, "Failed to list event history", err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Event history retrieved", events))
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	ev, err := h.EventService.Create(r.Context(), req.Name)
	if err != nil {
		h.Logger.Warn("EVENT", fmt.Sprintf("Create event rejected: %v", err))
		utils.SendError(w, "Failed to create event", err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, utils.SuccessResponse("Event created", ev))
}

func (h *Handler) GetActive(w http.ResponseWriter, r *http.Request) {
	ev, err := h.EventService.Active(r.Context())
	if errors.Is(err, models.ErrNoActiveEvent) {
		utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("No active event", nil))
		return
	}
	if err != nil {
		utils.SendError(w, "Failed to load active event", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Active event retrieved", ev))
}

func (h *Handler) EnsureActive(w http.ResponseWriter, r *http.Request) {
	ev, err := h.EventService.EnsureActive(r.Context())
	if err != nil {
		h.Logger.Error("EVENT", fmt.Sprintf("Failed to ensure active event: %v", err))
		utils.SendError(w, "Failed to ensure active event", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Active event ready", ev))
}

func (h *Handler) CompleteActive(w http.ResponseWriter, r *http.Request) {
	ev, err := h.EventService.Close(r.Context())
	if err != nil {
		h.Logger.Warn("EVENT", fmt.Sprintf("Complete event rejected: %v", err))
		utils.SendError(w, "Failed to complete event", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Event completed", ev))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := h.EventService.Get(r.Context(), chi.URLParam(r, "eventId"))
	if err != nil {
		utils.SendError(w, "Event not available", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Event retrieved", ev))
}
