package order_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ms-barpos/internal/logger"
	"ms-barpos/internal/models"
	"ms-barpos/internal/order"
	"ms-barpos/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	OrderService *order.OrderService
	Logger       *logger.Logger
}

func NewHandler(orderService *order.OrderService, log *logger.Logger) *Handler {
	return &Handler{OrderService: orderService, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/{orderId}", h.GetOrder)
		r.Patch("/{orderId}/status", h.UpdateStatus)
		r.Post("/{orderId}/cancel", h.CancelOrder)
	})
	r.Route("/kitchen/orders", func(r chi.Router) {
		r.Get("/", h.Board)
		r.Post("/{orderId}/dismiss", h.Dismiss)
	})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	h.Logger.Debug("API", fmt.Sprintf("GetOrder: orderId=%s", orderID))

	o, err := h.OrderService.GetOrder(r.Context(), orderID)
	if err != nil {
		utils.SendError(w, "Order not found", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Order retrieved", o))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var req models.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	o, err := h.OrderService.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("UpdateStatus: %s rejected: %v", orderID, err))
		utils.SendError(w, "Could not update order status", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Order status updated", o))
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	o, err := h.OrderService.CancelOrder(r.Context(), orderID)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("CancelOrder: %s rejected: %v", orderID, err))
		utils.SendError(w, "Could not cancel order", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Order cancelled", o))
}

// Board serves the bar's open orders for the active event.
func (h *Handler) Board(w http.ResponseWriter, r *http.Request) {
	orders, err := h.OrderService.Board(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Board: %v", err))
		utils.SendError(w, "Failed to load bar board", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Open orders retrieved", orders))
}

func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	if err := h.OrderService.Dismiss(r.Context(), orderID); err != nil {
		utils.SendError(w, "Could not dismiss order", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Order dismissed", map[string]string{"id": orderID}))
}
