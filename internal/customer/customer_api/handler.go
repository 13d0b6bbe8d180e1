package customer_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ms-barpos/internal/customer"
	"ms-barpos/internal/logger"
	"ms-barpos/internal/models"
	"ms-barpos/internal/order"
	"ms-barpos/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	CustomerService *customer.CustomerService
	OrderService    *order.OrderService
	Logger          *logger.Logger
}

func NewHandler(customerService *customer.CustomerService, orderService *order.OrderService, log *logger.Logger) *Handler {
	return &Handler{CustomerService: customerService, OrderService: orderService, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.ListCustomers)
		r.Post("/", h.RegisterCustomer)
		r.Route("/{customerId}", func(r chi.Router) {
			r.Get("/", h.GetCustomer)
			r.Patch("/guests", h.UpdateGuestCount)
			r.Post("/notes", h.AddNote)
			r.Delete("/notes/{noteId}", h.DeleteNote)
			r.Post("/pay", h.MarkPaid)
			r.Get("/qr", h.TabQR)
			r.Get("/orders", h.ListOrders)
			r.Post("/orders", h.PlaceOrder)
		})
	})
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.CustomerService.ListActive(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListCustomers: %v", err))
		utils.SendError(w, "Failed to list customers", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Customers retrieved", customers))
}

func (h *Handler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var req models.CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	c, err := h.CustomerService.Register(r.Context(), req.Name, req.GuestCount)
	if err != nil {
		utils.SendError(w, "Failed to register customer", err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, utils.SuccessResponse("Customer registered", c))
}

// GetCustomer returns the tab detail with orders and the amount due.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	detail, err := h.CustomerService.Detail(r.Context(), chi.URLParam(r, "customerId"))
	if err != nil {
		utils.SendError(w, "Customer not available", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Customer retrieved", detail))
}

func (h *Handler) UpdateGuestCount(w http.ResponseWriter, r *http.Request) {
	var req models.GuestCountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	c, err := h.CustomerService.UpdateGuestCount(r.Context(), chi.URLParam(r, "customerId"), req.GuestCount)
	if err != nil {
		utils.SendError(w, "Failed to update guest count", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Guest count updated", c))
}

func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req models.NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	c, err := h.CustomerService.AddNote(r.Context(), chi.URLParam(r, "customerId"), req.Content)
	if err != nil {
		utils.SendError(w, "Failed to add note", err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, utils.SuccessResponse("Note added", c))
}

func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	c, err := h.CustomerService.DeleteNote(r.Context(), chi.URLParam(r, "customerId"), chi.URLParam(r, "noteId"))
	if err != nil {
		utils.SendError(w, "Failed to delete note", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Note deleted", c))
}

func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	c, err := h.CustomerService.MarkPaid(r.Context(), chi.URLParam(r, "customerId"))
	if err != nil {
		utils.SendError(w, "Failed to mark customer paid", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Customer marked paid", c))
}

// TabQR serves the tab card QR code as a PNG image.
func (h *Handler) TabQR(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerId")
	png, err := h.CustomerService.TabQR(r.Context(), customerID)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("TabQR: %s: %v", customerID, err))
		utils.SendError(w, "Failed to generate tab QR code", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=tab-%s.png", customerID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		h.Logger.Error("API", fmt.Sprintf("TabQR: failed to write image: %v", err))
	}
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.OrderService.ListByCustomer(r.Context(), chi.URLParam(r, "customerId"))
	if err != nil {
		utils.SendError(w, "Failed to list orders", err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Orders retrieved", orders))
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerId")

	var req models.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	o, err := h.OrderService.PlaceOrder(r.Context(), customerID, req.Items)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("PlaceOrder: %s rejected: %v", customerID, err))
		utils.SendError(w, "Failed to place order", err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, utils.SuccessResponse("Order placed", o))
}
