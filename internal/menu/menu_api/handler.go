package menu_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ms-barpos/internal/logger"
	"ms-barpos/internal/menu"
	"ms-barpos/internal/models"
	"ms-barpos/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	MenuService *menu.MenuService
	Logger      *logger.Logger
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/menu", func(r chi.Router) {
		r.Get("/", h.ListItems)
		r.Post("/", h.CreateItem)
		r.Post("/seed", h.SeedDefaults)
		r.Post("/import", h.ImportItems)
		r.Get("/{itemId}", h.GetItem)
		r.Put("/{itemId}", h.UpdateItem)
		r.Delete("/{itemId}", h.DeleteItem)
		r.Post("/{itemId}/archive", h.ArchiveItem)
	})
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("includeArchived") == "true"
	items, err := h.MenuService.List(r.Context(), includeArchived)
	if err != nil {
		h.Logger.Error("MENU", fmt.Sprintf("Failed to list menu: %v", err))
		utils.SendError(w, "Failed to list menu", err)
		return
	}
	if items == nil {
		items = []models.MenuItem{}
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Menu retrieved", items))
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.MenuService.Get(r.Context(), chi.URLParam(r, "itemId"))
	if err != nil {
		utils.SendError(w, "Menu item not available", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Menu item retrieved", item))
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req models.MenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	item, err := h.MenuService.Create(r.Context(), req)
	if err != nil {
		utils.SendError(w, "Failed to create menu item", err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, utils.SuccessResponse("Menu item created", item))
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var patch models.MenuItemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.SendJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	item, err := h.MenuService.Update(r.Context(), chi.URLParam(r, "itemId"), patch)
	if err != nil {
		utils.SendError(w, "Failed to update menu item", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Menu item updated", item))
}

// ArchiveItem sets the flag from {"archived": bool}, or toggles it when the body is empty.
func (h *Handler) ArchiveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "itemId")
	var body struct {
		Archived *bool `json:"archived"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.SendJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
			return
		}
	}

	var item *models.MenuItem
	var err error
	if body.Archived != nil {
		item, err = h.MenuService.SetArchived(r.Context(), id, *body.Archived)
	} else {
		item, err = h.MenuService.ToggleArchive(r.Context(), id)
	}
	if err != nil {
		utils.SendError(w, "Failed to archive menu item", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Menu item archive flag updated", item))
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.MenuService.Delete(r.Context(), chi.URLParam(r, "itemId")); err != nil {
		utils.SendError(w, "Failed to delete menu item", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Menu item deleted", nil))
}

func (h *Handler) SeedDefaults(w http.ResponseWriter, r *http.Request) {
	n, err := h.MenuService.SeedDefaults(r.Context())
	if err != nil {
		h.Logger.Error("MENU", fmt.Sprintf("Failed to seed menu: %v", err))
		utils.SendError(w, "Failed to seed default menu", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Default menu seeded", map[string]int{"added": n}))
}

// ImportItems adds one item per line of {"names": "..."}; existing ids are skipped.
func (h *Handler) ImportItems(w http.ResponseWriter, r *http.Request) {
	var req models.MenuImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	items, err := h.MenuService.Import(r.Context(), req)
	if err != nil {
		utils.SendError(w, "Failed to import menu items", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("Menu items imported", items))
}
