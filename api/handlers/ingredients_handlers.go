package handlers

import (
	"net/http"
	"strings"

	"inventory-system/core/store"
	"inventory-system/core/utils"
)

type IngredientsHandler struct {
	store  store.IngredientsStore
	logger *utils.Logger
}

func NewIngredientsHandler(is store.IngredientsStore, logger *utils.Logger) *IngredientsHandler {
	return &IngredientsHandler{store: is, logger: logger}
}

func (h *IngredientsHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		items []store.Ingredient
		err   error
	)
	if r.URL.Query().Get("flagged") == "1" {
		items, err = h.store.ListFlagged(r.Context())
	} else {
		items, err = h.store.List(r.Context())
	}
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *IngredientsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload store.IngredientInput
	if err := decodeJSON(r, &payload); err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	ing, err := h.store.Create(r.Context(), payload)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	h.logger.Printf("ingredient %d created (%s)", ing.ID, ing.BarcodeID)
	writeJSON(w, http.StatusCreated, ing)
}

func (h *IngredientsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(pathParams(r)["id"])
	if err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	ing, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ing)
}

func (h *IngredientsHandler) GetByBarcode(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(pathParams(r)["code"])
	if code == "" {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	ing, err := h.store.GetByBarcode(r.Context(), code)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ing)
}

func (h *IngredientsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(pathParams(r)["id"])
	if err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	var payload store.IngredientInput
	if err := decodeJSON(r, &payload); err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	ing, err := h.store.Update(r.Context(), id, payload)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ing)
}

func (h *IngredientsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(pathParams(r)["id"])
	if err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	name, err := h.store.Delete(r.Context(), id)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	h.logger.Printf("ingredient %d (%s) deleted", id, name)
	writeOK(w)
}

func (h *IngredientsHandler) Flag(w http.ResponseWriter, r *http.Request) {
	h.setFlagged(w, r, true)
}

func (h *IngredientsHandler) Unflag(w http.ResponseWriter, r *http.Request) {
	h.setFlagged(w, r, false)
}

func (h *IngredientsHandler) setFlagged(w http.ResponseWriter, r *http.Request, flagged bool) {
	id, err := parseID(pathParams(r)["id"])
	if err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	if err := h.store.SetFlagged(r.Context(), id, flagged); err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	writeOK(w)
}
