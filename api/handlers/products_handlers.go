package handlers

import (
	"net/http"
	"strings"

	"inventory-system/core/store"
	"inventory-system/core/utils"
)

type ProductsHandler struct {
	store  store.ProductsStore
	groups store.GroupsStore
	events store.EventsStore
	logger *utils.Logger
}

func NewProductsHandler(ps store.ProductsStore, gs store.GroupsStore, es store.EventsStore, logger *utils.Logger) *ProductsHandler {
	return &ProductsHandler{store: ps, groups: gs, events: es, logger: logger}
}

type amountPayload struct {
	Delta  *int64 `json:"delta"`
	Amount *int64 `json:"amount"`
}

// List returns all products, or the ones containing a matching ingredient
// when ingredient= (name substring) or barcode= (prefix) is given.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		items []store.Product
		err   error
	)
	switch {
	case strings.TrimSpace(q.Get("barcode")) != "":
		items, err = h.store.SearchByIngredientBarcode(r.Context(), q.Get("barcode"))
	case strings.TrimSpace(q.Get("ingredient")) != "":
		items, err = h.store.SearchByIngredientName(r.Context(), q.Get("ingredient"))
	default:
		items, err = h.store.List(r.Context())
	}
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload store.ProductInput
	if err := decodeJSON(r, &payload); err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	p, err := h.store.Create(r.Context(), payload)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	h.logger.Printf("product %d created (%s, %s)", p.ID, p.BarcodeID, p.BatchNumber)
	writeJSON(w, http.StatusCreated, p)
}

// Get returns the product with its ingredient lines, flag state and group
// parameter values.
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(pathParams(r)["id"])
	if err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	p, err := h.store.Get(ctx, id)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	lines, err := h.store.Ingredients(ctx, id)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	flagged, err := h.store.HasFlaggedIngredients(ctx, id)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	params, err := h.groups.ParameterValues(ctx, id)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"product":          p,
		"ingredients":      lines,
		"has_flagged":      flagged,
		"parameter_values": params,
	})
}

func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(pathParams(r)["id"])
	if err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	var payload store.ProductInput
	if err := decodeJSON(r, &payload); err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	p, err := h.store.Update(r.Context(), id, payload)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	h.logger.Printf("product %d (%s) deleted", id, name)
	writeOK(w)
}

// UpdateAmount applies {"delta": n} or sets {"amount": n}.
func (h *ProductsHandler) UpdateAmount(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(pathParams(r)["id"])
	if err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	var payload amountPayload
	if err := decodeJSON(r, &payload); err != nil || (payload.Delta == nil) == (payload.Amount == nil) {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	var amount int64
	if payload.Delta != nil {
		amount, err = h.store.AdjustAmount(r.Context(), id, *payload.Delta)
	} else {
		amount, err = h.store.SetAmount(r.Context(), id, *payload.Amount)
	}
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"amount": amount})
}

func (h *ProductsHandler) Events(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(pathParams(r)["id"])
	if err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	items, err := h.events.ListForProduct(r.Context(), id, parseIntDefault(r.URL.Query().Get("limit"), 0))
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *ProductsHandler) RecentEvents(w http.ResponseWriter, r *http.Request) {
	items, err := h.events.ListRecent(r.Context(), parseIntDefault(r.URL.Query().Get("limit"), 0))
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
