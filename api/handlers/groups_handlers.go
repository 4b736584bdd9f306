package handlers

import (
	"net/http"

	"inventory-system/core/store"
	"inventory-system/core/utils"
)

type GroupsHandler struct {
	store  store.GroupsStore
	logger *utils.Logger
}

func NewGroupsHandler(gs store.GroupsStore, logger *utils.Logger) *GroupsHandler {
	return &GroupsHandler{store: gs, logger: logger}
}

type groupPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type parameterPayload struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type parameterValuePayload struct {
	Value string `json:"value"`
}

func (h *GroupsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List(r.Context())
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *GroupsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload groupPayload
	if err := decodeJSON(r, &payload); err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	g, err := h.store.Create(r.Context(), payload.Name, payload.Description)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *GroupsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(pathParams(r)["id"])
	if err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	g, err := h.store.Get(ctx, id)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	products, err := h.store.Products(ctx, id)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	params, err := h.store.Parameters(ctx, id)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"group": g, "products": products, "parameters": params})
}

func (h *GroupsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(pathParams(r)["id"])
	if err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	var payload groupPayload
	if err := decodeJSON(r, &payload); err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	g, err := h.store.Update(r.Context(), id, payload.Name, payload.Description)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *GroupsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(pathParams(r)["id"])
	if err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	writeOK(w)
}

func (h *GroupsHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	groupID, productID, ok := groupAndProduct(w, r)
	if !ok {
		return
	}
	if err := h.store.AddProduct(r.Context(), groupID, productID); err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	writeOK(w)
}

func (h *GroupsHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	groupID, productID, ok := groupAndProduct(w, r)
	if !ok {
		return
	}
	if err := h.store.RemoveProduct(r.Context(), groupID, productID); err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	writeOK(w)
}

func (h *GroupsHandler) AddParameter(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(pathParams(r)["id"])
	if err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	var payload parameterPayload
	if err := decodeJSON(r, &payload); err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	p, err := h.store.AddParameter(r.Context(), id, payload.Name, payload.Unit)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *GroupsHandler) DeleteParameter(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(pathParams(r)["param_id"])
	if err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	if err := h.store.DeleteParameter(r.Context(), id); err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	writeOK(w)
}

// SetParameterValue handles PUT /products/{id}/parameters/{param_id}.
func (h *GroupsHandler) SetParameterValue(w http.ResponseWriter, r *http.Request) {
	params := pathParams(r)
	productID, err := parseID(params["id"])
	if err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	parameterID, err := parseID(params["param_id"])
	if err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	var payload parameterValuePayload
	if err := decodeJSON(r, &payload); err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return
	}
	if err := h.store.SetParameterValue(r.Context(), productID, parameterID, payload.Value); err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	writeOK(w)
}

func groupAndProduct(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	params := pathParams(r)
	groupID, err := parseID(params["id"])
	if err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return 0, 0, false
	}
	productID, err := parseID(params["product_id"])
	if err != nil {
		http.Error(w, errBadRequest, http.StatusBadRequest)
		return 0, 0, false
	}
	return groupID, productID, true
}
