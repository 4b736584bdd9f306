package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"inventory-system/core/store"
	"inventory-system/core/utils"
)

const (
	errBadRequest   = "bad request"
	errNotFound     = "not found"
	errConflict     = "conflict"
	errServerError  = "server error"
	maxPayloadBytes = 1 << 20
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, out interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxPayloadBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func parseID(val string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func parseIntDefault(val string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return def
	}
	return v
}

// writeStoreError maps store sentinel errors to status codes. Validation
// messages are returned to the caller; anything else is logged.
func writeStoreError(w http.ResponseWriter, logger *utils.Logger, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, errNotFound, http.StatusNotFound)
	case errors.Is(err, store.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrConflict):
		http.Error(w, errConflict, http.StatusConflict)
	default:
		logger.Errorf("request failed: %v", err)
		http.Error(w, errServerError, http.StatusInternalServerError)
	}
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
