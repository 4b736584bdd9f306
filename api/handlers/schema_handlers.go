package handlers

import (
	"database/sql"
	"net/http"

	"inventory-system/core/backups"
	"inventory-system/core/schema"
	"inventory-system/core/store"
	"inventory-system/core/utils"
)

// SchemaHandler exposes the startup synchronization report and a live diff
// of the database against the compiled-in descriptor.
type SchemaHandler struct {
	db         *sql.DB
	descriptor schema.Descriptor
	report     *store.SyncReport
	backups    backupLister
	logger     *utils.Logger
}

type backupLister interface {
	List() ([]backups.Artifact, error)
}

func NewSchemaHandler(db *sql.DB, descriptor schema.Descriptor, report *store.SyncReport, backups backupLister, logger *utils.Logger) *SchemaHandler {
	return &SchemaHandler{db: db, descriptor: descriptor, report: report, backups: backups, logger: logger}
}

func (h *SchemaHandler) Report(w http.ResponseWriter, r *http.Request) {
	if h.report == nil {
		http.Error(w, errNotFound, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h.report)
}

func (h *SchemaHandler) Plan(w http.ResponseWriter, r *http.Request) {
	plan, err := store.Plan(r.Context(), h.db, h.descriptor)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"changes": plan.HasChanges(),
		"summary": plan.Describe(),
		"plan":    plan,
	})
}

func (h *SchemaHandler) Backups(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		writeJSON(w, http.StatusOK, map[string]any{"items": []backups.Artifact{}})
		return
	}
	items, err := h.backups.List()
	if err != nil {
		h.logger.Errorf("list backups: %v", err)
		http.Error(w, errServerError, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
