package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"medialist/internal/database"
	"medialist/internal/logging"
	"medialist/internal/mediatypes"

	"github.com/gorilla/mux"
)

// StatsResponse summarizes the catalog.
type StatsResponse struct {
	TotalItems int                  `json:"totalItems"`
	ByStatus   map[string]int       `json:"byStatus"`
	Roots      []database.ScanState `json:"roots"`
	Scanning   bool                 `json:"scanning"`
}

// ItemResponse is a catalog item with the MIME type implied by its extension.
type ItemResponse struct {
	database.LibraryItem
	MimeType string `json:"mimeType"`
}

// ListLibrary returns one page of catalogued items.
//
// Query parameters: sort (path|basename|size|modified|added), order
// (asc|desc), status, search, page, pageSize.
func (h *Handlers) ListLibrary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := database.ListOptions{
		SortField: mediatypes.ParseSortField(q.Get("sort")),
		SortOrder: mediatypes.ParseSortOrder(q.Get("order")),
		Status:    q.Get("status"),
		Search:    q.Get("search"),
		Page:      1,
	}

	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		opts.Page = page
	}
	if pageSize, err := strconv.Atoi(q.Get("pageSize")); err == nil && pageSize > 0 {
		opts.PageSize = pageSize
	}

	result, err := h.db.ListItems(r.Context(), opts)
	if err != nil {
		logging.Error("failed to list library: %v", err)
		writeJSONError(w, "Failed to list library", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetLibraryItem returns one catalogued item by id.
func (h *Handlers) GetLibraryItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id < 1 {
		writeJSONError(w, "Invalid item id", http.StatusBadRequest)
		return
	}

	item, err := h.db.GetItem(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		writeJSONError(w, "Item not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logging.Error("failed to get library item %d: %v", id, err)
		writeJSONError(w, "Failed to get item", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, ItemResponse{LibraryItem: *item, MimeType: mediatypes.GetMimeType(item.Basename)})
}

// GetStats returns catalog counts and per-root scan history.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	byStatus, err := h.db.CountByStatus(ctx)
	if err != nil {
		logging.Error("failed to count catalog by status: %v", err)
		writeJSONError(w, "Failed to get stats", http.StatusInternalServerError)
		return
	}

	roots, err := h.db.ScanStates(ctx)
	if err != nil {
		logging.Error("failed to load scan states: %v", err)
		writeJSONError(w, "Failed to get stats", http.StatusInternalServerError)
		return
	}
	if roots == nil {
		roots = []database.ScanState{}
	}

	response := StatsResponse{
		ByStatus: byStatus,
		Roots:    roots,
		Scanning: h.indexer.IsScanning(),
	}
	for _, n := range byStatus {
		response.TotalItems += n
	}

	respondJSON(w, http.StatusOK, response)
}
