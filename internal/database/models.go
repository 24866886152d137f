package database

import (
	"time"

	"medialist/internal/mediatypes"
)

// StatusPending is the status of a freshly catalogued item.
const StatusPending = "pending"

// LibraryItem is one catalogued media file. Path is the canonical absolute
// path and is unique across the catalog.
type LibraryItem struct {
	ID         int64     `json:"id"`
	Path       string    `json:"path"`
	Basename   string    `json:"basename"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
	AddedAt    time.Time `json:"addedAt"`
	Status     string    `json:"status"`
}

// ScanState records the outcome of the most recent scan of one library root.
type ScanState struct {
	Root       string    `json:"root"`
	LastScan   time.Time `json:"lastScan"`
	FilesFound int       `json:"filesFound"`
	ErrorCount int       `json:"errorCount"`
}

// ListOptions controls catalog listing.
type ListOptions struct {
	SortField mediatypes.SortField
	SortOrder mediatypes.SortOrder
	Status    string
	Search    string
	Page      int
	PageSize  int
}

// ListResult is one page of catalog items.
type ListResult struct {
	Items      []LibraryItem `json:"items"`
	TotalItems int           `json:"totalItems"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalPages int           `json:"totalPages"`
}
