package handlers

import (
	"context"

	"medialist/internal/database"
	"medialist/internal/indexer"
)

// Catalog is the read side of the catalog served over HTTP.
type Catalog interface {
	ListItems(ctx context.Context, opts database.ListOptions) (*database.ListResult, error)
	GetItem(ctx context.Context, id int64) (*database.LibraryItem, error)
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
	ScanStates(ctx context.Context) ([]database.ScanState, error)
}

// Scanner is the part of the indexer the handlers drive.
type Scanner interface {
	TriggerScan() error
	IsScanning() bool
	IsReady() bool
	Progress() indexer.ScanProgress
	GetHealthStatus() indexer.HealthStatus
}

type Handlers struct {
	db      Catalog
	indexer Scanner
}

func New(db Catalog, idx Scanner) *Handlers {
	return &Handlers{
		db:      db,
		indexer: idx,
	}
}
