package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"medialist/internal/logging"
	"medialist/internal/mediatypes"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

// UpsertIfAbsent writes item unless a row with the same path already exists.
// It reports whether a new row was inserted; a duplicate path is not an
// error. On insert, item.ID is set and empty Status/AddedAt are defaulted.
func (d *Database) UpsertIfAbsent(ctx context.Context, item *LibraryItem) (bool, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("upsert_if_absent", start, err) }()

	if item == nil || item.Path == "" {
		err = errors.New("library item has no path")
		return false, err
	}
	if item.Status == "" {
		item.Status = StatusPending
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, `
		INSERT INTO library (path, basename, size, modified, added, status)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO NOTHING
	`,
		item.Path,
		item.Basename,
		item.Size,
		item.ModifiedAt.Unix(),
		item.AddedAt.Unix(),
		item.Status,
	)
	if err != nil {
		err = fmt.Errorf("insert %s: %w", item.Path, err)
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		err = fmt.Errorf("rows affected for %s: %w", item.Path, err)
		return false, err
	}
	if rows == 0 {
		return false, nil
	}

	if id, idErr := result.LastInsertId(); idErr == nil {
		item.ID = id
	}
	return true, nil
}

// GetItem retrieves a single catalog item by ID. It returns ErrNotFound when
// no such item exists.
func (d *Database) GetItem(ctx context.Context, id int64) (*LibraryItem, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_item", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(ctx, `
		SELECT id, path, basename, size, modified, added, status
		FROM library WHERE id = ?
	`, id)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		// A missing row is not a query failure.
		err = nil
		return nil, ErrNotFound
	}
	if err != nil {
		err = fmt.Errorf("get item %d: %w", id, err)
		return nil, err
	}
	return item, nil
}

// ListItems returns one page of catalog items.
func (d *Database) ListItems(ctx context.Context, opts ListOptions) (*ListResult, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_items", start, err) }()

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = defaultPageSize
	}
	if opts.PageSize > maxPageSize {
		opts.PageSize = maxPageSize
	}

	where, args := buildListFilter(opts)

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var totalItems int
	if err = d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM library"+where, args...).Scan(&totalItems); err != nil {
		err = fmt.Errorf("count query failed: %w", err)
		return nil, err
	}

	totalPages := int(math.Ceil(float64(totalItems) / float64(opts.PageSize)))
	if totalPages < 1 {
		totalPages = 1
	}
	offset := (opts.Page - 1) * opts.PageSize

	query := fmt.Sprintf(`
		SELECT id, path, basename, size, modified, added, status
		FROM library%s
		ORDER BY %s %s, id ASC
		LIMIT ? OFFSET ?
	`, where, sortColumn(opts.SortField), sortDirection(opts.SortOrder))

	rows, err := d.db.QueryContext(ctx, query, append(args, opts.PageSize, offset)...)
	if err != nil {
		err = fmt.Errorf("select query failed: %w", err)
		return nil, err
	}
	defer rows.Close()

	items := make([]LibraryItem, 0, opts.PageSize)
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			err = fmt.Errorf("scan failed: %w", scanErr)
			return nil, err
		}
		items = append(items, *item)
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("rows error: %w", err)
		return nil, err
	}

	logging.Debug("ListItems: page=%d size=%d total=%d", opts.Page, opts.PageSize, totalItems)

	return &ListResult{
		Items:      items,
		TotalItems: totalItems,
		Page:       opts.Page,
		PageSize:   opts.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Count returns the number of catalogued items.
func (d *Database) Count(ctx context.Context) (int, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("count_items", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int
	err = d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM library").Scan(&n)
	return n, err
}

// CountByStatus returns the number of catalogued items per status.
func (d *Database) CountByStatus(ctx context.Context) (map[string]int, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("count_by_status", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM library GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err = rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	err = rows.Err()
	return counts, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*LibraryItem, error) {
	var item LibraryItem
	var modified, added int64
	if err := row.Scan(&item.ID, &item.Path, &item.Basename, &item.Size, &modified, &added, &item.Status); err != nil {
		return nil, err
	}
	item.ModifiedAt = time.Unix(modified, 0)
	item.AddedAt = time.Unix(added, 0)
	return &item, nil
}

func buildListFilter(opts ListOptions) (string, []any) {
	var clauses []string
	var args []any

	if opts.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, opts.Status)
	}
	if term := strings.TrimSpace(opts.Search); term != "" {
		clauses = append(clauses, `basename LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(term)+"%")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func sortColumn(field mediatypes.SortField) string {
	switch field {
	case mediatypes.SortByBasename:
		return "basename COLLATE NOCASE"
	case mediatypes.SortBySize:
		return "size"
	case mediatypes.SortByModified:
		return "modified"
	case mediatypes.SortByAdded:
		return "added"
	default:
		return "path"
	}
}

func sortDirection(order mediatypes.SortOrder) string {
	if order == mediatypes.SortDesc {
		return "DESC"
	}
	return "ASC"
}
