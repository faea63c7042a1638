// Package pagination implements cursor-based paging over reverse
// chronological listings. A cursor encodes the (createdAt, id) pair of
// the last item of the previous page; paging fetches one row past the
// page size to learn whether more rows remain.
package pagination

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Cursor identifies a position in a listing ordered by
// (created_at DESC, id DESC). The id component breaks ties between rows
// created in the same instant, so no row is skipped or repeated.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// String encodes the cursor for the wire. UUIDs contain no underscore,
// so the separator is unambiguous.
func (c Cursor) String() string {
	return c.CreatedAt.UTC().Format(time.RFC3339Nano) + "_" + c.ID
}

// Parse decodes a wire cursor. An empty string means the first page and
// returns a nil cursor.
func Parse(raw string) (*Cursor, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.SplitN(raw, "_", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, fmt.Errorf("malformed cursor %q", raw)
	}
	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, fmt.Errorf("malformed cursor timestamp: %w", err)
	}
	return &Cursor{CreatedAt: ts, ID: parts[1]}, nil
}

// Page is one page of a listing. NextCursor is empty when HasMore is false.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

// Scope returns a gorm scope applying the cursor predicate and ordering
// for the given table. Pass the result of Parse; nil means first page.
func Scope(cursor *Cursor, table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if cursor != nil {
			db = db.Where(
				fmt.Sprintf("%s.created_at < ? OR (%s.created_at = ? AND %s.id < ?)", table, table, table),
				cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
			)
		}
		return db.Order(fmt.Sprintf("%s.created_at DESC, %s.id DESC", table, table))
	}
}

// Shape turns pageSize+1 fetched rows into a page. key extracts the
// cursor position of a row; the next cursor is taken from the last KEPT
// row, so callers may reorder the kept items afterwards without
// breaking the paging sequence.
func Shape[T any](rows []T, pageSize int, key func(T) Cursor) Page[T] {
	page := Page[T]{Items: rows}
	if len(rows) > pageSize {
		page.Items = rows[:pageSize]
		page.HasMore = true
		page.NextCursor = key(page.Items[len(page.Items)-1]).String()
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page
}
