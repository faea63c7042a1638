// Package pager drives infinite scrolling over a cached view: each
// LoadMore fetches the next page using the view's stored cursor, with
// an in-flight guard so overlapping triggers fetch nothing twice.
package pager

import (
	"sync/atomic"

	"github.com/quillhub/quillhub/client/api"
	"github.com/quillhub/quillhub/client/cache"
)

// FetchFunc fetches one page from the server
type FetchFunc[T any] func(cursor string, pageSize int) (*api.Page[T], error)

// Pager serially loads pages of one view into its store
type Pager[T any] struct {
	store    *cache.Store[T]
	view     string
	pageSize int
	fetch    FetchFunc[T]
	inFlight atomic.Bool
}

// New creates a pager for a view
func New[T any](store *cache.Store[T], view string, pageSize int, fetch FetchFunc[T]) *Pager[T] {
	return &Pager[T]{
		store:    store,
		view:     view,
		pageSize: pageSize,
		fetch:    fetch,
	}
}

// LoadMore fetches the next page into the store. It returns false
// without fetching when a load is already in flight or the view is
// exhausted.
func (p *Pager[T]) LoadMore() (bool, error) {
	cursor, hasMore := p.store.NextCursor(p.view)
	if !hasMore {
		return false, nil
	}
	if !p.inFlight.CompareAndSwap(false, true) {
		return false, nil
	}
	defer p.inFlight.Store(false)

	page, err := p.fetch(cursor, p.pageSize)
	if err != nil {
		return false, err
	}

	p.store.AppendPage(p.view, page.Items, page.NextCursor, page.HasMore)
	return true, nil
}

// Reload drops the view and fetches its first page again
func (p *Pager[T]) Reload() error {
	if !p.inFlight.CompareAndSwap(false, true) {
		return nil
	}
	defer p.inFlight.Store(false)

	page, err := p.fetch("", p.pageSize)
	if err != nil {
		return err
	}

	p.store.Reset(p.view)
	p.store.AppendPage(p.view, page.Items, page.NextCursor, page.HasMore)
	return nil
}

// Items returns the view's deduplicated items in page order
func (p *Pager[T]) Items() []T {
	return p.store.Flatten(p.view)
}

// HasMore reports whether more pages can be loaded
func (p *Pager[T]) HasMore() bool {
	_, hasMore := p.store.NextCursor(p.view)
	return hasMore
}
