// Package cache keeps cursor-paginated views of server data and applies
// mutation results to every view that holds a copy of the item. Views
// are only ever patched from server response payloads; the client never
// recomputes a counter locally.
//
// A Store is confined to a single goroutine, the UI loop that owns it.
package cache

// Page is one fetched window of a view. Cursor is the nextCursor the
// server returned with this window.
type Page[T any] struct {
	Items  []T
	Cursor string
}

// View is an ordered list of pages plus whether the screen showing it
// is currently mounted.
type View[T any] struct {
	Pages   []Page[T]
	HasMore bool
	mounted bool
}

// Store holds the views of one item type, indexed by view key.
type Store[T any] struct {
	key   func(T) string
	views map[string]*View[T]
}

// NewStore creates a store. key extracts an item's identity, used to
// find the same item across pages and views.
func NewStore[T any](key func(T) string) *Store[T] {
	return &Store[T]{
		key:   key,
		views: make(map[string]*View[T]),
	}
}

func (s *Store[T]) view(key string) *View[T] {
	v, ok := s.views[key]
	if !ok {
		v = &View[T]{}
		s.views[key] = v
	}
	return v
}

// Has reports whether the view holds any pages
func (s *Store[T]) Has(viewKey string) bool {
	v, ok := s.views[viewKey]
	return ok && len(v.Pages) > 0
}

// AppendPage adds a fetched page to the end of a view
func (s *Store[T]) AppendPage(viewKey string, items []T, nextCursor string, hasMore bool) {
	v := s.view(viewKey)
	v.Pages = append(v.Pages, Page[T]{Items: items, Cursor: nextCursor})
	v.HasMore = hasMore
}

// Reset drops a view's pages, keeping its mount state
func (s *Store[T]) Reset(viewKey string) {
	if v, ok := s.views[viewKey]; ok {
		v.Pages = nil
		v.HasMore = false
	}
}

// NextCursor returns the cursor for fetching the view's next page and
// whether more pages exist. An unfetched view starts from the empty
// cursor with more available.
func (s *Store[T]) NextCursor(viewKey string) (string, bool) {
	v, ok := s.views[viewKey]
	if !ok || len(v.Pages) == 0 {
		return "", true
	}
	return v.Pages[len(v.Pages)-1].Cursor, v.HasMore
}

// SetMounted marks whether the screen backed by the view is visible
func (s *Store[T]) SetMounted(viewKey string, mounted bool) {
	s.view(viewKey).mounted = mounted
}

// Mounted reports whether the view's screen is visible
func (s *Store[T]) Mounted(viewKey string) bool {
	v, ok := s.views[viewKey]
	return ok && v.mounted
}

// UpdateItem applies a pure transform to the item wherever it appears,
// across every page of every view. Views that do not hold the item are
// untouched.
func (s *Store[T]) UpdateItem(id string, fn func(T) T) {
	for _, v := range s.views {
		for pi := range v.Pages {
			for ii, item := range v.Pages[pi].Items {
				if s.key(item) == id {
					v.Pages[pi].Items[ii] = fn(item)
				}
			}
		}
	}
}

// UpdateItemIn is UpdateItem scoped to a single view
func (s *Store[T]) UpdateItemIn(viewKey, id string, fn func(T) T) {
	v, ok := s.views[viewKey]
	if !ok {
		return
	}
	for pi := range v.Pages {
		for ii, item := range v.Pages[pi].Items {
			if s.key(item) == id {
				v.Pages[pi].Items[ii] = fn(item)
			}
		}
	}
}

// AddItemFront inserts an item at the head of a view's first page.
// No-op for views that were never fetched; they will pick the item up
// on their next load.
func (s *Store[T]) AddItemFront(viewKey string, item T) {
	v, ok := s.views[viewKey]
	if !ok || len(v.Pages) == 0 {
		return
	}
	v.Pages[0].Items = append([]T{item}, v.Pages[0].Items...)
}

// AddItemBack appends an item to a view's last page. Used when new
// items belong at the bottom, like fresh replies under a thread.
func (s *Store[T]) AddItemBack(viewKey string, item T) {
	v, ok := s.views[viewKey]
	if !ok || len(v.Pages) == 0 {
		return
	}
	last := len(v.Pages) - 1
	v.Pages[last].Items = append(v.Pages[last].Items, item)
}

// RemoveItem drops the item from every page of every view
func (s *Store[T]) RemoveItem(id string) {
	for _, v := range s.views {
		for pi := range v.Pages {
			items := v.Pages[pi].Items
			kept := items[:0]
			for _, item := range items {
				if s.key(item) != id {
					kept = append(kept, item)
				}
			}
			v.Pages[pi].Items = kept
		}
	}
}

// Flatten returns the view's items in page order, dropping duplicate
// identities. An item can appear twice when a mutation moved it across
// a page boundary between fetches; the first occurrence wins.
func (s *Store[T]) Flatten(viewKey string) []T {
	v, ok := s.views[viewKey]
	if !ok {
		return nil
	}

	seen := make(map[string]struct{})
	var out []T
	for _, page := range v.Pages {
		for _, item := range page.Items {
			id := s.key(item)
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}
