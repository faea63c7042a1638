package pager

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhub/quillhub/client/api"
	"github.com/quillhub/quillhub/client/cache"
)

func newPostStore() *cache.Store[api.Post] {
	return cache.NewStore(func(p api.Post) string { return p.ID })
}

func TestLoadMoreAdvancesCursor(t *testing.T) {
	store := newPostStore()

	var cursors []string
	fetch := func(cursor string, pageSize int) (*api.Page[api.Post], error) {
		cursors = append(cursors, cursor)
		switch cursor {
		case "":
			return &api.Page[api.Post]{
				Items:      []api.Post{{ID: "a"}, {ID: "b"}},
				NextCursor: "c1",
				HasMore:    true,
			}, nil
		case "c1":
			return &api.Page[api.Post]{
				Items:   []api.Post{{ID: "c"}},
				HasMore: false,
			}, nil
		}
		t.Fatalf("unexpected cursor %q", cursor)
		return nil, nil
	}

	p := New(store, "feed", 2, fetch)

	loaded, err := p.LoadMore()
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.True(t, p.HasMore())

	loaded, err = p.LoadMore()
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.False(t, p.HasMore())

	// Exhausted views fetch nothing
	loaded, err = p.LoadMore()
	require.NoError(t, err)
	assert.False(t, loaded)

	assert.Equal(t, []string{"", "c1"}, cursors)
	assert.Len(t, p.Items(), 3)
}

func TestConcurrentLoadsFetchOnce(t *testing.T) {
	store := newPostStore()

	fetches := 0
	release := make(chan struct{})
	fetch := func(cursor string, pageSize int) (*api.Page[api.Post], error) {
		fetches++
		<-release
		return &api.Page[api.Post]{Items: []api.Post{{ID: "a"}}, HasMore: false}, nil
	}

	p := New(store, "feed", 10, fetch)

	var wg sync.WaitGroup
	results := make([]bool, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			loaded, err := p.LoadMore()
			assert.NoError(t, err)
			results[i] = loaded
		}(i)
	}

	close(release)
	wg.Wait()

	assert.Equal(t, 1, fetches)
	assert.NotEqual(t, results[0], results[1])
}

func TestReloadResetsView(t *testing.T) {
	store := newPostStore()

	pages := [][]api.Post{
		{{ID: "old1"}, {ID: "old2"}},
		{{ID: "new1"}},
	}
	call := 0
	fetch := func(cursor string, pageSize int) (*api.Page[api.Post], error) {
		page := &api.Page[api.Post]{Items: pages[call], HasMore: false}
		call++
		return page, nil
	}

	p := New(store, "feed", 10, fetch)
	_, err := p.LoadMore()
	require.NoError(t, err)
	require.Len(t, p.Items(), 2)

	require.NoError(t, p.Reload())
	items := p.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "new1", items[0].ID)
}
