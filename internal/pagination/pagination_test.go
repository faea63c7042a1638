package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID        string
	CreatedAt time.Time
}

func rowKey(r row) Cursor {
	return Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 30, 45, 123456789, time.UTC)
	c := Cursor{CreatedAt: at, ID: "0b44c8e2-73c7-4f0f-9c43-111111111111"}

	parsed, err := Parse(c.String())
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.True(t, parsed.CreatedAt.Equal(at))
	assert.Equal(t, c.ID, parsed.ID)
}

func TestParseEmptyMeansFirstPage(t *testing.T) {
	parsed, err := Parse("")
	require.NoError(t, err)
	assert.Nil(t, parsed)
}

func TestParseMalformed(t *testing.T) {
	for _, raw := range []string{"garbage", "2025-06-01T00:00:00Z_", "notatime_abc"} {
		_, err := Parse(raw)
		assert.Error(t, err, "cursor %q should not parse", raw)
	}
}

func TestShapeFullPage(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]row, 4)
	for i := range rows {
		rows[i] = row{ID: string(rune('a' + i)), CreatedAt: base.Add(-time.Duration(i) * time.Minute)}
	}

	// pageSize 3, 4 rows fetched: has more, cursor from the last kept row
	page := Shape(rows, 3, rowKey)
	require.Len(t, page.Items, 3)
	assert.True(t, page.HasMore)
	assert.Equal(t, rowKey(rows[2]).String(), page.NextCursor)
}

func TestShapeLastPage(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := []row{
		{ID: "a", CreatedAt: base},
		{ID: "b", CreatedAt: base.Add(-time.Minute)},
	}

	page := Shape(rows, 3, rowKey)
	assert.Len(t, page.Items, 2)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)
}

func TestShapeExactlyPageSize(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := []row{
		{ID: "a", CreatedAt: base},
		{ID: "b", CreatedAt: base.Add(-time.Minute)},
		{ID: "c", CreatedAt: base.Add(-2 * time.Minute)},
	}

	// exactly pageSize rows means the overfetch found nothing more
	page := Shape(rows, 3, rowKey)
	assert.Len(t, page.Items, 3)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)
}

func TestShapeEmpty(t *testing.T) {
	page := Shape(nil, 3, rowKey)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
}

func TestCursorOrderStableAcrossEqualTimestamps(t *testing.T) {
	// Two rows created in the same instant page by descending id
	at := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := []row{
		{ID: "b", CreatedAt: at},
		{ID: "a", CreatedAt: at},
		{ID: "z", CreatedAt: at.Add(-time.Hour)},
	}

	page := Shape(rows, 2, rowKey)
	require.True(t, page.HasMore)

	parsed, err := Parse(page.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, "a", parsed.ID)
	assert.True(t, parsed.CreatedAt.Equal(at))
}
