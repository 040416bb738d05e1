package filter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestFilterConfig_Validate(t *testing.T) {
	t.Run("HeadAndTailMutuallyExclusive", func(t *testing.T) {
		cfg := FilterConfig{Head: 5, Tail: 5}
		require.Error(t, cfg.Validate())
	})

	t.Run("CreatedAfterMustPrecedeBefore", func(t *testing.T) {
		after := mustTime("2026-06-01T00:00:00Z")
		before := mustTime("2026-01-01T00:00:00Z")
		cfg := FilterConfig{CreatedAfter: &after, CreatedBefore: &before}
		require.Error(t, cfg.Validate())
	})

	t.Run("MinSizeMustNotExceedMaxSize", func(t *testing.T) {
		min, max := uint64(100), uint64(10)
		cfg := FilterConfig{MinSize: &min, MaxSize: &max}
		require.Error(t, cfg.Validate())
	})

	t.Run("TailDefaultsSortToModifiedDesc", func(t *testing.T) {
		cfg := FilterConfig{Tail: 3}
		require.NoError(t, cfg.Validate())
		require.Len(t, cfg.Sort, 1)
		assert.Equal(t, SortByModified, cfg.Sort[0].Field)
		assert.Equal(t, Desc, cfg.Sort[0].Direction)
	})
}

func TestApply_PatternFilter(t *testing.T) {
	items := []EnhancedObjectInfo{
		{Key: "app-1.log"},
		{Key: "web-1.log"},
		{Key: "app-2.log"},
	}
	cfg := FilterConfig{Pattern: "app-*"}
	require.NoError(t, cfg.Validate())

	got, err := Apply(context.Background(), FromSlice(items), cfg)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "app-1.log", got[0].Key)
	assert.Equal(t, "app-2.log", got[1].Key)
}

func TestApply_SizeFilter(t *testing.T) {
	items := []EnhancedObjectInfo{
		{Key: "small", Size: 10},
		{Key: "medium", Size: 500},
		{Key: "large", Size: 5000},
	}
	min := uint64(100)
	max := uint64(1000)
	cfg := FilterConfig{MinSize: &min, MaxSize: &max}
	require.NoError(t, cfg.Validate())

	got, err := Apply(context.Background(), FromSlice(items), cfg)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "medium", got[0].Key)
}

// TestApply_MultiLevelSort mirrors the operation's multi-level sort example:
// objects {x:10MB@T, y:5MB@T, z:10MB@T-1}, sorted modified:desc,size:asc,
// must yield order y, x, z.
func TestApply_MultiLevelSort(t *testing.T) {
	tMinus1 := mustTime("2026-01-01T00:00:00Z")
	tNow := mustTime("2026-01-02T00:00:00Z")

	items := []EnhancedObjectInfo{
		{Key: "x", Size: 10 * 1000 * 1000, Modified: tNow},
		{Key: "y", Size: 5 * 1000 * 1000, Modified: tNow},
		{Key: "z", Size: 10 * 1000 * 1000, Modified: tMinus1},
	}
	cfg := FilterConfig{
		Sort: SortConfig{
			{Field: SortByModified, Direction: Desc},
			{Field: SortBySize, Direction: Asc},
		},
	}
	require.NoError(t, cfg.Validate())

	got, err := Apply(context.Background(), FromSlice(items), cfg)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"y", "x", "z"}, []string{got[0].Key, got[1].Key, got[2].Key})
}

// TestApply_HeadEarlyTermination verifies that Head stops consuming the
// source once N items have passed the filters, without reading the tail
// of a much larger listing.
func TestApply_HeadEarlyTermination(t *testing.T) {
	var visited int
	src := func(yield func(EnhancedObjectInfo, error) bool) {
		for i := 0; i < 100_000; i++ {
			visited++
			if !yield(EnhancedObjectInfo{Key: "k"}, nil) {
				return
			}
		}
	}

	cfg := FilterConfig{Head: 50}
	require.NoError(t, cfg.Validate())

	got, err := Apply(context.Background(), src, cfg)
	require.NoError(t, err)
	assert.Len(t, got, 50)
	assert.LessOrEqual(t, visited, 50, "head must not consume more than N items when no sort is requested")
}

func TestApply_TailBoundedBuffer(t *testing.T) {
	items := []EnhancedObjectInfo{
		{Key: "oldest", Modified: mustTime("2026-01-01T00:00:00Z")},
		{Key: "middle", Modified: mustTime("2026-02-01T00:00:00Z")},
		{Key: "newest", Modified: mustTime("2026-03-01T00:00:00Z")},
	}
	cfg := FilterConfig{Tail: 2}
	require.NoError(t, cfg.Validate())

	got, err := Apply(context.Background(), FromSlice(items), cfg)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "newest", got[0].Key)
	assert.Equal(t, "middle", got[1].Key)
}

func TestApply_MaxResultsAppliedAfterSortAndLimit(t *testing.T) {
	items := []EnhancedObjectInfo{
		{Key: "a", Size: 1},
		{Key: "b", Size: 2},
		{Key: "c", Size: 3},
	}
	cfg := FilterConfig{
		Sort:       SortConfig{{Field: SortBySize, Direction: Asc}},
		MaxResults: 2,
	}
	require.NoError(t, cfg.Validate())

	got, err := Apply(context.Background(), FromSlice(items), cfg)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"a", "b"}, []string{got[0].Key, got[1].Key})
}

func TestApply_Determinism(t *testing.T) {
	items := []EnhancedObjectInfo{
		{Key: "a", Size: 5},
		{Key: "b", Size: 5},
		{Key: "c", Size: 1},
	}
	cfg := FilterConfig{Sort: SortConfig{{Field: SortBySize, Direction: Asc}}}
	require.NoError(t, cfg.Validate())

	got1, err := Apply(context.Background(), FromSlice(items), cfg)
	require.NoError(t, err)
	got2, err := Apply(context.Background(), FromSlice(items), cfg)
	require.NoError(t, err)
	assert.Equal(t, got1, got2)

	// Ties at the only sort level preserve original order: "a" before "b".
	require.Len(t, got1, 3)
	assert.Equal(t, "c", got1[0].Key)
	assert.Equal(t, "a", got1[1].Key)
	assert.Equal(t, "b", got1[2].Key)
}
