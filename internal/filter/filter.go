package filter

import (
	"container/heap"
	"context"
	"iter"
	"sort"

	"github.com/marmos91/s3cli/internal/pattern"
)

// Source streams EnhancedObjectInfo from a listing, one page at a time,
// stopping early if the consumer's yield returns false. The second value
// of each pair is a non-nil error that terminates iteration.
type Source = iter.Seq2[EnhancedObjectInfo, error]

// FromSlice adapts an already-materialized slice (e.g. a test fixture, or
// a fully-paginated listing) into a Source.
func FromSlice(items []EnhancedObjectInfo) Source {
	return func(yield func(EnhancedObjectInfo, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Apply runs cfg's pattern, size, and date filters over src, then sorts and
// limits the result per cfg.Sort/Head/Tail/MaxResults. cfg must have been
// validated (see FilterConfig.Validate) before calling Apply.
func Apply(ctx context.Context, src Source, cfg FilterConfig) ([]EnhancedObjectInfo, error) {
	var matcher pattern.Matcher
	if cfg.Pattern != "" {
		m, err := pattern.Compile(cfg.Pattern)
		if err != nil {
			return nil, err
		}
		matcher = m
	}

	switch {
	case len(cfg.Sort) == 0 && cfg.Head > 0:
		return applyHeadNoSort(ctx, src, cfg, matcher)
	case len(cfg.Sort) == 0:
		return applyCollectNoSort(ctx, src, cfg, matcher)
	case cfg.Tail > 0 && cfg.tailSortDefaulted && len(cfg.Sort) == 1:
		return applyBoundedTail(ctx, src, cfg, matcher)
	default:
		return applySorted(ctx, src, cfg, matcher)
	}
}

func passesFilters(cfg FilterConfig, matcher pattern.Matcher, item EnhancedObjectInfo) bool {
	// Stage 1: pattern match (string comparison) — cheapest, runs first.
	if matcher != nil && !matcher.Match(item.Key) {
		return false
	}

	// Stage 2: size filter (integer comparison).
	if cfg.MinSize != nil && item.Size < *cfg.MinSize {
		return false
	}
	if cfg.MaxSize != nil && item.Size > *cfg.MaxSize {
		return false
	}

	// Stage 3: date filter (timestamp comparison).
	if cfg.CreatedAfter != nil && item.Created.Before(*cfg.CreatedAfter) {
		return false
	}
	if cfg.CreatedBefore != nil && item.Created.After(*cfg.CreatedBefore) {
		return false
	}
	if cfg.ModifiedAfter != nil && item.Modified.Before(*cfg.ModifiedAfter) {
		return false
	}
	if cfg.ModifiedBefore != nil && item.Modified.After(*cfg.ModifiedBefore) {
		return false
	}

	return true
}

// applyHeadNoSort stops consuming src as soon as Head items have passed
// stages 1-3, the early-termination optimization for "head" with no sort.
func applyHeadNoSort(ctx context.Context, src Source, cfg FilterConfig, matcher pattern.Matcher) ([]EnhancedObjectInfo, error) {
	result := make([]EnhancedObjectInfo, 0, cfg.Head)
	var srcErr error

	for item, err := range src {
		if err != nil {
			srcErr = err
			break
		}
		if ctx.Err() != nil {
			srcErr = ctx.Err()
			break
		}
		if !passesFilters(cfg, matcher, item) {
			continue
		}
		result = append(result, item)
		if len(result) >= cfg.Head {
			break
		}
	}
	if srcErr != nil {
		return nil, srcErr
	}

	return applyMaxResults(result, cfg), nil
}

// applyCollectNoSort consumes the entire source, preserving insertion
// order, then applies max_results as a final cap.
func applyCollectNoSort(ctx context.Context, src Source, cfg FilterConfig, matcher pattern.Matcher) ([]EnhancedObjectInfo, error) {
	var result []EnhancedObjectInfo
	var srcErr error

	for item, err := range src {
		if err != nil {
			srcErr = err
			break
		}
		if ctx.Err() != nil {
			srcErr = ctx.Err()
			break
		}
		if !passesFilters(cfg, matcher, item) {
			continue
		}
		result = append(result, item)
	}
	if srcErr != nil {
		return nil, srcErr
	}

	return applyMaxResults(result, cfg), nil
}

// applySorted collects every matching item (unavoidable once sort is
// requested), performs a stable multi-level sort, then truncates to
// head/tail and finally max_results.
func applySorted(ctx context.Context, src Source, cfg FilterConfig, matcher pattern.Matcher) ([]EnhancedObjectInfo, error) {
	var result []EnhancedObjectInfo
	var srcErr error

	for item, err := range src {
		if err != nil {
			srcErr = err
			break
		}
		if ctx.Err() != nil {
			srcErr = ctx.Err()
			break
		}
		if !passesFilters(cfg, matcher, item) {
			continue
		}
		result = append(result, item)
	}
	if srcErr != nil {
		return nil, srcErr
	}

	sort.SliceStable(result, func(i, j int) bool {
		return cfg.Sort.compare(result[i], result[j]) < 0
	})

	switch {
	case cfg.Head > 0 && cfg.Head < len(result):
		result = result[:cfg.Head]
	case cfg.Tail > 0 && cfg.Tail < len(result):
		result = result[len(result)-cfg.Tail:]
	}

	return applyMaxResults(result, cfg), nil
}

// applyBoundedTail maintains a streaming bounded buffer of the Tail items
// that sort first under cfg.Sort's defaulted modified-desc comparator (the
// most recently modified), returned newest first, so the source need not be
// fully materialized in memory — only O(Tail) items are retained at once.
func applyBoundedTail(ctx context.Context, src Source, cfg FilterConfig, matcher pattern.Matcher) ([]EnhancedObjectInfo, error) {
	buf := &topKBuffer{cap: cfg.Tail, cmp: func(a, b EnhancedObjectInfo) int { return -cfg.Sort.compare(a, b) }}
	var srcErr error

	for item, err := range src {
		if err != nil {
			srcErr = err
			break
		}
		if ctx.Err() != nil {
			srcErr = ctx.Err()
			break
		}
		if !passesFilters(cfg, matcher, item) {
			continue
		}
		buf.offer(item)
	}
	if srcErr != nil {
		return nil, srcErr
	}

	result := buf.items
	sort.SliceStable(result, func(i, j int) bool {
		return cfg.Sort.compare(result[i], result[j]) < 0
	})

	return applyMaxResults(result, cfg), nil
}

func applyMaxResults(result []EnhancedObjectInfo, cfg FilterConfig) []EnhancedObjectInfo {
	if cfg.MaxResults > 0 && cfg.MaxResults < len(result) {
		return result[:cfg.MaxResults]
	}
	return result
}

// topKBuffer retains the cap items that sort last (are "greatest") under
// cmp, discarding the current minimum whenever a larger item arrives.
// Backed by a container/heap min-heap so each offer is O(log cap).
type topKBuffer struct {
	items []EnhancedObjectInfo
	cap   int
	cmp   func(a, b EnhancedObjectInfo) int
}

func (b *topKBuffer) offer(item EnhancedObjectInfo) {
	if len(b.items) < b.cap {
		heap.Push((*topKHeap)(b), item)
		return
	}
	if b.cap == 0 {
		return
	}
	if b.cmp(item, b.items[0]) > 0 {
		heap.Pop((*topKHeap)(b))
		heap.Push((*topKHeap)(b), item)
	}
}

// topKHeap implements container/heap.Interface over topKBuffer's slice,
// ordered so the current minimum (under cmp) sits at the root.
type topKHeap topKBuffer

func (h topKHeap) Len() int { return len(h.items) }
func (h topKHeap) Less(i, j int) bool {
	return h.cmp(h.items[i], h.items[j]) < 0
}
func (h topKHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *topKHeap) Push(x any) {
	h.items = append(h.items, x.(EnhancedObjectInfo))
}

func (h *topKHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}
