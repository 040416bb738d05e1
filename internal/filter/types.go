// Package filter implements date/size/pattern filtering, multi-level
// sorting, and head/tail/max-results limiting over S3 object listings.
package filter

import (
	"time"

	s3clierrors "github.com/marmos91/s3cli/internal/errors"
)

// EnhancedObjectInfo is a single listed object, carrying the fields the
// filter engine and downstream commands (ls, du, sync) need beyond the
// bare key.
type EnhancedObjectInfo struct {
	Key          string
	Size         uint64
	Created      time.Time
	Modified     time.Time
	StorageClass string
	ETag         string
}

// SortField names a field EnhancedObjectInfo can be sorted by.
type SortField string

const (
	SortByName     SortField = "name"
	SortBySize     SortField = "size"
	SortByCreated  SortField = "created"
	SortByModified SortField = "modified"
)

// SortDirection is the direction of a single sort level.
type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// SortLevel is one level of a multi-level sort: ties at this level are
// broken by the next level in the SortConfig sequence.
type SortLevel struct {
	Field     SortField
	Direction SortDirection
}

// SortConfig is an ordered sequence of sort levels. An empty sequence
// preserves insertion order.
type SortConfig []SortLevel

// compare returns a negative number if a sorts before b, zero if the levels
// are all tied (callers fall back to original order via a stable sort),
// and a positive number if a sorts after b.
func (s SortConfig) compare(a, b EnhancedObjectInfo) int {
	for _, level := range s {
		c := compareField(level.Field, a, b)
		if level.Direction == Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

func compareField(field SortField, a, b EnhancedObjectInfo) int {
	switch field {
	case SortByName:
		return compareString(a.Key, b.Key)
	case SortBySize:
		return compareUint64(a.Size, b.Size)
	case SortByCreated:
		return compareTime(a.Created, b.Created)
	case SortByModified:
		return compareTime(a.Modified, b.Modified)
	default:
		return 0
	}
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

// FilterConfig describes the date/size/pattern filtering, sort order, and
// result-limiting to apply to an object listing.
type FilterConfig struct {
	CreatedAfter   *time.Time
	CreatedBefore  *time.Time
	ModifiedAfter  *time.Time
	ModifiedBefore *time.Time
	MinSize        *uint64
	MaxSize        *uint64
	Pattern        string
	MaxResults     int
	Head           int
	Tail           int
	Sort           SortConfig

	// tailSortDefaulted records whether Sort was populated by Validate's
	// tail default rather than requested explicitly, so Apply can use the
	// bounded streaming path instead of a full collect-then-sort.
	tailSortDefaulted bool
}

// Validate checks FilterConfig's invariants and applies the tail default
// sort. Returns InvalidArgument on violation.
func (c *FilterConfig) Validate() error {
	if c.CreatedAfter != nil && c.CreatedBefore != nil && c.CreatedAfter.After(*c.CreatedBefore) {
		return s3clierrors.New(s3clierrors.KindInvalidArgument,
			"created-after must not be later than created-before")
	}
	if c.ModifiedAfter != nil && c.ModifiedBefore != nil && c.ModifiedAfter.After(*c.ModifiedBefore) {
		return s3clierrors.New(s3clierrors.KindInvalidArgument,
			"modified-after must not be later than modified-before")
	}
	if c.MinSize != nil && c.MaxSize != nil && *c.MinSize > *c.MaxSize {
		return s3clierrors.New(s3clierrors.KindInvalidArgument,
			"min-size must not be greater than max-size")
	}
	if c.Head > 0 && c.Tail > 0 {
		return s3clierrors.New(s3clierrors.KindInvalidArgument,
			"head and tail are mutually exclusive")
	}
	if c.Tail > 0 && len(c.Sort) == 0 {
		c.Sort = SortConfig{{Field: SortByModified, Direction: Desc}}
		c.tailSortDefaulted = true
	}
	return nil
}
