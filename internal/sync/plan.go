// Package sync reconciles a local directory against an S3 destination,
// transferring items that are missing, size-mismatched, or freshly
// modified, and optionally removing destination items the source no
// longer has. The source is always a local directory scan; an S3 prefix
// is not accepted as a source.
package sync

import (
	"time"

	"github.com/marmos91/s3cli/internal/filter"
	"github.com/marmos91/s3cli/internal/scanner"
)

// Action is the reconciliation decision for one relative key.
type Action string

const (
	ActionUpload Action = "upload"
	ActionSkip   Action = "skip"
	ActionDelete Action = "delete"
)

// PlannedItem is one line of a reconciliation plan: a relative key, the
// action chosen for it, and the reason a reviewer would want to see in
// --dryrun output.
type PlannedItem struct {
	RelativeKey string
	Action      Action
	Reason      string
	Source      scanner.StableFile
}

// Options controls how the plan is built.
type Options struct {
	Delete   bool
	SizeOnly bool
}

// Plan reconciles source against dest. source and dest are both keyed by
// relative key; source holds only items that already passed the
// include/exclude filter, so dest-only items are candidates for deletion.
func Plan(source map[string]scanner.StableFile, dest map[string]filter.EnhancedObjectInfo, opts Options) []PlannedItem {
	var plan []PlannedItem

	for key, local := range source {
		remote, exists := dest[key]
		switch {
		case !exists:
			plan = append(plan, PlannedItem{RelativeKey: key, Action: ActionUpload, Reason: "missing at destination", Source: local})
		case local.Size != remote.Size:
			plan = append(plan, PlannedItem{RelativeKey: key, Action: ActionUpload, Reason: "size differs", Source: local})
		case !opts.SizeOnly && isNewer(local.Mtime, remote.Modified):
			plan = append(plan, PlannedItem{RelativeKey: key, Action: ActionUpload, Reason: "source modified more recently", Source: local})
		default:
			plan = append(plan, PlannedItem{RelativeKey: key, Action: ActionSkip, Reason: "up to date", Source: local})
		}
	}

	if opts.Delete {
		for key := range dest {
			if _, exists := source[key]; !exists {
				plan = append(plan, PlannedItem{RelativeKey: key, Action: ActionDelete, Reason: "absent from source"})
			}
		}
	}

	return plan
}

// isNewer reports whether local is strictly newer than remote, at
// one-second granularity — S3's LastModified timestamps are second-
// resolution, so sub-second local mtime differences must not trigger a
// spurious re-upload.
func isNewer(local, remote time.Time) bool {
	return local.Truncate(time.Second).After(remote.Truncate(time.Second))
}
