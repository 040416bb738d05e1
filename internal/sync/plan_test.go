package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/marmos91/s3cli/internal/filter"
	"github.com/marmos91/s3cli/internal/scanner"
)

func TestPlan_UploadsWhenMissing(t *testing.T) {
	source := map[string]scanner.StableFile{"a.txt": {RelativeKey: "a.txt", Size: 10}}
	dest := map[string]filter.EnhancedObjectInfo{}

	plan := Plan(source, dest, Options{})
	assert.Len(t, plan, 1)
	assert.Equal(t, ActionUpload, plan[0].Action)
}

func TestPlan_UploadsWhenSizeDiffers(t *testing.T) {
	source := map[string]scanner.StableFile{"a.txt": {RelativeKey: "a.txt", Size: 20}}
	dest := map[string]filter.EnhancedObjectInfo{"a.txt": {Key: "a.txt", Size: 10}}

	plan := Plan(source, dest, Options{})
	assert.Equal(t, ActionUpload, plan[0].Action)
	assert.Equal(t, "size differs", plan[0].Reason)
}

func TestPlan_UploadsWhenSourceNewer(t *testing.T) {
	now := time.Now()
	source := map[string]scanner.StableFile{"a.txt": {RelativeKey: "a.txt", Size: 10, Mtime: now}}
	dest := map[string]filter.EnhancedObjectInfo{"a.txt": {Key: "a.txt", Size: 10, Modified: now.Add(-time.Hour)}}

	plan := Plan(source, dest, Options{})
	assert.Equal(t, ActionUpload, plan[0].Action)
}

func TestPlan_SkipsWhenSizeOnlyAndSizeMatches(t *testing.T) {
	now := time.Now()
	source := map[string]scanner.StableFile{"a.txt": {RelativeKey: "a.txt", Size: 10, Mtime: now}}
	dest := map[string]filter.EnhancedObjectInfo{"a.txt": {Key: "a.txt", Size: 10, Modified: now.Add(-time.Hour)}}

	plan := Plan(source, dest, Options{SizeOnly: true})
	assert.Equal(t, ActionSkip, plan[0].Action)
}

func TestPlan_DeletesDestOnlyItemsWhenDeleteSet(t *testing.T) {
	source := map[string]scanner.StableFile{}
	dest := map[string]filter.EnhancedObjectInfo{"old.txt": {Key: "old.txt", Size: 5}}

	plan := Plan(source, dest, Options{Delete: true})
	assert.Len(t, plan, 1)
	assert.Equal(t, ActionDelete, plan[0].Action)

	noDeletePlan := Plan(source, dest, Options{Delete: false})
	assert.Empty(t, noDeletePlan)
}

func TestPassesFilters_ExcludeWins(t *testing.T) {
	_, exclude, err := compileFilters(nil, []string{"*.tmp"})
	assert.NoError(t, err)
	assert.False(t, passesFilters("a.tmp", nil, exclude))
	assert.True(t, passesFilters("a.txt", nil, exclude))
}

func TestPassesFilters_IncludeRestricts(t *testing.T) {
	include, _, err := compileFilters([]string{"*.txt"}, nil)
	assert.NoError(t, err)
	assert.True(t, passesFilters("a.txt", include, nil))
	assert.False(t, passesFilters("a.bin", include, nil))
}
