package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/s3cli/internal/filter"
)

func resetLsFlags() {
	lsCreatedAfter, lsCreatedBefore = "", ""
	lsModifiedAfter, lsModifiedBefore = "", ""
	lsMinSize, lsMaxSize = "", ""
	lsPattern = ""
	lsMaxResults, lsHead, lsTail = 0, 0, 0
	lsSortBy = ""
	lsLong, lsRecursive, lsSummarize, lsReverse = false, false, false, false
	lsHumanReadable = true
}

func TestLsCmd_PreRunE_RejectsHeadAndTailTogether(t *testing.T) {
	resetLsFlags()
	defer resetLsFlags()
	lsHead, lsTail = 5, 5

	err := lsCmd.PreRunE(lsCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestLsCmd_PreRunE_AllowsHeadAlone(t *testing.T) {
	resetLsFlags()
	defer resetLsFlags()
	lsHead = 5

	assert.NoError(t, lsCmd.PreRunE(lsCmd, nil))
}

func TestLsCmd_PreRunE_AllowsNeither(t *testing.T) {
	resetLsFlags()
	defer resetLsFlags()

	assert.NoError(t, lsCmd.PreRunE(lsCmd, nil))
}

func TestBuildFilterConfig_ParsesSizeAndDateFilters(t *testing.T) {
	resetLsFlags()
	defer resetLsFlags()

	lsMinSize = "10MB"
	lsModifiedAfter = "7d"

	cfg, err := buildFilterConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg.MinSize)
	assert.Equal(t, uint64(10*1000*1000), *cfg.MinSize)
	require.NotNil(t, cfg.ModifiedAfter)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -7), *cfg.ModifiedAfter, time.Hour)
}

func TestBuildFilterConfig_InvalidSizeIsFilterParseError(t *testing.T) {
	resetLsFlags()
	defer resetLsFlags()

	lsMinSize = "not-a-size"
	_, err := buildFilterConfig()
	require.Error(t, err)
	kind, ok := errKind(err)
	require.True(t, ok)
	assert.Equal(t, "FilterParseError", string(kind))
}

func TestBuildFilterConfig_SortDescendingPrefix(t *testing.T) {
	resetLsFlags()
	defer resetLsFlags()

	lsSortBy = "-size"
	cfg, err := buildFilterConfig()
	require.NoError(t, err)
	require.Len(t, cfg.Sort, 1)
	assert.Equal(t, filter.SortField("size"), cfg.Sort[0].Field)
	assert.Equal(t, filter.Desc, cfg.Sort[0].Direction)
}

func TestBuildFilterConfig_SortAscendingDefault(t *testing.T) {
	resetLsFlags()
	defer resetLsFlags()

	lsSortBy = "name"
	cfg, err := buildFilterConfig()
	require.NoError(t, err)
	require.Len(t, cfg.Sort, 1)
	assert.Equal(t, filter.Asc, cfg.Sort[0].Direction)
}

func TestReverseItems(t *testing.T) {
	items := []filter.EnhancedObjectInfo{{Key: "a"}, {Key: "b"}, {Key: "c"}}
	reverseItems(items)
	assert.Equal(t, []string{"c", "b", "a"}, []string{items[0].Key, items[1].Key, items[2].Key})
}

func TestReverseItems_EvenLength(t *testing.T) {
	items := []filter.EnhancedObjectInfo{{Key: "a"}, {Key: "b"}}
	reverseItems(items)
	assert.Equal(t, []string{"b", "a"}, []string{items[0].Key, items[1].Key})
}
