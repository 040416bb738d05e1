package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetCpFlags() {
	cpRecursive, cpDryRun, cpForce = false, false, false
	cpInclude, cpExclude = nil, nil
}

func TestCompileCpFilters_InvalidIncludePatternIsPatternError(t *testing.T) {
	resetCpFlags()
	defer resetCpFlags()
	cpInclude = []string{"(unterminated"}

	_, _, err := compileCpFilters()
	require.Error(t, err)
	kind, ok := errKind(err)
	require.True(t, ok)
	assert.Equal(t, "PatternError", string(kind))
}

func TestCpPassesFilters_ExcludeWinsOverInclude(t *testing.T) {
	resetCpFlags()
	defer resetCpFlags()
	cpInclude = []string{"*.log"}
	cpExclude = []string{"*debug*"}

	include, exclude, err := compileCpFilters()
	require.NoError(t, err)

	assert.True(t, cpPassesFilters("app.log", include, exclude))
	assert.False(t, cpPassesFilters("app-debug.log", include, exclude))
	assert.False(t, cpPassesFilters("app.txt", include, exclude))
}

func TestCpPassesFilters_NoIncludeMeansAllPass(t *testing.T) {
	resetCpFlags()
	defer resetCpFlags()
	cpExclude = []string{"*.tmp"}

	include, exclude, err := compileCpFilters()
	require.NoError(t, err)

	assert.True(t, cpPassesFilters("data.csv", include, exclude))
	assert.False(t, cpPassesFilters("scratch.tmp", include, exclude))
}

func TestRunCp_RejectsLocalToLocal(t *testing.T) {
	resetCpFlags()
	defer resetCpFlags()

	_, err := runCp(&invocation{}, "/tmp/a.txt", "/tmp/b.txt")
	require.Error(t, err)
	kind, ok := errKind(err)
	require.True(t, ok)
	assert.Equal(t, "InvalidArgument", string(kind))
}

func TestRunCp_RejectsS3ToS3(t *testing.T) {
	resetCpFlags()
	defer resetCpFlags()

	_, err := runCp(&invocation{}, "s3://src/a.txt", "s3://dst/b.txt")
	require.Error(t, err)
	kind, ok := errKind(err)
	require.True(t, ok)
	assert.Equal(t, "InvalidArgument", string(kind))
}
