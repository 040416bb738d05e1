package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, root string, opts Options) ([]Outcome, error) {
	t.Helper()
	var out []Outcome
	var scanErr error
	for o, err := range Scan(context.Background(), root, opts) {
		if err != nil {
			scanErr = err
			continue
		}
		out = append(out, o)
	}
	return out, scanErr
}

func TestScan_StableFileEmitted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stable.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	old := time.Now().Add(-1 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	outcomes, err := collect(t, dir, Options{StableWindow: 2 * time.Second})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	require.NotNil(t, outcomes[0].Stable)
	assert.Equal(t, "stable.txt", outcomes[0].Stable.RelativeKey)
	assert.Equal(t, uint64(5), outcomes[0].Stable.Size)
}

func TestScan_RecentlyModifiedSkipped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fresh.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	outcomes, err := collect(t, dir, Options{StableWindow: time.Hour})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	require.NotNil(t, outcomes[0].Skipped)
	assert.Equal(t, SkipRecentlyModified, outcomes[0].Skipped.Kind)
}

func TestScan_SymlinkSkippedAsUnsupported(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires elevated privileges on windows")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0644))
	link := filepath.Join(dir, "link.txt")
	require.NoError(t, os.Symlink(target, link))

	old := time.Now().Add(-1 * time.Hour)
	require.NoError(t, os.Chtimes(target, old, old))

	outcomes, err := collect(t, dir, Options{StableWindow: 2 * time.Second})
	require.NoError(t, err)

	var sawSymlinkSkip bool
	for _, o := range outcomes {
		if o.Skipped != nil && o.Skipped.Path == "link.txt" {
			assert.Equal(t, SkipUnsupported, o.Skipped.Kind)
			assert.Equal(t, "symlink", o.Skipped.Detail)
			sawSymlinkSkip = true
		}
	}
	assert.True(t, sawSymlinkSkip, "symlink should be reported as Unsupported, not followed")
}

func TestScan_DefaultStableWindowApplied(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "justwritten.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	outcomes, err := collect(t, dir, Options{})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	require.NotNil(t, outcomes[0].Skipped)
	assert.Equal(t, SkipRecentlyModified, outcomes[0].Skipped.Kind)
}

func TestSkipInfo_String(t *testing.T) {
	assert.Equal(t, "OpenByPid(1234)", SkipInfo{Kind: SkipOpenByPid, Pid: 1234}.String())
	assert.Equal(t, "RecentlyModified", SkipInfo{Kind: SkipRecentlyModified}.String())
	assert.Equal(t, "Unsupported(symlink)", SkipInfo{Kind: SkipUnsupported, Detail: "symlink"}.String())
}

func TestScan_OpenWriterDetectionIsPlatformScoped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "held-open.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString("partial")
	require.NoError(t, err)

	old := time.Now().Add(-1 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	outcomes, err := collect(t, dir, Options{StableWindow: 2 * time.Second})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	if runtime.GOOS == "linux" {
		require.NotNil(t, outcomes[0].Skipped)
		assert.Equal(t, SkipOpenByPid, outcomes[0].Skipped.Kind)
		assert.Equal(t, os.Getpid(), outcomes[0].Skipped.Pid)
	} else {
		require.NotNil(t, outcomes[0].Stable, "non-linux hosts have no open-fd detection and treat mtime stability as sufficient")
	}
}
