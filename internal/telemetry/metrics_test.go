package telemetry

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveOperationAndFlush(t *testing.T) {
	m := InitMetrics()

	m.ObserveOperation("cp", "success", 120*time.Millisecond)
	m.ObserveUpload("cp", "my-bucket", 4096, 200*time.Millisecond)
	m.ObserveDownload("cp", "my-bucket", 2048, 100*time.Millisecond)
	m.ObserveError("NotFound")

	out, err := m.Flush()
	require.NoError(t, err)
	assert.Contains(t, out, "operations_total")
	assert.Contains(t, out, "bytes_uploaded_total")
	assert.Contains(t, out, "bytes_downloaded_total")
	assert.Contains(t, out, "files_uploaded_total")
	assert.Contains(t, out, "errors_total")
	assert.Contains(t, out, "transfer_rate_kbps")
	assert.True(t, strings.Contains(out, `bucket="my-bucket"`))
}

func TestGlobalMetrics_ReturnsSameInstance(t *testing.T) {
	a := GlobalMetrics()
	b := GlobalMetrics()
	assert.Same(t, a, b)
}
