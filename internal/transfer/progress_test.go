package transfer

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingProgress struct {
	added    int
	finished bool
}

func (r *recordingProgress) Add(n int) { r.added += n }
func (r *recordingProgress) Finish()   { r.finished = true }

func TestCountingReader_ForwardsBytesRead(t *testing.T) {
	rec := &recordingProgress{}
	r := newCountingReader(bytes.NewReader([]byte("hello world")), rec)

	buf := make([]byte, 4)
	total := 0
	for {
		n, err := r.Read(buf)
		total += n
		if err == io.EOF {
			break
		}
		assert.NoError(t, err)
	}

	assert.Equal(t, total, rec.added)
	assert.Equal(t, 11, rec.added)
}

func TestCountingReader_NilProgressIsNoop(t *testing.T) {
	r := newCountingReader(bytes.NewReader([]byte("data")), nil)
	buf := make([]byte, 4)
	n, err := r.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
}
