package transfer

import (
	"io"

	"github.com/cheggaaa/pb/v3"
)

// Progress receives byte-level updates as a transfer streams. Upload and
// Download both accept an optional Progress; a nil Progress is a no-op.
type Progress interface {
	Add(n int)
	Finish()
}

// barTemplate renders "<label> <counters> <bar> <percent> <speed>", the
// same shape every cp/sync invocation shows for a single transfer.
var barTemplate = pb.ProgressBarTemplate(
	`{{string . "label"}} {{counters . }} {{bar . }} {{percent . }} {{speed . }}`,
)

// NewBarProgress wraps a cheggaaa/pb/v3 bar sized to total bytes.
func NewBarProgress(label string, total int64) Progress {
	bar := barTemplate.New(int(total))
	bar.Set("label", label)
	bar.Set(pb.Bytes, true)
	bar.Start()
	return barProgress{bar: bar}
}

type barProgress struct {
	bar *pb.ProgressBar
}

func (b barProgress) Add(n int) { b.bar.Add(n) }
func (b barProgress) Finish()   { b.bar.Finish() }

// countingReader wraps an io.Reader, forwarding every Read to a Progress so
// streaming copies (uploadSingle, uploadParts, Download) report bytes as
// they move rather than only at completion.
type countingReader struct {
	r        io.Reader
	progress Progress
}

func newCountingReader(r io.Reader, progress Progress) io.Reader {
	if progress == nil {
		return r
	}
	return &countingReader{r: r, progress: progress}
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.progress.Add(n)
	}
	return n, err
}
