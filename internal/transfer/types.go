// Package transfer performs single/multipart uploads and atomic downloads
// between local files and S3-compatible object storage.
package transfer

import (
	"time"

	"github.com/marmos91/s3cli/internal/scanner"
	"github.com/marmos91/s3cli/internal/uri"
)

// minMultipartSize is the size threshold at or above which an upload is
// split into multipart parts.
const minMultipartSize = 8 * 1024 * 1024

// minPartSize is the smallest part size the engine will ever use, even for
// very large files, per the max(8MiB, size/10000) rule.
const minPartSize = 8 * 1024 * 1024

// maxParts mirrors S3's own multipart limit and bounds the part-size
// calculation.
const maxParts = 10000

// partSizeFor returns the part size to use for a multipart upload of the
// given total size: max(8MiB, size/10000), rounded up to the next byte.
func partSizeFor(size uint64) uint64 {
	computed := (size + maxParts - 1) / maxParts
	if computed < minPartSize {
		return minPartSize
	}
	return computed
}

// TransferOutcome is the result of one upload or download.
type TransferOutcome struct {
	Source      string
	Destination string
	Bytes       uint64
	Multipart   bool
	Duration    time.Duration
	DryRun      bool
}

// UploadRequest pairs a stable local file with its destination object.
// Command labels the telemetry this upload is observed under ("cp",
// "sync"); callers that leave it empty are recorded as "cp".
type UploadRequest struct {
	File        scanner.StableFile
	Destination uri.S3URI
	DryRun      bool
	Force       bool
	Progress    Progress
	Command     string
}

// DownloadRequest pairs a source object with its destination local path.
// Command labels the telemetry this download is observed under; empty
// defaults to "cp".
type DownloadRequest struct {
	Source      uri.S3URI
	Size        int64
	Destination string
	DryRun      bool
	Force       bool
	Progress    Progress
	Command     string
}
