package transfer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	s3clierrors "github.com/marmos91/s3cli/internal/errors"
	"github.com/marmos91/s3cli/internal/telemetry"
)

// Download streams req.Source to a temporary sibling of req.Destination,
// then atomically renames it into place. Existing destination files are
// only overwritten when req.Force is set.
func (e *Engine) Download(ctx context.Context, req DownloadRequest) (TransferOutcome, error) {
	start := time.Now()

	if req.DryRun {
		return TransferOutcome{
			Source:      req.Source.String(),
			Destination: req.Destination,
			Bytes:       uint64(req.Size),
			DryRun:      true,
		}, nil
	}

	if !req.Force {
		if _, err := os.Stat(req.Destination); err == nil {
			return TransferOutcome{}, s3clierrors.New(s3clierrors.KindConflict,
				"destination exists, use --force to overwrite").
				WithOperation("cp").WithKey(req.Destination)
		}
	}

	out, err := e.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(req.Source.Bucket),
		Key:    aws.String(req.Source.Key),
	})
	if err != nil {
		return TransferOutcome{}, classifyS3Error(err, "cp", req.Source.Bucket, req.Source.Key)
	}
	defer out.Body.Close()

	if err := os.MkdirAll(filepath.Dir(req.Destination), 0755); err != nil {
		return TransferOutcome{}, s3clierrors.Wrap(s3clierrors.KindFatal, err, "creating destination directory").WithOperation("cp")
	}

	tmpPath := req.Destination + ".tmp"
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return TransferOutcome{}, s3clierrors.Wrap(s3clierrors.KindFatal, err, "creating temp file").WithOperation("cp")
	}

	written, copyErr := io.Copy(tmp, newCountingReader(out.Body, req.Progress))
	closeErr := tmp.Close()
	if req.Progress != nil {
		req.Progress.Finish()
	}
	if copyErr != nil || closeErr != nil {
		os.Remove(tmpPath)
		if copyErr != nil {
			return TransferOutcome{}, s3clierrors.Wrap(s3clierrors.KindNetworkError, copyErr, "streaming object body").WithOperation("cp")
		}
		return TransferOutcome{}, s3clierrors.Wrap(s3clierrors.KindFatal, closeErr, "closing temp file").WithOperation("cp")
	}

	if err := renameAtomic(tmpPath, req.Destination); err != nil {
		os.Remove(tmpPath)
		return TransferOutcome{}, s3clierrors.Wrap(s3clierrors.KindFatal, err, "finalizing download").WithOperation("cp")
	}

	duration := time.Since(start)
	telemetry.GlobalMetrics().ObserveDownload(uploadCommand(req.Command), req.Source.Bucket, uint64(written), duration)

	return TransferOutcome{
		Source:      req.Source.String(),
		Destination: req.Destination,
		Bytes:       uint64(written),
		Duration:    duration,
	}, nil
}

// renameAtomic renames src to dst, falling back to copy+fsync+unlink when
// the rename fails because src and dst live on different filesystems
// (os.Rename cannot cross filesystem boundaries).
func renameAtomic(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	if !isCrossDeviceError(err) {
		return err
	}

	in, openErr := os.Open(src)
	if openErr != nil {
		return openErr
	}
	defer in.Close()

	out, createErr := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if createErr != nil {
		return createErr
	}

	if _, copyErr := io.Copy(out, in); copyErr != nil {
		out.Close()
		return copyErr
	}
	if syncErr := out.Sync(); syncErr != nil {
		out.Close()
		return syncErr
	}
	if closeErr := out.Close(); closeErr != nil {
		return closeErr
	}

	return os.Remove(src)
}

func isCrossDeviceError(err error) bool {
	linkErr, ok := err.(*os.LinkError)
	if !ok {
		return false
	}
	return fmt.Sprint(linkErr.Err) == "invalid cross-device link"
}
