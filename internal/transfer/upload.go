package transfer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/marmos91/s3cli/internal/config"
	s3clierrors "github.com/marmos91/s3cli/internal/errors"
	"github.com/marmos91/s3cli/internal/s3client"
	"github.com/marmos91/s3cli/internal/telemetry"
)

// Engine drives uploads and downloads against a single S3-compatible
// endpoint, using the checksum algorithm and part-size rule the resolved
// config and the operation's contract specify.
type Engine struct {
	client    *s3.Client
	checksum  types.ChecksumAlgorithm
	maxUpload uint
}

// NewEngine builds an Engine bound to client, using cfg's checksum
// algorithm for every upload and batch request.
func NewEngine(client *s3.Client, cfg *config.ResolvedConfig) *Engine {
	return &Engine{
		client:   client,
		checksum: s3client.ChecksumAlgorithm(cfg.ChecksumAlgorithm),
	}
}

// Upload transfers req.File to req.Destination. Files at or above
// minMultipartSize use multipart upload with the spec's part-size rule;
// smaller files use a single PUT. Every upload carries the configured
// integrity checksum and is re-verified with a HEAD request afterward.
func (e *Engine) Upload(ctx context.Context, req UploadRequest) (TransferOutcome, error) {
	start := time.Now()

	if req.DryRun {
		return TransferOutcome{
			Source:      req.File.AbsolutePath,
			Destination: req.Destination.String(),
			Bytes:       req.File.Size,
			Multipart:   req.File.Size >= minMultipartSize,
			DryRun:      true,
		}, nil
	}

	f, err := os.Open(req.File.AbsolutePath)
	if err != nil {
		return TransferOutcome{}, s3clierrors.Wrap(s3clierrors.KindNotFound, err,
			"source file not found").WithOperation("cp")
	}
	defer f.Close()

	multipart := req.File.Size >= minMultipartSize
	if multipart {
		err = e.uploadMultipart(ctx, f, req)
	} else {
		err = e.uploadSingle(ctx, f, req)
	}
	if req.Progress != nil {
		req.Progress.Finish()
	}
	if err != nil {
		return TransferOutcome{}, err
	}

	if err := e.verifyUpload(ctx, req); err != nil {
		return TransferOutcome{}, err
	}

	duration := time.Since(start)
	telemetry.GlobalMetrics().ObserveUpload(uploadCommand(req.Command), req.Destination.Bucket, req.File.Size, duration)

	return TransferOutcome{
		Source:      req.File.AbsolutePath,
		Destination: req.Destination.String(),
		Bytes:       req.File.Size,
		Multipart:   multipart,
		Duration:    duration,
	}, nil
}

func uploadCommand(command string) string {
	if command == "" {
		return "cp"
	}
	return command
}

func (e *Engine) uploadSingle(ctx context.Context, f *os.File, req UploadRequest) error {
	_, err := e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:            aws.String(req.Destination.Bucket),
		Key:               aws.String(req.Destination.Key),
		Body:              newCountingReader(f, req.Progress),
		ContentLength:     aws.Int64(int64(req.File.Size)),
		ChecksumAlgorithm: e.checksum,
	})
	if err != nil {
		return classifyPutError(err, req)
	}
	return nil
}

type completedPart struct {
	partNumber int32
	etag       *string
}

// uploadMultipart splits f into parts of partSizeFor(size), uploading each
// with the configured checksum, then completes the upload. Any failure
// aborts the in-progress upload ID so the backend does not retain an
// orphaned multipart session.
func (e *Engine) uploadMultipart(ctx context.Context, f *os.File, req UploadRequest) error {
	created, err := e.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:            aws.String(req.Destination.Bucket),
		Key:               aws.String(req.Destination.Key),
		ChecksumAlgorithm: e.checksum,
	})
	if err != nil {
		return classifyPutError(err, req)
	}
	uploadID := created.UploadId

	parts, uploadErr := e.uploadParts(ctx, f, req, *uploadID)
	if uploadErr != nil {
		_, _ = e.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
			Bucket:   aws.String(req.Destination.Bucket),
			Key:      aws.String(req.Destination.Key),
			UploadId: uploadID,
		})
		return uploadErr
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].partNumber < parts[j].partNumber })
	completed := make([]types.CompletedPart, len(parts))
	for i, p := range parts {
		completed[i] = types.CompletedPart{ETag: p.etag, PartNumber: aws.Int32(p.partNumber)}
	}

	_, err = e.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(req.Destination.Bucket),
		Key:      aws.String(req.Destination.Key),
		UploadId: uploadID,
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: completed,
		},
	})
	if err != nil {
		_, _ = e.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
			Bucket:   aws.String(req.Destination.Bucket),
			Key:      aws.String(req.Destination.Key),
			UploadId: uploadID,
		})
		return classifyPutError(err, req)
	}
	return nil
}

func (e *Engine) uploadParts(ctx context.Context, f *os.File, req UploadRequest, uploadID string) ([]completedPart, error) {
	partSize := partSizeFor(req.File.Size)
	buf := make([]byte, partSize)

	var parts []completedPart
	partNumber := int32(1)

	for {
		n, readErr := io.ReadFull(f, buf)
		if n == 0 {
			break
		}

		result, err := e.client.UploadPart(ctx, &s3.UploadPartInput{
			Bucket:            aws.String(req.Destination.Bucket),
			Key:               aws.String(req.Destination.Key),
			UploadId:          aws.String(uploadID),
			PartNumber:        aws.Int32(partNumber),
			Body:              newCountingReader(bytes.NewReader(buf[:n]), req.Progress),
			ContentLength:     aws.Int64(int64(n)),
			ChecksumAlgorithm: e.checksum,
		})
		if err != nil {
			return nil, classifyPutError(err, req)
		}

		parts = append(parts, completedPart{partNumber: partNumber, etag: result.ETag})
		partNumber++

		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return nil, s3clierrors.Wrap(s3clierrors.KindFatal, readErr, "reading source file").WithOperation("cp")
		}
	}

	return parts, nil
}

// verifyUpload HEADs the destination and compares the reported size
// against the source file's scanned size. The server-reported checksum is
// not compared.
func (e *Engine) verifyUpload(ctx context.Context, req UploadRequest) error {
	head, err := e.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(req.Destination.Bucket),
		Key:    aws.String(req.Destination.Key),
	})
	if err != nil {
		return classifyPutError(err, req)
	}

	if head.ContentLength == nil || uint64(*head.ContentLength) != req.File.Size {
		return s3clierrors.New(s3clierrors.KindConflict,
			fmt.Sprintf("post-upload size mismatch: expected %d", req.File.Size)).
			WithOperation("cp").WithBucket(req.Destination.Bucket).WithKey(req.Destination.Key)
	}

	return nil
}

func classifyPutError(err error, req UploadRequest) error {
	return classifyS3Error(err, "cp", req.Destination.Bucket, req.Destination.Key)
}
