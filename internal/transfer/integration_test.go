//go:build integration

package transfer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/marmos91/s3cli/internal/config"
	"github.com/marmos91/s3cli/internal/scanner"
	"github.com/marmos91/s3cli/internal/uri"
)

// minioHelper starts a single-node MinIO container and hands back an
// *s3.Client wired against it, mirroring the way upstream integration
// suites in this codebase bring up a disposable object store per run.
type minioHelper struct {
	container testcontainers.Container
	endpoint  string
	client    *s3.Client
}

func startMinio(t *testing.T) *minioHelper {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "minio/minio:RELEASE.2024-01-16T16-07-38Z",
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     "minioadmin",
			"MINIO_ROOT_PASSWORD": "minioadmin",
		},
		Cmd: []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/ready").
			WithPort("9000/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)

	endpoint := fmt.Sprintf("http://%s:%s", host, port.Port())

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("minioadmin", "minioadmin", "")),
	)
	require.NoError(t, err)

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &minioHelper{container: container, endpoint: endpoint, client: client}
}

func TestUploadDownload_RoundTrip(t *testing.T) {
	m := startMinio(t)
	ctx := context.Background()

	const bucket = "roundtrip-bucket"
	_, err := m.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
	require.NoError(t, err)

	engine := NewEngine(m.client, &config.ResolvedConfig{ChecksumAlgorithm: config.ChecksumSha256})

	dir := t.TempDir()
	srcPath := filepath.Join(dir, "report.txt")
	payload := []byte("integration payload\n")
	require.NoError(t, os.WriteFile(srcPath, payload, 0644))
	info, err := os.Stat(srcPath)
	require.NoError(t, err)

	upReq := UploadRequest{
		File: scanner.StableFile{
			AbsolutePath: srcPath,
			RelativeKey:  "report.txt",
			Size:         uint64(info.Size()),
			Mtime:        info.ModTime(),
		},
		Destination: uri.S3URI{Bucket: bucket, Key: "report.txt"},
	}
	outcome, err := engine.Upload(ctx, upReq)
	require.NoError(t, err)
	require.False(t, outcome.Multipart)
	require.Equal(t, uint64(len(payload)), outcome.Bytes)

	dstPath := filepath.Join(dir, "downloaded.txt")
	downReq := DownloadRequest{
		Source:      uri.S3URI{Bucket: bucket, Key: "report.txt"},
		Size:        int64(len(payload)),
		Destination: dstPath,
	}
	_, err = engine.Download(ctx, downReq)
	require.NoError(t, err)

	got, err := os.ReadFile(dstPath)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestUpload_MultipartAboveThreshold(t *testing.T) {
	m := startMinio(t)
	ctx := context.Background()

	const bucket = "multipart-bucket"
	_, err := m.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
	require.NoError(t, err)

	engine := NewEngine(m.client, &config.ResolvedConfig{ChecksumAlgorithm: config.ChecksumSha256})

	dir := t.TempDir()
	srcPath := filepath.Join(dir, "large.bin")
	payload := make([]byte, minMultipartSize+1024)
	require.NoError(t, os.WriteFile(srcPath, payload, 0644))
	info, err := os.Stat(srcPath)
	require.NoError(t, err)

	upReq := UploadRequest{
		File: scanner.StableFile{
			AbsolutePath: srcPath,
			RelativeKey:  "large.bin",
			Size:         uint64(info.Size()),
			Mtime:        info.ModTime(),
		},
		Destination: uri.S3URI{Bucket: bucket, Key: "large.bin"},
	}
	outcome, err := engine.Upload(ctx, upReq)
	require.NoError(t, err)
	require.True(t, outcome.Multipart)

	head, err := m.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String("large.bin")})
	require.NoError(t, err)
	require.Equal(t, int64(len(payload)), *head.ContentLength)
}
