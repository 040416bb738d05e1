// Package s3client builds the shared aws-sdk-go-v2 S3 client every
// component (transfer, delete engine, sync, dispatcher) constructs from a
// ResolvedConfig.
package s3client

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/marmos91/s3cli/internal/config"
)

// New builds an *s3.Client from a ResolvedConfig. A non-empty EndpointURL
// forces path-style addressing, matching how S3-compatible backends
// (MinIO, Ceph RGW) are conventionally reached.
func New(ctx context.Context, cfg *config.ResolvedConfig) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Credentials.AccessKeyID,
			cfg.Credentials.SecretAccessKey,
			cfg.Credentials.SessionToken,
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			endpoint := cfg.EndpointURL
			o.BaseEndpoint = &endpoint
			o.UsePathStyle = true
		}
	})

	return client, nil
}

// ChecksumAlgorithm maps the resolved config's algorithm name to the SDK's
// checksum enum. Defaults to SHA256 for unrecognized values.
func ChecksumAlgorithm(alg config.ChecksumAlgorithm) types.ChecksumAlgorithm {
	switch alg {
	case config.ChecksumCrc32:
		return types.ChecksumAlgorithmCrc32
	case config.ChecksumCrc32c:
		return types.ChecksumAlgorithmCrc32c
	case config.ChecksumSha1:
		return types.ChecksumAlgorithmSha1
	default:
		return types.ChecksumAlgorithmSha256
	}
}
