package commands

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/spf13/cobra"

	s3clierrors "github.com/marmos91/s3cli/internal/errors"
	"github.com/marmos91/s3cli/internal/uri"
)

var mbCmd = &cobra.Command{
	Use:   "mb s3://bucket",
	Short: "Create a bucket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch("mb", func(inv *invocation) (batchResult, error) {
			return nil, runMb(inv, args[0])
		})(cmd, args)
	},
}

func runMb(inv *invocation, target string) error {
	u, err := uri.Parse(target)
	if err != nil {
		return s3clierrors.Wrap(s3clierrors.KindInvalidUri, err, "invalid s3 uri").WithOperation("mb")
	}
	if u.Key != "" {
		return s3clierrors.New(s3clierrors.KindInvalidArgument, "mb takes a bare bucket uri, not a key")
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(u.Bucket)}
	if inv.cfg.Region != "" && inv.cfg.Region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(inv.cfg.Region),
		}
	}

	if _, err := inv.client.CreateBucket(inv.ctx, input); err != nil {
		return classifyError(err, "mb", u.Bucket, "")
	}
	inv.printer.Success("created " + u.String())
	return nil
}
