package commands

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	s3clierrors "github.com/marmos91/s3cli/internal/errors"
	"github.com/marmos91/s3cli/internal/uri"
)

var (
	presignExpiry time.Duration
	presignMethod string
)

var presignCmd = &cobra.Command{
	Use:   "presign s3://bucket/key",
	Short: "Generate a presigned URL for an object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch("presign", func(inv *invocation) (batchResult, error) {
			return nil, runPresign(inv, args[0])
		})(cmd, args)
	},
}

func init() {
	flags := presignCmd.Flags()
	flags.DurationVar(&presignExpiry, "expires-in", 15*time.Minute, "how long the presigned URL remains valid")
	flags.StringVar(&presignMethod, "method", "GET", "HTTP method to presign: GET or PUT")
}

func runPresign(inv *invocation, target string) error {
	u, err := uri.Parse(target)
	if err != nil {
		return s3clierrors.Wrap(s3clierrors.KindInvalidUri, err, "invalid s3 uri").WithOperation("presign")
	}
	if u.Key == "" {
		return s3clierrors.New(s3clierrors.KindInvalidArgument, "presign requires an object key, not a bare bucket")
	}

	presignClient := s3.NewPresignClient(inv.client)

	var url string
	switch presignMethod {
	case "GET":
		req, err := presignClient.PresignGetObject(inv.ctx, &s3.GetObjectInput{
			Bucket: aws.String(u.Bucket),
			Key:    aws.String(u.Key),
		}, s3.WithPresignExpires(presignExpiry))
		if err != nil {
			return classifyError(err, "presign", u.Bucket, u.Key)
		}
		url = req.URL
	case "PUT":
		req, err := presignClient.PresignPutObject(inv.ctx, &s3.PutObjectInput{
			Bucket: aws.String(u.Bucket),
			Key:    aws.String(u.Key),
		}, s3.WithPresignExpires(presignExpiry))
		if err != nil {
			return classifyError(err, "presign", u.Bucket, u.Key)
		}
		url = req.URL
	default:
		return s3clierrors.New(s3clierrors.KindInvalidArgument, "--method must be GET or PUT")
	}

	inv.printer.Println(url)
	return nil
}
