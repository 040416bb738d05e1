package commands

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/marmos91/s3cli/internal/cli/output"
	s3clierrors "github.com/marmos91/s3cli/internal/errors"
)

var (
	headObjectBucket string
	headObjectKey    string
)

var headObjectCmd = &cobra.Command{
	Use:   "head-object",
	Short: "Print an object's metadata without downloading it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch("head-object", func(inv *invocation) (batchResult, error) {
			return nil, runHeadObject(inv)
		})(cmd, args)
	},
}

func init() {
	flags := headObjectCmd.Flags()
	flags.StringVar(&headObjectBucket, "bucket", "", "bucket containing the object (required)")
	flags.StringVar(&headObjectKey, "key", "", "object key to inspect (required)")
	headObjectCmd.MarkFlagRequired("bucket")
	headObjectCmd.MarkFlagRequired("key")
}

func runHeadObject(inv *invocation) error {
	out, err := inv.client.HeadObject(inv.ctx, &s3.HeadObjectInput{
		Bucket: aws.String(headObjectBucket),
		Key:    aws.String(headObjectKey),
	})
	if err != nil {
		return classifyError(err, "head-object", headObjectBucket, headObjectKey)
	}

	if inv.printer.Format() != output.FormatTable {
		return inv.printer.Print(out)
	}

	return output.SimpleTable(inv.printer.Writer(), [][2]string{
		{"Key", headObjectKey},
		{"Size", humanize.Bytes(uint64(aws.ToInt64(out.ContentLength)))},
		{"LastModified", aws.ToTime(out.LastModified).Format(time.RFC3339)},
		{"ETag", aws.ToString(out.ETag)},
		{"ContentType", aws.ToString(out.ContentType)},
		{"StorageClass", string(out.StorageClass)},
	})
}
