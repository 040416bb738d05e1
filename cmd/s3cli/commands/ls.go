package commands

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/marmos91/s3cli/internal/cli/output"
	s3clierrors "github.com/marmos91/s3cli/internal/errors"
	"github.com/marmos91/s3cli/internal/filter"
	"github.com/marmos91/s3cli/internal/uri"
)

var (
	lsCreatedAfter   string
	lsCreatedBefore  string
	lsModifiedAfter  string
	lsModifiedBefore string
	lsMinSize        string
	lsMaxSize        string
	lsPattern        string
	lsMaxResults     int
	lsHead           int
	lsTail           int
	lsSortBy         string
	lsLong           bool
	lsRecursive      bool
	lsHumanReadable  bool
	lsSummarize      bool
	lsReverse        bool
)

var lsCmd = &cobra.Command{
	Use:   "ls [s3://bucket[/prefix]]",
	Short: "List buckets or objects",
	Args:  cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if lsHead > 0 && lsTail > 0 {
			return s3clierrors.New(s3clierrors.KindInvalidArgument, "--head and --tail are mutually exclusive")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		var target string
		if len(args) > 0 {
			target = args[0]
		}
		return dispatch("ls", func(inv *invocation) (batchResult, error) {
			return nil, runLs(inv, target)
		})(cmd, args)
	},
}

func init() {
	flags := lsCmd.Flags()
	flags.StringVar(&lsCreatedAfter, "created-after", "", "only objects created after this date (YYYYMMDD or Nd/Nw/Nm/Ny)")
	flags.StringVar(&lsCreatedBefore, "created-before", "", "only objects created before this date")
	flags.StringVar(&lsModifiedAfter, "modified-after", "", "only objects modified after this date")
	flags.StringVar(&lsModifiedBefore, "modified-before", "", "only objects modified before this date")
	flags.StringVar(&lsMinSize, "min-size", "", "only objects at least this size (e.g. 10MB)")
	flags.StringVar(&lsMaxSize, "max-size", "", "only objects at most this size")
	flags.StringVar(&lsPattern, "pattern", "", "wildcard or regular expression (auto-detected) to match object keys")
	flags.IntVar(&lsMaxResults, "max-results", 0, "cap the number of results (0 = unbounded)")
	flags.IntVar(&lsHead, "head", 0, "return only the first N results")
	flags.IntVar(&lsTail, "tail", 0, "return only the last N results, most-recently-modified first")
	flags.StringVar(&lsSortBy, "sort-by", "", "sort field: name, size, created, modified (prefix with - for descending)")
	flags.BoolVarP(&lsLong, "long", "l", false, "include storage class and etag columns")
	flags.BoolVarP(&lsRecursive, "recursive", "r", false, "descend into every prefix instead of stopping at the next '/'")
	flags.BoolVar(&lsHumanReadable, "human-readable", true, "render sizes as human-readable units")
	flags.BoolVar(&lsSummarize, "summarize", false, "print a trailing total object count and size")
	flags.BoolVar(&lsReverse, "reverse", false, "reverse the listing order")
}

func runLs(inv *invocation, target string) error {
	cfg, err := buildFilterConfig()
	if err != nil {
		return err
	}

	if target == "" {
		return lsBuckets(inv, cfg)
	}

	u, err := uri.Parse(target)
	if err != nil {
		return s3clierrors.Wrap(s3clierrors.KindInvalidUri, err, "invalid s3 uri").WithOperation("ls")
	}
	return lsObjects(inv, u, cfg)
}

func buildFilterConfig() (filter.FilterConfig, error) {
	var cfg filter.FilterConfig
	cfg.Pattern = lsPattern
	cfg.MaxResults = lsMaxResults
	cfg.Head = lsHead
	cfg.Tail = lsTail

	for _, pair := range []struct {
		raw string
		dst **time.Time
	}{
		{lsCreatedAfter, &cfg.CreatedAfter},
		{lsCreatedBefore, &cfg.CreatedBefore},
		{lsModifiedAfter, &cfg.ModifiedAfter},
		{lsModifiedBefore, &cfg.ModifiedBefore},
	} {
		if pair.raw == "" {
			continue
		}
		t, err := filter.ParseDate(pair.raw)
		if err != nil {
			return cfg, s3clierrors.Wrap(s3clierrors.KindFilterParseError, err, "invalid date filter").WithOperation("ls")
		}
		*pair.dst = &t
	}

	for _, pair := range []struct {
		raw string
		dst **uint64
	}{
		{lsMinSize, &cfg.MinSize},
		{lsMaxSize, &cfg.MaxSize},
	} {
		if pair.raw == "" {
			continue
		}
		sz, err := filter.ParseSize(pair.raw)
		if err != nil {
			return cfg, s3clierrors.Wrap(s3clierrors.KindFilterParseError, err, "invalid size filter").WithOperation("ls")
		}
		*pair.dst = &sz
	}

	if lsSortBy != "" {
		direction := filter.Asc
		field := lsSortBy
		if strings.HasPrefix(field, "-") {
			direction = filter.Desc
			field = field[1:]
		}
		cfg.Sort = filter.SortConfig{{Field: filter.SortField(field), Direction: direction}}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func lsBuckets(inv *invocation, cfg filter.FilterConfig) error {
	out, err := inv.client.ListBuckets(inv.ctx, &s3.ListBucketsInput{})
	if err != nil {
		return classifyError(err, "ls", "", "")
	}

	items := make([]filter.EnhancedObjectInfo, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		items = append(items, filter.EnhancedObjectInfo{
			Key:     aws.ToString(b.Name),
			Created: aws.ToTime(b.CreationDate),
		})
	}

	result, err := filter.Apply(inv.ctx, filter.FromSlice(items), cfg)
	if err != nil {
		return err
	}
	if lsReverse {
		reverseItems(result)
	}
	return printListing(inv, result, nil, false)
}

func lsObjects(inv *invocation, u uri.S3URI, cfg filter.FilterConfig) error {
	bucket, prefix := uri.SplitPrefix(u)

	delimiter := "/"
	if lsRecursive {
		delimiter = ""
	}

	var commonPrefixes []string
	src := objectSource(inv.ctx, inv.client, bucket, prefix, delimiter, &commonPrefixes)

	result, err := filter.Apply(inv.ctx, src, cfg)
	if err != nil {
		return err
	}
	if lsReverse {
		reverseItems(result)
	}
	return printListing(inv, result, commonPrefixes, true)
}

// objectSource adapts a paginated ListObjectsV2 call into a filter.Source,
// classifying the first page error (if any) through the shared taxonomy. A
// non-empty delimiter stops descent at the next separator; the prefixes S3
// collapses under it are appended to prefixesOut as they arrive, since
// EnhancedObjectInfo itself has no room for a directory-marker field.
func objectSource(ctx context.Context, client *s3.Client, bucket, prefix, delimiter string, prefixesOut *[]string) filter.Source {
	return func(yield func(filter.EnhancedObjectInfo, error) bool) {
		input := &s3.ListObjectsV2Input{
			Bucket: aws.String(bucket),
			Prefix: aws.String(prefix),
		}
		if delimiter != "" {
			input.Delimiter = aws.String(delimiter)
		}
		paginator := s3.NewListObjectsV2Paginator(client, input)
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				yield(filter.EnhancedObjectInfo{}, classifyError(err, "ls", bucket, prefix))
				return
			}
			if prefixesOut != nil {
				for _, p := range page.CommonPrefixes {
					*prefixesOut = append(*prefixesOut, aws.ToString(p.Prefix))
				}
			}
			for _, obj := range page.Contents {
				item := filter.EnhancedObjectInfo{
					Key:          aws.ToString(obj.Key),
					Size:         uint64(aws.ToInt64(obj.Size)),
					Modified:     aws.ToTime(obj.LastModified),
					StorageClass: string(obj.StorageClass),
					ETag:         aws.ToString(obj.ETag),
				}
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}

func reverseItems(items []filter.EnhancedObjectInfo) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}

func printListing(inv *invocation, items []filter.EnhancedObjectInfo, commonPrefixes []string, objects bool) error {
	if inv.printer.Format() != output.FormatTable {
		if !objects || len(commonPrefixes) == 0 {
			return inv.printer.Print(items)
		}
		return inv.printer.Print(struct {
			Prefixes []string                    `json:"prefixes,omitempty" yaml:"prefixes,omitempty"`
			Objects  []filter.EnhancedObjectInfo `json:"objects" yaml:"objects"`
		}{Prefixes: commonPrefixes, Objects: items})
	}

	headers := []string{"KEY", "SIZE", "MODIFIED"}
	if lsLong && objects {
		headers = append(headers, "STORAGE_CLASS", "ETAG")
	}
	if !objects {
		headers = []string{"BUCKET", "CREATED"}
	}
	table := output.NewTableData(headers...)

	for _, p := range commonPrefixes {
		row := []string{p + " (PRE)", "", ""}
		if lsLong && objects {
			row = append(row, "", "")
		}
		table.AddRow(row...)
	}

	var totalSize uint64
	for _, item := range items {
		if objects {
			row := []string{item.Key, formatSize(item.Size), item.Modified.Format(time.RFC3339)}
			if lsLong {
				row = append(row, item.StorageClass, item.ETag)
			}
			table.AddRow(row...)
			totalSize += item.Size
		} else {
			table.AddRow(item.Key, item.Created.Format(time.RFC3339))
		}
	}

	if lsSummarize && objects {
		row := []string{"TOTAL", formatSize(totalSize), formatCount(uint64(len(items))) + " objects"}
		if lsLong {
			row = append(row, "", "")
		}
		table.AddRow(row...)
	}

	return output.PrintTable(inv.printer.Writer(), table)
}

func formatSize(size uint64) string {
	if lsHumanReadable {
		return humanize.Bytes(size)
	}
	return formatCount(size)
}
