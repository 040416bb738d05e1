package commands

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/marmos91/s3cli/internal/cli/output"
	s3clierrors "github.com/marmos91/s3cli/internal/errors"
	"github.com/marmos91/s3cli/internal/filter"
	"github.com/marmos91/s3cli/internal/uri"
)

var (
	duPattern       string
	duSummarize     bool
	duHumanReadable bool
)

var duCmd = &cobra.Command{
	Use:   "du s3://bucket[/prefix]",
	Short: "Show disk usage for objects under a prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch("du", func(inv *invocation) (batchResult, error) {
			return nil, runDu(inv, args[0])
		})(cmd, args)
	},
}

func init() {
	flags := duCmd.Flags()
	flags.StringVar(&duPattern, "pattern", "", "wildcard or regular expression (auto-detected) to match object keys")
	flags.BoolVar(&duSummarize, "summarize", false, "print only the grand total, not a per-prefix breakdown")
	flags.BoolVar(&duHumanReadable, "human-readable", true, "render sizes as human-readable units")
}

func runDu(inv *invocation, target string) error {
	u, err := uri.Parse(target)
	if err != nil {
		return s3clierrors.Wrap(s3clierrors.KindInvalidUri, err, "invalid s3 uri").WithOperation("du")
	}

	bucket, prefix := uri.SplitPrefix(u)
	src := objectSource(inv.ctx, inv.client, bucket, prefix, "", nil)

	cfg := filter.FilterConfig{Pattern: duPattern}
	if err := cfg.Validate(); err != nil {
		return err
	}

	items, err := filter.Apply(inv.ctx, src, cfg)
	if err != nil {
		return err
	}

	var total uint64
	breakdown := make(map[string]uint64)
	for _, item := range items {
		total += item.Size
		breakdown[topLevelKey(prefix, item.Key)] += item.Size
	}

	if duSummarize || inv.printer.Format() != output.FormatTable {
		return printDuTotal(inv, total)
	}
	return printDuBreakdown(inv, breakdown, total)
}

// topLevelKey collapses a key to its first path segment below prefix, the
// way `du -h` groups entries by immediate child rather than full depth.
func topLevelKey(prefix, key string) string {
	rest := key[len(prefix):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			return prefix + rest[:i+1]
		}
	}
	return key
}

func printDuTotal(inv *invocation, total uint64) error {
	if duHumanReadable {
		inv.printer.Println(humanize.Bytes(total))
	} else {
		inv.printer.Printf("%d\n", total)
	}
	return nil
}

func printDuBreakdown(inv *invocation, breakdown map[string]uint64, total uint64) error {
	table := output.NewTableData("PREFIX", "SIZE")
	for key, size := range breakdown {
		if duHumanReadable {
			table.AddRow(key, humanize.Bytes(size))
		} else {
			table.AddRow(key, formatCount(size))
		}
	}
	if duHumanReadable {
		table.AddRow("TOTAL", humanize.Bytes(total))
	} else {
		table.AddRow("TOTAL", formatCount(total))
	}
	return output.PrintTable(inv.printer.Writer(), table)
}

func formatCount(n uint64) string {
	return humanize.Comma(int64(n))
}
