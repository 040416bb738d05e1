package filter

import (
	"regexp"
	"strconv"
	"time"

	"github.com/marmos91/s3cli/internal/bytesize"
	s3clierrors "github.com/marmos91/s3cli/internal/errors"
)

// relativeDatePattern matches the "N{d|w|m|y}" relative date grammar, e.g.
// "7d", "2w", "3m", "1y".
var relativeDatePattern = regexp.MustCompile(`^(\d+)([dwmy])$`)

// ParseDate parses a filter date bound. It accepts an absolute "YYYYMMDD"
// date, or a relative "N{d|w|m|y}" expression resolved against the current
// UTC wall clock (e.g. "7d" means seven days before now). Returns
// FilterParseError on malformed input.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("20060102", s); err == nil {
		return t.UTC(), nil
	}

	m := relativeDatePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, s3clierrors.New(s3clierrors.KindFilterParseError,
			"invalid date filter: "+s)
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, s3clierrors.New(s3clierrors.KindFilterParseError,
			"invalid date filter: "+s)
	}

	now := time.Now().UTC()
	switch m[2] {
	case "d":
		return now.AddDate(0, 0, -n), nil
	case "w":
		return now.AddDate(0, 0, -7*n), nil
	case "m":
		return now.AddDate(0, -n, 0), nil
	case "y":
		return now.AddDate(-n, 0, 0), nil
	default:
		return time.Time{}, s3clierrors.New(s3clierrors.KindFilterParseError,
			"invalid date filter: "+s)
	}
}

// ParseSize parses a filter size bound: an integer optionally followed by
// one of B/KB/MB/GB/TB/PB/KiB/MiB/GiB/TiB/PiB. A bare integer with no unit
// is interpreted as megabytes. Returns FilterParseError on malformed input.
func ParseSize(s string) (uint64, error) {
	size, err := bytesize.ParseByteSizeWithDefaultUnit(s, bytesize.MB)
	if err != nil {
		return 0, s3clierrors.Wrap(s3clierrors.KindFilterParseError, err,
			"invalid size filter: "+s)
	}
	return size.Uint64(), nil
}
