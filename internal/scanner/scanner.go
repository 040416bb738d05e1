// Package scanner walks a local directory tree and emits only files that
// are stable — not mid-write — so the upload pipeline never races a
// writer still appending to its source file.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"time"
)

// StableFile is a local file that passed every stability check and is
// safe to read for upload.
type StableFile struct {
	AbsolutePath string
	RelativeKey  string
	Size         uint64
	Mtime        time.Time
}

// SkipKind names why a candidate file was not emitted as stable.
type SkipKind string

const (
	SkipOpenByPid       SkipKind = "OpenByPid"
	SkipRecentlyModified SkipKind = "RecentlyModified"
	SkipUnsupported     SkipKind = "Unsupported"
)

// SkipInfo describes a candidate the scanner declined to emit.
type SkipInfo struct {
	Path   string
	Kind   SkipKind
	Pid    int    // set only for SkipOpenByPid
	Detail string // set only for SkipUnsupported (symlink, device, socket, fifo)
}

// String renders the skip reason the way a debug log or summary line
// would show it, e.g. "OpenByPid(1234)", "RecentlyModified", "Unsupported(symlink)".
func (s SkipInfo) String() string {
	switch s.Kind {
	case SkipOpenByPid:
		return fmt.Sprintf("OpenByPid(%d)", s.Pid)
	case SkipUnsupported:
		return fmt.Sprintf("Unsupported(%s)", s.Detail)
	default:
		return string(s.Kind)
	}
}

// Outcome is one item produced by Scan: exactly one of Stable or Skipped
// is set.
type Outcome struct {
	Stable  *StableFile
	Skipped *SkipInfo
}

// Options configures a Scan call.
type Options struct {
	// StableWindow is how recently a file may have been modified and still
	// be considered possibly-in-progress. Default 2 seconds.
	StableWindow time.Duration
}

const defaultStableWindow = 2 * time.Second

// Scan walks root and yields an Outcome per regular file encountered. The
// scanner is restartable and side-effect-free: it never mutates the
// filesystem it walks.
func Scan(ctx context.Context, root string, opts Options) iter.Seq2[Outcome, error] {
	if opts.StableWindow <= 0 {
		opts.StableWindow = defaultStableWindow
	}

	return func(yield func(Outcome, error) bool) {
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() {
				return nil
			}

			outcome, skip, scanErr := evaluate(path, d, opts)
			if scanErr != nil {
				if !yield(Outcome{}, scanErr) {
					return filepath.SkipAll
				}
				return nil
			}

			relKey, relErr := filepath.Rel(root, path)
			if relErr != nil {
				if !yield(Outcome{}, relErr) {
					return filepath.SkipAll
				}
				return nil
			}
			relKey = filepath.ToSlash(relKey)

			if skip != nil {
				skip.Path = relKey
				if !yield(Outcome{Skipped: skip}, nil) {
					return filepath.SkipAll
				}
				return nil
			}

			outcome.Stable.AbsolutePath = path
			outcome.Stable.RelativeKey = relKey
			if !yield(outcome, nil) {
				return filepath.SkipAll
			}
			return nil
		})

		if walkErr != nil && walkErr != filepath.SkipAll {
			yield(Outcome{}, walkErr)
		}
	}
}

// evaluate applies the stability checks to a single candidate: symlink and
// special-file exclusion, the modification-time window, and (on Linux) the
// open-file-descriptor check. Exactly one of the two non-error return
// values is populated.
func evaluate(path string, d fs.DirEntry, opts Options) (Outcome, *SkipInfo, error) {
	if d.Type()&os.ModeSymlink != 0 {
		return Outcome{}, &SkipInfo{Kind: SkipUnsupported, Detail: "symlink"}, nil
	}

	info, err := d.Info()
	if err != nil {
		return Outcome{}, nil, err
	}

	if mode := info.Mode(); mode&(os.ModeDevice|os.ModeCharDevice|os.ModeSocket|os.ModeNamedPipe) != 0 {
		return Outcome{}, &SkipInfo{Kind: SkipUnsupported, Detail: specialFileKind(mode)}, nil
	}

	if !info.Mode().IsRegular() {
		return Outcome{}, &SkipInfo{Kind: SkipUnsupported, Detail: "non-regular"}, nil
	}

	if time.Since(info.ModTime()) < opts.StableWindow {
		return Outcome{}, &SkipInfo{Kind: SkipRecentlyModified}, nil
	}

	hasWriter, pid, err := hasOpenWriter(path, info)
	if err != nil {
		return Outcome{}, nil, err
	}
	if hasWriter {
		return Outcome{}, &SkipInfo{Kind: SkipOpenByPid, Pid: pid}, nil
	}

	return Outcome{Stable: &StableFile{
		Size:  uint64(info.Size()),
		Mtime: info.ModTime().UTC(),
	}}, nil, nil
}

func specialFileKind(mode os.FileMode) string {
	switch {
	case mode&os.ModeSocket != 0:
		return "socket"
	case mode&os.ModeNamedPipe != 0:
		return "fifo"
	case mode&(os.ModeDevice|os.ModeCharDevice) != 0:
		return "device"
	default:
		return "special"
	}
}
