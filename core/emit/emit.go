// Package emit prints registered source files and writes them below an
// output directory.
package emit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/max-scopp/ts-flattered/core/builder"
	"github.com/max-scopp/ts-flattered/core/cache"
	"github.com/max-scopp/ts-flattered/core/diagnostics"
	"github.com/max-scopp/ts-flattered/core/logger"
	"github.com/max-scopp/ts-flattered/core/pathutil"
	"github.com/max-scopp/ts-flattered/core/tsast"
)

type Options struct {
	Print tsast.PrintOptions
	// Concurrency bounds the files printed and written at once. Zero means
	// no limit.
	Concurrency int
	// Generations, when set, skips files whose output did not change.
	Generations *cache.GenerationCache
	// StripMarkers removes diagnostics marker comments from the output.
	StripMarkers bool
	// CompareDisk skips files whose output already matches the file on disk.
	CompareDisk bool
}

type Result struct {
	Written []string
	Skipped []string
	// Failed maps a file name to why it could not be emitted. A failure
	// comment is written in place of the content when the path is usable.
	Failed map[string]error
}

func (r *Result) OK() bool { return len(r.Failed) == 0 }

// Err joins every per-file failure into one error, nil when all succeeded.
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}
	names := make([]string, 0, len(r.Failed))
	for n := range r.Failed {
		names = append(names, n)
	}
	sort.Strings(names)
	msgs := make([]string, 0, len(names))
	for _, n := range names {
		msgs = append(msgs, r.Failed[n].Error())
	}
	return fmt.Errorf("failed to emit %d files: %s", len(names), strings.Join(msgs, "; "))
}

// FailureComment is the content written in place of a file that failed to
// print.
func FailureComment(fileName string, err error) string {
	return fmt.Sprintf("// ts-flattered: failed to emit %s: %s\n", fileName, strings.ReplaceAll(err.Error(), "\n", " "))
}

// WriteAll prints every unit and writes it to outDir under its file name.
// Files are independent: one failing does not stop the others. The returned
// error is only set when ctx is canceled.
func WriteAll(ctx context.Context, outDir string, units []*builder.SourceFile, opts Options) (*Result, error) {
	res := &Result{Failed: make(map[string]error)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for _, unit := range units {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			name := unit.FileName()
			written, err := writeOne(outDir, unit, opts)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				res.Failed[name] = err
				logger.Error("Failed to emit %s: %v", name, err)
			case written:
				res.Written = append(res.Written, name)
			default:
				res.Skipped = append(res.Skipped, name)
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	sort.Strings(res.Written)
	sort.Strings(res.Skipped)
	logger.Info("Emitted %d files to %s (%d unchanged, %d failed)", len(res.Written), outDir, len(res.Skipped), len(res.Failed))
	if err != nil {
		return res, fmt.Errorf("failed to emit files: %w", err)
	}
	return res, nil
}

// OutputPath is where a unit called fileName is written below outDir.
func OutputPath(outDir, fileName string) (string, error) {
	name := pathutil.Normalize(fileName)
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, "../") || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: cannot write %q below %s", pathutil.ErrEscapesRoot, fileName, outDir)
	}
	return filepath.Join(outDir, filepath.FromSlash(name)), nil
}

func writeOne(outDir string, unit *builder.SourceFile, opts Options) (bool, error) {
	target, err := OutputPath(outDir, unit.FileName())
	if err != nil {
		return false, err
	}

	text, printErr := unit.Print(opts.Print)
	if printErr != nil {
		text = FailureComment(unit.FileName(), printErr)
	} else if opts.StripMarkers {
		text = diagnostics.StripMarkers(text)
	}

	if printErr == nil && opts.Generations != nil {
		if needs, _ := opts.Generations.NeedsWrite(target, text); !needs {
			return false, nil
		}
	}
	if printErr == nil && opts.CompareDisk {
		if existing, err := os.ReadFile(target); err == nil && string(existing) == text {
			if opts.Generations != nil {
				opts.Generations.MarkWritten(target, text)
			}
			logger.Debug("Unchanged on disk: %s", target)
			return false, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return false, fmt.Errorf("failed to create directory for %s: %w", target, err)
	}
	if err := os.WriteFile(target, []byte(text), 0o644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", target, err)
	}
	if printErr != nil {
		if opts.Generations != nil {
			opts.Generations.Invalidate(target)
		}
		return false, printErr
	}
	if opts.Generations != nil {
		opts.Generations.MarkWritten(target, text)
	}
	logger.Debug("Wrote %s", target)
	return true, nil
}
