package timeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/roach88/trainaudit/internal/snapshot"
)

// DefaultPattern matches the engine's weekly snapshot files.
const DefaultPattern = "week_*.json"

// Error codes shared with the CLI.
const (
	ErrCodeNoFiles   = "E003" // No snapshot files found
	ErrCodeNotFound  = "E005" // Path not found
	ErrCodeMalformed = "E201" // Snapshot failed to parse
	ErrCodeWeekOrder = "E202" // Week numbers out of order
	ErrCodeRead      = "E203" // File read error
	ErrCodePattern   = "E204" // Bad file pattern
)

// LoadError is a fatal problem loading a snapshot directory.
type LoadError struct {
	Code    string
	Message string
	Path    string
	Err     error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader discovers and parses weekly snapshots from a directory.
type Loader struct {
	Pattern string              // glob for snapshot files; DefaultPattern if empty
	Scope   snapshot.BlockScope // block aggregation scope
	Logger  *slog.Logger
}

// Load reads every snapshot matching the pattern in lexicographic file order.
// Any unreadable or malformed file aborts the whole load: an audit must not
// silently drop a week.
func (l *Loader) Load(dir string) (*Timeline, error) {
	logger := l.logger()

	files, err := FindSnapshotFiles(dir, l.pattern())
	if err != nil {
		return nil, err
	}
	logger.Debug("snapshot files discovered", "dir", dir, "count", len(files))

	records := make([]*snapshot.Record, 0, len(files))
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeRead, Message: "cannot read snapshot", Path: path, Err: err}
		}

		rec, err := snapshot.Parse(raw, snapshot.Options{Scope: l.Scope, Source: filepath.Base(path)})
		if err != nil {
			code := ErrCodeMalformed
			if !errors.Is(err, snapshot.ErrMalformedSnapshot) {
				code = ErrCodeRead
			}
			return nil, &LoadError{Code: code, Message: "cannot parse snapshot", Path: path, Err: err}
		}

		if rec.BlockCount > 1 {
			logger.Warn("snapshot nests several week blocks",
				"week", rec.Week, "blocks", rec.BlockCount, "scope", string(l.scope()))
		}
		logger.Debug("week parsed", "week", rec.Week, "file", rec.Source, "digest", rec.Digest[:12])
		records = append(records, rec)
	}

	tl, err := New(records)
	if err != nil {
		var orderErr *OrderError
		if errors.As(err, &orderErr) {
			return nil, &LoadError{Code: ErrCodeWeekOrder, Message: "snapshot files are not in week order", Path: dir, Err: err}
		}
		return nil, err
	}

	logger.Info("timeline loaded", "weeks", tl.Len(), "digest", tl.Digest()[:12])
	return tl, nil
}

func (l *Loader) pattern() string {
	if l.Pattern == "" {
		return DefaultPattern
	}
	return l.Pattern
}

func (l *Loader) scope() snapshot.BlockScope {
	if l.Scope == "" {
		return snapshot.BlockScopeAll
	}
	return l.Scope
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l.Logger
}

// FindSnapshotFiles returns regular files in dir matching pattern, sorted
// lexicographically.
func FindSnapshotFiles(dir, pattern string) ([]string, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("snapshot directory not found: %s", dir), Path: dir}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "error accessing snapshot directory", Path: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir), Path: dir}
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, &LoadError{Code: ErrCodePattern, Message: fmt.Sprintf("invalid pattern %q", pattern), Path: dir, Err: err}
	}

	files := matches[:0]
	for _, m := range matches {
		if fi, err := os.Stat(m); err == nil && fi.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no snapshot files matching %q in %s", pattern, dir), Path: dir}
	}

	sort.Strings(files)
	return files, nil
}
