// Package file is the local side of an import: input files on disk and the
// job list files that name several job configs at once.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local reads one file from disk. It holds no open handle, so one value
// may be opened by several imports at once.
type Local struct{ path string }

// NewLocal binds a Local to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path is the configured path; its extension selects the format.
func (l *Local) Path() string { return l.path }

// Name is the base name without its last extension, so
// /data/towns.2024.csv becomes towns.2024.
func (l *Local) Name() string {
	base := filepath.Base(l.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Open returns the file positioned at its first byte. Errors keep the
// *PathError so errors.Is(err, fs.ErrNotExist) works.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("file: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("file: %w", err)
	}
	if st.IsDir() {
		f.Close()
		return nil, fmt.Errorf("file: %s is a directory", l.path)
	}
	adviseSequential(f)
	return f, nil
}
