// Package datasource is the input side of an import: something that can be
// opened as a byte stream. Concrete sources live in file and httpds.
package datasource

import (
	"context"
	"io"
)

// Source hands out a fresh stream on every Open. The caller owns the stream
// and must close it.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Located is a Source that can describe where it reads from. Path is what
// format inference looks at (a file path, or the path part of a URL); Name
// is the job name used when none is configured.
type Located interface {
	Source
	Path() string
	Name() string
}
