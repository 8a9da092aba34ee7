// Package storage holds the backend-agnostic side of SQL rendering: the
// Repository contract and its factory, the DDL registry, and the batched
// writer that moves a finished point table into a backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// CopyFn is a backend's bulk insert: rows are aligned to columns and the
// returned count is what the backend reports as written.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadStats summarizes one LoadBatches call.
type LoadStats struct {
	Rows    int64
	Batches int
	Elapsed time.Duration
}

// LoadBatches groups the rows arriving on in into batches of batchSize and
// hands each batch to copyFn. label only prefixes log lines. It stops at the
// first copy error or when ctx is done; Rows counts what was written until
// then.
func LoadBatches(ctx context.Context, label string, columns []string, in <-chan []any, batchSize int, copyFn CopyFn) (LoadStats, error) {
	var st LoadStats
	switch {
	case batchSize <= 0:
		return st, fmt.Errorf("storage: batch size must be > 0, got %d", batchSize)
	case copyFn == nil:
		return st, errors.New("storage: nil copy function")
	}

	start := time.Now()
	pending := make([][]any, 0, batchSize)

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, pending)
		st.Rows += n
		size := len(pending)
		pending = pending[:0]
		if err != nil {
			log.Printf("loader: %s: batch %d failed after %d of %d rows: %v", label, st.Batches+1, n, size, err)
			return err
		}
		st.Batches++
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			st.Elapsed = time.Since(start)
			return st, ctx.Err()

		case row, ok := <-in:
			if !ok {
				err := flush()
				st.Elapsed = time.Since(start)
				if err == nil {
					log.Printf("loader: %s: rows=%d batches=%d elapsed=%s",
						label, st.Rows, st.Batches, st.Elapsed.Truncate(time.Millisecond))
				}
				return st, err
			}
			pending = append(pending, row)
			if len(pending) == batchSize {
				if err := flush(); err != nil {
					st.Elapsed = time.Since(start)
					return st, err
				}
			}
		}
	}
}
