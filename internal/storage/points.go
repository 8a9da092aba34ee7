package storage

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tabimport/internal/ddl"
	"tabimport/internal/table"
	"tabimport/internal/transformer"
)

// DefaultBatchSize is used by WriteTable when batchSize <= 0.
const DefaultBatchSize = 1000

// PointRow flattens one table row into insert order: run id, index, the
// coordinate, then each attribute value.
func PointRow(runID string, i int, p table.Point, row transformer.Row) []any {
	out := make([]any, 0, len(ddl.PointColumns)+len(row.V))
	out = append(out, runID, int64(i), p.X, p.Y, p.Z)
	for _, v := range row.V {
		out = append(out, v.Any())
	}
	return out
}

// WriteTable streams every row of t into repo through LoadBatches. The table
// must be finalized. It returns the number of rows the backend reported.
func WriteTable(ctx context.Context, repo Repository, t *table.Table, runID string, batchSize int) (int64, error) {
	if !t.Finalized() {
		return 0, fmt.Errorf("storage: table is not finalized")
	}
	cols, err := ddl.Columns(t.Schema())
	if err != nil {
		return 0, err
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	g, gctx := errgroup.WithContext(ctx)
	rows := make(chan []any, batchSize)

	g.Go(func() error {
		defer close(rows)
		var err error
		t.Each(func(i int, p table.Point, row transformer.Row) bool {
			select {
			case rows <- PointRow(runID, i, p, row):
				return true
			case <-gctx.Done():
				err = gctx.Err()
				return false
			}
		})
		return err
	})

	var total int64
	g.Go(func() error {
		st, err := LoadBatches(gctx, "run "+runID, cols, rows, batchSize, repo.CopyFrom)
		total = st.Rows
		return err
	})

	if err := g.Wait(); err != nil {
		return total, err
	}
	return total, nil
}
