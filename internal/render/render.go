// Package render hands a finished import table to its configured output: a
// PLY point cloud on disk or a SQL table through the storage factory.
package render

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tabimport/internal/config"
	"tabimport/internal/ddl"
	"tabimport/internal/metrics"
	"tabimport/internal/render/ply"
	"tabimport/internal/storage"
	_ "tabimport/internal/storage/all" // register SQL backends
	"tabimport/internal/table"
)

// Target describes where a table was rendered.
type Target struct {
	Kind     string
	Location string
	Rows     int64
}

// Enabled reports whether out names a real sink.
func Enabled(out config.Output) bool {
	k := strings.TrimSpace(out.Kind)
	return k != "" && k != "none"
}

// Render writes t to out. job and runID label metrics, logs and SQL rows.
// The table must be finalized, even for a disabled output, which is
// otherwise a no-op.
func Render(ctx context.Context, out config.Output, job, runID string, t *table.Table) (Target, error) {
	if t == nil || !t.Finalized() {
		return Target{}, errors.New("render: table is not finalized")
	}
	if !Enabled(out) {
		return Target{Kind: "none"}, nil
	}

	start := time.Now()
	var (
		tgt Target
		err error
	)
	switch out.Kind {
	case "ply":
		tgt, err = renderPLY(out.Path, job, runID, t)
	default:
		tgt, err = renderSQL(ctx, out, runID, t)
	}
	elapsed := time.Since(start)

	metrics.RecordStep(job, "render", err, elapsed)
	if err != nil {
		log.Printf("render: job=%s kind=%s failed: %v", job, out.Kind, err)
		return Target{}, err
	}
	metrics.RecordRow(job, metrics.KindRendered, tgt.Rows)
	log.Printf("render: job=%s kind=%s target=%s rows=%d elapsed=%s",
		job, tgt.Kind, tgt.Location, tgt.Rows, elapsed.Truncate(time.Millisecond))
	return tgt, nil
}

// renderPLY writes to a temporary file next to path and renames it into
// place, so a failed render never leaves a truncated cloud behind.
func renderPLY(path, job, runID string, t *table.Table) (Target, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tabimport-*.ply")
	if err != nil {
		return Target{}, fmt.Errorf("render: ply: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := ply.Write(tmp, t, fmt.Sprintf("tabimport job=%s run=%s", job, runID))
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return Target{}, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return Target{}, fmt.Errorf("render: ply: %w", err)
	}
	return Target{Kind: "ply", Location: path, Rows: int64(n)}, nil
}

func renderSQL(ctx context.Context, out config.Output, runID string, t *table.Table) (Target, error) {
	s := t.Schema()
	if _, err := ddl.Columns(s); err != nil {
		return Target{}, fmt.Errorf("render: %w", err)
	}

	repo, err := storage.New(ctx, storage.Config{Kind: out.Kind, DSN: out.DB.DSN, Table: out.DB.Table})
	if err != nil {
		return Target{}, fmt.Errorf("render: open %s: %w", out.Kind, err)
	}
	defer repo.Close()

	if out.DB.AutoCreateTable {
		if err := storage.EnsureTable(ctx, out.Kind, repo, out.DB.Table, s); err != nil {
			return Target{}, fmt.Errorf("render: create table: %w", err)
		}
	}

	n, err := storage.WriteTable(ctx, repo, t, runID, storage.DefaultBatchSize)
	if err != nil {
		return Target{}, fmt.Errorf("render: write %s: %w", out.DB.Table, err)
	}
	return Target{Kind: out.Kind, Location: out.DB.Table, Rows: n}, nil
}
