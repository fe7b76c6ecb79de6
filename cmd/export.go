package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wrapped/internal/formatter"
	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/shared"
	"github.com/desertthunder/wrapped/internal/tasks"
)

// exportRow is the JSON shape of one `export history` entry.
type exportRow struct {
	ID         string    `json:"id"`
	SnapshotID string    `json:"snapshot_id"`
	Title      string    `json:"title"`
	Format     string    `json:"format"`
	Path       string    `json:"path"`
	CreatedAt  time.Time `json:"created_at"`
}

// Export writes the selected snapshots (all by default) to disk and records every written file.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	result, err := r.loadHome(ctx, false)
	if err != nil {
		return err
	}

	snapshots, err := r.selectSnapshots(result.Snapshots, cmd.StringSlice("id"))
	if err != nil {
		return err
	}

	opts := tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
	}
	if r.exports != nil {
		opts.Recorder = r.exports
	}
	if cmd.Bool("covers") {
		opts.CoverURL = func(s models.Snapshot) string { return s.CoverImageURL }
	}

	r.logger.Info("exporting snapshots", "count", len(snapshots), "format", format)
	r.writePlain("Exporting %d Wrapped as %s...\n", len(snapshots), format)

	prog, wait := r.streamProgress()
	res, err := r.engine.BulkExport(ctx, prog, snapshots, opts)
	wait()
	if res == nil {
		return err
	}

	r.writePlainln("✓ Exported %d/%d Wrapped to %s", res.SuccessfulExports, res.TotalSnapshots, res.OutputDirectory)
	for _, s := range res.Results {
		if !s.Success {
			r.writePlain("  ✗ %s: %s\n", s.Title, s.ErrorText)
			continue
		}
		for _, f := range s.Files {
			r.writePlain("  %s\n", f)
		}
	}
	if res.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", res.ManifestPath)
	}

	if err != nil {
		return err
	}
	if res.FailedExports > 0 {
		return fmt.Errorf("%d of %d exports failed", res.FailedExports, res.TotalSnapshots)
	}
	return nil
}

// ExportHistory lists recorded exports, newest first.
func (r *Runner) ExportHistory(ctx context.Context, cmd *cli.Command) error {
	if r.exports == nil {
		return fmt.Errorf("%w: export history not initialized", shared.ErrServiceUnavailable)
	}

	records, err := r.exports.List(map[string]any{"snapshot_id": cmd.String("snapshot")})
	if err != nil {
		return err
	}

	rows := make([]exportRow, len(records))
	for i, rec := range records {
		rows[i] = exportRow{
			ID:         rec.ID(),
			SnapshotID: rec.SnapshotID,
			Title:      rec.Title,
			Format:     rec.Format,
			Path:       rec.Path,
			CreatedAt:  rec.CreatedAt(),
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(rows, true)
	}

	if len(rows) == 0 {
		return r.writePlain("No exports yet.\n")
	}
	for _, row := range rows {
		r.writePlain("%s  %-8s  %s  %s\n", row.CreatedAt.Local().Format("2006-01-02 15:04"), row.Format, row.Title, row.Path)
	}
	return nil
}

// selectSnapshots picks snapshots by id, keeping the requested order. No ids selects all.
func (r *Runner) selectSnapshots(all []models.Snapshot, ids []string) ([]models.Snapshot, error) {
	if len(ids) == 0 {
		if len(all) == 0 {
			return nil, fmt.Errorf("%w: no Wrapped to export", shared.ErrSnapshotNotFound)
		}
		return all, nil
	}

	selected := make([]models.Snapshot, 0, len(ids))
	for _, id := range ids {
		s, err := r.collection.Get(id)
		if err != nil {
			return nil, err
		}
		selected = append(selected, s)
	}
	return selected, nil
}
