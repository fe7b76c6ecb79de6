package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/wrapped/internal/formatter"
	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/shared"
)

// ExportRecorder persists a row for every written export. Satisfied by repositories.ExportRepository.
type ExportRecorder interface {
	Create(rec *models.ExportRecord) error
}

// BulkExportOpts contains configuration for bulk snapshot exports.
type BulkExportOpts struct {
	Format     formatter.Format             // Export format (default: json)
	OutputDir  string                       // Base output directory (default: wrapped_export_{epoch})
	NumWorkers int                          // Concurrent workers (default: 4)
	CoverURL   func(models.Snapshot) string // Cover to download for Markdown exports; nil skips covers
	Recorder   ExportRecorder               // Optional export history
}

// SnapshotExportResult is the outcome for a single snapshot.
type SnapshotExportResult struct {
	SnapshotID string   `json:"snapshot_id"`
	Title      string   `json:"title"`
	Success    bool     `json:"success"`
	Files      []string `json:"files,omitempty"`
	Error      error    `json:"-"`
	ErrorText  string   `json:"error,omitempty"`
}

// BulkExportResult summarizes a [WrappedEngine.BulkExport] run.
type BulkExportResult struct {
	TotalSnapshots    int                    `json:"total_snapshots"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	Format            formatter.Format       `json:"format"`
	ExportedAt        time.Time              `json:"exported_at"`
	Results           []SnapshotExportResult `json:"results"`
	ManifestPath      string                 `json:"-"`
}

// BulkExport writes every snapshot to opts.OutputDir concurrently and finishes with a manifest file.
//
// Partial failures are reported per snapshot and do not stop the run.
func (e *WrappedEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	snapshots []models.Snapshot,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if len(snapshots) == 0 {
		return nil, fmt.Errorf("%w: no snapshots to export", shared.ErrMissingArgument)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("wrapped_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalSnapshots:  len(snapshots),
		OutputDirectory: opts.OutputDir,
		Format:          opts.Format,
		ExportedAt:      time.Now().UTC(),
		Results:         make([]SnapshotExportResult, 0, len(snapshots)),
	}

	jobs := make(chan models.Snapshot, len(snapshots))
	results := make(chan SnapshotExportResult, len(snapshots))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	for i, s := range snapshots {
		jobs <- s
		e.sendProgress(prog, exportingSnapshotUpdate(i+1, len(snapshots), s.Title))
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(snapshots), res.Title, len(res.Files)))
		} else {
			result.FailedExports++
			res.ErrorText = res.Error.Error()
			e.sendProgress(prog, exportFailedUpdate(completed, len(snapshots), res.Title, res.Error))
		}
		result.Results = append(result.Results, res)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err == nil {
		err = os.WriteFile(manifestPath, data, 0644)
	}
	if err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// exportWorker is a worker goroutine that exports snapshots from the jobs channel.
func (e *WrappedEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan models.Snapshot,
	results chan<- SnapshotExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for s := range jobs {
		if err := ctx.Err(); err != nil {
			results <- SnapshotExportResult{SnapshotID: s.ID, Title: s.Title, Error: err}
			continue
		}
		results <- e.exportSnapshot(s, opts)
	}
}

func (e *WrappedEngine) exportSnapshot(s models.Snapshot, opts BulkExportOpts) SnapshotExportResult {
	result := SnapshotExportResult{SnapshotID: s.ID, Title: s.Title}

	var path, cover string
	switch opts.Format {
	case formatter.FormatCSV, formatter.FormatMarkdown:
		path = filepath.Join(opts.OutputDir, s.ID)
	case formatter.FormatText:
		path = filepath.Join(opts.OutputDir, s.ID+"_wrapped.txt")
	default:
		path = filepath.Join(opts.OutputDir, s.ID+".json")
	}
	if opts.Format == formatter.FormatMarkdown && opts.CoverURL != nil {
		cover = opts.CoverURL(s)
	}

	files, err := formatter.Write(&s, opts.Format, path, cover)
	if err != nil {
		result.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return result
	}
	result.Files = files
	result.Success = true

	if opts.Recorder != nil {
		rec := models.NewExportRecord(s.ID, s.Title, string(opts.Format), files[0])
		if err := opts.Recorder.Create(rec); err != nil {
			e.logger.Warn("failed to record export", "snapshot", s.ID, "error", err)
		}
	}
	return result
}
