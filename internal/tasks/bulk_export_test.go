package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/wrapped/internal/formatter"
	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/shared"
)

type mockRecorder struct {
	mu      sync.Mutex
	records []*models.ExportRecord
	err     error
}

func (m *mockRecorder) Create(rec *models.ExportRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

func exportSnapshots(n int) []models.Snapshot {
	snaps := make([]models.Snapshot, n)
	for i := range snaps {
		snaps[i] = models.Snapshot{
			ID:    fmt.Sprintf("snap%d", i+1),
			Title: fmt.Sprintf("Wrapped %d", i+1),
			Artists: []models.Artist{
				{Name: "Artist 1", TopSong: "Song 1"},
				{Name: "Artist 2"},
			},
		}
	}
	return snaps
}

func TestBulkExport_SuccessfulExport(t *testing.T) {
	tests := []struct {
		name           string
		format         formatter.Format
		count          int
		validateResult func(t *testing.T, result *BulkExportResult, tempDir string)
	}{
		{
			name:   "single snapshot json export",
			format: formatter.FormatJSON,
			count:  1,
			validateResult: func(t *testing.T, result *BulkExportResult, tempDir string) {
				if len(result.Results[0].Files) != 1 {
					t.Errorf("expected 1 file, got %d", len(result.Results[0].Files))
				}
				jsonPath := filepath.Join(tempDir, "snap1.json")
				if _, err := os.Stat(jsonPath); os.IsNotExist(err) {
					t.Errorf("JSON file not created at %s", jsonPath)
				}
			},
		},
		{
			name:   "multiple snapshots csv export",
			format: formatter.FormatCSV,
			count:  3,
			validateResult: func(t *testing.T, result *BulkExportResult, tempDir string) {
				for _, res := range result.Results {
					if len(res.Files) != 2 {
						t.Errorf("CSV export without tracks should create 2 files, got %d", len(res.Files))
					}
				}
			},
		},
		{
			name:   "text export",
			format: formatter.FormatText,
			count:  2,
			validateResult: func(t *testing.T, result *BulkExportResult, tempDir string) {
				txtPath := filepath.Join(tempDir, "snap2_wrapped.txt")
				if _, err := os.Stat(txtPath); os.IsNotExist(err) {
					t.Errorf("text file not created at %s", txtPath)
				}
			},
		},
		{
			name:   "markdown export",
			format: formatter.FormatMarkdown,
			count:  1,
			validateResult: func(t *testing.T, result *BulkExportResult, tempDir string) {
				readme := filepath.Join(tempDir, "snap1", "README.md")
				if _, err := os.Stat(readme); os.IsNotExist(err) {
					t.Errorf("README not created at %s", readme)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			engine := NewWrappedEngine(nil, nil, nil)

			result, err := engine.BulkExport(context.Background(), nil, exportSnapshots(tt.count), BulkExportOpts{
				Format:     tt.format,
				OutputDir:  tempDir,
				NumWorkers: 2,
			})
			if err != nil {
				t.Fatalf("BulkExport failed: %v", err)
			}

			if result.TotalSnapshots != tt.count {
				t.Errorf("expected %d total, got %d", tt.count, result.TotalSnapshots)
			}
			if result.SuccessfulExports != tt.count {
				t.Errorf("expected %d successful, got %d", tt.count, result.SuccessfulExports)
			}
			if result.FailedExports != 0 {
				t.Errorf("expected 0 failed, got %d", result.FailedExports)
			}
			if len(result.Results) != tt.count {
				t.Errorf("expected %d results, got %d", tt.count, len(result.Results))
			}

			tt.validateResult(t, result, tempDir)
		})
	}
}

func TestBulkExport_Manifest(t *testing.T) {
	tempDir := t.TempDir()
	engine := NewWrappedEngine(nil, nil, nil)

	result, err := engine.BulkExport(context.Background(), nil, exportSnapshots(2), BulkExportOpts{
		Format:    formatter.FormatText,
		OutputDir: tempDir,
	})
	if err != nil {
		t.Fatalf("BulkExport failed: %v", err)
	}

	if result.ManifestPath != filepath.Join(tempDir, "export_manifest.json") {
		t.Errorf("unexpected manifest path %q", result.ManifestPath)
	}

	data, err := os.ReadFile(result.ManifestPath)
	if err != nil {
		t.Fatalf("failed to read manifest: %v", err)
	}

	var manifest struct {
		Total   int    `json:"total_snapshots"`
		Success int    `json:"successful_exports"`
		Format  string `json:"format"`
		Results []struct {
			SnapshotID string   `json:"snapshot_id"`
			Files      []string `json:"files"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	if manifest.Total != 2 || manifest.Success != 2 || manifest.Format != "text" {
		t.Errorf("unexpected manifest: %+v", manifest)
	}
	if len(manifest.Results) != 2 {
		t.Errorf("expected 2 manifest results, got %d", len(manifest.Results))
	}
}

func TestBulkExport_Recorder(t *testing.T) {
	t.Run("records each export", func(t *testing.T) {
		recorder := &mockRecorder{}
		engine := NewWrappedEngine(nil, nil, nil)

		_, err := engine.BulkExport(context.Background(), nil, exportSnapshots(3), BulkExportOpts{
			Format:    formatter.FormatJSON,
			OutputDir: t.TempDir(),
			Recorder:  recorder,
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}

		if len(recorder.records) != 3 {
			t.Fatalf("expected 3 records, got %d", len(recorder.records))
		}
		for _, rec := range recorder.records {
			if rec.Format != "json" || !strings.HasSuffix(rec.Path, rec.SnapshotID+".json") {
				t.Errorf("unexpected record: %+v", rec)
			}
		}
	})

	t.Run("recorder failure does not fail export", func(t *testing.T) {
		recorder := &mockRecorder{err: errors.New("disk full")}
		engine := NewWrappedEngine(nil, nil, nil)

		result, err := engine.BulkExport(context.Background(), nil, exportSnapshots(1), BulkExportOpts{
			OutputDir: t.TempDir(),
			Recorder:  recorder,
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		if result.SuccessfulExports != 1 {
			t.Errorf("expected export to succeed, got %+v", result)
		}
	})
}

func TestBulkExport_PartialFailure(t *testing.T) {
	tempDir := t.TempDir()
	blocker := filepath.Join(tempDir, "snap2")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0644); err != nil {
		t.Fatalf("failed to create blocker: %v", err)
	}

	engine := NewWrappedEngine(nil, nil, nil)
	prog := make(chan ProgressUpdate, 20)

	result, err := engine.BulkExport(context.Background(), prog, exportSnapshots(3), BulkExportOpts{
		Format:    formatter.FormatMarkdown,
		OutputDir: tempDir,
	})
	if err != nil {
		t.Fatalf("BulkExport failed: %v", err)
	}

	if result.SuccessfulExports != 2 || result.FailedExports != 1 {
		t.Errorf("expected 2 successes and 1 failure, got %+v", result)
	}
	for _, res := range result.Results {
		if res.SnapshotID == "snap2" {
			if res.Success || res.Error == nil || res.ErrorText == "" {
				t.Errorf("expected snap2 to fail, got %+v", res)
			}
		}
	}

	close(prog)
	var failed bool
	for u := range prog {
		if u.Phase != ExportSnapshot {
			t.Errorf("unexpected phase %s", u.Phase)
		}
		if strings.Contains(u.Message, "✗") {
			failed = true
		}
	}
	if !failed {
		t.Error("expected a failure progress update")
	}
}

func TestBulkExport_Errors(t *testing.T) {
	engine := NewWrappedEngine(nil, nil, nil)

	t.Run("no snapshots", func(t *testing.T) {
		_, err := engine.BulkExport(context.Background(), nil, nil, BulkExportOpts{OutputDir: t.TempDir()})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("output directory is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, nil, 0644); err != nil {
			t.Fatal(err)
		}

		_, err := engine.BulkExport(context.Background(), nil, exportSnapshots(1), BulkExportOpts{OutputDir: filepath.Join(file, "out")})
		if err == nil {
			t.Error("expected error creating output directory")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := engine.BulkExport(ctx, nil, exportSnapshots(2), BulkExportOpts{OutputDir: t.TempDir()})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if result == nil || result.FailedExports != 2 {
			t.Errorf("expected every export to fail, got %+v", result)
		}
	})
}
