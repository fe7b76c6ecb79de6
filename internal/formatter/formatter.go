// package formatter provides functions to export Wrapped snapshots to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/shared"
)

// Format names an export file format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

// Formats lists the supported export formats.
func Formats() []Format {
	return []Format{FormatCSV, FormatMarkdown, FormatText, FormatJSON}
}

// ParseFormat converts a flag value into a [Format]. "md" and "txt" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
}

// ExportToCSV converts a snapshot's artists to CSV format with columns: Rank, Artist, Top Song, Genres, Preview URL
func ExportToCSV(snapshot *models.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Rank", "Artist", "Top Song", "Genres", "Preview URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, artist := range snapshot.Artists {
		record := []string{
			strconv.Itoa(i + 1),
			artist.Name,
			artist.TopSong,
			strings.Join(artist.Genres, ";"),
			artist.PreviewURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// TracksToCSV converts a snapshot's tracks to CSV format with columns: Rank, ID, Title, Artists, Album
func TracksToCSV(snapshot *models.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Rank", "ID", "Title", "Artists", "Album"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range snapshot.Tracks {
		record := []string{strconv.Itoa(i + 1), track.ID, track.Name, strings.Join(track.Artists, ", "), track.Album}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown converts a snapshot to Markdown format with optional cover image
func ExportToMarkdown(snapshot *models.Snapshot, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", snapshot.Title))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	if top, ok := snapshot.TopArtist(); ok {
		buf.WriteString(fmt.Sprintf("**Top Artist**: %s\n", top.Name))
	}
	buf.WriteString(fmt.Sprintf("**Artists**: %d\n", len(snapshot.Artists)))
	buf.WriteString(fmt.Sprintf("**Visibility**: %s\n\n", visibility(snapshot.Public)))

	buf.WriteString("## Artists\n\n")
	for i, artist := range snapshot.Artists {
		songPart := ""
		if artist.TopSong != "" {
			songPart = fmt.Sprintf(" (most listened to: %s)", artist.TopSong)
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s\n", i+1, artist.Name, songPart))
		if len(artist.Genres) > 0 {
			buf.WriteString(fmt.Sprintf("   - Genres: %s\n", strings.Join(artist.Genres, ", ")))
		}
		if artist.PreviewURL != "" {
			buf.WriteString(fmt.Sprintf("   - [Preview](%s)\n", artist.PreviewURL))
		}
	}

	if len(snapshot.Tracks) > 0 {
		buf.WriteString("\n## Tracks\n\n")
		for i, track := range snapshot.Tracks {
			buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, strings.Join(track.Artists, ", "), track.Name))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a snapshot to plain text format
func ExportToText(snapshot *models.Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Wrapped: %s\n", snapshot.Title))
	buf.WriteString(fmt.Sprintf("Artists: %d\n\n", len(snapshot.Artists)))

	for i, artist := range snapshot.Artists {
		if artist.TopSong != "" {
			buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, artist.Name, artist.TopSong))
		} else {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, artist.Name))
		}
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToJSON encodes the full snapshot, artists and tracks included.
func ToJSON(snapshot *models.Snapshot) ([]byte, error) {
	return shared.MarshalJSON(snapshot, true)
}

// ToMetadataJSON generates a JSON representation of snapshot metadata (without artists or tracks)
func ToMetadataJSON(snapshot *models.Snapshot) ([]byte, error) {
	meta := struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Image       string `json:"image"`
		Public      bool   `json:"public"`
		ArtistCount int    `json:"artist_count"`
		TrackCount  int    `json:"track_count"`
	}{snapshot.ID, snapshot.Title, snapshot.CoverImageURL, snapshot.Public, len(snapshot.Artists), len(snapshot.Tracks)}
	return shared.MarshalJSON(meta, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	ArtistsFile  string
	TracksFile   string
	MetadataFile string
}

// Files lists every written path.
func (r *CSVExportResult) Files() []string {
	files := []string{r.ArtistsFile}
	if r.TracksFile != "" {
		files = append(files, r.TracksFile)
	}
	return append(files, r.MetadataFile)
}

// WriteCSVExport exports a snapshot to CSV format with accompanying metadata JSON file.
//
// Defaults to the snapshot ID as the base filename & creates {base}_artists.csv, {base}_metadata.json
// and, when the snapshot carries tracks, {base}_tracks.csv
func WriteCSVExport(snapshot *models.Snapshot, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = baseName(snapshot)
	}

	csvData, err := ExportToCSV(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	result := &CSVExportResult{ArtistsFile: baseFilepath + "_artists.csv"}
	if err := os.WriteFile(result.ArtistsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	if len(snapshot.Tracks) > 0 {
		tracksData, err := TracksToCSV(snapshot)
		if err != nil {
			return nil, fmt.Errorf("failed to generate CSV: %w", err)
		}
		result.TracksFile = baseFilepath + "_tracks.csv"
		if err := os.WriteFile(result.TracksFile, tracksData, 0644); err != nil {
			return nil, fmt.Errorf("failed to write CSV file: %w", err)
		}
	}

	metadataJSON, err := ToMetadataJSON(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	result.MetadataFile = baseFilepath + "_metadata.json"
	if err := os.WriteFile(result.MetadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return result, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a snapshot to Markdown format in a dedicated directory.
//
// Directory name defaults to the snapshot ID.
// The imageURL parameter is optional - if provided, attempts to download the cover image.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(snapshot *models.Snapshot, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = baseName(snapshot)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(snapshot, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a snapshot to plain text format.
//
// Defaults to {snapshot.ID}_wrapped.txt as the filename.
func WriteTextExport(snapshot *models.Snapshot, path string) (string, error) {
	if path == "" {
		path = baseName(snapshot) + "_wrapped.txt"
	}

	textData, err := ExportToText(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteJSONExport writes the full snapshot as indented JSON.
//
// Defaults to {snapshot.ID}_wrapped.json as the filename.
func WriteJSONExport(snapshot *models.Snapshot, path string) (string, error) {
	if path == "" {
		path = baseName(snapshot) + "_wrapped.json"
	}

	data, err := ToJSON(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}
	return path, nil
}

// Write exports the snapshot in the given format and returns the written paths, primary file first.
//
// For Markdown, path is the output directory and coverURL, when set, is downloaded next to it.
func Write(snapshot *models.Snapshot, format Format, path, coverURL string) ([]string, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("%w: snapshot is required", shared.ErrMissingArgument)
	}

	switch format {
	case FormatCSV:
		result, err := WriteCSVExport(snapshot, path)
		if err != nil {
			return nil, err
		}
		return result.Files(), nil
	case FormatMarkdown:
		result, err := WriteMarkdownExport(snapshot, path, coverURL)
		if err != nil {
			return nil, err
		}
		files := make([]string, 0, len(result.Files))
		for i := len(result.Files) - 1; i >= 0; i-- {
			files = append(files, result.Files[i])
		}
		return files, nil
	case FormatText:
		written, err := WriteTextExport(snapshot, path)
		if err != nil {
			return nil, err
		}
		return []string{written}, nil
	case FormatJSON:
		written, err := WriteJSONExport(snapshot, path)
		if err != nil {
			return nil, err
		}
		return []string{written}, nil
	}
	return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
}

func baseName(snapshot *models.Snapshot) string {
	if snapshot.ID == "" {
		return "snapshot"
	}
	return snapshot.ID
}

func visibility(public bool) string {
	if public {
		return "Public"
	}
	return "Private"
}
