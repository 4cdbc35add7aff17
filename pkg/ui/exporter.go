package ui

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/ray-log-explorer/pkg/models"
)

// ErrNothingToExport is returned when there is no listing or content to save
var ErrNothingToExport = errors.New("nothing to export")

// Exporter writes listings and downloaded files to the local disk
type Exporter struct {
	dir            string
	lastExportPath string
	now            func() time.Time
}

// NewExporter creates an exporter writing into dir ("" means the working directory)
func NewExporter(dir string) *Exporter {
	if dir == "" {
		dir = "."
	}
	return &Exporter{dir: dir, now: time.Now}
}

// Dir returns the export directory
func (e *Exporter) Dir() string {
	return e.dir
}

// ExportToCSV writes one row per listing entry
func (e *Exporter) ExportToCSV(entries []models.LogEntry, target string) error {
	if len(entries) == 0 {
		return ErrNothingToExport
	}

	file, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"Path", "Type", "Name", "Link", "Download"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, entry := range entries {
		kind := "file"
		if entry.IsDirectory {
			kind = "dir"
		}
		record := []string{entry.Path, kind, entry.DisplayName, entry.NavigationTarget, entry.DownloadReference}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	e.lastExportPath = target
	return nil
}

// listingExport is the JSON document written for a listing
type listingExport struct {
	NodeID     string            `json:"nodeId"`
	Folder     string            `json:"folder"`
	Filter     string            `json:"fileName,omitempty"`
	ExportedAt string            `json:"exportedAt"`
	Entries    []models.LogEntry `json:"entries"`
}

// ExportToJSON writes the listing with its location as a single document
func (e *Exporter) ExportToJSON(state models.NavigationState, entries []models.LogEntry, target string, pretty bool) error {
	if len(entries) == 0 {
		return ErrNothingToExport
	}

	doc := listingExport{
		NodeID:     state.NodeID,
		Folder:     state.Folder,
		Filter:     state.FileName,
		ExportedAt: e.now().Format(time.RFC3339),
		Entries:    entries,
	}

	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(target, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	e.lastExportPath = target
	return nil
}

// ExportToJSONL writes one JSON entry per line
func (e *Exporter) ExportToJSONL(entries []models.LogEntry, target string) error {
	if len(entries) == 0 {
		return ErrNothingToExport
	}

	file, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	for _, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("failed to write line: %w", err)
		}
	}

	e.lastExportPath = target
	return nil
}

// ExportToText writes the bare paths, directories keeping their trailing slash
func (e *Exporter) ExportToText(entries []models.LogEntry, target string) error {
	if len(entries) == 0 {
		return ErrNothingToExport
	}

	var sb strings.Builder
	for _, entry := range entries {
		sb.WriteString(entry.Path)
		sb.WriteString("\n")
	}
	if err := os.WriteFile(target, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	e.lastExportPath = target
	return nil
}

// SaveFile writes downloaded log content under the file's base name
func (e *Exporter) SaveFile(fileName, content string) (string, error) {
	if content == "" {
		return "", ErrNothingToExport
	}
	base := path.Base(strings.TrimSuffix(fileName, "/"))
	if base == "" || base == "." || base == "/" {
		return "", fmt.Errorf("invalid file name %q", fileName)
	}

	target := filepath.Join(e.dir, base)
	if e.FileExists(target) {
		ext := filepath.Ext(base)
		stem := strings.TrimSuffix(base, ext)
		target = filepath.Join(e.dir, fmt.Sprintf("%s_%s%s", stem, e.now().Format("20060102_150405"), ext))
	}
	if err := os.WriteFile(target, []byte(content), 0600); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	e.lastExportPath = target
	return target, nil
}

// GetLastExportPath returns the path of the last export
func (e *Exporter) GetLastExportPath() string {
	return e.lastExportPath
}

// FileExists checks if a file exists
func (e *Exporter) FileExists(target string) bool {
	_, err := os.Stat(target)
	return err == nil
}

// GetDefaultFileName generates a listing export name for the node
func (e *Exporter) GetDefaultFileName(nodeID, format string) string {
	ext := "txt"
	switch format {
	case "csv", "json", "jsonl":
		ext = format
	}

	node := nodeID
	if len(node) > 8 {
		node = node[:8]
	}
	if node == "" {
		node = "cluster"
	}
	return filepath.Join(e.dir, fmt.Sprintf("logs_%s_%s.%s", node, e.now().Format("20060102_150405"), ext))
}
