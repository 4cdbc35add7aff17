// Package logfiles turns raw listing paths into display entries.
package logfiles

import (
	"sort"
	"strings"

	"github.com/user/ray-log-explorer/pkg/models"
	"github.com/user/ray-log-explorer/pkg/nav"
)

// DownloadRefFunc builds a download reference for a file on a node
type DownloadRefFunc func(nodeID, filename string, maxLines int) string

// Classifier builds LogEntry lists for one node
type Classifier struct {
	nodeID      string
	downloadRef DownloadRefFunc
}

// NewClassifier creates a classifier for the given node.
// downloadRef may be nil, in which case files get no download reference.
func NewClassifier(nodeID string, downloadRef DownloadRefFunc) *Classifier {
	return &Classifier{
		nodeID:      nodeID,
		downloadRef: downloadRef,
	}
}

// Flatten merges every group's paths into one pool, keeping the first
// occurrence of a path that several groups report.
func Flatten(groups map[string][]string) []string {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := map[string]bool{}
	paths := []string{}
	for _, name := range names {
		for _, p := range groups[name] {
			if seen[p] {
				continue
			}
			seen[p] = true
			paths = append(paths, p)
		}
	}
	return paths
}

// Classify sorts raw paths byte-wise and builds one entry per path.
// currentFolder is the listing's folder ("" at root); names are shown
// relative to it when the server included the prefix.
func (c *Classifier) Classify(rawPaths []string, currentFolder string) []models.LogEntry {
	sorted := append([]string{}, rawPaths...)
	sort.Strings(sorted)

	parent := ""
	if currentFolder != "" {
		parent = currentFolder + "/"
	}

	entries := make([]models.LogEntry, 0, len(sorted))
	for _, p := range sorted {
		isDir := strings.HasSuffix(p, "/")
		entry := models.LogEntry{
			Path:             p,
			IsDirectory:      isDir,
			DisplayName:      strings.TrimPrefix(p, parent),
			NavigationTarget: nav.BuildEntryLink(c.nodeID, p, isDir),
		}
		if !isDir && c.downloadRef != nil {
			entry.DownloadReference = c.downloadRef(c.nodeID, p, models.UnlimitedLines)
		}
		entries = append(entries, entry)
	}
	return entries
}

// Classify is a convenience wrapper for a one-off classification
func Classify(nodeID string, rawPaths []string, currentFolder string, downloadRef DownloadRefFunc) []models.LogEntry {
	return NewClassifier(nodeID, downloadRef).Classify(rawPaths, currentFolder)
}

// CountDirectories returns how many entries are directories
func CountDirectories(entries []models.LogEntry) int {
	n := 0
	for _, e := range entries {
		if e.IsDirectory {
			n++
		}
	}
	return n
}
