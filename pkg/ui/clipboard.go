package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/user/ray-log-explorer/pkg/models"
)

// writeClipboard is swapped out in tests
var writeClipboard = clipboard.WriteAll

// ErrNothingToCopy is returned when the selection has no download link
var ErrNothingToCopy = fmt.Errorf("nothing to copy")

func copyTextToClipboard(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrNothingToCopy
	}
	if err := writeClipboard(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}

// downloadRefOf returns the download URL of a listing entry
func downloadRefOf(entry *models.LogEntry) (string, error) {
	if entry == nil {
		return "", fmt.Errorf("%w: no entry selected", ErrNothingToCopy)
	}
	if entry.IsDirectory {
		return "", fmt.Errorf("%w: %s is a directory", ErrNothingToCopy, entry.DisplayName)
	}
	if entry.DownloadReference == "" {
		return "", fmt.Errorf("%w: %s has no download link", ErrNothingToCopy, entry.DisplayName)
	}
	return entry.DownloadReference, nil
}
