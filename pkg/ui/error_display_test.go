package ui

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/user/ray-log-explorer/pkg/dashboard"
	"github.com/user/ray-log-explorer/pkg/nav"
)

// TestNewErrorDisplay tests error display creation
func TestNewErrorDisplay(t *testing.T) {
	ed := NewErrorDisplay()
	if ed == nil {
		t.Fatal("ErrorDisplay should not be nil")
	}
	if ed.HasErrors() {
		t.Error("New ErrorDisplay should have no errors")
	}
}

// TestAddError tests adding error messages
func TestAddError(t *testing.T) {
	ed := NewErrorDisplay()

	ed.AddError("Connection failed", 5*time.Second)
	latest := ed.GetLatest()
	if latest == nil {
		t.Fatal("Latest error should not be nil")
	}
	if latest.Text != "Connection failed" {
		t.Errorf("Expected 'Connection failed', got %s", latest.Text)
	}
}

// TestAddErrPrefixes tests that errors are labelled by kind
func TestAddErrPrefixes(t *testing.T) {
	tests := []struct {
		err    error
		prefix string
	}{
		{fmt.Errorf("list logs: %w: boom", dashboard.ErrNetwork), "Dashboard unreachable: "},
		{fmt.Errorf("fetch: %w: gone", dashboard.ErrNotFound), "Not found: "},
		{fmt.Errorf("%w: /metrics", nav.ErrUnknownPage), "Bad link: "},
		{fmt.Errorf("something else"), "something else"},
	}

	for _, tt := range tests {
		ed := NewErrorDisplay()
		ed.AddErr(tt.err)
		latest := ed.GetLatest()
		if latest == nil || !strings.HasPrefix(latest.Text, tt.prefix) {
			t.Errorf("Expected prefix %q, got %+v", tt.prefix, latest)
		}
	}

	ed := NewErrorDisplay()
	ed.AddErr(nil)
	if ed.HasErrors() {
		t.Error("nil error should not be recorded")
	}
}

// TestExpiredToastStaysInHistory tests that an expired toast is hidden but kept
func TestExpiredToastStaysInHistory(t *testing.T) {
	ed := NewErrorDisplay()
	ed.messages = append(ed.messages, ErrorMessage{
		Text:      "Expired error",
		Timestamp: time.Now().Add(-10 * time.Second),
		Duration:  5 * time.Second,
	})

	if ed.HasErrors() || ed.RenderToast(50) != "" {
		t.Error("Expired error should not show as a toast")
	}
	if ed.Len() != 1 || !strings.Contains(ed.RenderList(50, 5), "Expired error") {
		t.Error("Expired error should remain in history")
	}

	ed.AddError("Active error", 10*time.Second)
	if ed.GetLatest().Text != "Active error" {
		t.Error("Latest should be the active error")
	}
}

// TestPersistentError tests error with zero duration (persistent)
func TestPersistentError(t *testing.T) {
	ed := NewErrorDisplay()
	ed.messages = append(ed.messages, ErrorMessage{
		Text:      "Persistent error",
		Timestamp: time.Now().Add(-time.Hour),
	})

	if !ed.HasErrors() {
		t.Error("Persistent error should keep showing")
	}
}

// TestRenderToast tests toast rendering
func TestRenderToast(t *testing.T) {
	ed := NewErrorDisplay()
	if ed.RenderToast(50) != "" {
		t.Error("Toast should be empty when no errors")
	}

	ed.AddError("Test error", 5*time.Second)
	if toast := ed.RenderToast(50); !strings.Contains(toast, "Test error") {
		t.Error("Toast should contain error message")
	}
}

// TestRenderToastTruncation tests message truncation
func TestRenderToastTruncation(t *testing.T) {
	ed := NewErrorDisplay()
	longError := strings.Repeat("X", 100)
	ed.AddError(longError, 5*time.Second)

	if toast := ed.RenderToast(20); strings.Contains(toast, longError) {
		t.Error("Toast should truncate long messages")
	}
}

// TestTruncateKeepsCharactersWhole tests truncation of multi-byte text
func TestTruncateKeepsCharactersWhole(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"short", "raylet.out", 20, "raylet.out"},
		{"ascii", "abcdefghij", 8, "abcde..."},
		{"accented", "éééééééééé", 8, "ééééé..."},
		{"wide", "日志日志日志日志", 9, "日志日..."},
		{"too narrow", "abcdefghij", 3, "abcdefghij"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.width)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate(%q, %d) split a character: %q", tt.in, tt.width, got)
			}
		})
	}
}

// TestRenderListMaxHeight tests max height limit
func TestRenderListMaxHeight(t *testing.T) {
	ed := NewErrorDisplay()
	for i := 0; i < 10; i++ {
		ed.AddError(fmt.Sprintf("Error %d", i), 10*time.Second)
	}

	list := ed.RenderList(50, 3)
	if strings.Count(list, "\n") != 4 {
		t.Errorf("Expected header plus 3 rows, got %q", list)
	}
	if !strings.Contains(list, "Error 9") || strings.Contains(list, "Error 6") {
		t.Error("List should keep the newest errors")
	}
	if strings.Index(list, "Error 7") > strings.Index(list, "Error 9") {
		t.Error("List should be oldest first")
	}
}

// TestMaxSizeLimit tests that message buffer doesn't exceed maxSize
func TestMaxSizeLimit(t *testing.T) {
	ed := NewErrorDisplay()
	ed.maxSize = 5

	for i := 0; i < 10; i++ {
		ed.AddError("Error", 10*time.Second)
	}

	if len(ed.messages) > ed.maxSize {
		t.Errorf("Expected at most %d messages, got %d", ed.maxSize, len(ed.messages))
	}

	ed.Clear()
	if ed.HasErrors() {
		t.Error("ErrorDisplay should have no errors after Clear")
	}
}
