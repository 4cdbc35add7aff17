package ui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/user/ray-log-explorer/pkg/dashboard"
	"github.com/user/ray-log-explorer/pkg/nav"
)

// toastDuration is how long a failure stays on screen
const toastDuration = 6 * time.Second

// ErrorDisplay keeps a short history of failures shown as toasts
type ErrorDisplay struct {
	messages []ErrorMessage
	maxSize  int
}

// ErrorMessage represents a single error message
type ErrorMessage struct {
	Text      string
	Timestamp time.Time
	Duration  time.Duration
}

// NewErrorDisplay creates a new error display
func NewErrorDisplay() *ErrorDisplay {
	return &ErrorDisplay{
		messages: []ErrorMessage{},
		maxSize:  10,
	}
}

// AddError adds an error message; a zero duration never expires
func (ed *ErrorDisplay) AddError(text string, duration time.Duration) {
	ed.messages = append(ed.messages, ErrorMessage{
		Text:      text,
		Timestamp: time.Now(),
		Duration:  duration,
	})

	if len(ed.messages) > ed.maxSize {
		ed.messages = ed.messages[len(ed.messages)-ed.maxSize:]
	}
}

// AddErr records err with a short prefix describing its kind
func (ed *ErrorDisplay) AddErr(err error) {
	if err == nil {
		return
	}
	ed.AddError(describeError(err), toastDuration)
}

// describeError prefixes an error with what went wrong from the user's side
func describeError(err error) string {
	switch {
	case dashboard.IsNotFound(err):
		return "Not found: " + err.Error()
	case errors.Is(err, dashboard.ErrNetwork):
		return "Dashboard unreachable: " + err.Error()
	case errors.Is(err, nav.ErrUnknownPage):
		return "Bad link: " + err.Error()
	default:
		return err.Error()
	}
}

func (m ErrorMessage) expired(now time.Time) bool {
	return m.Duration != 0 && now.Sub(m.Timestamp) >= m.Duration
}

// GetLatest returns the most recent error while its toast is still showing
func (ed *ErrorDisplay) GetLatest() *ErrorMessage {
	if len(ed.messages) == 0 {
		return nil
	}
	latest := &ed.messages[len(ed.messages)-1]
	if latest.expired(time.Now()) {
		return nil
	}
	return latest
}

// HasErrors returns true if a toast is showing
func (ed *ErrorDisplay) HasErrors() bool {
	return ed.GetLatest() != nil
}

// Len returns the number of errors kept in history, expired toasts included
func (ed *ErrorDisplay) Len() int {
	return len(ed.messages)
}

// RenderToast renders the latest error as a toast notification
func (ed *ErrorDisplay) RenderToast(width int) string {
	latest := ed.GetLatest()
	if latest == nil {
		return ""
	}

	msg := truncate(latest.Text, width-4)

	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("9")).
		Padding(0, 1).
		Width(maxInt(10, width-2))

	return style.Render("⚠ " + msg)
}

// RenderList renders the newest maxHeight errors of the history, oldest first
func (ed *ErrorDisplay) RenderList(width, maxHeight int) string {
	if len(ed.messages) == 0 || maxHeight <= 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true).Render("Recent Errors"))
	sb.WriteString("\n")

	count := minInt(len(ed.messages), maxHeight)
	for i := len(ed.messages) - count; i < len(ed.messages); i++ {
		m := ed.messages[i]
		sb.WriteString("  • ")
		sb.WriteString(mutedStyle.Render(m.Timestamp.Format("15:04:05")) + " ")
		sb.WriteString(truncate(m.Text, width-14))
		sb.WriteString("\n")
	}

	return sb.String()
}

// Clear empties the history
func (ed *ErrorDisplay) Clear() {
	ed.messages = []ErrorMessage{}
}

// truncate shortens s to width terminal cells without splitting a character
func truncate(s string, width int) string {
	if width < 4 {
		return s
	}
	return ansi.Truncate(s, width, "...")
}
