package ui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Severity levels recognised in Ray log lines
const (
	SeverityDefault  = ""
	SeverityDebug    = "DEBUG"
	SeverityInfo     = "INFO"
	SeverityWarning  = "WARNING"
	SeverityError    = "ERROR"
	SeverityCritical = "CRITICAL"
)

// Core components prefix lines with "[timestamp L pid tid]"
var glogPrefix = regexp.MustCompile(`^\[[0-9-]+ [0-9:,.]+ ([DIWEF]) \d+ \d+\]`)

// Python components write the level name as a word near the start
var levelWord = regexp.MustCompile(`\b(DEBUG|INFO|WARNING|WARN|ERROR|CRITICAL|FATAL)\b`)

var severityStyles = map[string]lipgloss.Style{
	SeverityDebug:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	SeverityWarning:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	SeverityError:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	SeverityCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
}

// severityScanWidth bounds how far into a line the level word is looked for
const severityScanWidth = 64

// LogFormatter prepares downloaded log text for the viewer
type LogFormatter struct {
	useColor bool
}

// LogStats counts lines by severity
type LogStats struct {
	Lines    int
	Warnings int
	Errors   int
}

// NewLogFormatter creates a new log formatter
func NewLogFormatter(useColor bool) *LogFormatter {
	return &LogFormatter{useColor: useColor}
}

// DetectSeverity returns the level of a single log line, or "" if none
func DetectSeverity(line string) string {
	if m := glogPrefix.FindStringSubmatch(line); m != nil {
		switch m[1] {
		case "D":
			return SeverityDebug
		case "I":
			return SeverityInfo
		case "W":
			return SeverityWarning
		case "E":
			return SeverityError
		case "F":
			return SeverityCritical
		}
	}

	head := line
	if len(head) > severityScanWidth {
		head = head[:severityScanWidth]
	}
	switch levelWord.FindString(head) {
	case "DEBUG":
		return SeverityDebug
	case "INFO":
		return SeverityInfo
	case "WARNING", "WARN":
		return SeverityWarning
	case "ERROR":
		return SeverityError
	case "CRITICAL", "FATAL":
		return SeverityCritical
	}
	return SeverityDefault
}

// Format colours each line by severity and returns the line counts.
// Lines without a level of their own (tracebacks) keep the level of the
// line that started them.
func (lf *LogFormatter) Format(content string) (string, LogStats) {
	var stats LogStats
	if content == "" {
		return "", stats
	}

	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	stats.Lines = len(lines)

	var sb strings.Builder
	current := SeverityDefault
	for i, line := range lines {
		if sev := DetectSeverity(line); sev != SeverityDefault {
			current = sev
			switch sev {
			case SeverityWarning:
				stats.Warnings++
			case SeverityError, SeverityCritical:
				stats.Errors++
			}
		}

		if style, ok := severityStyles[current]; ok && lf.useColor {
			sb.WriteString(style.Render(line))
		} else {
			sb.WriteString(line)
		}
		if i < len(lines)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String(), stats
}
