package ui

import (
	"testing"
)

func TestDetectSeverity(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"[2024-03-01 12:30:00,123 I 4242 4243] raylet.cc:100: started", SeverityInfo},
		{"[2024-03-01 12:30:00,123 W 4242 4243] node_manager.cc:9: slow", SeverityWarning},
		{"[2024-03-01 12:30:00,123 E 4242 4243] gcs.cc:1: lost", SeverityError},
		{"[2024-03-01 12:30:00,123 F 4242 4243] check failed", SeverityCritical},
		{"[2024-03-01 12:30:00,123 D 4242 4243] verbose", SeverityDebug},
		{"2024-03-01 12:30:00,123\tINFO worker.py:1 -- connected", SeverityInfo},
		{"2024-03-01 12:30:00,123\tWARNING worker.py:2 -- retrying", SeverityWarning},
		{"2024-03-01 12:30:00,123 WARN something", SeverityWarning},
		{"ERROR: task failed", SeverityError},
		{"FATAL crash", SeverityCritical},
		{"  File \"worker.py\", line 3, in run", SeverityDefault},
		{"an INFORMATIONAL line", SeverityDefault},
		{"", SeverityDefault},
	}

	for _, tt := range tests {
		if got := DetectSeverity(tt.line); got != tt.want {
			t.Errorf("DetectSeverity(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestDetectSeverityIgnoresLateWords(t *testing.T) {
	line := "worker 12 finished a long batch of tasks and then printed the word ERROR"
	if got := DetectSeverity(line); got != SeverityDefault {
		t.Errorf("Level words past the prefix should be ignored, got %q", got)
	}
}

func TestFormatStats(t *testing.T) {
	content := "INFO start\n" +
		"WARNING disk\n" +
		"ERROR boom\n" +
		"Traceback (most recent call last):\n" +
		"  File \"x.py\", line 1\n" +
		"[2024-03-01 12:30:00,123 E 1 2] again\n"

	lf := NewLogFormatter(false)
	out, stats := lf.Format(content)

	if stats.Lines != 6 || stats.Warnings != 1 || stats.Errors != 2 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	if out != content[:len(content)-1] {
		t.Errorf("Uncoloured output should keep the text, got %q", out)
	}
}

func TestFormatEmpty(t *testing.T) {
	out, stats := NewLogFormatter(true).Format("")
	if out != "" || stats.Lines != 0 {
		t.Errorf("Expected empty result, got %q %+v", out, stats)
	}
}
