package nav

import (
	"errors"
	"testing"

	"github.com/user/ray-log-explorer/pkg/models"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		link  string
		page  Page
		state models.NavigationState
	}{
		{"/logs/", PageListing, models.NavigationState{}},
		{"/logs", PageListing, models.NavigationState{}},
		{"", PageListing, models.NavigationState{}},
		{"?nodeId=N1", PageListing, models.NavigationState{NodeID: "N1"}},
		{"?nodeId=N1&folder=logs%2Fold&fileName=out", PageListing,
			models.NavigationState{NodeID: "N1", Folder: "logs/old", FileName: "out"}},
		{"viewer?nodeId=N1&fileName=raylet.out", PageViewer,
			models.NavigationState{NodeID: "N1", FileName: "raylet.out"}},
		{"/logs/viewer?nodeId=N1&fileName=a%20b.log", PageViewer,
			models.NavigationState{NodeID: "N1", FileName: "a b.log"}},
		{"http://127.0.0.1:8265/logs/?nodeId=N2&folder=", PageListing,
			models.NavigationState{NodeID: "N2"}},
	}

	for _, tt := range tests {
		loc, err := ParseLocation(tt.link)
		if err != nil {
			t.Errorf("ParseLocation(%q) failed: %v", tt.link, err)
			continue
		}
		if loc.Page != tt.page {
			t.Errorf("ParseLocation(%q): expected page %s, got %s", tt.link, tt.page, loc.Page)
		}
		if loc.State != tt.state {
			t.Errorf("ParseLocation(%q): expected state %+v, got %+v", tt.link, tt.state, loc.State)
		}
	}
}

func TestParseLocationUnknownPage(t *testing.T) {
	for _, link := range []string{"/jobs/", "/logs/viewer/extra", "/"} {
		_, err := ParseLocation(link)
		if !errors.Is(err, ErrUnknownPage) {
			t.Errorf("ParseLocation(%q): expected ErrUnknownPage, got %v", link, err)
		}
	}
}

func TestLocationLinkRoundTrip(t *testing.T) {
	locations := []Location{
		{Page: PageListing},
		{Page: PageListing, State: models.NavigationState{NodeID: "abc", Folder: "x/y z", FileName: "*"}},
		{Page: PageViewer, State: models.NavigationState{NodeID: "abc", FileName: "x/y.log"}},
	}

	for _, want := range locations {
		got, err := ParseLocation(want.Link())
		if err != nil {
			t.Fatalf("ParseLocation(%q) failed: %v", want.Link(), err)
		}
		if got != want {
			t.Errorf("Round trip of %q: expected %+v, got %+v", want.Link(), want, got)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := ValidateListing(models.NavigationState{}); !errors.Is(err, ErrMissingNodeSelection) {
		t.Errorf("Expected ErrMissingNodeSelection, got %v", err)
	}
	if err := ValidateListing(models.NavigationState{NodeID: "N1"}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	invalid := []models.NavigationState{
		{},
		{NodeID: "N1"},
		{FileName: "raylet.out"},
	}
	for _, state := range invalid {
		if err := ValidateViewer(state); !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("ValidateViewer(%+v): expected ErrInvalidParameters, got %v", state, err)
		}
	}
	if err := ValidateViewer(models.NavigationState{NodeID: "N1", FileName: "raylet.out"}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}
