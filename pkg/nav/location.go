package nav

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/user/ray-log-explorer/pkg/models"
)

// Page identifies which screen a location renders
type Page int

const (
	PageListing Page = iota
	PageViewer
)

func (p Page) String() string {
	switch p {
	case PageViewer:
		return "viewer"
	default:
		return "listing"
	}
}

// Location is a parsed link: a page plus its navigation state
type Location struct {
	Page  Page
	State models.NavigationState
}

// Link renders the location back to its canonical link text
func (l Location) Link() string {
	if l.Page == PageViewer {
		return ViewerLink(l.State)
	}
	return ListingLink(l.State)
}

// Error types
var (
	ErrUnknownPage          = errors.New("unknown page")
	ErrMissingNodeSelection = errors.New("select a node to view logs")
	ErrInvalidParameters    = errors.New("invalid url parameters")
)

var listingBaseURL = &url.URL{Path: ListingBase}

// ParseLocation parses a link relative to the listing page.
// Query values are percent-decoded here and nowhere else.
func ParseLocation(link string) (Location, error) {
	ref, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return Location{}, fmt.Errorf("parse link %q: %w", link, err)
	}
	resolved := listingBaseURL.ResolveReference(ref)

	var page Page
	switch strings.TrimSuffix(resolved.Path, "/") {
	case "/logs":
		page = PageListing
	case "/logs/viewer":
		page = PageViewer
	default:
		return Location{}, fmt.Errorf("%w: %s", ErrUnknownPage, resolved.Path)
	}

	q := resolved.Query()
	return Location{
		Page: page,
		State: models.NavigationState{
			NodeID:   q.Get("nodeId"),
			Folder:   q.Get("folder"),
			FileName: q.Get("fileName"),
		},
	}, nil
}

// ValidateListing checks the listing page parameters
func ValidateListing(state models.NavigationState) error {
	if !state.HasNode() {
		return ErrMissingNodeSelection
	}
	return nil
}

// ValidateViewer checks the viewer page parameters
func ValidateViewer(state models.NavigationState) error {
	if !state.HasNode() || state.FileName == "" {
		return ErrInvalidParameters
	}
	return nil
}
