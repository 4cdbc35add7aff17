package ui

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/user/ray-log-explorer/pkg/nav"
)

// ShareLinkGenerator converts between explorer links and the web
// dashboard's browser URLs, which keep the page route in the fragment
// (http://head:8265/#/logs/?nodeId=...).
type ShareLinkGenerator struct {
	baseURL string
}

// NewShareLinkGenerator creates a generator for the dashboard at baseURL
func NewShareLinkGenerator(baseURL string) *ShareLinkGenerator {
	return &ShareLinkGenerator{baseURL: strings.TrimRight(baseURL, "/")}
}

// GenerateLink returns the browser URL showing the same page
func (slg *ShareLinkGenerator) GenerateLink(loc nav.Location) string {
	return slg.baseURL + "/#" + loc.Link()
}

// DecodeLink accepts an explorer link or a pasted browser URL and
// returns the location it points at
func (slg *ShareLinkGenerator) DecodeLink(link string) (nav.Location, error) {
	link = strings.TrimSpace(link)
	if !strings.Contains(link, "://") {
		return nav.ParseLocation(strings.TrimPrefix(link, "#"))
	}

	u, err := url.Parse(link)
	if err != nil {
		return nav.Location{}, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Fragment == "" {
		return nav.Location{}, fmt.Errorf("%w: %s has no #/logs route", nav.ErrUnknownPage, link)
	}
	// the fragment keeps its own query string, still percent-encoded
	route := u.EscapedFragment()
	return nav.ParseLocation(route)
}
