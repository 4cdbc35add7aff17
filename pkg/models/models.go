package models

// NavigationState is the page state carried in the URL query string.
// It is rebuilt from the URL on every navigation and never mutated.
type NavigationState struct {
	NodeID   string // empty when no node is selected
	Folder   string // "/"-joined relative path, empty means root
	FileName string // substring filter on the listing page, full path on the viewer page
}

// HasNode reports whether a node has been selected
func (s NavigationState) HasNode() bool {
	return s.NodeID != ""
}

// BackTarget is the parent folder of a path.
// Valid is false when there is no parent at all (root listing); a valid
// target with an empty Folder means "root, with folder= present".
type BackTarget struct {
	Folder string
	Valid  bool
}

// LogEntry represents a single path returned by the log listing API
type LogEntry struct {
	Path              string `json:"path"`
	IsDirectory       bool   `json:"isDirectory"`
	DisplayName       string `json:"displayName"`
	NavigationTarget  string `json:"navigationTarget"`
	DownloadReference string `json:"downloadReference,omitempty"` // empty for directories
}

// Node is a cluster machine that can be browsed for logs
type Node struct {
	NodeID   string `json:"nodeId"`
	IP       string `json:"ip"`
	Hostname string `json:"hostname,omitempty"`
	State    string `json:"state"`
}

// NodeStateAlive is the raylet state of a live node
const NodeStateAlive = "ALIVE"

// UnlimitedLines asks the download endpoint for the whole file
const UnlimitedLines = -1
