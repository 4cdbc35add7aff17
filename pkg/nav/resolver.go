package nav

import (
	"net/url"
	"strings"

	"github.com/user/ray-log-explorer/pkg/models"
)

// ListingBase is the path of the log listing page
const ListingBase = "/logs/"

// ComputeBackTarget returns the parent of a "/"-joined path.
// An empty path has no parent; a single segment's parent is the root.
func ComputeBackTarget(path string) models.BackTarget {
	if path == "" {
		return models.BackTarget{}
	}
	segments := strings.Split(path, "/")
	return models.BackTarget{
		Folder: strings.Join(segments[:len(segments)-1], "/"),
		Valid:  true,
	}
}

// BuildGlob returns the glob to send to the listing API.
// ok is false when neither folder nor filter is set, meaning "list root".
func BuildGlob(folder, fileName string) (glob string, ok bool) {
	switch {
	case folder == "" && fileName == "":
		return "", false
	case fileName == "":
		return folder + "/*", true
	case folder == "":
		return "*" + fileName + "*", true
	default:
		return folder + "/*" + fileName + "*", true
	}
}

// BuildEntryLink returns the link followed when an entry is opened.
// Directories link to the listing page, files to the viewer. Both carry
// the full path, so the current folder is never needed.
func BuildEntryLink(nodeID, path string, isDir bool) string {
	if isDir {
		return "?nodeId=" + EncodeComponent(nodeID) +
			"&folder=" + EncodeComponent(strings.TrimSuffix(path, "/"))
	}
	return "viewer?nodeId=" + EncodeComponent(nodeID) +
		"&fileName=" + EncodeComponent(path)
}

// ListingLink returns the canonical link for a listing state
func ListingLink(state models.NavigationState) string {
	if !state.HasNode() {
		return ListingBase
	}
	link := ListingBase + "?nodeId=" + EncodeComponent(state.NodeID)
	if state.Folder != "" {
		link += "&folder=" + EncodeComponent(state.Folder)
	}
	if state.FileName != "" {
		link += "&fileName=" + EncodeComponent(state.FileName)
	}
	return link
}

// ViewerLink returns the canonical link for a viewer state
func ViewerLink(state models.NavigationState) string {
	return ListingBase + "viewer?nodeId=" + EncodeComponent(state.NodeID) +
		"&fileName=" + EncodeComponent(state.FileName)
}

// ListingBackLink returns the "Back To ../" target of a listing page.
// Without a node or a parent folder it falls back to the node list.
func ListingBackLink(state models.NavigationState) string {
	back := ComputeBackTarget(state.Folder)
	if !back.Valid || !state.HasNode() {
		return ListingBase
	}
	return ListingBase + "?nodeId=" + EncodeComponent(state.NodeID) +
		"&folder=" + EncodeComponent(back.Folder)
}

// ViewerBackLink returns the "Back To ../" target of the viewer page:
// the folder containing the file.
func ViewerBackLink(state models.NavigationState) string {
	back := ComputeBackTarget(state.FileName)
	link := ListingBase + "?nodeId=" + EncodeComponent(state.NodeID)
	if back.Valid {
		link += "&folder=" + EncodeComponent(back.Folder)
	}
	return link
}

// componentUnescaper turns url.QueryEscape output into encodeURIComponent output:
// spaces are %20 and !'()* stay literal.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent percent-encodes a single query value the way a browser's
// encodeURIComponent does.
func EncodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
