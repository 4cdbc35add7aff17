package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/ray-log-explorer/pkg/logfiles"
	"github.com/user/ray-log-explorer/pkg/nav"
)

// Texts shown in the content area
const (
	textSelectNode    = "Select a node to view logs"
	textInvalidParams = "Invalid url parameters"
	textNoFiles       = "No files found."
	textBack          = "Back To ../"
	textNoNodes       = "No alive nodes."
)

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	dirStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	linkStyle  = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("81"))
)

// View renders the UI
func (a *App) View() string {
	if a.activeModalName == modalHelp {
		return a.helpModal.Render(a.width, a.height)
	}

	var sb strings.Builder
	sb.WriteString(a.renderTopBar())
	sb.WriteString(a.renderLocationBar())

	switch {
	case a.loc.Page == nav.PageViewer:
		sb.WriteString(a.renderViewer())
	case a.status == StatusMissingNode:
		sb.WriteString(a.renderNodeList())
	default:
		sb.WriteString(a.renderListing())
	}

	switch a.activeModalName {
	case modalFilter:
		sb.WriteString("┃ " + a.filterInput.View() + "\n")
	case modalGoTo:
		sb.WriteString("┃ " + a.gotoInput.View() + "\n")
	case modalExport:
		sb.WriteString(a.renderExportModal())
	case modalErrors:
		sb.WriteString(a.renderErrorHistory())
	}

	if toast := a.toasts.RenderToast(a.width); toast != "" {
		sb.WriteString(toast)
		sb.WriteString("\n")
	}
	sb.WriteString(a.renderStatusPanel())
	return sb.String()
}

func (a *App) renderTopBar() string {
	left := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("27")).Padding(0, 1).Render("Ray Log Explorer")
	keys := "std"
	if a.vimMode {
		keys = "vim"
	}
	rightText := fmt.Sprintf("page:%s  mode:%s  keys:%s", a.loc.Page, a.status, keys)
	right := lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("31")).Padding(0, 1).Render(rightText)
	fill := maxInt(0, a.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", fill) + right + "\n"
}

func (a *App) renderLocationBar() string {
	return "┃ " + mutedStyle.Render("link: ") + truncate(a.loc.Link(), a.width-10) + "\n"
}

func (a *App) renderPanelTitle(title string) string {
	t := titleStyle.Render(title)
	return fmt.Sprintf("┏ %s %s\n", t, strings.Repeat("━", maxInt(0, a.width-lipgloss.Width(t)-4)))
}

// renderStateLine renders the loading, error and empty states shared by both pages
func (a *App) renderStateLine() (string, bool) {
	switch a.status {
	case StatusLoading:
		return "┃ " + a.spinner.View() + " Loading...\n", true
	case StatusInvalidParams:
		return "┃ " + errorStyle.Render(textInvalidParams) + "\n", true
	case StatusFetchError:
		msg := "request failed"
		if a.fetchErr != nil {
			msg = a.fetchErr.Error()
		}
		return "┃ " + errorStyle.Render(truncate(msg, a.width-4)) + "\n", true
	case StatusEmpty:
		return "┃ " + textNoFiles + "\n", true
	}
	return "", false
}

func (a *App) renderNodeList() string {
	var sb strings.Builder
	sb.WriteString(a.renderPanelTitle("NODES"))
	sb.WriteString("┃ " + textSelectNode + "\n")

	switch {
	case a.nodesLoading:
		sb.WriteString("┃ " + a.spinner.View() + " Loading nodes...\n")
	case a.nodesErr != nil:
		sb.WriteString("┃ " + errorStyle.Render(truncate(a.nodesErr.Error(), a.width-4)) + "\n")
	case len(a.nodes) == 0:
		sb.WriteString("┃ " + mutedStyle.Render(textNoNodes) + "\n")
	}

	for i, n := range a.nodes {
		row := fmt.Sprintf("Node ID: %s (IP: %s)", n.NodeID, n.IP)
		if i == a.nodeCursor {
			sb.WriteString("┃ " + styleSelectedRow("> "+row) + "\n")
		} else {
			sb.WriteString("┃   " + row + "\n")
		}
	}
	return sb.String()
}

func (a *App) renderListing() string {
	state := a.loc.State
	var sb strings.Builder

	sb.WriteString(a.renderPanelTitle(fmt.Sprintf("LOGS (%d)", a.entries.Len())))
	sb.WriteString(fmt.Sprintf("┃ Node: %s\n", state.NodeID))
	folder := state.Folder
	if folder == "" {
		folder = "/"
	}
	sb.WriteString(fmt.Sprintf("┃ Folder: %s\n", folder))
	sb.WriteString("┃ " + linkStyle.Render(textBack) + "\n")
	if state.FileName != "" {
		sb.WriteString(fmt.Sprintf("┃ Filter: %s\n", state.FileName))
	}

	if line, ok := a.renderStateLine(); ok {
		sb.WriteString(line)
		return sb.String()
	}

	visible, start := a.entries.Visible()
	for i, entry := range visible {
		name := entry.DisplayName
		if start+i == a.entries.SelectedIndex() {
			sb.WriteString("┃ " + styleSelectedRow("> "+name) + "\n")
			continue
		}
		if entry.IsDirectory {
			name = dirStyle.Render(name)
		}
		sb.WriteString("┃   " + name + "\n")
	}
	return sb.String()
}

func (a *App) renderViewer() string {
	state := a.loc.State
	var sb strings.Builder

	sb.WriteString(a.renderPanelTitle("FILE " + state.FileName))
	sb.WriteString(fmt.Sprintf("┃ Node: %s\n", state.NodeID))
	sb.WriteString("┃ " + linkStyle.Render(textBack) + "\n")

	if line, ok := a.renderStateLine(); ok {
		sb.WriteString(line)
		return sb.String()
	}
	sb.WriteString(a.viewer.View())
	sb.WriteString("\n")
	return sb.String()
}

func (a *App) renderExportModal() string {
	var sb strings.Builder
	sb.WriteString(a.renderPanelTitle(fmt.Sprintf("EXPORT %d ENTRIES", a.entries.Len())))
	sb.WriteString("┃ Choose export format:\n")
	sb.WriteString("┃   1) CSV\n")
	sb.WriteString("┃   2) JSON (pretty)\n")
	sb.WriteString("┃   3) JSONL\n")
	sb.WriteString("┃   4) Plain paths\n")
	sb.WriteString("┃ " + mutedStyle.Render("Saved in "+a.exporter.Dir()+" as logs_<node>_YYYYMMDD_HHMMSS.*") + "\n")
	sb.WriteString("┃ Press 1-4 to export, Esc to cancel\n")
	return sb.String()
}

func (a *App) renderErrorHistory() string {
	var sb strings.Builder
	sb.WriteString(a.renderPanelTitle(fmt.Sprintf("ERRORS (%d)", a.toasts.Len())))
	list := a.toasts.RenderList(a.width-2, maxInt(3, a.height/3))
	if list == "" {
		sb.WriteString("┃ " + mutedStyle.Render("No errors so far.") + "\n")
	}
	for _, line := range strings.Split(strings.TrimSuffix(list, "\n"), "\n") {
		if line != "" {
			sb.WriteString("┃ " + line + "\n")
		}
	}
	sb.WriteString("┃ Press x to clear, E or Esc to close\n")
	return sb.String()
}

func (a *App) renderStatusPanel() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("┣%s\n", strings.Repeat("━", maxInt(0, a.width-1))))

	var summary string
	if a.loc.Page == nav.PageViewer {
		summary = fmt.Sprintf("%3.f%%  lines:%d  warn:%d  err:%d",
			a.viewer.ScrollPercent()*100, a.viewerStats.Lines, a.viewerStats.Warnings, a.viewerStats.Errors)
	} else {
		dirs := logfiles.CountDirectories(a.entries.Entries())
		summary = fmt.Sprintf("%d entries (%d dirs)", a.entries.Len(), dirs)
	}
	sb.WriteString(fmt.Sprintf("┃ %s  cache:%d  %s\n", summary, a.cache.size(), a.help.ShortHelpView(a.keys.ShortHelp())))
	if a.lastErr != "" {
		sb.WriteString("┃ " + errorStyle.Render(truncate(a.lastErr, a.width-4)) + "\n")
	}
	return sb.String()
}

func styleSelectedRow(line string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("25")).
		Render(line)
}
