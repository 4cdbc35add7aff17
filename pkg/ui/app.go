package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/user/ray-log-explorer/pkg/logfiles"
	"github.com/user/ray-log-explorer/pkg/logging"
	"github.com/user/ray-log-explorer/pkg/models"
	"github.com/user/ray-log-explorer/pkg/nav"
)

const (
	defaultCacheTTL      = 30 * time.Second
	listingCacheMax      = 40
	defaultViewerLines   = 1000
	modalNone            = "none"
	modalFilter          = "filter"
	modalGoTo            = "goto"
	modalHelp            = "help"
	modalExport          = "export"
	modalErrors          = "errors"
	listingChromeLines   = 12
	viewerChromeLines    = 10
	minContentAreaHeight = 3
)

// Dashboard is the part of the dashboard client the explorer uses
type Dashboard interface {
	ListLogGroups(ctx context.Context, nodeID, glob string) (map[string][]string, error)
	ListAliveNodes(ctx context.Context) ([]models.Node, error)
	FetchLogFile(ctx context.Context, nodeID, filename string, maxLines int) (string, error)
	DownloadURL(nodeID, filename string, maxLines int) string
	BaseURL() string
}

// Status describes what the content area is showing
type Status int

const (
	StatusReady Status = iota
	StatusLoading
	StatusMissingNode
	StatusInvalidParams
	StatusFetchError
	StatusEmpty
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusMissingNode:
		return "select node"
	case StatusInvalidParams:
		return "invalid link"
	case StatusFetchError:
		return "error"
	case StatusEmpty:
		return "empty"
	default:
		return "ready"
	}
}

// App represents the main TUI application
type App struct {
	client          Dashboard
	loc             nav.Location
	status          Status
	width           int
	height          int
	entries         *EntryList
	nodes           []models.Node
	nodeCursor      int
	nodesLoading    bool
	nodesErr        error
	viewer          viewport.Model
	viewerMaxLines  int
	viewerContent   string
	viewerStats     LogStats
	formatter       *LogFormatter
	fetchErr        error
	pending         map[listingKey]bool
	cache           *listingCache
	bypassNextCache bool
	spinner         spinner.Model
	filterInput     textinput.Model
	gotoInput       textinput.Model
	keys            KeyMap
	help            help.Model
	helpModal       *HelpModal
	toasts          *ErrorDisplay
	exporter        *Exporter
	share           *ShareLinkGenerator
	activeModalName string
	vimMode         bool
	lastErr         string
}

type listingResultMsg struct {
	key   listingKey
	paths []string
	err   error
}

type fileKey struct {
	nodeID   string
	fileName string
}

type fileResultMsg struct {
	key     fileKey
	content string
	err     error
}

type nodesResultMsg struct {
	nodes []models.Node
	err   error
}

// NewApp creates a new TUI application starting at the node list
func NewApp(client Dashboard) *App {
	keys := NewKeyMap(true)

	s := spinner.New()
	s.Spinner = spinner.Dot

	filter := textinput.New()
	filter.Prompt = "filter> "
	filter.Placeholder = "part of a file name"
	filter.CharLimit = 256

	gotoInput := textinput.New()
	gotoInput.Prompt = "go to> "
	gotoInput.Placeholder = "/logs/viewer?nodeId=...&fileName=..."
	gotoInput.CharLimit = 2048

	a := &App{
		client:          client,
		loc:             nav.Location{Page: nav.PageListing},
		status:          StatusMissingNode,
		width:           120,
		height:          40,
		entries:         NewEntryList(20),
		nodes:           []models.Node{},
		viewer:          viewport.New(118, 30),
		viewerMaxLines:  defaultViewerLines,
		pending:         map[listingKey]bool{},
		cache:           newListingCache(defaultCacheTTL, listingCacheMax),
		spinner:         s,
		filterInput:     filter,
		gotoInput:       gotoInput,
		keys:            keys,
		help:            help.New(),
		helpModal:       NewHelpModal(keys),
		toasts:          NewErrorDisplay(),
		exporter:        NewExporter(""),
		formatter:       NewLogFormatter(true),
		share:           NewShareLinkGenerator(client.BaseURL()),
		activeModalName: modalNone,
		vimMode:         true,
	}
	a.resize()
	return a
}

// SetVimMode enables or disables vim-style navigation keys.
func (a *App) SetVimMode(enabled bool) {
	a.vimMode = enabled
	a.keys = NewKeyMap(enabled)
	a.helpModal.SetKeys(a.keys)
}

// SetViewerMaxLines sets how many trailing lines the viewer downloads
func (a *App) SetViewerMaxLines(n int) {
	if n == 0 {
		n = defaultViewerLines
	}
	a.viewerMaxLines = n
}

// SetCacheTTL sets how long listing results are reused; zero disables the cache
func (a *App) SetCacheTTL(ttl time.Duration) {
	a.cache = newListingCache(ttl, listingCacheMax)
}

// SetExportDir sets where exports and saved files are written
func (a *App) SetExportDir(dir string) {
	a.exporter = NewExporter(dir)
}

// SetLocation sets the page Init will load
func (a *App) SetLocation(link string) error {
	loc, err := nav.ParseLocation(link)
	if err != nil {
		return err
	}
	a.loc = loc
	return nil
}

// Location returns the current page and state
func (a *App) Location() nav.Location {
	return a.loc
}

// Status returns the content area status
func (a *App) Status() Status {
	return a.status
}

// Init loads the starting location (required by Bubble Tea)
func (a *App) Init() tea.Cmd {
	return a.load()
}

// Update handles events and state mutations
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case listingResultMsg:
		delete(a.pending, msg.key)
		if msg.err == nil {
			a.cache.store(msg.key, msg.paths)
		}
		current, ok := a.currentListingKey()
		if !ok || current != msg.key {
			logging.Debug("dropping stale listing", zap.Stringer("listing", msg.key))
			return a, nil
		}
		if msg.err != nil {
			a.setFetchError(msg.err)
			return a, nil
		}
		a.applyListing(msg.key, msg.paths)
		a.lastErr = fmt.Sprintf("Listed %d entries", a.entries.Len())
		return a, nil

	case fileResultMsg:
		current, ok := a.currentFileKey()
		if !ok || current != msg.key {
			logging.Debug("dropping stale file content",
				zap.String("node_id", msg.key.nodeID),
				zap.String("file", msg.key.fileName))
			return a, nil
		}
		if msg.err != nil {
			a.setFetchError(msg.err)
			return a, nil
		}
		formatted, stats := a.formatter.Format(msg.content)
		a.viewerContent = msg.content
		a.viewerStats = stats
		a.viewer.SetContent(formatted)
		a.viewer.GotoTop()
		a.status = StatusReady
		a.lastErr = fmt.Sprintf("Loaded %d lines", stats.Lines)
		return a, nil

	case nodesResultMsg:
		a.nodesLoading = false
		if msg.err != nil {
			a.nodesErr = msg.err
			a.toasts.AddErr(msg.err)
			logging.Warn("listing nodes failed", zap.Error(msg.err))
			return a, nil
		}
		a.nodesErr = nil
		a.nodes = msg.nodes
		if a.nodeCursor >= len(a.nodes) {
			a.nodeCursor = maxInt(0, len(a.nodes)-1)
		}
		return a, nil

	case spinner.TickMsg:
		if !a.isLoading() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.MouseMsg:
		if a.loc.Page == nav.PageViewer {
			var cmd tea.Cmd
			a.viewer, cmd = a.viewer.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyPress(msg)
	}

	return a, nil
}

// followLink parses a link and makes it the current location.
// This is the only way the page state changes.
func (a *App) followLink(link string) tea.Cmd {
	loc, err := nav.ParseLocation(link)
	if err != nil {
		a.toasts.AddErr(err)
		a.lastErr = describeError(err)
		logging.Warn("cannot follow link", zap.String("link", link), zap.Error(err))
		return nil
	}
	logging.Debug("navigate", zap.String("link", loc.Link()))
	a.loc = loc
	a.lastErr = ""
	return a.load()
}

// load fetches whatever the current location needs
func (a *App) load() tea.Cmd {
	a.fetchErr = nil
	state := a.loc.State

	if a.loc.Page == nav.PageViewer {
		a.viewerContent = ""
		a.viewerStats = LogStats{}
		a.viewer.SetContent("")
		if err := nav.ValidateViewer(state); err != nil {
			a.status = StatusInvalidParams
			return nil
		}
		a.status = StatusLoading
		return tea.Batch(a.fetchFileCmd(fileKey{nodeID: state.NodeID, fileName: state.FileName}), a.spinner.Tick)
	}

	if err := nav.ValidateListing(state); err != nil {
		a.status = StatusMissingNode
		a.entries.SetEntries([]models.LogEntry{})
		return a.loadNodes()
	}
	return a.loadListing()
}

func (a *App) loadListing() tea.Cmd {
	key, _ := a.currentListingKey()
	if !a.bypassNextCache {
		if paths, ok := a.cache.lookup(key); ok {
			a.applyListing(key, paths)
			a.lastErr = fmt.Sprintf("Cache hit: %d entries", a.entries.Len())
			return nil
		}
	}
	a.bypassNextCache = false

	a.status = StatusLoading
	a.entries.SetEntries([]models.LogEntry{})
	if a.pending[key] {
		logging.Debug("listing already in flight", zap.Stringer("listing", key))
		return a.spinner.Tick
	}
	a.pending[key] = true
	return tea.Batch(a.fetchListingCmd(key), a.spinner.Tick)
}

func (a *App) loadNodes() tea.Cmd {
	if a.nodesLoading {
		return nil
	}
	a.nodesLoading = true
	client := a.client
	return tea.Batch(func() tea.Msg {
		nodes, err := client.ListAliveNodes(context.Background())
		return nodesResultMsg{nodes: nodes, err: err}
	}, a.spinner.Tick)
}

func (a *App) fetchListingCmd(key listingKey) tea.Cmd {
	client := a.client
	return func() tea.Msg {
		groups, err := client.ListLogGroups(context.Background(), key.nodeID, key.glob)
		if err != nil {
			return listingResultMsg{key: key, err: err}
		}
		return listingResultMsg{key: key, paths: logfiles.Flatten(groups)}
	}
}

func (a *App) fetchFileCmd(key fileKey) tea.Cmd {
	client := a.client
	maxLines := a.viewerMaxLines
	return func() tea.Msg {
		content, err := client.FetchLogFile(context.Background(), key.nodeID, key.fileName, maxLines)
		return fileResultMsg{key: key, content: content, err: err}
	}
}

// currentListingKey returns the listing request the current location needs
func (a *App) currentListingKey() (listingKey, bool) {
	if a.loc.Page != nav.PageListing || !a.loc.State.HasNode() {
		return listingKey{}, false
	}
	glob, _ := nav.BuildGlob(a.loc.State.Folder, a.loc.State.FileName)
	return listingKey{nodeID: a.loc.State.NodeID, glob: glob}, true
}

func (a *App) currentFileKey() (fileKey, bool) {
	if a.loc.Page != nav.PageViewer || nav.ValidateViewer(a.loc.State) != nil {
		return fileKey{}, false
	}
	return fileKey{nodeID: a.loc.State.NodeID, fileName: a.loc.State.FileName}, true
}

func (a *App) applyListing(key listingKey, paths []string) {
	entries := logfiles.Classify(key.nodeID, paths, a.loc.State.Folder, a.client.DownloadURL)
	a.entries.SetEntries(entries)
	if len(entries) == 0 {
		a.status = StatusEmpty
	} else {
		a.status = StatusReady
	}
}

func (a *App) setFetchError(err error) {
	a.status = StatusFetchError
	a.fetchErr = err
	a.toasts.AddErr(err)
	logging.Warn("fetch failed", zap.String("link", a.loc.Link()), zap.Error(err))
}

func (a *App) isLoading() bool {
	return a.status == StatusLoading || a.nodesLoading
}

func (a *App) refresh() tea.Cmd {
	if key, ok := a.currentListingKey(); ok {
		a.cache.invalidate(key)
	}
	a.bypassNextCache = true
	a.lastErr = "Refreshing"
	return a.load()
}

// backLink returns the "Back To ../" target of the current page
func (a *App) backLink() string {
	if a.loc.Page == nav.PageViewer {
		return nav.ViewerBackLink(a.loc.State)
	}
	return nav.ListingBackLink(a.loc.State)
}

func (a *App) resize() {
	a.entries.SetViewportHeight(maxInt(minContentAreaHeight, a.height-listingChromeLines))
	a.viewer.Width = maxInt(10, a.width-2)
	a.viewer.Height = maxInt(minContentAreaHeight, a.height-viewerChromeLines)
	a.help.Width = a.width
	a.filterInput.Width = maxInt(10, a.width-12)
	a.gotoInput.Width = maxInt(10, a.width-12)
}

// handleKeyPress processes keyboard input
func (a *App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	switch a.activeModalName {
	case modalFilter:
		return a.handleFilterInput(msg)
	case modalGoTo:
		return a.handleGoToInput(msg)
	case modalExport:
		return a.handleExportInput(msg)
	case modalErrors:
		switch {
		case key.Matches(msg, a.keys.Errors, a.keys.Close):
			a.activeModalName = modalNone
		case key.Matches(msg, a.keys.Clear):
			a.toasts.Clear()
		}
		return a, nil
	case modalHelp:
		if key.Matches(msg, a.keys.Help, a.keys.Close) {
			a.activeModalName = modalNone
			a.helpModal.SetVisible(false)
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.activeModalName = modalHelp
		a.helpModal.SetVisible(true)
		return a, nil
	case key.Matches(msg, a.keys.Errors):
		a.activeModalName = modalErrors
		return a, nil
	case key.Matches(msg, a.keys.KeyMode):
		a.SetVimMode(!a.vimMode)
		if a.vimMode {
			a.lastErr = "Key mode: vim"
		} else {
			a.lastErr = "Key mode: standard"
		}
		return a, nil
	case key.Matches(msg, a.keys.GoTo):
		a.activeModalName = modalGoTo
		a.gotoInput.SetValue(a.loc.Link())
		a.gotoInput.CursorEnd()
		a.gotoInput.Focus()
		return a, nil
	case key.Matches(msg, a.keys.Refresh):
		return a, a.refresh()
	case key.Matches(msg, a.keys.CopyLink):
		a.copyLink(a.share.GenerateLink(a.loc), nil)
		return a, nil
	case key.Matches(msg, a.keys.Back):
		if a.status == StatusMissingNode {
			return a, nil
		}
		return a, a.followLink(a.backLink())
	case key.Matches(msg, a.keys.Close):
		// esc on a filtered listing drops the filter
		if a.loc.Page == nav.PageListing && a.loc.State.FileName != "" {
			state := a.loc.State
			state.FileName = ""
			return a, a.followLink(nav.ListingLink(state))
		}
		return a, nil
	}

	switch {
	case a.loc.Page == nav.PageViewer:
		return a.handleViewerKeys(msg)
	case a.status == StatusMissingNode:
		return a.handleNodeListKeys(msg)
	default:
		return a.handleListingKeys(msg)
	}
}

func (a *App) handleListingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Up):
		a.entries.MoveUp()
	case key.Matches(msg, a.keys.Down):
		a.entries.MoveDown()
	case key.Matches(msg, a.keys.PageUp):
		a.entries.PageUp()
	case key.Matches(msg, a.keys.PageDown):
		a.entries.PageDown()
	case key.Matches(msg, a.keys.Top):
		a.entries.JumpToTop()
	case key.Matches(msg, a.keys.Bottom):
		a.entries.JumpToBottom()
	case key.Matches(msg, a.keys.Filter):
		a.activeModalName = modalFilter
		a.filterInput.SetValue(a.loc.State.FileName)
		a.filterInput.CursorEnd()
		a.filterInput.Focus()
	case key.Matches(msg, a.keys.Open):
		if entry := a.entries.Selected(); entry != nil {
			return a, a.followLink(entry.NavigationTarget)
		}
	case key.Matches(msg, a.keys.Copy):
		ref, err := downloadRefOf(a.entries.Selected())
		a.copyLink(ref, err)
	case key.Matches(msg, a.keys.Export):
		if a.status != StatusReady {
			a.lastErr = "No entries to export"
			return a, nil
		}
		a.activeModalName = modalExport
	}
	return a, nil
}

func (a *App) handleNodeListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Up):
		if a.nodeCursor > 0 {
			a.nodeCursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.nodeCursor < len(a.nodes)-1 {
			a.nodeCursor++
		}
	case key.Matches(msg, a.keys.Top):
		a.nodeCursor = 0
	case key.Matches(msg, a.keys.Bottom):
		a.nodeCursor = maxInt(0, len(a.nodes)-1)
	case key.Matches(msg, a.keys.Open):
		if a.nodeCursor < len(a.nodes) {
			node := a.nodes[a.nodeCursor]
			return a, a.followLink(nav.ListingLink(models.NavigationState{NodeID: node.NodeID}))
		}
	}
	return a, nil
}

func (a *App) handleViewerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Up):
		a.viewer.ScrollUp(1)
	case key.Matches(msg, a.keys.Down):
		a.viewer.ScrollDown(1)
	case key.Matches(msg, a.keys.PageUp):
		a.viewer.PageUp()
	case key.Matches(msg, a.keys.PageDown):
		a.viewer.PageDown()
	case key.Matches(msg, a.keys.Top):
		a.viewer.GotoTop()
	case key.Matches(msg, a.keys.Bottom):
		a.viewer.GotoBottom()
	case key.Matches(msg, a.keys.Copy):
		state := a.loc.State
		if err := nav.ValidateViewer(state); err != nil {
			a.copyLink("", err)
			break
		}
		a.copyLink(a.client.DownloadURL(state.NodeID, state.FileName, models.UnlimitedLines), nil)
	case key.Matches(msg, a.keys.Export):
		a.saveViewerFile()
	}
	return a, nil
}

// saveViewerFile writes the downloaded content of the open file to disk
func (a *App) saveViewerFile() {
	if a.status != StatusReady {
		a.lastErr = "Save failed: " + ErrNothingToExport.Error()
		return
	}
	target, err := a.exporter.SaveFile(a.loc.State.FileName, a.viewerContent)
	if err != nil {
		a.toasts.AddErr(err)
		a.lastErr = "Save failed: " + err.Error()
		logging.Warn("save failed", zap.String("file", a.loc.State.FileName), zap.Error(err))
		return
	}
	a.lastErr = "Saved " + target
	logging.Info("saved log file", zap.String("file", a.loc.State.FileName), zap.String("path", target))
}

func (a *App) handleExportInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		a.activeModalName = modalNone
		return a, nil
	}

	state := a.loc.State
	entries := a.entries.Entries()

	var target string
	var err error
	switch msg.String() {
	case "1":
		target = a.exporter.GetDefaultFileName(state.NodeID, "csv")
		err = a.exporter.ExportToCSV(entries, target)
	case "2":
		target = a.exporter.GetDefaultFileName(state.NodeID, "json")
		err = a.exporter.ExportToJSON(state, entries, target, true)
	case "3":
		target = a.exporter.GetDefaultFileName(state.NodeID, "jsonl")
		err = a.exporter.ExportToJSONL(entries, target)
	case "4":
		target = a.exporter.GetDefaultFileName(state.NodeID, "text")
		err = a.exporter.ExportToText(entries, target)
	default:
		return a, nil
	}

	a.activeModalName = modalNone
	if err != nil {
		a.toasts.AddErr(err)
		a.lastErr = "Export failed: " + err.Error()
		logging.Warn("export failed", zap.String("path", target), zap.Error(err))
		return a, nil
	}
	a.lastErr = fmt.Sprintf("Exported %d entries: %s", len(entries), a.exporter.GetLastExportPath())
	return a, nil
}

func (a *App) copyLink(link string, err error) {
	if err == nil {
		err = copyTextToClipboard(link)
	}
	if err != nil {
		a.toasts.AddErr(err)
		a.lastErr = "Copy failed: " + err.Error()
		return
	}
	a.lastErr = "Copied " + link
}

func (a *App) handleFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.closePrompts()
		return a, nil
	case tea.KeyEnter:
		state := a.loc.State
		state.FileName = strings.TrimSpace(a.filterInput.Value())
		a.closePrompts()
		return a, a.followLink(nav.ListingLink(state))
	}
	var cmd tea.Cmd
	a.filterInput, cmd = a.filterInput.Update(msg)
	return a, cmd
}

func (a *App) handleGoToInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.closePrompts()
		return a, nil
	case tea.KeyEnter:
		link := a.gotoInput.Value()
		// pasted browser URLs carry the route in the fragment
		if loc, err := a.share.DecodeLink(link); err == nil {
			link = loc.Link()
		}
		a.closePrompts()
		return a, a.followLink(link)
	}
	var cmd tea.Cmd
	a.gotoInput, cmd = a.gotoInput.Update(msg)
	return a, cmd
}

func (a *App) closePrompts() {
	a.activeModalName = modalNone
	a.filterInput.Blur()
	a.gotoInput.Blur()
}
