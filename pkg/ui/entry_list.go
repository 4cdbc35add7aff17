package ui

import (
	"github.com/user/ray-log-explorer/pkg/models"
)

// EntryList manages the listing rows with a scrolling window
type EntryList struct {
	entries        []models.LogEntry
	selectedIdx    int
	scrollOffset   int
	viewportHeight int
}

// NewEntryList creates a new entry list
func NewEntryList(height int) *EntryList {
	return &EntryList{
		entries:        []models.LogEntry{},
		selectedIdx:    0,
		scrollOffset:   0,
		viewportHeight: maxInt(1, height),
	}
}

// SetEntries replaces the entries and resets the selection
func (el *EntryList) SetEntries(entries []models.LogEntry) {
	el.entries = entries
	el.selectedIdx = 0
	el.scrollOffset = 0
}

// Entries returns all entries
func (el *EntryList) Entries() []models.LogEntry {
	return el.entries
}

// Len returns the number of entries
func (el *EntryList) Len() int {
	return len(el.entries)
}

// Visible returns the entries inside the window and the index of the first one
func (el *EntryList) Visible() ([]models.LogEntry, int) {
	if el.scrollOffset >= len(el.entries) {
		return []models.LogEntry{}, el.scrollOffset
	}
	end := minInt(len(el.entries), el.scrollOffset+el.viewportHeight)
	return el.entries[el.scrollOffset:end], el.scrollOffset
}

// Selected returns the selected entry, or nil when the list is empty
func (el *EntryList) Selected() *models.LogEntry {
	if el.selectedIdx < 0 || el.selectedIdx >= len(el.entries) {
		return nil
	}
	return &el.entries[el.selectedIdx]
}

// SelectedIndex returns the absolute index of the selection
func (el *EntryList) SelectedIndex() int {
	return el.selectedIdx
}

// MoveUp moves the selection up one row
func (el *EntryList) MoveUp() {
	el.selectIndex(el.selectedIdx - 1)
}

// MoveDown moves the selection down one row
func (el *EntryList) MoveDown() {
	el.selectIndex(el.selectedIdx + 1)
}

// PageUp moves the selection up one window
func (el *EntryList) PageUp() {
	el.selectIndex(el.selectedIdx - el.viewportHeight)
}

// PageDown moves the selection down one window
func (el *EntryList) PageDown() {
	el.selectIndex(el.selectedIdx + el.viewportHeight)
}

// JumpToTop selects the first entry
func (el *EntryList) JumpToTop() {
	el.selectIndex(0)
}

// JumpToBottom selects the last entry
func (el *EntryList) JumpToBottom() {
	el.selectIndex(len(el.entries) - 1)
}

// SetViewportHeight sets the number of visible rows
func (el *EntryList) SetViewportHeight(height int) {
	el.viewportHeight = maxInt(1, height)
	el.keepSelectionVisible()
}

// GetMaxScroll returns the maximum scroll offset
func (el *EntryList) GetMaxScroll() int {
	return maxInt(0, len(el.entries)-el.viewportHeight)
}

func (el *EntryList) selectIndex(idx int) {
	if len(el.entries) == 0 {
		el.selectedIdx = 0
		el.scrollOffset = 0
		return
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(el.entries) {
		idx = len(el.entries) - 1
	}
	el.selectedIdx = idx
	el.keepSelectionVisible()
}

func (el *EntryList) keepSelectionVisible() {
	if el.selectedIdx < el.scrollOffset {
		el.scrollOffset = el.selectedIdx
	}
	if el.selectedIdx >= el.scrollOffset+el.viewportHeight {
		el.scrollOffset = el.selectedIdx - el.viewportHeight + 1
	}
	if el.scrollOffset > el.GetMaxScroll() {
		el.scrollOffset = el.GetMaxScroll()
	}
	if el.scrollOffset < 0 {
		el.scrollOffset = 0
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
