package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// helpGroups labels the columns of KeyMap.FullHelp
var helpGroups = []string{"Nav", "Browse", "Action", "Other"}

// HelpModal provides an interactive help interface
type HelpModal struct {
	visible bool
	width   int
	height  int
	keys    KeyMap
}

// NewHelpModal creates a new help modal for the given bindings
func NewHelpModal(keys KeyMap) *HelpModal {
	return &HelpModal{
		visible: false,
		width:   80,
		height:  24,
		keys:    keys,
	}
}

// SetKeys replaces the bindings listed by the modal
func (hm *HelpModal) SetKeys(keys KeyMap) {
	hm.keys = keys
}

// SetVisible toggles visibility
func (hm *HelpModal) SetVisible(visible bool) {
	hm.visible = visible
}

// IsVisible returns current visibility state
func (hm *HelpModal) IsVisible() bool {
	return hm.visible
}

// Render renders the help modal
func (hm *HelpModal) Render(width, height int) string {
	if !hm.visible {
		return ""
	}

	hm.width = width
	hm.height = height

	style := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(lipgloss.Color("12")).
		Padding(1).
		Width(maxInt(20, width-4))

	return style.Render(hm.getHelpContent())
}

func (hm *HelpModal) getHelpContent() string {
	var sb strings.Builder

	sb.WriteString(lipgloss.NewStyle().Bold(true).Render("RAY LOG EXPLORER HELP"))
	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("Every page is a link; g accepts any of them"))
	sb.WriteString("\n\n")

	sb.WriteString(hm.renderResponsiveTable(hm.rows()))
	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")).Render("LINKS"))
	sb.WriteString("\n")
	for _, example := range []string{
		"/logs/                                   node list",
		"/logs/?nodeId=<id>&folder=<dir>          folder listing",
		"/logs/?nodeId=<id>&fileName=<substring>  filtered listing",
		"/logs/viewer?nodeId=<id>&fileName=<path> file viewer",
	} {
		sb.WriteString("  " + example + "\n")
	}

	return sb.String()
}

func (hm *HelpModal) rows() [][3]string {
	rows := [][3]string{}
	for i, column := range hm.keys.FullHelp() {
		group := "Other"
		if i < len(helpGroups) {
			group = helpGroups[i]
		}
		for _, b := range column {
			h := b.Help()
			if h.Key == "" {
				continue
			}
			rows = append(rows, [3]string{group, h.Key, h.Desc})
		}
	}
	return rows
}

func (hm *HelpModal) renderResponsiveTable(rows [][3]string) string {
	var sb strings.Builder
	contentWidth := hm.width - 10
	if contentWidth < 56 {
		contentWidth = 56
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	separatorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	if contentWidth >= 90 {
		groupWidth := 8
		keyWidth := 16
		actionWidth := contentWidth - groupWidth - keyWidth - 6
		sb.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-*s %-*s\n", groupWidth, "GROUP", keyWidth, "KEY", actionWidth, "ACTION")))
		sb.WriteString(separatorStyle.Render(strings.Repeat("─", groupWidth+keyWidth+actionWidth+2)))
		sb.WriteString("\n")
		for _, row := range rows {
			for i, line := range wrapWords(row[2], actionWidth) {
				groupCell, keyCell := "", ""
				if i == 0 {
					groupCell, keyCell = row[0], row[1]
				}
				sb.WriteString(fmt.Sprintf("%-*s %-*s %-*s\n", groupWidth, groupCell, keyWidth, keyCell, actionWidth, line))
			}
		}
		return sb.String()
	}

	keyWidth := 16
	actionWidth := contentWidth - keyWidth - 4
	sb.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-*s\n", keyWidth, "KEY", actionWidth, "ACTION")))
	sb.WriteString(separatorStyle.Render(strings.Repeat("─", keyWidth+actionWidth+1)))
	sb.WriteString("\n")
	for _, row := range rows {
		for i, line := range wrapWords(row[2], actionWidth) {
			keyCell := ""
			if i == 0 {
				keyCell = row[1]
			}
			sb.WriteString(fmt.Sprintf("%-*s %-*s\n", keyWidth, keyCell, actionWidth, line))
		}
	}
	return sb.String()
}

func wrapWords(input string, width int) []string {
	if width < 8 {
		return []string{input}
	}
	words := strings.Fields(input)
	if len(words) == 0 {
		return []string{""}
	}
	lines := make([]string, 0, 2)
	current := words[0]
	for _, w := range words[1:] {
		if len(current)+1+len(w) <= width {
			current += " " + w
			continue
		}
		lines = append(lines, current)
		current = w
	}
	lines = append(lines, current)
	return lines
}
