package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/five82/shutter/internal/photoapi"
)

// renderMain renders the full screen: header, the two panes, the
// notification bar, and the footer.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderPanes())
	b.WriteString("\n")
	b.WriteString(m.renderNotification())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	left := styles.Logo.Render("shutter") + " " + styles.MutedText.Render("photo search & upload")
	right := styles.FaintText.Render(m.theme.Name)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderPanes lays the search and upload panes side by side, or stacked on
// narrow terminals.
func (m Model) renderPanes() string {
	width := max(m.width, LayoutMinWidth)
	if width < LayoutCompactWidth {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderSearchPane(width),
			m.renderUploadPane(width),
		)
	}
	half := width / 2
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderSearchPane(half),
		m.renderUploadPane(width-half),
	)
}

// paneStyle returns the bordered style for a pane of the given outer width.
func (m Model) paneStyle(focused bool, outer int) lipgloss.Style {
	styles := m.theme.Styles()
	style := styles.Pane
	if focused {
		style = styles.FocusedPane
	}
	// Width covers content and padding; the border adds two columns.
	return style.Width(max(outer-2, 10))
}

func (m Model) renderSearchPane(outer int) string {
	styles := m.theme.Styles()
	focused := m.focus == paneQuery || m.focus == paneResults

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Search Photos"))
	b.WriteString("\n")
	b.WriteString(m.search.InputView())
	b.WriteString("\n")
	if m.search.Busy() {
		b.WriteString(m.spinner.View() + styles.Text.Render(" Searching..."))
	} else {
		b.WriteString(styles.FaintText.Render("enter to search"))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderResults())

	return m.paneStyle(focused, outer).Render(b.String())
}

func (m Model) renderResults() string {
	styles := m.theme.Styles()
	results := m.search.Results()
	if len(results) == 0 {
		return styles.FaintText.Render("No results")
	}

	selected := m.search.SelectedIndex()
	start := 0
	if selected >= resultsMaxRows {
		start = selected - resultsMaxRows + 1
	}
	end := min(start+resultsMaxRows, len(results))

	lines := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		line := fmt.Sprintf("%2d. %s", i+1, photoapi.DisplayName(results[i]))
		switch {
		case i == selected && m.focus == paneResults:
			line = styles.Selected.Render(line)
		case i == selected:
			line = styles.AccentText.Render(line)
		default:
			line = styles.Text.Render(line)
		}
		lines = append(lines, line)
	}
	if len(results) > resultsMaxRows {
		lines = append(lines, styles.FaintText.Render(fmt.Sprintf("%d of %d", selected+1, len(results))))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderUploadPane(outer int) string {
	styles := m.theme.Styles()
	focused := m.focus == panePicker || m.focus == paneLabels

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Upload Photo"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(m.picker.CurrentDirectory))
	b.WriteString("\n")
	b.WriteString(m.picker.View())
	b.WriteString("\n")

	if c, ok := m.upload.Candidate(); ok {
		b.WriteString(styles.Text.Render("Selected: " + c.FileName))
		b.WriteString(styles.MutedText.Render(fmt.Sprintf(" (%s, %s)", c.MIMEType, humanize.Bytes(uint64(max(c.Size, 0))))))
	} else {
		b.WriteString(styles.MutedText.Render("No file selected"))
	}
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Custom labels (comma-separated)"))
	b.WriteString("\n")
	b.WriteString(m.upload.LabelsView())
	b.WriteString("\n")
	if m.upload.Busy() {
		b.WriteString(m.spinner.View() + styles.Text.Render(" Uploading..."))
	} else {
		b.WriteString(styles.FaintText.Render("enter in labels or ctrl+u to upload"))
	}

	return m.paneStyle(focused, outer).Render(b.String())
}

func (m Model) renderNotification() string {
	n := m.center.Current()
	if n.IsZero() {
		return ""
	}
	return m.theme.Styles().NotificationStyle(n.Severity).Render(n.Text)
}
