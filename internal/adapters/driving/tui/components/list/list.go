// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/browerscan/pocketbase.cn/internal/adapters/driving/tui/styles"
)

// Row is one entry of a RowList.
type Row struct {
	// Title is the main line.
	Title string

	// Badge is rendered next to the title, e.g. a featured marker.
	Badge string

	// Detail is right-aligned on the title line, e.g. star counts.
	Detail string

	// Preview is the muted second line.
	Preview string
}

// RowList displays rows in a navigable list.
type RowList struct {
	header   string
	empty    string
	footer   string
	rows     []Row
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewRowList creates a new row list component.
func NewRowList(s *styles.Styles) *RowList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &RowList{
		header: "Results",
		empty:  "No results",
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the row list.
func (r *RowList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *RowList) Update(msg tea.Msg) (*RowList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // handling only relevant key types
		switch msg.Type {
		case tea.KeyUp:
			r.MoveUp()
		case tea.KeyDown:
			r.MoveDown()
		default:
		}
		switch msg.String() {
		case "k":
			r.MoveUp()
		case "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the row list.
func (r *RowList) View() string {
	if len(r.rows) == 0 {
		return r.styles.Muted.Render(r.empty)
	}

	lines := make([]string, 0, len(r.rows)+3)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("%s (%d)", r.header, len(r.rows))), "")

	// Each row takes two lines.
	visibleCount := (r.height - 4) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(r.rows) {
		end = len(r.rows)
	}

	for i := start; i < end; i++ {
		lines = append(lines, r.renderRow(i, &r.rows[i]))
	}

	if r.footer != "" {
		lines = append(lines, "", r.styles.Muted.Render(r.footer))
	}

	return strings.Join(lines, "\n")
}

func (r *RowList) renderRow(index int, row *Row) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	title := row.Title
	if title == "" {
		title = "(Untitled)"
	}

	maxTitleLen := r.width - len([]rune(row.Detail)) - 8
	if maxTitleLen < 10 {
		maxTitleLen = 10
	}
	title = Truncate(title, maxTitleLen)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(indicator + title)
	} else {
		titleLine = r.styles.Normal.Render(indicator + title)
	}
	if row.Badge != "" {
		titleLine += " " + r.styles.Badge.Render(row.Badge)
	}
	if row.Detail != "" {
		titleLine += "  " + r.styles.Muted.Render(row.Detail)
	}

	maxPreviewLen := r.width - 6
	if maxPreviewLen < 20 {
		maxPreviewLen = 20
	}
	return titleLine + "\n" + r.styles.Muted.Render("    "+Truncate(row.Preview, maxPreviewLen))
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// SetRows replaces the rows and resets the selection.
func (r *RowList) SetRows(rows []Row) {
	r.rows = rows
	r.selected = 0
}

// ReplaceRows swaps the rows and keeps the selection in range.
// Appending a page keeps the cursor where it was.
func (r *RowList) ReplaceRows(rows []Row) {
	r.rows = rows
	if r.selected >= len(rows) {
		r.selected = len(rows) - 1
	}
	if r.selected < 0 {
		r.selected = 0
	}
}

// Rows returns the current rows.
func (r *RowList) Rows() []Row {
	return r.rows
}

// SetHeader sets the header label.
func (r *RowList) SetHeader(header string) {
	r.header = header
}

// SetEmptyText sets what is shown when there are no rows.
func (r *RowList) SetEmptyText(text string) {
	r.empty = text
}

// SetFooter sets a muted line below the rows, e.g. a loading marker.
func (r *RowList) SetFooter(footer string) {
	r.footer = footer
}

// Selected returns the index of the selected row.
func (r *RowList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *RowList) SetSelected(index int) {
	if index >= 0 && index < len(r.rows) {
		r.selected = index
	}
}

// SelectedRow returns the currently selected row, or nil if none.
func (r *RowList) SelectedRow() *Row {
	if len(r.rows) == 0 || r.selected < 0 || r.selected >= len(r.rows) {
		return nil
	}
	return &r.rows[r.selected]
}

// NearEnd reports whether the selection is within n rows of the last row.
func (r *RowList) NearEnd(n int) bool {
	if len(r.rows) == 0 {
		return false
	}
	return len(r.rows)-1-r.selected <= n
}

// MoveUp moves selection up.
func (r *RowList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *RowList) MoveDown() {
	if r.selected < len(r.rows)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *RowList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Width returns the current width.
func (r *RowList) Width() int {
	return r.width
}

// Height returns the current height.
func (r *RowList) Height() int {
	return r.height
}

// Count returns the number of rows.
func (r *RowList) Count() int {
	return len(r.rows)
}

// IsEmpty returns whether the list is empty.
func (r *RowList) IsEmpty() bool {
	return len(r.rows) == 0
}
