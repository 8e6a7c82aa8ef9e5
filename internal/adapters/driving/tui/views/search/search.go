// Package search provides the command-palette search view for the TUI.
package search

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/browerscan/pocketbase.cn/internal/adapters/driving/tui/components/input"
	"github.com/browerscan/pocketbase.cn/internal/adapters/driving/tui/components/list"
	"github.com/browerscan/pocketbase.cn/internal/adapters/driving/tui/components/status"
	"github.com/browerscan/pocketbase.cn/internal/adapters/driving/tui/keymap"
	"github.com/browerscan/pocketbase.cn/internal/adapters/driving/tui/messages"
	"github.com/browerscan/pocketbase.cn/internal/adapters/driving/tui/styles"
	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driving"
	"github.com/browerscan/pocketbase.cn/internal/logger"
)

// View represents the search view with input, results list, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.RowList
	statusbar *status.Bar

	searchService driving.SearchService
	ctx           context.Context
	siteURL       string
	limit         int

	results    []domain.SearchCandidate
	history    []string
	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = input mode (typing), false = results mode (navigating)
}

// NewView creates a new search view. Selected results are shown as links
// under siteURL; limit caps the result count.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	searchService driving.SearchService,
	siteURL string,
	limit int,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	results := list.NewRowList(s)
	results.SetEmptyText("未找到相关结果")

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewSearchInput(s),
		list:          results,
		statusbar:     status.NewBar(s, km),
		searchService: searchService,
		ctx:           context.Background(),
		siteURL:       strings.TrimRight(siteURL, "/"),
		limit:         limit,
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.loadHistory())
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, v.loadHistory()

	case messages.HistoryLoaded:
		if msg.Err != nil {
			logger.Warn("search history unavailable: %v", msg.Err)
			return v, nil
		}
		v.history = msg.Terms
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var inputCmd tea.Cmd
	v.input, inputCmd = v.input.Update(msg)
	return v, inputCmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if msg.Type == tea.KeyEnter && v.focusInput {
		query := strings.TrimSpace(v.input.Value())
		if query == "" {
			return v, nil
		}
		v.statusbar.SetState(status.StateSearching)
		v.focusInput = false
		v.input.Blur()
		return v, v.performSearch(query)
	}

	if v.focusInput {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	// Results mode.
	if msg.Type == tea.KeyEnter {
		if row := v.SelectedResult(); row != nil {
			v.statusbar.SetState(status.StateInfo)
			v.statusbar.SetMessage(v.siteURL + row.URL)
		}
		return v, nil
	}

	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyUp:
		v.list.MoveUp()
		return v, nil
	case tea.KeyDown:
		v.list.MoveDown()
		return v, nil
	}

	switch msg.String() {
	case "k":
		v.list.MoveUp()
	case "j":
		v.list.MoveDown()
	case "n":
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	}

	return v, nil
}

// performSearch records the term and ranks the catalogue against it.
func (v *View) performSearch(query string) tea.Cmd {
	return func() tea.Msg {
		if v.searchService == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}

		if err := v.searchService.Remember(v.ctx, query); err != nil {
			logger.Warn("failed to record search term: %v", err)
		}

		results, err := v.searchService.Search(v.ctx, query, v.limit)
		return messages.SearchCompleted{Query: query, Results: results, Err: err}
	}
}

// loadHistory fetches the remembered search terms.
func (v *View) loadHistory() tea.Cmd {
	if v.searchService == nil {
		return nil
	}
	return func() tea.Msg {
		terms, err := v.searchService.History(v.ctx)
		return messages.HistoryLoaded{Terms: terms, Err: err}
	}
}

// handleSearchCompleted processes search results.
func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return
	}

	v.err = nil
	v.results = msg.Results
	v.list.SetRows(candidateRows(msg.Results))
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage("")
	v.statusbar.SetResultCount(len(msg.Results))

	v.focusInput = false
	v.input.Blur()
}

// candidateRows renders candidates as list rows.
func candidateRows(candidates []domain.SearchCandidate) []list.Row {
	rows := make([]list.Row, len(candidates))
	for i, c := range candidates {
		row := list.Row{
			Title:   c.Title,
			Detail:  typeLabel(c.Type),
			Preview: c.Description,
		}
		if c.Category == domain.FeaturedCategory {
			row.Badge = "★ " + domain.FeaturedCategory
		}
		rows[i] = row
	}
	return rows
}

func typeLabel(t domain.CandidateType) string {
	switch t {
	case domain.CandidatePlugin:
		return "插件"
	case domain.CandidateShowcase:
		return "案例"
	case domain.CandidateDoc:
		return "文档"
	default:
		return string(t)
	}
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("Search"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.focusInput && v.input.Value() == "" && len(v.results) == 0 {
		sections = append(sections, v.renderHistory())
	} else {
		sections = append(sections, v.list.View())
	}

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHistory lists recent searches.
func (v *View) renderHistory() string {
	if len(v.history) == 0 {
		return v.styles.Muted.Render("输入关键词开始搜索")
	}

	lines := make([]string, 0, len(v.history)+1)
	lines = append(lines, v.styles.Subtitle.Render("最近搜索"))
	for _, term := range v.history {
		lines = append(lines, v.styles.Muted.Render("  "+term))
	}
	return strings.Join(lines, "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10) // Reserve space for header, input, status
	v.statusbar.SetWidth(width)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the search query.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Results returns the current search results.
func (v *View) Results() []domain.SearchCandidate {
	return v.results
}

// History returns the remembered search terms last loaded.
func (v *View) History() []string {
	return v.history
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// SelectedResult returns the currently selected result, or nil if none.
func (v *View) SelectedResult() *domain.SearchCandidate {
	i := v.list.Selected()
	if i < 0 || i >= len(v.results) {
		return nil
	}
	return &v.results[i]
}

// StatusMessage returns the text shown in the status bar.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// ClearError clears the current error.
func (v *View) ClearError() {
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
}

// Reset resets the view to initial input mode.
func (v *View) Reset() tea.Cmd {
	v.focusInput = true
	v.input.SetValue("")
	v.results = nil
	v.list.SetRows(nil)
	v.err = nil
	v.statusbar.Clear()
	return tea.Batch(v.input.Focus(), v.loadHistory())
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
