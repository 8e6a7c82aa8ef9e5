// Package browse provides the infinite-scroll list view over a catalogue
// collection.
package browse

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/browerscan/pocketbase.cn/internal/adapters/driving/tui/components/input"
	"github.com/browerscan/pocketbase.cn/internal/adapters/driving/tui/components/list"
	"github.com/browerscan/pocketbase.cn/internal/adapters/driving/tui/components/status"
	"github.com/browerscan/pocketbase.cn/internal/adapters/driving/tui/keymap"
	"github.com/browerscan/pocketbase.cn/internal/adapters/driving/tui/messages"
	"github.com/browerscan/pocketbase.cn/internal/adapters/driving/tui/styles"
	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driving"
	"github.com/browerscan/pocketbase.cn/internal/logger"
)

// FilterDebounce is how long typing must pause before the filter applies.
const FilterDebounce = 150 * time.Millisecond

// prefetchRows is how close to the last row the cursor gets before the next
// page is requested.
const prefetchRows = 3

// Opener opens a browser that loads more when observer fires.
type Opener func(ctx context.Context, observer driven.VisibilityObserver) (driving.Browser, error)

// View is a paginated list of one collection.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	list      *list.RowList
	filter    *input.SearchInput
	statusbar *status.Bar

	collection string
	title      string
	siteURL    string
	open       Opener
	sentinel   *Sentinel
	browser    driving.Browser
	ctx        context.Context

	state     domain.BrowseState
	err       error
	filtering bool
	seq       int
	width     int
	height    int
	ready     bool
}

// NewView creates a list view for collection. Selected rows are shown as
// links under siteURL.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	collection, title, siteURL string,
	open Opener,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	rows := list.NewRowList(s)
	rows.SetHeader(title)
	rows.SetEmptyText("暂无数据")

	filter := input.NewSearchInput(s)
	filter.SetLabel("Filter: ")
	filter.SetPlaceholder("输入关键词筛选...")
	filter.Blur()

	return &View{
		styles:     s,
		keymap:     km,
		list:       rows,
		filter:     filter,
		statusbar:  status.NewBar(s, km),
		collection: collection,
		title:      title,
		siteURL:    strings.TrimRight(siteURL, "/"),
		open:       open,
		sentinel:   NewSentinel(),
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Open discards any previous browser and opens a fresh one.
func (v *View) Open() tea.Cmd {
	closePrevious := v.detach()

	v.state = domain.BrowseState{Collection: v.collection, Loading: true}
	v.err = nil
	v.filtering = false
	v.filter.Blur()
	v.filter.SetValue("")
	v.list.SetRows(nil)
	v.list.SetFooter("")
	v.statusbar.SetState(status.StateLoading)
	v.statusbar.SetMessage("")

	open, sentinel, ctx, collection := v.open, v.sentinel, v.ctx, v.collection
	return func() tea.Msg {
		if closePrevious != nil {
			closePrevious()
		}
		if open == nil {
			return messages.BrowseOpened{Collection: collection, Err: ErrNoBrowseService}
		}
		b, err := open(ctx, sentinel)
		if err != nil {
			return messages.BrowseOpened{Collection: collection, Err: err}
		}
		if err := b.Start(ctx); err != nil {
			if cerr := b.Close(ctx); cerr != nil {
				logger.Warn("Closing %s browser failed: %v", collection, cerr)
			}
			return messages.BrowseOpened{Collection: collection, Err: err}
		}
		return messages.BrowseOpened{Collection: collection, Browser: b, State: b.State()}
	}
}

// Close stores the loaded state and stops loading. It returns nil when no
// browser is open.
func (v *View) Close() tea.Cmd {
	closeBrowser := v.detach()
	if closeBrowser == nil {
		return nil
	}
	return func() tea.Msg {
		closeBrowser()
		return nil
	}
}

// detach forgets the open browser and returns a function that closes it,
// or nil when none is open.
func (v *View) detach() func() {
	b := v.browser
	if b == nil {
		return nil
	}
	v.browser = nil
	ctx, collection := v.ctx, v.collection
	return func() {
		if err := b.Close(ctx); err != nil {
			logger.Warn("Closing %s browser failed: %v", collection, err)
		}
	}
}

// Update handles messages for the list view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.filtering {
			return v.handleFilterKey(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.BrowseOpened:
		if msg.Collection != v.collection {
			return v, nil
		}
		if msg.Err != nil {
			v.err = msg.Err
			v.state.Loading = false
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage(msg.Err.Error())
			return v, nil
		}
		v.browser = msg.Browser
		v.applyState(msg.State)
		return v, nil

	case messages.BrowseUpdated:
		if msg.Collection != v.collection || v.browser == nil {
			return v, nil
		}
		v.applyState(msg.State)
		return v, nil

	case messages.FilterDebounced:
		if msg.Collection != v.collection || msg.Seq != v.seq {
			return v, nil
		}
		return v, v.applyFilter()
	}

	return v, nil
}

// handleKeyMsg processes keys while navigating the list.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		closeBrowser := v.detach()
		return v, func() tea.Msg {
			if closeBrowser != nil {
				closeBrowser()
			}
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if msg.Type == tea.KeyEnter {
		if i := v.list.Selected(); i >= 0 && i < len(v.state.Items) {
			v.statusbar.SetState(status.StateInfo)
			v.statusbar.SetMessage(v.siteURL + v.state.Items[i].URL)
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
		return v, v.maybeLoadMore()
	}

	switch msg.String() {
	case "k":
		v.list.MoveUp()
	case "j":
		v.list.MoveDown()
		return v, v.maybeLoadMore()
	case "/":
		v.filtering = true
		return v, v.filter.Focus()
	case "s":
		return v, v.cycleSort()
	case "r":
		return v, v.retry()
	}

	return v, nil
}

// handleFilterKey processes keys while typing a filter.
func (v *View) handleFilterKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEsc:
		v.filtering = false
		v.filter.Blur()
		return v, nil
	case tea.KeyEnter:
		v.filtering = false
		v.filter.Blur()
		v.seq++
		return v, v.applyFilter()
	}

	before := v.filter.Value()
	var cmd tea.Cmd
	v.filter, cmd = v.filter.Update(msg)
	if v.filter.Value() == before {
		return v, cmd
	}

	v.seq++
	seq, collection := v.seq, v.collection
	tick := tea.Tick(FilterDebounce, func(time.Time) tea.Msg {
		return messages.FilterDebounced{Collection: collection, Seq: seq}
	})
	return v, tea.Batch(cmd, tick)
}

// maybeLoadMore fires the sentinel when the cursor nears the end.
func (v *View) maybeLoadMore() tea.Cmd {
	if v.browser == nil || !v.state.HasMore || v.state.Busy() || v.state.Error != "" {
		return nil
	}
	if !v.list.NearEnd(prefetchRows) {
		return nil
	}

	v.state.LoadingMore = true
	v.list.SetFooter("加载中...")
	sentinel := v.sentinel
	return v.settle(func(driving.Browser) { sentinel.Notify() })
}

func (v *View) applyFilter() tea.Cmd {
	query := strings.TrimSpace(v.filter.Value())
	if v.browser == nil || query == v.state.Selection.Query {
		return nil
	}
	v.markLoading()
	ctx := v.ctx
	return v.settle(func(b driving.Browser) { b.SetQuery(ctx, query) })
}

func (v *View) cycleSort() tea.Cmd {
	if v.browser == nil {
		return nil
	}
	v.markLoading()
	ctx := v.ctx
	return v.settle(func(b driving.Browser) { b.CycleSort(ctx) })
}

func (v *View) retry() tea.Cmd {
	if v.browser == nil || v.state.Error == "" {
		return nil
	}
	v.markLoading()
	ctx := v.ctx
	return v.settle(func(b driving.Browser) { b.Retry(ctx) })
}

func (v *View) markLoading() {
	v.state.Loading = true
	v.statusbar.SetState(status.StateLoading)
}

// settle runs action on the open browser and reports the state it leaves.
func (v *View) settle(action func(driving.Browser)) tea.Cmd {
	b, collection := v.browser, v.collection
	return func() tea.Msg {
		action(b)
		return messages.BrowseUpdated{Collection: collection, State: b.State()}
	}
}

// applyState renders a browser state.
func (v *View) applyState(state domain.BrowseState) {
	rows := itemRows(state.Items)
	if state.Endpoint != v.state.Endpoint {
		v.list.SetRows(rows)
	} else {
		v.list.ReplaceRows(rows)
	}
	v.state = state
	v.err = nil

	switch {
	case state.LoadingMore:
		v.list.SetFooter("加载中...")
	case !state.HasMore && len(state.Items) > 0:
		v.list.SetFooter("没有更多了")
	default:
		v.list.SetFooter("")
	}

	switch {
	case state.Error != "":
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(state.Error)
	case state.Loading:
		v.statusbar.SetState(status.StateLoading)
	default:
		v.statusbar.SetState(status.StateBrowsing)
		v.statusbar.SetResultCount(len(state.Items))
		v.statusbar.SetMessage(fmt.Sprintf("%d loaded · %s", len(state.Items), state.SortLabel))
	}
}

// itemRows renders list items as rows.
func itemRows(items []domain.ListItem) []list.Row {
	rows := make([]list.Row, len(items))
	for i, item := range items {
		row := list.Row{
			Title:   item.Title,
			Detail:  item.Stat,
			Preview: item.Description,
		}
		if item.Featured {
			row.Badge = "★ " + domain.FeaturedCategory
		} else if item.Category != "" {
			row.Badge = item.Category
		}
		rows[i] = row
	}
	return rows
}

// View renders the list view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render(v.title), v.renderSelection(), "")

	if v.filtering || v.filter.Value() != "" {
		sections = append(sections, v.filter.View(), "")
	}

	switch {
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	case v.state.Loading && len(v.state.Items) == 0:
		sections = append(sections, v.styles.Muted.Render("加载中..."))
	default:
		sections = append(sections, v.list.View())
	}

	if v.state.Error != "" {
		sections = append(sections, "", v.styles.Error.Render(v.state.Error+"  [r] 重试"))
	}

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderSelection renders the active query, category and sort.
func (v *View) renderSelection() string {
	sel := v.state.Selection
	parts := make([]string, 0, 3)
	if sel.Query != "" {
		parts = append(parts, "q: "+sel.Query)
	}
	if sel.Category != "" {
		parts = append(parts, "category: "+sel.Category)
	}
	if v.state.SortLabel != "" {
		parts = append(parts, "sort: "+v.state.SortLabel)
	}
	return v.styles.Muted.Render(strings.Join(parts, "  "))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.filter.SetWidth(width)
	v.list.SetDimensions(width, height-9) // Reserve space for header, filter, status
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Collection returns the collection this view lists.
func (v *View) Collection() string {
	return v.collection
}

// State returns the last rendered browser state.
func (v *View) State() domain.BrowseState {
	return v.state
}

// Browser returns the open browser, or nil.
func (v *View) Browser() driving.Browser {
	return v.browser
}

// Sentinel returns the end-of-list marker browsers observe.
func (v *View) Sentinel() *Sentinel {
	return v.sentinel
}

// Filtering returns whether the filter input has focus.
func (v *View) Filtering() bool {
	return v.filtering
}

// SelectedIndex returns the index of the selected row.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// StatusMessage returns the text shown in the status bar.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}

// Err returns the error that prevented the list from opening, if any.
func (v *View) Err() error {
	return v.err
}
