package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/browerscan/pocketbase.cn/internal/adapters/driving/tui/messages"
	"github.com/browerscan/pocketbase.cn/internal/adapters/driving/tui/styles"
	"github.com/browerscan/pocketbase.cn/internal/adapters/driving/tui/views/browse"
	"github.com/browerscan/pocketbase.cn/internal/adapters/driving/tui/views/menu"
	"github.com/browerscan/pocketbase.cn/internal/adapters/driving/tui/views/search"
	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driving"
	"github.com/browerscan/pocketbase.cn/internal/logger"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	menuView     *menu.View
	searchView   *search.View
	pluginsView  *browse.View
	showcaseView *browse.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	svc := ports.Browse

	pluginsView := browse.NewView(s, nil, domain.PluginsCollection.Name, "Plugins", ports.SiteURL,
		func(ctx context.Context, observer driven.VisibilityObserver) (driving.Browser, error) {
			return svc.Plugins(ctx, domain.BrowseOptions{}, observer)
		})
	showcaseView := browse.NewView(s, nil, domain.ShowcaseCollection.Name, "Showcase", ports.SiteURL,
		func(ctx context.Context, observer driven.VisibilityObserver) (driving.Browser, error) {
			return svc.Showcase(ctx, domain.BrowseOptions{}, observer)
		})

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		menuView:     menu.NewView(s),
		searchView:   search.NewView(s, nil, ports.Search, ports.SiteURL, ports.SearchLimit),
		pluginsView:  pluginsView,
		showcaseView: showcaseView,
		currentView:  messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.pluginsView.WithContext(ctx)
	a.showcaseView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("pbcn - PocketBase.cn"),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.menuView.SetDimensions(msg.Width, msg.Height)
		a.searchView.SetDimensions(msg.Width, msg.Height)
		a.pluginsView.SetDimensions(msg.Width, msg.Height)
		a.showcaseView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewMenu:
			a.menuView, cmd = a.menuView.Update(msg)
		case messages.ViewSearch:
			a.searchView, cmd = a.searchView.Update(msg)
			a.err = a.searchView.Err()
		case messages.ViewPlugins:
			a.pluginsView, cmd = a.pluginsView.Update(msg)
		case messages.ViewShowcase:
			a.showcaseView, cmd = a.showcaseView.Update(msg)
		case messages.ViewHelp:
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
		}
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewSearch:
			return a, tea.Batch(a.searchView.Reset(), a.searchView.Init())
		case messages.ViewPlugins:
			return a, a.pluginsView.Open()
		case messages.ViewShowcase:
			return a, a.showcaseView.Open()
		case messages.ViewMenu, messages.ViewHelp:
			// No initialisation needed
		}
		return a, nil

	case messages.SearchCompleted, messages.HistoryLoaded:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.BrowseOpened:
		view, active := a.browseView(msg.Collection)
		if view == nil {
			return a, nil
		}
		if !active && msg.Browser != nil {
			// The view was left while opening.
			return a, closeBrowser(a.ctx, msg.Browser)
		}
		view.Update(msg)
		a.err = view.Err()
		return a, nil

	case messages.BrowseUpdated:
		if view, _ := a.browseView(msg.Collection); view != nil {
			view.Update(msg)
		}
		return a, nil

	case messages.FilterDebounced:
		if view, _ := a.browseView(msg.Collection); view != nil {
			_, cmd = view.Update(msg)
		}
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewSearch {
			a.searchView, cmd = a.searchView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages to active view
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewPlugins:
		a.pluginsView, cmd = a.pluginsView.Update(msg)
	case messages.ViewShowcase:
		a.showcaseView, cmd = a.showcaseView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}

	return a, cmd
}

// browseView returns the list view of collection and whether it is active.
func (a *App) browseView(collection string) (*browse.View, bool) {
	switch collection {
	case a.pluginsView.Collection():
		return a.pluginsView, a.currentView == messages.ViewPlugins
	case a.showcaseView.Collection():
		return a.showcaseView, a.currentView == messages.ViewShowcase
	default:
		return nil, false
	}
}

func closeBrowser(ctx context.Context, b driving.Browser) tea.Cmd {
	return func() tea.Msg {
		if err := b.Close(ctx); err != nil {
			logger.Warn("Closing browser failed: %v", err)
		}
		return nil
	}
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewMenu:
		return a.menuView.View()
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewPlugins:
		return a.pluginsView.View()
	case messages.ViewShowcase:
		return a.showcaseView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back to Menu
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  q           Quit

Plugins / Showcase:
  j/k, ↑/↓    Navigate, more pages load near the end
  /           Filter by keyword
  s           Cycle sort order
  r           Retry a failed load
  enter       Show the page link

Search:
  (type)      Enter search query
  enter       Submit search
  n           New search
  esc         Back to Menu

[esc] back to menu`
}

// Run starts the TUI application. Open lists are closed before it returns
// so their loaded pages are stored for the next visit.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	a.Shutdown()
	return err
}

// Shutdown closes any open list.
func (a *App) Shutdown() {
	for _, v := range []*browse.View{a.pluginsView, a.showcaseView} {
		if cmd := v.Close(); cmd != nil {
			cmd()
		}
	}
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.Update(tea.WindowSizeMsg{Width: width, Height: height})
}
