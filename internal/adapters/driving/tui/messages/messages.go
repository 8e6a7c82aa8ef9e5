// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driving"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewPlugins is the plugin marketplace list.
	ViewPlugins
	// ViewShowcase is the showcase gallery list.
	ViewShowcase
	// ViewSearch is the command-palette search.
	ViewSearch
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewPlugins:
		return "plugins"
	case ViewShowcase:
		return "showcase"
	case ViewSearch:
		return "search"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// SearchCompleted carries ranked candidates back to the search view.
type SearchCompleted struct {
	Query   string
	Results []domain.SearchCandidate
	Err     error
}

// HistoryLoaded carries the remembered search terms.
type HistoryLoaded struct {
	Terms []string
	Err   error
}

// BrowseOpened carries a started list view, or the error that prevented it.
type BrowseOpened struct {
	Collection string
	Browser    driving.Browser
	State      domain.BrowseState
	Err        error
}

// BrowseUpdated carries the state of a list view after a load settled.
type BrowseUpdated struct {
	Collection string
	State      domain.BrowseState
}

// FilterDebounced fires once typing in a list filter has paused.
// Seq identifies the keystroke it was scheduled for; stale ticks are ignored.
type FilterDebounced struct {
	Collection string
	Seq        int
}
