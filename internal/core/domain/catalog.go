package domain

// Plugin is a plugin marketplace entry as returned by /api/plugins/list.
type Plugin struct {
	ID              string  `json:"id"`
	Slug            string  `json:"slug"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Category        string  `json:"category,omitempty"`
	Icon            string  `json:"icon,omitempty"`
	Featured        bool    `json:"featured,omitempty"`
	Stars           int     `json:"stars,omitempty"`
	DownloadsTotal  int     `json:"downloads_total,omitempty"`
	GithubUpdatedAt *string `json:"github_updated_at,omitempty"`
}

// Showcase is a showcase gallery entry as returned by /api/showcase/list.
type Showcase struct {
	ID          string  `json:"id"`
	Slug        string  `json:"slug"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"`
	Cover       string  `json:"cover,omitempty"`
	URL         string  `json:"url,omitempty"`
	Votes       int     `json:"votes,omitempty"`
	Featured    bool    `json:"featured,omitempty"`
	UpdatedAt   *string `json:"updated,omitempty"`
}

// DocEntry is one documentation page of the static site.
type DocEntry struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Collection describes one browsable catalogue collection.
type Collection struct {
	// Name is the PocketBase collection name, used for file URLs.
	Name string

	// Endpoint is the list endpoint path.
	Endpoint string

	// PagePath is the site page that browses the collection.
	PagePath string

	// DefaultSort is the sort key used when none is chosen.
	DefaultSort string

	// SortOptions are the selectable sort keys.
	SortOptions []SortOption
}

// PluginsCollection is the plugin marketplace.
var PluginsCollection = Collection{
	Name:        "plugins",
	Endpoint:    "/api/plugins/list",
	PagePath:    "/plugins",
	DefaultSort: "-featured,-created",
	SortOptions: []SortOption{
		{Value: "-featured,-created", Label: "精选优先"},
		{Value: "-created", Label: "最新"},
		{Value: "-downloads_total", Label: "最多下载"},
		{Value: "-stars", Label: "最多收藏"},
		{Value: "name", Label: "名称"},
	},
}

// ShowcaseCollection is the showcase gallery.
var ShowcaseCollection = Collection{
	Name:        "showcase",
	Endpoint:    "/api/showcase/list",
	PagePath:    "/showcase",
	DefaultSort: "-created",
	SortOptions: []SortOption{
		{Value: "-created", Label: "最新"},
		{Value: "-votes", Label: "最多投票"},
		{Value: "title", Label: "名称"},
	},
}

// HasSort reports whether value is one of the collection's sort keys.
func (c Collection) HasSort(value string) bool {
	for _, opt := range c.SortOptions {
		if opt.Value == value {
			return true
		}
	}
	return false
}
