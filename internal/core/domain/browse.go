package domain

// ListItem is the display summary of one catalogue record.
type ListItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Featured    bool   `json:"featured,omitempty"`
	// Stat is a short collection-specific figure, e.g. "★ 12".
	Stat string `json:"stat,omitempty"`
	// URL is the site path of the record's page.
	URL string `json:"url"`
}

// BrowseState is what a list view renders.
type BrowseState struct {
	Collection  string     `json:"collection"`
	Selection   ListQuery  `json:"selection"`
	SortLabel   string     `json:"sortLabel"`
	Items       []ListItem `json:"items"`
	HasMore     bool       `json:"hasMore"`
	Loading     bool       `json:"loading"`
	LoadingMore bool       `json:"loadingMore"`
	Error       string     `json:"error,omitempty"`
	Endpoint    string     `json:"endpoint"`
	ShareURL    string     `json:"shareUrl,omitempty"`
}

// Busy reports whether a load is in flight.
func (s BrowseState) Busy() bool {
	return s.Loading || s.LoadingMore
}

// BrowseOptions opens a list view.
type BrowseOptions struct {
	// Query, Category and Sort are the initial selection. When all are empty
	// the selection is read from ShareURL instead.
	Query    string
	Category string
	Sort     string

	// ShareURL is a site page URL to restore the selection from, e.g.
	// "https://pocketbase.cn/plugins?category=auth". Defaults to the
	// collection's page.
	ShareURL string
}

// HasSelection reports whether any initial selection is set.
func (o BrowseOptions) HasSelection() bool {
	return o.Query != "" || o.Category != "" || o.Sort != ""
}
