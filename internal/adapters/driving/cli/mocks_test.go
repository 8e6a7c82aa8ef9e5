package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driving"
)

// mockSearchService implements driving.SearchService.
type mockSearchService struct {
	results    []domain.SearchCandidate
	err        error
	terms      []string
	lastLimit  int
	lastQuery  string
	historyErr error
}

func (m *mockSearchService) Search(_ context.Context, query string, limit int) ([]domain.SearchCandidate, error) {
	m.lastQuery = query
	m.lastLimit = limit
	return m.results, m.err
}

func (m *mockSearchService) Remember(_ context.Context, term string) error {
	m.terms = append([]string{term}, m.terms...)
	return nil
}

func (m *mockSearchService) History(context.Context) ([]string, error) {
	return m.terms, m.historyErr
}

// mockBrowser serves pages of two items.
type mockBrowser struct {
	collection string
	opts       domain.BrowseOptions
	totalPages int
	pages      int
	failAt     int
	errMsg     string
	startErr   error
	closed     bool
}

func (m *mockBrowser) load() {
	if m.failAt > 0 && m.pages+1 == m.failAt {
		m.errMsg = "服务器错误"
		return
	}
	m.pages++
}

func (m *mockBrowser) Start(context.Context) error {
	if m.startErr != nil {
		return m.startErr
	}
	m.load()
	return nil
}

func (m *mockBrowser) LoadMore(context.Context) {
	if m.pages < m.totalPages && m.errMsg == "" {
		m.load()
	}
}

func (m *mockBrowser) Retry(context.Context) {}
func (m *mockBrowser) SetQuery(context.Context, string) {}
func (m *mockBrowser) SetCategory(context.Context, string) {}
func (m *mockBrowser) SetSort(context.Context, string) error { return nil }
func (m *mockBrowser) CycleSort(context.Context) string { return "" }
func (m *mockBrowser) Close(context.Context) error { m.closed = true; return nil }

func (m *mockBrowser) State() domain.BrowseState {
	items := make([]domain.ListItem, 0, m.pages*2)
	for i := 0; i < m.pages*2; i++ {
		items = append(items, domain.ListItem{
			ID:       fmt.Sprint(i),
			Title:    fmt.Sprintf("%s-%02d", m.collection, i),
			Category: "auth",
			Featured: i == 0,
			Stat:     "★ 3",
			URL:      fmt.Sprintf("/%s/item-%02d", m.collection, i),
		})
	}
	share := "https://pocketbase.cn/" + m.collection
	if m.opts.Category != "" {
		share += "?category=" + m.opts.Category
	}
	return domain.BrowseState{
		Collection: m.collection,
		SortLabel:  "最新",
		Items:      items,
		HasMore:    m.pages < m.totalPages,
		Error:      m.errMsg,
		ShareURL:   share,
	}
}

// mockBrowseService implements driving.BrowseService.
type mockBrowseService struct {
	totalPages int
	failAt     int
	openErr    error
	startErr   error
	last       *mockBrowser
}

func (m *mockBrowseService) open(collection string, opts domain.BrowseOptions) (driving.Browser, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	m.last = &mockBrowser{
		collection: collection,
		opts:       opts,
		totalPages: m.totalPages,
		failAt:     m.failAt,
		startErr:   m.startErr,
	}
	return m.last, nil
}

func (m *mockBrowseService) Plugins(
	_ context.Context, opts domain.BrowseOptions, _ driven.VisibilityObserver,
) (driving.Browser, error) {
	return m.open("plugins", opts)
}

func (m *mockBrowseService) Showcase(
	_ context.Context, opts domain.BrowseOptions, _ driven.VisibilityObserver,
) (driving.Browser, error) {
	return m.open("showcase", opts)
}

// mockAuthService implements driving.AuthService.
type mockAuthService struct {
	session    *domain.AuthSession
	loginErr   error
	refreshErr error
	identity   string
	password   string
	loggedOut  bool
}

func (m *mockAuthService) Login(_ context.Context, identity, password string) (*domain.AuthSession, error) {
	m.identity, m.password = identity, password
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return m.session, nil
}

func (m *mockAuthService) Refresh(context.Context) (*domain.AuthSession, error) {
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	return m.session, nil
}

func (m *mockAuthService) Logout(context.Context) error {
	m.loggedOut = true
	return nil
}

// mockSitemapService implements driving.SitemapService.
type mockSitemapService struct {
	err error
}

func (m *mockSitemapService) render(kind string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []byte("<urlset><!-- " + kind + " --></urlset>"), nil
}

func (m *mockSitemapService) Static() ([]byte, error) { return m.render("static") }
func (m *mockSitemapService) Docs(context.Context) ([]byte, error) { return m.render("docs") }
func (m *mockSitemapService) Plugins(context.Context) ([]byte, error) { return m.render("plugins") }
func (m *mockSitemapService) Showcase(context.Context) ([]byte, error) { return m.render("showcase") }
func (m *mockSitemapService) Index() ([]byte, error) { return m.render("index") }

// mockSettingsService implements driving.SettingsService over a map.
type mockSettingsService struct {
	values map[string]string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{values: map[string]string{
		"pocketbase.url": "https://api.pocketbase.cn",
		"site.url":       "https://pocketbase.cn",
		"fetch.retries":  "2",
		"docs.dir":       "",
	}}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := domain.DefaultAppSettings()
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if _, ok := m.values[key]; !ok {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Lookup(key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}
	return v, nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"pocketbase.url", "site.url", "fetch.retries", "docs.dir"}
}

func (m *mockSettingsService) Path() string {
	return "/home/test/.pbcn/config.toml"
}

// testServices are the mocks installed by setupTestServices.
type testServices struct {
	search   *mockSearchService
	browse   *mockBrowseService
	auth     *mockAuthService
	sitemap  *mockSitemapService
	settings *mockSettingsService
}

// setupTestServices installs mocks and returns a cleanup that restores the
// previous services and flag values.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		search: &mockSearchService{
			results: []domain.SearchCandidate{
				{ID: "plugin-1", Type: domain.CandidatePlugin, Title: "Auth Kit", URL: "/plugins/auth-kit",
					Description: "Login helpers"},
				{ID: "doc-auth", Type: domain.CandidateDoc, Title: "Authentication", URL: "/docs/auth"},
			},
		},
		browse: &mockBrowseService{totalPages: 3},
		auth: &mockAuthService{session: &domain.AuthSession{
			Token: "tok",
			User:  domain.User{ID: "u1", Email: "me@example.com", Name: "Mei"},
		}},
		sitemap:  &mockSitemapService{},
		settings: newMockSettingsService(),
	}

	SetServices(&Services{
		Search:   ts.search,
		Browse:   ts.browse,
		Auth:     ts.auth,
		Sitemap:  ts.sitemap,
		Settings: ts.settings,
		FileURL: func(collection, recordID, filename, thumb string) string {
			if collection == "" || recordID == "" || filename == "" {
				return ""
			}
			u := "https://api.pocketbase.cn/api/files/" + collection + "/" + recordID + "/" + filename
			if thumb != "" {
				u += "?thumb=" + thumb
			}
			return u
		},
		SiteURL:     "https://pocketbase.cn",
		SearchLimit: 8,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("pbcn_info 1\n"))
		}),
	})

	return ts, func() {
		SetServices(nil)
		resetFlags()
	}
}

func resetFlags() {
	verbose = false
	metricsAddr = ""
	pluginsListOpts = listOptions{pages: 1}
	showcaseListOpts = listOptions{pages: 1}
	searchResultLimit = 0
	searchJSON = false
	searchHistory = false
	sitemapOutput = ""
	loginIdentity = ""
	loginPasswordStdin = false
	fileURLThumb = ""
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	return executeWithInput("", args...)
}

func executeWithInput(input string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// captureOutput returns what fn writes to the root command's output.
func captureOutput(fn func()) string {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	fn()
	return buf.String()
}
