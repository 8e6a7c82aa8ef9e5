package services

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driving"
	"github.com/browerscan/pocketbase.cn/internal/logger"
)

// Ensure SitemapService implements the interface.
var _ driving.SitemapService = (*SitemapService)(nil)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Sitemap file names listed by the index, in order.
var sitemapFiles = []string{
	"sitemap-static.xml",
	"sitemap-docs.xml",
	"sitemap-blog.xml",
	"sitemap-plugins.xml",
	"sitemap-showcase.xml",
}

type staticPage struct {
	path       string
	priority   string
	changefreq string
}

var staticPages = []staticPage{
	{"/", "1.0", "daily"},
	{"/plugins/", "0.8", "daily"},
	{"/showcase/", "0.8", "weekly"},
	{"/downloads/", "0.9", "weekly"},
	{"/legal/terms/", "0.3", "monthly"},
	{"/legal/privacy/", "0.3", "monthly"},
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type sitemapIndex struct {
	XMLName  xml.Name       `xml:"sitemapindex"`
	XMLNS    string         `xml:"xmlns,attr"`
	Sitemaps []sitemapEntry `xml:"sitemap"`
}

type sitemapEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

// SitemapConfig wires a SitemapService.
type SitemapConfig struct {
	// SiteURL is the public site origin used in <loc>.
	SiteURL string

	// BaseURL is the backend origin the list endpoints live under.
	BaseURL string

	Plugins   driven.PageFetcher[domain.Plugin]
	Showcases driven.PageFetcher[domain.Showcase]
	Docs      driven.DocSource
}

// SitemapService renders the site's sitemaps from the live catalogue.
type SitemapService struct {
	cfg SitemapConfig
	now func() time.Time
}

// NewSitemapService creates a new sitemap service.
func NewSitemapService(cfg SitemapConfig) *SitemapService {
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &SitemapService{cfg: cfg, now: time.Now}
}

func (s *SitemapService) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// Static renders the fixed site pages.
func (s *SitemapService) Static() ([]byte, error) {
	now := s.timestamp()
	urls := make([]sitemapURL, 0, len(staticPages))
	for _, p := range staticPages {
		urls = append(urls, sitemapURL{
			Loc:        s.cfg.SiteURL + p.path,
			LastMod:    now,
			ChangeFreq: p.changefreq,
			Priority:   p.priority,
		})
	}
	return marshalSitemap(urlSet{XMLNS: sitemapNS, URLs: urls})
}

// Docs renders one entry per documentation page.
func (s *SitemapService) Docs(ctx context.Context) ([]byte, error) {
	var docs []domain.DocEntry
	if s.cfg.Docs != nil {
		var err error
		docs, err = s.cfg.Docs.ListDocs(ctx)
		if err != nil {
			return nil, fmt.Errorf("list docs: %w", err)
		}
	}

	now := s.timestamp()
	urls := make([]sitemapURL, 0, len(docs))
	for _, d := range docs {
		urls = append(urls, sitemapURL{
			Loc:        s.cfg.SiteURL + docRoute(d.Slug),
			LastMod:    now,
			ChangeFreq: "weekly",
			Priority:   "0.7",
		})
	}
	return marshalSitemap(urlSet{XMLNS: sitemapNS, URLs: urls})
}

// Plugins renders the plugin sitemap. A backend failure mid-crawl yields the
// entries collected so far.
func (s *SitemapService) Plugins(ctx context.Context) ([]byte, error) {
	if s.cfg.Plugins == nil {
		return nil, fmt.Errorf("plugin source not configured: %w", domain.ErrInvalidInput)
	}
	logger.Section("Plugin Sitemap")
	plugins, err := CollectAll(ctx, s.cfg.Plugins, s.cfg.BaseURL+domain.PluginsCollection.Endpoint)
	if err != nil {
		logger.Warn("Plugin sitemap is partial: %v", err)
	}

	now := s.timestamp()
	urls := make([]sitemapURL, 0, len(plugins))
	for _, p := range plugins {
		urls = append(urls, sitemapURL{
			Loc:        s.cfg.SiteURL + "/plugins/" + p.Slug + "/",
			LastMod:    orNow(p.GithubUpdatedAt, now),
			ChangeFreq: "weekly",
			Priority:   priority(p.Featured),
		})
	}
	return marshalSitemap(urlSet{XMLNS: sitemapNS, URLs: urls})
}

// Showcase renders the showcase sitemap.
func (s *SitemapService) Showcase(ctx context.Context) ([]byte, error) {
	if s.cfg.Showcases == nil {
		return nil, fmt.Errorf("showcase source not configured: %w", domain.ErrInvalidInput)
	}
	logger.Section("Showcase Sitemap")
	items, err := CollectAll(ctx, s.cfg.Showcases, s.cfg.BaseURL+domain.ShowcaseCollection.Endpoint)
	if err != nil {
		logger.Warn("Showcase sitemap is partial: %v", err)
	}

	now := s.timestamp()
	urls := make([]sitemapURL, 0, len(items))
	for _, item := range items {
		urls = append(urls, sitemapURL{
			Loc:        s.cfg.SiteURL + "/showcase/" + item.Slug + "/",
			LastMod:    orNow(item.UpdatedAt, now),
			ChangeFreq: "weekly",
			Priority:   priority(item.Featured),
		})
	}
	return marshalSitemap(urlSet{XMLNS: sitemapNS, URLs: urls})
}

// Index renders the sitemap index.
func (s *SitemapService) Index() ([]byte, error) {
	now := s.timestamp()
	entries := make([]sitemapEntry, 0, len(sitemapFiles))
	for _, name := range sitemapFiles {
		entries = append(entries, sitemapEntry{Loc: s.cfg.SiteURL + "/" + name, LastMod: now})
	}
	return marshalSitemap(sitemapIndex{XMLNS: sitemapNS, Sitemaps: entries})
}

func marshalSitemap(v any) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sitemap: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func priority(featured bool) string {
	if featured {
		return "0.8"
	}
	return "0.6"
}

func orNow(ts *string, now string) string {
	if ts == nil || *ts == "" {
		return now
	}
	return *ts
}

// docRoute maps a doc slug to its page path; "x/index" and "index" collapse
// onto their directory.
func docRoute(slug string) string {
	s := strings.Trim(slug, "/")
	switch {
	case s == "" || s == "index":
		return "/docs/"
	case strings.HasSuffix(s, "/index"):
		return "/docs/" + strings.TrimSuffix(s, "/index") + "/"
	default:
		return "/docs/" + s + "/"
	}
}
