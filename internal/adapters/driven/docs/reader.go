package docs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
	"github.com/browerscan/pocketbase.cn/internal/logger"
)

// Elements whose text never belongs to a page body.
const chromeSelector = "script, style, noscript, nav, header, footer, aside"

// Ensure Reader implements the interface.
var _ driven.DocSource = (*Reader)(nil)

// Reader lists the HTML pages under a directory as doc entries.
type Reader struct {
	fsys fs.FS
	root string
}

// NewReader creates a reader over dir. An empty dir yields no docs.
func NewReader(dir string) *Reader {
	if dir == "" {
		return &Reader{}
	}
	return &Reader{fsys: os.DirFS(dir), root: dir}
}

// NewReaderFS creates a reader over fsys.
func NewReaderFS(fsys fs.FS) *Reader {
	return &Reader{fsys: fsys, root: "."}
}

// ListDocs implements driven.DocSource. Pages are returned in lexical path
// order; the site's root index page is skipped.
func (r *Reader) ListDocs(ctx context.Context) ([]domain.DocEntry, error) {
	if r.fsys == nil {
		return nil, nil
	}

	var docs []domain.DocEntry
	err := fs.WalkDir(r.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".html") {
			return nil
		}

		slug := Slug(p)
		if slug == "" {
			return nil
		}

		entry, err := r.readPage(p, slug)
		if err != nil {
			logger.Warn("Skipping doc page %s: %v", p, err)
			return nil
		}
		docs = append(docs, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read docs in %s: %w", r.root, err)
	}

	logger.Debug("Read %d doc pages from %s", len(docs), r.root)
	return docs, nil
}

func (r *Reader) readPage(p, slug string) (domain.DocEntry, error) {
	f, err := r.fsys.Open(p)
	if err != nil {
		return domain.DocEntry{}, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return domain.DocEntry{}, fmt.Errorf("parse html: %w", err)
	}
	return Parse(doc, slug), nil
}

// Parse extracts a doc entry from a page. The title is the first h1, else
// the document title, else the slug. The body is the text of main, article
// or body with page chrome removed and whitespace collapsed.
func Parse(doc *goquery.Document, slug string) domain.DocEntry {
	title := collapse(doc.Find("h1").First().Text())
	if title == "" {
		title = collapse(doc.Find("title").First().Text())
	}
	if title == "" {
		title = slug
	}

	content := doc.Find("main").First()
	if content.Length() == 0 {
		content = doc.Find("article").First()
	}
	if content.Length() == 0 {
		content = doc.Find("body")
	}
	content.Find(chromeSelector).Remove()

	return domain.DocEntry{
		ID:    strings.ReplaceAll(slug, "/", "-"),
		Slug:  slug,
		Title: title,
		Body:  collapse(content.Text()),
	}
}

// Slug maps an output path to its docs route: "guide/index.html" and
// "guide.html" both become "guide". A leading "docs/" segment is dropped.
func Slug(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "docs/")
	p = strings.TrimSuffix(p, ".html")
	if path.Base(p) == "index" {
		p = path.Dir(p)
	}
	if p == "." || p == "index" || p == "docs" {
		return ""
	}
	return strings.Trim(p, "/")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
