// Package content loads static markdown pages (FAQ and friends) from disk.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no language variant of a page exists.
var ErrNotFound = errors.New("content: page not found")

// Page is a rendered static page.
type Page struct {
	Slug      string
	Lang      string
	Title     string
	Summary   string
	Body      template.HTML
	UpdatedAt time.Time
}

type frontMatter struct {
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	Lang      string `yaml:"lang"`
	UpdatedAt string `yaml:"updated_at"`
}

// Loader reads <dir>/<lang>/<slug>.md, falling back to the default language.
type Loader struct {
	dir      string
	fallback string
	ttl      time.Duration
	now      func() time.Time
	md       goldmark.Markdown
	policy   *bluemonday.Policy

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	page    Page
	expires time.Time
}

// NewLoader returns a loader rooted at dir. A ttl of zero disables caching.
func NewLoader(dir, fallback string, ttl time.Duration) *Loader {
	if strings.TrimSpace(fallback) == "" {
		fallback = "en"
	}
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "span", "div")
	policy.RequireNoFollowOnLinks(true)
	return &Loader{
		dir:      dir,
		fallback: fallback,
		ttl:      ttl,
		now:      time.Now,
		md:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:   policy,
		cache:    make(map[string]cacheEntry),
	}
}

// Page returns slug in lang, or in the fallback language when lang has no variant.
func (l *Loader) Page(slug, lang string) (Page, error) {
	slug = sanitizeSlug(slug)
	if slug == "" {
		return Page{}, ErrNotFound
	}
	key := lang + "|" + slug
	if p, ok := l.cached(key); ok {
		return p, nil
	}

	candidates := []string{lang}
	if lang != l.fallback {
		candidates = append(candidates, l.fallback)
	}
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		page, err := l.read(slug, candidate)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Page{}, err
		}
		l.store(key, page)
		return page, nil
	}
	return Page{}, ErrNotFound
}

func (l *Loader) read(slug, lang string) (Page, error) {
	file := filepath.Join(l.dir, lang, slug+".md")
	data, err := os.ReadFile(file)
	if err != nil {
		return Page{}, err
	}
	fm, body := splitFrontMatter(string(data))
	var front frontMatter
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Page{}, fmt.Errorf("content: parse front matter %s: %w", file, err)
		}
	}
	var buf bytes.Buffer
	if err := l.md.Convert([]byte(body), &buf); err != nil {
		return Page{}, fmt.Errorf("content: render %s: %w", file, err)
	}
	clean := l.policy.SanitizeBytes(buf.Bytes())
	page := Page{
		Slug:    slug,
		Lang:    firstNonEmpty(strings.TrimSpace(front.Lang), lang),
		Title:   firstNonEmpty(strings.TrimSpace(front.Title), slug),
		Summary: firstNonEmpty(strings.TrimSpace(front.Summary), firstParagraph(clean)),
		Body:    template.HTML(clean), //nolint:gosec // sanitized above
	}
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(front.UpdatedAt)); err == nil {
		page.UpdatedAt = t
	} else if info, err := os.Stat(file); err == nil {
		page.UpdatedAt = info.ModTime()
	}
	return page, nil
}

func (l *Loader) cached(key string) (Page, bool) {
	if l.ttl <= 0 {
		return Page{}, false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.cache[key]
	if !ok || !l.now().Before(e.expires) {
		return Page{}, false
	}
	return e.page, true
}

func (l *Loader) store(key string, p Page) {
	if l.ttl <= 0 {
		return
	}
	l.mu.Lock()
	l.cache[key] = cacheEntry{page: p, expires: l.now().Add(l.ttl)}
	l.mu.Unlock()
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], "\n"), strings.TrimLeft(strings.Join(lines[i+1:], "\n"), "\n\r")
		}
	}
	return "", input
}

func sanitizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return ""
		}
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// firstParagraph returns the text of the first <p> in rendered HTML.
func firstParagraph(doc []byte) string {
	z := html.NewTokenizer(bytes.NewReader(doc))
	depth := 0
	var sb strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.StartTagToken:
			if name, _ := z.TagName(); string(name) == "p" {
				depth++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "p" && depth > 0 {
				return strings.Join(strings.Fields(sb.String()), " ")
			}
		case html.TextToken:
			if depth > 0 {
				sb.Write(z.Text())
			}
		}
	}
}
