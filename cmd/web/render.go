package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	mw "finitefield.org/colorcraft-web/internal/middleware"
	"finitefield.org/colorcraft-web/internal/observability"
)

// templateSet holds the shared layout and partials plus one clone per page,
// since every page defines its own "content" block.
type templateSet struct {
	root  *template.Template
	pages map[string]*template.Template
}

type renderer struct {
	dir   string
	dev   bool
	funcs template.FuncMap

	mu  sync.RWMutex
	set *templateSet
}

func newRenderer(dir string, dev bool, funcs template.FuncMap) (*renderer, error) {
	rd := &renderer{dir: dir, dev: dev, funcs: funcs}
	set, err := rd.parse()
	if err != nil {
		return nil, err
	}
	rd.set = set
	return rd, nil
}

func (rd *renderer) parse() (*templateSet, error) {
	shared, err := collectTemplates(filepath.Join(rd.dir, "layouts"), filepath.Join(rd.dir, "partials"))
	if err != nil {
		return nil, err
	}
	if len(shared) == 0 {
		return nil, fmt.Errorf("no layout templates found under %s", rd.dir)
	}
	root, err := template.New("_root").Funcs(rd.funcs).ParseFiles(shared...)
	if err != nil {
		return nil, err
	}
	pageFiles, err := collectTemplates(filepath.Join(rd.dir, "pages"))
	if err != nil {
		return nil, err
	}
	set := &templateSet{root: root, pages: make(map[string]*template.Template, len(pageFiles))}
	for _, file := range pageFiles {
		clone, err := root.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := clone.ParseFiles(file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		set.pages[strings.TrimSuffix(filepath.Base(file), ".tmpl")] = clone
	}
	return set, nil
}

// Recursively discover .tmpl files. ParseGlob doesn't support **.
func collectTemplates(dirs ...string) ([]string, error) {
	var files []string
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// templates returns the parsed set. In dev mode, templates are reparsed on each request.
func (rd *renderer) templates() (*templateSet, error) {
	if rd.dev {
		return rd.parse()
	}
	rd.mu.RLock()
	defer rd.mu.RUnlock()
	return rd.set, nil
}

// page executes the base layout with the named page's content.
func (rd *renderer) page(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	set, err := rd.templates()
	if err != nil {
		rd.fail(w, r, "template parse error", err)
		return
	}
	t, ok := set.pages[name]
	if !ok {
		rd.fail(w, r, "template not found", fmt.Errorf("page %q", name))
		return
	}
	rd.execute(w, r, status, t, "base", data)
}

// fragment executes a partial on its own, for htmx swaps.
func (rd *renderer) fragment(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	set, err := rd.templates()
	if err != nil {
		rd.fail(w, r, "template parse error", err)
		return
	}
	rd.execute(w, r, status, set.root, name, data)
}

func (rd *renderer) execute(w http.ResponseWriter, r *http.Request, status int, t *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		rd.fail(w, r, "template exec error", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (rd *renderer) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	observability.FromContext(r.Context()).Error(msg, zap.Error(err))
	mw.WriteError(w, r, http.StatusInternalServerError, msg)
}
