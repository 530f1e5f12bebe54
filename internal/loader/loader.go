// Package loader enumerates manual files in a directory and extracts their
// pages.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/shersomas/manualbot/internal/manual"
	"github.com/shersomas/manualbot/internal/parser"
)

// LoadError reports a source file that could not be read or parsed.
// The batch is aborted on the first such failure.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader reads manual files from a directory.
type Loader struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Loader {
	return &Loader{log: log}
}

// LoadDir enumerates supported files directly under dir (non-recursive, in
// lexical order) and extracts their pages. The result is the concatenation
// of all pages in file order, then page order within each file. The first
// unparseable file aborts the batch with a *LoadError.
func (l *Loader) LoadDir(ctx context.Context, dir string) ([]manual.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{Path: dir, Err: err}
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if parser.IsSupportedExtension(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var docs []manual.Document
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, name)
		doc, err := l.loadFile(path, name)
		if err != nil {
			return nil, err
		}
		l.log.Info("loaded manual", "path", path, "pages", len(doc.Pages))
		docs = append(docs, doc)
	}

	return docs, nil
}

func (l *Loader) loadFile(path, name string) (manual.Document, error) {
	p, err := parser.ForFile(name)
	if err != nil {
		return manual.Document{}, &LoadError{Path: path, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return manual.Document{}, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	pages, err := p.Parse(f, name)
	if err != nil {
		return manual.Document{}, &LoadError{Path: path, Err: err}
	}

	return manual.Document{Path: path, Pages: pages}, nil
}
