package indexer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hyperjump/villagerag/internal/extract"
	"github.com/hyperjump/villagerag/internal/models"
	"go.uber.org/zap"
)

// IngestionError reports a document source that could not be read or parsed.
// It aborts the whole load; no partial result is returned.
type IngestionError struct {
	Path string
	Err  error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.Path, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// loadPreviewCount is how many loaded documents are logged individually.
const loadPreviewCount = 5

// Loader reads every file under a directory that matches a glob pattern.
type Loader struct {
	dir       string
	pattern   string
	extractor *extract.Extractor
	logger    *zap.Logger
}

// NewLoader creates a loader for files under dir matching pattern (doublestar syntax, e.g. "**/*.pdf").
// logger may be nil.
func NewLoader(dir, pattern string, extractor *extract.Extractor, logger *zap.Logger) *Loader {
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{dir: dir, pattern: pattern, extractor: extractor, logger: logger}
}

// Load returns one Document per non-blank page (or per file for formats without pages), in path order.
// A directory with no matching files yields an empty slice and no error. A missing directory or
// an unreadable file yields an *IngestionError.
func (l *Loader) Load() ([]models.Document, error) {
	info, err := os.Stat(l.dir)
	if err != nil {
		return nil, &IngestionError{Path: l.dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &IngestionError{Path: l.dir, Err: errors.New("not a directory")}
	}
	matches, err := doublestar.Glob(os.DirFS(l.dir), l.pattern)
	if err != nil {
		return nil, &IngestionError{Path: l.dir, Err: fmt.Errorf("glob %q: %w", l.pattern, err)}
	}
	sort.Strings(matches)

	var docs []models.Document
	files := 0
	for _, m := range matches {
		path := filepath.Join(l.dir, filepath.FromSlash(m))
		fi, err := os.Stat(path)
		if err != nil {
			return nil, &IngestionError{Path: path, Err: err}
		}
		if !fi.Mode().IsRegular() {
			continue
		}
		pages, err := l.extractor.Extract(path)
		if err != nil {
			l.logger.Error("document load failed", zap.String("path", path), zap.Error(err))
			return nil, &IngestionError{Path: path, Err: err}
		}
		files++
		for _, p := range pages {
			content := Preprocess(p.Text)
			if content == "" {
				continue
			}
			docs = append(docs, models.Document{SourceID: path, Content: content, Page: p.Number})
		}
	}

	l.logger.Info("documents loaded",
		zap.String("dir", l.dir),
		zap.String("pattern", l.pattern),
		zap.Int("files", files),
		zap.Int("documents", len(docs)))
	for i, d := range docs {
		if i == loadPreviewCount {
			break
		}
		l.logger.Info("document",
			zap.Int("n", i+1),
			zap.String("source", d.SourceID),
			zap.String("page", d.PageLabel()),
			zap.Int("chars", len([]rune(d.Content))))
	}
	return docs, nil
}
