package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/termlens/internal/extract"
	"github.com/ppiankov/termlens/internal/model"
	"go.uber.org/zap"
)

// StdinLocation is the source location that reads from standard input
const StdinLocation = "-"

// ErrURLSourcesDisabled is returned when a URL is analyzed by an engine
// built without a fetcher
var ErrURLSourcesDisabled = errors.New("URL sources are not enabled")

// Source names a document to analyze. Type and Title are optional; when
// empty they are taken from the document itself or inferred from its location.
type Source struct {
	Location string
	Type     model.DocumentType
	Title    string
}

// IsURL reports whether the source is fetched over HTTP
func (s Source) IsURL() bool {
	return strings.HasPrefix(s.Location, "http://") || strings.HasPrefix(s.Location, "https://")
}

// IsStdin reports whether the source is standard input
func (s Source) IsStdin() bool {
	return s.Location == StdinLocation
}

// Label is how the source appears in reports
func (s Source) Label() string {
	if s.IsStdin() {
		return "stdin"
	}
	return s.Location
}

// SourceReader turns file and stdin sources into documents
type SourceReader struct {
	stdin io.Reader
}

// NewSourceReader creates a reader; a nil stdin means os.Stdin
func NewSourceReader(stdin io.Reader) *SourceReader {
	if stdin == nil {
		stdin = os.Stdin
	}
	return &SourceReader{stdin: stdin}
}

// Read loads a file or stdin source. JSON files are decoded as wire
// documents ({"title","type","content"}); HTML is reduced to visible text.
func (r *SourceReader) Read(src Source) (model.Document, error) {
	var (
		data []byte
		err  error
	)
	if src.IsStdin() {
		data, err = io.ReadAll(r.stdin)
	} else {
		data, err = os.ReadFile(src.Location)
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("read %s: %w", src.Label(), err)
	}

	ext := strings.ToLower(filepath.Ext(src.Location))
	if ext == ".json" {
		doc, err := model.DecodeDocument(data)
		if err != nil {
			return model.Document{}, err
		}
		return applyOverrides(doc, src), nil
	}

	raw := string(data)
	var doc model.Document
	if ext == ".html" || ext == ".htm" || looksLikeHTML(raw) {
		text, err := extract.HTMLText(raw)
		if err != nil {
			return model.Document{}, fmt.Errorf("parse html %s: %w", src.Label(), err)
		}
		doc = model.Document{Title: extract.HTMLTitle(raw), Content: text}
	} else {
		doc = model.Document{Content: raw}
	}

	doc = applyOverrides(doc, src)
	if doc.Type == "" && !src.IsStdin() {
		if t, ok := extract.InferType(filepath.ToSlash(src.Location), doc.Title); ok {
			doc.Type = t
		}
	}
	return doc, nil
}

func applyOverrides(doc model.Document, src Source) model.Document {
	if src.Title != "" {
		doc.Title = src.Title
	}
	if src.Type != "" {
		doc.Type = src.Type
	}
	if strings.TrimSpace(doc.Title) == "" {
		doc.Title = model.DefaultTitle
	}
	return doc
}

func looksLikeHTML(s string) bool {
	head := strings.ToLower(strings.TrimSpace(s))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") || strings.Contains(head, "<html")
}

// resolved is a document plus the context needed to report on it
type resolved struct {
	doc       model.Document
	fetchMeta *model.FetchMeta
}

// CrawlDelay returns the robots.txt crawl delay for rawURL, or zero when
// robots.txt is not consulted or sets none
func (e *Engine) CrawlDelay(ctx context.Context, rawURL string) time.Duration {
	if e.robots == nil {
		return 0
	}
	_, delay, err := e.robots.CanFetch(ctx, rawURL)
	if err != nil {
		return 0
	}
	return delay
}

func (e *Engine) resolve(ctx context.Context, src Source) (*resolved, error) {
	if !src.IsURL() {
		doc, err := e.sources.Read(src)
		if err != nil {
			return nil, err
		}
		return &resolved{doc: doc}, nil
	}

	if e.fetcher == nil {
		return nil, ErrURLSourcesDisabled
	}
	if e.robots != nil {
		if err := e.robots.Check(ctx, src.Location); err != nil {
			return nil, err
		}
	}

	fetched, err := e.fetcher.FetchWithRetry(ctx, src.Location)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.Location, err)
	}
	if fetched.Truncated {
		e.log.Warn("document truncated at size limit", zap.String("url", src.Location))
	}

	doc := model.Document{Content: fetched.Body}
	if strings.Contains(strings.ToLower(fetched.Meta.ContentType), "html") || looksLikeHTML(fetched.Body) {
		text, err := extract.HTMLText(fetched.Body)
		if err != nil {
			return nil, fmt.Errorf("parse html %s: %w", src.Location, err)
		}
		doc = model.Document{Title: extract.HTMLTitle(fetched.Body), Content: text}
	}

	doc = applyOverrides(doc, src)
	if doc.Type == "" {
		if t, ok := extract.InferType(fetched.FinalURL, doc.Title); ok {
			doc.Type = t
		}
	}

	meta := fetched.Meta
	return &resolved{doc: doc, fetchMeta: &meta}, nil
}

// AnalyzeSource resolves src into a document, analyzes it and wraps the
// result in a report. An LLM summary, when configured, is attached after
// scoring and cannot affect it.
func (e *Engine) AnalyzeSource(ctx context.Context, src Source) (*model.Report, error) {
	r, err := e.resolve(ctx, src)
	if err != nil {
		return nil, err
	}

	analysis, err := e.Analyze(r.doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Label(), err)
	}

	report := &model.Report{
		Source:    src.Label(),
		FetchMeta: r.fetchMeta,
		CreatedAt: time.Now().UTC(),
		Analysis:  analysis,
	}

	if e.summarizer.IsEnabled() {
		summary, err := e.summarizer.GenerateSummary(ctx, *report, r.doc.Content)
		if err != nil {
			e.log.Warn("LLM summary generation failed", zap.Error(err))
		} else if summary != nil {
			report.LLM = summary
		}
	}

	return report, nil
}
