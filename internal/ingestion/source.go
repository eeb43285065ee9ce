package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/media-workflow/internal/fetch"
)

var (
	// ErrEmptySource is returned when a source holds no usable text
	ErrEmptySource = errors.New("source has no text")
	// ErrFetchFailed is returned when a URL could not be retrieved
	ErrFetchFailed = errors.New("fetch failed")
)

// Source is the text read from one input. Raw is the input exactly as given and is what a
// work item keeps as its reference copy; Text is the cleaned version sent for analysis.
type Source struct {
	Raw      string
	Text     string
	Metadata *Metadata
}

// FromFile reads a text, markdown or HTML file. The file content is kept verbatim as Raw.
func FromFile(path string) (*Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return prepare(string(content), path)
}

// FromURL fetches a news or press release page. The page markup is never stored:
// Raw is the extracted article text.
func FromURL(ctx context.Context, urlStr string, opts *fetch.Options) (*Source, error) {
	result, err := fetch.URL(ctx, urlStr, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	article, err := fetch.MainHTML(result.HTML, fetch.ArticleSelectors())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	src, err := prepare(article, urlStr)
	if err != nil {
		return nil, err
	}
	src.Raw = src.Text
	src.Metadata.Title = fetch.PageTitle(result.HTML)
	return src, nil
}

// FromText wraps pasted text
func FromText(text string) (*Source, error) {
	return prepare(text, "paste")
}

func prepare(raw, source string) (*Source, error) {
	wasHTML := LooksLikeHTML(raw)
	text := PrepareRawText(raw)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%s: %w", source, ErrEmptySource)
	}
	metadata := NewMetadata(text, source)
	metadata.WasHTML = wasHTML
	return &Source{Raw: raw, Text: text, Metadata: metadata}, nil
}
