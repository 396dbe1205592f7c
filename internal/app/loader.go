package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/NivBraz/wordcheck-service/internal/assets"
	"github.com/NivBraz/wordcheck-service/internal/config"
	"github.com/NivBraz/wordcheck-service/internal/logging"
	"github.com/NivBraz/wordcheck-service/pkg/fetcher"
	"github.com/NivBraz/wordcheck-service/pkg/parser"
	"github.com/NivBraz/wordcheck-service/pkg/wordbank"
)

// ErrVocabularyLoad marks every failure to read, decode or build the
// vocabulary at startup. Such failures are fatal.
var ErrVocabularyLoad = errors.New("vocabulary load failed")

// LoadVocabulary reads the configured vocabulary source, decodes it and
// builds the word bank. progress receives the loading bar and may be nil.
func LoadVocabulary(ctx context.Context, cfg *config.Config, logger *logging.Logger, progress io.Writer) (*wordbank.WordBank, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Vocabulary.LoadTimeout)*time.Second)
	defer cancel()

	if progress == nil || !cfg.Vocabulary.ShowProgress {
		progress = io.Discard
	}
	bar := progressbar.NewOptions(3,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("Reading vocabulary..."),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	defer bar.Finish()

	content, name, err := readSource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVocabularyLoad, err)
	}
	bar.Add(1)

	format, err := parser.ParseFormat(cfg.Vocabulary.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVocabularyLoad, err)
	}
	if format == "" {
		format = parser.FormatFor(name)
	}

	bar.Describe("Decoding vocabulary...")
	raw, err := parser.New(cfg.Vocabulary.Selector).ParseWordBank(content, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrVocabularyLoad, name, err)
	}
	bar.Add(1)

	bar.Describe("Indexing vocabulary...")
	wb, err := wordbank.New(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrVocabularyLoad, name, err)
	}
	bar.Add(1)

	stats := wb.Stats()
	logger.Info("vocabulary loaded",
		"source", cfg.Vocabulary.Source,
		"name", name,
		"format", string(format),
		"words", wb.Len(),
		"raw", stats.Raw,
		"skipped", stats.Skipped,
		"duplicates", stats.Duplicates,
	)
	if stats.Skipped > 0 {
		logger.Warn("blank vocabulary entries skipped", "count", stats.Skipped)
	}

	return wb, nil
}

// readSource returns the raw vocabulary bytes and a name whose extension
// hints at the format.
func readSource(ctx context.Context, cfg *config.Config) ([]byte, string, error) {
	switch cfg.Vocabulary.Source {
	case config.SourceEmbedded:
		return assets.Vocabulary, assets.VocabularyName, nil

	case config.SourceFile:
		content, err := os.ReadFile(cfg.Vocabulary.Path)
		if err != nil {
			return nil, cfg.Vocabulary.Path, fmt.Errorf("error reading vocabulary file: %w", err)
		}
		return content, cfg.Vocabulary.Path, nil

	case config.SourceURL:
		fc := fetcher.FetcherConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			Timeout:           time.Duration(cfg.HTTPClient.Timeout) * time.Second,
			UserAgent:         cfg.HTTPClient.UserAgent,
			MaxBodySize:       cfg.HTTPClient.MaxBodySize,
		}
		if cfg.HTTPClient.MaxRetries != nil {
			fc.MaxRetries = *cfg.HTTPClient.MaxRetries
		}
		f := fetcher.New(fc)
		content, err := f.Fetch(ctx, cfg.Vocabulary.URL)
		if err != nil {
			return nil, cfg.Vocabulary.URL, fmt.Errorf("failed to fetch vocabulary: %w", err)
		}
		name := cfg.Vocabulary.URL
		if u, err := url.Parse(name); err == nil {
			name = u.Path
		}
		return content, name, nil

	default:
		return nil, "", fmt.Errorf("unknown vocabulary source %q", cfg.Vocabulary.Source)
	}
}
