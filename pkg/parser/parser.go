// pkg/parser/parser.go
package parser

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"gopkg.in/yaml.v2"
)

// Format names a vocabulary encoding.
type Format string

const (
	FormatJSON Format = "json"
	// FormatYAML is a sequence of strings. Entries YAML would read as numbers
	// or booleans (42, yes, no, on, off) must be quoted.
	FormatYAML Format = "yaml"
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// DefaultSelector is used for HTML sources when no selector is configured.
const DefaultSelector = "li"

// DecodeError reports a vocabulary resource that could not be decoded into
// a list of strings.
type DecodeError struct {
	Format Format
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s vocabulary: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ParseFormat validates a format name. An empty name is returned as-is so
// callers can fall back to FormatFor.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "", FormatJSON, FormatYAML, FormatText, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown vocabulary format %q", name)
	}
}

// FormatFor guesses the format from a file name or URL path.
func FormatFor(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".txt", ".text":
		return FormatText
	case ".html", ".htm":
		return FormatHTML
	default:
		return FormatJSON
	}
}

type Parser struct {
	selector string
}

// New returns a parser. selector is only used for HTML and defaults to
// DefaultSelector.
func New(selector string) *Parser {
	if strings.TrimSpace(selector) == "" {
		selector = DefaultSelector
	}
	return &Parser{selector: selector}
}

// ParseWordBank decodes raw vocabulary content. The returned words are not
// normalized.
func (p *Parser) ParseWordBank(content []byte, format Format) ([]string, error) {
	var (
		words []string
		err   error
	)

	switch format {
	case FormatJSON, "":
		format = FormatJSON
		words, err = parseJSON(content)
	case FormatYAML:
		words, err = parseYAML(content)
	case FormatText:
		words, err = parseText(content)
	case FormatHTML:
		words, err = p.parseHTML(content)
	default:
		err = fmt.Errorf("unsupported format")
	}

	if err != nil {
		return nil, &DecodeError{Format: format, Err: err}
	}
	return words, nil
}

// parseJSON requires a top-level array of strings. Anything else, including
// an array holding a number or null, is rejected.
func parseJSON(content []byte) ([]string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("expected a JSON array, got null")
	}

	words := make([]string, 0, len(raw))
	for i, elem := range raw {
		if !bytes.HasPrefix(bytes.TrimSpace(elem), []byte(`"`)) {
			return nil, fmt.Errorf("element %d is not a string: %s", i, elem)
		}
		var word string
		if err := json.Unmarshal(elem, &word); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		words = append(words, word)
	}
	return words, nil
}

// parseYAML requires a sequence of strings. Unquoted numbers and booleans
// resolve to non-string types and are rejected like nested nodes. YAML 1.1
// reads yes, no, on, off, y and n as booleans, so those words must be quoted:
//
//	- "no"
//	- 'on'
func parseYAML(content []byte) ([]string, error) {
	var raw []interface{}
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("expected a YAML sequence")
	}

	words := make([]string, 0, len(raw))
	for i, elem := range raw {
		word, ok := elem.(string)
		if !ok {
			return nil, fmt.Errorf("element %d is not a string: %v", i, elem)
		}
		words = append(words, word)
	}
	return words, nil
}

func parseText(content []byte) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(bytes.NewReader(content))

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		// Skip empty lines and comments
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		words = append(words, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

func (p *Parser) parseHTML(content []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var words []string
	doc.Find(p.selector).Each(func(_ int, s *goquery.Selection) {
		words = append(words, s.Text())
	})
	return words, nil
}
