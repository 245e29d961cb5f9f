// Package loader turns an input file into an ordered sequence of documents.
// All structural validation happens here, before any backend interaction:
// a malformed input fails the whole run up front.
package loader

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/url"
	"os"
	"path/filepath"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/textworks/chat-extract/models"
)

// Input types.
const (
	TypeText = "txt"
	TypeJSON = "json"
	TypeHTML = "html"
)

// Options selects the input mode and its per-mode settings.
type Options struct {
	// Type is one of TypeText, TypeJSON, TypeHTML.
	Type string

	// DocKey names the field holding document text in JSON mode. Required
	// for that mode.
	DocKey string

	// IDKey optionally names a numeric field used as the document id in
	// JSON mode. When empty, ids are array indexes.
	IDKey string

	// Selector optionally splits an HTML input into one document per
	// matching node. When empty, readability distills the page into a
	// single document.
	Selector string
}

// Load reads path and produces documents according to opts.
func Load(path string, opts Options) ([]models.Document, error) {
	switch opts.Type {
	case TypeText:
		return loadLines(path)
	case TypeJSON:
		return loadArray(path, opts.DocKey, opts.IDKey)
	case TypeHTML:
		return loadHTML(path, opts.Selector)
	}
	return nil, fmt.Errorf("unknown input type %q (want txt, json, or html)", opts.Type)
}

// loadLines maps one raw line per document, id = zero-based line index.
// Trailing newlines stay on the text; the cleaner strips them later.
func loadLines(path string) ([]models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	var documents []models.Document
	reader := bufio.NewReader(f)
	for i := int64(0); ; i++ {
		line, err := reader.ReadString('\n')
		if line != "" {
			documents = append(documents, models.Document{ID: i, Text: line})
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
	}
	return documents, nil
}

// loadArray reads a JSON array of objects. The array must be non-empty,
// the first element must be an object, and docKey must exist on it.
func loadArray(path, docKey, idKey string) ([]models.Document, error) {
	if docKey == "" {
		return nil, fmt.Errorf("--keydoc is required with json input type")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	var elements []any
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("input JSON must be an array of objects: %w", err)
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("input JSON array is empty")
	}
	first, ok := elements[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("input JSON must be an array of objects")
	}
	if _, ok := first[docKey]; !ok {
		return nil, fmt.Errorf("%q not in input JSON", docKey)
	}

	documents := make([]models.Document, 0, len(elements))
	for i, element := range elements {
		obj, ok := element.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("input JSON element %d is not an object", i)
		}

		text, ok := obj[docKey].(string)
		if !ok {
			return nil, fmt.Errorf("field %q at element %d is not a string", docKey, i)
		}

		id := int64(i)
		if idKey != "" {
			id, err = numericID(obj, idKey, i)
			if err != nil {
				return nil, err
			}
		}
		documents = append(documents, models.Document{ID: id, Text: text})
	}
	return documents, nil
}

// numericID extracts an integer-valued id field. Ids must be totally
// ordered for the resume cursor, so anything non-numeric fails the run.
func numericID(obj map[string]any, idKey string, index int) (int64, error) {
	raw, ok := obj[idKey]
	if !ok {
		return 0, fmt.Errorf("%q not in input JSON at element %d", idKey, index)
	}
	num, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("field %q at element %d is not a number", idKey, index)
	}
	if num != math.Trunc(num) {
		return 0, fmt.Errorf("field %q at element %d is not an integer", idKey, index)
	}
	return int64(num), nil
}

// loadHTML distills an HTML page into documents. With a selector every
// matching node becomes one document; otherwise readability extracts the
// main article text as a single document.
func loadHTML(path, selector string) ([]models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	if selector != "" {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse HTML: %w", err)
		}

		var documents []models.Document
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			documents = append(documents, models.Document{ID: int64(i), Text: s.Text()})
		})
		if len(documents) == 0 {
			return nil, fmt.Errorf("selector %q matched nothing in %s", selector, path)
		}
		return documents, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve input path: %w", err)
	}
	pageURL, err := url.Parse("file://" + abs)
	if err != nil {
		return nil, fmt.Errorf("failed to build page URL: %w", err)
	}

	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(data), pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract readable text: %w", err)
	}

	return []models.Document{{ID: 0, Text: article.TextContent}}, nil
}
