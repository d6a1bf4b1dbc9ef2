package docmodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// Document comes from external tool and has no schema. Every key we access
// must be present and of expected JSON type, any failure stops loading with
// an error which names location in the document. Keys we do not access are
// never looked at.

// KeyError reports required key missing from JSON object.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("missing required key %q", e.Key)
}

// ErrNotObject is returned when JSON value expected to be an object is not.
var ErrNotObject = errors.New("not a JSON object")

type object map[string]json.RawMessage

func asObject(raw json.RawMessage) (object, error) {
	var obj object
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotObject, err)
	}
	if obj == nil {
		// JSON null
		return nil, ErrNotObject
	}
	return obj, nil
}

func required[T any](obj object, key string, dst *T) error {
	raw, ok := obj[key]
	if !ok {
		return &KeyError{Key: key}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("key %q: %w", key, err)
	}
	return nil
}

func optional[T any](obj object, key string, dst *T) error {
	if _, ok := obj[key]; !ok {
		return nil
	}
	return required(obj, key, dst)
}

// LoadFile reads document from JSON file.
func LoadFile(path string, log *zap.Logger) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open document: %w", err)
	}
	defer f.Close()

	doc, err := Load(f, log)
	if err != nil {
		return nil, fmt.Errorf("unable to load document %q: %w", path, err)
	}
	return doc, nil
}

// Load reads document from r.
func Load(r io.Reader, log *zap.Logger) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data, log)
}

// Parse builds typed document from JSON data.
func Parse(data []byte, log *zap.Logger) (*Document, error) {
	root, err := asObject(data)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	if err := optional(root, "_backend", &doc.Backend); err != nil {
		return nil, err
	}
	if err := optional(root, "_version_name", &doc.Version); err != nil {
		return nil, err
	}

	var pages []json.RawMessage
	if err := required(root, "pdf_info", &pages); err != nil {
		return nil, err
	}
	doc.Pages = make([]Page, 0, len(pages))
	for i, raw := range pages {
		page, err := parsePage(raw, log)
		if err != nil {
			return nil, fmt.Errorf("pdf_info[%d]: %w", i, err)
		}
		doc.Pages = append(doc.Pages, page)
	}

	log.Debug("Document loaded",
		zap.Int("pages", len(doc.Pages)), zap.String("backend", doc.Backend), zap.String("version", doc.Version))
	return doc, nil
}

func parsePage(raw json.RawMessage, log *zap.Logger) (Page, error) {
	var page Page

	obj, err := asObject(raw)
	if err != nil {
		return page, err
	}
	if err := required(obj, "page_idx", &page.Index); err != nil {
		return page, err
	}
	var blocks []json.RawMessage
	if err := required(obj, "para_blocks", &blocks); err != nil {
		return page, err
	}
	if page.Blocks, err = parseBlocks(blocks, "para_blocks", log); err != nil {
		return page, err
	}
	return page, nil
}

func parseBlocks(raws []json.RawMessage, name string, log *zap.Logger) ([]Block, error) {
	blocks := make([]Block, 0, len(raws))
	for i, raw := range raws {
		block, err := parseBlock(raw, log)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", name, i, err)
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

func parseBlock(raw json.RawMessage, log *zap.Logger) (Block, error) {
	var block Block

	obj, err := asObject(raw)
	if err != nil {
		return block, err
	}
	if err := required(obj, "type", &block.Kind); err != nil {
		return block, err
	}

	switch {
	case block.Kind.HasLines():
		var lines []json.RawMessage
		if err := required(obj, "lines", &lines); err != nil {
			return block, err
		}
		if block.Lines, err = parseLines(lines, log); err != nil {
			return block, err
		}
	case block.Kind.HasBlocks():
		var blocks []json.RawMessage
		if err := required(obj, "blocks", &blocks); err != nil {
			return block, err
		}
		if block.Blocks, err = parseBlocks(blocks, "blocks", log); err != nil {
			return block, err
		}
	default:
		log.Debug("Unknown block kind, ignoring", zap.String("kind", string(block.Kind)))
	}
	return block, nil
}

func parseLines(raws []json.RawMessage, log *zap.Logger) ([]Line, error) {
	lines := make([]Line, 0, len(raws))
	for i, raw := range raws {
		line, err := parseLine(raw, log)
		if err != nil {
			return nil, fmt.Errorf("lines[%d]: %w", i, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func parseLine(raw json.RawMessage, log *zap.Logger) (Line, error) {
	var line Line

	obj, err := asObject(raw)
	if err != nil {
		return line, err
	}
	var spans []json.RawMessage
	if err := required(obj, "spans", &spans); err != nil {
		return line, err
	}
	line.Spans = make([]Span, 0, len(spans))
	for i, raw := range spans {
		span, err := parseSpan(raw, log)
		if err != nil {
			return line, fmt.Errorf("spans[%d]: %w", i, err)
		}
		line.Spans = append(line.Spans, span)
	}
	return line, nil
}

func parseSpan(raw json.RawMessage, log *zap.Logger) (Span, error) {
	var span Span

	obj, err := asObject(raw)
	if err != nil {
		return span, err
	}
	if err := required(obj, "type", &span.Kind); err != nil {
		return span, err
	}

	// required payload first, everything else is picked up if present
	key := span.Kind.payloadKey()
	if key == "" {
		log.Debug("Unknown span kind, ignoring", zap.String("kind", string(span.Kind)))
	}
	fields := []struct {
		key string
		dst *string
	}{
		{"content", &span.Content},
		{"image_path", &span.ImagePath},
		{"html", &span.HTML},
	}
	for _, f := range fields {
		if f.key == key {
			err = required(obj, f.key, f.dst)
		} else {
			err = optional(obj, f.key, f.dst)
		}
		if err != nil {
			return span, err
		}
	}
	return span, nil
}
