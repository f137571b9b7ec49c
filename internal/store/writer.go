// Package store persists OCR results as timestamped JSON documents in the
// output directory.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mcp-mistral-ocr/internal/ocr"
)

const timeLayout = "20060102_150405"

// WriteError marks a persistence failure after OCR already succeeded, so the
// dispatcher can report it apart from provider failures.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write %s: %v", e.Path, e.Err) }

func (e *WriteError) Unwrap() error { return e.Err }

type Writer struct {
	Dir string
	Now func() time.Time
}

func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir, Now: time.Now}
}

// Save writes one result as {stem}_{timestamp}.json, pretty-printed with two
// spaces and HTML escaping off. A second save for the same stem within the
// same second overwrites the first.
func (w *Writer) Save(result ocr.Result, stem string) (string, error) {
	name := fmt.Sprintf("%s_%s.json", stem, w.Now().Format(timeLayout))
	path := filepath.Join(w.Dir, name)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.Raw); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	return path, nil
}
