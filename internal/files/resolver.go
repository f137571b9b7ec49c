// Package files resolves tool inputs into OCR sources: local names against
// the configured base directory, remote references against the declared type.
package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mcp-mistral-ocr/internal/ocr"
	"mcp-mistral-ocr/internal/util"
)

// MaxFileSize caps local files at 50MB, the provider-side document limit.
const MaxFileSize = 50 << 20

var (
	ErrNotFound        = errors.New("file not found")
	ErrOutsideBase     = errors.New("path escapes the base directory")
	ErrMissingFileType = errors.New("file_type is required")
	ErrInvalidFileType = errors.New("file_type must be 'image', 'document' or 'pdf'")
)

// TooLargeError carries the offending size so the message can report it in MB.
type TooLargeError struct {
	Name string
	Size int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file size exceeds 50MB limit: %.2fMB", float64(e.Size)/1024/1024)
}

type Resolver struct {
	Base    string
	MaxSize int64
}

func NewResolver(base string) *Resolver {
	return &Resolver{Base: base, MaxSize: MaxFileSize}
}

// Resolve locates filename under the base directory and reads it into a
// source. Names that resolve outside the base directory are rejected.
func (r *Resolver) Resolve(filename string) (ocr.Source, error) {
	name := strings.TrimSpace(filename)

	full, err := r.contain(name)
	if err != nil {
		return ocr.Source{}, err
	}

	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return ocr.Source{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return ocr.Source{}, err
	}
	if info.IsDir() {
		return ocr.Source{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if info.Size() > r.MaxSize {
		return ocr.Source{}, &TooLargeError{Name: name, Size: info.Size()}
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return ocr.Source{}, err
	}

	ext := strings.ToLower(filepath.Ext(name))
	kind := ocr.KindDocument
	if util.IsImageExt(ext) {
		kind = ocr.KindImage
	}
	return ocr.Source{
		Kind: kind,
		Name: filepath.Base(name),
		MIME: util.MIMEForExt(ext),
		Data: data,
	}, nil
}

// contain joins name under the base and verifies the result stays there.
func (r *Resolver) contain(name string) (string, error) {
	base, err := filepath.Abs(r.Base)
	if err != nil {
		return "", err
	}
	full, err := filepath.Abs(filepath.Join(base, name))
	if err != nil {
		return "", err
	}
	if full != base && !strings.HasPrefix(full, base+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideBase, name)
	}
	return full, nil
}

// ParseFileType maps the tool argument onto a source kind. "pdf" is accepted
// as an alias for "document".
func ParseFileType(tag string) (ocr.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "":
		return "", ErrMissingFileType
	case "image":
		return ocr.KindImage, nil
	case "document", "pdf":
		return ocr.KindDocument, nil
	default:
		return "", ErrInvalidFileType
	}
}
