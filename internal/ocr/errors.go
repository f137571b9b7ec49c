package ocr

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat marks a source kind the selected provider cannot take.
var ErrUnsupportedFormat = errors.New("unsupported file format for this provider")

// UpstreamError is a provider rejection passed through unchanged.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Provider, e.StatusCode, e.Message)
}
