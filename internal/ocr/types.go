package ocr

import "encoding/json"

type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "document"
)

// Source is one file to run through OCR: either bytes read from the local
// base directory or a URL the provider fetches itself.
type Source struct {
	Kind Kind

	// local payload
	Name string
	MIME string
	Data []byte

	// remote reference
	URL string
}

func (s Source) Remote() bool { return s.URL != "" }

// Result holds the provider response untouched. Callers persist Raw verbatim.
type Result struct {
	Raw json.RawMessage
}

// Page is the slice of a provider document the result summary cares about.
type Page struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
}

// Pages pulls the page list out of a raw provider document. Documents without
// a recognizable pages field yield nil.
func Pages(raw json.RawMessage) []Page {
	var doc struct {
		Pages []Page `json:"pages"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	return doc.Pages
}
