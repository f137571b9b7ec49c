// Package tesseract runs OCR locally through the gosseract bindings. It only
// handles raster images; documents need one of the hosted providers.
package tesseract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/otiai10/gosseract/v2"

	"mcp-mistral-ocr/internal/ocr"
)

type Engine struct {
	Langs         []string
	clientFactory func() *gosseract.Client
	httpc         *http.Client
}

func New(langs []string) *Engine {
	return &Engine{
		Langs:         langs,
		clientFactory: gosseract.NewClient,
		httpc:         &http.Client{Timeout: 60 * time.Second},
	}
}

func (e *Engine) Name() string { return "tesseract" }

func (e *Engine) GetModel() string { return "tesseract" }

func (e *Engine) Process(ctx context.Context, src ocr.Source) (ocr.Result, error) {
	if src.Kind != ocr.KindImage {
		return ocr.Result{}, fmt.Errorf("tesseract: %w: only raster images are supported", ocr.ErrUnsupportedFormat)
	}

	data := src.Data
	if src.Remote() {
		var err error
		data, _, err = ocr.Fetch(ctx, e.httpc, src.URL)
		if err != nil {
			return ocr.Result{}, err
		}
	}

	select {
	case <-ctx.Done():
		return ocr.Result{}, ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(data); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}
	if len(e.Langs) > 0 {
		if err := c.SetLanguage(e.Langs...); err != nil {
			return ocr.Result{}, fmt.Errorf("set languages: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, err
	}

	doc := struct {
		Pages []ocr.Page `json:"pages"`
		Model string     `json:"model"`
	}{
		Pages: []ocr.Page{{Index: 0, Markdown: text}},
		Model: "tesseract",
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return ocr.Result{}, err
	}
	return ocr.Result{Raw: raw}, nil
}
