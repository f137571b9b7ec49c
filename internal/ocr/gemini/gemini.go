// Package gemini runs OCR through Gemini multimodal models. Gemini takes
// inline bytes only, so remote sources are downloaded first. The model is
// held to the same page-oriented JSON contract as the other chat providers.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"mcp-mistral-ocr/internal/ocr"
	"mcp-mistral-ocr/internal/util"
)

const systemPrompt = `You are an OCR engine. Transcribe all text in the supplied file.
Return only JSON of the form {"pages":[{"index":0,"markdown":"..."}]} where markdown holds the
page text with its layout expressed as markdown. Page indexes start at 0, one entry per page.
Any text outside the JSON is an error.`

type Engine struct {
	APIKey string
	Model  string
	httpc  *http.Client
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
		httpc:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (e *Engine) Name() string { return "gemini" }

func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Process(ctx context.Context, src ocr.Source) (ocr.Result, error) {
	if e.APIKey == "" {
		return ocr.Result{}, errors.New("GEMINI_API_KEY is empty")
	}

	data, mime := src.Data, src.MIME
	if src.Remote() {
		var err error
		data, mime, err = ocr.Fetch(ctx, e.httpc, src.URL)
		if err != nil {
			return ocr.Result{}, err
		}
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return ocr.Result{}, err
	}
	defer cl.Close()

	m := cl.GenerativeModel(strings.TrimSpace(e.Model))
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	parts := []genai.Part{
		genai.Text("Transcribe this file. JSON only."),
		&genai.Blob{MIMEType: mime, Data: data},
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return ocr.Result{}, &ocr.UpstreamError{
				Provider:   "gemini",
				StatusCode: gerr.Code,
				Message:    strings.TrimSpace(gerr.Message),
			}
		}
		return ocr.Result{}, err
	}

	txt := firstText(resp)
	if txt == "" {
		return ocr.Result{}, fmt.Errorf("gemini: empty response")
	}
	txt = util.StripCodeFences(strings.TrimSpace(txt))
	if !json.Valid([]byte(txt)) {
		return ocr.Result{}, fmt.Errorf("gemini: model returned invalid JSON")
	}
	return ocr.Result{Raw: json.RawMessage(txt)}, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
