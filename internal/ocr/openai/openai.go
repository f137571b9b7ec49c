// Package openai runs OCR through a vision-capable chat model. The model is
// held to a strict JSON contract so results persist in the same page-oriented
// shape the other providers produce.
package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"mcp-mistral-ocr/internal/ocr"
	"mcp-mistral-ocr/internal/util"
)

const systemPrompt = `You are an OCR engine. Transcribe all text visible in the supplied image.
Return only JSON of the form {"pages":[{"index":0,"markdown":"..."}]} where markdown holds the
page text with its layout expressed as markdown. Page indexes start at 0. Any text outside the
JSON is an error.`

type Engine struct {
	APIKey  string
	Model   string
	BaseURL string
}

func New(key, model string) *Engine {
	return &Engine{APIKey: key, Model: model}
}

func (e *Engine) Name() string { return "openai" }

func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) client() *goopenai.Client {
	cfg := goopenai.DefaultConfig(e.APIKey)
	cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	if e.BaseURL != "" {
		cfg.BaseURL = e.BaseURL
	}
	return goopenai.NewClientWithConfig(cfg)
}

func (e *Engine) Process(ctx context.Context, src ocr.Source) (ocr.Result, error) {
	if e.APIKey == "" {
		return ocr.Result{}, fmt.Errorf("OPENAI_API_KEY is empty")
	}
	if src.Kind != ocr.KindImage {
		return ocr.Result{}, fmt.Errorf("openai: %w: vision chat takes images only", ocr.ErrUnsupportedFormat)
	}

	imageURL := src.URL
	if !src.Remote() {
		b64 := base64.StdEncoding.EncodeToString(src.Data)
		imageURL = util.MakeDataURL(src.MIME, b64)
	}

	resp, err := e.client().CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: e.Model,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{
				Role: goopenai.ChatMessageRoleUser,
				MultiContent: []goopenai.ChatMessagePart{
					{Type: goopenai.ChatMessagePartTypeText, Text: "Transcribe this file. JSON only."},
					{
						Type: goopenai.ChatMessagePartTypeImageURL,
						ImageURL: &goopenai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: goopenai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			return ocr.Result{}, &ocr.UpstreamError{
				Provider:   "openai",
				StatusCode: apiErr.HTTPStatusCode,
				Message:    apiErr.Message,
			}
		}
		return ocr.Result{}, err
	}
	if len(resp.Choices) == 0 {
		return ocr.Result{}, fmt.Errorf("openai: empty response")
	}

	out := util.StripCodeFences(strings.TrimSpace(resp.Choices[0].Message.Content))
	if !json.Valid([]byte(out)) {
		return ocr.Result{}, fmt.Errorf("openai: model returned invalid JSON")
	}
	return ocr.Result{Raw: json.RawMessage(out)}, nil
}
