// Package mistral implements the default OCR engine on top of the Mistral
// OCR API. Images travel inline as base64 data URLs; local documents go
// through the files API first and are read back via a signed URL.
package mistral

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"mcp-mistral-ocr/internal/ocr"
	"mcp-mistral-ocr/internal/util"
)

const (
	DefaultModel = "mistral-ocr-latest"

	defaultBaseURL = "https://api.mistral.ai"
)

type Engine struct {
	APIKey  string
	Model   string
	BaseURL string
	httpc   *http.Client
}

func New(key, model string) *Engine {
	if model == "" {
		model = DefaultModel
	}
	return &Engine{
		APIKey:  key,
		Model:   model,
		BaseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (e *Engine) Name() string { return "mistral" }

func (e *Engine) GetModel() string { return e.Model }

type document struct {
	Type        string `json:"type"` // "image_url" | "document_url"
	ImageURL    string `json:"image_url,omitempty"`
	DocumentURL string `json:"document_url,omitempty"`
}

type ocrRequest struct {
	Model              string   `json:"model"`
	Document           document `json:"document"`
	IncludeImageBase64 bool     `json:"include_image_base64"`
}

func (e *Engine) Process(ctx context.Context, src ocr.Source) (ocr.Result, error) {
	doc, err := e.document(ctx, src)
	if err != nil {
		return ocr.Result{}, err
	}
	return e.process(ctx, doc)
}

func (e *Engine) document(ctx context.Context, src ocr.Source) (document, error) {
	if src.Remote() {
		if src.Kind == ocr.KindImage {
			return document{Type: "image_url", ImageURL: src.URL}, nil
		}
		return document{Type: "document_url", DocumentURL: src.URL}, nil
	}
	if src.Kind == ocr.KindImage {
		b64 := base64.StdEncoding.EncodeToString(src.Data)
		return document{Type: "image_url", ImageURL: util.MakeDataURL(src.MIME, b64)}, nil
	}

	// documents cannot travel inline: upload, then let OCR read the signed URL
	id, err := e.upload(ctx, src.Name, src.Data)
	if err != nil {
		return document{}, err
	}
	signed, err := e.signedURL(ctx, id)
	if err != nil {
		return document{}, err
	}
	return document{Type: "document_url", DocumentURL: signed}, nil
}

func (e *Engine) process(ctx context.Context, doc document) (ocr.Result, error) {
	payload, _ := json.Marshal(ocrRequest{Model: e.Model, Document: doc})

	req, _ := http.NewRequestWithContext(ctx, "POST", e.BaseURL+"/v1/ocr", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return ocr.Result{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ocr.Result{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return ocr.Result{}, e.upstream(resp.StatusCode, body)
	}
	if !json.Valid(body) {
		return ocr.Result{}, fmt.Errorf("mistral ocr: response is not JSON")
	}
	return ocr.Result{Raw: body}, nil
}

// upload pushes file bytes to the files API with purpose=ocr and returns the file id.
func (e *Engine) upload(ctx context.Context, name string, data []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("purpose", "ocr"); err != nil {
		return "", err
	}
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, _ := http.NewRequestWithContext(ctx, "POST", e.BaseURL+"/v1/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", e.upstream(resp.StatusCode, body)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("mistral upload: empty file id")
	}
	return out.ID, nil
}

// signedURL asks for a short-lived download URL the OCR endpoint can read.
func (e *Engine) signedURL(ctx context.Context, id string) (string, error) {
	req, _ := http.NewRequestWithContext(ctx, "GET", e.BaseURL+"/v1/files/"+id+"/url?expiry=24", nil)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", e.upstream(resp.StatusCode, body)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", fmt.Errorf("mistral signed url: empty url")
	}
	return out.URL, nil
}

func (e *Engine) upstream(status int, body []byte) error {
	return &ocr.UpstreamError{
		Provider:   "mistral",
		StatusCode: status,
		Message:    strings.TrimSpace(string(body)),
	}
}
