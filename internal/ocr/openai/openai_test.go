package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"mcp-mistral-ocr/internal/ocr"
)

func chatResponse(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	})
	return string(body)
}

func TestProcessImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected call to %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponse("```json\n{\"pages\":[{\"index\":0,\"markdown\":\"hello\"}]}\n```")))
	}))
	defer srv.Close()

	e := New("sk-test", "gpt-4o-mini")
	e.BaseURL = srv.URL + "/v1"

	res, err := e.Process(context.Background(), ocr.Source{
		Kind: ocr.KindImage,
		Name: "scan.png",
		MIME: "image/png",
		Data: []byte("png"),
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	pages := ocr.Pages(res.Raw)
	if len(pages) != 1 || pages[0].Markdown != "hello" {
		t.Errorf("pages = %+v", pages)
	}
}

func TestProcessRejectsDocuments(t *testing.T) {
	e := New("sk-test", "gpt-4o-mini")
	_, err := e.Process(context.Background(), ocr.Source{
		Kind: ocr.KindDocument,
		Name: "invoice.pdf",
		MIME: "application/pdf",
		Data: []byte("%PDF"),
	})
	if !errors.Is(err, ocr.ErrUnsupportedFormat) {
		t.Fatalf("want ErrUnsupportedFormat, got %v", err)
	}
}

func TestProcessInvalidModelJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponse("sorry, I cannot read that")))
	}))
	defer srv.Close()

	e := New("sk-test", "gpt-4o-mini")
	e.BaseURL = srv.URL + "/v1"

	_, err := e.Process(context.Background(), ocr.Source{
		Kind: ocr.KindImage, Name: "a.png", MIME: "image/png", Data: []byte("x"),
	})
	if err == nil {
		t.Fatal("Process accepted a non-JSON model reply")
	}
}
