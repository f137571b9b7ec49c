package tesseract

import (
	"context"
	"errors"
	"testing"

	"mcp-mistral-ocr/internal/ocr"
)

func TestProcessRejectsDocuments(t *testing.T) {
	e := New(nil)
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

func TestProcessHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(nil)
	_, err := e.Process(ctx, ocr.Source{Kind: ocr.KindImage, Name: "a.png", Data: []byte("x")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
