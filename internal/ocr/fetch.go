package ocr

import (
	"context"
	"io"
	"net/http"
	"strings"

	"mcp-mistral-ocr/internal/util"
)

// Fetch downloads a remote source for providers that only take bytes.
// It returns the body and the MIME type reported or sniffed for it.
func Fetch(ctx context.Context, httpc *http.Client, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := httpc.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", &UpstreamError{
			Provider:   "download",
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}
	return body, util.PickMIME(resp.Header.Get("Content-Type"), body), nil
}
