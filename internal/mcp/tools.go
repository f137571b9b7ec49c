package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"mcp-mistral-ocr/internal/files"
	"mcp-mistral-ocr/internal/ocr"
	"mcp-mistral-ocr/internal/util"
)

const (
	toolNameProcessLocalFile = "process_local_file"
	toolNameProcessURLFile   = "process_url_file"

	// stem used when a URL carries no filename-looking segment
	fallbackURLStem = "url_document"

	// codeNameInvalidParams marks argument faults; the dispatcher turns them
	// into protocol-level invalid params errors instead of tool results.
	codeNameInvalidParams = "INVALID_PARAMS"
)

var toolOrder = []string{
	toolNameProcessLocalFile,
	toolNameProcessURLFile,
}

type toolHandler func(context.Context, map[string]interface{}) (toolCallResult, *toolError)

type toolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	handler     toolHandler            `json:"-"`
}

type toolsCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

type toolCallResult struct {
	Content           []toolContentItem `json:"content"`
	StructuredContent interface{}       `json:"structuredContent,omitempty"`
	IsError           bool              `json:"isError,omitempty"`
}

type toolContentItem struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type toolError struct {
	Code      string
	Message   string
	Retryable bool
}

func newToolErrorResult(toolErr toolError) toolCallResult {
	return toolCallResult{
		IsError: true,
		Content: []toolContentItem{
			{Type: "text", Text: fmt.Sprintf("ERROR: %s: %s", toolErr.Code, toolErr.Message)},
		},
		StructuredContent: map[string]interface{}{
			"error": map[string]interface{}{
				"code":      toolErr.Code,
				"message":   toolErr.Message,
				"retryable": toolErr.Retryable,
			},
		},
	}
}

func (s *Server) buildToolRegistry() map[string]toolDefinition {
	return map[string]toolDefinition{
		toolNameProcessLocalFile: {
			Name:        toolNameProcessLocalFile,
			Description: "Process a file from the OCR_DIR directory",
			InputSchema: processLocalFileInputSchema(),
			handler:     s.handleProcessLocalFile,
		},
		toolNameProcessURLFile: {
			Name:        toolNameProcessURLFile,
			Description: "Process a file from a URL (max 50MB, 1000 pages)",
			InputSchema: processURLFileInputSchema(),
			handler:     s.handleProcessURLFile,
		},
	}
}

func processLocalFileInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"filename": map[string]interface{}{
				"type":        "string",
				"description": "Name of the file to process",
			},
		},
		"required": []string{"filename"},
	}
}

func processURLFileInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "URL of the file to process",
			},
			"file_type": map[string]interface{}{
				"type":        "string",
				"description": "Type of file: 'image', 'document' or 'pdf'",
				"enum":        []string{"image", "document", "pdf"},
			},
		},
		"required": []string{"url", "file_type"},
	}
}

func (s *Server) handleProcessLocalFile(ctx context.Context, args map[string]interface{}) (toolCallResult, *toolError) {
	filename, ok, err := parseRequiredString(args, "filename")
	if err != nil {
		return toolCallResult{}, &toolError{Code: codeNameInvalidParams, Message: err.Error()}
	}
	if !ok {
		return toolCallResult{}, &toolError{Code: codeNameInvalidParams, Message: "filename is required"}
	}

	src, err := s.resolver.Resolve(filename)
	if err != nil {
		return toolCallResult{}, mapToolError(err)
	}
	return s.run(ctx, src, util.Stem(src.Name))
}

func (s *Server) handleProcessURLFile(ctx context.Context, args map[string]interface{}) (toolCallResult, *toolError) {
	rawURL, ok, err := parseRequiredString(args, "url")
	if err != nil {
		return toolCallResult{}, &toolError{Code: codeNameInvalidParams, Message: err.Error()}
	}
	if !ok {
		return toolCallResult{}, &toolError{Code: codeNameInvalidParams, Message: "url is required"}
	}

	tag, ok, err := parseRequiredString(args, "file_type")
	if err != nil {
		return toolCallResult{}, &toolError{Code: codeNameInvalidParams, Message: err.Error()}
	}
	if !ok {
		return toolCallResult{}, &toolError{Code: codeNameInvalidParams, Message: "file_type is required"}
	}
	kind, err := files.ParseFileType(tag)
	if err != nil {
		return toolCallResult{}, &toolError{Code: codeNameInvalidParams, Message: err.Error()}
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != "http" && u.Scheme != "https" {
		return toolCallResult{}, &toolError{Code: codeNameInvalidParams, Message: "url must be an absolute http(s) URL"}
	}

	stem := util.StemFromURL(rawURL)
	if stem == "" {
		stem = fallbackURLStem
	}
	return s.run(ctx, ocr.Source{Kind: kind, URL: rawURL}, stem)
}

// run is the shared tail of both tools: submit the source, persist the
// result, assemble the response.
func (s *Server) run(ctx context.Context, src ocr.Source, stem string) (toolCallResult, *toolError) {
	res, err := s.engine.Process(ctx, src)
	if err != nil {
		return toolCallResult{}, mapToolError(err)
	}

	path, err := s.writer.Save(res, stem)
	if err != nil {
		s.log.Error().Err(err).Str("stem", stem).Msg("result write failed")
		// the document is kept in the error payload, only the write failed
		result := newToolErrorResult(toolError{Code: "WRITE_FAILED", Message: err.Error()})
		result.StructuredContent = map[string]interface{}{
			"error": map[string]interface{}{
				"code":      "WRITE_FAILED",
				"message":   err.Error(),
				"retryable": true,
			},
			"result": res.Raw,
		}
		return result, nil
	}

	s.log.Info().
		Str("provider", s.engine.Name()).
		Str("output", path).
		Msg("ocr result saved")

	return toolCallResult{
		Content:           []toolContentItem{{Type: "text", Text: string(res.Raw)}},
		StructuredContent: s.summarize(res, path),
	}, nil
}

func (s *Server) summarize(res ocr.Result, path string) map[string]interface{} {
	pages := ocr.Pages(res.Raw)
	summary := map[string]interface{}{
		"output_path": path,
		"provider":    s.engine.Name(),
		"model":       s.engine.GetModel(),
		"pages":       len(pages),
	}
	if len(pages) > 0 {
		if p := previewText(pages[0].Markdown, previewLimit); p != "" {
			summary["preview"] = p
		}
	}
	return summary
}

func mapToolError(err error) *toolError {
	var upstream *ocr.UpstreamError
	var tooLarge *files.TooLargeError
	switch {
	case errors.Is(err, files.ErrNotFound):
		return &toolError{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, files.ErrOutsideBase):
		return &toolError{Code: "PATH_OUTSIDE_BASE", Message: err.Error()}
	case errors.As(err, &tooLarge):
		return &toolError{Code: "FILE_TOO_LARGE", Message: err.Error()}
	case errors.Is(err, ocr.ErrUnsupportedFormat):
		return &toolError{Code: "UNSUPPORTED_FORMAT", Message: err.Error()}
	case errors.As(err, &upstream):
		return &toolError{Code: "UPSTREAM_ERROR", Message: err.Error(), Retryable: upstream.StatusCode >= 500 || upstream.StatusCode == 429}
	default:
		return &toolError{Code: "INTERNAL_ERROR", Message: err.Error()}
	}
}

func parseRequiredString(args map[string]interface{}, key string) (string, bool, error) {
	raw, ok := args[key]
	if !ok {
		return "", false, nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", true, fmt.Errorf("%s must be a string", key)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", true, fmt.Errorf("%s must be a non-empty string", key)
	}
	return value, true, nil
}
