// Package mcp exposes the OCR tools over the Model Context Protocol:
// JSON-RPC 2.0 framed one request per line on stdio, or one request per POST
// over HTTP.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"mcp-mistral-ocr/internal/files"
	"mcp-mistral-ocr/internal/ocr"
	"mcp-mistral-ocr/internal/store"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "mcp-mistral-ocr"
	serverVersion   = "0.1.0"
)

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type Server struct {
	engine   ocr.Engine
	resolver *files.Resolver
	writer   *store.Writer
	log      zerolog.Logger
	tools    map[string]toolDefinition
}

func New(engine ocr.Engine, resolver *files.Resolver, writer *store.Writer, log zerolog.Logger) *Server {
	s := &Server{
		engine:   engine,
		resolver: resolver,
		writer:   writer,
		log:      log,
	}
	s.tools = s.buildToolRegistry()
	return s
}

// Handle processes one JSON-RPC frame and returns the marshaled response.
// Notifications return nil.
func (s *Server) Handle(ctx context.Context, raw []byte) []byte {
	var req rpcRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return marshal(*errorResponse(nil, codeParseError, "parse error: request is not valid JSON"))
	}
	if req.Method == "" {
		return marshal(*errorResponse(req.ID, codeInvalidRequest, "method is required"))
	}

	resp := s.dispatch(ctx, req)
	if resp == nil {
		return nil
	}
	return marshal(*resp)
}

func (s *Server) dispatch(ctx context.Context, req rpcRequest) *rpcResponse {
	switch req.Method {
	case "initialize":
		return resultResponse(req.ID, map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{"listChanged": false},
			},
			"serverInfo": map[string]interface{}{
				"name":    serverName,
				"version": serverVersion,
			},
		})
	case "notifications/initialized":
		return nil
	case "ping":
		return resultResponse(req.ID, map[string]interface{}{})
	case "tools/list":
		return s.handleToolsList(req.ID)
	case "tools/call":
		return s.handleToolsCall(ctx, req.Params, req.ID)
	default:
		return errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
	}
}

func (s *Server) handleToolsList(id json.RawMessage) *rpcResponse {
	tools := make([]toolDefinition, 0, len(s.tools))
	for _, name := range toolOrder {
		if tool, ok := s.tools[name]; ok {
			tools = append(tools, tool)
		}
	}
	return resultResponse(id, map[string]interface{}{"tools": tools})
}

func (s *Server) handleToolsCall(ctx context.Context, rawParams json.RawMessage, id json.RawMessage) *rpcResponse {
	params, err := parseToolsCallParams(rawParams)
	if err != nil {
		return errorResponse(id, codeInvalidParams, err.Error())
	}

	tool, ok := s.tools[params.Name]
	if !ok {
		return resultResponse(id, newToolErrorResult(toolError{
			Code:    "METHOD_NOT_FOUND",
			Message: fmt.Sprintf("unknown tool: %s", params.Name),
		}))
	}

	s.log.Info().Str("tool", params.Name).Msg("tool call")
	result, toolErr := tool.handler(ctx, params.Arguments)
	if toolErr != nil {
		if toolErr.Code == codeNameInvalidParams {
			return errorResponse(id, codeInvalidParams, toolErr.Message)
		}
		s.log.Warn().Str("tool", params.Name).Str("code", toolErr.Code).Msg(toolErr.Message)
		return resultResponse(id, newToolErrorResult(*toolErr))
	}
	return resultResponse(id, result)
}

func parseToolsCallParams(raw json.RawMessage) (toolsCallParams, error) {
	if len(raw) == 0 {
		return toolsCallParams{}, fmt.Errorf("params is required")
	}
	var params toolsCallParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return toolsCallParams{}, fmt.Errorf("invalid tools/call params")
	}
	if params.Name == "" {
		return toolsCallParams{}, fmt.Errorf("tools/call params.name is required")
	}
	if params.Arguments == nil {
		params.Arguments = map[string]interface{}{}
	}
	return params, nil
}

func resultResponse(id json.RawMessage, result interface{}) *rpcResponse {
	return &rpcResponse{JSONRPC: "2.0", ID: id, Result: result}
}

func errorResponse(id json.RawMessage, code int, message string) *rpcResponse {
	return &rpcResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}}
}

func marshal(resp rpcResponse) []byte {
	out, err := json.Marshal(resp)
	if err != nil {
		fallback := rpcResponse{
			JSONRPC: "2.0",
			ID:      resp.ID,
			Error:   &rpcError{Code: codeInternalError, Message: "response serialization failed"},
		}
		out, _ = json.Marshal(fallback)
	}
	return out
}
