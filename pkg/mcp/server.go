// Package mcp serves the lint and fix tool-calls over newline-delimited
// JSON-RPC 2.0, the stdio transport of the Model Context Protocol.
package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dkoosis/lintbridge/pkg/toolcall"
)

// ProtocolVersion is the MCP revision announced in initialize.
const ProtocolVersion = "2024-11-05"

const maxLineBytes = 4 * 1024 * 1024

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// ToolService runs the tool-calls. *toolcall.Service implements it.
type ToolService interface {
	Lint(ctx context.Context, in toolcall.Input) (*toolcall.LintResult, error)
	Fix(ctx context.Context, in toolcall.Input) (*toolcall.FixResult, error)
}

// Server answers MCP requests one at a time.
type Server struct {
	svc     ToolService
	name    string
	version string
	logger  *slog.Logger

	mu  sync.Mutex
	out io.Writer
}

// NewServer returns a Server that dispatches tool-calls to svc.
func NewServer(svc ToolService, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{svc: svc, name: "lintbridge", version: version, logger: logger}
}

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// isNotification reports whether the request carries no id and so expects
// no response.
func (r request) isNotification() bool {
	return len(r.ID) == 0
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Serve reads requests from r and writes responses to w until r is
// exhausted or ctx is cancelled. On cancellation r is closed when it is an
// io.Closer, so a read blocked on stdin does not outlive Serve.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	s.mu.Lock()
	s.out = w
	s.mu.Unlock()

	s.logger.Info("mcp server starting", slog.String("version", s.version))

	lines, readErr := readLines(ctx, r)
	for {
		select {
		case <-ctx.Done():
			if c, ok := r.(io.Closer); ok {
				_ = c.Close()
			}
			s.logger.Info("mcp server stopped: context done")
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("read requests: %w", err)
				}
				s.logger.Info("mcp server stopped: input closed")
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			s.handle(ctx, line)
		}
	}
}

// readLines scans r on its own goroutine. readErr receives the scanner
// error, possibly nil, before lines is closed.
func readLines(ctx context.Context, r io.Reader) (<-chan []byte, <-chan error) {
	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			line := bytes.Clone(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()
	return lines, readErr
}

func (s *Server) handle(ctx context.Context, line []byte) {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		s.write(response{JSONRPC: "2.0", Error: &rpcError{Code: codeParseError, Message: "parse error"}})
		return
	}
	if resp, ok := s.dispatch(ctx, req); ok {
		s.write(resp)
	}
}

func (s *Server) write(resp response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("encode response", slog.Any("error", err))
		return
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.out.Write(data); err != nil {
		s.logger.Error("write response", slog.Any("error", err))
	}
}

// dispatch handles one request. ok is false when no response is due.
func (s *Server) dispatch(ctx context.Context, req request) (response, bool) {
	base := response{JSONRPC: "2.0", ID: req.ID}

	if req.JSONRPC != "2.0" || req.Method == "" {
		if req.isNotification() {
			return base, false
		}
		base.Error = &rpcError{Code: codeInvalidRequest, Message: "invalid request"}
		return base, true
	}

	switch req.Method {
	case "initialize":
		base.Result = map[string]any{
			"protocolVersion": ProtocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{"listChanged": false}},
			"serverInfo":      map[string]any{"name": s.name, "version": s.version},
		}
	case "notifications/initialized", "notifications/cancelled":
		return base, false
	case "ping":
		base.Result = map[string]any{}
	case "tools/list":
		base.Result = map[string]any{"tools": toolDefinitions()}
	case "tools/call":
		base = s.handleToolCall(ctx, req, base)
	default:
		if req.isNotification() {
			return base, false
		}
		base.Error = &rpcError{Code: codeMethodNotFound, Message: fmt.Sprintf("method not found: %s", req.Method)}
	}

	if req.isNotification() {
		return base, false
	}
	return base, true
}

func toolDefinitions() []map[string]any {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]string{
				"type":        "string",
				"description": "File or directory to check",
			},
			"language": map[string]any{
				"type":        "string",
				"enum":        []string{"typescript", "python", "auto"},
				"description": "Language selector; auto detects from the file extension",
			},
		},
		"required": []string{"path"},
	}
	return []map[string]any{
		{
			"name":        "lint",
			"description": "Run ESLint and a Prettier check on a path and classify every issue as tool-fixable, context-fixable or neither. Never modifies files.",
			"inputSchema": schema,
		},
		{
			"name":        "fix",
			"description": "Apply ESLint --fix and Prettier --write to a path and report how many issues were resolved and which files changed.",
			"inputSchema": schema,
		},
	}
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type toolResult struct {
	Content []content `json:"content"`
	IsError bool      `json:"isError"`
}

func (s *Server) handleToolCall(ctx context.Context, req request, base response) response {
	var params toolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		base.Error = &rpcError{Code: codeInvalidParams, Message: "invalid params: " + err.Error()}
		return base
	}

	var in toolcall.Input
	if len(params.Arguments) > 0 {
		if err := json.Unmarshal(params.Arguments, &in); err != nil {
			base.Error = &rpcError{Code: codeInvalidParams, Message: "invalid arguments: " + err.Error()}
			return base
		}
	}

	callID := uuid.NewString()
	logger := s.logger.With(
		slog.String("call_id", callID),
		slog.String("tool", params.Name),
		slog.String("path", in.Path),
	)
	start := time.Now()

	var (
		out any
		err error
	)
	switch params.Name {
	case "lint":
		out, err = s.svc.Lint(ctx, in)
	case "fix":
		out, err = s.svc.Fix(ctx, in)
	default:
		base.Error = &rpcError{Code: codeInvalidParams, Message: fmt.Sprintf("unknown tool: %s", params.Name)}
		return base
	}

	if err != nil {
		level := slog.LevelError
		if errors.Is(err, toolcall.ErrInvalidInput) || errors.Is(err, toolcall.ErrUnsupportedLanguage) {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "tool call failed", slog.Any("error", err), slog.Duration("duration", time.Since(start)))
		base.Result = toolResult{Content: []content{{Type: "text", Text: err.Error()}}, IsError: true}
		return base
	}

	text, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		base.Error = &rpcError{Code: codeInternalError, Message: err.Error()}
		return base
	}
	logger.Info("tool call completed", slog.Duration("duration", time.Since(start)))
	base.Result = toolResult{Content: []content{{Type: "text", Text: string(text)}}}
	return base
}
