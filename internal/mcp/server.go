// Package mcp exposes a capture-and-act session as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/xseat/internal/computer"
)

const (
	ServerName    = "xseat"
	ServerVersion = "0.1.0"
)

// Server is the MCP server driving one session.
type Server struct {
	mcpServer  *mcpsdk.Server
	dispatcher *computer.Dispatcher
	logger     *slog.Logger

	// mu serializes tool calls; the devices accept one action at a time.
	mu sync.Mutex

	// stop ends Run after a handler panicked; panicked holds the value.
	stateMu  sync.Mutex
	stop     context.CancelFunc
	panicked any
}

// NewServer creates a server whose tools act through d.
func NewServer(d *computer.Dispatcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{dispatcher: d, logger: logger}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves on the stdio transport, blocking until the client disconnects
// or ctx is cancelled. A panic in a tool handler is answered as a tool error
// and ends Run with an error so the caller tears the session down.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.stateMu.Lock()
	s.stop = cancel
	s.stateMu.Unlock()

	err := s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
	if p := s.panicValue(); p != nil {
		return fmt.Errorf("tool handler panicked: %v", p)
	}
	return err
}

func (s *Server) panicValue() any {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.panicked
}

// recoverCall turns a handler panic into a tool error and stops the server.
func (s *Server) recoverCall(action string, res **mcpsdk.CallToolResult) {
	r := recover()
	if r == nil {
		return
	}
	s.logger.Error("tool handler panicked; stopping", "action", action, "panic", r)
	s.stateMu.Lock()
	if s.panicked == nil {
		s.panicked = r
	}
	stop := s.stop
	s.stateMu.Unlock()
	if stop != nil {
		stop()
	}
	*res = errorResult(fmt.Errorf("internal error in %s: %v; session is shutting down", action, r))
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "display",
		Description: "Describe the coordinate space the other tools use. Coordinates are pixels of the most recent screenshot.",
	}, s.handleDisplay)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "screenshot",
		Description: "Capture the target window (or the whole desktop) and return it as an image. Later coordinates refer to this image.",
	}, s.handleScreenshot)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move",
		Description: "Move the dedicated pointer to a point. Returns a fresh screenshot.",
	}, s.handleMove)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "click",
		Description: "Move to a point and click a mouse button. Returns a fresh screenshot.",
	}, s.handleClick)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "double_click",
		Description: "Double-click the left button, optionally moving to a point first. Returns a fresh screenshot.",
	}, s.handleDoubleClick)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "drag",
		Description: "Press the left button at the first point, move through the rest and release. Returns a fresh screenshot.",
	}, s.handleDrag)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "scroll",
		Description: "Move to a point and scroll. Steps are clamped to the configured limit. Returns a fresh screenshot.",
	}, s.handleScroll)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "type",
		Description: "Type text on the dedicated keyboard. Returns a fresh screenshot.",
	}, s.handleType)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "keypress",
		Description: "Press keys together as a chord and release them in reverse order. Returns a fresh screenshot.",
	}, s.handleKeypress)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "wait",
		Description: "Pause, then return a fresh screenshot.",
	}, s.handleWait)
}

// act dispatches one action and answers with the screenshot taken after it.
func (s *Server) act(a computer.Action) (res *mcpsdk.CallToolResult, _ any, _ error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.recoverCall(a.Type, &res)

	if err := s.dispatcher.Dispatch(a); err != nil {
		s.logger.Warn("tool call failed", "action", a.Type, "error", err)
		return errorResult(err), nil, nil
	}
	shot, err := s.dispatcher.Screenshot()
	if err != nil {
		s.logger.Warn("screenshot failed", "action", a.Type, "error", err)
		return errorResult(err), nil, nil
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.ImageContent{Data: shot.Data, MIMEType: shot.MIMEType},
			&mcpsdk.TextContent{Text: fmt.Sprintf("%s done; screenshot is %dx%d", a.Type, shot.Width, shot.Height)},
		},
	}, nil, nil
}

func errorResult(err error) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		IsError: true,
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
	}
}
