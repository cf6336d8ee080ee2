package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/xseat/internal/computer"
)

func (s *Server) handleDisplay(_ context.Context, _ *mcpsdk.CallToolRequest, _ DisplayInput) (*mcpsdk.CallToolResult, DisplayOutput, error) {
	spec := s.dispatcher.ToolSpec()
	return nil, DisplayOutput{
		Width:       spec.DisplayWidth,
		Height:      spec.DisplayHeight,
		Window:      fmt.Sprintf("0x%x", uint32(s.dispatcher.Window())),
		Environment: spec.Environment,
	}, nil
}

func (s *Server) handleScreenshot(_ context.Context, _ *mcpsdk.CallToolRequest, _ ScreenshotInput) (*mcpsdk.CallToolResult, any, error) {
	return s.act(computer.Action{Type: computer.ActionScreenshot})
}

func (s *Server) handleMove(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveInput) (*mcpsdk.CallToolResult, any, error) {
	return s.act(computer.Action{Type: computer.ActionMove, X: &args.X, Y: &args.Y})
}

func (s *Server) handleClick(_ context.Context, _ *mcpsdk.CallToolRequest, args ClickInput) (*mcpsdk.CallToolResult, any, error) {
	return s.act(computer.Action{Type: computer.ActionClick, X: &args.X, Y: &args.Y, Button: args.Button})
}

func (s *Server) handleDoubleClick(_ context.Context, _ *mcpsdk.CallToolRequest, args DoubleClickInput) (*mcpsdk.CallToolResult, any, error) {
	return s.act(computer.Action{Type: computer.ActionDoubleClick, X: args.X, Y: args.Y})
}

func (s *Server) handleDrag(_ context.Context, _ *mcpsdk.CallToolRequest, args DragInput) (*mcpsdk.CallToolResult, any, error) {
	return s.act(computer.Action{Type: computer.ActionDrag, Path: args.Path})
}

func (s *Server) handleScroll(_ context.Context, _ *mcpsdk.CallToolRequest, args ScrollInput) (*mcpsdk.CallToolResult, any, error) {
	return s.act(computer.Action{
		Type:    computer.ActionScroll,
		X:       &args.X,
		Y:       &args.Y,
		ScrollX: args.ScrollX,
		ScrollY: args.ScrollY,
	})
}

func (s *Server) handleType(_ context.Context, _ *mcpsdk.CallToolRequest, args TypeInput) (*mcpsdk.CallToolResult, any, error) {
	return s.act(computer.Action{Type: computer.ActionType, Text: args.Text})
}

func (s *Server) handleKeypress(_ context.Context, _ *mcpsdk.CallToolRequest, args KeypressInput) (*mcpsdk.CallToolResult, any, error) {
	if len(args.Keys) == 0 {
		return errorResult(fmt.Errorf("keys must not be empty")), nil, nil
	}
	return s.act(computer.Action{Type: computer.ActionKeypress, Keys: args.Keys})
}

func (s *Server) handleWait(_ context.Context, _ *mcpsdk.CallToolRequest, args WaitInput) (*mcpsdk.CallToolResult, any, error) {
	return s.act(computer.Action{Type: computer.ActionWait, Ms: args.Ms})
}
