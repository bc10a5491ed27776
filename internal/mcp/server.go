// Package mcp exposes the running compositor to MCP clients on stdio. Every
// tool is a thin wrapper around an IPC request to the daemon.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/compwm/internal/ipc"
)

const (
	ServerName    = "compwm"
	ServerVersion = "0.1.0"
)

// Controller is the daemon surface the tools use. *ipc.Client implements it.
type Controller interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows() (*ipc.WindowsData, error)
	Iconify(windowID uint32) error
	Close(windowID uint32) error
	Reload() error
}

var _ Controller = (*ipc.Client)(nil)

// Server is the MCP server for compositor control.
type Server struct {
	mcpServer *mcpsdk.Server
	ctl       Controller
}

// NewServer creates a new MCP server backed by ctl.
func NewServer(ctl Controller) *Server {
	s := &Server{ctl: ctl}
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

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "compositor_status",
		Description: "Report compositor counters: tracked, visible, transitioning, hung and iconified windows, whether windows are redirected, and the active renderer.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List composited windows bottom to top with their lifecycle status, visibility, z value, opacity and the window stacked behind them.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "iconify_window",
		Description: "Iconify a window with the minimize animation. Without window_id the active window is used.",
	}, s.handleIconify)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Play the close animation and ask the client to close. Without window_id the active window is used.",
	}, s.handleClose)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_config",
		Description: "Reload the compositor configuration file.",
	}, s.handleReload)
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, ipc.StatusData, error) {
	status, err := s.ctl.GetStatus()
	if err != nil {
		return nil, ipc.StatusData{}, err
	}
	return nil, *status, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	data, err := s.ctl.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	out := ListWindowsOutput{Windows: make([]ipc.WindowInfo, 0, len(data.Windows))}
	for _, w := range data.Windows {
		if args.HungOnly && w.Status != "hung" {
			continue
		}
		out.Windows = append(out.Windows, w)
	}
	return nil, out, nil
}

func (s *Server) handleIconify(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	if err := s.ctl.Iconify(args.WindowID); err != nil {
		return nil, WindowOutput{}, fmt.Errorf("iconify window 0x%x: %w", args.WindowID, err)
	}
	return nil, WindowOutput{WindowID: args.WindowID, Action: "iconify"}, nil
}

func (s *Server) handleClose(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	if err := s.ctl.Close(args.WindowID); err != nil {
		return nil, WindowOutput{}, fmt.Errorf("close window 0x%x: %w", args.WindowID, err)
	}
	return nil, WindowOutput{WindowID: args.WindowID, Action: "close"}, nil
}

func (s *Server) handleReload(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReloadInput) (*mcpsdk.CallToolResult, ReloadOutput, error) {
	if err := s.ctl.Reload(); err != nil {
		return nil, ReloadOutput{}, err
	}
	return nil, ReloadOutput{Reloaded: true}, nil
}
