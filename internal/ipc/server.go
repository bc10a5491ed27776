package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"
)

// requestTimeout bounds how long a request may wait for the control loop.
const requestTimeout = 5 * time.Second

// Handler executes commands against the running compositor.
type Handler interface {
	Status(ctx context.Context) (StatusData, error)
	Windows(ctx context.Context) ([]WindowInfo, error)
	Reload(ctx context.Context) error
	Iconify(ctx context.Context, windowID uint32) error
	Close(ctx context.Context, windowID uint32) error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	handler      Handler
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server on socketPath.
func NewServer(socketPath string, handler Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		logger:     logger,
		startTime:  time.Now(),
	}
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove a stale socket left by a crashed daemon.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Debug("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	resp := s.handleCommand(ctx, req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Warn("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Debug("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload(ctx)
	case CommandGetStatus:
		return s.handleGetStatus(ctx)
	case CommandListWindows:
		return s.handleListWindows(ctx)
	case CommandIconify, CommandClose:
		return s.handleWindowCommand(ctx, req)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleReload(ctx context.Context) *Response {
	s.logger.Info("IPC: received RELOAD command")
	if err := s.handler.Reload(ctx); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleGetStatus(ctx context.Context) *Response {
	status, err := s.handler.Status(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get status: %v", err))
	}
	status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
	status.DaemonRunning = true

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleListWindows(ctx context.Context) *Response {
	windows, err := s.handler.Windows(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to list windows: %v", err))
	}
	resp, err := NewOKResponse(WindowsData{Windows: windows})
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleWindowCommand(ctx context.Context, req *Request) *Response {
	var payload WindowPayload
	if len(req.Payload) > 0 {
		if err := json.Unmarshal(req.Payload, &payload); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid window payload: %v", err))
		}
	}

	var err error
	if req.Command == CommandIconify {
		err = s.handler.Iconify(ctx, payload.WindowID)
	} else {
		err = s.handler.Close(ctx, payload.WindowID)
	}
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("%s failed: %v", req.Command, err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
