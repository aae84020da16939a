// Package server exposes the formatter over HTTP and as an MCP tool.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/mark3labs/mcp-go/server"

	"github.com/panyam/treefill/formatter"
	"github.com/panyam/treefill/utils"
)

// DefaultMaxBodyBytes limits the size of a request body accepted by /format.
const DefaultMaxBodyBytes = 8 << 20

// Options configures a Server.
type Options struct {
	Addr         string
	Version      string
	EnableMCP    bool
	MaxBodyBytes int64
	Format       formatter.Options
	Verbose      bool
}

// Server serves POST /format, GET /healthz and, optionally, MCP on /mcp.
type Server struct {
	opts       Options
	mux        *http.ServeMux
	mcpServer  *server.MCPServer
	httpServer *http.Server
}

// New creates a server and registers its routes.
func New(opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	s := &Server{opts: opts, mux: http.NewServeMux()}
	s.mux.HandleFunc("/format", s.handleFormat)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "ok")
	})

	if opts.EnableMCP {
		s.mcpServer = NewMCPServer(opts.Version, opts.Format)
		mcpHandler := server.NewStreamableHTTPServer(s.mcpServer,
			server.WithStateLess(true),
			server.WithEndpointPath("/mcp"),
		)
		s.mux.Handle("/mcp", mcpHandler)
	}
	return s
}

// Handler returns the root handler with request logging.
func (s *Server) Handler() http.Handler {
	return s.withLogger(s.mux)
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is canceled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.httpServer = &http.Server{
		Handler:     s.Handler(),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)
	go func() {
		utils.LogServe("Listening on %s", listener.Addr())
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	utils.LogServe("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return <-errChan
}

// handleFormat formats the request body. Query flags override the defaults:
// keep_trailing and trailing_newline.
func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	opts := s.opts.Format
	query := r.URL.Query()
	if v, ok := boolParam(query.Get("keep_trailing")); ok {
		opts.KeepTrailingSpace = v
	}
	if v, ok := boolParam(query.Get("trailing_newline")); ok {
		opts.TrailingNewline = v
	}

	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	defer body.Close()

	lines, err := formatter.ReadLines(body, opts)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	out := formatter.Fill(lines)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Treefill-Lines", strconv.Itoa(len(out)))
	if err := formatter.WriteLines(w, out, opts); err != nil && s.opts.Verbose {
		utils.LogServe("Failed to write response: %v", err)
	}
}

// withLogger adds request logging middleware
func (s *Server) withLogger(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		m := httpsnoop.CaptureMetrics(handler, writer, request)
		if m.Code != http.StatusOK || s.opts.Verbose {
			utils.LogServe("http[%d] %s %s, Query: %s, Duration: %s",
				m.Code, request.Method, request.URL.Path, request.URL.RawQuery, m.Duration)
		}
	})
}

func boolParam(v string) (bool, bool) {
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
