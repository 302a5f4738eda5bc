package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/analyticsresolve/accounts"
	"github.com/jonwraymond/analyticsresolve/health"
	"github.com/jonwraymond/analyticsresolve/observe"
	"github.com/jonwraymond/analyticsresolve/resolve"
)

// Transports accepted by Run.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

const (
	defaultName     = "analyticsresolve"
	shutdownTimeout = 10 * time.Second
)

// Errors returned by New and Run.
var (
	ErrMissingEngine    = errors.New("server: resolve engine is nil")
	ErrMissingIndex     = errors.New("server: account index is nil")
	ErrUnknownTransport = errors.New("server: transport not supported")
)

// Config wires a Server.
type Config struct {
	Engine *resolve.Engine
	Index  *accounts.Index

	// Health backs the HTTP health routes. Nil serves liveness only.
	Health *health.Aggregator

	// Middleware instruments every tool call. Nil disables telemetry.
	Middleware *observe.Middleware

	// Name and Version identify the server to MCP clients.
	Name    string
	Version string

	// Metrics mounts promhttp at /metrics in HTTP mode.
	Metrics bool
}

// Server is an MCP server over an account index and resolve engine.
type Server struct {
	engine  *resolve.Engine
	index   *accounts.Index
	health  *health.Aggregator
	mw      *observe.Middleware
	metrics bool
	mcp     *mcp.Server
}

// registration adds one tool to an MCP server.
type registration func(*mcp.Server)

// New builds the server and registers the tool table.
func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, ErrMissingEngine
	}
	if cfg.Index == nil {
		return nil, ErrMissingIndex
	}
	if cfg.Name == "" {
		cfg.Name = defaultName
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	mw := cfg.Middleware
	if mw == nil {
		mw = observe.NewMiddleware(nil, nil, nil)
	}

	s := &Server{
		engine:  cfg.Engine,
		index:   cfg.Index,
		health:  cfg.Health,
		mw:      mw,
		metrics: cfg.Metrics,
		mcp:     mcp.NewServer(&mcp.Implementation{Name: cfg.Name, Version: cfg.Version}, nil),
	}
	for _, register := range s.tools() {
		register(s.mcp)
	}
	return s, nil
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcp.Server { return s.mcp }

// bind adapts a typed handler to the MCP SDK. The handler runs inside the
// observe middleware with an invocation id on its context; its error
// becomes a ToolError.
func bind[I, O any](s *Server, tool *mcp.Tool, h func(context.Context, I) (O, error)) registration {
	meta := observe.ToolMeta{Namespace: "accounts", Name: tool.Name}
	exec := s.mw.Wrap(func(ctx context.Context, _ observe.ToolMeta, input any) (any, error) {
		return h(ctx, input.(I))
	})

	return func(srv *mcp.Server) {
		mcp.AddTool(srv, tool, func(ctx context.Context, _ *mcp.CallToolRequest, in I) (*mcp.CallToolResult, O, error) {
			var zero O
			ctx = observe.ContextWithInvocationID(ctx, uuid.NewString())
			out, err := exec(ctx, meta, in)
			if err != nil {
				return nil, zero, toolError(tool.Name, err)
			}
			return nil, out.(O), nil
		})
	}
}

// HTTPHandler serves MCP at /mcp plus the health and metrics routes.
func (s *Server) HTTPHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil))
	if s.health != nil {
		health.RegisterHandlers(mux, s.health)
	} else {
		mux.HandleFunc("/healthz", health.LivenessHandler())
	}
	if s.metrics {
		mux.Handle("/metrics", promhttp.Handler())
	}
	return mux
}

// Run serves until ctx is done. addr is used by the HTTP transport.
func (s *Server) Run(ctx context.Context, transport, addr string) error {
	switch transport {
	case TransportStdio, "":
		return s.mcp.Run(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		return s.serveHTTP(ctx, addr)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTransport, transport)
	}
}

func (s *Server) serveHTTP(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves HTTP on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	}
}
