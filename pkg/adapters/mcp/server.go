package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/xcallback"
	"github.com/aretw0/xcallback/internal/logging"
	"github.com/aretw0/xcallback/pkg/domain"
	"github.com/aretw0/xcallback/pkg/providers"
	"github.com/aretw0/xcallback/pkg/query"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// PendingURI is the resource listing requests awaiting a response.
const PendingURI = "xcallback://pending"

const defaultTimeout = 30 * time.Second

// BuildResponse is the result of build_url.
type BuildResponse struct {
	URL string `json:"url" jsonschema_description:"The request URL, without callback parameters"`
}

// PerformResponse is the result of perform_action.
type PerformResponse struct {
	Outcome string            `json:"outcome" jsonschema_description:"sent, success, cancelled or failure"`
	Data    map[string]string `json:"data,omitempty" jsonschema_description:"Parameters returned on success"`
	Error   *domain.Error     `json:"error,omitempty" jsonschema_description:"Error reported on failure"`
}

// ProvidersResponse is the result of list_providers.
type ProvidersResponse struct {
	Providers []*providers.Provider `json:"providers"`
}

// Server exposes a Manager and a provider catalog as an MCP server.
type Server struct {
	manager   *xcallback.Manager
	catalog   *providers.Catalog
	timeout   time.Duration
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithTimeout bounds how long perform_action waits for a response.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(m *xcallback.Manager, catalog *providers.Catalog, opts ...Option) *Server {
	if catalog == nil {
		catalog = providers.Builtin()
	}
	s := &Server{
		manager:   m,
		catalog:   catalog,
		timeout:   defaultTimeout,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("xcallback-mcp", xcallback.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP server over SSE until ctx ends.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func targetOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("provider", mcp.Description("Catalog name or scheme of the target application")),
		mcp.WithString("scheme", mcp.Description("Raw URL scheme, for applications missing from the catalog")),
		mcp.WithString("action", mcp.Required(), mcp.Description("Action name")),
		mcp.WithObject("params", mcp.Description("Action parameters")),
	}
}

func (s *Server) registerTools() {
	build := append([]mcp.ToolOption{
		mcp.WithDescription("Build the x-callback-url for an action without launching it."),
		mcp.WithOutputSchema[BuildResponse](),
	}, targetOptions()...)
	s.mcpServer.AddTool(mcp.NewTool("build_url", build...), mcp.NewStructuredToolHandler(s.handleBuildURL))

	perform := append([]mcp.ToolOption{
		mcp.WithDescription("Launch an action in another application, optionally waiting for its response."),
		mcp.WithBoolean("wait", mcp.Description("Wait for the response (default true)")),
		mcp.WithNumber("timeout_seconds", mcp.Description("How long to wait for the response")),
		mcp.WithOutputSchema[PerformResponse](),
	}, targetOptions()...)
	s.mcpServer.AddTool(mcp.NewTool("perform_action", perform...), mcp.NewStructuredToolHandler(s.handlePerform))

	s.mcpServer.AddTool(mcp.NewTool("list_providers",
		mcp.WithDescription("List the applications in the provider catalog and their actions."),
		mcp.WithOutputSchema[ProvidersResponse](),
	), mcp.NewStructuredToolHandler(s.handleListProviders))
}

// target resolves the scheme and validated parameters from tool arguments.
func (s *Server) target(args map[string]interface{}) (string, string, query.Pairs, error) {
	action, _ := args["action"].(string)
	if action == "" {
		return "", "", nil, errors.New("action is required")
	}
	params, _ := args["params"].(map[string]interface{})

	if name, _ := args["provider"].(string); name != "" {
		p, err := s.catalog.Lookup(name)
		if err != nil {
			return "", "", nil, err
		}
		pairs, err := p.Params(action, params)
		if err != nil {
			return "", "", nil, err
		}
		return p.Scheme, action, pairs, nil
	}

	scheme, _ := args["scheme"].(string)
	if scheme == "" {
		return "", "", nil, errors.New("either provider or scheme is required")
	}
	raw := make(map[string]string, len(params))
	for k, v := range params {
		raw[k] = fmt.Sprint(v)
	}
	return scheme, action, query.FromMap(raw), nil
}

func (s *Server) handleBuildURL(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (BuildResponse, error) {
	scheme, action, params, err := s.target(args)
	if err != nil {
		return BuildResponse{}, err
	}
	u, err := s.manager.BuildURL(&domain.Request{Scheme: scheme, Action: action, Params: params})
	if err != nil {
		return BuildResponse{}, err
	}
	return BuildResponse{URL: u.String()}, nil
}

func (s *Server) handlePerform(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (PerformResponse, error) {
	scheme, action, params, err := s.target(args)
	if err != nil {
		return PerformResponse{}, err
	}
	client := &xcallback.Client{Scheme: scheme, Manager: s.manager}

	if wait, ok := args["wait"].(bool); ok && !wait {
		if err := client.Perform(ctx, action, params, nil); err != nil {
			return PerformResponse{}, fmt.Errorf("perform failed: %w", err)
		}
		return PerformResponse{Outcome: "sent"}, nil
	}

	timeout := s.timeout
	if secs, ok := args["timeout_seconds"].(float64); ok && secs > 0 {
		timeout = time.Duration(secs * float64(time.Second))
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reply, err := client.Call(ctx, action, params)
	if err != nil {
		var perr *domain.Error
		if errors.As(err, &perr) {
			return PerformResponse{Outcome: domain.KindFailure.String(), Error: perr}, nil
		}
		s.logger.Warn("MCP perform_action failed", "scheme", scheme, "action", action, "err", err)
		return PerformResponse{}, fmt.Errorf("perform failed: %w", err)
	}
	if reply.Cancelled {
		return PerformResponse{Outcome: domain.KindCancelled.String()}, nil
	}
	return PerformResponse{Outcome: domain.KindSuccess.String(), Data: reply.Data}, nil
}

func (s *Server) handleListProviders(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ProvidersResponse, error) {
	return ProvidersResponse{Providers: s.catalog.List()}, nil
}

type pendingEntry struct {
	ID     string `json:"id"`
	Scheme string `json:"scheme"`
	Action string `json:"action"`
}

func (s *Server) pendingJSON() ([]byte, error) {
	table := s.manager.Pending()
	entries := []pendingEntry{}
	for _, id := range table.IDs() {
		if req, ok := table.Get(id); ok {
			entries = append(entries, pendingEntry{ID: req.ID, Scheme: req.Scheme, Action: req.Action})
		}
	}
	return json.Marshal(entries)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(PendingURI, "Pending Requests",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := s.pendingJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to list pending requests: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      PendingURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
