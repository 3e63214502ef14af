// Package mcpserver exposes a mathlink Client as Model Context Protocol
// tools, so agents can call the kernel.
package mcpserver

import (
	"context"
	"errors"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/njchilds90/mathlink"
)

// Server wraps the Client. Tool calls are serialized because the kernel
// answers one request at a time.
type Server struct {
	client    *mathlink.Client
	mcpServer *server.MCPServer
	mu        sync.Mutex
}

func NewServer(client *mathlink.Client) *Server {
	s := &Server{
		client:    client,
		mcpServer: server.NewMCPServer("mathlink-mcp", mathlink.Version, server.WithToolCapabilities(false)),
	}
	s.registerTools()
	return s
}

// ServeStdio serves on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	expr := func(name, desc string, opts ...mcp.PropertyOption) mcp.ToolOption {
		return mcp.WithObject(name, append(opts, mcp.Description(desc))...)
	}

	s.add(mcp.NewTool("evaluate",
		mcp.WithDescription("Evaluate in the Wolfram kernel. Give text (FullForm, reply is FullForm) or expr (expression object, reply is decoded)."),
		mcp.WithString("text", mcp.Description("FullForm input, e.g. Integrate[x, x]")),
		expr("expr", "Expression object: {type: sym|num|add|mul|pow|func|tuple|const|complex, ...}"),
	))
	s.add(mcp.NewTool("call",
		mcp.WithDescription("Apply a kernel function by name to expression arguments, e.g. name=D args=[sin(x), x]."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Wolfram function name such as Integrate, D, Sum")),
		mcp.WithArray("args", mcp.Description("Expression objects"), mcp.Items(map[string]any{"type": "object"})),
	))
	s.add(mcp.NewTool("fullform",
		mcp.WithDescription("Encode an expression as Wolfram FullForm text without contacting the kernel."),
		expr("expr", "Expression object", mcp.Required()),
	))
	s.add(mcp.NewTool("parse",
		mcp.WithDescription("Decode Wolfram FullForm text into an expression."),
		mcp.WithString("text", mcp.Required(), mcp.Description("FullForm text")),
	))
	s.add(mcp.NewTool("simplify",
		mcp.WithDescription("Simplify an expression locally."),
		expr("expr", "Expression object", mcp.Required()),
	))
	s.add(mcp.NewTool("substitute",
		mcp.WithDescription("Substitute var with value in expr."),
		expr("expr", "Expression object", mcp.Required()),
		mcp.WithString("var", mcp.Required(), mcp.Description("Symbol name")),
		expr("value", "Replacement expression", mcp.Required()),
	))
}

func (s *Server) add(tool mcp.Tool) {
	mcp.WithOutputSchema[mathlink.ToolResponse]()(&tool)
	s.mcpServer.AddTool(tool, mcp.NewStructuredToolHandler(s.handler(tool.Name)))
}

// handler routes an MCP call to the tool of the same name.
func (s *Server) handler(name string) mcp.StructuredToolHandlerFunc[map[string]interface{}, mathlink.ToolResponse] {
	return func(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (mathlink.ToolResponse, error) {
		s.mu.Lock()
		resp := s.client.HandleToolCall(ctx, mathlink.ToolRequest{Tool: name, Params: args})
		s.mu.Unlock()
		if resp.Error != "" {
			return mathlink.ToolResponse{}, errors.New(resp.Error)
		}
		return resp, nil
	}
}
