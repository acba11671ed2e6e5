package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Akul0725/sqlchat/pkg/adapters/datasource"
)

// Database host modes reported by the health tool.
const (
	databaseHostsAny       = "any"
	databaseHostsAllowlist = "allowlist"
)

// HealthInfo is what the health tool reports about this server.
type HealthInfo struct {
	Version string
	Model   string
	Hosts   *datasource.HostPolicy
}

type healthResult struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Model         string `json:"model,omitempty"`
	DatabaseHosts string `json:"database_hosts"`
}

// RegisterHealthTool adds the health tool. Besides liveness it tells a client
// which model answers questions and whether ask_database accepts any host.
func RegisterHealthTool(s *server.MCPServer, info HealthInfo) {
	result := healthResult{
		Status:        "ok",
		Version:       info.Version,
		Model:         info.Model,
		DatabaseHosts: databaseHostsAny,
	}
	if info.Hosts.Restricted() {
		result.DatabaseHosts = databaseHostsAllowlist
	}

	tool := mcp.NewTool(
		"health",
		mcp.WithDescription("Reports sqlchat status, the answering model and whether database hosts are restricted"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal health result: %w", err)
		}
		return mcp.NewToolResultText(string(payload)), nil
	})
}
