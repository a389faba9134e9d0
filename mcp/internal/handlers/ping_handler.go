package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/readmill/readmill-api/client"
)

// PingHandler exposes progress reporting.
type PingHandler struct {
	client *client.Client
}

func NewPingHandler(c *client.Client) *PingHandler {
	return &PingHandler{client: c}
}

// RegisterTools registers ping_read.
func (ph *PingHandler) RegisterTools(s *server.MCPServer) error {
	s.AddTool(mcp.NewTool("ping_read",
		mcp.WithDescription("Report reading progress on a read. Progress must be 1-100."),
		mcp.WithNumber("read_id", mcp.Required(), mcp.Description("The read's numeric id")),
		mcp.WithNumber("progress", mcp.Required(), mcp.Description("Percent complete, 1-100")),
		mcp.WithNumber("duration_seconds", mcp.Description("Seconds spent reading since the previous ping")),
		mcp.WithString("identifier", mcp.Description("Reading session id; a new one is generated when omitted")),
		mcp.WithString("occurred_at", mcp.Description("RFC3339 time the reading happened; defaults to now")),
	), ph.handlePing)
	return nil
}

func (ph *PingHandler) handlePing(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	readID, err := requireID(req, "read_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	progress, err := req.RequireFloat("progress")
	if err != nil {
		return mcp.NewToolResultError("progress parameter is required"), nil
	}

	at := time.Now()
	if raw := req.GetString("occurred_at", ""); raw != "" {
		at, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("occurred_at must be RFC3339: %v", err)), nil
		}
	}
	identifier := req.GetString("identifier", "")
	if identifier == "" {
		identifier = client.NewSessionID()
	}

	ping, err := ph.client.PingRead(ctx, client.ReadID(readID), client.PingRequest{
		Progress:   int(progress),
		Identifier: identifier,
		Duration:   time.Duration(req.GetFloat("duration_seconds", 0) * float64(time.Second)),
		OccurredAt: at,
	})
	if err != nil {
		log.Error().Err(err).Uint64("read_id", readID).Msg("ping_read failed")
		return toolError("ping read", err), nil
	}
	log.Debug().Uint64("read_id", readID).Int("progress", ping.Progress).Msg("ping_read completed")
	return jsonResult(ping)
}
