package handlers

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/readmill/readmill-api/client"
)

const stateDescription = "One of interesting, reading, finished, abandoned (or 1-4)"

// ReadHandler exposes tools for a user's reads.
type ReadHandler struct {
	client *client.Client
}

func NewReadHandler(c *client.Client) *ReadHandler {
	return &ReadHandler{client: c}
}

// RegisterTools registers create_read, update_read and list_public_reads.
func (rh *ReadHandler) RegisterTools(s *server.MCPServer) error {
	s.AddTool(mcp.NewTool("create_read",
		mcp.WithDescription("Start a read of a book for the authenticated user"),
		mcp.WithNumber("book_id", mcp.Required(), mcp.Description("The book's numeric id")),
		mcp.WithString("state", mcp.Required(), mcp.Description(stateDescription)),
		mcp.WithBoolean("private", mcp.Description("Hide the read from public listings")),
	), rh.handleCreateRead)

	s.AddTool(mcp.NewTool("update_read",
		mcp.WithDescription("Replace a read's state, privacy flag and closing remark. Omitted fields are reset."),
		mcp.WithNumber("read_id", mcp.Required(), mcp.Description("The read's numeric id")),
		mcp.WithString("state", mcp.Required(), mcp.Description(stateDescription)),
		mcp.WithBoolean("private", mcp.Description("Hide the read from public listings")),
		mcp.WithString("closing_remark", mcp.Description("Closing remark, usually for finished or abandoned reads")),
	), rh.handleUpdateRead)

	s.AddTool(mcp.NewTool("list_public_reads",
		mcp.WithDescription("List a user's public reads by user id or username"),
		mcp.WithNumber("user_id", mcp.Description("The user's numeric id")),
		mcp.WithString("username", mcp.Description("The user's username")),
	), rh.handleListPublicReads)
	return nil
}

func (rh *ReadHandler) handleCreateRead(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bookID, err := requireID(req, "book_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	state, err := parseStateArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	read, err := rh.client.CreateRead(ctx, client.BookID(bookID), client.CreateReadRequest{
		State:         state,
		Private:       req.GetBool("private", false),
		ApplicationID: "readmill-mcp",
	})
	if err != nil {
		log.Error().Err(err).Uint64("book_id", bookID).Msg("create_read failed")
		return toolError("create read", err), nil
	}
	return jsonResult(read)
}

func (rh *ReadHandler) handleUpdateRead(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	readID, err := requireID(req, "read_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	state, err := parseStateArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	read, err := rh.client.UpdateRead(ctx, client.ReadID(readID), client.UpdateReadRequest{
		State:         state,
		Private:       req.GetBool("private", false),
		ClosingRemark: req.GetString("closing_remark", ""),
	})
	if err != nil {
		log.Error().Err(err).Uint64("read_id", readID).Msg("update_read failed")
		return toolError("update read", err), nil
	}
	return jsonResult(read)
}

func (rh *ReadHandler) handleListPublicReads(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := optionalID(req, "user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	username := req.GetString("username", "")
	if (userID == 0) == (username == "") {
		return mcp.NewToolResultError("exactly one of user_id or username is required"), nil
	}

	var reads []client.Read
	if username != "" {
		reads, err = rh.client.PublicReadsForUsername(ctx, username)
	} else {
		reads, err = rh.client.PublicReadsForUser(ctx, client.UserID(userID))
	}
	if err != nil {
		log.Error().Err(err).Msg("list_public_reads failed")
		return toolError("list public reads", err), nil
	}
	return jsonResult(reads)
}

func parseStateArg(req mcp.CallToolRequest) (client.ReadState, error) {
	raw, err := req.RequireString("state")
	if err != nil {
		return 0, err
	}
	return client.ParseReadState(raw)
}
