package handlers

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/readmill/readmill-api/client"
)

// UserHandler provides read-only user lookups.
type UserHandler struct {
	client *client.Client
}

// NewUserHandler creates a new user handler instance.
func NewUserHandler(c *client.Client) *UserHandler {
	return &UserHandler{client: c}
}

// RegisterTools registers get_user.
func (uh *UserHandler) RegisterTools(s *server.MCPServer) error {
	getUserTool := mcp.NewTool("get_user",
		mcp.WithDescription("Get a Readmill user's public profile by id or username"),
		mcp.WithNumber("user_id", mcp.Description("The user's numeric id")),
		mcp.WithString("username", mcp.Description("The user's username")),
	)
	s.AddTool(getUserTool, uh.handleGetUser)
	return nil
}

func (uh *UserHandler) handleGetUser(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := optionalID(request, "user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	username := request.GetString("username", "")
	if (userID == 0) == (username == "") {
		return mcp.NewToolResultError("exactly one of user_id or username is required"), nil
	}

	log.Debug().
		Uint64("user_id", userID).
		Str("username", username).
		Msg("handling get_user request")

	start := time.Now()
	var user *client.User
	if username != "" {
		user, err = uh.client.UserByUsername(ctx, username)
	} else {
		user, err = uh.client.User(ctx, client.UserID(userID))
	}
	elapsed := time.Since(start)

	if err != nil {
		log.Error().
			Err(err).
			Uint64("user_id", userID).
			Str("username", username).
			Dur("elapsed", elapsed).
			Msg("get_user failed")
		return toolError("get user", err), nil
	}

	log.Debug().
		Stringer("user_id", user.ID).
		Str("username", user.Username).
		Dur("elapsed", elapsed).
		Msg("get_user completed")
	return jsonResult(user)
}
