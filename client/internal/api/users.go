package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/readmill/readmill-api/client/internal/types"
)

// GetUser retrieves a user by ID. An unknown id is a ServerRejected 404.
func GetUser(ctx context.Context, ep Endpoint, userID types.UserID) (*types.User, error) {
	return getUser(ctx, ep, "get user", fmt.Sprintf("/users/%s", userID))
}

// GetUserByUsername retrieves a user by username.
func GetUserByUsername(ctx context.Context, ep Endpoint, username string) (*types.User, error) {
	return getUser(ctx, ep, "get user by username", "/users/by-username/"+url.PathEscape(username))
}

func getUser(ctx context.Context, ep Endpoint, op, path string) (*types.User, error) {
	var user types.User
	if err := ep.do(ctx, call{op: op, method: http.MethodGet, path: path}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
