package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	sdkerrors "github.com/readmill/readmill-api/client/internal/errors"
	"github.com/readmill/readmill-api/client/internal/types"
)

// CreateRead starts a read of bookID. Whether a second read of the same book
// is rejected or answered with the existing read is up to the server.
func CreateRead(ctx context.Context, ep Endpoint, bookID types.BookID, req types.CreateReadRequest) (*types.Read, error) {
	const op = "create read"
	if err := types.ValidateReadState(req.State); err != nil {
		return nil, sdkerrors.NewValidationError(op, err.Error())
	}
	var read types.Read
	err := ep.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   fmt.Sprintf("/books/%s/reads", bookID),
		body:   req,
		accept: statusCreated,
		check:  func() error { return read.Validate() },
	}, &read)
	if err != nil {
		return nil, err
	}
	return &read, nil
}

// UpdateRead replaces state, privacy and closing remark of a read. State
// transitions are not policed here; the server may refuse them.
func UpdateRead(ctx context.Context, ep Endpoint, readID types.ReadID, req types.UpdateReadRequest) (*types.Read, error) {
	const op = "update read"
	if err := types.ValidateReadState(req.State); err != nil {
		return nil, sdkerrors.NewValidationError(op, err.Error())
	}
	var read types.Read
	err := ep.do(ctx, call{
		op:     op,
		method: http.MethodPut,
		path:   fmt.Sprintf("/reads/%s", readID),
		body:   req,
		check:  func() error { return read.Validate() },
	}, &read)
	if err != nil {
		return nil, err
	}
	return &read, nil
}

// PublicReadsForUser lists the non-private reads of a user.
func PublicReadsForUser(ctx context.Context, ep Endpoint, userID types.UserID) ([]types.Read, error) {
	return listReads(ctx, ep, "list public reads for user", fmt.Sprintf("/users/%s/reads", userID))
}

// PublicReadsForUsername lists the non-private reads of a user by username.
func PublicReadsForUsername(ctx context.Context, ep Endpoint, username string) ([]types.Read, error) {
	return listReads(ctx, ep, "list public reads for username", "/users/by-username/"+url.PathEscape(username)+"/reads")
}

func listReads(ctx context.Context, ep Endpoint, op, path string) ([]types.Read, error) {
	var reads []types.Read
	err := ep.do(ctx, call{op: op, method: http.MethodGet, path: path, check: func() error {
		for _, r := range reads {
			if err := r.Validate(); err != nil {
				return err
			}
		}
		return nil
	}}, &reads)
	if err != nil {
		return nil, err
	}
	return nonNil(reads), nil
}
