package handlers

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readmill/readmill-api/client"
	"github.com/readmill/readmill-api/client/readmilltest"
)

func newSDK(t *testing.T) (*client.Client, *readmilltest.Server) {
	t.Helper()
	srv := readmilltest.New()
	t.Cleanup(srv.Close)
	sdk, err := client.NewWithDevMode(srv.URL)
	require.NoError(t, err)
	return sdk, srv
}

func callReq(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", res.Content[0])
	return tc.Text
}

func TestRegisterTools(t *testing.T) {
	sdk, _ := newSDK(t)
	s := server.NewMCPServer("test", "0.0.0", server.WithToolCapabilities(true))
	for _, h := range []interface {
		RegisterTools(*server.MCPServer) error
	}{NewBookHandler(sdk), NewReadHandler(sdk), NewPingHandler(sdk), NewUserHandler(sdk)} {
		require.NoError(t, h.RegisterTools(s))
	}
}

func TestBookTools(t *testing.T) {
	ctx := context.Background()
	sdk, srv := newSDK(t)
	bh := NewBookHandler(sdk)

	res, err := bh.handleAddBook(ctx, callReq(map[string]any{"title": "Dune", "isbn": "9780441013593"}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	var book client.Book
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &book))
	assert.Equal(t, "Dune", book.Title)

	res, err = bh.handleSearchBooks(ctx, callReq(map[string]any{"isbn": "0000"}))
	require.NoError(t, err)
	assert.Equal(t, "[]", resultText(t, res))

	res, err = bh.handleSearchBooks(ctx, callReq(map[string]any{"title": "du"}))
	require.NoError(t, err)
	var found []client.Book
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &found))
	assert.Len(t, found, 1)

	res, _ = bh.handleSearchBooks(ctx, callReq(map[string]any{}))
	assert.True(t, res.IsError)

	res, _ = bh.handleListBooks(ctx, callReq(nil))
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &found))
	assert.Len(t, found, 1)
	assert.EqualValues(t, 4, srv.Requests())
}

func TestReadAndPingTools(t *testing.T) {
	ctx := context.Background()
	sdk, srv := newSDK(t)
	book := srv.AddBook(client.Book{Title: "Emma"})
	rh := NewReadHandler(sdk)
	ph := NewPingHandler(sdk)

	res, err := rh.handleCreateRead(ctx, callReq(map[string]any{"book_id": float64(book.ID), "state": "reading"}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	var rd client.Read
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &rd))
	assert.Equal(t, client.ReadStateReading, rd.State)

	res, _ = rh.handleUpdateRead(ctx, callReq(map[string]any{
		"read_id":        float64(rd.ID),
		"state":          "finished",
		"closing_remark": "Lovely.",
	}))
	require.False(t, res.IsError, resultText(t, res))
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &rd))
	assert.Equal(t, "Lovely.", rd.ClosingRemark)

	res, _ = ph.handlePing(ctx, callReq(map[string]any{
		"read_id":          float64(rd.ID),
		"progress":         float64(100),
		"duration_seconds": float64(60),
		"occurred_at":      "2012-06-01T10:00:00+02:00",
	}))
	require.False(t, res.IsError, resultText(t, res))
	pings := srv.Pings(rd.ID)
	require.Len(t, pings, 1)
	assert.EqualValues(t, 60, pings[0].Seconds)
	assert.NotEmpty(t, pings[0].Identifier)

	me := srv.DevUser()
	res, _ = rh.handleListPublicReads(ctx, callReq(map[string]any{"username": me.Username}))
	var reads []client.Read
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &reads))
	assert.Len(t, reads, 1)
}

func TestToolErrorsCarryKind(t *testing.T) {
	ctx := context.Background()
	sdk, srv := newSDK(t)

	res, _ := NewPingHandler(sdk).handlePing(ctx, callReq(map[string]any{"read_id": float64(1), "progress": float64(0)}))
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Validation")
	assert.Zero(t, srv.Requests())

	res, _ = NewUserHandler(sdk).handleGetUser(ctx, callReq(map[string]any{"username": "ghost"}))
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "ServerRejected")

	res, _ = NewReadHandler(sdk).handleCreateRead(ctx, callReq(map[string]any{"book_id": float64(1), "state": "skimming"}))
	assert.True(t, res.IsError)

	res, _ = NewReadHandler(sdk).handleCreateRead(ctx, callReq(map[string]any{"book_id": 1.5, "state": "reading"}))
	assert.True(t, res.IsError)
	assert.True(t, strings.Contains(resultText(t, res), "positive integer"))
}

func TestGetUserTool(t *testing.T) {
	sdk, srv := newSDK(t)
	me := srv.DevUser()

	res, err := NewUserHandler(sdk).handleGetUser(context.Background(), callReq(map[string]any{"user_id": float64(me.ID)}))
	require.NoError(t, err)
	var u client.User
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &u))
	assert.Equal(t, me.Username, u.Username)

	res, _ = NewUserHandler(sdk).handleGetUser(context.Background(), callReq(map[string]any{}))
	assert.True(t, res.IsError)
}
