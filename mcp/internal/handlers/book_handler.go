package handlers

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/readmill/readmill-api/client"
)

// BookHandler exposes the book catalogue tools.
type BookHandler struct {
	client *client.Client
}

func NewBookHandler(c *client.Client) *BookHandler {
	return &BookHandler{client: c}
}

// RegisterTools registers list_books, search_books and add_book.
func (bh *BookHandler) RegisterTools(s *server.MCPServer) error {
	s.AddTool(mcp.NewTool("list_books",
		mcp.WithDescription("List every book known to Readmill"),
	), bh.handleListBooks)

	s.AddTool(mcp.NewTool("search_books",
		mcp.WithDescription("Search books by title or by ISBN. Exactly one of title or isbn must be given. No match returns an empty list."),
		mcp.WithString("title", mcp.Description("Title (or part of it) to search for")),
		mcp.WithString("isbn", mcp.Description("ISBN to search for")),
	), bh.handleSearchBooks)

	s.AddTool(mcp.NewTool("add_book",
		mcp.WithDescription("Add a book. If a book with the same ISBN exists, that book is returned instead."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Book title")),
		mcp.WithString("author", mcp.Description("Author name")),
		mcp.WithString("isbn", mcp.Description("ISBN")),
	), bh.handleAddBook)
	return nil
}

func (bh *BookHandler) handleListBooks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	books, err := bh.client.ListBooks(ctx)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("list_books failed")
		return toolError("list books", err), nil
	}
	log.Debug().Int("count", len(books)).Dur("elapsed", time.Since(start)).Msg("list_books completed")
	return jsonResult(books)
}

func (bh *BookHandler) handleSearchBooks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	_, hasISBN := args["isbn"]
	_, hasTitle := args["title"]
	if hasISBN == hasTitle {
		return mcp.NewToolResultError("exactly one of title or isbn is required"), nil
	}

	var (
		books []client.Book
		err   error
	)
	if hasISBN {
		books, err = bh.client.SearchBooksByISBN(ctx, req.GetString("isbn", ""))
	} else {
		books, err = bh.client.SearchBooksByTitle(ctx, req.GetString("title", ""))
	}
	if err != nil {
		log.Error().Err(err).Msg("search_books failed")
		return toolError("search books", err), nil
	}
	return jsonResult(books)
}

func (bh *BookHandler) handleAddBook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title parameter is required"), nil
	}
	book, err := bh.client.AddBook(ctx, client.AddBookRequest{
		Title:  title,
		Author: req.GetString("author", ""),
		ISBN:   req.GetString("isbn", ""),
	})
	if err != nil {
		log.Error().Err(err).Str("title", title).Msg("add_book failed")
		return toolError("add book", err), nil
	}
	log.Debug().Stringer("book_id", book.ID).Msg("add_book completed")
	return jsonResult(book)
}
