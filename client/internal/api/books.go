package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/readmill/readmill-api/client/internal/types"
)

// ListBooks returns every book the server exposes, in server order.
func ListBooks(ctx context.Context, ep Endpoint) ([]types.Book, error) {
	var books []types.Book
	err := ep.do(ctx, call{op: "list books", method: http.MethodGet, path: "/books"}, &books)
	if err != nil {
		return nil, err
	}
	return nonNil(books), nil
}

// SearchBooksByTitle returns books whose title matches; matching is the
// server's business.
func SearchBooksByTitle(ctx context.Context, ep Endpoint, title string) ([]types.Book, error) {
	return searchBooks(ctx, ep, "search books by title", url.Values{"title": {title}})
}

// SearchBooksByISBN returns books with the given ISBN. No match is an empty
// slice, not an error.
func SearchBooksByISBN(ctx context.Context, ep Endpoint, isbn string) ([]types.Book, error) {
	return searchBooks(ctx, ep, "search books by isbn", url.Values{"isbn": {isbn}})
}

func searchBooks(ctx context.Context, ep Endpoint, op string, q url.Values) ([]types.Book, error) {
	var books []types.Book
	err := ep.do(ctx, call{op: op, method: http.MethodGet, path: "/books", query: q}, &books)
	if err != nil {
		return nil, err
	}
	return nonNil(books), nil
}

// AddBook registers a book. The returned book may be a pre-existing one when
// the server deduplicates by ISBN.
func AddBook(ctx context.Context, ep Endpoint, req types.AddBookRequest) (*types.Book, error) {
	var book types.Book
	err := ep.do(ctx, call{
		op:     "add book",
		method: http.MethodPost,
		path:   "/books",
		body:   req,
		accept: statusCreated,
	}, &book)
	if err != nil {
		return nil, err
	}
	return &book, nil
}
