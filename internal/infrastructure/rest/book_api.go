package rest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/openshelf/libctl/internal/core/domain"
	"github.com/openshelf/libctl/internal/core/ports"
)

var _ ports.BookAPI = (*Client)(nil)

// pageEnvelope mirrors the service's pagination wrapper.
type pageEnvelope[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

type bookRequest struct {
	Name          string `json:"name"`
	ISBN          string `json:"isbn"`
	Author        string `json:"author"`
	Publisher     string `json:"publisher"`
	NumberOfPages int    `json:"numberOfPages"`
	Quantity      int    `json:"quantity"`
	Genre         string `json:"genre"`
}

func bookRequestFrom(input ports.BookInput) bookRequest {
	return bookRequest{
		Name:          input.Name,
		ISBN:          input.ISBN,
		Author:        input.Author,
		Publisher:     input.Publisher,
		NumberOfPages: input.NumberOfPages,
		Quantity:      input.Quantity,
		Genre:         input.Genre,
	}
}

func pageQuery(page ports.PageRequest) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page.Page))
	q.Set("size", strconv.Itoa(page.Size))
	return q
}

func (c *Client) ListBooks(ctx context.Context, page ports.PageRequest) (*ports.BookPage, error) {
	var envelope pageEnvelope[domain.Book]
	if err := c.get(ctx, "/books", pageQuery(page), &envelope); err != nil {
		return nil, err
	}
	return bookPageFrom(envelope), nil
}

func (c *Client) SearchBooks(ctx context.Context, input ports.SearchBooksInput) (*ports.BookPage, error) {
	q := pageQuery(input.PageRequest)
	if input.Title != "" {
		q.Set("title", input.Title)
	}
	if input.Author != "" {
		q.Set("author", input.Author)
	}
	if input.ISBN != "" {
		q.Set("isbn", input.ISBN)
	}
	if input.Genre != "" {
		q.Set("genre", input.Genre)
	}

	var envelope pageEnvelope[domain.Book]
	if err := c.get(ctx, "/books/search", q, &envelope); err != nil {
		return nil, err
	}
	return bookPageFrom(envelope), nil
}

func (c *Client) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	var book domain.Book
	if err := c.get(ctx, "/books/"+id, nil, &book); err != nil {
		return nil, mapStatus(err, http.StatusNotFound, domain.ErrBookNotFound)
	}
	return &book, nil
}

func (c *Client) GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	var book domain.Book
	if err := c.get(ctx, "/books/isbn/"+isbn, nil, &book); err != nil {
		return nil, mapStatus(err, http.StatusNotFound, domain.ErrBookNotFound)
	}
	return &book, nil
}

func (c *Client) CreateBook(ctx context.Context, input ports.BookInput) (*domain.Book, error) {
	var book domain.Book
	if err := c.post(ctx, "/books", nil, bookRequestFrom(input), &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *Client) UpdateBook(ctx context.Context, id string, input ports.BookInput) (*domain.Book, error) {
	var book domain.Book
	if err := c.put(ctx, "/books/"+id, bookRequestFrom(input), &book); err != nil {
		return nil, mapStatus(err, http.StatusNotFound, domain.ErrBookNotFound)
	}
	return &book, nil
}

func (c *Client) UpdateAvailableQuantity(ctx context.Context, id string, availableQuantity int) (*domain.Book, error) {
	payload := struct {
		AvailableQuantity int `json:"availableQuantity"`
	}{AvailableQuantity: availableQuantity}

	var book domain.Book
	if err := c.put(ctx, "/books/"+id+"/available-quantity", payload, &book); err != nil {
		return nil, mapStatus(err, http.StatusNotFound, domain.ErrBookNotFound)
	}
	return &book, nil
}

func (c *Client) DeleteBook(ctx context.Context, id string) error {
	return mapStatus(c.delete(ctx, "/books/"+id), http.StatusNotFound, domain.ErrBookNotFound)
}

func (c *Client) BookGenres(ctx context.Context) ([]string, error) {
	var genres []string
	if err := c.get(ctx, "/enums/book-genres", nil, &genres); err != nil {
		return nil, err
	}
	return genres, nil
}

func bookPageFrom(envelope pageEnvelope[domain.Book]) *ports.BookPage {
	return &ports.BookPage{
		Content:       envelope.Content,
		TotalElements: envelope.TotalElements,
		TotalPages:    envelope.TotalPages,
		First:         envelope.First,
		Last:          envelope.Last,
	}
}
