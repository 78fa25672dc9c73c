package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/bookverse/bookverse/internal/models"
	"github.com/bookverse/bookverse/internal/normalize"
)

// BookQuery filters the book list
type BookQuery struct {
	Search   string
	GenreID  models.ID
	AuthorID models.ID
	Page     int
	PageSize int
}

func (q BookQuery) values(defaultSize int) url.Values {
	size := q.PageSize
	if size <= 0 {
		size = defaultSize
	}
	v := pageQuery(q.Page, size)
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if !q.GenreID.IsZero() {
		v.Set("genreId", q.GenreID.String())
	}
	if !q.AuthorID.IsZero() {
		v.Set("authorId", q.AuthorID.String())
	}
	return v
}

// ListQuery is a paged, optionally filtered list request
type ListQuery struct {
	Search   string
	Page     int
	PageSize int
}

func (q ListQuery) values(defaultSize int) url.Values {
	size := q.PageSize
	if size <= 0 {
		size = defaultSize
	}
	v := pageQuery(q.Page, size)
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}

func listOf[T any](ctx context.Context, c *Client, path string, query url.Values) (normalize.Result[T], error) {
	page, err := c.list(ctx, path, query)
	if err != nil {
		return normalize.Result[T]{}, err
	}
	items, err := normalize.Decode[T](page)
	if err != nil {
		return normalize.Result[T]{}, err
	}
	return normalize.Result[T]{Items: items, TotalCount: page.TotalCount, HasTotal: page.HasTotal}, nil
}

// ListBooks lists catalog books
func (c *Client) ListBooks(ctx context.Context, q BookQuery) (normalize.Result[models.Book], error) {
	return listOf[models.Book](ctx, c, "/books", q.values(c.pageSize))
}

// GetBook fetches one book
func (c *Client) GetBook(ctx context.Context, id models.ID) (models.Book, error) {
	var book models.Book
	err := c.do(ctx, http.MethodGet, "/books/"+escape(id.String()), nil, nil, &book)
	return book, err
}

// TrendingBooks fetches the server's trending list
func (c *Client) TrendingBooks(ctx context.Context, limit int) ([]models.Book, error) {
	res, err := listOf[models.Book](ctx, c, "/books/trending", pageQuery(0, limit))
	return res.Items, err
}

// ListAuthors lists authors
func (c *Client) ListAuthors(ctx context.Context, q ListQuery) (normalize.Result[models.Author], error) {
	return listOf[models.Author](ctx, c, "/authors", q.values(c.pageSize))
}

// ListGenres lists genres
func (c *Client) ListGenres(ctx context.Context, q ListQuery) (normalize.Result[models.Genre], error) {
	return listOf[models.Genre](ctx, c, "/genres", q.values(c.pageSize))
}

// ListUsers lists users
func (c *Client) ListUsers(ctx context.Context, q ListQuery) (normalize.Result[models.User], error) {
	return listOf[models.User](ctx, c, "/users", q.values(c.pageSize))
}

// ListReviews lists reviews, optionally for one book
func (c *Client) ListReviews(ctx context.Context, bookID models.ID, q ListQuery) (normalize.Result[models.Review], error) {
	v := q.values(c.pageSize)
	if !bookID.IsZero() {
		v.Set("bookId", bookID.String())
	}
	return listOf[models.Review](ctx, c, "/reviews", v)
}

// ListQuotes lists quotes, optionally for one book
func (c *Client) ListQuotes(ctx context.Context, bookID models.ID, q ListQuery) (normalize.Result[models.Quote], error) {
	v := q.values(c.pageSize)
	if !bookID.IsZero() {
		v.Set("bookId", bookID.String())
	}
	return listOf[models.Quote](ctx, c, "/quotes", v)
}

// NewReview is the payload for CreateReview
type NewReview struct {
	BookID  models.ID `json:"bookId"`
	Rating  float64   `json:"rating"`
	Content string    `json:"content"`
}

// CreateReview posts a review. A 409 means the user already reviewed the
// book.
func (c *Client) CreateReview(ctx context.Context, r NewReview) (models.Review, error) {
	var out models.Review
	err := c.do(ctx, http.MethodPost, "/reviews", nil, r, &out)
	return out, err
}

// NewQuote is the payload for CreateQuote
type NewQuote struct {
	BookID models.ID `json:"bookId"`
	Text   string    `json:"text"`
}

// CreateQuote shares a quote
func (c *Client) CreateQuote(ctx context.Context, q NewQuote) (models.Quote, error) {
	var out models.Quote
	err := c.do(ctx, http.MethodPost, "/quotes", nil, q, &out)
	return out, err
}
