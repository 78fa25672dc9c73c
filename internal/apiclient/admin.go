package apiclient

import (
	"context"
	"net/http"

	"github.com/bookverse/bookverse/internal/models"
	"github.com/bookverse/bookverse/internal/normalize"
)

// AdminResource is CRUD over an admin-privileged collection
type AdminResource[T any] struct {
	c    *Client
	path string
}

// List lists the collection
func (r AdminResource[T]) List(ctx context.Context, q ListQuery) (normalize.Result[T], error) {
	return listOf[T](ctx, r.c, r.path, q.values(r.c.pageSize))
}

// Create creates an entity
func (r AdminResource[T]) Create(ctx context.Context, v T) (T, error) {
	var out T
	err := r.c.do(ctx, http.MethodPost, r.path, nil, v, &out)
	return out, err
}

// Update replaces an entity
func (r AdminResource[T]) Update(ctx context.Context, id models.ID, v T) (T, error) {
	var out T
	err := r.c.do(ctx, http.MethodPut, r.path+"/"+escape(id.String()), nil, v, &out)
	return out, err
}

// Delete removes an entity
func (r AdminResource[T]) Delete(ctx context.Context, id models.ID) error {
	return r.c.do(ctx, http.MethodDelete, r.path+"/"+escape(id.String()), nil, nil, nil)
}

// AdminBooks manages the book catalog
func (c *Client) AdminBooks() AdminResource[models.Book] {
	return AdminResource[models.Book]{c: c, path: "/admin/books"}
}

// AdminAuthors manages authors
func (c *Client) AdminAuthors() AdminResource[models.Author] {
	return AdminResource[models.Author]{c: c, path: "/admin/authors"}
}

// AdminGenres manages genres
func (c *Client) AdminGenres() AdminResource[models.Genre] {
	return AdminResource[models.Genre]{c: c, path: "/admin/genres"}
}

// AdminUsers manages user accounts
func (c *Client) AdminUsers() AdminResource[models.User] {
	return AdminResource[models.User]{c: c, path: "/admin/users"}
}

// AdminReviews moderates reviews
func (c *Client) AdminReviews() AdminResource[models.Review] {
	return AdminResource[models.Review]{c: c, path: "/admin/reviews"}
}

// AdminQuotes moderates quotes
func (c *Client) AdminQuotes() AdminResource[models.Quote] {
	return AdminResource[models.Quote]{c: c, path: "/admin/quotes"}
}
