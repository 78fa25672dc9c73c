package apiclient

import (
	"context"
	"net/http"

	"github.com/bookverse/bookverse/internal/models"
)

// ListShelves fetches the current user's shelves
func (c *Client) ListShelves(ctx context.Context) ([]models.Shelf, error) {
	res, err := listOf[models.Shelf](ctx, c, "/shelves", nil)
	return res.Items, err
}

// CreateShelf creates a user shelf
func (c *Client) CreateShelf(ctx context.Context, name string) (models.Shelf, error) {
	var out models.Shelf
	err := c.do(ctx, http.MethodPost, "/shelves", nil, map[string]string{"name": name}, &out)
	return out, err
}

// AddToShelf puts a book on a shelf
func (c *Client) AddToShelf(ctx context.Context, shelfID, bookID models.ID) error {
	body := map[string]string{"bookId": bookID.String()}
	return c.do(ctx, http.MethodPost, "/shelves/"+escape(shelfID.String())+"/books", nil, body, nil)
}

// RemoveFromShelf takes a book off a shelf
func (c *Client) RemoveFromShelf(ctx context.Context, shelfID, bookID models.ID) error {
	path := "/shelves/" + escape(shelfID.String()) + "/books/" + escape(bookID.String())
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
