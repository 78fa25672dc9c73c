package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bookverse/bookverse/internal/localstate"
	"github.com/bookverse/bookverse/internal/models"
	"github.com/bookverse/bookverse/internal/store"
	"github.com/bookverse/bookverse/pkg/logging"
)

// blobPrefix marks object URLs that only live as long as the page that
// created them.
const blobPrefix = "blob:"

// Cache persists the social feed between sessions
type Cache struct {
	state  *localstate.State
	logger *zap.Logger
}

// NewCache creates a feed cache over the client state
func NewCache(state *localstate.State) *Cache {
	return &Cache{
		state:  state,
		logger: logging.WithComponent("feed-cache"),
	}
}

// Save writes posts to the cache with blob URLs removed
func (c *Cache) Save(ctx context.Context, posts []models.Post) error {
	return c.state.WriteJSON(ctx, localstate.KeySocialPosts, StripBlobURLs(posts))
}

// Load reads the cached feed. Linked quote/review ids that were stored as
// anything other than a plain string are coerced to strings, and the
// cache is rewritten once so the fix is not repeated.
func (c *Cache) Load(ctx context.Context) ([]models.Post, error) {
	raw, err := c.state.KV().Get(ctx, localstate.KeySocialPosts)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load feed cache: %w", err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		c.logger.Warn("Discarding unreadable feed cache", zap.Error(err))
		return nil, c.state.Remove(ctx, localstate.KeySocialPosts)
	}

	posts := make([]models.Post, 0, len(records))
	dirty := false
	for i, record := range records {
		var post models.Post
		if err := json.Unmarshal(record, &post); err != nil {
			c.logger.Warn("Dropping unreadable cached post", zap.Int("index", i), zap.Error(err))
			dirty = true
			continue
		}
		if needsIDCoercion(record) {
			dirty = true
		}
		if post.Comments == nil {
			post.Comments = []models.Comment{}
		}
		posts = append(posts, post)
	}

	if dirty {
		c.logger.Info("Rewriting feed cache after id coercion", zap.Int("posts", len(posts)))
		if err := c.Save(ctx, posts); err != nil {
			c.logger.Warn("Failed to rewrite feed cache", zap.Error(err))
		}
	}
	return posts, nil
}

// needsIDCoercion reports whether a stored post carries a quote or review
// id that is not a plain JSON string.
func needsIDCoercion(record json.RawMessage) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(record, &fields); err != nil {
		return false
	}
	for key, value := range fields {
		switch strings.ToLower(key) {
		case "quoteid", "reviewid":
			v := bytes.TrimSpace(value)
			if len(v) > 0 && v[0] != '"' && !bytes.Equal(v, []byte("null")) {
				return true
			}
		}
	}
	return false
}

// StripBlobURLs returns copies of posts with every blob: image reference
// cleared.
func StripBlobURLs(posts []models.Post) []models.Post {
	out := make([]models.Post, len(posts))
	for i, p := range posts {
		p = p.Clone()
		p.UserAvatar = dropBlob(p.UserAvatar)
		p.BookCover = dropBlob(p.BookCover)
		p.ImageURL = dropBlob(p.ImageURL)
		for j := range p.Comments {
			p.Comments[j].UserAvatar = dropBlob(p.Comments[j].UserAvatar)
		}
		out[i] = p
	}
	return out
}

func dropBlob(u string) string {
	if strings.HasPrefix(u, blobPrefix) {
		return ""
	}
	return u
}
