// Package feed holds the in-memory social feed, its persisted cache, and
// the optimistic mutations users perform on it.
package feed

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bookverse/bookverse/internal/apiclient"
	"github.com/bookverse/bookverse/internal/localstate"
	"github.com/bookverse/bookverse/internal/models"
	"github.com/bookverse/bookverse/pkg/logging"
)

// Local id prefixes for entities the server has not confirmed yet
const (
	localPostPrefix   = "post-"
	tempCommentPrefix = "temp-"
)

var (
	// ErrPostNotFound is returned for operations on an unknown post
	ErrPostNotFound = errors.New("post not found")
	// ErrCommentNotFound is returned when a post has no comment with the given id
	ErrCommentNotFound = errors.New("comment not found")
)

// Remote is the subset of the BookVerse API the feed uses
type Remote interface {
	GetFeed(ctx context.Context, page, pageSize int) ([]models.Post, error)
	CreatePost(ctx context.Context, p apiclient.NewPost) (models.Post, error)
	UpdatePost(ctx context.Context, postID models.ID, content string) error
	DeletePost(ctx context.Context, postID models.ID) error
	CreateReview(ctx context.Context, r apiclient.NewReview) (models.Review, error)
	CreateQuote(ctx context.Context, q apiclient.NewQuote) (models.Quote, error)
	CreateComment(ctx context.Context, postID models.ID, text string) (models.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID models.ID) error
	ToggleQuoteLike(ctx context.Context, quoteID models.ID) (apiclient.LikeState, error)
	UpdateQuote(ctx context.Context, quoteID models.ID, text string) error
}

// Viewer identifies the signed-in user authoring local entities
type Viewer struct {
	Username string
	Avatar   string
}

// Feed is the in-memory social feed. It holds at most one copy of each
// post id.
type Feed struct {
	mu        sync.Mutex
	posts     []models.Post
	lastStamp int64

	remote   Remote
	cache    *Cache
	state    *localstate.State
	viewer   Viewer
	pageSize int
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures a Feed
type Option func(*Feed)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(f *Feed) {
		f.now = now
	}
}

// WithPageSize sets how many posts Refresh requests
func WithPageSize(n int) Option {
	return func(f *Feed) {
		if n > 0 {
			f.pageSize = n
		}
	}
}

// New creates a feed for viewer
func New(remote Remote, state *localstate.State, viewer Viewer, opts ...Option) *Feed {
	f := &Feed{
		remote:   remote,
		cache:    NewCache(state),
		state:    state,
		viewer:   viewer,
		pageSize: 20,
		now:      time.Now,
		logger:   logging.WithComponent("feed"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Cache returns the feed's persisted cache
func (f *Feed) Cache() *Cache {
	return f.cache
}

// Load rehydrates the in-memory feed from the cache
func (f *Feed) Load(ctx context.Context) error {
	cached, err := f.cache.Load(ctx)
	if err != nil {
		return err
	}
	reported, err := f.state.ReportedPosts(ctx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.posts = withoutIDs(Merge(nil, nil, cached), reported)
	f.mu.Unlock()
	return nil
}

// Posts returns a snapshot of the feed
func (f *Feed) Posts() []models.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Post returns a copy of one post
func (f *Feed) Post(id models.ID) (models.Post, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.indexLocked(id); i >= 0 {
		return f.posts[i].Clone(), true
	}
	return models.Post{}, false
}

// Refresh fetches the server feed and merges it with local state. On a
// fetch error the local feed is left as is.
func (f *Feed) Refresh(ctx context.Context) ([]models.Post, error) {
	server, err := f.remote.GetFeed(ctx, 1, f.pageSize)
	if err != nil {
		return f.Posts(), fmt.Errorf("fetch feed: %w", err)
	}
	cached, err := f.cache.Load(ctx)
	if err != nil {
		f.logger.Warn("Feed cache unavailable, merging without it", zap.Error(err))
	}
	reported, err := f.state.ReportedPosts(ctx)
	if err != nil {
		f.logger.Warn("Reported posts unavailable", zap.Error(err))
	}

	f.mu.Lock()
	f.posts = withoutIDs(Merge(server, cached, f.posts), reported)
	snapshot := f.snapshotLocked()
	f.mu.Unlock()

	if err := f.cache.Save(ctx, snapshot); err != nil {
		f.logger.Warn("Failed to save feed cache", zap.Error(err))
	}
	f.logger.Debug("Feed refreshed", zap.Int("server", len(server)), zap.Int("total", len(snapshot)))
	return snapshot, nil
}

// Report hides a post for this user. The server is not told.
func (f *Feed) Report(ctx context.Context, postID models.ID) error {
	if err := f.state.ReportPost(ctx, postID.String()); err != nil {
		return err
	}
	f.mu.Lock()
	f.posts = withoutIDs(f.posts, []string{postID.String()})
	f.mu.Unlock()
	return f.persist(ctx)
}

// ToggleSaved saves or unsaves a post and reports the new state
func (f *Feed) ToggleSaved(ctx context.Context, postID models.ID) (bool, error) {
	return f.state.ToggleSavedPost(ctx, postID.String())
}

func (f *Feed) persist(ctx context.Context) error {
	return f.cache.Save(ctx, f.Posts())
}

func (f *Feed) snapshotLocked() []models.Post {
	out := make([]models.Post, len(f.posts))
	for i := range f.posts {
		out[i] = f.posts[i].Clone()
	}
	return out
}

func (f *Feed) indexLocked(id models.ID) int {
	for i := range f.posts {
		if f.posts[i].ID == id {
			return i
		}
	}
	return -1
}

// withPost runs fn on the post with id under the feed lock
func (f *Feed) withPost(id models.ID, fn func(p *models.Post)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrPostNotFound, id)
	}
	fn(&f.posts[i])
	return nil
}

// nextStamp returns a strictly increasing millisecond timestamp for
// local ids.
func (f *Feed) nextStamp() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	stamp := f.now().UnixMilli()
	if stamp <= f.lastStamp {
		stamp = f.lastStamp + 1
	}
	f.lastStamp = stamp
	return stamp
}

func (f *Feed) timestamp() string {
	return f.now().UTC().Format(time.RFC3339)
}

// IsLocalID reports whether id was generated client-side
func IsLocalID(id models.ID) bool {
	s := id.String()
	return strings.HasPrefix(s, localPostPrefix) || strings.HasPrefix(s, tempCommentPrefix)
}

func localID(prefix string, stamp int64) models.ID {
	return models.ID(prefix + strconv.FormatInt(stamp, 10))
}
