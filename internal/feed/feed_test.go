package feed

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookverse/bookverse/internal/apiclient"
	"github.com/bookverse/bookverse/internal/localstate"
	"github.com/bookverse/bookverse/internal/models"
	"github.com/bookverse/bookverse/internal/store"
)

// fakeRemote implements Remote; unset hooks fail the call with 500.
type fakeRemote struct {
	feed          []models.Post
	createPost    func(apiclient.NewPost) (models.Post, error)
	createReview  func(apiclient.NewReview) (models.Review, error)
	createQuote   func(apiclient.NewQuote) (models.Quote, error)
	createComment func(ctx context.Context, postID models.ID, text string) (models.Comment, error)
	deleteComment func(postID, commentID models.ID) error
	toggleLike    func(quoteID models.ID) (apiclient.LikeState, error)
	updatePost    func(postID models.ID, content string) error
	updateQuote   func(quoteID models.ID, text string) error
	deletePost    func(postID models.ID) error
}

var errServer = &apiclient.APIError{Status: 500, Message: "boom"}

func (r *fakeRemote) GetFeed(context.Context, int, int) ([]models.Post, error) {
	return r.feed, nil
}

func (r *fakeRemote) CreatePost(_ context.Context, p apiclient.NewPost) (models.Post, error) {
	if r.createPost == nil {
		return models.Post{}, errServer
	}
	return r.createPost(p)
}

func (r *fakeRemote) UpdatePost(_ context.Context, id models.ID, content string) error {
	if r.updatePost == nil {
		return errServer
	}
	return r.updatePost(id, content)
}

func (r *fakeRemote) DeletePost(_ context.Context, id models.ID) error {
	if r.deletePost == nil {
		return errServer
	}
	return r.deletePost(id)
}

func (r *fakeRemote) CreateReview(_ context.Context, rv apiclient.NewReview) (models.Review, error) {
	if r.createReview == nil {
		return models.Review{}, errServer
	}
	return r.createReview(rv)
}

func (r *fakeRemote) CreateQuote(_ context.Context, q apiclient.NewQuote) (models.Quote, error) {
	if r.createQuote == nil {
		return models.Quote{}, errServer
	}
	return r.createQuote(q)
}

func (r *fakeRemote) CreateComment(ctx context.Context, postID models.ID, text string) (models.Comment, error) {
	if r.createComment == nil {
		return models.Comment{}, errServer
	}
	return r.createComment(ctx, postID, text)
}

func (r *fakeRemote) DeleteComment(_ context.Context, postID, commentID models.ID) error {
	if r.deleteComment == nil {
		return errServer
	}
	return r.deleteComment(postID, commentID)
}

func (r *fakeRemote) ToggleQuoteLike(_ context.Context, quoteID models.ID) (apiclient.LikeState, error) {
	if r.toggleLike == nil {
		return apiclient.LikeState{}, errServer
	}
	return r.toggleLike(quoteID)
}

func (r *fakeRemote) UpdateQuote(_ context.Context, quoteID models.ID, text string) error {
	if r.updateQuote == nil {
		return errServer
	}
	return r.updateQuote(quoteID, text)
}

func fixedClock() func() time.Time {
	t := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func newTestFeed(t *testing.T, remote *fakeRemote, seed ...models.Post) (*Feed, *localstate.State) {
	t.Helper()
	state := localstate.New(store.NewMemoryStore())
	f := New(remote, state, Viewer{Username: "reader", Avatar: "https://img/reader.png"}, WithClock(fixedClock()))
	if len(seed) > 0 {
		require.NoError(t, f.Cache().Save(context.Background(), seed))
		require.NoError(t, f.Load(context.Background()))
	}
	return f, state
}

func cachedPosts(t *testing.T, state *localstate.State) []models.Post {
	t.Helper()
	var posts []models.Post
	_, err := state.ReadJSON(context.Background(), localstate.KeySocialPosts, &posts)
	require.NoError(t, err)
	return posts
}

func TestCacheStripsBlobURLs(t *testing.T) {
	ctx := context.Background()
	state := localstate.New(store.NewMemoryStore())
	cache := NewCache(state)

	posts := []models.Post{{
		ID:         "1",
		UserAvatar: "blob:http://x/1",
		BookCover:  "blob:http://x/2",
		ImageURL:   "https://img/ok.png",
		Comments:   []models.Comment{{ID: "c1", UserAvatar: "blob:http://x/3"}},
	}}
	require.NoError(t, cache.Save(ctx, posts))

	loaded, err := cache.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Empty(t, loaded[0].UserAvatar)
	assert.Empty(t, loaded[0].BookCover)
	assert.Equal(t, "https://img/ok.png", loaded[0].ImageURL)
	assert.Empty(t, loaded[0].Comments[0].UserAvatar)
	assert.Equal(t, "blob:http://x/1", posts[0].UserAvatar, "caller's posts must not be modified")
}

func TestCacheLoadCoercesLinkedIDs(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	state := localstate.New(kv)
	raw := `[
		{"id":"1","type":"quote","quoteId":{"data":{"Id":42}}},
		{"id":"2","type":"review","reviewId":17},
		{"id":"3","type":"review","reviewId":"r-3"}
	]`
	require.NoError(t, kv.Set(ctx, localstate.KeySocialPosts, []byte(raw)))

	posts, err := NewCache(state).Load(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, models.ID("42"), posts[0].QuoteID)
	assert.Equal(t, models.ID("17"), posts[1].ReviewID)
	assert.Equal(t, models.ID("r-3"), posts[2].ReviewID)

	stored, err := kv.Get(ctx, localstate.KeySocialPosts)
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(stored, &records))
	assert.Equal(t, "42", records[0]["quoteId"], "cache must be rewritten with string ids")
	assert.Equal(t, "17", records[1]["reviewId"])
}

func TestCacheLoadMissingAndCorrupt(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	cache := NewCache(localstate.New(kv))

	posts, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)

	require.NoError(t, kv.Set(ctx, localstate.KeySocialPosts, []byte("{not json")))
	posts, err = cache.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
	_, err = kv.Get(ctx, localstate.KeySocialPosts)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMerge(t *testing.T) {
	comments := []models.Comment{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	tests := []struct {
		name     string
		server   []models.Post
		cached   []models.Post
		inMemory []models.Post
		wantIDs  []models.ID
		check    func(t *testing.T, out []models.Post)
	}{
		{
			name:    "server canonical fields with local interaction state",
			server:  []models.Post{{ID: "7", BookTitle: "Dune", Timestamp: "2024-03-01T00:00:00Z", Likes: 1}},
			cached:  []models.Post{{ID: "7", BookTitle: "old", Likes: 5, IsLiked: true, Comments: comments, IsLocal: true}},
			wantIDs: []models.ID{"7"},
			check: func(t *testing.T, out []models.Post) {
				assert.Equal(t, "Dune", out[0].BookTitle)
				assert.Equal(t, "2024-03-01T00:00:00Z", out[0].Timestamp)
				assert.Len(t, out[0].Comments, 3)
				assert.Equal(t, 5, out[0].Likes)
				assert.True(t, out[0].IsLiked)
				assert.False(t, out[0].IsLocal)
			},
		},
		{
			name:     "unmatched locals follow server posts, in-memory first",
			server:   []models.Post{{ID: "1"}},
			cached:   []models.Post{{ID: "c"}, {ID: "m"}},
			inMemory: []models.Post{{ID: "m", Content: "fresh"}},
			wantIDs:  []models.ID{"1", "m", "c"},
			check: func(t *testing.T, out []models.Post) {
				assert.Equal(t, "fresh", out[1].Content)
			},
		},
		{
			name:    "review matched by review id",
			server:  []models.Post{{ID: "s-1", Type: models.PostTypeReview, ReviewID: "r1"}},
			cached:  []models.Post{{ID: "post-1", Type: models.PostTypeReview, ReviewID: "r1", Likes: 2}},
			wantIDs: []models.ID{"s-1"},
			check: func(t *testing.T, out []models.Post) {
				assert.Equal(t, 2, out[0].Likes)
			},
		},
		{
			name:    "server posts without local copy get empty comments",
			server:  []models.Post{{ID: "1"}, {ID: "1"}},
			wantIDs: []models.ID{"1"},
			check: func(t *testing.T, out []models.Post) {
				assert.NotNil(t, out[0].Comments)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Merge(tt.server, tt.cached, tt.inMemory)
			ids := make([]models.ID, len(out))
			for i, p := range out {
				ids[i] = p.ID
			}
			assert.Equal(t, tt.wantIDs, ids)
			if tt.check != nil {
				tt.check(t, out)
			}
		})
	}
}

func TestRefreshFiltersReportedAndSaves(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{feed: []models.Post{{ID: "1"}, {ID: "2"}}}
	f, state := newTestFeed(t, remote, models.Post{ID: "post-9", IsLocal: true})

	require.NoError(t, f.Report(ctx, "2"))
	posts, err := f.Refresh(ctx)
	require.NoError(t, err)

	ids := []models.ID{}
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []models.ID{"1", "post-9"}, ids)
	assert.Len(t, cachedPosts(t, state), 2)
}

func TestAddCommentVisibleBeforeServerResponds(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	entered := make(chan struct{})
	remote := &fakeRemote{
		createComment: func(_ context.Context, postID models.ID, text string) (models.Comment, error) {
			close(entered)
			<-release
			return models.Comment{ID: "c-100", PostID: postID, Text: text}, nil
		},
	}
	f, state := newTestFeed(t, remote, models.Post{ID: "p1"})

	done := make(chan error, 1)
	go func() {
		_, err := f.AddComment(ctx, "p1", "great read")
		done <- err
	}()

	<-entered
	post, ok := f.Post("p1")
	require.True(t, ok)
	require.Len(t, post.Comments, 1)
	assert.True(t, IsLocalID(post.Comments[0].ID))
	assert.Equal(t, "great read", post.Comments[0].Text)
	assert.Len(t, cachedPosts(t, state)[0].Comments, 1, "provisional comment must be persisted")

	close(release)
	require.NoError(t, <-done)

	post, _ = f.Post("p1")
	require.Len(t, post.Comments, 1)
	assert.Equal(t, models.ID("c-100"), post.Comments[0].ID)
	assert.Equal(t, "reader", post.Comments[0].Username)
}

func TestAddCommentFailures(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantErr   bool
		wantCount int
	}{
		{"server error removes provisional comment", errServer, true, 0},
		{"transport error removes provisional comment", errors.New("connection reset"), true, 0},
		{"missing endpoint keeps provisional comment", &apiclient.APIError{Status: 404}, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &fakeRemote{
				createComment: func(context.Context, models.ID, string) (models.Comment, error) {
					return models.Comment{}, tt.err
				},
			}
			f, state := newTestFeed(t, remote, models.Post{ID: "p1"})

			_, err := f.AddComment(context.Background(), "p1", "hello")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			post, _ := f.Post("p1")
			assert.Len(t, post.Comments, tt.wantCount)
			assert.Len(t, cachedPosts(t, state)[0].Comments, tt.wantCount)
		})
	}
}

func TestDeleteCommentRollback(t *testing.T) {
	remote := &fakeRemote{}
	f, _ := newTestFeed(t, remote, models.Post{
		ID:       "p1",
		Comments: []models.Comment{{ID: "a"}, {ID: "b"}, {ID: "c"}},
	})

	err := f.DeleteComment(context.Background(), "p1", "b")
	require.Error(t, err)

	post, _ := f.Post("p1")
	require.Len(t, post.Comments, 3)
	assert.Equal(t, models.ID("b"), post.Comments[1].ID, "comment must be restored in place")
}

func TestDeleteUnknownComment(t *testing.T) {
	f, _ := newTestFeed(t, &fakeRemote{}, models.Post{ID: "p1", Comments: []models.Comment{{ID: "a"}}})

	err := f.DeleteComment(context.Background(), "p1", "nope")
	require.ErrorIs(t, err, ErrCommentNotFound)

	post, _ := f.Post("p1")
	assert.Len(t, post.Comments, 1)
}

func TestDeleteProvisionalCommentSkipsServer(t *testing.T) {
	called := false
	remote := &fakeRemote{deleteComment: func(models.ID, models.ID) error {
		called = true
		return nil
	}}
	f, _ := newTestFeed(t, remote, models.Post{ID: "p1", Comments: []models.Comment{{ID: "temp-1"}}})

	require.NoError(t, f.DeleteComment(context.Background(), "p1", "temp-1"))
	assert.False(t, called)
	post, _ := f.Post("p1")
	assert.Empty(t, post.Comments)
}

func TestToggleLike(t *testing.T) {
	t.Run("plain post toggles locally", func(t *testing.T) {
		f, _ := newTestFeed(t, &fakeRemote{}, models.Post{ID: "p1", Likes: 0})

		post, err := f.ToggleLike(context.Background(), "p1")
		require.NoError(t, err)
		assert.True(t, post.IsLiked)
		assert.Equal(t, 1, post.Likes)

		post, err = f.ToggleLike(context.Background(), "p1")
		require.NoError(t, err)
		assert.False(t, post.IsLiked)
		assert.Equal(t, 0, post.Likes)
	})

	t.Run("quote post adopts server state", func(t *testing.T) {
		remote := &fakeRemote{toggleLike: func(models.ID) (apiclient.LikeState, error) {
			return apiclient.LikeState{IsLiked: true}, nil
		}}
		f, _ := newTestFeed(t, remote, models.Post{ID: "p1", Type: models.PostTypeQuote, QuoteID: "q1", Likes: 4})

		post, err := f.ToggleLike(context.Background(), "p1")
		require.NoError(t, err)
		assert.True(t, post.IsLiked)
		assert.Equal(t, 5, post.Likes)
	})

	t.Run("quote post reverts on failure", func(t *testing.T) {
		remote := &fakeRemote{toggleLike: func(models.ID) (apiclient.LikeState, error) {
			return apiclient.LikeState{}, &apiclient.APIError{Status: 404}
		}}
		f, state := newTestFeed(t, remote, models.Post{ID: "p1", Type: models.PostTypeQuote, QuoteID: "q1", Likes: 4})

		_, err := f.ToggleLike(context.Background(), "p1")
		require.Error(t, err)
		post, _ := f.Post("p1")
		assert.False(t, post.IsLiked)
		assert.Equal(t, 4, post.Likes)
		assert.Equal(t, 4, cachedPosts(t, state)[0].Likes)
	})
}

func TestAdjustLikesNeverNegative(t *testing.T) {
	assert.Equal(t, 0, adjustLikes(0, false))
	assert.Equal(t, 1, adjustLikes(0, true))
}

func TestEditPost(t *testing.T) {
	t.Run("quote edit kept when endpoint missing", func(t *testing.T) {
		remote := &fakeRemote{updateQuote: func(models.ID, string) error {
			return &apiclient.APIError{Status: 404}
		}}
		f, _ := newTestFeed(t, remote, models.Post{ID: "p1", Type: models.PostTypeQuote, QuoteID: "q1", Content: "old"})

		post, err := f.EditPost(context.Background(), "p1", "new")
		require.NoError(t, err)
		assert.Equal(t, "new", post.Content)
	})

	t.Run("server error restores content", func(t *testing.T) {
		f, _ := newTestFeed(t, &fakeRemote{}, models.Post{ID: "p1", Content: "old"})

		_, err := f.EditPost(context.Background(), "p1", "new")
		require.Error(t, err)
		post, _ := f.Post("p1")
		assert.Equal(t, "old", post.Content)
	})
}

func TestCreatePost(t *testing.T) {
	t.Run("adopts server id", func(t *testing.T) {
		remote := &fakeRemote{createPost: func(p apiclient.NewPost) (models.Post, error) {
			return models.Post{ID: "srv-1", Content: p.Content}, nil
		}}
		f, _ := newTestFeed(t, remote, models.Post{ID: "old"})

		post, err := f.CreatePost(context.Background(), apiclient.NewPost{Content: "Started Dune"})
		require.NoError(t, err)
		assert.Equal(t, models.ID("srv-1"), post.ID)
		assert.Equal(t, models.PostTypeStatus, post.Type)
		assert.Equal(t, models.ID("srv-1"), f.Posts()[0].ID)
	})

	t.Run("refresh during create keeps one copy", func(t *testing.T) {
		var f *Feed
		remote := &fakeRemote{}
		remote.createPost = func(p apiclient.NewPost) (models.Post, error) {
			remote.feed = []models.Post{{ID: "srv-1", Content: p.Content}}
			_, err := f.Refresh(context.Background())
			require.NoError(t, err)
			return models.Post{ID: "srv-1", Content: p.Content}, nil
		}
		f, _ = newTestFeed(t, remote)

		post, err := f.CreatePost(context.Background(), apiclient.NewPost{Content: "Started Dune"})
		require.NoError(t, err)
		assert.Equal(t, models.ID("srv-1"), post.ID)

		posts := f.Posts()
		require.Len(t, posts, 1)
		assert.Equal(t, models.ID("srv-1"), posts[0].ID)
		assert.False(t, posts[0].IsLocal)
	})

	t.Run("local ids are unique", func(t *testing.T) {
		remote := &fakeRemote{createPost: func(apiclient.NewPost) (models.Post, error) {
			return models.Post{}, &apiclient.APIError{Status: 404}
		}}
		f, _ := newTestFeed(t, remote)

		a, err := f.CreatePost(context.Background(), apiclient.NewPost{Content: "a"})
		require.NoError(t, err)
		b, err := f.CreatePost(context.Background(), apiclient.NewPost{Content: "b"})
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
		assert.True(t, a.IsLocal)
		assert.Len(t, f.Posts(), 2)
	})

	t.Run("duplicate review is rolled back", func(t *testing.T) {
		remote := &fakeRemote{createReview: func(apiclient.NewReview) (models.Review, error) {
			return models.Review{}, &apiclient.APIError{Status: 409, Message: "exists"}
		}}
		f, _ := newTestFeed(t, remote)

		_, err := f.ShareReview(context.Background(), models.Book{ID: "b1", Title: "Dune"}, 5, "loved it")
		require.Error(t, err)
		assert.True(t, apiclient.IsConflict(err))
		assert.Empty(t, f.Posts())
	})

	t.Run("shared quote links quote id", func(t *testing.T) {
		remote := &fakeRemote{createQuote: func(apiclient.NewQuote) (models.Quote, error) {
			return models.Quote{ID: "q9"}, nil
		}}
		f, _ := newTestFeed(t, remote)

		post, err := f.ShareQuote(context.Background(), models.Book{ID: "b1"}, "Fear is the mind-killer.")
		require.NoError(t, err)
		assert.Equal(t, models.ID("q9"), post.QuoteID)
		assert.True(t, post.IsQuoteBacked())
	})
}

func TestDeletePostRollbackRestoresPosition(t *testing.T) {
	f, _ := newTestFeed(t, &fakeRemote{}, models.Post{ID: "1"}, models.Post{ID: "2"}, models.Post{ID: "3"})

	require.Error(t, f.DeletePost(context.Background(), "2"))
	posts := f.Posts()
	require.Len(t, posts, 3)
	assert.Equal(t, models.ID("2"), posts[1].ID)
}

func TestDeleteLocalPostSkipsServer(t *testing.T) {
	f, state := newTestFeed(t, &fakeRemote{}, models.Post{ID: "post-1", IsLocal: true})

	require.NoError(t, f.DeletePost(context.Background(), "post-1"))
	assert.Empty(t, f.Posts())
	assert.Empty(t, cachedPosts(t, state))
}

func TestToggleSaved(t *testing.T) {
	f, _ := newTestFeed(t, &fakeRemote{})
	saved, err := f.ToggleSaved(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, saved)
	saved, err = f.ToggleSaved(context.Background(), "p1")
	require.NoError(t, err)
	assert.False(t, saved)
}
