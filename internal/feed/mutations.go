package feed

import (
	"context"
	"fmt"

	"github.com/bookverse/bookverse/internal/apiclient"
	"github.com/bookverse/bookverse/internal/models"
	"github.com/bookverse/bookverse/internal/optimistic"
)

func never(error) bool { return false }

// CreatePost adds a status or goal post at the top of the feed and
// publishes it. On success the local post adopts the server id.
func (f *Feed) CreatePost(ctx context.Context, np apiclient.NewPost) (models.Post, error) {
	if np.Type == "" {
		np.Type = models.PostTypeStatus
	}
	local := models.Post{
		ID:         localID(localPostPrefix, f.nextStamp()),
		Type:       np.Type,
		Username:   f.viewer.Username,
		UserAvatar: f.viewer.Avatar,
		Timestamp:  f.timestamp(),
		Content:    np.Content,
		ImageURL:   np.ImageURL,
		BookID:     np.BookID,
		Comments:   []models.Comment{},
		IsLocal:    true,
	}
	id := local.ID

	_, err := optimistic.Run(ctx, optimistic.Action[models.Post]{
		Name:  "create_post",
		Apply: func() error { f.prepend(local); return nil },
		Remote: func(ctx context.Context) (models.Post, error) {
			return f.remote.CreatePost(ctx, np)
		},
		Reconcile: func(server models.Post) error {
			if server.ID.IsZero() {
				return nil
			}
			if err := f.adoptID(id, server.ID, server.Timestamp); err != nil {
				return err
			}
			id = server.ID
			return nil
		},
		Rollback: func() { f.remove(id) },
		Persist:  f.persist,
	})
	if err != nil {
		return models.Post{}, err
	}
	post, _ := f.Post(id)
	return post, nil
}

// ShareReview posts a review and shows it in the feed. A duplicate review
// (409) is rolled back and surfaced.
func (f *Feed) ShareReview(ctx context.Context, book models.Book, rating float64, content string) (models.Post, error) {
	local := models.Post{
		ID:         localID(localPostPrefix, f.nextStamp()),
		Type:       models.PostTypeReview,
		Username:   f.viewer.Username,
		UserAvatar: f.viewer.Avatar,
		Timestamp:  f.timestamp(),
		Content:    content,
		Rating:     rating,
		BookID:     book.ID,
		BookTitle:  book.Title,
		BookCover:  book.CoverImage,
		Comments:   []models.Comment{},
		IsLocal:    true,
	}

	_, err := optimistic.Run(ctx, optimistic.Action[models.Review]{
		Name:  "share_review",
		Apply: func() error { f.prepend(local); return nil },
		Remote: func(ctx context.Context) (models.Review, error) {
			return f.remote.CreateReview(ctx, apiclient.NewReview{BookID: book.ID, Rating: rating, Content: content})
		},
		Reconcile: func(r models.Review) error {
			return f.withPost(local.ID, func(p *models.Post) { p.ReviewID = r.ID })
		},
		Rollback: func() { f.remove(local.ID) },
		Persist:  f.persist,
		IsSoft:   never,
	})
	if err != nil {
		return models.Post{}, err
	}
	post, _ := f.Post(local.ID)
	return post, nil
}

// ShareQuote posts a quote and shows it in the feed
func (f *Feed) ShareQuote(ctx context.Context, book models.Book, text string) (models.Post, error) {
	local := models.Post{
		ID:         localID(localPostPrefix, f.nextStamp()),
		Type:       models.PostTypeQuote,
		Username:   f.viewer.Username,
		UserAvatar: f.viewer.Avatar,
		Timestamp:  f.timestamp(),
		Content:    text,
		BookID:     book.ID,
		BookTitle:  book.Title,
		BookCover:  book.CoverImage,
		Comments:   []models.Comment{},
		IsLocal:    true,
	}

	_, err := optimistic.Run(ctx, optimistic.Action[models.Quote]{
		Name:  "share_quote",
		Apply: func() error { f.prepend(local); return nil },
		Remote: func(ctx context.Context) (models.Quote, error) {
			return f.remote.CreateQuote(ctx, apiclient.NewQuote{BookID: book.ID, Text: text})
		},
		Reconcile: func(q models.Quote) error {
			return f.withPost(local.ID, func(p *models.Post) { p.QuoteID = q.ID })
		},
		Rollback: func() { f.remove(local.ID) },
		Persist:  f.persist,
		IsSoft:   never,
	})
	if err != nil {
		return models.Post{}, err
	}
	post, _ := f.Post(local.ID)
	return post, nil
}

// AddComment appends a provisional comment right away, then creates it on
// the server. The provisional entry is replaced in place by the server
// comment, kept if the comments endpoint does not exist, and removed on
// any other failure.
func (f *Feed) AddComment(ctx context.Context, postID models.ID, text string) (models.Comment, error) {
	provisional := models.Comment{
		ID:         localID(tempCommentPrefix, f.nextStamp()),
		PostID:     postID,
		Username:   f.viewer.Username,
		UserAvatar: f.viewer.Avatar,
		Text:       text,
		Timestamp:  f.timestamp(),
	}
	final := provisional

	_, err := optimistic.Run(ctx, optimistic.Action[models.Comment]{
		Name: "create_comment",
		Apply: func() error {
			return f.withPost(postID, func(p *models.Post) {
				p.Comments = append(p.Comments, provisional)
			})
		},
		Remote: func(ctx context.Context) (models.Comment, error) {
			return f.remote.CreateComment(ctx, postID, text)
		},
		Reconcile: func(server models.Comment) error {
			if server.Username == "" {
				server.Username = provisional.Username
			}
			if server.UserAvatar == "" {
				server.UserAvatar = provisional.UserAvatar
			}
			if server.Text == "" {
				server.Text = provisional.Text
			}
			if server.Timestamp == "" {
				server.Timestamp = provisional.Timestamp
			}
			if server.PostID.IsZero() {
				server.PostID = postID
			}
			final = server
			return f.withPost(postID, func(p *models.Post) {
				if i := p.CommentIndex(provisional.ID); i >= 0 {
					p.Comments[i] = server
				}
			})
		},
		Rollback: func() {
			_ = f.withPost(postID, func(p *models.Post) {
				if i := p.CommentIndex(provisional.ID); i >= 0 {
					p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
				}
			})
		},
		Persist: f.persist,
	})
	if err != nil {
		return models.Comment{}, err
	}
	return final, nil
}

// DeleteComment removes a comment locally, then on the server. Comments
// that never reached the server are only removed locally.
func (f *Feed) DeleteComment(ctx context.Context, postID, commentID models.ID) error {
	var (
		removed models.Comment
		index   = -1
	)

	_, err := optimistic.Run(ctx, optimistic.Action[struct{}]{
		Name: "delete_comment",
		Apply: func() error {
			var found bool
			err := f.withPost(postID, func(p *models.Post) {
				if i := p.CommentIndex(commentID); i >= 0 {
					removed, index, found = p.Comments[i], i, true
					p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
				}
			})
			if err == nil && !found {
				return fmt.Errorf("%w: %s on post %s", ErrCommentNotFound, commentID, postID)
			}
			return err
		},
		Remote: func(ctx context.Context) (struct{}, error) {
			if IsLocalID(commentID) {
				return struct{}{}, nil
			}
			return struct{}{}, f.remote.DeleteComment(ctx, postID, commentID)
		},
		Rollback: func() {
			_ = f.withPost(postID, func(p *models.Post) {
				i := min(index, len(p.Comments))
				p.Comments = append(p.Comments[:i], append([]models.Comment{removed}, p.Comments[i:]...)...)
			})
		},
		Persist: f.persist,
	})
	return err
}

// ToggleLike flips the like on a post immediately. Quote-backed posts are
// also toggled on the server and adopt the server's state; the flip is
// reverted if that call fails.
func (f *Feed) ToggleLike(ctx context.Context, postID models.ID) (models.Post, error) {
	var (
		prevLiked bool
		prevLikes int
		quoteID   models.ID
	)

	_, err := optimistic.Run(ctx, optimistic.Action[*apiclient.LikeState]{
		Name: "toggle_like",
		Apply: func() error {
			return f.withPost(postID, func(p *models.Post) {
				prevLiked, prevLikes = p.IsLiked, p.Likes
				if p.IsQuoteBacked() {
					quoteID = p.QuoteID
				}
				p.IsLiked = !p.IsLiked
				p.Likes = adjustLikes(p.Likes, p.IsLiked)
			})
		},
		Remote: func(ctx context.Context) (*apiclient.LikeState, error) {
			if quoteID.IsZero() {
				return nil, nil
			}
			state, err := f.remote.ToggleQuoteLike(ctx, quoteID)
			if err != nil {
				return nil, err
			}
			return &state, nil
		},
		Reconcile: func(state *apiclient.LikeState) error {
			if state == nil {
				return nil
			}
			return f.withPost(postID, func(p *models.Post) {
				if state.IsLiked != p.IsLiked {
					p.IsLiked = state.IsLiked
					p.Likes = adjustLikes(p.Likes, p.IsLiked)
				}
				if state.Likes != nil && *state.Likes >= 0 {
					p.Likes = *state.Likes
				}
			})
		},
		Rollback: func() {
			_ = f.withPost(postID, func(p *models.Post) {
				p.IsLiked, p.Likes = prevLiked, prevLikes
			})
		},
		Persist: f.persist,
		IsSoft:  never,
	})
	if err != nil {
		return models.Post{}, err
	}
	post, _ := f.Post(postID)
	return post, nil
}

func adjustLikes(likes int, liked bool) int {
	if liked {
		return likes + 1
	}
	if likes > 0 {
		return likes - 1
	}
	return 0
}

// EditPost replaces a post's text. Quote posts are updated through the
// quote API, which may not exist on the server; a 404 keeps the edit
// locally.
func (f *Feed) EditPost(ctx context.Context, postID models.ID, content string) (models.Post, error) {
	var (
		prev   string
		target models.Post
	)

	_, err := optimistic.Run(ctx, optimistic.Action[struct{}]{
		Name: "edit_post",
		Apply: func() error {
			return f.withPost(postID, func(p *models.Post) {
				prev = p.Content
				p.Content = content
				target = p.Clone()
			})
		},
		Remote: func(ctx context.Context) (struct{}, error) {
			switch {
			case target.IsQuoteBacked():
				return struct{}{}, f.remote.UpdateQuote(ctx, target.QuoteID, content)
			case target.IsLocal || IsLocalID(target.ID):
				return struct{}{}, nil
			default:
				return struct{}{}, f.remote.UpdatePost(ctx, target.ID, content)
			}
		},
		Rollback: func() {
			_ = f.withPost(postID, func(p *models.Post) { p.Content = prev })
		},
		Persist: f.persist,
	})
	if err != nil {
		return models.Post{}, err
	}
	post, _ := f.Post(postID)
	return post, nil
}

// DeletePost removes a post from the feed and the server
func (f *Feed) DeletePost(ctx context.Context, postID models.ID) error {
	var (
		removed models.Post
		index   int
	)

	_, err := optimistic.Run(ctx, optimistic.Action[struct{}]{
		Name: "delete_post",
		Apply: func() error {
			f.mu.Lock()
			defer f.mu.Unlock()
			index = f.indexLocked(postID)
			if index < 0 {
				return fmt.Errorf("%w: %s", ErrPostNotFound, postID)
			}
			removed = f.posts[index]
			f.posts = append(f.posts[:index], f.posts[index+1:]...)
			return nil
		},
		Remote: func(ctx context.Context) (struct{}, error) {
			if removed.IsLocal || IsLocalID(removed.ID) {
				return struct{}{}, nil
			}
			return struct{}{}, f.remote.DeletePost(ctx, postID)
		},
		Rollback: func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if f.indexLocked(removed.ID) >= 0 {
				return
			}
			i := min(index, len(f.posts))
			f.posts = append(f.posts[:i], append([]models.Post{removed}, f.posts[i:]...)...)
		},
		Persist: f.persist,
	})
	return err
}

func (f *Feed) prepend(p models.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.indexLocked(p.ID) >= 0 {
		return
	}
	f.posts = append([]models.Post{p}, f.posts...)
}

// adoptID renames a local post to the id the server assigned. If a refresh
// already brought in the server's copy, the local one is dropped instead.
func (f *Feed) adoptID(localID, serverID models.ID, timestamp string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexLocked(localID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrPostNotFound, localID)
	}
	if f.indexLocked(serverID) >= 0 {
		f.posts = append(f.posts[:i], f.posts[i+1:]...)
		return nil
	}
	f.posts[i].ID = serverID
	if timestamp != "" {
		f.posts[i].Timestamp = timestamp
	}
	return nil
}

func (f *Feed) remove(id models.ID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.indexLocked(id); i >= 0 {
		f.posts = append(f.posts[:i], f.posts[i+1:]...)
	}
}
