package models

// PostType is the kind of a social feed entry
type PostType string

// Post types
const (
	PostTypeReview PostType = "review"
	PostTypeQuote  PostType = "quote"
	PostTypePost   PostType = "post"
	PostTypeStatus PostType = "status"
	PostTypeGoal   PostType = "goal"
)

// Post is a unit of the social feed.
//
// IsLocal stays true until the post has been matched against an item of a
// server-fetched feed.
type Post struct {
	ID         ID        `json:"id"`
	Type       PostType  `json:"type"`
	Username   string    `json:"username"`
	UserAvatar string    `json:"userAvatar,omitempty"`
	Timestamp  string    `json:"timestamp,omitempty"`
	Content    string    `json:"content,omitempty"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	Likes      int       `json:"likes"`
	IsLiked    bool      `json:"isLiked"`
	Comments   []Comment `json:"comments"`
	IsLocal    bool      `json:"isLocal"`
	ReviewID   ID        `json:"reviewId,omitempty"`
	QuoteID    ID        `json:"quoteId,omitempty"`
	BookID     ID        `json:"bookId,omitempty"`
	BookTitle  string    `json:"bookTitle,omitempty"`
	BookCover  string    `json:"bookCover,omitempty"`
	Rating     float64   `json:"rating,omitempty"`
}

// IsQuoteBacked reports whether like state for the post is tracked by a
// server quote entity.
func (p *Post) IsQuoteBacked() bool {
	return p.Type == PostTypeQuote && !p.QuoteID.IsZero()
}

// Clone returns a deep copy of the post.
func (p Post) Clone() Post {
	if p.Comments != nil {
		comments := make([]Comment, len(p.Comments))
		copy(comments, p.Comments)
		p.Comments = comments
	}
	return p
}

// CommentIndex returns the position of the comment with id, or -1.
func (p *Post) CommentIndex(id ID) int {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return i
		}
	}
	return -1
}

// Comment belongs to exactly one post
type Comment struct {
	ID         ID     `json:"id"`
	PostID     ID     `json:"postId,omitempty"`
	Username   string `json:"username"`
	UserAvatar string `json:"userAvatar,omitempty"`
	Text       string `json:"text"`
	Timestamp  string `json:"timestamp,omitempty"`
}
