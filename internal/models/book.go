package models

import (
	"bytes"
	"encoding/json"
)

// Book is the client view of a catalog entry
type Book struct {
	ID            ID         `json:"id"`
	Title         string     `json:"title"`
	Author        AuthorRef  `json:"author"`
	CoverImage    string     `json:"coverImage,omitempty"`
	Genres        []GenreRef `json:"genres,omitempty"`
	Rating        float64    `json:"rating"`
	Description   string     `json:"description,omitempty"`
	PublishedYear int        `json:"publishedYear,omitempty"`
	ISBN          string     `json:"isbn,omitempty"`
}

// UnmarshalJSON accepts the alternative field names some endpoints use
// for the cover (coverImageUrl, cover) and author (authorName).
func (b *Book) UnmarshalJSON(data []byte) error {
	type plain Book
	var aux struct {
		plain
		CoverImageURL string  `json:"coverImageUrl"`
		Cover         string  `json:"cover"`
		AuthorName    string  `json:"authorName"`
		AverageRating float64 `json:"averageRating"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*b = Book(aux.plain)
	if b.CoverImage == "" {
		b.CoverImage = firstNonEmpty(aux.CoverImageURL, aux.Cover)
	}
	if b.Author.Name == "" && aux.AuthorName != "" {
		b.Author.Name = aux.AuthorName
	}
	if b.Rating == 0 {
		b.Rating = aux.AverageRating
	}
	return nil
}

// AuthorRef is a book's author, sent either inline as an object or as a
// bare name string.
type AuthorRef struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *AuthorRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = AuthorRef{}
		return nil
	}
	if data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*a = AuthorRef{Name: name}
		return nil
	}
	var aux struct {
		ID       ID     `json:"id"`
		Name     string `json:"name"`
		FullName string `json:"fullName"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*a = AuthorRef{ID: aux.ID, Name: firstNonEmpty(aux.Name, aux.FullName)}
	return nil
}

// GenreRef is a genre attached to a book, sent as an object or a name.
type GenreRef struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (g *GenreRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*g = GenreRef{Name: name}
		return nil
	}
	type plain GenreRef
	var aux plain
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*g = GenreRef(aux)
	return nil
}

// Author is a catalog author
type Author struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Bio       string `json:"bio,omitempty"`
	PhotoURL  string `json:"photoUrl,omitempty"`
	BirthYear int    `json:"birthYear,omitempty"`
}

// Genre is a catalog genre
type Genre struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Review is a user's rated review of a book
type Review struct {
	ID        ID      `json:"id"`
	BookID    ID      `json:"bookId"`
	BookTitle string  `json:"bookTitle,omitempty"`
	UserID    ID      `json:"userId,omitempty"`
	Username  string  `json:"username"`
	Rating    float64 `json:"rating"`
	Content   string  `json:"content"`
	CreatedAt string  `json:"createdAt,omitempty"`
}

// Quote is a passage a user shared from a book
type Quote struct {
	ID        ID     `json:"id"`
	BookID    ID     `json:"bookId,omitempty"`
	BookTitle string `json:"bookTitle,omitempty"`
	Author    string `json:"author,omitempty"`
	Text      string `json:"text"`
	Username  string `json:"username"`
	Likes     int    `json:"likes"`
	IsLiked   bool   `json:"isLiked"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// User is a public user profile
type User struct {
	ID             ID     `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email,omitempty"`
	AvatarURL      string `json:"avatarUrl,omitempty"`
	Bio            string `json:"bio,omitempty"`
	Role           string `json:"role,omitempty"`
	FollowersCount int    `json:"followersCount"`
	FollowingCount int    `json:"followingCount"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
