package models

// Default shelf names every account has
const (
	ShelfWantToRead       = "Want to Read"
	ShelfCurrentlyReading = "Currently Reading"
	ShelfRead             = "Read"
)

// DefaultShelves lists the default shelves in display order
var DefaultShelves = []string{ShelfWantToRead, ShelfCurrentlyReading, ShelfRead}

// IsDefaultShelf reports whether name is one of the default shelves
func IsDefaultShelf(name string) bool {
	for _, s := range DefaultShelves {
		if s == name {
			return true
		}
	}
	return false
}

// Shelf is a named collection of books owned by a user. A book may sit on
// several shelves at once.
type Shelf struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault"`
	Books     []Book `json:"books"`
}

// Contains reports whether the shelf holds the book
func (s *Shelf) Contains(bookID ID) bool {
	for i := range s.Books {
		if s.Books[i].ID == bookID {
			return true
		}
	}
	return false
}
