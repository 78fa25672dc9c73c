// Package shelves manages the user's reading shelves.
package shelves

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bookverse/bookverse/internal/localstate"
	"github.com/bookverse/bookverse/internal/models"
	"github.com/bookverse/bookverse/pkg/logging"
)

// ErrShelfNotFound is returned when a shelf reference matches no shelf
var ErrShelfNotFound = errors.New("shelf not found")

// Remote is the subset of the BookVerse API shelves use
type Remote interface {
	ListShelves(ctx context.Context) ([]models.Shelf, error)
	CreateShelf(ctx context.Context, name string) (models.Shelf, error)
	AddToShelf(ctx context.Context, shelfID, bookID models.ID) error
	RemoveFromShelf(ctx context.Context, shelfID, bookID models.ID) error
}

// Move steps
const (
	StepRemove = "remove"
	StepAdd    = "add"
)

// MoveError reports which step of a shelf move failed. When Step is
// StepAdd the book has already left the source shelf.
type MoveError struct {
	Step   string
	BookID models.ID
	From   string
	To     string
	Err    error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move book %s from %q to %q: %s step failed: %v", e.BookID, e.From, e.To, e.Step, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

// Service manages shelves
type Service struct {
	remote Remote
	state  *localstate.State
	logger *zap.Logger
}

// NewService creates a shelf service
func NewService(remote Remote, state *localstate.State) *Service {
	return &Service{
		remote: remote,
		state:  state,
		logger: logging.WithComponent("shelves"),
	}
}

// List returns the user's shelves, default shelves first in their fixed
// order. Default shelves the server has not created yet appear empty. The
// books-read counter is raised to the size of the Read shelf.
func (s *Service) List(ctx context.Context) ([]models.Shelf, error) {
	remote, err := s.remote.ListShelves(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shelves: %w", err)
	}

	out := make([]models.Shelf, 0, len(remote)+len(models.DefaultShelves))
	for _, name := range models.DefaultShelves {
		shelf, ok := find(remote, name)
		if !ok {
			shelf = models.Shelf{Name: name}
		}
		shelf.IsDefault = true
		if shelf.Books == nil {
			shelf.Books = []models.Book{}
		}
		out = append(out, shelf)
	}
	for _, shelf := range remote {
		if isDefaultName(shelf.Name) {
			continue
		}
		if shelf.Books == nil {
			shelf.Books = []models.Book{}
		}
		out = append(out, shelf)
	}

	if read, ok := find(out, models.ShelfRead); ok {
		if _, err := s.state.RecordBooksRead(ctx, len(read.Books)); err != nil {
			s.logger.Warn("Failed to record books read", zap.Error(err))
		}
	}
	return out, nil
}

// Add puts a book on the shelf named or identified by ref, creating a
// missing default shelf first.
func (s *Service) Add(ctx context.Context, ref string, bookID models.ID) error {
	shelves, err := s.remote.ListShelves(ctx)
	if err != nil {
		return fmt.Errorf("list shelves: %w", err)
	}
	shelf, err := s.resolve(ctx, shelves, ref, true)
	if err != nil {
		return err
	}
	return s.add(ctx, shelf, bookID)
}

// Remove takes a book off the shelf named or identified by ref
func (s *Service) Remove(ctx context.Context, ref string, bookID models.ID) error {
	shelves, err := s.remote.ListShelves(ctx)
	if err != nil {
		return fmt.Errorf("list shelves: %w", err)
	}
	shelf, err := s.resolve(ctx, shelves, ref, false)
	if err != nil {
		return err
	}
	if err := s.remote.RemoveFromShelf(ctx, shelf.ID, bookID); err != nil {
		return fmt.Errorf("remove book %s from %q: %w", bookID, shelf.Name, err)
	}
	return nil
}

// Move takes a book off one shelf and puts it on another. The two calls
// are not atomic and a failed add is not compensated: the returned
// *MoveError says which step failed.
func (s *Service) Move(ctx context.Context, bookID models.ID, from, to string) error {
	shelves, err := s.remote.ListShelves(ctx)
	if err != nil {
		return fmt.Errorf("list shelves: %w", err)
	}
	src, err := s.resolve(ctx, shelves, from, false)
	if err != nil {
		return &MoveError{Step: StepRemove, BookID: bookID, From: from, To: to, Err: err}
	}
	dst, err := s.resolve(ctx, shelves, to, true)
	if err != nil {
		return &MoveError{Step: StepAdd, BookID: bookID, From: from, To: to, Err: err}
	}
	if src.ID == dst.ID {
		return nil
	}

	if err := s.remote.RemoveFromShelf(ctx, src.ID, bookID); err != nil {
		return &MoveError{Step: StepRemove, BookID: bookID, From: src.Name, To: dst.Name, Err: err}
	}
	if err := s.add(ctx, dst, bookID); err != nil {
		s.logger.Warn("Shelf move left book off both shelves",
			zap.String("book", bookID.String()),
			zap.String("from", src.Name),
			zap.String("to", dst.Name),
			zap.Error(err))
		return &MoveError{Step: StepAdd, BookID: bookID, From: src.Name, To: dst.Name, Err: err}
	}
	return nil
}

func (s *Service) add(ctx context.Context, shelf models.Shelf, bookID models.ID) error {
	if err := s.remote.AddToShelf(ctx, shelf.ID, bookID); err != nil {
		return fmt.Errorf("add book %s to %q: %w", bookID, shelf.Name, err)
	}
	if canonicalName(shelf.Name) == models.ShelfRead && !shelf.Contains(bookID) {
		if n, err := s.state.IncrementBooksRead(ctx); err != nil {
			s.logger.Warn("Failed to increment books read", zap.Error(err))
		} else {
			s.logger.Debug("Books read incremented", zap.Int("booksRead", n))
		}
	}
	return nil
}

// resolve finds a shelf by id or case-insensitive name. A missing default
// shelf is created when create is set.
func (s *Service) resolve(ctx context.Context, shelves []models.Shelf, ref string, create bool) (models.Shelf, error) {
	ref = strings.TrimSpace(ref)
	for _, shelf := range shelves {
		if shelf.ID.String() == ref {
			return shelf, nil
		}
	}
	if shelf, ok := find(shelves, ref); ok {
		return shelf, nil
	}
	if create && isDefaultName(ref) {
		name := canonicalName(ref)
		shelf, err := s.remote.CreateShelf(ctx, name)
		if err != nil {
			return models.Shelf{}, fmt.Errorf("create shelf %q: %w", name, err)
		}
		if shelf.Name == "" {
			shelf.Name = name
		}
		return shelf, nil
	}
	return models.Shelf{}, fmt.Errorf("%w: %q", ErrShelfNotFound, ref)
}

func find(shelves []models.Shelf, name string) (models.Shelf, bool) {
	for _, shelf := range shelves {
		if strings.EqualFold(shelf.Name, name) {
			return shelf, true
		}
	}
	return models.Shelf{}, false
}

func isDefaultName(name string) bool {
	return canonicalName(name) != ""
}

// canonicalName maps a default shelf name in any case to its display form
func canonicalName(name string) string {
	for _, d := range models.DefaultShelves {
		if strings.EqualFold(d, strings.TrimSpace(name)) {
			return d
		}
	}
	return ""
}
