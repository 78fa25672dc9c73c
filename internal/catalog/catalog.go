// Package catalog builds the book browsing view: a page of books with the
// author and genre lists used by its filters, and the weekly trending list.
package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bookverse/bookverse/internal/apiclient"
	"github.com/bookverse/bookverse/internal/localstate"
	"github.com/bookverse/bookverse/internal/models"
	"github.com/bookverse/bookverse/internal/normalize"
	"github.com/bookverse/bookverse/pkg/logging"
)

// filterPageSize is the page size used to walk the author and genre lists
const filterPageSize = 100

// detailListSize bounds the reviews and quotes shown with a book
const detailListSize = 20

// trendingLimit is how many books the trending list holds
const trendingLimit = 10

// Remote is the subset of the BookVerse API the catalog uses
type Remote interface {
	ListBooks(ctx context.Context, q apiclient.BookQuery) (normalize.Result[models.Book], error)
	ListAuthors(ctx context.Context, q apiclient.ListQuery) (normalize.Result[models.Author], error)
	ListGenres(ctx context.Context, q apiclient.ListQuery) (normalize.Result[models.Genre], error)
	TrendingBooks(ctx context.Context, limit int) ([]models.Book, error)
	GetBook(ctx context.Context, id models.ID) (models.Book, error)
	ListReviews(ctx context.Context, bookID models.ID, q apiclient.ListQuery) (normalize.Result[models.Review], error)
	ListQuotes(ctx context.Context, bookID models.ID, q apiclient.ListQuery) (normalize.Result[models.Quote], error)
}

// Query selects a page of books
type Query struct {
	Search   string
	GenreID  models.ID
	AuthorID models.ID
	Page     int
}

// Page is one page of the catalog view
type Page struct {
	Books      []models.Book   `json:"books"`
	Authors    []models.Author `json:"authors"`
	Genres     []models.Genre  `json:"genres"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	// TotalCount is 0 when the server did not report a total
	TotalCount int             `json:"totalCount"`
	HasNext    bool            `json:"hasNext"`
}

// BookDetail is a book with its recent reviews and quotes
type BookDetail struct {
	Book    models.Book     `json:"book"`
	Reviews []models.Review `json:"reviews"`
	Quotes  []models.Quote  `json:"quotes"`
}

// Service serves catalog views
type Service struct {
	remote   Remote
	state    *localstate.State
	pageSize int
	now      func() time.Time
	logger   *zap.Logger
}

// NewService creates a catalog service
func NewService(remote Remote, state *localstate.State, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Service{
		remote:   remote,
		state:    state,
		pageSize: pageSize,
		now:      time.Now,
		logger:   logging.WithComponent("catalog"),
	}
}

// Browse fetches a page of books together with the author and genre
// filter lists. The three requests run concurrently; a failure of any of
// them fails the page.
func (s *Service) Browse(ctx context.Context, q Query) (*Page, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}

	var (
		books   normalize.Result[models.Book]
		authors []models.Author
		genres  []models.Genre
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		books, err = s.remote.ListBooks(gctx, apiclient.BookQuery{
			Search:   q.Search,
			GenreID:  q.GenreID,
			AuthorID: q.AuthorID,
			Page:     page,
			PageSize: s.pageSize,
		})
		if err != nil {
			return fmt.Errorf("list books: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		authors, err = apiclient.WalkPages(gctx, filterPageSize, func(ctx context.Context, page, size int) (normalize.Result[models.Author], error) {
			return s.remote.ListAuthors(ctx, apiclient.ListQuery{Page: page, PageSize: size})
		})
		if err != nil {
			return fmt.Errorf("list authors: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		genres, err = apiclient.WalkPages(gctx, filterPageSize, func(ctx context.Context, page, size int) (normalize.Result[models.Genre], error) {
			return s.remote.ListGenres(ctx, apiclient.ListQuery{Page: page, PageSize: size})
		})
		if err != nil {
			return fmt.Errorf("list genres: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	if books.HasTotal {
		total = books.TotalCount
	}
	return &Page{
		Books:      nonNil(books.Items),
		Authors:    nonNil(authors),
		Genres:     nonNil(genres),
		Page:       page,
		PageSize:   s.pageSize,
		TotalCount: total,
		HasNext:    normalize.HasNextPage(len(books.Items), s.pageSize, page, total),
	}, nil
}

// Book fetches one book with its first page of reviews and quotes. Reviews
// and quotes are optional: a failure there is logged and leaves the list
// empty.
func (s *Service) Book(ctx context.Context, id models.ID) (*BookDetail, error) {
	detail := &BookDetail{Reviews: []models.Review{}, Quotes: []models.Quote{}}
	q := apiclient.ListQuery{Page: 1, PageSize: detailListSize}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		book, err := s.remote.GetBook(gctx, id)
		if err != nil {
			return fmt.Errorf("get book %s: %w", id, err)
		}
		detail.Book = book
		return nil
	})
	g.Go(func() error {
		res, err := s.remote.ListReviews(gctx, id, q)
		if err != nil {
			s.logger.Warn("Reviews unavailable", zap.String("book", id.String()), zap.Error(err))
			return nil
		}
		detail.Reviews = nonNil(res.Items)
		return nil
	})
	g.Go(func() error {
		res, err := s.remote.ListQuotes(gctx, id, q)
		if err != nil {
			s.logger.Warn("Quotes unavailable", zap.String("book", id.String()), zap.Error(err))
			return nil
		}
		detail.Quotes = nonNil(res.Items)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return detail, nil
}

// Trending returns the trending list, serving the cached copy while it is
// younger than a week. If the refresh fails a stale copy is served.
func (s *Service) Trending(ctx context.Context) ([]models.Book, error) {
	cached, ok, err := s.state.TrendingBooks(ctx)
	if err != nil {
		s.logger.Warn("Trending cache unavailable", zap.Error(err))
	}
	if ok && !cached.IsStale(s.now()) {
		return cached.Books, nil
	}
	return s.refreshTrending(ctx, cached.Books)
}

// RefreshTrending refetches the trending list regardless of its age
func (s *Service) RefreshTrending(ctx context.Context) ([]models.Book, error) {
	return s.refreshTrending(ctx, nil)
}

func (s *Service) refreshTrending(ctx context.Context, stale []models.Book) ([]models.Book, error) {
	books, err := s.remote.TrendingBooks(ctx, trendingLimit)
	if err != nil {
		if len(stale) > 0 {
			s.logger.Warn("Trending refresh failed, serving stale list", zap.Error(err))
			return stale, nil
		}
		return nil, fmt.Errorf("fetch trending books: %w", err)
	}
	books = nonNil(books)
	if err := s.state.SaveTrendingBooks(ctx, books, s.now()); err != nil {
		s.logger.Warn("Failed to cache trending books", zap.Error(err))
	}
	s.logger.Debug("Trending books refreshed", zap.Int("count", len(books)))
	return books, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
