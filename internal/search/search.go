// Package search runs catalog and people searches, debounced so that a
// query typed one keystroke at a time issues a single request.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bookverse/bookverse/internal/apiclient"
	"github.com/bookverse/bookverse/internal/models"
	"github.com/bookverse/bookverse/internal/normalize"
	"github.com/bookverse/bookverse/pkg/logging"
)

// Mode selects what a search looks for
type Mode string

// Search modes
const (
	ModeBooks   Mode = "books"
	ModeUsers   Mode = "users"
	ModeAuthors Mode = "authors"
)

// ParseMode validates a mode name; empty means books
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeBooks, nil
	case ModeBooks, ModeUsers, ModeAuthors:
		return m, nil
	}
	return "", fmt.Errorf("unknown search mode %q", s)
}

// Remote is the subset of the BookVerse API searches use
type Remote interface {
	ListBooks(ctx context.Context, q apiclient.BookQuery) (normalize.Result[models.Book], error)
	ListUsers(ctx context.Context, q apiclient.ListQuery) (normalize.Result[models.User], error)
	ListAuthors(ctx context.Context, q apiclient.ListQuery) (normalize.Result[models.Author], error)
}

// Query is one search request
type Query struct {
	Mode Mode
	Text string
}

// Result holds the matches of one query. Only the slice matching the
// query mode is set.
type Result struct {
	Query   Query           `json:"query"`
	Books   []models.Book   `json:"books,omitempty"`
	Users   []models.User   `json:"users,omitempty"`
	Authors []models.Author `json:"authors,omitempty"`
	Err     error           `json:"-"`
}

// Searcher issues searches against the remote API
type Searcher struct {
	remote   Remote
	pageSize int
	logger   *zap.Logger

	debouncer *Debouncer[Query]
	onResult  func(Result)

	mu     sync.Mutex
	cancel context.CancelFunc // aborts the in-flight debounced request
	base   context.Context
	stop   context.CancelFunc
}

// NewSearcher creates a searcher. Debounced results from Type are passed
// to onResult, which may be nil when only Search is used.
func NewSearcher(remote Remote, pageSize int, delay time.Duration, onResult func(Result)) *Searcher {
	base, stop := context.WithCancel(context.Background())
	s := &Searcher{
		remote:   remote,
		pageSize: pageSize,
		logger:   logging.WithComponent("search"),
		onResult: onResult,
		base:     base,
		stop:     stop,
	}
	s.debouncer = NewDebouncer(delay, s.fire)
	return s
}

// Search runs a query immediately. Blank text returns an empty result
// without a request.
func (s *Searcher) Search(ctx context.Context, q Query) (Result, error) {
	q.Text = strings.TrimSpace(q.Text)
	res := Result{Query: q}
	if q.Text == "" {
		return res, nil
	}

	switch q.Mode {
	case ModeUsers:
		r, err := s.remote.ListUsers(ctx, apiclient.ListQuery{Search: q.Text, Page: 1, PageSize: s.pageSize})
		if err != nil {
			return res, fmt.Errorf("search users: %w", err)
		}
		res.Users = r.Items
	case ModeAuthors:
		r, err := s.remote.ListAuthors(ctx, apiclient.ListQuery{Search: q.Text, Page: 1, PageSize: s.pageSize})
		if err != nil {
			return res, fmt.Errorf("search authors: %w", err)
		}
		res.Authors = r.Items
	default:
		r, err := s.remote.ListBooks(ctx, apiclient.BookQuery{Search: q.Text, Page: 1, PageSize: s.pageSize})
		if err != nil {
			return res, fmt.Errorf("search books: %w", err)
		}
		res.Books = r.Items
	}
	return res, nil
}

// Type records the current contents of the search box. The search runs
// once typing pauses for the debounce delay.
func (s *Searcher) Type(q Query) {
	s.debouncer.Trigger(q)
}

// Close cancels any pending or running debounced search
func (s *Searcher) Close() {
	s.stop()
	s.debouncer.Close()
}

func (s *Searcher) fire(q Query) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(s.base)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	res, err := s.Search(ctx, q)
	if err != nil {
		s.logger.Debug("Debounced search failed", zap.String("mode", string(q.Mode)), zap.Error(err))
		res.Err = err
	}
	if s.onResult != nil {
		s.onResult(res)
	}
}
