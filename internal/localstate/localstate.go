// Package localstate is the typed schema over the client key/value store.
// Every persisted client value is read and written here, under fixed keys.
package localstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bookverse/bookverse/internal/models"
	"github.com/bookverse/bookverse/internal/store"
	"github.com/bookverse/bookverse/pkg/logging"
)

// Storage keys
const (
	KeySocialPosts            = "socialPosts"
	KeyReportedPosts          = "reportedPosts"
	KeySavedPosts             = "savedPosts"
	KeyTrendingBooks          = "trendingBooks"
	KeyBooksRead              = "booksRead"
	keyDismissedNotifications = "dismissedNotifications:"
)

// TrendingMaxAge is how long a trending list is served before refresh
const TrendingMaxAge = 7 * 24 * time.Hour

// DismissedNotificationsKey returns the per-user dismissed notifications key
func DismissedNotificationsKey(username string) string {
	return keyDismissedNotifications + strings.ToLower(username)
}

// TrendingBooks is the cached trending list
type TrendingBooks struct {
	Books       []models.Book `json:"books"`
	RefreshedAt time.Time     `json:"refreshedAt"`
}

// IsStale reports whether the list should be refetched at now
func (t TrendingBooks) IsStale(now time.Time) bool {
	return t.RefreshedAt.IsZero() || now.Sub(t.RefreshedAt) >= TrendingMaxAge
}

// State is the typed client cache
type State struct {
	kv     store.KV
	logger *zap.Logger
	// mu serializes read-modify-write updates within this process
	mu sync.Mutex
}

// New creates a State over kv
func New(kv store.KV) *State {
	return &State{
		kv:     kv,
		logger: logging.WithComponent("localstate"),
	}
}

// KV exposes the underlying store
func (s *State) KV() store.KV {
	return s.kv
}

// ReadJSON decodes the value under key into dest. It reports false when
// the key is absent or holds corrupt data; corrupt data is logged and
// treated as empty.
func (s *State) ReadJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.Warn("Discarding corrupt cache entry", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	return true, nil
}

// WriteJSON encodes value and stores it under key
func (s *State) WriteJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Remove deletes key
func (s *State) Remove(ctx context.Context, key string) error {
	return s.kv.Delete(ctx, key)
}

func (s *State) readSet(ctx context.Context, key string) ([]string, error) {
	var ids []string
	if _, err := s.ReadJSON(ctx, key, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// addToSet appends id to the list under key unless present.
func (s *State) addToSet(ctx context.Context, key, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.readSet(ctx, key)
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	return s.WriteJSON(ctx, key, append(ids, id))
}

// ReportedPosts returns the ids of posts hidden by the user
func (s *State) ReportedPosts(ctx context.Context) ([]string, error) {
	return s.readSet(ctx, KeyReportedPosts)
}

// ReportPost records a post as reported. Reporting only hides the post
// locally.
func (s *State) ReportPost(ctx context.Context, postID string) error {
	return s.addToSet(ctx, KeyReportedPosts, postID)
}

// DismissedNotifications returns the notification ids the user dismissed
func (s *State) DismissedNotifications(ctx context.Context, username string) ([]string, error) {
	return s.readSet(ctx, DismissedNotificationsKey(username))
}

// DismissNotifications records ids as dismissed for username
func (s *State) DismissNotifications(ctx context.Context, username string, ids ...string) error {
	key := DismissedNotificationsKey(username)
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.readSet(ctx, key)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(existing))
	for _, id := range existing {
		seen[id] = true
	}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			existing = append(existing, id)
		}
	}
	return s.WriteJSON(ctx, key, existing)
}

// SavedPosts returns the ids of saved posts
func (s *State) SavedPosts(ctx context.Context) ([]string, error) {
	return s.readSet(ctx, KeySavedPosts)
}

// ToggleSavedPost saves or unsaves a post and reports the new state
func (s *State) ToggleSavedPost(ctx context.Context, postID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.readSet(ctx, KeySavedPosts)
	if err != nil {
		return false, err
	}
	for i, id := range ids {
		if id == postID {
			ids = append(ids[:i], ids[i+1:]...)
			return false, s.WriteJSON(ctx, KeySavedPosts, ids)
		}
	}
	return true, s.WriteJSON(ctx, KeySavedPosts, append(ids, postID))
}

// TrendingBooks returns the cached trending list, if any
func (s *State) TrendingBooks(ctx context.Context) (TrendingBooks, bool, error) {
	var t TrendingBooks
	ok, err := s.ReadJSON(ctx, KeyTrendingBooks, &t)
	return t, ok, err
}

// SaveTrendingBooks replaces the trending list, stamped with refreshedAt
func (s *State) SaveTrendingBooks(ctx context.Context, books []models.Book, refreshedAt time.Time) error {
	return s.WriteJSON(ctx, KeyTrendingBooks, TrendingBooks{Books: books, RefreshedAt: refreshedAt.UTC()})
}

// BooksRead returns the stored books-read counter
func (s *State) BooksRead(ctx context.Context) (int, error) {
	raw, err := s.kv.Get(ctx, KeyBooksRead)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", KeyBooksRead, err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || n < 0 {
		return 0, nil
	}
	return n, nil
}

// RecordBooksRead raises the books-read counter to n. The counter never
// decreases; the stored value is returned.
func (s *State) RecordBooksRead(ctx context.Context, n int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raiseBooksRead(ctx, func(int) int { return n })
}

// IncrementBooksRead adds one to the books-read counter
func (s *State) IncrementBooksRead(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raiseBooksRead(ctx, func(current int) int { return current + 1 })
}

func (s *State) raiseBooksRead(ctx context.Context, next func(int) int) (int, error) {
	current, err := s.BooksRead(ctx)
	if err != nil {
		return 0, err
	}
	n := next(current)
	if n <= current {
		return current, nil
	}
	if err := s.kv.Set(ctx, KeyBooksRead, []byte(strconv.Itoa(n))); err != nil {
		return current, fmt.Errorf("write %s: %w", KeyBooksRead, err)
	}
	return n, nil
}
