// Package syncer keeps the local cache warm by refreshing the feed and
// the trending list on an interval.
package syncer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bookverse/bookverse/internal/models"
	"github.com/bookverse/bookverse/pkg/logging"
)

// FeedRefresher refreshes the social feed
type FeedRefresher interface {
	Refresh(ctx context.Context) ([]models.Post, error)
}

// TrendingSource serves the trending list, refreshing it when stale
type TrendingSource interface {
	Trending(ctx context.Context) ([]models.Book, error)
}

// Sync manages the refresh loop
type Sync struct {
	feed     FeedRefresher
	trending TrendingSource
	interval time.Duration
	logger   *zap.Logger
}

// NewSync creates a new sync manager
func NewSync(feed FeedRefresher, trending TrendingSource, interval time.Duration) *Sync {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sync{
		feed:     feed,
		trending: trending,
		interval: interval,
		logger:   logging.WithComponent("syncer"),
	}
}

// Run refreshes immediately and then once per interval until ctx is done
func (s *Sync) Run(ctx context.Context) error {
	s.logger.Info("Starting sync loop", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.RunOnce(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce performs one refresh. Failures are logged and retried on the
// next tick.
func (s *Sync) RunOnce(ctx context.Context) {
	posts, err := s.feed.Refresh(ctx)
	if err != nil {
		s.logger.Error("Failed to refresh feed", zap.Error(err))
	} else {
		s.logger.Debug("Feed refreshed", zap.Int("posts", len(posts)))
	}

	if s.trending == nil {
		return
	}
	if _, err := s.trending.Trending(ctx); err != nil {
		s.logger.Error("Failed to refresh trending books", zap.Error(err))
	}
}
