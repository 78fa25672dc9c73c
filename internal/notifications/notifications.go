// Package notifications serves the user's notification list with locally
// dismissed entries hidden.
package notifications

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bookverse/bookverse/internal/localstate"
	"github.com/bookverse/bookverse/internal/models"
	"github.com/bookverse/bookverse/pkg/logging"
)

// Remote is the subset of the BookVerse API notifications use
type Remote interface {
	ListNotifications(ctx context.Context) ([]models.Notification, error)
}

// Service serves notifications for one user
type Service struct {
	remote   Remote
	state    *localstate.State
	username string
	logger   *zap.Logger
}

// NewService creates a notification service for username. Dismissals are
// stored per user.
func NewService(remote Remote, state *localstate.State, username string) *Service {
	return &Service{
		remote:   remote,
		state:    state,
		username: username,
		logger:   logging.WithComponent("notifications").With(zap.String("user", username)),
	}
}

// List fetches notifications and drops the dismissed ones
func (s *Service) List(ctx context.Context) ([]models.Notification, error) {
	all, err := s.remote.ListNotifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	dismissed, err := s.state.DismissedNotifications(ctx, s.username)
	if err != nil {
		s.logger.Warn("Dismissed notifications unavailable", zap.Error(err))
	}
	hidden := make(map[models.ID]bool, len(dismissed))
	for _, id := range dismissed {
		hidden[models.ID(id)] = true
	}

	out := make([]models.Notification, 0, len(all))
	for _, n := range all {
		if !hidden[n.ID] {
			out = append(out, n)
		}
	}
	return out, nil
}

// Dismiss hides one notification
func (s *Service) Dismiss(ctx context.Context, id models.ID) error {
	return s.state.DismissNotifications(ctx, s.username, id.String())
}

// DismissAll hides every notification currently returned by the server
// and reports how many were newly hidden.
func (s *Service) DismissAll(ctx context.Context) (int, error) {
	visible, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(visible) == 0 {
		return 0, nil
	}
	ids := make([]string, len(visible))
	for i, n := range visible {
		ids[i] = n.ID.String()
	}
	if err := s.state.DismissNotifications(ctx, s.username, ids...); err != nil {
		return 0, err
	}
	return len(ids), nil
}
