// Package optimistic runs a local-first mutation against the remote API:
// the change is applied and persisted before the network call, reconciled
// with the server result on success, and rolled back on a hard failure.
package optimistic

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/bookverse/bookverse/internal/apiclient"
	"github.com/bookverse/bookverse/pkg/logging"
	"github.com/bookverse/bookverse/pkg/telemetry"
)

// Outcome describes how an action finished
type Outcome int

const (
	// Committed means the server accepted the change
	Committed Outcome = iota
	// KeptLocal means the server reported the feature unavailable and the
	// optimistic change was kept
	KeptLocal
	// RolledBack means the change was reverted after a hard failure
	RolledBack
)

func (o Outcome) String() string {
	switch o {
	case Committed:
		return "committed"
	case KeptLocal:
		return "kept_local"
	case RolledBack:
		return "rolled_back"
	}
	return "unknown"
}

// Action is one optimistic mutation. Apply and Remote are required.
type Action[R any] struct {
	Name string
	// Apply makes the local change
	Apply func() error
	// Remote performs the server call
	Remote func(ctx context.Context) (R, error)
	// Reconcile folds the server result into local state
	Reconcile func(result R) error
	// Rollback reverts Apply
	Rollback func()
	// Persist writes local state to the cache; failures are logged only
	Persist func(ctx context.Context) error
	// IsSoft classifies errors that keep the local change. Defaults to
	// apiclient.IsNotFound.
	IsSoft func(err error) bool
}

var (
	metricsOnce sync.Once
	outcomes    metric.Int64Counter
)

func outcomeCounter() metric.Int64Counter {
	metricsOnce.Do(func() {
		outcomes = telemetry.Counter("bookverse_optimistic_actions_total",
			"Optimistic mutations by action and outcome")
	})
	return outcomes
}

// Run executes the action. It returns nil for Committed and KeptLocal; for
// RolledBack it returns the remote error. There is no retry.
func Run[R any](ctx context.Context, a Action[R]) (Outcome, error) {
	logger := logging.WithComponent("optimistic").With(zap.String("action", a.Name))

	if err := a.Apply(); err != nil {
		return RolledBack, err
	}
	persist(ctx, a, logger)

	result, err := a.Remote(ctx)
	if err == nil {
		if a.Reconcile != nil {
			if rerr := a.Reconcile(result); rerr != nil {
				logger.Warn("Reconcile failed, keeping optimistic state", zap.Error(rerr))
			}
			persist(ctx, a, logger)
		}
		record(ctx, a.Name, Committed)
		return Committed, nil
	}

	isSoft := a.IsSoft
	if isSoft == nil {
		isSoft = apiclient.IsNotFound
	}
	if isSoft(err) {
		logger.Info("Remote feature unavailable, keeping local change", zap.Error(err))
		record(ctx, a.Name, KeptLocal)
		return KeptLocal, nil
	}

	logger.Warn("Remote call failed, rolling back", zap.Error(err))
	if a.Rollback != nil {
		a.Rollback()
		persist(ctx, a, logger)
	}
	record(ctx, a.Name, RolledBack)
	return RolledBack, err
}

func persist[R any](ctx context.Context, a Action[R], logger *zap.Logger) {
	if a.Persist == nil {
		return
	}
	if err := a.Persist(ctx); err != nil {
		logger.Warn("Failed to persist local state", zap.Error(err))
	}
}

func record(ctx context.Context, name string, o Outcome) {
	outcomeCounter().Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", name),
		attribute.String("outcome", o.String()),
	))
}
