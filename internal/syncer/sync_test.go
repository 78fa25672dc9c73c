package syncer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/bookverse/bookverse/internal/models"
)

type countingFeed struct {
	calls atomic.Int32
	err   error
}

func (f *countingFeed) Refresh(context.Context) ([]models.Post, error) {
	f.calls.Add(1)
	return nil, f.err
}

type countingTrending struct {
	calls atomic.Int32
}

func (t *countingTrending) Trending(context.Context) ([]models.Book, error) {
	t.calls.Add(1)
	return nil, nil
}

func TestRunRefreshesUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := &countingFeed{}
	tr := &countingTrending{}
	s := NewSync(f, tr, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return f.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.GreaterOrEqual(t, tr.calls.Load(), int32(3))
}

func TestRunOnceContinuesAfterFeedError(t *testing.T) {
	f := &countingFeed{err: errors.New("offline")}
	tr := &countingTrending{}
	NewSync(f, tr, 0).RunOnce(context.Background())

	assert.EqualValues(t, 1, f.calls.Load())
	assert.EqualValues(t, 1, tr.calls.Load())
}
