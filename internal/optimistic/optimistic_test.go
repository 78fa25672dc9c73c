package optimistic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookverse/bookverse/internal/apiclient"
)

type counterState struct {
	value    int
	persists int
}

func (s *counterState) action(remote func(context.Context) (int, error)) Action[int] {
	var before int
	return Action[int]{
		Name: "increment",
		Apply: func() error {
			before = s.value
			s.value++
			return nil
		},
		Remote: remote,
		Reconcile: func(server int) error {
			s.value = server
			return nil
		},
		Rollback: func() { s.value = before },
		Persist: func(context.Context) error {
			s.persists++
			return nil
		},
	}
}

func TestRunCommitted(t *testing.T) {
	s := &counterState{value: 1}
	outcome, err := Run(context.Background(), s.action(func(context.Context) (int, error) {
		assert.Equal(t, 2, s.value, "local change must be applied before the remote call")
		assert.Equal(t, 1, s.persists, "local change must be persisted before the remote call")
		return 10, nil
	}))

	require.NoError(t, err)
	assert.Equal(t, Committed, outcome)
	assert.Equal(t, 10, s.value)
	assert.Equal(t, 2, s.persists)
}

func TestRunNotFoundKeepsLocalChange(t *testing.T) {
	s := &counterState{value: 1}
	outcome, err := Run(context.Background(), s.action(func(context.Context) (int, error) {
		return 0, &apiclient.APIError{Status: 404, Message: "Not Found"}
	}))

	require.NoError(t, err)
	assert.Equal(t, KeptLocal, outcome)
	assert.Equal(t, 2, s.value)
}

func TestRunHardFailureRollsBack(t *testing.T) {
	s := &counterState{value: 1}
	boom := &apiclient.APIError{Status: 500, Message: "boom"}
	outcome, err := Run(context.Background(), s.action(func(context.Context) (int, error) {
		return 0, boom
	}))

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, RolledBack, outcome)
	assert.Equal(t, 1, s.value)
	assert.Equal(t, 2, s.persists, "rollback must be persisted")
}

func TestRunCustomSoftClassifier(t *testing.T) {
	s := &counterState{value: 1}
	offline := errors.New("offline")
	a := s.action(func(context.Context) (int, error) { return 0, offline })
	a.IsSoft = func(err error) bool { return errors.Is(err, offline) }

	outcome, err := Run(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, KeptLocal, outcome)
	assert.Equal(t, 2, s.value)
}

func TestRunApplyErrorSkipsRemote(t *testing.T) {
	called := false
	outcome, err := Run(context.Background(), Action[struct{}]{
		Name:  "noop",
		Apply: func() error { return errors.New("post not found") },
		Remote: func(context.Context) (struct{}, error) {
			called = true
			return struct{}{}, nil
		},
	})

	assert.Error(t, err)
	assert.Equal(t, RolledBack, outcome)
	assert.False(t, called)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "committed", Committed.String())
	assert.Equal(t, "kept_local", KeptLocal.String())
	assert.Equal(t, "rolled_back", RolledBack.String())
}
