package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookverse/bookverse/internal/localstate"
	"github.com/bookverse/bookverse/internal/models"
	"github.com/bookverse/bookverse/internal/store"
)

type fakeRemote struct {
	items []models.Notification
	err   error
}

func (r *fakeRemote) ListNotifications(context.Context) ([]models.Notification, error) {
	return r.items, r.err
}

func ids(ns []models.Notification) []models.ID {
	out := make([]models.ID, len(ns))
	for i, n := range ns {
		out[i] = n.ID
	}
	return out
}

func TestDismissHidesPerUser(t *testing.T) {
	ctx := context.Background()
	state := localstate.New(store.NewMemoryStore())
	remote := &fakeRemote{items: []models.Notification{{ID: "1"}, {ID: "2"}, {ID: "3"}}}

	alice := NewService(remote, state, "Alice")
	bob := NewService(remote, state, "bob")

	require.NoError(t, alice.Dismiss(ctx, "2"))

	got, err := alice.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.ID{"1", "3"}, ids(got))

	got, err = bob.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3, "dismissals are stored per user")

	// usernames are matched case-insensitively
	got, err = NewService(remote, state, "alice").List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestDismissAll(t *testing.T) {
	ctx := context.Background()
	state := localstate.New(store.NewMemoryStore())
	remote := &fakeRemote{items: []models.Notification{{ID: "1"}, {ID: "2"}}}
	svc := NewService(remote, state, "alice")

	require.NoError(t, svc.Dismiss(ctx, "1"))
	n, err := svc.DismissAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	remote.items = append(remote.items, models.Notification{ID: "3"})
	got, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.ID{"3"}, ids(got))
}

func TestListError(t *testing.T) {
	svc := NewService(&fakeRemote{err: errors.New("offline")}, localstate.New(store.NewMemoryStore()), "alice")
	_, err := svc.List(context.Background())
	assert.Error(t, err)
}
