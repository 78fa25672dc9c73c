package shelves

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
	shelves   []models.Shelf
	addErr    error
	removeErr error
	calls     []string
}

func (r *fakeRemote) ListShelves(context.Context) ([]models.Shelf, error) {
	return r.shelves, nil
}

func (r *fakeRemote) CreateShelf(_ context.Context, name string) (models.Shelf, error) {
	r.calls = append(r.calls, "create:"+name)
	shelf := models.Shelf{ID: models.ID("new-" + name), Name: name}
	r.shelves = append(r.shelves, shelf)
	return shelf, nil
}

func (r *fakeRemote) AddToShelf(_ context.Context, shelfID, bookID models.ID) error {
	r.calls = append(r.calls, "add:"+shelfID.String()+":"+bookID.String())
	return r.addErr
}

func (r *fakeRemote) RemoveFromShelf(_ context.Context, shelfID, bookID models.ID) error {
	r.calls = append(r.calls, "remove:"+shelfID.String()+":"+bookID.String())
	return r.removeErr
}

func newService(remote *fakeRemote) (*Service, *localstate.State) {
	state := localstate.New(store.NewMemoryStore())
	return NewService(remote, state), state
}

func TestListIncludesDefaultShelves(t *testing.T) {
	remote := &fakeRemote{shelves: []models.Shelf{
		{ID: "9", Name: "Favourites"},
		{ID: "3", Name: "read", Books: []models.Book{{ID: "b1"}, {ID: "b2"}}},
	}}
	svc, state := newService(remote)

	shelves, err := svc.List(context.Background())
	require.NoError(t, err)

	names := make([]string, len(shelves))
	for i, s := range shelves {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"Want to Read", "Currently Reading", "read", "Favourites"}, names)
	assert.True(t, shelves[0].IsDefault)
	assert.NotNil(t, shelves[0].Books)
	assert.False(t, shelves[3].IsDefault)

	n, err := state.BooksRead(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMove(t *testing.T) {
	shelves := []models.Shelf{
		{ID: "1", Name: models.ShelfWantToRead, Books: []models.Book{{ID: "b1"}}},
		{ID: "2", Name: models.ShelfCurrentlyReading},
		{ID: "3", Name: models.ShelfRead},
	}

	tests := []struct {
		name      string
		to        string
		removeErr error
		addErr    error
		wantStep  string
		wantCalls []string
		wantRead  int
	}{
		{
			name:      "moves by name",
			to:        "currently reading",
			wantCalls: []string{"remove:1:b1", "add:2:b1"},
		},
		{
			name:      "landing on read counts the book",
			to:        models.ShelfRead,
			wantCalls: []string{"remove:1:b1", "add:3:b1"},
			wantRead:  1,
		},
		{
			name:      "remove failure stops before add",
			to:        "2",
			removeErr: errors.New("offline"),
			wantStep:  StepRemove,
			wantCalls: []string{"remove:1:b1"},
		},
		{
			name:      "add failure is not compensated",
			to:        "2",
			addErr:    errors.New("offline"),
			wantStep:  StepAdd,
			wantCalls: []string{"remove:1:b1", "add:2:b1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &fakeRemote{shelves: shelves, removeErr: tt.removeErr, addErr: tt.addErr}
			svc, state := newService(remote)

			err := svc.Move(context.Background(), "b1", models.ShelfWantToRead, tt.to)
			if tt.wantStep == "" {
				require.NoError(t, err)
			} else {
				var moveErr *MoveError
				require.ErrorAs(t, err, &moveErr)
				assert.Equal(t, tt.wantStep, moveErr.Step)
			}
			assert.Equal(t, tt.wantCalls, remote.calls)

			n, err := state.BooksRead(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantRead, n)
		})
	}
}

func TestMoveUnknownSourceShelf(t *testing.T) {
	svc, _ := newService(&fakeRemote{})

	err := svc.Move(context.Background(), "b1", "Nope", models.ShelfRead)
	var moveErr *MoveError
	require.ErrorAs(t, err, &moveErr)
	assert.Equal(t, StepRemove, moveErr.Step)
	assert.ErrorIs(t, err, ErrShelfNotFound)
}

func TestAddCreatesMissingDefaultShelf(t *testing.T) {
	remote := &fakeRemote{}
	svc, state := newService(remote)

	require.NoError(t, svc.Add(context.Background(), "READ", "b7"))
	assert.Equal(t, []string{"create:Read", "add:new-Read:b7"}, remote.calls)

	n, err := state.BooksRead(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAddUnknownCustomShelf(t *testing.T) {
	svc, _ := newService(&fakeRemote{})
	err := svc.Add(context.Background(), "Summer 2024", "b1")
	assert.ErrorIs(t, err, ErrShelfNotFound)
}

func TestRemove(t *testing.T) {
	remote := &fakeRemote{shelves: []models.Shelf{{ID: "5", Name: "Favourites"}}}
	svc, _ := newService(remote)

	require.NoError(t, svc.Remove(context.Background(), "favourites", "b1"))
	assert.Equal(t, []string{"remove:5:b1"}, remote.calls)
}
