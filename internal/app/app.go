// Package app wires configuration into the client services shared by the
// gateway, the syncer and the CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bookverse/bookverse/internal/api"
	"github.com/bookverse/bookverse/internal/apiclient"
	"github.com/bookverse/bookverse/internal/catalog"
	"github.com/bookverse/bookverse/internal/feed"
	"github.com/bookverse/bookverse/internal/localstate"
	"github.com/bookverse/bookverse/internal/notifications"
	"github.com/bookverse/bookverse/internal/search"
	"github.com/bookverse/bookverse/internal/shelves"
	"github.com/bookverse/bookverse/internal/store"
	"github.com/bookverse/bookverse/pkg/config"
	"github.com/bookverse/bookverse/pkg/logging"
)

// App holds the wired client services
type App struct {
	KV            store.KV
	Client        *apiclient.Client
	State         *localstate.State
	Feed          *feed.Feed
	Catalog       *catalog.Service
	Search        *search.Searcher
	Shelves       *shelves.Service
	Notifications *notifications.Service
}

// New opens the configured store, creates the API client and the services
// on top of them, and loads the cached feed.
func New(ctx context.Context, cfg *config.Config, onSearch func(search.Result)) (*App, error) {
	kv, err := store.Open(&cfg.Storage, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}

	client, err := apiclient.New(&cfg.API)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	state := localstate.New(kv)
	viewer := feed.Viewer{Username: cfg.Feed.CurrentUser}
	a := &App{
		KV:            kv,
		Client:        client,
		State:         state,
		Feed:          feed.New(client, state, viewer, feed.WithPageSize(cfg.API.PageSize)),
		Catalog:       catalog.NewService(client, state, cfg.API.PageSize),
		Search:        search.NewSearcher(client, cfg.API.PageSize, cfg.Feed.SearchDebounce, onSearch),
		Shelves:       shelves.NewService(client, state),
		Notifications: notifications.NewService(client, state, cfg.Feed.CurrentUser),
	}

	if err := a.Feed.Load(ctx); err != nil {
		logging.WithComponent("app").Warn("Starting with an empty feed", zap.Error(err))
	}
	return a, nil
}

// Services returns the gateway view of the app
func (a *App) Services() api.Services {
	svc := api.Services{
		Feed:          a.Feed,
		Catalog:       a.Catalog,
		Search:        a.Search,
		Shelves:       a.Shelves,
		Notifications: a.Notifications,
		Users:         a.Client,
	}
	if hc, ok := a.KV.(api.HealthChecker); ok {
		svc.Store = hc
	}
	return svc
}

// Close releases the searcher and the store
func (a *App) Close() error {
	a.Search.Close()
	return a.KV.Close()
}
