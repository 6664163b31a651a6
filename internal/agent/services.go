package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/mwantia/fabric/pkg/container"
	resync "github.com/mwantia/mystrava/internal/sync"
	"github.com/mwantia/mystrava/pkg/db/store"
	"github.com/mwantia/mystrava/pkg/log"
	"github.com/mwantia/mystrava/pkg/strava"
	"github.com/mwantia/mystrava/pkg/view"
)

func (msa *MyStravaAgent) setupServices(ctx context.Context) error {
	errs := container.Errors{}

	msa.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerServiceImpl](msa.sc,
		container.With[log.LoggerService](),
		container.WithInstance(msa.log)))
	if err := errs.Errors(); err != nil {
		return err
	}

	st, err := msa.openStore(ctx)
	if err != nil {
		return err
	}
	msa.store = st

	msa.log.Debug("Registering 'MetadataStore'...")
	errs.Add(container.Register[store.SQLiteStore](msa.sc,
		container.With[store.MetadataStore](),
		container.WithInstance(st)))

	client, err := msa.newClient(ctx, st)
	if err != nil {
		return err
	}
	msa.client = client

	msa.log.Debug("Registering 'Upstream'...")
	errs.Add(container.Register[strava.Client](msa.sc,
		container.With[resync.Upstream](),
		container.WithInstance(client)))

	syncLog, err := log.ResolveLogger(ctx, msa.sc, "sync")
	if err != nil {
		return err
	}
	msa.service = resync.NewService(st, client, syncLog, resync.Config{
		WithDescription: msa.cfg.Strava.WithDescription,
	})

	msa.log.Debug("Registering 'Source'...")
	errs.Add(container.Register[resync.Service](msa.sc,
		container.With[view.Source](),
		container.WithInstance(msa.service)))

	viewLog, err := log.ResolveLogger(ctx, msa.sc, "view")
	if err != nil {
		return err
	}
	msa.view = view.NewController(msa.service, view.WithLogger(viewLog))

	return errs.Errors()
}

func (msa *MyStravaAgent) openStore(ctx context.Context) (*store.SQLiteStore, error) {
	dbLog, err := log.ResolveLogger(ctx, msa.sc, "db")
	if err != nil {
		return nil, err
	}

	st, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path:   msa.cfg.Metadata.SQLite.Path,
		Logger: log.NewGormLogger(dbLog, msa.cfg.Log.Level),
	})
	if err != nil {
		return nil, err
	}

	if err := st.Connect(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to connect to metadata store: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to migrate metadata store: %w", err)
	}

	dbLog.Info("Opened metadata store at '%s'", msa.cfg.Metadata.SQLite.Path)
	return st, nil
}

func (msa *MyStravaAgent) newClient(ctx context.Context, st store.MetadataStore) (*strava.Client, error) {
	httpLog, err := log.ResolveLogger(ctx, msa.sc, "strava")
	if err != nil {
		return nil, err
	}

	cfg := msa.cfg.Strava
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		timeout = 30 * time.Second
	}

	token, err := resync.LoadToken(ctx, st, strava.Token{
		AccessToken:  cfg.AccessToken,
		RefreshToken: cfg.RefreshToken,
		ExpiresAt:    cfg.ExpiresAt,
	})
	if err != nil {
		return nil, err
	}

	client := strava.NewClient(strava.Config{
		BaseURL:      cfg.BaseURL,
		AuthURL:      cfg.AuthURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		PerPage:      cfg.PerPage,
		RetryMax:     cfg.RetryMax,
		Timeout:      timeout,
		Logger:       log.NewLeveledLogger(httpLog),
	}, token)
	client.OnTokenRefresh(resync.PersistToken(st))

	return client, nil
}
