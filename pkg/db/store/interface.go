package store

import (
	"context"
	"errors"
	"time"

	"github.com/mwantia/mystrava/pkg/db/migrations"
	"github.com/mwantia/mystrava/pkg/db/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// MetadataStore defines the interface for database operations
type MetadataStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Rollback(ctx context.Context) error
	MigrationStatus(ctx context.Context) ([]migrations.MigrationStatus, error)
	Health(ctx context.Context) error

	// Activity operations
	UpsertActivities(ctx context.Context, activities []models.Activity) error
	GetActivity(ctx context.Context, id int64) (*models.Activity, error)
	ListActivities(ctx context.Context) ([]models.Activity, error)
	LatestActivityStart(ctx context.Context) (time.Time, bool, error)
	DeleteActivity(ctx context.Context, id int64) error
	DeleteAllActivities(ctx context.Context) error

	// Gear operations
	ReplaceGears(ctx context.Context, gears []models.Gear) error
	ListGears(ctx context.Context) ([]models.Gear, error)

	// Token operations
	GetToken(ctx context.Context) (*models.Token, error)
	SaveToken(ctx context.Context, token *models.Token) error

	// Sync run operations
	CreateSyncRun(ctx context.Context, run *models.SyncRun) error
	ListSyncRuns(ctx context.Context, limit int) ([]models.SyncRun, error)
}
