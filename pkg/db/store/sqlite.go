package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/mwantia/mystrava/pkg/db/migrations"
	"github.com/mwantia/mystrava/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// upsertBatchSize keeps every batch below SQLite's bound variable limit.
const upsertBatchSize = 100

// SQLiteStore implements MetadataStore using SQLite
type SQLiteStore struct {
	db   *gorm.DB
	path string
}

// DB returns the underlying GORM database instance
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path   string
	Logger logger.Interface
}

// NewSQLiteStore creates a new SQLite-backed metadata store
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: cfg.Logger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &SQLiteStore{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Connect configures the connection pool and checks the database is reachable
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(1) // SQLite only supports 1 writer
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return sqlDB.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// Cleanup closes the store when the service container shuts down.
func (s *SQLiteStore) Cleanup(ctx context.Context) error {
	return s.Close()
}

// Migrate applies every pending schema migration
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return migrations.NewMigrator(s.db).Migrate(ctx)
}

// Rollback reverts the last applied schema migration
func (s *SQLiteStore) Rollback(ctx context.Context) error {
	return migrations.NewMigrator(s.db).Rollback(ctx)
}

func (s *SQLiteStore) MigrationStatus(ctx context.Context) ([]migrations.MigrationStatus, error) {
	return migrations.NewMigrator(s.db).Status(ctx)
}

func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Activity operations

// UpsertActivities inserts activities, replacing every column of the ones that
// already exist.
func (s *SQLiteStore) UpsertActivities(ctx context.Context, activities []models.Activity) error {
	if len(activities) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(&activities, upsertBatchSize).Error
}

func (s *SQLiteStore) GetActivity(ctx context.Context, id int64) (*models.Activity, error) {
	var activity models.Activity
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&activity).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &activity, nil
}

// ListActivities returns every activity, newest first.
func (s *SQLiteStore) ListActivities(ctx context.Context) ([]models.Activity, error) {
	var activities []models.Activity
	err := s.db.WithContext(ctx).Order("start_date DESC").Order("id DESC").Find(&activities).Error
	return activities, err
}

// LatestActivityStart returns the start time of the newest stored activity.
func (s *SQLiteStore) LatestActivityStart(ctx context.Context) (time.Time, bool, error) {
	var latest models.Activity
	err := s.db.WithContext(ctx).Order("start_date DESC").First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return latest.StartDate, true, nil
}

func (s *SQLiteStore) DeleteActivity(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&models.Activity{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("activity %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) DeleteAllActivities(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("1 = 1").Delete(&models.Activity{}).Error
}

// Gear operations

// ReplaceGears swaps the stored gear for gears in one transaction.
func (s *SQLiteStore) ReplaceGears(ctx context.Context, gears []models.Gear) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Gear{}).Error; err != nil {
			return err
		}
		if len(gears) == 0 {
			return nil
		}
		return tx.Create(&gears).Error
	})
}

// ListGears returns bikes before shoes, each by name.
func (s *SQLiteStore) ListGears(ctx context.Context) ([]models.Gear, error) {
	var gears []models.Gear
	err := s.db.WithContext(ctx).Order("kind ASC").Order("name ASC").Find(&gears).Error
	return gears, err
}

// Token operations

func (s *SQLiteStore) GetToken(ctx context.Context) (*models.Token, error) {
	var token models.Token
	err := s.db.WithContext(ctx).Where("id = ?", 1).First(&token).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &token, nil
}

func (s *SQLiteStore) SaveToken(ctx context.Context, token *models.Token) error {
	token.ID = 1
	return s.db.WithContext(ctx).Save(token).Error
}

// Sync run operations

func (s *SQLiteStore) CreateSyncRun(ctx context.Context, run *models.SyncRun) error {
	return s.db.WithContext(ctx).Create(run).Error
}

// ListSyncRuns returns the most recent runs first.
func (s *SQLiteStore) ListSyncRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	var runs []models.SyncRun
	query := s.db.WithContext(ctx).Order("started_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&runs).Error
	return runs, err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
