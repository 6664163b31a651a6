package models

import "time"

// Token is the OAuth token pair of the connected athlete. A single row with
// ID 1 is kept so refreshed tokens survive restarts.
type Token struct {
	ID           uint   `gorm:"primaryKey"`
	AthleteID    int64  `gorm:"index"`
	AccessToken  string `gorm:"type:text;not null"`
	RefreshToken string `gorm:"type:text;not null"`
	ExpiresAt    int64  `gorm:"not null"`

	UpdatedAt time.Time
}

const (
	SyncKindActivities = "activities"
	SyncKindGears      = "gears"
	SyncKindRebuild    = "rebuild"
	SyncKindActivity   = "activity"
)

// SyncRun records one synchronisation with upstream.
type SyncRun struct {
	ID         uint      `gorm:"primaryKey"`
	Kind       string    `gorm:"type:text;index;not null"`
	StartedAt  time.Time `gorm:"index;not null"`
	FinishedAt time.Time
	Fetched    int
	Stored     int
	Failed     int
	Error      string `gorm:"type:text"`
}
