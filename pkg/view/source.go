package view

import (
	"context"

	"github.com/mwantia/mystrava/pkg/activity"
)

// Source is the data collaborator behind the controller: the local store for
// reads, the upstream service for synchronisation.
type Source interface {
	// Activities returns every stored activity, newest first.
	Activities(ctx context.Context) ([]activity.Activity, error)

	Gears(ctx context.Context) ([]activity.Gear, error)

	// RefreshActivity fetches one activity again from upstream and stores it.
	// It returns false when the activity no longer exists upstream.
	RefreshActivity(ctx context.Context, id int64) (activity.Activity, bool, error)

	DeleteActivity(ctx context.Context, id int64) error

	// SyncActivities pulls the activities added or changed upstream since the
	// last synchronisation and returns them.
	SyncActivities(ctx context.Context) ([]activity.Activity, error)

	// SyncGears pulls the athlete's gear and returns the full list.
	SyncGears(ctx context.Context) ([]activity.Gear, error)

	// Rebuild pulls every activity again, replacing the stored ones.
	Rebuild(ctx context.Context) error

	// ProfileImage returns the URL of the athlete profile picture.
	ProfileImage(ctx context.Context) (string, error)
}
