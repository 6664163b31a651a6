package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/mwantia/mystrava/pkg/db/models"
	"github.com/mwantia/mystrava/pkg/db/store"
	"github.com/mwantia/mystrava/pkg/strava"
)

// LoadToken returns the stored token, or configured when none was stored
// yet. A stored token wins since it is the result of a later refresh.
func LoadToken(ctx context.Context, st store.MetadataStore, configured strava.Token) (strava.Token, error) {
	token, err := st.GetToken(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return configured, nil
	}
	if err != nil {
		return strava.Token{}, fmt.Errorf("failed to load token: %w", err)
	}

	return strava.Token{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.ExpiresAt,
	}, nil
}

// PersistToken returns a refresh callback saving every new token.
func PersistToken(st store.MetadataStore) func(context.Context, strava.Token) error {
	return func(ctx context.Context, token strava.Token) error {
		return st.SaveToken(ctx, &models.Token{
			ID:           1,
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			ExpiresAt:    token.ExpiresAt,
		})
	}
}
