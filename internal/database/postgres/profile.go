package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flatground/skateline/internal/domain"
)

// ProfileRepository implements repository.Profile against PostgreSQL
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// AddReputationPenalty debits one permanent penalty, creating the profile row
// on first debit.
func (r *ProfileRepository) AddReputationPenalty(ctx context.Context, playerID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO profiles (player_id, reputation_penalties, updated_at)
		VALUES ($1, 1, now())
		ON CONFLICT (player_id) DO UPDATE
		SET reputation_penalties = profiles.reputation_penalties + 1,
		    updated_at = now()`, playerID)
	if err != nil {
		return fmt.Errorf("failed to add reputation penalty: %w", err)
	}
	return nil
}

// GetProfile returns the player's reputation profile. Unknown players get a
// zero-penalty profile rather than an error.
func (r *ProfileRepository) GetProfile(ctx context.Context, playerID uuid.UUID) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.QueryRow(ctx, `
		SELECT player_id, reputation_penalties, updated_at
		FROM profiles WHERE player_id = $1`, playerID).
		Scan(&p.PlayerID, &p.ReputationPenalties, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.Profile{PlayerID: playerID}, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}
