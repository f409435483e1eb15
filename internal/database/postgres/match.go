package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flatground/skateline/internal/domain"
)

// MatchRepository implements repository.Match against PostgreSQL.
// The match record round-trips as a whole row; the JSONB columns carry the
// per-player maps and the append-only move log.
type MatchRepository struct {
	db *pgxpool.Pool
}

// NewMatchRepository creates a new MatchRepository
func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

const matchColumns = `id, player_a, player_b, status, phase, current_actor_id,
	attacker_id, defender_id, round, letters,
	current_trick_name, current_evidence_ref, response_evidence_ref,
	votes, dispute_used, deadline_at, created_at, updated_at,
	completed_at, winner_id, forfeit_cause, moves, version`

func scanMatch(row pgx.Row) (*domain.Match, error) {
	var r matchRowData
	var phase, forfeitCause string
	err := row.Scan(
		&r.match.ID, &r.match.PlayerA, &r.match.PlayerB, &r.match.Status, &phase,
		&r.match.CurrentActorID, &r.match.AttackerID, &r.match.DefenderID,
		&r.match.Round, &r.letters,
		&r.match.CurrentTrickName, &r.match.CurrentEvidenceRef, &r.match.ResponseEvidenceRef,
		&r.votes, &r.disputeUsed, &r.match.DeadlineAt, &r.match.CreatedAt, &r.match.UpdatedAt,
		&r.match.CompletedAt, &r.match.WinnerID, &forfeitCause, &r.moves, &r.match.Version,
	)
	if err != nil {
		return nil, err
	}
	r.match.Phase = domain.MatchPhase(phase)
	r.match.ForfeitCause = domain.ForfeitCause(forfeitCause)
	return r.hydrate()
}

// CreateMatch inserts a new match row
func (r *MatchRepository) CreateMatch(ctx context.Context, m *domain.Match) error {
	letters, err := marshalUUIDMap(m.Letters)
	if err != nil {
		return err
	}
	votes, err := marshalUUIDMap(m.Votes)
	if err != nil {
		return err
	}
	disputeUsed, err := marshalUUIDMap(m.DisputeUsed)
	if err != nil {
		return err
	}
	moves, err := domain.MarshalMoves(m.Moves)
	if err != nil {
		return fmt.Errorf("failed to marshal moves: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO matches (`+matchColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
		m.ID, m.PlayerA, m.PlayerB, m.Status, string(m.Phase), m.CurrentActorID,
		m.AttackerID, m.DefenderID, m.Round, letters,
		m.CurrentTrickName, m.CurrentEvidenceRef, m.ResponseEvidenceRef,
		votes, disputeUsed, m.DeadlineAt, m.CreatedAt, m.UpdatedAt,
		m.CompletedAt, m.WinnerID, string(m.ForfeitCause), moves, m.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

// GetMatch fetches one match by id
func (r *MatchRepository) GetMatch(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	row := r.db.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	m, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

// UpdateMatchCAS writes the full record conditioned on the stored version.
// The version increments in the same statement; zero rows affected means the
// record moved underneath the caller.
func (r *MatchRepository) UpdateMatchCAS(ctx context.Context, m *domain.Match, expectedVersion int64) error {
	return updateMatchCASExec(ctx, r.db, m, expectedVersion)
}

// execer is the subset of pgxpool.Pool and pgx.Tx the CAS write needs, so the
// same statement serves both the plain update and the dispute transaction.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func updateMatchCASExec(ctx context.Context, db execer, m *domain.Match, expectedVersion int64) error {
	letters, err := marshalUUIDMap(m.Letters)
	if err != nil {
		return err
	}
	votes, err := marshalUUIDMap(m.Votes)
	if err != nil {
		return err
	}
	disputeUsed, err := marshalUUIDMap(m.DisputeUsed)
	if err != nil {
		return err
	}
	moves, err := domain.MarshalMoves(m.Moves)
	if err != nil {
		return fmt.Errorf("failed to marshal moves: %w", err)
	}

	tag, err := db.Exec(ctx, `
		UPDATE matches SET
			status = $3, phase = $4, current_actor_id = $5,
			attacker_id = $6, defender_id = $7, round = $8, letters = $9,
			current_trick_name = $10, current_evidence_ref = $11, response_evidence_ref = $12,
			votes = $13, dispute_used = $14, deadline_at = $15, updated_at = $16,
			completed_at = $17, winner_id = $18, forfeit_cause = $19, moves = $20,
			version = version + 1
		WHERE id = $1 AND version = $2`,
		m.ID, expectedVersion,
		m.Status, string(m.Phase), m.CurrentActorID,
		m.AttackerID, m.DefenderID, m.Round, letters,
		m.CurrentTrickName, m.CurrentEvidenceRef, m.ResponseEvidenceRef,
		votes, disputeUsed, m.DeadlineAt, m.UpdatedAt,
		m.CompletedAt, m.WinnerID, string(m.ForfeitCause), moves,
	)
	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the version moved or the row is gone; the caller re-reads
		// and finds out which.
		return domain.ErrConcurrencyConflict
	}
	return nil
}

// GetMatchesForPlayer returns the player's matches, newest first
func (r *MatchRepository) GetMatchesForPlayer(ctx context.Context, playerID uuid.UUID, limit int) ([]domain.Match, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE player_a = $1 OR player_b = $1
		ORDER BY created_at DESC
		LIMIT $2`, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for player: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

// ListExpiredActive returns active matches whose deadline has elapsed
func (r *MatchRepository) ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]domain.Match, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE status = $1 AND deadline_at < $2
		ORDER BY deadline_at
		LIMIT $3`, domain.MatchStatusActive, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired matches: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

// ListDeadlineApproaching returns active matches whose deadline falls inside
// the warning lead
func (r *MatchRepository) ListDeadlineApproaching(ctx context.Context, now time.Time, within time.Duration, limit int) ([]domain.Match, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE status = $1 AND deadline_at > $2 AND deadline_at <= $3
		ORDER BY deadline_at
		LIMIT $4`, domain.MatchStatusActive, now, now.Add(within), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list approaching deadlines: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

// ListStalledActive returns active matches created before the staleness horizon
func (r *MatchRepository) ListStalledActive(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Match, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at
		LIMIT $3`, domain.MatchStatusActive, createdBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stalled matches: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

// ListExpiredPending returns unanswered challenges past their deadline
func (r *MatchRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]domain.Match, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE status = $1 AND deadline_at < $2
		ORDER BY deadline_at
		LIMIT $3`, domain.MatchStatusPending, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired challenges: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func collectMatches(rows pgx.Rows) ([]domain.Match, error) {
	matches := []domain.Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate match rows: %w", err)
	}
	return matches, nil
}
