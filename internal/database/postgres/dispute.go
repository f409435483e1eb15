package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flatground/skateline/internal/database"
	"github.com/flatground/skateline/internal/domain"
)

// DisputeRepository implements repository.Dispute against PostgreSQL
type DisputeRepository struct {
	db *pgxpool.Pool
}

// NewDisputeRepository creates a new DisputeRepository
func NewDisputeRepository(db *pgxpool.Pool) *DisputeRepository {
	return &DisputeRepository{db: db}
}

const disputeColumns = `id, match_id, move_id, filer_id, against_id, verdict, created_at, resolved_at`

func scanDispute(row pgx.Row) (*domain.Dispute, error) {
	var d domain.Dispute
	var verdict *string
	err := row.Scan(&d.ID, &d.MatchID, &d.MoveID, &d.FilerID, &d.AgainstID,
		&verdict, &d.CreatedAt, &d.ResolvedAt)
	if err != nil {
		return nil, err
	}
	if verdict != nil {
		v := domain.DisputeVerdict(*verdict)
		d.Verdict = &v
	}
	return &d, nil
}

// CreateDisputeWithBudget inserts the dispute row and commits the
// budget-consuming match delta in one transaction. Losing the match version
// race rolls both back, so no orphan dispute can exist.
func (r *DisputeRepository) CreateDisputeWithBudget(ctx context.Context, d *domain.Dispute, m *domain.Match, expectedVersion int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", database.ErrMsgFailedToBeginTransaction, err)
	}
	defer SafeRollback(ctx, tx)

	if err := updateMatchCASExec(ctx, tx, m, expectedVersion); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO disputes (`+disputeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.MatchID, d.MoveID, d.FilerID, d.AgainstID,
		nil, d.CreatedAt, nil,
	)
	if err != nil {
		return fmt.Errorf("failed to create dispute: %w", err)
	}

	return tx.Commit(ctx)
}

// GetDispute fetches one dispute by id
func (r *DisputeRepository) GetDispute(ctx context.Context, id uuid.UUID) (*domain.Dispute, error) {
	row := r.db.QueryRow(ctx, `SELECT `+disputeColumns+` FROM disputes WHERE id = $1`, id)
	d, err := scanDispute(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDisputeNotFound
		}
		return nil, fmt.Errorf("failed to get dispute: %w", err)
	}
	return d, nil
}

// SetVerdict writes the verdict and resolution timestamp exactly once. The
// WHERE verdict IS NULL guard makes a racing second resolution lose cleanly.
func (r *DisputeRepository) SetVerdict(ctx context.Context, id uuid.UUID, verdict domain.DisputeVerdict, resolvedAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE disputes SET verdict = $2, resolved_at = $3
		WHERE id = $1 AND verdict IS NULL`,
		id, string(verdict), resolvedAt)
	if err != nil {
		return fmt.Errorf("failed to set verdict: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetDispute(ctx, id); getErr != nil {
			return getErr
		}
		return domain.ErrDisputeAlreadyResolved
	}
	return nil
}

// GetDisputesForMatch returns a match's disputes, oldest first
func (r *DisputeRepository) GetDisputesForMatch(ctx context.Context, matchID uuid.UUID) ([]domain.Dispute, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+disputeColumns+` FROM disputes
		WHERE match_id = $1
		ORDER BY created_at`, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list disputes for match: %w", err)
	}
	defer rows.Close()

	disputes := []domain.Dispute{}
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dispute row: %w", err)
		}
		disputes = append(disputes, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dispute rows: %w", err)
	}
	return disputes, nil
}
