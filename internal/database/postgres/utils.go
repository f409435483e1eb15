package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/flatground/skateline/internal/domain"
	"github.com/flatground/skateline/internal/logger"
)

// SafeRollback rolls back a transaction and logs any error that isn't ErrTxClosed
func SafeRollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.FromContext(ctx).Error("Failed to rollback transaction", "error", err)
	}
}

// marshalUUIDMap serializes map-keyed-by-player JSONB columns.
func marshalUUIDMap[V any](m map[uuid.UUID]V) ([]byte, error) {
	if m == nil {
		m = map[uuid.UUID]V{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal map column: %w", err)
	}
	return data, nil
}

func unmarshalUUIDMap[V any](data []byte) (map[uuid.UUID]V, error) {
	m := map[uuid.UUID]V{}
	if len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal map column: %w", err)
	}
	return m, nil
}

// matchRowData is the flat scan target for one matches row.
type matchRowData struct {
	letters     []byte
	votes       []byte
	disputeUsed []byte
	moves       []byte
	match       domain.Match
}

func (r *matchRowData) hydrate() (*domain.Match, error) {
	var err error
	if r.match.Letters, err = unmarshalUUIDMap[string](r.letters); err != nil {
		return nil, err
	}
	if r.match.Votes, err = unmarshalUUIDMap[domain.Verdict](r.votes); err != nil {
		return nil, err
	}
	if r.match.DisputeUsed, err = unmarshalUUIDMap[bool](r.disputeUsed); err != nil {
		return nil, err
	}
	if r.match.Moves, err = domain.UnmarshalMoves(r.moves); err != nil {
		return nil, fmt.Errorf("failed to unmarshal moves: %w", err)
	}
	m := r.match
	return &m, nil
}
