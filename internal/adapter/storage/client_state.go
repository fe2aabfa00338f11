package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/niksmo/souvenir-shop/internal/core/port"
	"github.com/niksmo/souvenir-shop/pkg/retry"
)

var _ port.KVStorage = (*ClientStateRepository)(nil)

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// A ClientStateRepository stores snapshots in the client_state table,
// one row per (scope, key).
type ClientStateRepository struct {
	db       pgxQuerier
	scope    string
	retryCfg retry.RetryConfig
}

func NewClientStateRepository(
	db pgxQuerier, scope string,
) ClientStateRepository {
	return ClientStateRepository{
		db:    db,
		scope: scope,
		retryCfg: retry.RetryConfig{
			MaxAttempts: 3,
			Backoff:     retry.LineareBackoff(50 * time.Millisecond),
			ShouldRetry: shouldRetry,
		},
	}
}

func (r ClientStateRepository) Get(
	ctx context.Context, key string,
) ([]byte, bool, error) {
	const op = "ClientStateRepository.Get"

	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT value FROM client_state
		WHERE scope = $1 AND key = $2;`

	var v []byte
	err := r.db.QueryRow(ctx, query, r.scope, key).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return v, true, nil
}

func (r ClientStateRepository) Set(
	ctx context.Context, key string, v []byte,
) error {
	const op = "ClientStateRepository.Set"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `
		INSERT INTO client_state (scope, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (scope, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at;`

	err := retry.Do(ctx, r.retryCfg, func() error {
		_, err := r.db.Exec(ctx, query, r.scope, key, v)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func shouldRetry(err error) bool {
	return pgconn.SafeToRetry(err) || pgconn.Timeout(err)
}
