package batches

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/batchlms/backend/internal/models"
)

// Repository handles batch persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a batches repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const batchColumns = `id, name, code, client, mode, trainer, admin, location, timing, created_at, updated_at`

func scanBatch(row pgx.Row, b *models.Batch) error {
	return row.Scan(&b.ID, &b.Name, &b.Code, &b.Client, &b.Mode, &b.Trainer, &b.Admin, &b.Location, &b.Timing, &b.CreatedAt, &b.UpdatedAt)
}

// Create inserts a new batch.
func (r *Repository) Create(ctx context.Context, b *models.Batch) error {
	const q = `INSERT INTO batches (id, name, code, client, mode, trainer, admin, location, timing)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, b.Name, b.Code, b.Client, b.Mode, b.Trainer, b.Admin, b.Location, b.Timing).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

// GetByID returns a batch by id, or (nil, nil) when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Batch, error) {
	q := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1`
	var b models.Batch
	if err := scanBatch(r.pool.QueryRow(ctx, q, id), &b); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// List returns all batches, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Batch, error) {
	q := `SELECT ` + batchColumns + ` FROM batches ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Batch
	for rows.Next() {
		var b models.Batch
		if err := scanBatch(rows, &b); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// DeleteCascade removes a batch and its meetings in one transaction; any
// failure rolls the whole thing back. Recording rows are left in place (the
// meetings FK goes NULL). Returns the number of batch rows deleted.
func (r *Repository) DeleteCascade(ctx context.Context, batchID uuid.UUID) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM meetings WHERE batch_id = $1`, batchID); err != nil {
		return 0, fmt.Errorf("delete meetings: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM batches WHERE id = $1`, batchID)
	if err != nil {
		return 0, fmt.Errorf("delete batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return tag.RowsAffected(), nil
}
