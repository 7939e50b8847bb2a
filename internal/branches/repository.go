package branches

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ekid-reports/ekid/internal/platform/db"
	"github.com/ekid-reports/ekid/internal/shared"
)

// Repository provides PostgreSQL backed persistence for branches.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all branches ordered by kind then name.
func (r *Repository) List(ctx context.Context) ([]Branch, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, kind, created_at
		FROM branches
		ORDER BY kind, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Branch
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Kind, &b.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// Get fetches one branch by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Branch, error) {
	var b Branch
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, kind, created_at
		FROM branches
		WHERE id = $1`, id).Scan(&b.ID, &b.Name, &b.Kind, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Create inserts a branch and returns it.
func (r *Repository) Create(ctx context.Context, in CreateBranchInput) (*Branch, error) {
	var b Branch
	err := r.pool.QueryRow(ctx, `
		INSERT INTO branches (name, kind)
		VALUES ($1, $2)
		RETURNING id, name, kind, created_at`,
		in.Name, in.Kind,
	).Scan(&b.ID, &b.Name, &b.Kind, &b.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, shared.ErrConflict
		}
		return nil, err
	}
	return &b, nil
}
