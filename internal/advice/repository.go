package advice

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/openlegal/platform/internal/shared/database"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
)

// PostgresRepository persists legal advice entries
type PostgresRepository struct {
	db *database.DB
}

// NewRepository creates a PostgresRepository
func NewRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const adviceColumns = `id, topic, content`

func scanAdvice(row pgx.Row) (*LegalAdvice, error) {
	var a LegalAdvice
	if err := row.Scan(&a.ID, &a.Topic, &a.Content); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new advice entry
func (r *PostgresRepository) Create(ctx context.Context, a *LegalAdvice) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO legal_advice (id, topic, content)
		VALUES ($1, $2, $3)`,
		a.ID, a.Topic, a.Content)
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// GetByID returns the advice entry with the given id
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*LegalAdvice, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+adviceColumns+` FROM legal_advice WHERE id = $1`, id)
	a, err := scanAdvice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("legal advice", id)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return a, nil
}

// List returns all advice entries ordered by id
func (r *PostgresRepository) List(ctx context.Context) ([]*LegalAdvice, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+adviceColumns+` FROM legal_advice ORDER BY id`)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	defer rows.Close()
	items := []*LegalAdvice{}
	for rows.Next() {
		a, err := scanAdvice(rows)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// Update replaces the topic and content of an advice entry
func (r *PostgresRepository) Update(ctx context.Context, a *LegalAdvice) (*LegalAdvice, error) {
	row := r.db.Pool.QueryRow(ctx, `
		UPDATE legal_advice SET topic = $2, content = $3 WHERE id = $1
		RETURNING `+adviceColumns,
		a.ID, a.Topic, a.Content)
	updated, err := scanAdvice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("legal advice", a.ID)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return updated, nil
}

// Delete removes the advice entry with the given id
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM legal_advice WHERE id = $1`, id)
	if err != nil {
		return apperrors.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("legal advice", id)
	}
	return nil
}
