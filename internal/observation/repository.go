package observation

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/openlegal/platform/internal/shared/database"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
)

// PostgresRepository persists observations
type PostgresRepository struct {
	db *database.DB
}

// NewRepository creates a PostgresRepository
func NewRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const observationColumns = `id, title, content, event_id`

func scanObservation(row pgx.Row) (*Observation, error) {
	var o Observation
	if err := row.Scan(&o.ID, &o.Title, &o.Content, &o.EventID); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PostgresRepository) collect(rows pgx.Rows) ([]*Observation, error) {
	defer rows.Close()
	items := []*Observation{}
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

// EventExists reports whether the referenced event exists
func (r *PostgresRepository) EventExists(ctx context.Context, eventID int64) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, eventID).Scan(&exists)
	if err != nil {
		return false, apperrors.Internal(err)
	}
	return exists, nil
}

// Create inserts a new observation
func (r *PostgresRepository) Create(ctx context.Context, o *Observation) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO observations (id, title, content, event_id)
		VALUES ($1, $2, $3, $4)`,
		o.ID, o.Title, o.Content, o.EventID)
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// GetByID returns the observation with the given id
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Observation, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+observationColumns+` FROM observations WHERE id = $1`, id)
	o, err := scanObservation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("observation", id)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return o, nil
}

// List returns all observations ordered by id, descending when requested
func (r *PostgresRepository) List(ctx context.Context, descending bool) ([]*Observation, error) {
	query := `SELECT ` + observationColumns + ` FROM observations ORDER BY id`
	if descending {
		query += ` DESC`
	}
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return r.collect(rows)
}

// ByEvent returns the observations attached to an event
func (r *PostgresRepository) ByEvent(ctx context.Context, eventID int64) ([]*Observation, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+observationColumns+` FROM observations WHERE event_id = $1 ORDER BY id`, eventID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return r.collect(rows)
}

// Update replaces the mutable observation fields
func (r *PostgresRepository) Update(ctx context.Context, o *Observation) (*Observation, error) {
	row := r.db.Pool.QueryRow(ctx, `
		UPDATE observations SET title = $2, content = $3 WHERE id = $1
		RETURNING `+observationColumns,
		o.ID, o.Title, o.Content)
	updated, err := scanObservation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("observation", o.ID)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return updated, nil
}

// Delete removes the observation with the given id
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM observations WHERE id = $1`, id)
	if err != nil {
		return apperrors.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("observation", id)
	}
	return nil
}
