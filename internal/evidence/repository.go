package evidence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/openlegal/platform/internal/shared/database"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
)

// PostgresRepository persists evidence records
type PostgresRepository struct {
	db *database.DB
}

// NewRepository creates a PostgresRepository
func NewRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const evidenceColumns = `id, event_id, evidence_type, evidence_name, file_path`

func scanEvidence(row pgx.Row) (*Evidence, error) {
	var e Evidence
	err := row.Scan(&e.ID, &e.EventID, &e.EvidenceType, &e.EvidenceName, &e.FilePath)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PostgresRepository) collect(rows pgx.Rows) ([]*Evidence, error) {
	defer rows.Close()
	items := []*Evidence{}
	for rows.Next() {
		e, err := scanEvidence(rows)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		items = append(items, e)
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

// Create inserts a new evidence record
func (r *PostgresRepository) Create(ctx context.Context, e *Evidence) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO evidence (id, event_id, evidence_type, evidence_name, file_path)
		VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.EventID, e.EvidenceType, e.EvidenceName, e.FilePath)
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// GetByID returns the evidence with the given id
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Evidence, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+evidenceColumns+` FROM evidence WHERE id = $1`, id)
	e, err := scanEvidence(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("evidence", id)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return e, nil
}

// ByEvent returns the evidence attached to an event
func (r *PostgresRepository) ByEvent(ctx context.Context, eventID int64) ([]*Evidence, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+evidenceColumns+` FROM evidence WHERE event_id = $1 ORDER BY id`, eventID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return r.collect(rows)
}

// ByProcess returns the evidence attached to any event of a process
func (r *PostgresRepository) ByProcess(ctx context.Context, processID int64) ([]*Evidence, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT e.id, e.event_id, e.evidence_type, e.evidence_name, e.file_path
		FROM evidence e
		JOIN events ev ON ev.id = e.event_id
		WHERE ev.process_id = $1
		ORDER BY e.id`, processID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return r.collect(rows)
}

// Update replaces the mutable evidence fields
func (r *PostgresRepository) Update(ctx context.Context, e *Evidence) (*Evidence, error) {
	row := r.db.Pool.QueryRow(ctx, `
		UPDATE evidence
		SET evidence_type = $2, evidence_name = $3, file_path = $4
		WHERE id = $1
		RETURNING `+evidenceColumns,
		e.ID, e.EvidenceType, e.EvidenceName, e.FilePath)
	updated, err := scanEvidence(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("evidence", e.ID)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return updated, nil
}

// Delete removes the evidence with the given id
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM evidence WHERE id = $1`, id)
	if err != nil {
		return apperrors.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("evidence", id)
	}
	return nil
}
