package event

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/openlegal/platform/internal/process"
	"github.com/openlegal/platform/internal/shared/database"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
)

// PostgresRepository persists timeline events
type PostgresRepository struct {
	db *database.DB
}

// NewRepository creates a PostgresRepository
func NewRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const eventColumns = `id, process_id, order_index, name, description, date_start, date_end`

func scanEvent(row pgx.Row) (*Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.ProcessID, &e.OrderIndex, &e.Name,
		&e.Description, &e.DateStart, &e.DateEnd)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PostgresRepository) collect(rows pgx.Rows) ([]*Event, error) {
	defer rows.Close()
	events := []*Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ProcessExists reports whether the referenced process exists
func (r *PostgresRepository) ProcessExists(ctx context.Context, processID int64) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM processes WHERE id = $1)`, processID).Scan(&exists)
	if err != nil {
		return false, apperrors.Internal(err)
	}
	return exists, nil
}

// Create inserts a new event
func (r *PostgresRepository) Create(ctx context.Context, e *Event) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO events (id, process_id, order_index, name, description, date_start, date_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.ProcessID, e.OrderIndex, e.Name, e.Description, e.DateStart, e.DateEnd)
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// GetByID returns the event with the given id
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Event, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	e, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("event", id)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return e, nil
}

// List returns all events ordered by id
func (r *PostgresRepository) List(ctx context.Context) ([]*Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY id`)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return r.collect(rows)
}

// ByProcess returns the events of a process ordered by order index
func (r *PostgresRepository) ByProcess(ctx context.Context, processID int64) ([]*Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE process_id = $1 ORDER BY order_index`, processID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return r.collect(rows)
}

// ByProcessDateOrdered returns the events of a process ordered by start date
func (r *PostgresRepository) ByProcessDateOrdered(ctx context.Context, processID int64, descending bool) ([]*Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE process_id = $1 ORDER BY date_start`
	if descending {
		query += ` DESC`
	}
	rows, err := r.db.Pool.Query(ctx, query, processID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return r.collect(rows)
}

// ByDateRange returns events starting inside the range
func (r *PostgresRepository) ByDateRange(ctx context.Context, start, end time.Time) ([]*Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE date_start >= $1 AND date_start <= $2 ORDER BY date_start`,
		start, end)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return r.collect(rows)
}

// ParentProcess returns the process an event belongs to
func (r *PostgresRepository) ParentProcess(ctx context.Context, eventID int64) (*process.Process, error) {
	e, err := r.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	row := r.db.Pool.QueryRow(ctx, `
		SELECT id, title, offense, canton, province, client_gender, client_age,
			account_id, process_status, start_date, end_date, last_update,
			process_number, process_type, process_description
		FROM processes WHERE id = $1`, e.ProcessID)
	var p process.Process
	err = row.Scan(&p.ID, &p.Title, &p.Offense, &p.Canton, &p.Province,
		&p.ClientGender, &p.ClientAge, &p.AccountID, &p.ProcessStatus,
		&p.StartDate, &p.EndDate, &p.LastUpdate, &p.ProcessNumber,
		&p.ProcessType, &p.ProcessDescription)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("process for event", eventID)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &p, nil
}

// Update replaces the mutable event fields
func (r *PostgresRepository) Update(ctx context.Context, e *Event) (*Event, error) {
	row := r.db.Pool.QueryRow(ctx, `
		UPDATE events
		SET order_index = $2, name = $3, description = $4, date_start = $5, date_end = $6
		WHERE id = $1
		RETURNING `+eventColumns,
		e.ID, e.OrderIndex, e.Name, e.Description, e.DateStart, e.DateEnd)
	updated, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("event", e.ID)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return updated, nil
}

// Delete removes the event with the given id
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return apperrors.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("event", id)
	}
	return nil
}
