package process

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/openlegal/platform/internal/shared/database"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
)

// PostgresRepository persists legal processes
type PostgresRepository struct {
	db *database.DB
}

// NewRepository creates a PostgresRepository
func NewRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const processColumns = `id, title, offense, canton, province, client_gender,
	client_age, account_id, process_status, start_date, end_date, last_update,
	process_number, process_type, process_description`

func scanProcess(row pgx.Row) (*Process, error) {
	var p Process
	err := row.Scan(&p.ID, &p.Title, &p.Offense, &p.Canton, &p.Province,
		&p.ClientGender, &p.ClientAge, &p.AccountID, &p.ProcessStatus,
		&p.StartDate, &p.EndDate, &p.LastUpdate, &p.ProcessNumber,
		&p.ProcessType, &p.ProcessDescription)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) collect(rows pgx.Rows) ([]*Process, error) {
	defer rows.Close()
	processes := []*Process{}
	for rows.Next() {
		p, err := scanProcess(rows)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		processes = append(processes, p)
	}
	return processes, rows.Err()
}

// Create inserts a new process
func (r *PostgresRepository) Create(ctx context.Context, p *Process) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO processes (id, title, offense, canton, province, client_gender,
			client_age, account_id, process_status, start_date, end_date, last_update,
			process_number, process_type, process_description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		p.ID, p.Title, p.Offense, p.Canton, p.Province, p.ClientGender,
		p.ClientAge, p.AccountID, p.ProcessStatus, p.StartDate, p.EndDate,
		p.LastUpdate, p.ProcessNumber, p.ProcessType, p.ProcessDescription)
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// GetByID returns the process with the given id
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Process, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+processColumns+` FROM processes WHERE id = $1`, id)
	p, err := scanProcess(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("process", id)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return p, nil
}

// List returns all processes ordered by id
func (r *PostgresRepository) List(ctx context.Context) ([]*Process, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+processColumns+` FROM processes ORDER BY id`)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return r.collect(rows)
}

// Update replaces the mutable fields and stamps last_update
func (r *PostgresRepository) Update(ctx context.Context, p *Process) (*Process, error) {
	row := r.db.Pool.QueryRow(ctx, `
		UPDATE processes
		SET title = $2, offense = $3, canton = $4, province = $5,
			client_gender = $6, client_age = $7, process_status = $8,
			start_date = COALESCE($9, start_date), end_date = $10,
			last_update = $11, process_number = $12, process_type = $13,
			process_description = $14
		WHERE id = $1
		RETURNING `+processColumns,
		p.ID, p.Title, p.Offense, p.Canton, p.Province, p.ClientGender,
		p.ClientAge, p.ProcessStatus, nullableTime(p.StartDate), p.EndDate,
		p.LastUpdate, p.ProcessNumber, p.ProcessType, p.ProcessDescription)
	updated, err := scanProcess(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("process", p.ID)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return updated, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// SearchByTitle returns processes whose title contains the fragment
func (r *PostgresRepository) SearchByTitle(ctx context.Context, title string) ([]*Process, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+processColumns+` FROM processes WHERE title ILIKE '%' || $1 || '%' ORDER BY id`, title)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return r.collect(rows)
}

// SearchByProvince returns processes whose province contains the fragment
func (r *PostgresRepository) SearchByProvince(ctx context.Context, province string) ([]*Process, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+processColumns+` FROM processes WHERE province ILIKE '%' || $1 || '%' ORDER BY id`, province)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return r.collect(rows)
}

// SearchByStatus returns processes with the exact status
func (r *PostgresRepository) SearchByStatus(ctx context.Context, status string) ([]*Process, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+processColumns+` FROM processes WHERE process_status = $1 ORDER BY id`, status)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return r.collect(rows)
}

// SearchByType returns processes with the exact type
func (r *PostgresRepository) SearchByType(ctx context.Context, processType string) ([]*Process, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+processColumns+` FROM processes WHERE process_type = $1 ORDER BY id`, processType)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return r.collect(rows)
}

// SearchByLastUpdate returns processes last updated inside the range
func (r *PostgresRepository) SearchByLastUpdate(ctx context.Context, start, end time.Time) ([]*Process, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+processColumns+` FROM processes WHERE last_update >= $1 AND last_update <= $2 ORDER BY id`,
		start, end)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return r.collect(rows)
}

// SummaryEvents returns the trimmed events of a process ordered by order index
func (r *PostgresRepository) SummaryEvents(ctx context.Context, processID int64) ([]SummaryEvent, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT name, date_start, date_end FROM events
		WHERE process_id = $1 ORDER BY order_index`, processID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	defer rows.Close()

	events := []SummaryEvent{}
	for rows.Next() {
		var e SummaryEvent
		if err := rows.Scan(&e.Name, &e.DateStart, &e.DateEnd); err != nil {
			return nil, apperrors.Internal(err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
