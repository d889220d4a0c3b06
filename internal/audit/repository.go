package audit

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/openlegal/platform/internal/shared/database"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
)

// PostgresRepository persists auditory logs
type PostgresRepository struct {
	db *database.DB
}

// NewRepository creates a PostgresRepository
func NewRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const logColumns = `id, log_action, log_time, account_id, process_id`

func scanLog(row pgx.Row) (*AuditoryLog, error) {
	var l AuditoryLog
	if err := row.Scan(&l.ID, &l.LogAction, &l.LogTime, &l.AccountID, &l.ProcessID); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *PostgresRepository) collect(rows pgx.Rows) ([]*AuditoryLog, error) {
	defer rows.Close()
	items := []*AuditoryLog{}
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

// Create inserts a new auditory log
func (r *PostgresRepository) Create(ctx context.Context, l *AuditoryLog) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO auditory_logs (id, log_action, log_time, account_id, process_id)
		VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.LogAction, l.LogTime, l.AccountID, l.ProcessID)
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// GetByID returns the auditory log with the given id
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*AuditoryLog, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+logColumns+` FROM auditory_logs WHERE id = $1`, id)
	l, err := scanLog(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("auditory log", id)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return l, nil
}

// List returns all auditory logs ordered by log time
func (r *PostgresRepository) List(ctx context.Context) ([]*AuditoryLog, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+logColumns+` FROM auditory_logs ORDER BY log_time`)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return r.collect(rows)
}

// ByAccount returns the logs recorded for an account
func (r *PostgresRepository) ByAccount(ctx context.Context, accountID int64) ([]*AuditoryLog, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+logColumns+` FROM auditory_logs WHERE account_id = $1 ORDER BY log_time`, accountID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return r.collect(rows)
}

// ByProcess returns the logs recorded against a process
func (r *PostgresRepository) ByProcess(ctx context.Context, processID int64) ([]*AuditoryLog, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+logColumns+` FROM auditory_logs WHERE process_id = $1 ORDER BY log_time`, processID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return r.collect(rows)
}

// UpdateAction rewrites the action text of a log entry
func (r *PostgresRepository) UpdateAction(ctx context.Context, id int64, action string) (*AuditoryLog, error) {
	row := r.db.Pool.QueryRow(ctx, `
		UPDATE auditory_logs SET log_action = $2 WHERE id = $1
		RETURNING `+logColumns,
		id, action)
	updated, err := scanLog(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("auditory log", id)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return updated, nil
}

// Delete removes the log entry with the given id
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM auditory_logs WHERE id = $1`, id)
	if err != nil {
		return apperrors.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("auditory log", id)
	}
	return nil
}
