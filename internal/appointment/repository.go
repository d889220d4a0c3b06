package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/openlegal/platform/internal/shared/database"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
)

// PostgresRepository persists appointments
type PostgresRepository struct {
	db *database.DB
}

// NewRepository creates a PostgresRepository
func NewRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const appointmentColumns = `id, type, date, description, contact_info, account_id`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.Type, &a.Date, &a.Description, &a.ContactInfo, &a.AccountID)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PostgresRepository) collect(rows pgx.Rows) ([]*Appointment, error) {
	defer rows.Close()
	items := []*Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// Create inserts a new appointment
func (r *PostgresRepository) Create(ctx context.Context, a *Appointment) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO appointments (id, type, date, description, contact_info, account_id)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.Type, a.Date, a.Description, a.ContactInfo, a.AccountID)
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// GetByAccount returns one appointment scoped to its owning account
func (r *PostgresRepository) GetByAccount(ctx context.Context, accountID, id int64) (*Appointment, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE account_id = $1 AND id = $2`,
		accountID, id)
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("appointment", id)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return a, nil
}

// ByAccount returns the appointments of an account ordered by date
func (r *PostgresRepository) ByAccount(ctx context.Context, accountID int64) ([]*Appointment, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE account_id = $1 ORDER BY date`, accountID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return r.collect(rows)
}

// ByAccountInRange returns the account's appointments with dates inside
// [start, end) ordered by date
func (r *PostgresRepository) ByAccountInRange(ctx context.Context, accountID int64, start, end time.Time) ([]*Appointment, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE account_id = $1 AND date >= $2 AND date < $3
		ORDER BY date`, accountID, start, end)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return r.collect(rows)
}

// Update replaces the mutable appointment fields
func (r *PostgresRepository) Update(ctx context.Context, a *Appointment) (*Appointment, error) {
	row := r.db.Pool.QueryRow(ctx, `
		UPDATE appointments
		SET type = $2, date = $3, description = $4, contact_info = $5
		WHERE id = $1
		RETURNING `+appointmentColumns,
		a.ID, a.Type, a.Date, a.Description, a.ContactInfo)
	updated, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("appointment", a.ID)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return updated, nil
}

// Delete removes the appointment with the given id
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return apperrors.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("appointment", id)
	}
	return nil
}
