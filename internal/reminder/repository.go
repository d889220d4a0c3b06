package reminder

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/openlegal/platform/internal/shared/database"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
)

// PostgresRepository persists reminders
type PostgresRepository struct {
	db *database.DB
}

// NewRepository creates a PostgresRepository
func NewRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const reminderColumns = `id, title, date_time, active_flag, appointment_id`

func scanReminder(row pgx.Row) (*Reminder, error) {
	var rem Reminder
	err := row.Scan(&rem.ID, &rem.Title, &rem.DateTime, &rem.ActiveFlag, &rem.AppointmentID)
	if err != nil {
		return nil, err
	}
	return &rem, nil
}

// Create inserts a new reminder
func (r *PostgresRepository) Create(ctx context.Context, rem *Reminder) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO reminders (id, title, date_time, active_flag, appointment_id)
		VALUES ($1, $2, $3, $4, $5)`,
		rem.ID, rem.Title, rem.DateTime, rem.ActiveFlag, rem.AppointmentID)
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// GetByID returns the reminder with the given id
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Reminder, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE id = $1`, id)
	rem, err := scanReminder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("reminder", id)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return rem, nil
}

// List returns all reminders ordered by their notification time
func (r *PostgresRepository) List(ctx context.Context) ([]*Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM reminders ORDER BY date_time`)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	defer rows.Close()

	reminders := []*Reminder{}
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

// Update replaces the mutable reminder fields
func (r *PostgresRepository) Update(ctx context.Context, rem *Reminder) (*Reminder, error) {
	row := r.db.Pool.QueryRow(ctx, `
		UPDATE reminders SET title = $2, date_time = $3, active_flag = $4
		WHERE id = $1
		RETURNING `+reminderColumns,
		rem.ID, rem.Title, rem.DateTime, rem.ActiveFlag)
	updated, err := scanReminder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("reminder", rem.ID)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return updated, nil
}

// Delete removes the reminder with the given id
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return apperrors.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("reminder", id)
	}
	return nil
}

// AppointmentInfo loads the appointment a reminder points at
func (r *PostgresRepository) AppointmentInfo(ctx context.Context, id int64) (*AppointmentInfo, error) {
	var a AppointmentInfo
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, type, date, description, contact_info, account_id
		FROM appointments WHERE id = $1`, id).
		Scan(&a.ID, &a.Type, &a.Date, &a.Description, &a.ContactInfo, &a.AccountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("appointment", id)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &a, nil
}

// AccountName returns the display name of an account
func (r *PostgresRepository) AccountName(ctx context.Context, accountID int64) (string, error) {
	var name string
	err := r.db.Pool.QueryRow(ctx,
		`SELECT name FROM accounts WHERE id = $1`, accountID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperrors.NotFound("account", accountID)
	}
	if err != nil {
		return "", apperrors.Internal(err)
	}
	return name, nil
}
