package account

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/openlegal/platform/internal/shared/database"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
)

const uniqueViolation = "23505"

// PostgresRepository persists accounts
type PostgresRepository struct {
	db *database.DB
}

// NewRepository creates a PostgresRepository
func NewRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, name, lastname, phone_number, email, role,
	password_hash, reset_token, token_expires, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Name, &a.Lastname, &a.PhoneNumber, &a.Email,
		&a.Role, &a.PasswordHash, &a.ResetToken, &a.TokenExpires,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new account. A duplicate email yields a conflict.
func (r *PostgresRepository) Create(ctx context.Context, a *Account) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO accounts (id, name, lastname, phone_number, email, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`,
		a.ID, a.Name, a.Lastname, a.PhoneNumber, a.Email, a.Role, a.PasswordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.Conflict("an account with that email already exists")
		}
		return apperrors.Internal(err)
	}
	return nil
}

// GetByID returns the account with the given id
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Account, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	a, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("account", id)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return a, nil
}

// GetByEmail returns the account with the given email
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	a, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFoundKey("account", email)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return a, nil
}

// List returns all accounts ordered by id
func (r *PostgresRepository) List(ctx context.Context) ([]*Account, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY id`)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	defer rows.Close()

	accounts := []*Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// Update changes the mutable contact fields and returns the updated account
func (r *PostgresRepository) Update(ctx context.Context, id int64, name, lastname, phoneNumber, email string) (*Account, error) {
	row := r.db.Pool.QueryRow(ctx, `
		UPDATE accounts
		SET name = $2, lastname = $3, phone_number = $4, email = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+accountColumns,
		id, name, lastname, phoneNumber, email)
	a, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("account", id)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, apperrors.Conflict("an account with that email already exists")
		}
		return nil, apperrors.Internal(err)
	}
	return a, nil
}

// Delete removes the account with the given id
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return apperrors.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("account", id)
	}
	return nil
}

// SetResetToken stores a password-reset token valid until expires
func (r *PostgresRepository) SetResetToken(ctx context.Context, id int64, token string, expires time.Time) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE accounts SET reset_token = $2, token_expires = $3, updated_at = now()
		WHERE id = $1`, id, token, expires)
	if err != nil {
		return apperrors.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("account", id)
	}
	return nil
}
