package profile

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/openlegal/platform/internal/shared/database"
	apperrors "github.com/openlegal/platform/internal/shared/errors"
)

// PostgresRepository persists user profiles and their qualifications
type PostgresRepository struct {
	db *database.DB
}

// NewRepository creates a PostgresRepository
func NewRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const profileColumns = `id, title, bio, address, profile_picture, account_id`

func scanProfile(row pgx.Row) (*UserProfile, error) {
	var p UserProfile
	if err := row.Scan(&p.ID, &p.Title, &p.Bio, &p.Address, &p.ProfilePicture, &p.AccountID); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProfile inserts a new user profile
func (r *PostgresRepository) CreateProfile(ctx context.Context, p *UserProfile) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO user_profiles (id, title, bio, address, profile_picture, account_id)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Title, p.Bio, p.Address, p.ProfilePicture, p.AccountID)
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// GetProfile returns the profile with the given id
func (r *PostgresRepository) GetProfile(ctx context.Context, id int64) (*UserProfile, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM user_profiles WHERE id = $1`, id)
	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("profile", id)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return p, nil
}

// ListProfiles returns all user profiles ordered by id
func (r *PostgresRepository) ListProfiles(ctx context.Context) ([]*UserProfile, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+profileColumns+` FROM user_profiles ORDER BY id`)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	defer rows.Close()
	items := []*UserProfile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// UpdateProfile replaces the mutable profile fields
func (r *PostgresRepository) UpdateProfile(ctx context.Context, p *UserProfile) (*UserProfile, error) {
	row := r.db.Pool.QueryRow(ctx, `
		UPDATE user_profiles
		SET title = $2, bio = $3, address = $4, profile_picture = $5, account_id = $6
		WHERE id = $1
		RETURNING `+profileColumns,
		p.ID, p.Title, p.Bio, p.Address, p.ProfilePicture, p.AccountID)
	updated, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("profile", p.ID)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return updated, nil
}

// SetProfilePicture stores the picture path on a profile
func (r *PostgresRepository) SetProfilePicture(ctx context.Context, id int64, path string) (*UserProfile, error) {
	row := r.db.Pool.QueryRow(ctx, `
		UPDATE user_profiles SET profile_picture = $2 WHERE id = $1
		RETURNING `+profileColumns,
		id, path)
	updated, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("profile", id)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return updated, nil
}

// DeleteProfile removes the profile with the given id
func (r *PostgresRepository) DeleteProfile(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM user_profiles WHERE id = $1`, id)
	if err != nil {
		return apperrors.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("profile", id)
	}
	return nil
}

const qualificationColumns = `id, role, institution, place, start_year, end_year, qualification_type, profile_id`

func scanQualification(row pgx.Row) (*Qualification, error) {
	var q Qualification
	err := row.Scan(&q.ID, &q.Role, &q.Institution, &q.Place,
		&q.StartYear, &q.EndYear, &q.QualificationType, &q.ProfileID)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// CreateQualification inserts a new qualification
func (r *PostgresRepository) CreateQualification(ctx context.Context, q *Qualification) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO qualifications (id, role, institution, place, start_year, end_year, qualification_type, profile_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		q.ID, q.Role, q.Institution, q.Place, q.StartYear, q.EndYear, q.QualificationType, q.ProfileID)
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// GetQualification returns the qualification with the given id
func (r *PostgresRepository) GetQualification(ctx context.Context, id int64) (*Qualification, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+qualificationColumns+` FROM qualifications WHERE id = $1`, id)
	q, err := scanQualification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("qualification", id)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return q, nil
}

// ListQualifications returns all qualifications ordered by id
func (r *PostgresRepository) ListQualifications(ctx context.Context) ([]*Qualification, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+qualificationColumns+` FROM qualifications ORDER BY id`)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	defer rows.Close()
	items := []*Qualification{}
	for rows.Next() {
		q, err := scanQualification(rows)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		items = append(items, q)
	}
	return items, rows.Err()
}

// UpdateQualification replaces the mutable qualification fields
func (r *PostgresRepository) UpdateQualification(ctx context.Context, q *Qualification) (*Qualification, error) {
	row := r.db.Pool.QueryRow(ctx, `
		UPDATE qualifications
		SET role = $2, institution = $3, place = $4, start_year = $5,
		    end_year = $6, qualification_type = $7, profile_id = $8
		WHERE id = $1
		RETURNING `+qualificationColumns,
		q.ID, q.Role, q.Institution, q.Place, q.StartYear, q.EndYear, q.QualificationType, q.ProfileID)
	updated, err := scanQualification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("qualification", q.ID)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return updated, nil
}

// DeleteQualification removes the qualification with the given id
func (r *PostgresRepository) DeleteQualification(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM qualifications WHERE id = $1`, id)
	if err != nil {
		return apperrors.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("qualification", id)
	}
	return nil
}
