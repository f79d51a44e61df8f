package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bmitrend/internal/domain"
)

const userColumns = "id, email, name, height, age, gender, activity_level, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u        domain.User
		height   sql.NullFloat64
		age      sql.NullInt64
		gender   sql.NullString
		activity sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &height, &age, &gender, &activity, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if height.Valid {
		u.Height = &height.Float64
	}
	if age.Valid {
		a := int(age.Int64)
		u.Age = &a
	}
	if gender.Valid {
		g := domain.Gender(gender.String)
		u.Gender = &g
	}
	if activity.Valid {
		a := domain.ActivityLevel(activity.String)
		u.ActivityLevel = &a
	}
	return &u, nil
}

// GetUserByID retrieves a user by ID.
func (d *DB) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(d.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1",
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// GetUserByEmail retrieves a user by email.
func (d *DB) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(d.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1",
		email,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// CreateUser creates a new user with an empty profile.
func (d *DB) CreateUser(ctx context.Context, id, email, name string) (*domain.User, error) {
	u, err := scanUser(d.sql.QueryRowContext(ctx,
		"INSERT INTO users (id, email, name, created_at) VALUES ($1, $2, $3, $4) RETURNING "+userColumns,
		id, email, name, time.Now().UTC(),
	))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

// RekeyUser changes a user's primary key. Measurement logs follow through
// the ON UPDATE CASCADE foreign key.
func (d *DB) RekeyUser(ctx context.Context, currentID, newID, name string) (*domain.User, error) {
	u, err := scanUser(d.sql.QueryRowContext(ctx,
		"UPDATE users SET id = $2, name = $3 WHERE id = $1 RETURNING "+userColumns,
		currentID, newID, name,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

// UpdateProfile writes the profile fields of a user.
func (d *DB) UpdateProfile(ctx context.Context, id string, p domain.ProfileUpdate) (bool, error) {
	var age sql.NullInt64
	if p.Age != nil {
		age = sql.NullInt64{Int64: int64(*p.Age), Valid: true}
	}
	var gender, activity sql.NullString
	if p.Gender != nil {
		gender = sql.NullString{String: string(*p.Gender), Valid: true}
	}
	if p.ActivityLevel != nil {
		activity = sql.NullString{String: string(*p.ActivityLevel), Valid: true}
	}

	res, err := d.sql.ExecContext(ctx,
		"UPDATE users SET height = $2, age = $3, gender = $4, activity_level = $5 WHERE id = $1",
		id, p.Height, age, gender, activity,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
