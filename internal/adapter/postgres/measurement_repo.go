package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bmitrend/internal/domain"
)

const measurementColumns = "id, user_id, weight, bmi, date, created_at"

func scanMeasurement(row rowScanner) (*domain.Measurement, error) {
	var (
		m   domain.Measurement
		day time.Time
	)
	if err := row.Scan(&m.ID, &m.UserID, &m.Weight, &m.BMI, &day, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Date = day.Format(domain.DayLayout)
	return &m, nil
}

// UpsertMeasurement inserts or overwrites the measurement for (userID, date)
// in a single statement, so concurrent writers for the same day leave one row.
func (d *DB) UpsertMeasurement(ctx context.Context, userID, date string, weight, bmi float64) (*domain.Measurement, error) {
	m, err := scanMeasurement(d.sql.QueryRowContext(ctx,
		`INSERT INTO measurement_logs (user_id, weight, bmi, date, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, date) DO UPDATE SET weight = EXCLUDED.weight, bmi = EXCLUDED.bmi
		RETURNING `+measurementColumns,
		userID, weight, bmi, date, time.Now().UTC(),
	))
	if err != nil {
		return nil, mapError(err)
	}
	return m, nil
}

// ListMeasurements lists a user's measurements by date ascending.
func (d *DB) ListMeasurements(ctx context.Context, userID string) ([]domain.Measurement, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+measurementColumns+" FROM measurement_logs WHERE user_id = $1 ORDER BY date ASC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]domain.Measurement, 0)
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// LatestMeasurement returns the measurement with the latest date.
func (d *DB) LatestMeasurement(ctx context.Context, userID string) (*domain.Measurement, error) {
	m, err := scanMeasurement(d.sql.QueryRowContext(ctx,
		"SELECT "+measurementColumns+" FROM measurement_logs WHERE user_id = $1 ORDER BY date DESC LIMIT 1",
		userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// DeleteMeasurement deletes a measurement by ID.
func (d *DB) DeleteMeasurement(ctx context.Context, id int64) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM measurement_logs WHERE id = $1", id)
	return err
}
