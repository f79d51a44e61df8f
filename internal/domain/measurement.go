package domain

import (
	"context"
	"time"
)

// DayLayout is the calendar-day format used for measurement dates.
const DayLayout = "2006-01-02"

// Measurement is one day's weight for a user with its derived BMI.
type Measurement struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	Weight    float64   `json:"weight"`
	BMI       float64   `json:"bmi"`
	Date      string    `json:"date"`
	Category  Category  `json:"category,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MeasurementRepository is the port for measurement persistence.
type MeasurementRepository interface {
	// UpsertMeasurement inserts the (userID, date) row or overwrites its
	// weight and bmi in place. It must be atomic per key and returns
	// ErrNotFound when userID names no user at write time.
	UpsertMeasurement(ctx context.Context, userID, date string, weight, bmi float64) (*Measurement, error)
	// ListMeasurements returns all rows for the user ordered by date ascending.
	ListMeasurements(ctx context.Context, userID string) ([]Measurement, error)
	LatestMeasurement(ctx context.Context, userID string) (*Measurement, error)
	// DeleteMeasurement is a no-op for unknown ids.
	DeleteMeasurement(ctx context.Context, id int64) error
}
