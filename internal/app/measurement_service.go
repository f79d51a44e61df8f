package app

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"bmitrend/internal/domain"
	"bmitrend/internal/metrics"
)

const maxWeightKg = 1000

// MeasurementService encapsulates weight ingestion use cases.
type MeasurementService struct {
	users   domain.UserRepository
	repo    domain.MeasurementRepository
	metrics metrics.Recorder
}

// NewMeasurementService creates a MeasurementService backed by the given repositories.
func NewMeasurementService(users domain.UserRepository, repo domain.MeasurementRepository) *MeasurementService {
	return &MeasurementService{users: users, repo: repo, metrics: metrics.Nop{}}
}

// WithMetrics records upserts and deletes into m.
func (s *MeasurementService) WithMetrics(m metrics.Recorder) *MeasurementService {
	s.metrics = m
	return s
}

// Upsert validates and stores the weight (kg) for a calendar day, replacing
// any earlier measurement for the same day. The returned measurement carries
// the stored BMI and its category.
func (s *MeasurementService) Upsert(ctx context.Context, userID string, weight float64, date string) (*domain.Measurement, error) {
	if math.IsNaN(weight) || weight <= 0 || weight > maxWeightKg {
		return nil, fmt.Errorf("%w: weight must be within (0, %d] kg", domain.ErrValidation, maxWeightKg)
	}
	day, err := time.Parse(domain.DayLayout, date)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrValidation)
	}
	date = day.Format(domain.DayLayout)

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	if !user.ProfileComplete() {
		return nil, fmt.Errorf("user %s has no height: %w", userID, domain.ErrProfileIncomplete)
	}

	bmi := domain.ComputeBMI(weight, *user.Height)
	if math.IsNaN(bmi) || math.IsInf(bmi, 0) {
		return nil, fmt.Errorf("%w: bmi is not a finite number", domain.ErrValidation)
	}
	m, err := s.repo.UpsertMeasurement(ctx, userID, date, weight, bmi)
	if err != nil {
		return nil, err
	}
	m.Category = domain.Categorize(m.BMI)

	s.metrics.RecordMeasurementUpsert(string(m.Category))
	slog.DebugContext(ctx, "measurement stored",
		slog.String("user_id", userID),
		slog.String("date", date),
		slog.Int64("id", m.ID),
	)
	return m, nil
}

// List returns every measurement for the user, oldest first.
func (s *MeasurementService) List(ctx context.Context, userID string) ([]domain.Measurement, error) {
	items, err := s.repo.ListMeasurements(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Category = domain.Categorize(items[i].BMI)
	}
	return items, nil
}

// Latest returns the most recent measurement, or nil when there is none.
func (s *MeasurementService) Latest(ctx context.Context, userID string) (*domain.Measurement, error) {
	m, err := s.repo.LatestMeasurement(ctx, userID)
	if err != nil || m == nil {
		return nil, err
	}
	m.Category = domain.Categorize(m.BMI)
	return m, nil
}

// Delete removes one measurement. Unknown ids are ignored.
func (s *MeasurementService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteMeasurement(ctx, id); err != nil {
		return err
	}
	s.metrics.RecordMeasurementDelete()
	return nil
}
