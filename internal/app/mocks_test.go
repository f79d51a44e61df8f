package app_test

import (
	"context"

	"bmitrend/internal/domain"
)

type mockUserRepo struct {
	getByIDFn    func(ctx context.Context, id string) (*domain.User, error)
	getByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	createFn     func(ctx context.Context, id, email, name string) (*domain.User, error)
	rekeyFn      func(ctx context.Context, currentID, newID, name string) (*domain.User, error)
	updateFn     func(ctx context.Context, id string, p domain.ProfileUpdate) (bool, error)
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) CreateUser(ctx context.Context, id, email, name string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, id, email, name)
	}
	return &domain.User{ID: id, Email: email, Name: name}, nil
}

func (m *mockUserRepo) RekeyUser(ctx context.Context, currentID, newID, name string) (*domain.User, error) {
	if m.rekeyFn != nil {
		return m.rekeyFn(ctx, currentID, newID, name)
	}
	return nil, nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id string, p domain.ProfileUpdate) (bool, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, p)
	}
	return false, nil
}

type mockMeasurementRepo struct {
	upsertFn func(ctx context.Context, userID, date string, weight, bmi float64) (*domain.Measurement, error)
	listFn   func(ctx context.Context, userID string) ([]domain.Measurement, error)
	latestFn func(ctx context.Context, userID string) (*domain.Measurement, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (m *mockMeasurementRepo) UpsertMeasurement(ctx context.Context, userID, date string, weight, bmi float64) (*domain.Measurement, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, userID, date, weight, bmi)
	}
	return &domain.Measurement{ID: 1, UserID: userID, Date: date, Weight: weight, BMI: bmi}, nil
}

func (m *mockMeasurementRepo) ListMeasurements(ctx context.Context, userID string) ([]domain.Measurement, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockMeasurementRepo) LatestMeasurement(ctx context.Context, userID string) (*domain.Measurement, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockMeasurementRepo) DeleteMeasurement(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockProvider struct {
	exchangeFn func(ctx context.Context, code string) (*domain.ExternalProfile, error)
}

func (m *mockProvider) AuthCodeURL(state string) string {
	return "https://idp.example.com/auth?state=" + state
}

func (m *mockProvider) Exchange(ctx context.Context, code string) (*domain.ExternalProfile, error) {
	if m.exchangeFn != nil {
		return m.exchangeFn(ctx, code)
	}
	return nil, nil
}

func ptr[T any](v T) *T { return &v }
