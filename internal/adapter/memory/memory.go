// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"bmitrend/internal/domain"
)

// DB implements an in-memory database storage. A single mutex guards every
// operation, which makes each one atomic with respect to the others.
type DB struct {
	mu           sync.Mutex
	users        map[string]*domain.User
	emails       map[string]string
	measurements []domain.Measurement

	measurementIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		users:  make(map[string]*domain.User),
		emails: make(map[string]string),
	}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.MeasurementRepository = (*DB)(nil)

// --- UserRepository ---

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if u, ok := db.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, nil
}

// GetUserByEmail retrieves a user by email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if id, ok := db.emails[email]; ok {
		return copyUser(db.users[id]), nil
	}
	return nil, nil
}

// CreateUser creates a new user.
func (db *DB) CreateUser(ctx context.Context, id, email, name string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.users[id]; ok {
		return nil, fmt.Errorf("user id %s exists: %w", id, domain.ErrConflict)
	}
	if _, ok := db.emails[email]; ok {
		return nil, fmt.Errorf("email %s exists: %w", email, domain.ErrConflict)
	}

	u := &domain.User{
		ID:        id,
		Email:     email,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	db.users[id] = u
	db.emails[email] = id
	return copyUser(u), nil
}

// RekeyUser moves a user to a new id and carries its measurements along.
func (db *DB) RekeyUser(ctx context.Context, currentID, newID, name string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[currentID]
	if !ok {
		return nil, nil
	}
	if newID != currentID {
		if _, taken := db.users[newID]; taken {
			return nil, fmt.Errorf("user id %s exists: %w", newID, domain.ErrConflict)
		}
		delete(db.users, currentID)
		u.ID = newID
		db.users[newID] = u
		db.emails[u.Email] = newID
		for i := range db.measurements {
			if db.measurements[i].UserID == currentID {
				db.measurements[i].UserID = newID
			}
		}
	}
	u.Name = name
	return copyUser(u), nil
}

// UpdateProfile writes the profile fields of a user.
func (db *DB) UpdateProfile(ctx context.Context, id string, p domain.ProfileUpdate) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[id]
	if !ok {
		return false, nil
	}
	height := p.Height
	u.Height = &height
	u.Age = clone(p.Age)
	u.Gender = clone(p.Gender)
	u.ActivityLevel = clone(p.ActivityLevel)
	return true, nil
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

// --- MeasurementRepository ---

// UpsertMeasurement inserts or overwrites the measurement for (userID, date).
// It fails with domain.ErrNotFound when no user holds userID.
func (db *DB) UpsertMeasurement(ctx context.Context, userID, date string, weight, bmi float64) (*domain.Measurement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.users[userID]; !ok {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}

	for i := range db.measurements {
		m := &db.measurements[i]
		if m.UserID == userID && m.Date == date {
			m.Weight = weight
			m.BMI = bmi
			ret := *m
			return &ret, nil
		}
	}

	db.measurementIDCounter++
	m := domain.Measurement{
		ID:        db.measurementIDCounter,
		UserID:    userID,
		Weight:    weight,
		BMI:       bmi,
		Date:      date,
		CreatedAt: time.Now().UTC(),
	}
	db.measurements = append(db.measurements, m)
	return &m, nil
}

// ListMeasurements lists a user's measurements by date ascending.
func (db *DB) ListMeasurements(ctx context.Context, userID string) ([]domain.Measurement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.Measurement, 0)
	for _, m := range db.measurements {
		if m.UserID == userID {
			result = append(result, m)
		}
	}

	// YYYY-MM-DD sorts chronologically as a string.
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result, nil
}

// LatestMeasurement returns the measurement with the latest date.
func (db *DB) LatestMeasurement(ctx context.Context, userID string) (*domain.Measurement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var latest *domain.Measurement
	for i := range db.measurements {
		m := &db.measurements[i]
		if m.UserID == userID && (latest == nil || m.Date > latest.Date) {
			latest = m
		}
	}
	if latest == nil {
		return nil, nil
	}
	ret := *latest
	return &ret, nil
}

// DeleteMeasurement deletes a measurement by ID.
func (db *DB) DeleteMeasurement(ctx context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, m := range db.measurements {
		if m.ID == id {
			db.measurements = append(db.measurements[:i], db.measurements[i+1:]...)
			return nil
		}
	}
	return nil
}
