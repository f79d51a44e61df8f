package app

import (
	"context"
	"fmt"
	"math"

	"bmitrend/internal/domain"
)

const (
	maxHeightCm = 300
	maxAgeYears = 150
)

// UserService encapsulates profile use cases.
type UserService struct {
	repo domain.UserRepository
}

// NewUserService creates a UserService backed by the given repository.
func NewUserService(repo domain.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// GetUser returns the user with id or ErrNotFound.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return u, nil
}

// UpdateProfile validates and writes all profile fields at once.
func (s *UserService) UpdateProfile(ctx context.Context, id string, p domain.ProfileUpdate) (*domain.User, error) {
	if err := validateProfile(p); err != nil {
		return nil, err
	}
	ok, err := s.repo.UpdateProfile(ctx, id, p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return s.GetUser(ctx, id)
}

func validateProfile(p domain.ProfileUpdate) error {
	if math.IsNaN(p.Height) || p.Height <= 0 || p.Height > maxHeightCm {
		return fmt.Errorf("%w: height must be within (0, %d] cm", domain.ErrValidation, maxHeightCm)
	}
	if p.Age != nil && (*p.Age < 0 || *p.Age > maxAgeYears) {
		return fmt.Errorf("%w: age must be within [0, %d]", domain.ErrValidation, maxAgeYears)
	}
	if p.Gender != nil && !p.Gender.Valid() {
		return fmt.Errorf("%w: gender must be \"male\" or \"female\"", domain.ErrValidation)
	}
	if p.ActivityLevel != nil && !p.ActivityLevel.Valid() {
		return fmt.Errorf("%w: activityLevel must be \"sedentary\", \"moderate\" or \"active\"", domain.ErrValidation)
	}
	return nil
}
