// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"bmitrend/internal/domain"
	"bmitrend/internal/metrics"

	"github.com/google/uuid"
)

// IdentityProvider exchanges an authorization code for the caller's profile.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*domain.ExternalProfile, error)
}

// IdentityService resolves claimed identities to one canonical user per email.
type IdentityService struct {
	users    domain.UserRepository
	provider IdentityProvider
	metrics  metrics.Recorder
}

// NewIdentityService creates an identity service. provider may be nil when
// SSO is not configured.
func NewIdentityService(users domain.UserRepository, provider IdentityProvider) *IdentityService {
	return &IdentityService{
		users:    users,
		provider: provider,
		metrics:  metrics.Nop{},
	}
}

// WithMetrics records resolution outcomes into m.
func (s *IdentityService) WithMetrics(m metrics.Recorder) *IdentityService {
	s.metrics = m
	return s
}

// SSOEnabled reports whether an identity provider is configured.
func (s *IdentityService) SSOEnabled() bool {
	return s.provider != nil
}

// AuthCodeURL returns the provider login URL carrying state.
func (s *IdentityService) AuthCodeURL(state string) (string, error) {
	if s.provider == nil {
		return "", fmt.Errorf("%w: sso is not configured", domain.ErrIdentityProvider)
	}
	return s.provider.AuthCodeURL(state), nil
}

// LoginWithProvider exchanges code with the identity provider and resolves
// the returned profile. Exchange failures never fall back to a guest login.
func (s *IdentityService) LoginWithProvider(ctx context.Context, code string) (*domain.User, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("%w: sso is not configured", domain.ErrIdentityProvider)
	}
	if code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", domain.ErrIdentityProvider)
	}
	profile, err := s.provider.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityProvider) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrIdentityProvider, err)
	}
	if profile == nil || profile.ID == "" || profile.Email == "" {
		return nil, fmt.Errorf("%w: profile is missing id or email", domain.ErrIdentityProvider)
	}
	return s.ResolveExternalIdentity(ctx, profile.ID, profile.Email, profile.Name)
}

// ResolveExternalIdentity resolves a provider-issued identity.
func (s *IdentityService) ResolveExternalIdentity(ctx context.Context, providerID, email, name string) (*domain.User, error) {
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return nil, fmt.Errorf("%w: provider id is required", domain.ErrValidation)
	}
	if domain.IsGuestID(providerID) {
		return nil, fmt.Errorf("%w: provider id uses the reserved %q prefix", domain.ErrValidation, domain.GuestIDPrefix)
	}
	c, err := newCandidate(providerID, email, name)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, c)
}

// ResolveGuestIdentity resolves a self-declared guest. An empty guestID
// gets a freshly generated one.
func (s *IdentityService) ResolveGuestIdentity(ctx context.Context, guestID, email, name string) (*domain.User, error) {
	guestID = strings.TrimSpace(guestID)
	if guestID == "" {
		guestID = domain.GuestIDPrefix + uuid.NewString()
	}
	if !domain.IsGuestID(guestID) || len(guestID) == len(domain.GuestIDPrefix) {
		return nil, fmt.Errorf("%w: guest id must start with %q", domain.ErrValidation, domain.GuestIDPrefix)
	}
	c, err := newCandidate(guestID, email, name)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, c)
}

func newCandidate(id, email, name string) (domain.IdentityCandidate, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return domain.IdentityCandidate{}, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	normalized := strings.ToLower(addr.Address)
	name = strings.TrimSpace(name)
	if name == "" {
		name = normalized[:strings.IndexByte(normalized, '@')]
	}
	return domain.IdentityCandidate{ID: id, Email: normalized, Name: name}, nil
}

// resolve runs the resolution and, when a concurrent resolution of the same
// email won the insert, runs it once more against the winner's row.
func (s *IdentityService) resolve(ctx context.Context, c domain.IdentityCandidate) (*domain.User, error) {
	user, err := s.resolveOnce(ctx, c)
	if errors.Is(err, domain.ErrConflict) {
		slog.DebugContext(ctx, "identity conflict, retrying", slog.String("email", c.Email))
		user, err = s.resolveOnce(ctx, c)
	}
	if errors.Is(err, domain.ErrConflict) {
		s.metrics.RecordIdentityResolution(metrics.OutcomeConflict)
		slog.WarnContext(ctx, "identity conflict",
			slog.String("user_id", c.ID),
			slog.String("email", c.Email),
		)
	}
	return user, err
}

func (s *IdentityService) resolveOnce(ctx context.Context, c domain.IdentityCandidate) (*domain.User, error) {
	user, err := s.users.GetUserByID(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	if user != nil {
		s.metrics.RecordIdentityResolution(metrics.OutcomeExisting)
		return user, nil
	}

	byEmail, err := s.users.GetUserByEmail(ctx, c.Email)
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if byEmail != nil {
		return s.reassign(ctx, byEmail, c)
	}

	user, err = s.users.CreateUser(ctx, c.ID, c.Email, c.Name)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.metrics.RecordIdentityResolution(metrics.OutcomeCreated)
	slog.InfoContext(ctx, "user created",
		slog.String("user_id", user.ID),
		slog.Bool("guest", domain.IsGuestID(user.ID)),
	)
	return user, nil
}

// reassign handles a known email arriving under a new id. A provider id
// outranks a guest id: a guest login for an email already owned by a
// provider identity merges onto the provider id instead of replacing it.
func (s *IdentityService) reassign(ctx context.Context, existing *domain.User, c domain.IdentityCandidate) (*domain.User, error) {
	targetID, outcome := c.ID, metrics.OutcomeRekeyed
	if domain.IsGuestID(c.ID) && !domain.IsGuestID(existing.ID) {
		targetID, outcome = existing.ID, metrics.OutcomeMerged
	}

	user, err := s.users.RekeyUser(ctx, existing.ID, targetID, c.Name)
	if err != nil {
		return nil, fmt.Errorf("rekey user: %w", err)
	}
	if user == nil {
		// The row changed id under us; let the caller retry.
		return nil, fmt.Errorf("rekey user %s: %w", existing.ID, domain.ErrConflict)
	}

	s.metrics.RecordIdentityResolution(outcome)
	slog.InfoContext(ctx, "user identity "+outcome,
		slog.String("from_id", existing.ID),
		slog.String("user_id", user.ID),
	)
	return user, nil
}
