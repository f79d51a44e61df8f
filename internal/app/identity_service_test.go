package app_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"bmitrend/internal/adapter/memory"
	"bmitrend/internal/app"
	"bmitrend/internal/domain"
)

func TestResolveGuestIdentity_CreatesUser(t *testing.T) {
	store := memory.New()
	svc := app.NewIdentityService(store, nil)

	u, err := svc.ResolveGuestIdentity(context.Background(), "", "Bob@Example.com", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(u.ID, domain.GuestIDPrefix) {
		t.Errorf("expected guest id, got %q", u.ID)
	}
	if u.Email != "bob@example.com" {
		t.Errorf("expected normalized email, got %q", u.Email)
	}
	if u.Name != "bob" {
		t.Errorf("expected name defaulted from email, got %q", u.Name)
	}
	if u.ProfileComplete() {
		t.Error("new guest should have no height")
	}
}

func TestResolveIdentity_Validation(t *testing.T) {
	svc := app.NewIdentityService(&mockUserRepo{}, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"guest bad email", func() error {
			_, err := svc.ResolveGuestIdentity(ctx, "", "not-an-email", "x")
			return err
		}},
		{"guest missing prefix", func() error {
			_, err := svc.ResolveGuestIdentity(ctx, "abc", "a@example.com", "x")
			return err
		}},
		{"guest bare prefix", func() error {
			_, err := svc.ResolveGuestIdentity(ctx, domain.GuestIDPrefix, "a@example.com", "x")
			return err
		}},
		{"external empty id", func() error {
			_, err := svc.ResolveExternalIdentity(ctx, " ", "a@example.com", "x")
			return err
		}},
		{"external reserved prefix", func() error {
			_, err := svc.ResolveExternalIdentity(ctx, "guest-1", "a@example.com", "x")
			return err
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.fn(); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestResolveIdentity_ExistingIDIsReturned(t *testing.T) {
	existing := &domain.User{ID: "google-1", Email: "a@example.com", Name: "A"}
	repo := &mockUserRepo{
		getByIDFn: func(_ context.Context, id string) (*domain.User, error) {
			if id == "google-1" {
				return existing, nil
			}
			return nil, nil
		},
		createFn: func(context.Context, string, string, string) (*domain.User, error) {
			t.Fatal("CreateUser must not be called for a known id")
			return nil, nil
		},
	}
	svc := app.NewIdentityService(repo, nil)

	u, err := svc.ResolveExternalIdentity(context.Background(), "google-1", "a@example.com", "Other")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != existing {
		t.Errorf("expected existing user, got %+v", u)
	}
}

func TestResolveIdentity_GuestUpgradedToProvider(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	svc := app.NewIdentityService(store, nil)
	measurements := app.NewMeasurementService(store, store)
	users := app.NewUserService(store)

	guest, err := svc.ResolveGuestIdentity(ctx, "guest-abc", "ann@example.com", "ann")
	if err != nil {
		t.Fatalf("ResolveGuestIdentity: %v", err)
	}
	if _, err := users.UpdateProfile(ctx, guest.ID, domain.ProfileUpdate{Height: 165}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if _, err := measurements.Upsert(ctx, guest.ID, 60, "2024-05-01"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	u, err := svc.ResolveExternalIdentity(ctx, "google-7", "ann@example.com", "Ann Lee")
	if err != nil {
		t.Fatalf("ResolveExternalIdentity: %v", err)
	}
	if u.ID != "google-7" || u.Name != "Ann Lee" {
		t.Errorf("expected rekeyed user, got %+v", u)
	}
	if u.Height == nil || *u.Height != 165 {
		t.Error("profile should survive the rekey")
	}

	logs, _ := measurements.List(ctx, "google-7")
	if len(logs) != 1 {
		t.Errorf("expected measurements to follow the user, got %d", len(logs))
	}
	old, _ := store.GetUserByID(ctx, guest.ID)
	if old != nil {
		t.Error("guest id should no longer resolve")
	}
}

func TestResolveIdentity_GuestMergesOntoProvider(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	svc := app.NewIdentityService(store, nil)

	if _, err := svc.ResolveExternalIdentity(ctx, "google-7", "ann@example.com", "Ann"); err != nil {
		t.Fatalf("ResolveExternalIdentity: %v", err)
	}

	u, err := svc.ResolveGuestIdentity(ctx, "guest-xyz", "ann@example.com", "annie")
	if err != nil {
		t.Fatalf("ResolveGuestIdentity: %v", err)
	}
	if u.ID != "google-7" {
		t.Errorf("guest login must not displace the provider id, got %q", u.ID)
	}
	if u.Name != "annie" {
		t.Errorf("expected name from latest login, got %q", u.Name)
	}
}

func TestResolveIdentity_RetriesOnConflict(t *testing.T) {
	winner := &domain.User{ID: "google-1", Email: "a@example.com", Name: "A"}
	var created bool
	repo := &mockUserRepo{
		getByIDFn: func(_ context.Context, id string) (*domain.User, error) {
			if created && id == winner.ID {
				return winner, nil
			}
			return nil, nil
		},
		createFn: func(context.Context, string, string, string) (*domain.User, error) {
			created = true
			return nil, domain.ErrConflict
		},
	}
	svc := app.NewIdentityService(repo, nil)

	u, err := svc.ResolveExternalIdentity(context.Background(), "google-1", "a@example.com", "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != winner.ID {
		t.Errorf("expected winner's row, got %+v", u)
	}
}

func TestResolveIdentity_PersistentConflict(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(context.Context, string, string, string) (*domain.User, error) {
			return nil, domain.ErrConflict
		},
	}
	svc := app.NewIdentityService(repo, nil)

	_, err := svc.ResolveExternalIdentity(context.Background(), "google-1", "a@example.com", "A")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestResolveIdentity_ConcurrentSameEmail(t *testing.T) {
	store := memory.New()
	svc := app.NewIdentityService(store, nil)
	ctx := context.Background()

	ids := []string{"google-1", "google-2"}
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := svc.ResolveExternalIdentity(ctx, id, "same@example.com", "x"); err != nil {
				t.Errorf("resolve %s: %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	u, err := store.GetUserByEmail(ctx, "same@example.com")
	if err != nil || u == nil {
		t.Fatalf("expected one user for the email, got %v %v", u, err)
	}
	var found int
	for _, id := range ids {
		if got, _ := store.GetUserByID(ctx, id); got != nil {
			found++
		}
	}
	if found != 1 {
		t.Errorf("expected exactly one row for the email, found %d", found)
	}
}

func TestLoginWithProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		svc := app.NewIdentityService(memory.New(), nil)
		if svc.SSOEnabled() {
			t.Error("expected SSO disabled")
		}
		if _, err := svc.LoginWithProvider(ctx, "code"); !errors.Is(err, domain.ErrIdentityProvider) {
			t.Fatalf("expected ErrIdentityProvider, got %v", err)
		}
		if _, err := svc.AuthCodeURL("s"); !errors.Is(err, domain.ErrIdentityProvider) {
			t.Fatalf("expected ErrIdentityProvider, got %v", err)
		}
	})

	t.Run("exchange failure", func(t *testing.T) {
		store := memory.New()
		svc := app.NewIdentityService(store, &mockProvider{
			exchangeFn: func(context.Context, string) (*domain.ExternalProfile, error) {
				return nil, errors.New("boom")
			},
		})
		if _, err := svc.LoginWithProvider(ctx, "code"); !errors.Is(err, domain.ErrIdentityProvider) {
			t.Fatalf("expected ErrIdentityProvider, got %v", err)
		}
		// No guest fallback
		if u, _ := store.GetUserByEmail(ctx, "a@example.com"); u != nil {
			t.Error("no user should be created")
		}
	})

	t.Run("missing email", func(t *testing.T) {
		svc := app.NewIdentityService(memory.New(), &mockProvider{
			exchangeFn: func(context.Context, string) (*domain.ExternalProfile, error) {
				return &domain.ExternalProfile{ID: "google-1"}, nil
			},
		})
		if _, err := svc.LoginWithProvider(ctx, "code"); !errors.Is(err, domain.ErrIdentityProvider) {
			t.Fatalf("expected ErrIdentityProvider, got %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		svc := app.NewIdentityService(memory.New(), &mockProvider{
			exchangeFn: func(_ context.Context, code string) (*domain.ExternalProfile, error) {
				if code != "good" {
					t.Errorf("unexpected code %q", code)
				}
				return &domain.ExternalProfile{ID: "google-1", Email: "a@example.com", Name: "A"}, nil
			},
		})
		u, err := svc.LoginWithProvider(ctx, "good")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if u.ID != "google-1" {
			t.Errorf("expected google-1, got %q", u.ID)
		}
		url, err := svc.AuthCodeURL("st")
		if err != nil || !strings.Contains(url, "state=st") {
			t.Errorf("unexpected auth url %q %v", url, err)
		}
	})
}
