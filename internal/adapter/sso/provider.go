// Package sso implements the external identity provider on top of OpenID Connect.
package sso

import (
	"context"
	"fmt"

	"bmitrend/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Config holds the OIDC client registration.
type Config struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Provider exchanges authorization codes for verified user profiles.
type Provider struct {
	oauth2   *oauth2.Config
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
}

// New discovers the issuer and builds a Provider.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	p, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("discover oidc issuer: %w", err)
	}
	return newProvider(p, cfg), nil
}

func newProvider(p *oidc.Provider, cfg Config) *Provider {
	return &Provider{
		oauth2: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     p.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		provider: p,
		verifier: p.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}
}

// AuthCodeURL returns the provider login URL carrying state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth2.AuthCodeURL(state)
}

type claims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Exchange trades code for tokens and reads the caller's profile, from the
// verified ID token when one is issued and from the userinfo endpoint otherwise.
func (p *Provider) Exchange(ctx context.Context, code string) (*domain.ExternalProfile, error) {
	tok, err := p.oauth2.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchange code: %w", domain.ErrIdentityProvider, err)
	}

	var c claims
	if raw, ok := tok.Extra("id_token").(string); ok && raw != "" {
		idToken, err := p.verifier.Verify(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: verify id token: %w", domain.ErrIdentityProvider, err)
		}
		if err := idToken.Claims(&c); err != nil {
			return nil, fmt.Errorf("%w: parse claims: %w", domain.ErrIdentityProvider, err)
		}
	} else {
		info, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(tok))
		if err != nil {
			return nil, fmt.Errorf("%w: fetch userinfo: %w", domain.ErrIdentityProvider, err)
		}
		if err := info.Claims(&c); err != nil {
			return nil, fmt.Errorf("%w: parse userinfo: %w", domain.ErrIdentityProvider, err)
		}
		if c.Sub == "" {
			c.Sub = info.Subject
		}
		if c.Email == "" {
			c.Email = info.Email
		}
	}

	return &domain.ExternalProfile{ID: c.Sub, Email: c.Email, Name: c.Name}, nil
}
