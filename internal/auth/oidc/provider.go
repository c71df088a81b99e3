// Package oidc signs users in through an external OpenID Connect provider.
// A successful callback yields the identity claims; creating or loading the
// matching profile is left to the auth service.
package oidc

import (
	"context"
	"errors"
	"fmt"

	"github.com/Marga-Ghale/projecthub-backend/internal/config"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

var ErrDisabled = errors.New("OIDC is not enabled")

// Identity is what the provider tells us about the user.
type Identity struct {
	Issuer  string
	Subject string
	Email   string
	Name    string
}

type Provider struct {
	verifier *oidc.IDTokenVerifier
	config   *oauth2.Config
	issuer   string
}

// NewProvider runs discovery against the issuer. The context bounds the
// discovery request only.
func NewProvider(ctx context.Context, cfg config.OIDCConfig) (*Provider, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	if cfg.IssuerURL == "" {
		return nil, fmt.Errorf("OIDC issuer URL is required")
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("OIDC client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("OIDC client secret is required")
	}

	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "email", "profile"}
	}

	return &Provider{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       scopes,
		},
		issuer: cfg.IssuerURL,
	}, nil
}

func (p *Provider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange trades the authorization code for tokens and returns the
// verified identity carried by the ID token.
func (p *Provider) Exchange(ctx context.Context, code string) (*Identity, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("token response has no id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}
	return identityFromToken(idToken)
}

type claimsSource interface {
	Claims(v interface{}) error
}

func identityFromToken(idToken *oidc.IDToken) (*Identity, error) {
	id, err := parseClaims(idToken)
	if err != nil {
		return nil, err
	}
	id.Issuer = idToken.Issuer
	return id, nil
}

func parseClaims(src claimsSource) (*Identity, error) {
	var claims struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := src.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse ID token claims: %w", err)
	}
	if claims.Sub == "" {
		return nil, fmt.Errorf("ID token missing 'sub' claim")
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("ID token missing 'email' claim")
	}
	return &Identity{Subject: claims.Sub, Email: claims.Email, Name: claims.Name}, nil
}
