package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/custctl/internal/models"
	"github.com/urfave/cli/v3"
)

// AuthRegister creates an account, then signs in with the same credentials.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	creds := models.Credentials{
		Username: cmd.String("username"),
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
	}

	r.logger.Info("registering account", "email", creds.Email)
	if err := r.client.Register(ctx, creds); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	if err := r.login(ctx, creds); err != nil {
		return err
	}
	return r.writePlain("✓ Registered and signed in as %s\n", creds.Email)
}

// AuthLogin exchanges credentials for a token and stores it.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	creds := models.Credentials{
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
	}

	if err := r.login(ctx, creds); err != nil {
		return err
	}
	return r.writePlain("✓ Signed in as %s\n", creds.Email)
}

func (r *Runner) login(ctx context.Context, creds models.Credentials) error {
	token, err := r.client.Login(ctx, creds)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := r.session.Set(ctx, token); err != nil {
		return err
	}
	r.logger.Info("session stored", "email", creds.Email)
	return nil
}

// AuthLogout removes the stored token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if !r.session.Authenticated() {
		return r.writePlain("Not signed in\n")
	}
	if err := r.session.Clear(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

type authStatus struct {
	Authenticated bool       `json:"authenticated"`
	Subject       string     `json:"subject,omitempty"`
	Email         string     `json:"email,omitempty"`
	IssuedAt      *time.Time `json:"issuedAt,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	Expired       bool       `json:"expired"`
}

// AuthStatus reports whether a token is stored and, for JWTs, what its claims say.
//
// Claims are read without verifying the signature, so this is informational only.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	status := authStatus{Authenticated: r.session.Authenticated()}

	if status.Authenticated {
		if claims, err := r.session.Claims(); err != nil {
			r.logger.Debug("token claims unavailable", "error", err)
		} else {
			status.Subject = claims.Subject
			status.Email = claims.Email
			status.Expired = claims.Expired(r.now())
			if !claims.IssuedAt.IsZero() {
				status.IssuedAt = &claims.IssuedAt
			}
			if !claims.ExpiresAt.IsZero() {
				status.ExpiresAt = &claims.ExpiresAt
			}
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	if !status.Authenticated {
		return r.writePlain("Session: ✗ Not signed in\n")
	}

	r.writePlain("Session: ✓ Signed in\n")
	if status.Email != "" {
		r.writePlain("Email: %s\n", status.Email)
	}
	if status.Subject != "" {
		r.writePlain("Subject: %s\n", status.Subject)
	}
	if status.ExpiresAt != nil {
		r.writePlain("Expires: %s\n", status.ExpiresAt.Format(time.RFC3339))
	}
	if status.Expired {
		r.writePlain("⚠ Token has expired, run 'custctl auth login'\n")
	}
	return nil
}
