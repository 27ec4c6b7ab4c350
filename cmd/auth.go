package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/notehub/internal/models"
	"github.com/desertthunder/notehub/internal/shared"
	"github.com/urfave/cli/v3"
)

func credentialsFrom(cmd *cli.Command) models.Credentials {
	return models.Credentials{Email: cmd.String("email"), Password: cmd.String("password")}
}

// AuthLogin signs in. The session cookies the backend sets are kept in the local database.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	api, err := r.backend(ctx, cmd)
	if err != nil {
		return err
	}

	creds := credentialsFrom(cmd)
	r.logger.Info("signing in", "email", creds.Email)

	user, err := api.Login(ctx, creds)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Signed in as %s (%s)\n", user.Username, user.Email)
}

// AuthRegister creates an account and signs it in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	api, err := r.backend(ctx, cmd)
	if err != nil {
		return err
	}

	creds := credentialsFrom(cmd)
	r.logger.Info("registering", "email", creds.Email)

	user, err := api.Register(ctx, creds)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Registered and signed in as %s (%s)\n", user.Username, user.Email)
}

// AuthLogout signs out. Stored cookies are dropped even when the backend call fails.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	api, err := r.backend(ctx, cmd)
	if err != nil {
		return err
	}

	if err := api.Logout(ctx); err != nil {
		r.logger.Warn("backend logout failed", "error", err)
	}
	if r.jar != nil {
		if err := r.jar.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear stored cookies: %w", err)
		}
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus reports whether the stored session is valid.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	api, err := r.backend(ctx, cmd)
	if err != nil {
		return err
	}

	info := api.CheckServerSession(ctx)
	if info == nil {
		info = &models.UserInfo{}
	}

	if cmd.Bool("json") {
		return r.writeJSON(info, cmd.Bool("pretty"))
	}

	if !info.IsAuth {
		r.writePlain("✗ Not signed in\n")
		return r.writePlain("Run 'notehub auth login --email <email>' to sign in\n")
	}

	r.writePlain("✓ Signed in\n")
	if info.User != nil {
		r.writePlain("Email: %s\n", info.User.Email)
		r.writePlain("Username: %s\n", info.User.Username)
	}
	return nil
}

// AuthRefresh exchanges the stored refresh token for a new session.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	api, err := r.backend(ctx, cmd)
	if err != nil {
		return err
	}

	token := r.refreshToken()
	if token == "" {
		return fmt.Errorf("%w: sign in first", shared.ErrNoRefreshToken)
	}
	if err := api.RefreshSession(ctx, token); err != nil {
		return err
	}
	return r.writePlain("✓ Session refreshed\n")
}
