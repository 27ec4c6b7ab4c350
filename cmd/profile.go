package main

import (
	"context"

	"github.com/desertthunder/notehub/internal/models"
	"github.com/urfave/cli/v3"
)

func (r *Runner) writeProfile(cmd *cli.Command, user *models.User) error {
	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}
	r.writePlain("Email: %s\n", user.Email)
	r.writePlain("Username: %s\n", user.Username)
	if user.Avatar != "" {
		r.writePlain("Avatar: %s\n", user.Avatar)
	}
	return nil
}

// ProfileGet shows the signed-in user.
func (r *Runner) ProfileGet(ctx context.Context, cmd *cli.Command) error {
	api, err := r.backend(ctx, cmd)
	if err != nil {
		return err
	}

	user, err := api.GetProfile(ctx)
	if err != nil {
		return err
	}
	return r.writeProfile(cmd, user)
}

// ProfileUpdate changes the username.
func (r *Runner) ProfileUpdate(ctx context.Context, cmd *cli.Command) error {
	api, err := r.backend(ctx, cmd)
	if err != nil {
		return err
	}

	user, err := api.UpdateProfile(ctx, models.UpdateProfileParams{Username: cmd.String("username")})
	if err != nil {
		return err
	}
	if !cmd.Bool("json") {
		r.writePlain("✓ Profile updated\n")
	}
	return r.writeProfile(cmd, user)
}
