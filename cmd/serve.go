package main

import (
	"context"
	"fmt"
	"net"

	"github.com/desertthunder/notehub/internal/server"
	"github.com/desertthunder/notehub/internal/services"
	"github.com/desertthunder/notehub/internal/shared"
	"github.com/desertthunder/notehub/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the guarded front-end until the context is canceled.
//
// Unlike the other commands it uses the server-side API: credentials come from each visitor's cookies, never from
// the local cookie store.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", r.config.Server.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", r.config.Server.Addr(), err)
	}
	return r.serve(ctx, ln, cmd.Bool("open"))
}

func (r *Runner) serve(ctx context.Context, ln net.Listener, open bool) error {
	api := services.NewServerAPI(r.config.API.BaseURL, r.config.API.Timeout())
	router := web.NewRouter(api, web.Options{
		Server:  r.config.Server,
		Routes:  r.config.Routes,
		PerPage: r.config.Search.PerPage,
		Logger:  shared.WithLogger(r.logger, "component", "web"),
	})
	srv := server.New(r.config.Server, router, r.logger)

	url := "http://" + ln.Addr().String()
	r.logger.Info("serving notes front-end", "url", url, "backend", r.config.API.BaseURL)
	r.writePlain("Listening on %s (Ctrl+C to stop)\n", url)

	if open {
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("could not open browser", "error", err)
		}
	}

	if err := srv.Serve(ctx, ln); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	r.writePlain("✓ Server stopped\n")
	return nil
}
