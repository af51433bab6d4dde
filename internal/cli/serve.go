package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/motifscope/internal/server"
	"github.com/matzehuels/motifscope/pkg/provider"
	"github.com/matzehuels/motifscope/pkg/render/pixel/layout"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	listen     string
	sessionTTL time.Duration
	motifOrd   string
	gdvOrd     string
}

// serveEndpoints are announced when the server starts.
var serveEndpoints = []endpoint{
	{"GET", "/view/motif.svg", "motif view"},
	{"GET", "/view/gdv/{id}.svg", "graphlet panel of a network"},
	{"POST", "/session", "start a linked browser session"},
	{"GET", "/api/get_motif_sp", "provider API"},
}

// serveCommand creates the serve command for the HTTP server.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve views and interaction endpoints over HTTP",
		Long: `Serve the active dataset over HTTP.

/api speaks the provider protocol, so another motifscope can use this server
with --url http://<addr>/api. /view/motif.svg and /view/gdv/<id>.svg render
views statelessly. POST /session starts a browser session whose interactive
SVGs at /session/<id>/motif report pointer events back to the server.`,
		Example: `  motifscope serve --data flights.json
  motifscope serve --data ./bundles --dataset enron --listen :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("listen") {
				opts.listen = c.cfg.Server.Listen
			}
			if !cmd.Flags().Changed("session-ttl") {
				opts.sessionTTL = c.cfg.Server.SessionTTL.Duration
			}
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.listen, "listen", "l", "", "listen address (default from config, :8080)")
	cmd.Flags().DurationVar(&opts.sessionTTL, "session-ttl", 0, "idle time before a browser session expires")
	cmd.Flags().StringVar(&opts.motifOrd, "order", "", "motif ordering of new sessions as x,y")
	cmd.Flags().StringVar(&opts.gdvOrd, "gdv-order", "", "graphlet ordering of new sessions as x,y")

	return cmd
}

// runServe serves until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	store, err := c.newCache(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	p, err := c.newProvider(ctx, store)
	if err != nil {
		return err
	}

	cfg := c.sessionConfig(exploreOpts{
		motif:    provider.ParseOrdering(opts.motifOrd),
		graphlet: provider.ParseOrdering(opts.gdvOrd),
	})
	v := c.cfg.View
	if v.Width > 0 && v.Height > 0 {
		cfg.Motif = layout.Frame{Width: v.Width, Height: v.Height}
		cfg.Panel = layout.Frame{Width: v.Width, Height: cfg.Panel.Height}
	}
	if v.PanelHeight > 0 {
		cfg.Panel.Height = v.PanelHeight
	}

	srv := server.New(p,
		server.WithLogger(c.Logger),
		server.WithCache(store),
		server.WithViewConfig(cfg),
		server.WithSessionTTL(opts.sessionTTL))

	printEndpoints(opts.listen, serveEndpoints)
	if opts.sessionTTL > 0 {
		printDetail("Sessions expire after %s without requests", opts.sessionTTL)
	}
	printNewline()

	if err := srv.ListenAndServe(ctx, opts.listen); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
