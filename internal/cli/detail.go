package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/motifscope/pkg/provider"
	"github.com/matzehuels/motifscope/pkg/render/nodelink"
	"github.com/matzehuels/motifscope/pkg/selection"
	"github.com/matzehuels/motifscope/pkg/view"
)

// Detail output formats.
const (
	detailSVG  = "svg"
	detailDOT  = "dot"
	detailJSON = "json"
)

// detailOpts holds the command-line flags for the detail command.
type detailOpts struct {
	output string
	format string
	node   int
	page   int
	labels bool
	width  float64
	height float64
}

// detailCommand creates the detail command for drawing one network.
func (c *CLI) detailCommand() *cobra.Command {
	opts := detailOpts{
		node:   -1,
		page:   -1,
		format: detailSVG,
		width:  view.DefaultDetailWidth,
		height: view.DefaultDetailHeight,
	}

	cmd := &cobra.Command{
		Use:   "detail <network>",
		Short: "Draw the node-link diagram of one network",
		Long: `Draw the node-link diagram of one network of the active dataset.

With --node, the node and its neighbourhood are highlighted. Networks with more
than 100 nodes are split into communities; --page selects one.`,
		Example: `  motifscope detail 12 --data flights.json -o net12.svg
  motifscope detail 12 --node 4 --page 2 --format dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id < 0 {
				return fmt.Errorf("invalid network id %q", args[0])
			}
			switch opts.format {
			case detailSVG, detailDOT, detailJSON:
			default:
				return fmt.Errorf("invalid format: %q (must be one of: svg, dot, json)", opts.format)
			}
			return c.runDetail(cmd.Context(), id, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, dot, json")
	cmd.Flags().IntVar(&opts.node, "node", opts.node, "node to highlight")
	cmd.Flags().IntVar(&opts.page, "page", opts.page, "community page of large networks")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "draw node names (default from config)")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "drawing width in pixels")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "drawing height in pixels")

	return cmd
}

// runDetail fetches and draws one network.
func (c *CLI) runDetail(ctx context.Context, id int, opts detailOpts) error {
	store, err := c.newCache(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	p, err := c.newProvider(ctx, store)
	if err != nil {
		return err
	}

	labels := opts.labels || c.cfg.View.Labels
	d := view.NewDetail(p, opts.width, opts.height, nil, view.WithLabels(labels), view.WithDetailLogger(c.Logger))
	req := selection.DetailRequest{ItemID: id, SubElementID: opts.node, ClusterPage: opts.page}

	var data []byte
	switch opts.format {
	case detailSVG:
		res := d.Render(ctx, req)
		if res.Err != nil {
			return fmt.Errorf("detail %d: %w", id, res.Err)
		}
		data = res.SVG
		printDetailSummary(res.Graph)
	default:
		g, err := p.Graph(ctx, provider.GraphQuery{NetworkID: id, NodeID: opts.node, Page: opts.page})
		if err != nil {
			return fmt.Errorf("detail %d: %w", id, err)
		}
		if opts.format == detailDOT {
			data = []byte(nodelink.ToDOT(g, nodelink.Options{Labels: labels}))
		} else if data, err = nodelink.Encode(g); err != nil {
			return err
		}
		printDetailSummary(g)
	}

	if opts.output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printFile(opts.output)
	return nil
}

// printDetailSummary prints the size of g to stderr; stdout may carry the
// drawing.
func printDetailSummary(g *nodelink.Graph) {
	if g == nil {
		return
	}
	msg := fmt.Sprintf("%d nodes, %d links", len(g.Nodes), len(g.Links))
	if g.Pages > 0 {
		msg += fmt.Sprintf(", page %d of %d", g.Page+1, g.Pages)
	}
	fmt.Fprintln(os.Stderr, StyleDim.Render(msg))
}
