package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/motifscope/pkg/pipeline"
	"github.com/matzehuels/motifscope/pkg/provider"
)

// renderFlags holds the command-line flags for the render command that do
// not map one-to-one onto pipeline options.
type renderFlags struct {
	output    string // output directory
	formats   string // comma-separated formats
	networks  string // comma-separated network ids for graphlet panels
	unfold    string // comma-separated cluster indices to expand
	motifOrd  string // "x,y" motif ordering
	gdvOrd    string // "x,y" graphlet ordering
	overrides renderOverrides
}

// renderOverrides are flags that replace config values only when set.
type renderOverrides struct {
	width, height, panelHeight float64
	palette, panelPalette      string
	flat                       bool
}

// renderCommand creates the render command for writing views to files.
func (c *CLI) renderCommand() *cobra.Command {
	var f renderFlags
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the motif view and graphlet panels to files",
		Long: `Render the motif significance view of the active dataset, plus one graphlet
degree panel per network given with --networks.

Runs of more than nine networks in one cluster are folded to nine columns
unless --flat is set; --unfold expands individual clusters. Artifacts are
written as motif.<format> and gdv-<id>.<format> into the output directory and
cached for faster subsequent runs.`,
		Example: `  motifscope render --data flights.json -f svg,png
  motifscope render --url http://localhost:5000 --dataset enron --networks 3,17 --order clustering,median`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := c.renderOptions(cmd, f, opts)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), o, f.output)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", ".", "output directory")
	fl.StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, json (comma-separated)")
	fl.StringVarP(&f.networks, "networks", "n", "", "networks to open as graphlet panels (comma-separated ids)")
	fl.StringVar(&f.unfold, "unfold", "", "cluster indices to show unfolded (comma-separated)")
	fl.StringVar(&f.motifOrd, "order", "", "motif ordering as x,y (x may be \"clustering\")")
	fl.StringVar(&f.gdvOrd, "gdv-order", "", "graphlet ordering as x,y")
	fl.BoolVar(&f.overrides.flat, "flat", false, "disable cluster folding")
	fl.Float64Var(&f.overrides.width, "width", 0, "view width in pixels")
	fl.Float64Var(&f.overrides.height, "height", 0, "motif view height in pixels")
	fl.Float64Var(&f.overrides.panelHeight, "panel-height", 0, "graphlet panel height in pixels")
	fl.StringVar(&f.overrides.palette, "palette", "", "motif palette: diverging, sequential")
	fl.StringVar(&f.overrides.panelPalette, "panel-palette", "", "panel palette: diverging, sequential")
	fl.Float64Var(&opts.Zoom, "zoom", 1, "initial zoom factor")
	fl.Float64Var(&opts.PanX, "pan", 0, "initial horizontal pan in pixels")
	fl.StringVar(&opts.Title, "title", "", "title drawn above the view")
	fl.StringVar(&opts.Interactive, "interactive", "", "endpoint that interactive SVGs report events to")
	fl.BoolVar(&opts.Refresh, "refresh", false, "bypass cached artifacts")

	return cmd
}

// renderOptions merges config values, overrides and flags into pipeline
// options.
func (c *CLI) renderOptions(cmd *cobra.Command, f renderFlags, flagOpts pipeline.Options) (pipeline.Options, error) {
	o := c.pipelineOptions()
	o.Zoom, o.PanX = flagOpts.Zoom, flagOpts.PanX
	o.Title, o.Interactive, o.Refresh = flagOpts.Title, flagOpts.Interactive, flagOpts.Refresh

	fl := cmd.Flags()
	ov := f.overrides
	if fl.Changed("width") {
		o.Width = ov.width
	}
	if fl.Changed("height") {
		o.Height = ov.height
	}
	if fl.Changed("panel-height") {
		o.PanelHeight = ov.panelHeight
	}
	if fl.Changed("palette") {
		o.Palette = ov.palette
	}
	if fl.Changed("panel-palette") {
		o.PanelPalette = ov.panelPalette
	}
	if fl.Changed("flat") {
		o.Flat = ov.flat
	}

	o.Formats = parseFormats(f.formats)
	var err error
	if o.Networks, err = parseInts(f.networks); err != nil {
		return o, fmt.Errorf("--networks: %w", err)
	}
	if o.Unfold, err = parseInts(f.unfold); err != nil {
		return o, fmt.Errorf("--unfold: %w", err)
	}
	o.MotifOrdering = provider.ParseOrdering(f.motifOrd)
	o.GraphletOrdering = provider.ParseOrdering(f.gdvOrd)

	if err := o.ValidateAndSetDefaults(); err != nil {
		return o, err
	}
	return o, nil
}

// runRender executes the pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spin := startSpinner(ctx, "Rendering views...")
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spin.Fail("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spin.Stop()
	prog.done(fmt.Sprintf("Rendered %d views", len(result.Views)))

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		output:    output,
		stats:     result.Stats,
		cacheHit:  result.CacheInfo.RenderHit,
	})
}

// artifactWriteParams bundles the parameters for writeArtifacts.
type artifactWriteParams struct {
	artifacts map[string][]byte
	output    string
	stats     pipeline.Stats
	cacheHit  bool
}

// writeArtifacts writes every artifact into the output directory in name
// order and reports the written paths.
func writeArtifacts(p artifactWriteParams) error {
	if err := os.MkdirAll(p.output, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	names := make([]string, 0, len(p.artifacts))
	for name := range p.artifacts {
		names = append(names, name)
	}
	sort.Strings(names)

	printSuccess("Rendered %d artifacts", len(names))
	printStats(p.stats.Columns, p.stats.DisplayColumns, p.stats.Panels, p.cacheHit)
	for _, name := range names {
		path := filepath.Join(p.output, name)
		if err := os.WriteFile(path, p.artifacts[name], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	if len(names) > 0 {
		printNewline()
		printNextStep("Explore interactively", appName+" explore")
	}
	return nil
}
