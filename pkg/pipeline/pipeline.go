// Package pipeline provides the batch fetch → fold → layout → render
// pipeline for motifscope.
//
// The CLI render command and the HTTP server's static view endpoints share
// this package so that both produce the same artifacts for the same options.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: load the motif profiles and, optionally, the graphlet degree
//     vectors of selected networks from a [provider.Provider]
//  2. Layout: fold long clusters and compute the pixel grid of each view
//  3. Render: write each view as SVG, PNG or JSON through the current zoom
//
// # Usage
//
//	runner := pipeline.NewRunner(p, cache, nil, logger)
//	opts := pipeline.Options{
//	    Networks: []int{3, 7},
//	    Formats:  []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts[pipeline.ArtifactName(pipeline.MotifView, "svg")]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/motifscope/pkg/cache"
	"github.com/matzehuels/motifscope/pkg/provider"
	"github.com/matzehuels/motifscope/pkg/render/pixel/scale"
	"github.com/matzehuels/motifscope/pkg/viewport"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default view width in pixels.
	DefaultWidth = 1200.0

	// DefaultHeight is the default motif view height in pixels.
	DefaultHeight = 300.0

	// DefaultPanelHeight is the default graphlet panel height in pixels.
	DefaultPanelHeight = 220.0

	// DefaultPNGScale is the PNG pixel density.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// Palette names.
const (
	PaletteDiverging  = "diverging"
	PaletteSequential = "sequential"
)

// ValidPalettes is the set of supported color palettes.
var ValidPalettes = map[string]bool{
	PaletteDiverging:  true,
	PaletteSequential: true,
}

// MotifView is the artifact name of the motif view.
const MotifView = "motif"

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Fetch options
	Dataset          string            `json:"dataset,omitempty"`
	MotifOrdering    provider.Ordering `json:"motif_ordering"`
	GraphletOrdering provider.Ordering `json:"graphlet_ordering"`
	Networks         []int             `json:"networks,omitempty"` // graphlet panels to render

	// Layout options
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	PanelHeight float64 `json:"panel_height,omitempty"`
	Flat        bool    `json:"flat,omitempty"`   // turn cluster folding off
	Unfold      []int   `json:"unfold,omitempty"` // source clusters of the motif view to unfold

	// Render options
	Formats       []string `json:"formats,omitempty"`
	Palette       string   `json:"palette,omitempty"`
	PanelPalette  string   `json:"panel_palette,omitempty"`
	Zoom          float64  `json:"zoom,omitempty"`
	PanX          float64  `json:"pan_x,omitempty"`
	Title         string   `json:"title,omitempty"`
	Interactive   string   `json:"interactive,omitempty"` // event endpoint embedded in SVG output
	Refresh       bool     `json:"refresh,omitempty"`
	SkipArtifacts bool     `json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Artifacts contains rendered outputs keyed by [ArtifactName].
	Artifacts map[string][]byte

	// Views contains the computed view of every rendered payload, keyed by
	// view name.
	Views map[string]*View

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Columns        int
	DisplayColumns int
	Panels         int
	FetchTime      time.Duration
	LayoutTime     time.Duration
	RenderTime     time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// ArtifactName returns the artifact key of one view in one format, for
// example "motif.svg" or "gdv-3.png".
func ArtifactName(view, format string) string { return view + "." + format }

// PanelView returns the view name of the graphlet panel of network id.
func PanelView(id int) string { return "gdv-" + strconv.Itoa(id) }

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePalette checks that a palette name is valid.
func ValidatePalette(name string) error {
	if !ValidPalettes[name] {
		return fmt.Errorf("invalid palette: %q (must be one of: diverging, sequential)", name)
	}
	return nil
}

// Palette returns the color scale of a palette name.
func Palette(name string) *scale.ColorScale {
	if name == PaletteSequential {
		return scale.Sequential()
	}
	return scale.Diverging()
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetLayoutDefaults()
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	for _, id := range o.Networks {
		if id < 0 {
			return fmt.Errorf("invalid network: %d", id)
		}
	}
	for _, c := range o.Unfold {
		if c < 0 {
			return fmt.Errorf("invalid cluster: %d", c)
		}
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.PanelHeight <= 0 {
		o.PanelHeight = DefaultPanelHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Palette == "" {
		o.Palette = PaletteDiverging
	}
	if o.PanelPalette == "" {
		o.PanelPalette = PaletteSequential
	}
	if o.Zoom == 0 {
		o.Zoom = 1
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidatePalette(o.Palette); err != nil {
		return err
	}
	return ValidatePalette(o.PanelPalette)
}

// Transform returns the requested zoom transform. It is constrained by the
// view's zoomer before use.
func (o *Options) Transform() viewport.Transform {
	return viewport.Transform{K: o.Zoom, X: o.PanX}
}

// ArtifactKeyOpts returns cache key options for one rendered view.
func (o *Options) ArtifactKeyOpts(format, palette string, height float64, unfold []int) cache.ArtifactKeyOpts {
	unfolded := slices.Clone(unfold)
	slices.Sort(unfolded)
	return cache.ArtifactKeyOpts{
		Format:   format,
		Width:    o.Width,
		Height:   height,
		Abstract: !o.Flat,
		Unfolded: slices.Compact(unfolded),
		Zoom:     o.Zoom,
		PanX:     o.PanX,
		Palette:  palette,
		Title:    o.Title,
		Endpoint: o.Interactive,
	}
}
