package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/motifscope/pkg/cache"
	"github.com/matzehuels/motifscope/pkg/matrix"
	"github.com/matzehuels/motifscope/pkg/observability"
	"github.com/matzehuels/motifscope/pkg/provider"
	"github.com/matzehuels/motifscope/pkg/render/pixel/layout"
)

// maxPanelFetches bounds concurrent graphlet fetches.
const maxPanelFetches = 8

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the provider, cache and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Provider provider.Provider
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
}

// NewRunner creates a runner reading from p.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(p provider.Provider, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Provider: p,
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
	}
}

// Execute runs the complete fetch → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
		Views:     make(map[string]*View),
	}

	// Stage 1: Fetch
	fetchStart := time.Now()
	if opts.Dataset != "" {
		if err := r.Provider.LoadDataset(ctx, opts.Dataset); err != nil {
			return nil, fmt.Errorf("load dataset: %w", err)
		}
	}
	motif, err := r.FetchMotif(ctx, opts.MotifOrdering)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	panels, err := r.RenderPanels(ctx, opts.Networks, opts.GraphletOrdering)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.Columns = motif.Matrix.Len()
	result.Stats.Panels = len(panels)

	r.Logger.Info("fetched payloads",
		"networks", motif.Matrix.Len(),
		"panels", len(panels),
		"duration", result.Stats.FetchTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	views, err := r.Layout(ctx, motif, panels, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	for _, v := range views {
		result.Views[v.Name] = v
	}
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.DisplayColumns = views[0].Sequence.Width()

	r.Logger.Info("computed layout",
		"columns", result.Stats.DisplayColumns,
		"duration", result.Stats.LayoutTime)

	if opts.SkipArtifacts {
		return result, nil
	}

	// Stage 3: Render
	renderStart := time.Now()
	allHit := true
	for _, v := range views {
		artifacts, hit, err := r.RenderWithCacheInfo(ctx, v, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", v.Name, err)
		}
		allHit = allHit && hit
		for format, data := range artifacts {
			result.Artifacts[ArtifactName(v.Name, format)] = data
		}
	}
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = allHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"views", len(views),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// FetchMotif fetches the motif view in ordering o.
func (r *Runner) FetchMotif(ctx context.Context, o provider.Ordering) (*matrix.MotifPayload, error) {
	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, MotifView, -1)
	start := time.Now()
	p, err := r.Provider.MotifProfiles(ctx, o)
	cols := 0
	if err == nil {
		cols = p.Matrix.Len()
	}
	hooks.OnFetchComplete(ctx, MotifView, -1, cols, time.Since(start), err)
	return p, err
}

// RenderPanels fetches the graphlet panels of ids concurrently. It fails
// with the first error; the payloads are returned in the order of ids.
func (r *Runner) RenderPanels(ctx context.Context, ids []int, o provider.Ordering) ([]*matrix.GraphletPayload, error) {
	out := make([]*matrix.GraphletPayload, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxPanelFetches)

	for i, id := range ids {
		g.Go(func() error {
			hooks := observability.Pipeline()
			hooks.OnFetchStart(ctx, "gdv", id)
			start := time.Now()
			p, err := r.Provider.GraphletDegrees(ctx, id, o)
			cols := 0
			if err == nil {
				cols = p.Matrix.Len()
			}
			hooks.OnFetchComplete(ctx, "gdv", id, cols, time.Since(start), err)
			if err != nil {
				return fmt.Errorf("network %d: %w", id, err)
			}
			out[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Layout builds the motif view followed by one view per panel.
func (r *Runner) Layout(ctx context.Context, motif *matrix.MotifPayload, panels []*matrix.GraphletPayload, opts Options) ([]*View, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, MotifView, motif.Matrix.Len())
	start := time.Now()
	mv, err := BuildView(motif, ViewSpec{
		Name:      MotifView,
		Frame:     layout.Frame{Width: opts.Width, Height: opts.Height},
		Palette:   opts.Palette,
		Flat:      opts.Flat,
		Unfold:    opts.Unfold,
		Transform: opts.Transform(),
		Selected:  opts.Networks,
	})
	hooks.OnLayoutComplete(ctx, MotifView, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	views := []*View{mv}
	for _, p := range panels {
		name := PanelView(p.NetworkID)
		hooks.OnLayoutStart(ctx, name, p.Matrix.Len())
		start := time.Now()
		v, err := BuildView(p, ViewSpec{
			Name:    name,
			Frame:   layout.Frame{Width: opts.Width, Height: opts.PanelHeight},
			Palette: opts.PanelPalette,
			Flat:    opts.Flat,
		})
		hooks.OnLayoutComplete(ctx, name, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// RenderWithCacheInfo renders v in every requested format with caching and
// reports whether all artifacts came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, v *View, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	hash, err := PayloadHash(v.Payload)
	if err != nil {
		return nil, false, fmt.Errorf("hash payload for cache key: %w", err)
	}
	key := func(format string) string {
		return r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format, v.Palette, v.Grid.Frame.Height, v.Unfolded))
	}

	// Try to get all formats from cache
	if !opts.Refresh {
		artifacts := make(map[string][]byte)
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, key(format))
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(v, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		if err := r.Cache.Set(ctx, key(format), data, cache.TTLArtifact); err != nil {
			r.Logger.Debug("cache artifact", "view", v.Name, "format", format, "err", err)
		}
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

type payloadDigest struct {
	Kind     string      `json:"kind"`
	Item     int         `json:"item"`
	IDs      []int       `json:"ids"`
	Scores   [][]float64 `json:"scores"`
	Clusters [][2]int    `json:"clusters"`
	Labels   []string    `json:"labels"`
}

// PayloadHash returns a content hash of p, used in artifact cache keys.
func PayloadHash(p matrix.Payload) (string, error) {
	b := p.Data()
	d := payloadDigest{Kind: p.Kind().String(), Item: -1, Labels: b.RowLabels}
	if g, ok := p.(*matrix.GraphletPayload); ok {
		d.Item = g.NetworkID
	}
	if b.Matrix != nil {
		for i := range b.Matrix.Len() {
			c := b.Matrix.Column(i)
			d.IDs = append(d.IDs, c.ID)
			d.Scores = append(d.Scores, c.Scores)
		}
	}
	for _, c := range b.Clusters {
		d.Clusters = append(d.Clusters, [2]int{c.Start, c.End})
	}
	data, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}
