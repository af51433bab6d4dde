package view

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/motifscope/pkg/provider"
	"github.com/matzehuels/motifscope/pkg/render/nodelink"
	"github.com/matzehuels/motifscope/pkg/selection"
	"github.com/matzehuels/motifscope/pkg/viewport"
)

// DetailResult is the outcome of one detail request.
type DetailResult struct {
	Request selection.DetailRequest
	Graph   *nodelink.Graph
	SVG     []byte
	Err     error
}

// Detail is the node-link detail view. It fetches and draws networks off the
// event loop and delivers results back on it. Only the result of the most
// recent request is delivered.
type Detail struct {
	provider provider.Provider
	post     func(func())
	onResult func(DetailResult)
	opts     nodelink.Options
	logger   *log.Logger

	zoom   *viewport.Zoomer
	seq    uint64
	last   DetailResult
	hasRes bool
	busy   bool
	armed  bool
}

// DetailOption configures a Detail.
type DetailOption func(*Detail)

// WithLabels draws node names.
func WithLabels(on bool) DetailOption { return func(d *Detail) { d.opts.Labels = on } }

// WithResultHandler is called on the event loop with every delivered result.
func WithResultHandler(fn func(DetailResult)) DetailOption {
	return func(d *Detail) { d.onResult = fn }
}

// WithDetailLogger sets the logger.
func WithDetailLogger(l *log.Logger) DetailOption { return func(d *Detail) { d.logger = l } }

// NewDetail returns a detail view of size width x height. post runs a
// function on the owning event loop; nil runs it inline, which makes Show
// synchronous.
func NewDetail(p provider.Provider, width, height float64, post func(func()), opts ...DetailOption) *Detail {
	d := &Detail{
		provider: p,
		post:     post,
		logger:   log.Default(),
		zoom:     viewport.NodeLink(width, height),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Show implements selection.DetailRenderer.
func (d *Detail) Show(ctx context.Context, req selection.DetailRequest) {
	d.seq++
	seq := d.seq
	d.busy = true
	if d.post == nil {
		d.deliver(seq, d.Render(ctx, req))
		return
	}
	go func() {
		res := d.Render(ctx, req)
		d.post(func() { d.deliver(seq, res) })
	}()
}

func (d *Detail) deliver(seq uint64, res DetailResult) {
	if seq != d.seq {
		return
	}
	d.busy = false
	if res.Err != nil {
		d.logger.Warn("detail view", "network", res.Request.ItemID, "err", res.Err)
	} else if !d.hasRes || d.last.Request.ItemID != res.Request.ItemID {
		d.zoom.Reset()
	}
	d.last, d.hasRes = res, true
	if d.onResult != nil {
		d.onResult(res)
	}
}

// Render fetches and draws req. It is safe to call from any goroutine.
func (d *Detail) Render(ctx context.Context, req selection.DetailRequest) DetailResult {
	res := DetailResult{Request: req}
	g, err := d.provider.Graph(ctx, provider.GraphQuery{
		NetworkID: req.ItemID,
		NodeID:    req.SubElementID,
		Page:      req.ClusterPage,
	})
	if err != nil {
		res.Err = err
		return res
	}
	res.Graph = g
	res.SVG, res.Err = nodelink.RenderSVG(ctx, nodelink.ToDOT(g, d.opts))
	return res
}

// SetBusy implements selection.Indicator. It is set while a hover dwell is
// pending.
func (d *Detail) SetBusy(b bool) { d.armed = b }

// Busy reports whether a hover is pending or a request is in flight.
func (d *Detail) Busy() bool { return d.busy || d.armed }

// Last returns the most recent delivered result.
func (d *Detail) Last() (DetailResult, bool) { return d.last, d.hasRes }

// Zoomer returns the transform of the detail view.
func (d *Detail) Zoomer() *viewport.Zoomer { return d.zoom }

// SVG returns the last drawing under the current zoom, or nil.
func (d *Detail) SVG() []byte {
	if !d.hasRes || d.last.SVG == nil {
		return nil
	}
	t := d.zoom.Transform()
	return nodelink.Zoom(d.last.SVG, t.K, t.X, t.Y)
}

var (
	_ selection.DetailRenderer = (*Detail)(nil)
	_ selection.Indicator      = (*Detail)(nil)
)
