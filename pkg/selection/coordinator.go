package selection

import (
	"context"
	"time"

	"github.com/matzehuels/motifscope/pkg/observability"
)

// ViewKind distinguishes the two pixel views.
type ViewKind int

const (
	MotifView ViewKind = iota
	GraphletView
)

func (k ViewKind) String() string {
	if k == GraphletView {
		return "gdv"
	}
	return "motif"
}

// Phase is the hover state of a coordinator.
type Phase int

const (
	Idle Phase = iota
	Hovering
	DetailRequested
	CancelledOnExit
)

func (p Phase) String() string {
	switch p {
	case Hovering:
		return "hovering"
	case DetailRequested:
		return "detail-requested"
	case CancelledOnExit:
		return "cancelled"
	default:
		return "idle"
	}
}

// Target is the display column under the pointer.
type Target struct {
	Index       int
	ItemID      int
	Placeholder bool
}

// DetailRenderer shows the node-link detail view. Show must not block; the
// coordinator does not wait for or inspect the outcome.
type DetailRenderer interface {
	Show(ctx context.Context, req DetailRequest)
}

// PanelHost opens graphlet panels for motif columns.
type PanelHost interface {
	OpenPanel(ctx context.Context, itemID int)
}

// Indicator shows and hides the busy indicator of the detail view.
type Indicator interface {
	SetBusy(busy bool)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithDwell overrides [DefaultDwell].
func WithDwell(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.dwell = d
		}
	}
}

// WithIndicator sets the busy indicator.
func WithIndicator(i Indicator) Option { return func(c *Coordinator) { c.busy = i } }

// WithPanelHost sets the panel host used by motif view clicks.
func WithPanelHost(h PanelHost) Option { return func(c *Coordinator) { c.panels = h } }

// WithNetwork sets the network a graphlet view belongs to.
func WithNetwork(id int) Option { return func(c *Coordinator) { c.network = id } }

// WithContext sets the context passed to renderer and host calls.
func WithContext(ctx context.Context) Option { return func(c *Coordinator) { c.ctx = ctx } }

// Coordinator runs the hover and click protocol for one view. All methods
// must be called from the owning event loop.
type Coordinator struct {
	kind     ViewKind
	network  int
	state    *State
	detail   DetailRenderer
	panels   PanelHost
	busy     Indicator
	dwell    time.Duration
	deferred *Deferred
	ctx      context.Context

	phase   Phase
	outcome Phase
	hovered Target
}

// NewCoordinator returns an idle coordinator.
func NewCoordinator(kind ViewKind, state *State, sched Scheduler, detail DetailRenderer, opts ...Option) *Coordinator {
	c := &Coordinator{
		kind:     kind,
		network:  -1,
		state:    state,
		detail:   detail,
		dwell:    DefaultDwell,
		deferred: NewDeferred(sched),
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Phase returns the hover state.
func (c *Coordinator) Phase() Phase { return c.phase }

// Outcome returns how the last hover ended: [DetailRequested],
// [CancelledOnExit], or [Idle] if no hover has ended yet.
func (c *Coordinator) Outcome() Phase { return c.outcome }

// Hovered returns the column under the pointer while hovering.
func (c *Coordinator) Hovered() (Target, bool) {
	if c.phase != Hovering && c.phase != DetailRequested {
		return Target{}, false
	}
	return c.hovered, true
}

// Pending reports whether a dwell timer is armed.
func (c *Coordinator) Pending() bool { return c.deferred.Pending() }

// Enter handles the pointer entering a column.
func (c *Coordinator) Enter(t Target) {
	if t.Placeholder {
		c.Leave()
		return
	}
	if c.deferred.Cancel() {
		observability.Selection().OnDwellCancelled(c.ctx, c.kind.String(), c.hovered.ItemID)
	}
	c.phase = Hovering
	c.hovered = t
	c.setBusy(true)
	c.deferred.Arm(c.dwell, func() { c.fire(t) })
	observability.Selection().OnDwellArmed(c.ctx, c.kind.String(), t.ItemID)
}

// Leave handles the pointer leaving the current column.
func (c *Coordinator) Leave() {
	if c.deferred.Cancel() {
		observability.Selection().OnDwellCancelled(c.ctx, c.kind.String(), c.hovered.ItemID)
		c.outcome = CancelledOnExit
	}
	c.setBusy(false)
	c.phase = Idle
}

func (c *Coordinator) fire(t Target) {
	if c.phase != Hovering || c.hovered != t {
		return
	}
	c.phase = DetailRequested
	c.outcome = DetailRequested
	observability.Selection().OnDwellFired(c.ctx, c.kind.String(), t.ItemID)
	c.detail.Show(c.ctx, c.request(t))
}

// Click handles a click on a column and reports whether an open request was
// issued.
func (c *Coordinator) Click(t Target) bool {
	if t.Placeholder {
		return false
	}
	observability.Selection().OnClick(c.ctx, c.kind.String(), t.ItemID)
	if c.kind == GraphletView {
		c.detail.Show(c.ctx, c.request(t))
		return true
	}
	c.state.Select(t.ItemID)
	if c.state.IsOpen(t.ItemID) {
		return false
	}
	if c.panels != nil {
		c.panels.OpenPanel(c.ctx, t.ItemID)
	}
	return true
}

// request builds the detail request for a column of this view.
func (c *Coordinator) request(t Target) DetailRequest {
	if c.kind == GraphletView {
		return c.state.Focus(c.network, t.ItemID)
	}
	return c.state.Focus(t.ItemID, NoNode)
}

func (c *Coordinator) setBusy(b bool) {
	if c.busy != nil {
		c.busy.SetBusy(b)
	}
}
