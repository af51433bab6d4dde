package view

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/motifscope/pkg/matrix"
	"github.com/matzehuels/motifscope/pkg/provider"
	"github.com/matzehuels/motifscope/pkg/render/pixel/layout"
	"github.com/matzehuels/motifscope/pkg/render/pixel/scale"
	"github.com/matzehuels/motifscope/pkg/selection"
)

// Default view sizes.
const (
	DefaultWidth        = 1200
	DefaultHeight       = 300
	DefaultPanelHeight  = 220
	DefaultDetailWidth  = 600
	DefaultDetailHeight = 600
)

// Config holds the settings of a Session.
type Config struct {
	Motif  layout.Frame
	Panel  layout.Frame
	Detail layout.Frame

	Dwell    time.Duration
	Abstract bool
	Paging   bool
	Labels   bool

	// Colors and PanelColors default to the diverging and sequential
	// palettes.
	Colors      *scale.ColorScale
	PanelColors *scale.ColorScale

	MotifOrdering    provider.Ordering
	GraphletOrdering provider.Ordering

	validated bool
}

// DefaultConfig returns a config with folding on and default sizes.
func DefaultConfig() Config {
	c := Config{Abstract: true}
	c.ValidateAndSetDefaults()
	return c
}

// ValidateAndSetDefaults fills zero sizes and the dwell delay. It is
// idempotent.
func (c *Config) ValidateAndSetDefaults() {
	if c.validated {
		return
	}
	if c.Motif.Width <= 0 {
		c.Motif.Width = DefaultWidth
	}
	if c.Motif.Height <= 0 {
		c.Motif.Height = DefaultHeight
	}
	if c.Panel.Width <= 0 {
		c.Panel.Width = c.Motif.Width
	}
	if c.Panel.Height <= 0 {
		c.Panel.Height = DefaultPanelHeight
	}
	if c.Detail.Width <= 0 {
		c.Detail.Width = DefaultDetailWidth
	}
	if c.Detail.Height <= 0 {
		c.Detail.Height = DefaultDetailHeight
	}
	if c.Dwell <= 0 {
		c.Dwell = selection.DefaultDwell
	}
	if c.Colors == nil {
		c.Colors = scale.Diverging()
	}
	if c.PanelColors == nil {
		c.PanelColors = scale.Sequential()
	}
	c.validated = true
}

// Session is the shared context of one user.
type Session struct {
	ctx      context.Context
	cfg      Config
	provider provider.Provider
	sched    selection.Scheduler
	post     func(func())
	logger   *log.Logger
	onError  func(error)
	onChange func()

	state  *selection.State
	detail *Detail
	motif  *PixelView
	panels map[int]*PixelView
	err    error
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) SessionOption { return func(s *Session) { s.logger = l } }

// WithErrorHandler is called on the event loop for failures that happen
// off it, such as a panel fetch started by a click.
func WithErrorHandler(fn func(error)) SessionOption { return func(s *Session) { s.onError = fn } }

// WithChangeHandler is called on the event loop after asynchronous work
// changed what is drawn.
func WithChangeHandler(fn func()) SessionOption { return func(s *Session) { s.onChange = fn } }

// WithDetailOptions configures the detail view.
func WithDetailOptions(opts ...DetailOption) SessionOption {
	return func(s *Session) {
		for _, opt := range opts {
			opt(s.detail)
		}
	}
}

// NewSession returns a session with an empty motif view. sched arms dwell
// timers; post runs functions on the event loop, nil meaning inline.
func NewSession(ctx context.Context, p provider.Provider, sched selection.Scheduler, post func(func()), cfg Config, opts ...SessionOption) *Session {
	cfg.ValidateAndSetDefaults()
	s := &Session{
		ctx:      ctx,
		cfg:      cfg,
		provider: p,
		sched:    sched,
		post:     post,
		logger:   log.Default(),
		state:    selection.NewState(),
		panels:   make(map[int]*PixelView),
	}
	s.state.SetPaging(cfg.Paging)
	s.detail = NewDetail(p, cfg.Detail.Width, cfg.Detail.Height, post,
		WithLabels(cfg.Labels), WithResultHandler(s.detailDone))
	for _, opt := range opts {
		opt(s)
	}
	s.detail.logger = s.logger

	coord := selection.NewCoordinator(selection.MotifView, s.state, sched, s.detail,
		selection.WithDwell(cfg.Dwell),
		selection.WithIndicator(s.detail),
		selection.WithPanelHost(s),
		selection.WithContext(ctx))
	s.motif = NewPixelView(selection.MotifView, cfg.Motif, coord, s.state,
		WithAbstraction(cfg.Abstract), WithColors(cfg.Colors))
	return s
}

// Config returns the session settings.
func (s *Session) Config() Config { return s.cfg }

// State returns the selection state.
func (s *Session) State() *selection.State { return s.state }

// Motif returns the motif view.
func (s *Session) Motif() *PixelView { return s.motif }

// Detail returns the node-link detail view.
func (s *Session) Detail() *Detail { return s.detail }

// Panel returns the graphlet panel of network id.
func (s *Session) Panel(id int) (*PixelView, bool) {
	v, ok := s.panels[id]
	return v, ok
}

// Panels returns the open panel ids in ascending order.
func (s *Session) Panels() []int {
	var ids []int
	for _, id := range s.state.Panels() {
		if _, ok := s.panels[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Err returns the last failure reported off the event loop.
func (s *Session) Err() error { return s.err }

// LoadDataset switches datasets and reloads the motif view. Selection and
// open panels are kept; panels show their old data until refreshed.
func (s *Session) LoadDataset(ctx context.Context, name string) error {
	if err := s.provider.LoadDataset(ctx, name); err != nil {
		return err
	}
	return s.SetMotifOrdering(ctx, s.cfg.MotifOrdering)
}

// Reload fetches the motif view and all panels again, for example after the
// dataset changed on disk.
func (s *Session) Reload(ctx context.Context) error {
	if err := s.SetMotifOrdering(ctx, s.cfg.MotifOrdering); err != nil {
		return err
	}
	return s.RefreshPanels(ctx)
}

// SetMotifOrdering fetches the motif view in ordering o. On failure the view
// keeps its current matrix.
func (s *Session) SetMotifOrdering(ctx context.Context, o provider.Ordering) error {
	p, err := s.provider.MotifProfiles(ctx, o)
	if err != nil {
		return err
	}
	s.cfg.MotifOrdering = o
	s.motif.SetPayload(p)
	return nil
}

// SetGraphletOrdering changes the ordering of every panel and refreshes them.
func (s *Session) SetGraphletOrdering(ctx context.Context, o provider.Ordering) error {
	s.cfg.GraphletOrdering = o
	return s.RefreshPanels(ctx)
}

// AddGraphletPanel opens the panel of network id and fetches it. Opening an
// open panel does nothing.
func (s *Session) AddGraphletPanel(ctx context.Context, id int) error {
	if !s.state.Open(id) {
		return nil
	}
	p, err := s.provider.GraphletDegrees(ctx, id, s.cfg.GraphletOrdering)
	if err != nil {
		s.state.Close(id)
		return err
	}
	s.attach(id, p)
	return nil
}

// OpenPanel implements selection.PanelHost. With an event loop the fetch
// runs off it and the panel appears when it completes.
func (s *Session) OpenPanel(ctx context.Context, id int) {
	if s.post == nil {
		if err := s.AddGraphletPanel(ctx, id); err != nil {
			s.report(err)
		}
		return
	}
	if !s.state.Open(id) {
		return
	}
	o := s.cfg.GraphletOrdering
	go func() {
		p, err := s.provider.GraphletDegrees(ctx, id, o)
		s.post(func() {
			if err != nil {
				s.state.Close(id)
				s.report(err)
				return
			}
			if !s.state.IsOpen(id) {
				return
			}
			s.attach(id, p)
			s.changed()
		})
	}()
}

func (s *Session) attach(id int, p *matrix.GraphletPayload) {
	if v, ok := s.panels[id]; ok {
		v.SetPayload(p)
		return
	}
	coord := selection.NewCoordinator(selection.GraphletView, s.state, s.sched, s.detail,
		selection.WithDwell(s.cfg.Dwell),
		selection.WithIndicator(s.detail),
		selection.WithNetwork(id),
		selection.WithContext(s.ctx))
	v := NewPixelView(selection.GraphletView, s.cfg.Panel, coord, s.state,
		WithAbstraction(s.cfg.Abstract), WithColors(s.cfg.PanelColors))
	v.SetPayload(p)
	s.panels[id] = v
}

// RemoveGraphletPanel closes the panel of network id and clears the motif
// column selection for it.
func (s *Session) RemoveGraphletPanel(id int) bool {
	if v, ok := s.panels[id]; ok {
		v.Leave()
		delete(s.panels, id)
	}
	return s.state.Close(id)
}

// RefreshPanels fetches every open panel again, concurrently. Panels whose
// fetch fails keep their previous matrix; the first failure is returned.
func (s *Session) RefreshPanels(ctx context.Context) error {
	ids := s.Panels()
	if len(ids) == 0 {
		return nil
	}
	results := make([]*matrix.GraphletPayload, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			p, err := s.provider.GraphletDegrees(ctx, id, s.cfg.GraphletOrdering)
			results[i] = p
			return err
		})
	}
	err := g.Wait()
	for i, id := range ids {
		if results[i] != nil {
			s.attach(id, results[i])
		}
	}
	return err
}

// SetAbstraction turns folding on or off in every view.
func (s *Session) SetAbstraction(on bool) {
	s.cfg.Abstract = on
	s.motif.SetAbstraction(on)
	for _, v := range s.panels {
		v.SetAbstraction(on)
	}
}

// SetPaging turns community paging of the detail view on or off and redraws
// the current detail.
func (s *Session) SetPaging(on bool) {
	s.cfg.Paging = on
	s.state.SetPaging(on)
	if _, ok := s.state.Detail(); ok {
		s.detail.Show(s.ctx, s.state.Request())
	}
}

// NextClusterPage moves the detail view one community page forward or back
// and redraws it. It reports false when no detail is shown.
func (s *Session) NextClusterPage(forward bool) bool {
	var req selection.DetailRequest
	var ok bool
	if forward {
		req, ok = s.state.NextPage()
	} else {
		req, ok = s.state.PrevPage()
	}
	if ok {
		s.detail.Show(s.ctx, req)
	}
	return ok
}

// Tooltip returns the tooltip of display column i of v. Placeholders have
// none.
func (s *Session) Tooltip(ctx context.Context, v *PixelView, i int) (Tooltip, bool, error) {
	seq := v.Sequence()
	if i < 0 || i >= seq.Width() || seq.IsPlaceholder(i) {
		return Tooltip{}, false, nil
	}
	col := seq.Columns[i]
	switch p := v.Payload().(type) {
	case *matrix.MotifPayload:
		meta, err := s.provider.Meta(ctx, col.ID)
		if err != nil {
			return MotifTooltip(matrix.Meta{}, p.Motifs, col.Scores), true, err
		}
		return MotifTooltip(meta, p.Motifs, col.Scores), true, nil
	case *matrix.GraphletPayload:
		return GraphletTooltip(p, col), true, nil
	default:
		return Tooltip{}, false, nil
	}
}

// Close ends every hover so no dwell timer fires afterwards.
func (s *Session) Close() {
	s.motif.Leave()
	for _, v := range s.panels {
		v.Leave()
	}
}

func (s *Session) detailDone(res DetailResult) {
	if res.Err != nil {
		s.report(res.Err)
	}
	s.changed()
}

func (s *Session) report(err error) {
	s.err = err
	s.logger.Error("session", "err", err)
	if s.onError != nil {
		s.onError(err)
	}
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

var _ selection.PanelHost = (*Session)(nil)
