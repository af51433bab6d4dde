package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/motifscope/pkg/errors"
	"github.com/matzehuels/motifscope/pkg/matrix"
	"github.com/matzehuels/motifscope/pkg/pipeline"
	"github.com/matzehuels/motifscope/pkg/provider"
	"github.com/matzehuels/motifscope/pkg/render/pixel/layout"
	"github.com/matzehuels/motifscope/pkg/selection"
	"github.com/matzehuels/motifscope/pkg/view"
)

// Explorer geometry in terminal cells. One cell is one pixel of the view
// frame.
const (
	motifTop       = 2 // header and unfold rows
	motifRows      = 8
	panelRows      = 4
	minExploreCols = 20
	postQueue      = 64
	panStep        = 0.1 // fraction of the width per arrow key
	zoomStep       = 1.5
	wheelDelta     = 120.0
)

// Explorer styles
var (
	exploreHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	explorePlaceholder = lipgloss.NewStyle().Foreground(colorDim).Render("·")
	exploreUnfold      = lipgloss.NewStyle().Foreground(colorYellow).Render("+")
	exploreSelected    = StyleSelected.Render("▲")
	exploreHelp        = "mouse: hover/click/wheel · ←/→ pan · +/- zoom · 0 reset · a fold · u unfold · p paging · [/] page · x close panel · r reload · q quit"
)

// exploreCommand creates the interactive explorer.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		motifOrd string
		gdvOrd   string
		networks string
		noWatch  bool
	)

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Explore the motif view interactively in the terminal",
		Long: `Explore the motif view of the active dataset in the terminal.

Hover a column to see its tooltip; resting on it opens the node-link detail of
that network. Clicking a column opens its graphlet degree panel below the
motif view. Folded clusters are expanded by clicking their + marker. Local
datasets are reloaded when the file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseInts(networks)
			if err != nil {
				return fmt.Errorf("--networks: %w", err)
			}
			return c.runExplore(cmd.Context(), exploreOpts{
				motif:    provider.ParseOrdering(motifOrd),
				graphlet: provider.ParseOrdering(gdvOrd),
				networks: ids,
				watch:    !noWatch,
			})
		},
	}

	cmd.Flags().StringVar(&motifOrd, "order", "", "motif ordering as x,y (x may be \"clustering\")")
	cmd.Flags().StringVar(&gdvOrd, "gdv-order", "", "graphlet ordering as x,y")
	cmd.Flags().StringVarP(&networks, "networks", "n", "", "graphlet panels to open at start (comma-separated ids)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload local datasets on change")

	return cmd
}

type exploreOpts struct {
	motif    provider.Ordering
	graphlet provider.Ordering
	networks []int
	watch    bool
}

// runExplore loads the session and runs the terminal program.
func (c *CLI) runExplore(ctx context.Context, opts exploreOpts) error {
	store, err := c.newCache(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	p, err := c.newProvider(ctx, store)
	if err != nil {
		return err
	}

	m := newExploreModel(ctx, p, nil, c.sessionConfig(opts))
	defer m.session.Close()

	spin := startSpinner(ctx, "Loading dataset...")
	if err := m.session.Reload(ctx); err != nil {
		spin.Fail("Load failed")
		return fmt.Errorf("load motif view: %w", err)
	}
	for _, id := range opts.networks {
		spin.Update(fmt.Sprintf("Opening graphlet panel %d...", id))
		if err := m.session.AddGraphletPanel(ctx, id); err != nil {
			spin.Fail("Load failed")
			return fmt.Errorf("open panel %d: %w", id, err)
		}
	}
	spin.Stop()

	if fp, ok := p.(*provider.FileProvider); ok && opts.watch && fp.Path() != "" {
		w, err := provider.Watch(ctx, fp, m.reloaded)
		if err != nil {
			c.Logger.Warn("watch dataset", "err", err)
		} else {
			defer w.Close()
		}
	}

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx)).Run()
	return err
}

// sessionConfig builds the view session settings from the config.
func (c *CLI) sessionConfig(opts exploreOpts) view.Config {
	v := c.cfg.View
	cfg := view.DefaultConfig()
	cfg.Dwell = v.Dwell.Duration
	cfg.Abstract = !v.Flat
	cfg.Paging = v.Paging
	cfg.Labels = v.Labels
	cfg.Colors = pipeline.Palette(v.Palette)
	cfg.PanelColors = pipeline.Palette(v.PanelPalette)
	cfg.MotifOrdering = opts.motif
	cfg.GraphletOrdering = opts.graphlet
	return cfg
}

// =============================================================================
// Model
// =============================================================================

// postMsg carries a function posted from another goroutine to the program.
type postMsg func()

// exploreModel is the bubbletea model of the explorer. Every session call
// happens inside Update, so the session never sees concurrent access.
type exploreModel struct {
	ctx     context.Context
	session *view.Session
	posts   chan func()

	width, height int
	active        *view.PixelView
	tip           view.Tooltip
	hasTip        bool
	err           error
	styles        map[string]lipgloss.Style
}

// newExploreModel creates the model and its session. A nil sched fires dwell
// timers through the program.
func newExploreModel(ctx context.Context, p provider.Provider, sched selection.Scheduler, cfg view.Config) *exploreModel {
	m := &exploreModel{
		ctx:    ctx,
		posts:  make(chan func(), postQueue),
		width:  int(cfg.Motif.Width),
		styles: make(map[string]lipgloss.Style),
	}
	if sched == nil {
		sched = selection.LoopScheduler{Post: m.post}
	}
	m.session = view.NewSession(ctx, p, sched, m.post, cfg)
	return m
}

// post queues fn for the program loop. It is safe from any goroutine.
func (m *exploreModel) post(fn func()) {
	select {
	case m.posts <- fn:
	case <-m.ctx.Done():
	}
}

// waitPost delivers the next posted function as a message.
func (m *exploreModel) waitPost() tea.Cmd {
	return func() tea.Msg {
		select {
		case fn := <-m.posts:
			return postMsg(fn)
		case <-m.ctx.Done():
			return nil
		}
	}
}

// reloaded is the dataset watcher callback.
func (m *exploreModel) reloaded(err error) {
	m.post(func() {
		if err != nil {
			m.err = err
			return
		}
		m.err = m.session.Reload(m.ctx)
	})
}

func (m *exploreModel) Init() tea.Cmd {
	return m.waitPost()
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case postMsg:
		msg()
		m.fit()
		return m, m.waitPost()
	case tea.WindowSizeMsg:
		m.width, m.height = max(msg.Width, minExploreCols), msg.Height
		m.fit()
	case tea.MouseMsg:
		m.mouse(msg)
	case tea.KeyMsg:
		return m, m.key(msg.String())
	}
	return m, nil
}

// fit resizes every view to the terminal width. Zoom is kept.
func (m *exploreModel) fit() {
	if m.width <= 0 {
		return
	}
	fit := func(v *view.PixelView, rows int) {
		f := layout.Frame{Width: float64(m.width), Height: float64(rows)}
		if v.Grid().Frame != f {
			v.Resize(f)
		}
	}
	fit(m.session.Motif(), motifRows)
	for _, id := range m.session.Panels() {
		v, _ := m.session.Panel(id)
		fit(v, panelRows)
	}
}

func (m *exploreModel) key(k string) tea.Cmd {
	s := m.session
	v := m.focused()
	switch k {
	case "q", "ctrl+c", "esc":
		s.Close()
		return tea.Quit
	case "left", "h":
		v.PanBy(float64(m.width) * panStep)
	case "right", "l":
		v.PanBy(-float64(m.width) * panStep)
	case "+", "=":
		v.ZoomBy(zoomStep, m.anchor(v))
	case "-":
		v.ZoomBy(1/zoomStep, m.anchor(v))
	case "0":
		v.ResetZoom()
	case "a":
		s.SetAbstraction(!s.Config().Abstract)
		m.clearTip()
	case "u":
		m.toggleHovered(v)
	case "p":
		s.SetPaging(!s.Config().Paging)
	case "]":
		s.NextClusterPage(true)
	case "[":
		s.NextClusterPage(false)
	case "x":
		if ids := s.Panels(); len(ids) > 0 {
			id := ids[len(ids)-1]
			if pv, _ := s.Panel(id); pv == m.active {
				m.active = nil
				m.clearTip()
			}
			s.RemoveGraphletPanel(id)
		}
	case "r":
		m.err = s.Reload(m.ctx)
		m.fit()
	}
	return nil
}

// toggleHovered folds or unfolds the cluster under the pointer.
func (m *exploreModel) toggleHovered(v *view.PixelView) {
	i, ok := v.Hovered()
	if !ok {
		return
	}
	r, ok := v.Sequence().ClusterAt(i)
	if !ok {
		return
	}
	v.Leave()
	m.clearTip()
	v.Toggle(r.Source)
}

// focused is the hovered view, or the motif view.
func (m *exploreModel) focused() *view.PixelView {
	if m.active != nil {
		return m.active
	}
	return m.session.Motif()
}

// anchor is the zoom center: the hovered column or the middle.
func (m *exploreModel) anchor(v *view.PixelView) float64 {
	if i, ok := v.Hovered(); ok {
		f := v.Frame()
		return f.X.At(float64(i)) + f.CellWidth/2
	}
	return float64(m.width) / 2
}

func (m *exploreModel) mouse(msg tea.MouseMsg) {
	v, ok := m.viewAt(msg.Y)
	x := float64(msg.X) + 0.5
	if !ok {
		m.leave()
		return
	}
	if v != m.active {
		m.leave()
		m.active = v
	}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		v.Wheel(-wheelDelta, x)
	case msg.Button == tea.MouseButtonWheelDown:
		v.Wheel(wheelDelta, x)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		v.Click(x)
		m.fit()
	}

	before, had := v.Hovered()
	v.Hover(x)
	after, has := v.Hovered()
	if !has {
		m.clearTip()
	} else if !had || before != after {
		m.tooltip(v, after)
	}
}

func (m *exploreModel) leave() {
	if m.active != nil {
		m.active.Leave()
		m.active = nil
	}
	m.clearTip()
}

func (m *exploreModel) tooltip(v *view.PixelView, i int) {
	tip, ok, err := m.session.Tooltip(m.ctx, v, i)
	m.tip, m.hasTip = tip, ok
	if err != nil {
		m.err = err
	}
}

func (m *exploreModel) clearTip() {
	m.tip, m.hasTip = view.Tooltip{}, false
}

// viewAt returns the view drawn at terminal row y.
func (m *exploreModel) viewAt(y int) (*view.PixelView, bool) {
	if y >= motifTop && y < motifTop+motifRows {
		return m.session.Motif(), true
	}
	top := motifTop + motifRows + 1
	for _, id := range m.session.Panels() {
		top++ // label row
		if y >= top && y < top+panelRows {
			v, _ := m.session.Panel(id)
			return v, true
		}
		top += panelRows
	}
	return nil, false
}

// =============================================================================
// Drawing
// =============================================================================

func (m *exploreModel) View() string {
	var b strings.Builder
	s := m.session
	motif := s.Motif()

	b.WriteString(m.header())
	b.WriteByte('\n')
	b.WriteString(m.unfoldRow(motif))
	b.WriteByte('\n')
	m.grid(&b, motif, motifRows)
	b.WriteString(m.selectionRow(motif))
	b.WriteByte('\n')

	for _, id := range s.Panels() {
		v, _ := s.Panel(id)
		label := fmt.Sprintf("gdv %d", id)
		if p, ok := v.Payload().(*matrix.GraphletPayload); ok {
			label += "  " + p.Meta.Header()
		}
		b.WriteString(StyleDim.Render(label))
		b.WriteByte('\n')
		m.grid(&b, v, panelRows)
	}

	b.WriteByte('\n')
	if m.hasTip {
		b.WriteString(StyleHighlight.Render(m.tip.Title))
		b.WriteByte('\n')
		b.WriteString(StyleDim.Render(strings.Join(m.tip.Lines, " · ")))
		b.WriteByte('\n')
	}
	b.WriteString(m.detailLine())
	b.WriteByte('\n')
	if err := m.lastErr(); err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + errors.StatusLine(err))
		b.WriteByte('\n')
	}
	b.WriteString(StyleDim.Render(exploreHelp))
	return b.String()
}

func (m *exploreModel) header() string {
	s := m.session
	motif := s.Motif()
	t := motif.Transform()
	fold := "folded"
	if !s.Config().Abstract {
		fold = "flat"
	}
	cols := 0
	if p := motif.Payload(); p != nil {
		cols = p.Data().Matrix.Len()
	}
	status := fmt.Sprintf("%d networks · %d columns · %s · zoom %.1fx", cols, motif.Grid().Columns, fold, t.K)
	if s.Config().Paging {
		status += " · paging"
	}
	if s.Detail().Busy() {
		status += " · …"
	}
	return exploreHeaderStyle.Render(appName) + "  " + StyleDim.Render(status)
}

// grid draws rows terminal lines of v. Each terminal cell samples the view at
// its center.
func (m *exploreModel) grid(b *strings.Builder, v *view.PixelView, rows int) {
	g := v.Grid()
	f := v.Frame()
	cols := make([][]string, m.width)
	for cx := range m.width {
		i, ok := f.ColumnAt(float64(cx) + 0.5)
		if !ok {
			continue
		}
		if g.Column(i).Placeholder {
			cols[cx] = []string{explorePlaceholder}
			continue
		}
		cells := g.Cells(i)
		if len(cells) == 0 {
			continue
		}
		out := make([]string, rows)
		for cy := range rows {
			j := int(math.Floor(g.Y.Invert(float64(cy) + 0.5)))
			j = max(0, min(len(cells)-1, j))
			out[cy] = m.cell(cells[j].Color)
		}
		cols[cx] = out
	}
	for cy := range rows {
		for cx := range m.width {
			switch c := cols[cx]; {
			case c == nil:
				b.WriteByte(' ')
			case len(c) == 1:
				b.WriteString(c[0])
			default:
				b.WriteString(c[cy])
			}
		}
		b.WriteByte('\n')
	}
}

func (m *exploreModel) cell(hex string) string {
	st, ok := m.styles[hex]
	if !ok {
		st = lipgloss.NewStyle().Background(lipgloss.Color(hex))
		m.styles[hex] = st
	}
	return st.Render(" ")
}

// unfoldRow marks the unfold controls of folded clusters.
func (m *exploreModel) unfoldRow(v *view.PixelView) string {
	row := make([]string, m.width)
	for cx := range row {
		row[cx] = " "
	}
	for _, u := range v.Frame().Unfolds {
		cx := int(math.Floor(u.CenterX()))
		if cx >= 0 && cx < m.width {
			row[cx] = exploreUnfold
		}
	}
	return strings.Join(row, "")
}

// selectionRow marks the networks whose panels are open.
func (m *exploreModel) selectionRow(v *view.PixelView) string {
	state := m.session.State()
	f := v.Frame()
	g := v.Grid()
	row := make([]string, m.width)
	for cx := range row {
		row[cx] = " "
		i, ok := f.ColumnAt(float64(cx) + 0.5)
		if !ok {
			continue
		}
		if c := g.Column(i); !c.Placeholder && state.IsSelected(c.ID) {
			row[cx] = exploreSelected
		}
	}
	return strings.Join(row, "")
}

func (m *exploreModel) detailLine() string {
	res, ok := m.session.Detail().Last()
	if !ok {
		return StyleDim.Render("rest on a column to show its network")
	}
	if res.Err != nil || res.Graph == nil {
		return StyleDim.Render(fmt.Sprintf("network %d: no detail", res.Request.ItemID))
	}
	g := res.Graph
	parts := []string{
		StyleHighlight.Render(fmt.Sprintf("network %d", res.Request.ItemID)),
		fmt.Sprintf("%d nodes, %d links", len(g.Nodes), len(g.Links)),
	}
	if g.Time != "" {
		parts = append(parts, g.Time)
	}
	if n := g.Highlighted(); n > 0 && res.Request.SubElementID >= 0 {
		parts = append(parts, fmt.Sprintf("node %d (%d highlighted)", res.Request.SubElementID, n))
	}
	if g.Pages > 0 {
		parts = append(parts, fmt.Sprintf("page %d/%d", g.Page+1, g.Pages))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

func (m *exploreModel) lastErr() error {
	if m.err != nil {
		return m.err
	}
	return m.session.Err()
}
