package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	json "github.com/goccy/go-json"

	"github.com/matzehuels/motifscope/pkg/provider"
	"github.com/matzehuels/motifscope/pkg/render/nodelink"
	"github.com/matzehuels/motifscope/pkg/selection"
	"github.com/matzehuels/motifscope/pkg/view"
)

const testDwell = 100 * time.Millisecond

// writeTestBundle writes a bundle of 12 networks in one cluster and returns
// its path. Network 2 has three nodes with graphlet degree vectors.
func writeTestBundle(t *testing.T) string {
	t.Helper()
	b := provider.Bundle{Motifs: []string{"m0", "m1"}}
	for i := range 12 {
		b.Networks = append(b.Networks, provider.Network{
			Time:    "2001-01",
			Profile: []float64{float64(i) / 12, -0.2},
		})
	}
	b.Networks[2].Nodes = []nodelink.Node{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}, {ID: 3, Name: "c"}}
	b.Networks[2].Links = []nodelink.Link{{Source: 1, Target: 2}, {Source: 2, Target: 3}}
	b.Networks[2].GDV = [][]float64{{1, 0}, {2, 1}, {0, 4}}
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "bundle.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// newTestExplorer returns an explorer over the test bundle, sized to 90
// columns so that each of the nine folded columns is ten cells wide.
func newTestExplorer(t *testing.T) (*exploreModel, *selection.ManualClock) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	p, err := provider.OpenFile(ctx, writeTestBundle(t))
	if err != nil {
		t.Fatal(err)
	}
	clock := selection.NewManualClock()
	cfg := view.DefaultConfig()
	cfg.Dwell = testDwell
	m := newExploreModel(ctx, p, clock, cfg)
	if err := m.session.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	m.Update(tea.WindowSizeMsg{Width: 90, Height: 40})
	return m, clock
}

// drain runs one posted function through Update.
func drain(t *testing.T, m *exploreModel) {
	t.Helper()
	select {
	case fn := <-m.posts:
		m.Update(postMsg(fn))
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for posted work")
	}
}

func motion(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone}
}

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func TestExploreResizeFitsViews(t *testing.T) {
	m, _ := newTestExplorer(t)
	g := m.session.Motif().Grid()
	if g.Frame.Width != 90 || g.Frame.Height != motifRows {
		t.Errorf("motif frame = %+v, want 90x%d", g.Frame, motifRows)
	}
	if g.Columns != 9 {
		t.Errorf("Columns = %d, want 9 (folded)", g.Columns)
	}

	out := m.View()
	if !strings.Contains(out, "12 networks") {
		t.Errorf("header missing network count:\n%s", out)
	}
	if !strings.Contains(out, "·") {
		t.Error("placeholder columns should be drawn")
	}
}

func TestExploreHoverShowsTooltipAndDetail(t *testing.T) {
	m, clock := newTestExplorer(t)

	m.Update(motion(25, motifTop))
	if !m.hasTip {
		t.Fatal("hover should set a tooltip")
	}
	if m.tip.Title != "2001-01" {
		t.Errorf("tooltip title = %q, want 2001-01", m.tip.Title)
	}
	if !m.session.Detail().Busy() {
		t.Error("detail should be busy while the dwell timer is armed")
	}

	clock.Advance(testDwell)
	drain(t, m)

	res, ok := m.session.Detail().Last()
	if !ok {
		t.Fatal("detail result not delivered")
	}
	if res.Request.ItemID != 2 {
		t.Errorf("detail item = %d, want 2", res.Request.ItemID)
	}
	if !strings.Contains(m.View(), "network 2") {
		t.Error("view should describe the detail network")
	}
}

func TestExploreLeaveCancelsDwell(t *testing.T) {
	m, clock := newTestExplorer(t)

	m.Update(motion(25, motifTop))
	m.Update(motion(25, 0)) // header row
	if m.hasTip {
		t.Error("leaving should clear the tooltip")
	}
	clock.Advance(testDwell)
	if _, ok := m.session.Detail().Last(); ok {
		t.Error("no detail should be requested after leaving")
	}
}

func TestExploreClickOpensPanel(t *testing.T) {
	m, _ := newTestExplorer(t)

	m.Update(press(25, motifTop))
	drain(t, m)

	if ids := m.session.Panels(); len(ids) != 1 || ids[0] != 2 {
		t.Fatalf("Panels = %v, want [2]", ids)
	}
	v, _ := m.session.Panel(2)
	if v.Grid().Frame.Width != 90 || v.Grid().Frame.Height != panelRows {
		t.Errorf("panel frame = %+v", v.Grid().Frame)
	}
	if got, ok := m.viewAt(motifTop + motifRows + 2); !ok || got != v {
		t.Error("panel rows should map to the panel view")
	}
	if !strings.Contains(m.View(), "gdv 2") {
		t.Error("view should label the panel")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if len(m.session.Panels()) != 0 {
		t.Error("x should close the last panel")
	}
}

func TestExploreClickUnfolds(t *testing.T) {
	m, _ := newTestExplorer(t)

	// The control of the single folded cluster spans columns 3 to 5.
	m.Update(press(45, motifTop))
	if got := m.session.Motif().Grid().Columns; got != 12 {
		t.Errorf("Columns = %d, want 12 after unfolding", got)
	}
}

func TestExploreUnfoldUnderPointer(t *testing.T) {
	m, _ := newTestExplorer(t)
	key := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("u")}

	m.Update(key) // nothing hovered
	if got := m.session.Motif().Grid().Columns; got != 9 {
		t.Fatalf("Columns = %d, want 9", got)
	}

	m.Update(motion(5, motifTop))
	m.Update(key)
	if got := m.session.Motif().Grid().Columns; got != 12 {
		t.Errorf("Columns = %d, want 12 after unfolding", got)
	}

	m.Update(motion(5, motifTop))
	m.Update(key)
	if got := m.session.Motif().Grid().Columns; got != 9 {
		t.Errorf("Columns = %d, want 9 after folding again", got)
	}
}

func TestExploreKeys(t *testing.T) {
	m, _ := newTestExplorer(t)
	key := func(s string) tea.Cmd {
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
		return cmd
	}

	key("a")
	if got := m.session.Motif().Grid().Columns; got != 12 {
		t.Errorf("Columns = %d, want 12 with folding off", got)
	}
	key("a")
	if got := m.session.Motif().Grid().Columns; got != 9 {
		t.Errorf("Columns = %d, want 9 with folding on", got)
	}

	key("+")
	if k := m.session.Motif().Transform().K; k <= 1 {
		t.Errorf("K = %v, want > 1 after zoom in", k)
	}
	key("0")
	if k := m.session.Motif().Transform().K; k != 1 {
		t.Errorf("K = %v, want 1 after reset", k)
	}

	key("p")
	if !m.session.Config().Paging {
		t.Error("p should turn paging on")
	}

	cmd := key("q")
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestExploreWheelZooms(t *testing.T) {
	m, _ := newTestExplorer(t)
	m.Update(tea.MouseMsg{X: 45, Y: motifTop, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	if k := m.session.Motif().Transform().K; k <= 1 {
		t.Errorf("K = %v, want > 1 after wheel up", k)
	}
}

func TestExploreReloadedReportsErrors(t *testing.T) {
	m, _ := newTestExplorer(t)
	m.reloaded(os.ErrNotExist)
	drain(t, m)
	if m.lastErr() == nil {
		t.Error("watcher error should be shown")
	}
	if !strings.Contains(m.View(), iconError) {
		t.Error("view should show the error")
	}
}
