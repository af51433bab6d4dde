package viewport

import (
	"math"
	"testing"

	"github.com/matzehuels/motifscope/pkg/abstraction"
	"github.com/matzehuels/motifscope/pkg/matrix"
	"github.com/matzehuels/motifscope/pkg/render/pixel/layout"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func grid(t *testing.T, n int, width float64) layout.Grid {
	t.Helper()
	vectors := make([][]float64, n)
	for i := range vectors {
		vectors[i] = []float64{0.5}
	}
	m, err := matrix.New(vectors, nil)
	if err != nil {
		t.Fatal(err)
	}
	seq := abstraction.Identity(m, nil)
	return layout.Compute(seq, layout.Frame{Width: width, Height: 10}, 1)
}

func TestPixelMatrixScaleExtent(t *testing.T) {
	z := PixelMatrix(100, 50)
	tests := []struct {
		name  string
		k     float64
		wantK float64
	}{
		{"Lower", 0.2, 1},
		{"Inside", 4, 4},
		{"Upper", 50, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := z.ZoomTo(tt.k, Point{X: 50, Y: 25})
			if got.K != tt.wantK {
				t.Errorf("K = %v, want %v", got.K, tt.wantK)
			}
			if got.Y != 0 {
				t.Errorf("Y = %v, want 0 for horizontal zoom", got.Y)
			}
		})
	}
}

func TestNodeLinkScaleExtent(t *testing.T) {
	z := NodeLink(100, 100)
	if got := z.ZoomTo(15, Point{X: 50, Y: 50}); got.K != 15 {
		t.Errorf("K = %v, want 15", got.K)
	}
	if got := z.ZoomTo(30, Point{X: 50, Y: 50}); got.K != 20 {
		t.Errorf("K = %v, want 20", got.K)
	}
	if got := z.Transform(); got.Y == 0 {
		t.Error("node-link zoom should move vertically around the anchor")
	}
}

func TestZoomKeepsAnchor(t *testing.T) {
	z := PixelMatrix(100, 50)
	z.ZoomTo(2, Point{X: 50})
	tr := z.Transform()
	if !near(tr.InvertX(50), 50) {
		t.Errorf("anchor moved to %v", tr.InvertX(50))
	}
	if !near(tr.X, -50) {
		t.Errorf("X = %v, want -50", tr.X)
	}
}

func TestPanConstrained(t *testing.T) {
	z := PixelMatrix(100, 50)
	if got := z.PanBy(30, 0); got.X != 0 {
		t.Errorf("pan at k=1 moved to %v", got.X)
	}
	z.ZoomTo(2, Point{X: 0})
	if got := z.PanBy(-500, 20); !near(got.X, -100) || got.Y != 0 {
		t.Errorf("pan = %+v, want X=-100 Y=0", got)
	}
	if got := z.PanBy(1000, 0); got.X != 0 {
		t.Errorf("pan = %+v, want X=0", got)
	}
}

func TestReset(t *testing.T) {
	z := PixelMatrix(100, 50)
	z.ZoomTo(5, Point{X: 70})
	if got := z.Reset(); got != Identity {
		t.Errorf("Reset = %+v", got)
	}
}

func TestRescaleFromBase(t *testing.T) {
	g := grid(t, 10, 100)
	tr := Transform{K: 2, X: -40}
	xs := tr.RescaleX(g.X)
	for i := 0; i <= 10; i++ {
		want := tr.ApplyX(g.X.At(float64(i)))
		if !near(xs.At(float64(i)), want) {
			t.Errorf("rescaled(%d) = %v, want %v", i, xs.At(float64(i)), want)
		}
	}
	// Rescaling twice from the base gives the same function.
	again := tr.RescaleX(g.X)
	if xs != again {
		t.Errorf("rescale not deterministic: %+v vs %+v", xs, again)
	}
}

func TestApply(t *testing.T) {
	g := grid(t, 10, 100)
	f := Apply(Transform{K: 2, X: -40}, g)

	if f.CellWidth != 20 || f.CellHeight != g.CellHeight {
		t.Errorf("cell = %vx%v", f.CellWidth, f.CellHeight)
	}
	if f.First != 2 || f.Last != 7 {
		t.Errorf("visible = [%d, %d), want [2, 7)", f.First, f.Last)
	}
	if len(f.Columns) != 5 || !near(f.Columns[0].X, 0) {
		t.Errorf("columns = %+v", f.Columns)
	}
	if o := f.Overlays[0]; !near(o.X, -40) || !near(o.W, 200) {
		t.Errorf("overlay = %+v, want x=-40 w=200", o.Rect)
	}
	if i, ok := f.ColumnAt(25); !ok || i != 3 {
		t.Errorf("ColumnAt(25) = %d, %v", i, ok)
	}
}

func TestApplyIdentityMatchesGrid(t *testing.T) {
	g := grid(t, 8, 80)
	f := Apply(Identity, g)
	if f.First != 0 || f.Last != 8 {
		t.Fatalf("visible = [%d, %d)", f.First, f.Last)
	}
	for _, c := range f.Columns {
		if !near(c.X, g.Column(c.Index).X) {
			t.Errorf("column %d x = %v, want %v", c.Index, c.X, g.Column(c.Index).X)
		}
	}
}

func TestVisibleRangeEmpty(t *testing.T) {
	g := grid(t, 0, 100)
	if first, last := VisibleRange(g.X, 0, 100); first != 0 || last != 0 {
		t.Errorf("VisibleRange = %d, %d", first, last)
	}
}
