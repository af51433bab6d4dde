package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/motifscope/pkg/provider"
	"github.com/matzehuels/motifscope/pkg/render/nodelink"
	"github.com/matzehuels/motifscope/pkg/selection"
	"github.com/matzehuels/motifscope/pkg/view"
)

const (
	testBundle = "bundle.json"
	testDwell  = 100 * time.Millisecond
)

// writeBundle writes twelve networks in one cluster. Network 2 has three
// nodes with graphlet degree vectors.
func writeBundle(t *testing.T) string {
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
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, testBundle), data, 0o644))
	return dir
}

type testServer struct {
	*Server
	URL   string
	clock *selection.ManualClock
}

func newTestServer(t *testing.T, opts ...Option) *testServer {
	t.Helper()
	p, err := provider.OpenFile(context.Background(), filepath.Join(writeBundle(t), testBundle))
	require.NoError(t, err)

	clock := selection.NewManualClock()
	cfg := view.DefaultConfig()
	cfg.Dwell = testDwell
	opts = append([]Option{WithScheduler(clock), WithViewConfig(cfg)}, opts...)
	s := New(p, opts...)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		srv.Close()
		s.Close()
	})
	return &testServer{Server: s, URL: srv.URL, clock: clock}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestAPIServesHTTPProvider(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	p, err := provider.NewHTTP(ts.URL+"/api", provider.WithRetryDelay(time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, p.LoadDataset(ctx, testBundle))

	motif, err := p.MotifProfiles(ctx, provider.Ordering{})
	require.NoError(t, err)
	assert.Equal(t, 12, motif.Matrix.Len())
	assert.Equal(t, []string{"m0", "m1"}, motif.Motifs)

	gdv, err := p.GraphletDegrees(ctx, 2, provider.Ordering{})
	require.NoError(t, err)
	assert.Equal(t, 3, gdv.Matrix.Len())
	assert.Equal(t, "a", gdv.DisplayName(1))

	meta, err := p.Meta(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "2001-01", meta.Date)

	g, err := p.Graph(ctx, provider.GraphQuery{NetworkID: 2, NodeID: -1, Page: -1})
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 3)
	assert.Len(t, g.Links, 2)
}

func TestAPIErrors(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"UnknownNetwork", http.MethodGet, "/api/gdv/99", http.StatusNotFound},
		{"BadID", http.MethodGet, "/api/meta/abc", http.StatusBadRequest},
		{"MissingIdx", http.MethodGet, "/api/get_graph_data", http.StatusBadRequest},
		{"UnknownOrdering", http.MethodGet, "/api/get_motif_sp?x=bogus", http.StatusBadRequest},
		{"MissingDataset", http.MethodPost, "/api/load_dataset/missing.json", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, tt.method, tt.path, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decode[errorBody](t, resp)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestRenderViews(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/view/motif.svg?flat=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, readAll(t, resp), "<svg")

	resp = ts.do(t, http.MethodGet, "/view/gdv/2.json", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	resp = ts.do(t, http.MethodGet, "/view/motif.bmp", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/view/motif.svg?width=wide", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func (ts *testServer) newSession(t *testing.T) stateBody {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/session", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[stateBody](t, resp)
}

func (ts *testServer) state(t *testing.T, id string) stateBody {
	t.Helper()
	resp := ts.do(t, http.MethodGet, "/session/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[stateBody](t, resp)
}

func TestSessionCreate(t *testing.T) {
	ts := newTestServer(t)
	st := ts.newSession(t)

	assert.NotEmpty(t, st.ID)
	assert.Equal(t, 12, st.Columns)
	assert.Equal(t, 9, st.DisplayColumns, "twelve networks fold to nine columns")
	assert.True(t, st.Abstract)
	assert.Empty(t, st.Panels)

	resp := ts.do(t, http.MethodGet, "/session/"+st.ID+"/motif", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readAll(t, resp), `data-endpoint="/session/`+st.ID+`/motif"`)
}

func TestSessionHoverAndLeave(t *testing.T) {
	ts := newTestServer(t)
	id := ts.newSession(t).ID

	resp := ts.do(t, http.MethodPost, "/session/"+id+"/motif/hover", map[string]int{"col": 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tip := decode[tooltipBody](t, resp)
	assert.Equal(t, "2001-01", tip.Title)
	assert.True(t, ts.state(t, id).Busy, "dwell timer should be armed")

	resp = ts.do(t, http.MethodPost, "/session/"+id+"/motif/leave", map[string]int{})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.False(t, ts.state(t, id).Busy)
	assert.Equal(t, 0, ts.clock.Scheduled())

	// Placeholders have no tooltip.
	resp = ts.do(t, http.MethodPost, "/session/"+id+"/motif/hover", map[string]int{"col": 4})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestSessionDwellDrawsDetail(t *testing.T) {
	ts := newTestServer(t)
	id := ts.newSession(t).ID

	resp := ts.do(t, http.MethodGet, "/session/"+id+"/detail", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	ts.do(t, http.MethodPost, "/session/"+id+"/motif/hover", map[string]int{"col": 2})
	ts.clock.Advance(testDwell)

	require.Eventually(t, func() bool {
		return ts.do(t, http.MethodGet, "/session/"+id+"/detail", nil).StatusCode == http.StatusOK
	}, 10*time.Second, 20*time.Millisecond)

	st := ts.state(t, id)
	require.NotNil(t, st.Detail)
	assert.Equal(t, 2, st.Detail.Network)
	assert.Equal(t, selection.NoNode, st.Detail.Node)

	resp = ts.do(t, http.MethodGet, "/session/"+id+"/detail", nil)
	assert.Contains(t, readAll(t, resp), "<svg")
}

func TestSessionClickOpensPanel(t *testing.T) {
	ts := newTestServer(t)
	id := ts.newSession(t).ID

	resp := ts.do(t, http.MethodPost, "/session/"+id+"/motif/click", map[string]int{"col": 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		return len(ts.state(t, id).Panels) == 1
	}, 10*time.Second, 20*time.Millisecond)
	st := ts.state(t, id)
	assert.Equal(t, []int{2}, st.Panels)
	assert.Equal(t, []int{2}, st.Selected)

	resp = ts.do(t, http.MethodGet, "/session/"+id+"/gdv/2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readAll(t, resp), `data-endpoint="/session/`+id+`/gdv/2"`)

	resp = ts.do(t, http.MethodPost, "/session/"+id+"/gdv/2/hover", map[string]int{"col": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ts.do(t, http.MethodPost, "/session/"+id+"/gdv/2/leave", nil)

	resp = ts.do(t, http.MethodDelete, "/session/"+id+"/gdv/2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st = decode[stateBody](t, resp)
	assert.Empty(t, st.Panels)
	assert.Empty(t, st.Selected)

	resp = ts.do(t, http.MethodGet, "/session/"+id+"/gdv/2", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionOpenPanel(t *testing.T) {
	ts := newTestServer(t)
	id := ts.newSession(t).ID

	resp := ts.do(t, http.MethodPost, "/session/"+id+"/gdv/2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []int{2}, decode[stateBody](t, resp).Panels)

	resp = ts.do(t, http.MethodPost, "/session/"+id+"/gdv/42", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, []int{2}, ts.state(t, id).Panels)
}

func TestSessionToggleAndZoom(t *testing.T) {
	ts := newTestServer(t)
	id := ts.newSession(t).ID

	resp := ts.do(t, http.MethodPost, "/session/"+id+"/motif/toggle", map[string]int{"cluster": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 12, decode[stateBody](t, resp).DisplayColumns)

	resp = ts.do(t, http.MethodPost, "/session/"+id+"/motif/zoom", map[string]float64{"delta": -240, "x": 100})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tr := decode[map[string]float64](t, resp)
	assert.Greater(t, tr["k"], 1.0)

	resp = ts.do(t, http.MethodPost, "/session/"+id+"/abstraction", map[string]bool{"on": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[stateBody](t, resp).Abstract)

	resp = ts.do(t, http.MethodPost, "/session/"+id+"/motif/toggle", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/session/"+id+"/motif/drag", map[string]int{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionPaging(t *testing.T) {
	ts := newTestServer(t)
	id := ts.newSession(t).ID

	resp := ts.do(t, http.MethodPost, "/session/"+id+"/page", map[string]bool{"forward": true})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "no detail to page")

	resp = ts.do(t, http.MethodPost, "/session/"+id+"/paging", map[string]bool{"on": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[stateBody](t, resp).Paging)
}

func TestSessionOrdering(t *testing.T) {
	ts := newTestServer(t)
	id := ts.newSession(t).ID

	resp := ts.do(t, http.MethodPost, "/session/"+id+"/ordering", map[string]string{"motif": "none,none"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 12, decode[stateBody](t, resp).Columns)

	resp = ts.do(t, http.MethodPost, "/session/"+id+"/ordering", map[string]string{"motif": "bogus,"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// A rejected ordering leaves the view in place.
	resp = ts.do(t, http.MethodGet, "/session/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 12, decode[stateBody](t, resp).Columns)
}

func TestSessionDelete(t *testing.T) {
	ts := newTestServer(t)
	id := ts.newSession(t).ID

	ts.do(t, http.MethodPost, "/session/"+id+"/motif/hover", map[string]int{"col": 2})
	resp := ts.do(t, http.MethodDelete, "/session/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, ts.clock.Scheduled(), "closing a session cancels its dwell timer")

	resp = ts.do(t, http.MethodGet, "/session/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = ts.do(t, http.MethodDelete, "/session/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionCreateUnknownDataset(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodPost, "/session?dataset=missing.json", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 0, ts.sessions.len())
}

func TestServeShutsDown(t *testing.T) {
	p, err := provider.OpenFile(context.Background(), filepath.Join(writeBundle(t), testBundle))
	require.NoError(t, err)
	s := New(p)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(readAll(t, resp), "ok"))
}
