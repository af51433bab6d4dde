package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/motifscope/pkg/cache"
	"github.com/matzehuels/motifscope/pkg/errors"
)

const motifBody = `{
	"motifs": ["m0", "m1"],
	"motif_sp": [[0.1, 0.2], [0.3, 0.4], [0.5, 0.6]],
	"ordering": [2, 0, 1],
	"cluster_idx": [[0, 1], [1, 3]]
}`

func newTestProvider(t *testing.T, h http.Handler, opts ...HTTPOption) *HTTPProvider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]HTTPOption{WithHTTPClient(srv.Client()), WithRetryDelay(time.Millisecond)}, opts...)
	p, err := NewHTTP(srv.URL, opts...)
	if err != nil {
		t.Fatalf("NewHTTP: %v", err)
	}
	return p
}

func TestNewHTTPInvalidURL(t *testing.T) {
	for _, raw := range []string{"", "localhost", "://x"} {
		if _, err := NewHTTP(raw); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("NewHTTP(%q) error = %v", raw, err)
		}
	}
}

func TestMotifProfiles(t *testing.T) {
	var query string
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get_motif_sp" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Accept") != jsonAPIMimeType {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		query = r.URL.RawQuery
		w.Write([]byte(motifBody))
	}))

	got, err := p.MotifProfiles(context.Background(), Ordering{X: "density", Cluster: true})
	if err != nil {
		t.Fatalf("MotifProfiles: %v", err)
	}
	if query != "cluster=true&x=density&y=none" {
		t.Errorf("query = %q", query)
	}
	if got.Matrix.Len() != 3 || got.Matrix.Column(0).ID != 2 {
		t.Errorf("matrix ordering = %v", got.Matrix.Ordering())
	}
	if len(got.Clusters) != 2 || got.Clusters[1].Size() != 2 {
		t.Errorf("clusters = %v", got.Clusters)
	}
}

func TestGraphletDegreesAndMeta(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/get_gdv", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("idx") != "4" {
			t.Errorf("idx = %q", r.URL.Query().Get("idx"))
		}
		w.Write([]byte(`{"gdv": [[1, 0], [0, 2]], "ordering": [10, 11], "y_ordering": [1, 0],
			"node_names": {"10": "alice", "11": "NaN"}, "date": "2001-05-01",
			"number_of_nodes": 2, "number_of_edges": 1}`))
	})
	mux.HandleFunc("/get_graph_meta/4", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"date": "2001-05-01", "number_of_nodes": 2, "number_of_edges": 1, "density": 1.0}`))
	})
	p := newTestProvider(t, mux)
	ctx := context.Background()

	gdv, err := p.GraphletDegrees(ctx, 4, Ordering{})
	if err != nil {
		t.Fatalf("GraphletDegrees: %v", err)
	}
	if gdv.NetworkID != 4 || gdv.DisplayName(10) != "alice" || gdv.DisplayName(11) != "unknown" {
		t.Errorf("payload = %+v", gdv)
	}
	if gdv.RowLabels[0] != "orbit 1" {
		t.Errorf("row labels = %v", gdv.RowLabels)
	}

	meta, err := p.Meta(ctx, 4)
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if meta.Header() != "2001-05-01" || meta.Density == nil {
		t.Errorf("meta = %+v", meta)
	}
}

func TestGraph(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("idx") != "2" || q.Get("nodeId") != "1" || q.Get("clusterIdx") != "-1" {
			t.Errorf("query = %v", q)
		}
		w.Write([]byte(`{"graph": {"time": ["2001"]}, "nodes": [{"id": 0}, {"id": 1, "center": 1, "highlight": 1}],
			"links": [{"source": 0, "target": 1, "highlight": 1}]}`))
	}))

	g, err := p.Graph(context.Background(), GraphQuery{NetworkID: 2, NodeID: 1, Page: -1})
	if err != nil {
		t.Fatalf("Graph: %v", err)
	}
	if g.Time != "2001" || len(g.Nodes) != 2 || !g.Links[0].Highlight {
		t.Errorf("graph = %+v", g)
	}
}

func TestCachedResponses(t *testing.T) {
	var calls atomic.Int32
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(motifBody))
	}), WithCache(fc, time.Hour))
	ctx := context.Background()

	for range 3 {
		if _, err := p.MotifProfiles(ctx, Ordering{}); err != nil {
			t.Fatal(err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}

	// Another ordering is another key.
	if _, err := p.MotifProfiles(ctx, Ordering{X: "density"}); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestLoadDatasetScopesCache(t *testing.T) {
	var fetches atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/load_dataset/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/get_motif_sp", func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Write([]byte(motifBody))
	})
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	p := newTestProvider(t, mux, WithCache(fc, time.Hour))
	ctx := context.Background()

	for _, name := range []string{"a.pkl", "b.pkl", "a.pkl"} {
		if err := p.LoadDataset(ctx, name); err != nil {
			t.Fatalf("LoadDataset(%s): %v", name, err)
		}
		if _, err := p.MotifProfiles(ctx, Ordering{}); err != nil {
			t.Fatal(err)
		}
	}
	if p.Dataset() != "a.pkl" {
		t.Errorf("Dataset = %q", p.Dataset())
	}
	if fetches.Load() != 2 {
		t.Errorf("fetches = %d, want 2", fetches.Load())
	}
	if err := p.LoadDataset(ctx, ""); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty name error = %v", err)
	}
}

func TestRetryThenSuccess(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(motifBody))
	}))
	if _, err := p.MotifProfiles(context.Background(), Ordering{}); err != nil {
		t.Fatalf("MotifProfiles: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestNetworkErrorAfterRetries(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	_, err := p.MotifProfiles(context.Background(), Ordering{})
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Fatalf("error = %v, want NETWORK_ERROR", err)
	}
	if calls.Load() != cache.RetryAttempts {
		t.Errorf("calls = %d, want %d", calls.Load(), cache.RetryAttempts)
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		code   errors.Code
		calls  int32
	}{
		{http.StatusNotFound, errors.ErrCodeNotFound, 1},
		{http.StatusBadRequest, errors.ErrCodeNetwork, 1},
		{http.StatusTooManyRequests, errors.ErrCodeNetwork, cache.RetryAttempts},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var calls atomic.Int32
			p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			_, err := p.Meta(context.Background(), 1)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
			if calls.Load() != tt.calls {
				t.Errorf("calls = %d, want %d", calls.Load(), tt.calls)
			}
		})
	}
}

func TestInvalidPayload(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"motif_sp": [[1, 2], [3]]}`))
	}))
	_, err := p.MotifProfiles(context.Background(), Ordering{})
	if !errors.Is(err, errors.ErrCodeInvalidMatrix) {
		t.Errorf("error = %v, want INVALID_MATRIX", err)
	}
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.Meta(ctx, 1)
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("error = %v, want TIMEOUT", err)
	}
}

func TestParseOrdering(t *testing.T) {
	o := ParseOrdering("clustering, median")
	if o.X != ClusterOrdering || o.Y != "median" || !o.Cluster {
		t.Errorf("ParseOrdering = %+v", o)
	}
	if o := ParseOrdering("date"); o.X != "date" || o.Y != "" || o.Cluster {
		t.Errorf("ParseOrdering(date) = %+v", o)
	}
	if o := ParseOrdering(""); o != (Ordering{}) {
		t.Errorf("ParseOrdering(\"\") = %+v", o)
	}
}

func TestRetryAfterHeader(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"2", 2 * time.Second},
		{" 1 ", time.Second},
		{"-3", 0},
		{"Wed, 21 Oct 2015 07:28:00 GMT", 0},
	}
	for _, tt := range tests {
		if got := retryAfter(tt.header); got != tt.want {
			t.Errorf("retryAfter(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}

	resp := &http.Response{StatusCode: http.StatusServiceUnavailable, Header: http.Header{"Retry-After": {"1"}}}
	err := checkStatus(resp)
	if !cache.IsRetryable(err) {
		t.Errorf("503 should be retryable: %v", err)
	}
}

func TestUnknownMetricNotRequested(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(motifBody))
	}))
	ctx := context.Background()

	if _, err := p.MotifProfiles(ctx, Ordering{X: "pagerank"}); !errors.Is(err, errors.ErrCodeInvalidOrdering) {
		t.Errorf("motif x=pagerank error = %v", err)
	}
	if _, err := p.GraphletDegrees(ctx, 1, Ordering{Y: "mode"}); !errors.Is(err, errors.ErrCodeInvalidOrdering) {
		t.Errorf("gdv y=mode error = %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("backend called %d times", calls.Load())
	}
	if _, err := p.MotifProfiles(ctx, Ordering{X: NoOrdering, Y: NoOrdering}); err != nil {
		t.Errorf("none,none: %v", err)
	}
}
