package provider

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/motifscope/pkg/cache"
	"github.com/matzehuels/motifscope/pkg/errors"
	"github.com/matzehuels/motifscope/pkg/matrix"
	"github.com/matzehuels/motifscope/pkg/render/nodelink"
)

const apiNamespace = "api"

// HTTPProvider fetches payloads from a motif backend.
type HTTPProvider struct {
	client  *client
	keyer   cache.Keyer
	logger  *log.Logger
	refresh bool

	mu      sync.RWMutex
	dataset string
}

// HTTPOption configures an HTTPProvider.
type HTTPOption func(*HTTPProvider)

// WithCache stores responses in c for ttl. The default is no caching.
func WithCache(c cache.Cache, ttl time.Duration) HTTPOption {
	return func(p *HTTPProvider) {
		p.client.cache = cache.Instrument(c)
		p.client.ttl = ttl
	}
}

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(p *HTTPProvider) { p.client.http = hc }
}

// WithRetryDelay sets the first retry delay. Later delays double.
func WithRetryDelay(d time.Duration) HTTPOption {
	return func(p *HTTPProvider) { p.client.backoff.Delay = d }
}

// WithRefresh bypasses cached responses on read.
func WithRefresh(refresh bool) HTTPOption {
	return func(p *HTTPProvider) { p.refresh = refresh }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) HTTPOption {
	return func(p *HTTPProvider) { p.logger = l }
}

// NewHTTP returns a provider for the backend at baseURL.
func NewHTTP(baseURL string, opts ...HTTPOption) (*HTTPProvider, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid provider url %q", baseURL)
	}
	p := &HTTPProvider{
		client: &client{
			base:    u,
			http:    &http.Client{Timeout: httpTimeout},
			cache:   cache.NewNullCache(),
			ttl:     cache.TTLHTTP,
			backoff: cache.DefaultBackoff,
		},
		keyer:  cache.NewDefaultKeyer(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Dataset returns the name of the loaded dataset, or "".
func (p *HTTPProvider) Dataset() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dataset
}

// LoadDataset implements Provider. Cached responses are scoped to the
// dataset so switching datasets never serves stale matrices.
func (p *HTTPProvider) LoadDataset(ctx context.Context, name string) error {
	if name == "" {
		return errors.New(errors.ErrCodeInvalidInput, "empty dataset name")
	}
	err := p.client.backoff.Retry(ctx, func() error {
		_, err := p.client.do(ctx, http.MethodPost, "load_dataset/"+url.PathEscape(name), nil)
		return err
	})
	if err != nil {
		return coded(err, "load dataset "+name)
	}
	p.mu.Lock()
	p.dataset = name
	p.mu.Unlock()
	p.logger.Debug("dataset loaded", "name", name)
	return nil
}

// MotifProfiles implements Provider.
func (p *HTTPProvider) MotifProfiles(ctx context.Context, o Ordering) (*matrix.MotifPayload, error) {
	if err := validateOrdering("motif-x", o); err != nil {
		return nil, err
	}
	body, err := p.get(ctx, "get_motif_sp", o.query())
	if err != nil {
		return nil, coded(err, "fetch motif profiles")
	}
	return matrix.DecodeMotif(body)
}

// GraphletDegrees implements Provider.
func (p *HTTPProvider) GraphletDegrees(ctx context.Context, id int, o Ordering) (*matrix.GraphletPayload, error) {
	if err := validateOrdering("graphlet-x", o); err != nil {
		return nil, err
	}
	q := o.query()
	q.Set("idx", strconv.Itoa(id))
	body, err := p.get(ctx, "get_gdv", q)
	if err != nil {
		return nil, coded(err, "fetch graphlet degrees of "+strconv.Itoa(id))
	}
	return matrix.DecodeGraphlet(id, body)
}

// Meta implements Provider.
func (p *HTTPProvider) Meta(ctx context.Context, id int) (matrix.Meta, error) {
	body, err := p.get(ctx, "get_graph_meta/"+strconv.Itoa(id), nil)
	if err != nil {
		return matrix.Meta{}, coded(err, "fetch meta of "+strconv.Itoa(id))
	}
	return matrix.DecodeMeta(body)
}

// Graph implements Provider.
func (p *HTTPProvider) Graph(ctx context.Context, q GraphQuery) (*nodelink.Graph, error) {
	v := url.Values{}
	v.Set("idx", strconv.Itoa(q.NetworkID))
	v.Set("nodeId", strconv.Itoa(q.NodeID))
	v.Set("clusterIdx", strconv.Itoa(q.Page))
	body, err := p.get(ctx, "get_graph_data", v)
	if err != nil {
		return nil, coded(err, "fetch graph "+strconv.Itoa(q.NetworkID))
	}
	return nodelink.Decode(body)
}

func (p *HTTPProvider) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	key := p.scopedKeyer().HTTPKey(apiNamespace, path+"?"+query.Encode())
	return p.client.cached(ctx, key, p.refresh, func() ([]byte, error) {
		p.logger.Debug("fetch", "path", path, "query", query.Encode())
		return p.client.do(ctx, http.MethodGet, path, query)
	})
}

func (p *HTTPProvider) scopedKeyer() cache.Keyer {
	return cache.DatasetKeyer(p.keyer, p.Dataset())
}

// validateOrdering rejects metrics the backend does not compute before any
// request is made. Bundles carry their own orderings and skip this.
func validateOrdering(xAxis string, o Ordering) error {
	if err := errors.ValidateOrdering(xAxis, o.X); err != nil {
		return err
	}
	return errors.ValidateOrdering("y", o.Y)
}

var _ Provider = (*HTTPProvider)(nil)
