package provider

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/matzehuels/motifscope/pkg/errors"
	"github.com/matzehuels/motifscope/pkg/matrix"
	"github.com/matzehuels/motifscope/pkg/render/nodelink"
)

// Bundle is a local dataset: the motif profile of every network plus the
// networks themselves.
type Bundle struct {
	Motifs   []string  `json:"motifs"`
	Networks []Network `json:"networks"`
	// Axes holds the precomputed orderings of the motif view.
	Axes Axes `json:"axes"`
}

// Network is one network of a bundle.
type Network struct {
	Time    string          `json:"time"`
	Meta    matrix.Meta     `json:"meta"`
	Profile []float64       `json:"profile"`
	Nodes   []nodelink.Node `json:"nodes"`
	Links   []nodelink.Link `json:"links"`
	// GDV holds one graphlet degree vector per entry of Nodes.
	GDV  [][]float64 `json:"gdv"`
	Axes Axes        `json:"axes"`
}

// Axes are precomputed orderings. X and Y map an ordering name to column or
// row positions. Clustered is the grouped column order used when clustering
// is requested.
type Axes struct {
	X         map[string][]int `json:"x,omitempty"`
	Y         map[string][]int `json:"y,omitempty"`
	Clustered *Clustered       `json:"clustered,omitempty"`
}

// Clustered is a grouped column order with its cluster boundaries.
type Clustered struct {
	Ordering []int    `json:"ordering"`
	Clusters [][2]int `json:"clusters"`
}

// FileProvider serves bundles from a directory.
type FileProvider struct {
	dir string

	mu     sync.RWMutex
	name   string
	bundle *Bundle
}

// NewFile returns a provider reading bundles from dir.
func NewFile(dir string) *FileProvider {
	return &FileProvider{dir: dir}
}

// OpenFile loads the bundle at path.
func OpenFile(ctx context.Context, path string) (*FileProvider, error) {
	p := NewFile(filepath.Dir(path))
	if err := p.LoadDataset(ctx, filepath.Base(path)); err != nil {
		return nil, err
	}
	return p, nil
}

// Path returns the file of the loaded bundle, or "".
func (p *FileProvider) Path() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.name == "" {
		return ""
	}
	return filepath.Join(p.dir, p.name)
}

// LoadDataset implements Provider. name is resolved inside the provider
// directory.
func (p *FileProvider) LoadDataset(ctx context.Context, name string) error {
	if !filepath.IsLocal(name) {
		return errors.New(errors.ErrCodeInvalidPath, "dataset %q escapes %s", name, p.dir)
	}
	b, err := readBundle(filepath.Join(p.dir, name))
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.name, p.bundle = name, b
	p.mu.Unlock()
	return nil
}

// Reload re-reads the loaded bundle from disk. On error the previous bundle
// stays active.
func (p *FileProvider) Reload(ctx context.Context) error {
	p.mu.RLock()
	name := p.name
	p.mu.RUnlock()
	if name == "" {
		return errors.New(errors.ErrCodeDatasetNotFound, "no dataset loaded")
	}
	return p.LoadDataset(ctx, name)
}

func readBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeDatasetNotFound, err, "dataset %s", path)
	}
	if err != nil {
		return nil, err
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPayload, err, "decode dataset %s", path)
	}
	for i, n := range b.Networks {
		if len(n.GDV) > 0 && len(n.GDV) != len(n.Nodes) {
			return nil, errors.New(errors.ErrCodeInvalidPayload,
				"network %d has %d graphlet vectors for %d nodes", i, len(n.GDV), len(n.Nodes))
		}
	}
	return &b, nil
}

func (p *FileProvider) loaded() (*Bundle, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.bundle == nil {
		return nil, errors.New(errors.ErrCodeDatasetNotFound, "no dataset loaded")
	}
	return p.bundle, nil
}

func (p *FileProvider) network(id int) (*Network, error) {
	b, err := p.loaded()
	if err != nil {
		return nil, err
	}
	if id < 0 || id >= len(b.Networks) {
		return nil, errors.New(errors.ErrCodeItemNotFound, "network %d not in dataset", id)
	}
	return &b.Networks[id], nil
}

// MotifProfiles implements Provider.
func (p *FileProvider) MotifProfiles(ctx context.Context, o Ordering) (*matrix.MotifPayload, error) {
	b, err := p.loaded()
	if err != nil {
		return nil, err
	}
	vectors := make([][]float64, len(b.Networks))
	ids := make([]int, len(b.Networks))
	for i, n := range b.Networks {
		vectors[i], ids[i] = n.Profile, i
	}
	a, err := arrange(b.Axes, vectors, ids, o)
	if err != nil {
		return nil, err
	}
	m, err := matrix.New(a.vectors, a.ids)
	if err != nil {
		return nil, err
	}
	return matrix.NewMotif(m, a.clusters, permute(b.Motifs, a.rows))
}

// GraphletDegrees implements Provider.
func (p *FileProvider) GraphletDegrees(ctx context.Context, id int, o Ordering) (*matrix.GraphletPayload, error) {
	n, err := p.network(id)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(n.GDV))
	names := make(map[int]string, len(n.Nodes))
	for i, node := range n.Nodes {
		if i < len(ids) {
			ids[i] = node.ID
		}
		names[node.ID] = node.Name
	}
	a, err := arrange(n.Axes, n.GDV, ids, o)
	if err != nil {
		return nil, err
	}
	m, err := matrix.New(a.vectors, a.ids)
	if err != nil {
		return nil, err
	}
	return matrix.NewGraphlet(id, m, a.clusters, a.rows, names, n.meta())
}

// Meta implements Provider.
func (p *FileProvider) Meta(ctx context.Context, id int) (matrix.Meta, error) {
	n, err := p.network(id)
	if err != nil {
		return matrix.Meta{}, err
	}
	return n.meta(), nil
}

// Graph implements Provider.
func (p *FileProvider) Graph(ctx context.Context, q GraphQuery) (*nodelink.Graph, error) {
	n, err := p.network(q.NetworkID)
	if err != nil {
		return nil, err
	}
	g := &nodelink.Graph{Time: n.Time, Nodes: n.Nodes, Links: n.Links, Page: -1}
	return nodelink.Select(g, nodelink.Query{NodeID: q.NodeID, Page: q.Page}), nil
}

// meta fills counts and date from the network when the bundle omits them.
func (n *Network) meta() matrix.Meta {
	m := n.Meta
	if m.Date == "" {
		m.Date = n.Time
	}
	if m.Nodes == 0 {
		m.Nodes = len(n.Nodes)
	}
	if m.Edges == 0 {
		m.Edges = len(n.Links)
	}
	return m
}

var _ Provider = (*FileProvider)(nil)
