package matrix

import (
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/matzehuels/motifscope/pkg/errors"
)

// PayloadKind discriminates provider payloads.
type PayloadKind int

const (
	KindMotif PayloadKind = iota + 1
	KindGraphlet
)

func (k PayloadKind) String() string {
	switch k {
	case KindMotif:
		return "motif"
	case KindGraphlet:
		return "graphlet"
	default:
		return "unknown"
	}
}

// UnknownName is shown for items whose display name is not known.
const UnknownName = "unknown"

// Payload is a provider response rendered by a pixel view.
type Payload interface {
	Kind() PayloadKind
	Data() *Base
}

// Base is the shape shared by every payload: the ordered matrix, its cluster
// partition and one label per row.
type Base struct {
	Matrix    *Matrix
	Clusters  []Cluster
	RowLabels []string
}

// Data returns the shared base.
func (b *Base) Data() *Base { return b }

// MotifPayload holds motif significance profiles, one column per network.
type MotifPayload struct {
	Base
	Motifs []string
}

// Kind implements Payload.
func (p *MotifPayload) Kind() PayloadKind { return KindMotif }

// GraphletPayload holds the graphlet degree vectors of one network, one
// column per node.
type GraphletPayload struct {
	Base
	NetworkID int
	YOrdering []int
	NodeNames map[int]string
	Meta      Meta
}

// Kind implements Payload.
func (p *GraphletPayload) Kind() PayloadKind { return KindGraphlet }

// DisplayName returns the node's name, or [UnknownName].
func (p *GraphletPayload) DisplayName(nodeID int) string {
	if name, ok := p.NodeNames[nodeID]; ok && name != "" && name != "NaN" {
		return name
	}
	return UnknownName
}

type motifWire struct {
	Motifs     []string    `json:"motifs"`
	MotifSP    [][]float64 `json:"motif_sp"`
	Ordering   []int       `json:"ordering"`
	ClusterIdx [][2]int    `json:"cluster_idx"`
}

type graphletWire struct {
	GDV        [][]float64       `json:"gdv"`
	Ordering   []int             `json:"ordering"`
	YOrdering  []int             `json:"y_ordering"`
	ClusterIdx [][2]int          `json:"cluster_idx"`
	NodeNames  map[string]string `json:"node_names"`
	Date       string            `json:"date"`
	Nodes      int               `json:"number_of_nodes"`
	Edges      int               `json:"number_of_edges"`
}

// DecodeMotif decodes a motif_sp response. An empty object decodes to an
// empty payload (no dataset loaded).
func DecodeMotif(data []byte) (*MotifPayload, error) {
	var w motifWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPayload, err, "decode motif payload")
	}
	m, err := New(w.MotifSP, orderingOrNil(w.Ordering, len(w.MotifSP)))
	if err != nil {
		return nil, err
	}
	return NewMotif(m, FromPairs(w.ClusterIdx), w.Motifs)
}

// NewMotif assembles a motif payload. A non-empty cluster list must
// partition the matrix.
func NewMotif(m *Matrix, clusters []Cluster, motifs []string) (*MotifPayload, error) {
	if len(clusters) > 0 {
		if err := ValidatePartition(clusters, m.Len()); err != nil {
			return nil, err
		}
	}
	return &MotifPayload{
		Base:   Base{Matrix: m, Clusters: clusters, RowLabels: motifs},
		Motifs: motifs,
	}, nil
}

// DecodeGraphlet decodes a gdv response for the given network.
func DecodeGraphlet(networkID int, data []byte) (*GraphletPayload, error) {
	var w graphletWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPayload, err, "decode graphlet payload")
	}
	m, err := New(w.GDV, orderingOrNil(w.Ordering, len(w.GDV)))
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(w.NodeNames))
	for k, v := range w.NodeNames {
		id, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		names[id] = v
	}
	meta := Meta{Date: w.Date, Nodes: w.Nodes, Edges: w.Edges}
	return NewGraphlet(networkID, m, FromPairs(w.ClusterIdx), w.YOrdering, names, meta)
}

// NewGraphlet assembles a graphlet payload. Row labels name the orbit shown
// in each row according to yOrdering.
func NewGraphlet(networkID int, m *Matrix, clusters []Cluster, yOrdering []int, names map[int]string, meta Meta) (*GraphletPayload, error) {
	if len(clusters) > 0 {
		if err := ValidatePartition(clusters, m.Len()); err != nil {
			return nil, err
		}
	}
	labels := make([]string, m.Rows())
	for i := range labels {
		orbit := i
		if i < len(yOrdering) {
			orbit = yOrdering[i]
		}
		labels[i] = fmt.Sprintf("orbit %d", orbit)
	}
	return &GraphletPayload{
		Base:      Base{Matrix: m, Clusters: clusters, RowLabels: labels},
		NetworkID: networkID,
		YOrdering: yOrdering,
		NodeNames: names,
		Meta:      meta,
	}, nil
}

// orderingOrNil drops an ordering that cannot belong to the matrix so that
// an absent "ordering" key falls back to positional ids.
func orderingOrNil(ordering []int, n int) []int {
	if len(ordering) == 0 && n > 0 {
		return nil
	}
	return ordering
}

// EncodeMotif writes p in the shape [DecodeMotif] reads.
func EncodeMotif(p *MotifPayload) ([]byte, error) {
	return json.Marshal(motifWire{
		Motifs:     nonNil(p.Motifs),
		MotifSP:    vectors(p.Matrix),
		Ordering:   p.Matrix.Ordering(),
		ClusterIdx: ToPairs(p.Clusters),
	})
}

// EncodeGraphlet writes p in the shape [DecodeGraphlet] reads.
func EncodeGraphlet(p *GraphletPayload) ([]byte, error) {
	names := make(map[string]string, len(p.NodeNames))
	for id, name := range p.NodeNames {
		names[strconv.Itoa(id)] = name
	}
	return json.Marshal(graphletWire{
		GDV:        vectors(p.Matrix),
		Ordering:   p.Matrix.Ordering(),
		YOrdering:  nonNil(p.YOrdering),
		ClusterIdx: ToPairs(p.Clusters),
		NodeNames:  names,
		Date:       p.Meta.Date,
		Nodes:      p.Meta.Nodes,
		Edges:      p.Meta.Edges,
	})
}

// EncodeMeta writes m in the shape [DecodeMeta] reads.
func EncodeMeta(m Meta) ([]byte, error) {
	return json.Marshal(m)
}

func vectors(m *Matrix) [][]float64 {
	out := make([][]float64, m.Len())
	for i := range out {
		out[i] = m.Column(i).Scores
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
