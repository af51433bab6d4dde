package provider

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/matzehuels/motifscope/pkg/matrix"
	"github.com/matzehuels/motifscope/pkg/render/nodelink"
)

// NoOrdering keeps the dataset's natural order.
const NoOrdering = "none"

// Ordering selects how the provider arranges a matrix. X orders columns, Y
// orders rows and Cluster asks for grouped columns with cluster boundaries.
type Ordering struct {
	X       string `json:"x" toml:"x"`
	Y       string `json:"y" toml:"y"`
	Cluster bool   `json:"cluster" toml:"cluster"`
}

func (o Ordering) query() url.Values {
	q := url.Values{}
	q.Set("x", orNone(o.X))
	q.Set("y", orNone(o.Y))
	q.Set("cluster", strconv.FormatBool(o.Cluster))
	return q
}

// ParseOrdering parses "x,y" axis orderings. "clustering" as x turns
// clustering on.
func ParseOrdering(s string) Ordering {
	var o Ordering
	if s == "" {
		return o
	}
	x, y, _ := strings.Cut(s, ",")
	o.X, o.Y = strings.TrimSpace(x), strings.TrimSpace(y)
	o.Cluster = o.X == ClusterOrdering
	return o
}

func orNone(s string) string {
	if s == "" {
		return NoOrdering
	}
	return s
}

// GraphQuery selects a network for the node-link detail view. NodeID and
// Page are negative when unset.
type GraphQuery struct {
	NetworkID int
	NodeID    int
	Page      int
}

// Provider is the data source behind the pixel views.
type Provider interface {
	// LoadDataset makes name the active dataset.
	LoadDataset(ctx context.Context, name string) error
	// MotifProfiles returns one column per network.
	MotifProfiles(ctx context.Context, o Ordering) (*matrix.MotifPayload, error)
	// GraphletDegrees returns one column per node of network id.
	GraphletDegrees(ctx context.Context, id int, o Ordering) (*matrix.GraphletPayload, error)
	// Meta returns tooltip metadata for network id.
	Meta(ctx context.Context, id int) (matrix.Meta, error)
	// Graph returns network q.NetworkID narrowed to the query.
	Graph(ctx context.Context, q GraphQuery) (*nodelink.Graph, error)
}
