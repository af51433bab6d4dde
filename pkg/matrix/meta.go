package matrix

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/matzehuels/motifscope/pkg/errors"
)

// Meta is the per-item metadata shown in tooltips. It is fetched on demand
// and may be partially empty.
type Meta struct {
	Date              string   `json:"date,omitempty"`
	Nodes             int      `json:"number_of_nodes,omitempty"`
	Edges             int      `json:"number_of_edges,omitempty"`
	Density           *float64 `json:"density,omitempty"`
	AverageClustering *float64 `json:"average_clustering,omitempty"`
	Transitivity      *float64 `json:"transitivity,omitempty"`
}

// DecodeMeta decodes a graph meta response.
func DecodeMeta(data []byte) (Meta, error) {
	var m Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return Meta{}, errors.Wrap(errors.ErrCodeInvalidPayload, err, "decode meta")
	}
	return m, nil
}

// Header returns the tooltip heading, falling back to [UnknownName].
func (m Meta) Header() string {
	if m.Date == "" {
		return UnknownName
	}
	return m.Date
}

// Lines returns "key: value" lines for every field except the date, in a
// fixed order.
func (m Meta) Lines() []string {
	lines := []string{
		fmt.Sprintf("number_of_nodes: %d", m.Nodes),
		fmt.Sprintf("number_of_edges: %d", m.Edges),
	}
	for _, f := range []struct {
		key string
		v   *float64
	}{
		{"density", m.Density},
		{"average_clustering", m.AverageClustering},
		{"transitivity", m.Transitivity},
	} {
		if f.v != nil {
			lines = append(lines, fmt.Sprintf("%s: %.4g", f.key, *f.v))
		}
	}
	return lines
}
