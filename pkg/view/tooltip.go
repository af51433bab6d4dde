package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/motifscope/pkg/matrix"
)

// Tooltip is the text shown next to a hovered column.
type Tooltip struct {
	Title string
	Lines []string
}

// String renders the tooltip as plain text, one line per entry.
func (t Tooltip) String() string {
	var b strings.Builder
	b.WriteString(t.Title)
	for _, l := range t.Lines {
		b.WriteByte('\n')
		b.WriteString(l)
	}
	return b.String()
}

// MotifTooltip describes one network of the motif view: the date as title,
// the metadata lines, then one score per motif with two decimals.
func MotifTooltip(meta matrix.Meta, motifs []string, scores []float64) Tooltip {
	t := Tooltip{Title: meta.Header(), Lines: meta.Lines()}
	for i, s := range scores {
		name := strconv.Itoa(i)
		if i < len(motifs) {
			name = motifs[i]
		}
		t.Lines = append(t.Lines, fmt.Sprintf("%s: %.2f", name, s))
	}
	return t
}

// GraphletTooltip describes one node of a graphlet panel. Only orbits with a
// non-zero count are listed.
func GraphletTooltip(p *matrix.GraphletPayload, col matrix.Column) Tooltip {
	t := Tooltip{Title: fmt.Sprintf("Node %d: %s", col.ID, p.DisplayName(col.ID))}
	for row, v := range col.Scores {
		if v == 0 {
			continue
		}
		orbit := row
		if row < len(p.YOrdering) {
			orbit = p.YOrdering[row]
		}
		t.Lines = append(t.Lines, fmt.Sprintf("orbit %d: %s", orbit, strconv.FormatFloat(v, 'g', -1, 64)))
	}
	return t
}

// PanelTooltip describes a graphlet panel as a whole.
func PanelTooltip(meta matrix.Meta) Tooltip {
	return Tooltip{Title: meta.Header(), Lines: meta.Lines()}
}
