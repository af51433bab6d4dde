package provider

import (
	"github.com/matzehuels/motifscope/pkg/errors"
	"github.com/matzehuels/motifscope/pkg/matrix"
)

// ClusterOrdering is the X ordering name that implies clustering.
const ClusterOrdering = "clustering"

type arranged struct {
	vectors  [][]float64
	ids      []int
	rows     []int
	clusters []matrix.Cluster
}

// arrange applies the precomputed orderings in axes. Rows are permuted
// first, then columns; a clustered request takes precedence over X.
func arrange(axes Axes, vectors [][]float64, ids []int, o Ordering) (arranged, error) {
	var a arranged
	nrows := 0
	if len(vectors) > 0 {
		nrows = len(vectors[0])
	}

	rows, err := lookup(axes.Y, o.Y, nrows, "row")
	if err != nil {
		return a, err
	}
	a.rows = rows
	if rows != nil {
		permuted := make([][]float64, len(vectors))
		for i, v := range vectors {
			permuted[i] = permute(v, rows)
		}
		vectors = permuted
	}

	var cols []int
	switch {
	case o.Cluster || o.X == ClusterOrdering:
		if axes.Clustered != nil {
			if err := checkPermutation(axes.Clustered.Ordering, len(vectors), "column"); err != nil {
				return a, err
			}
			cols = axes.Clustered.Ordering
			a.clusters = matrix.FromPairs(axes.Clustered.Clusters)
		}
	default:
		if cols, err = lookup(axes.X, o.X, len(vectors), "column"); err != nil {
			return a, err
		}
	}

	a.vectors, a.ids = vectors, ids
	if cols != nil {
		a.vectors, a.ids = permute(vectors, cols), permute(ids, cols)
	}
	return a, nil
}

// lookup returns the named permutation, or nil for the natural order.
func lookup(orderings map[string][]int, name string, n int, axis string) ([]int, error) {
	if name == "" || name == NoOrdering {
		return nil, nil
	}
	perm, ok := orderings[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidOrdering, "unknown %s ordering %q", axis, name)
	}
	if err := checkPermutation(perm, n, axis); err != nil {
		return nil, err
	}
	return perm, nil
}

func checkPermutation(perm []int, n int, axis string) error {
	if len(perm) != n {
		return errors.New(errors.ErrCodeInvalidOrdering, "%s ordering has %d entries, want %d", axis, len(perm), n)
	}
	seen := make([]bool, n)
	for _, p := range perm {
		if p < 0 || p >= n || seen[p] {
			return errors.New(errors.ErrCodeInvalidOrdering, "%s ordering is not a permutation", axis)
		}
		seen[p] = true
	}
	return nil
}

// permute returns s reordered by perm. A nil perm or a short s returns s.
func permute[T any](s []T, perm []int) []T {
	if perm == nil || len(s) < len(perm) {
		return s
	}
	out := make([]T, len(perm))
	for i, p := range perm {
		out[i] = s[p]
	}
	return out
}
