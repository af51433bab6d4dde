package matrix

import (
	"github.com/matzehuels/motifscope/pkg/errors"
)

// Cluster is a half-open range [Start, End) over column positions.
type Cluster struct {
	Start int
	End   int
}

// Size returns the number of columns in the cluster.
func (c Cluster) Size() int { return c.End - c.Start }

// Contains reports whether column position i lies in the cluster.
func (c Cluster) Contains(i int) bool { return i >= c.Start && i < c.End }

// ValidatePartition checks that clusters tile [0, n) exactly: the first
// starts at 0, each starts where the previous ended, the last ends at n, and
// none is empty.
func ValidatePartition(clusters []Cluster, n int) error {
	if len(clusters) == 0 {
		if n == 0 {
			return nil
		}
		return errors.New(errors.ErrCodeInvalidPartition, "no clusters for %d columns", n)
	}
	next := 0
	for i, c := range clusters {
		if c.Start != next {
			return errors.New(errors.ErrCodeInvalidPartition,
				"cluster %d starts at %d, want %d", i, c.Start, next)
		}
		if c.End <= c.Start {
			return errors.New(errors.ErrCodeInvalidPartition,
				"cluster %d is empty or reversed: [%d, %d)", i, c.Start, c.End)
		}
		next = c.End
	}
	if next != n {
		return errors.New(errors.ErrCodeInvalidPartition,
			"clusters end at %d, want %d", next, n)
	}
	return nil
}

// Partition returns clusters if they are non-empty, otherwise a single
// cluster spanning all n columns (nil when n is 0).
func Partition(clusters []Cluster, n int) []Cluster {
	if len(clusters) > 0 {
		return clusters
	}
	if n == 0 {
		return nil
	}
	return []Cluster{{Start: 0, End: n}}
}

// FromPairs converts [start, end] pairs from a provider payload.
func FromPairs(pairs [][2]int) []Cluster {
	if len(pairs) == 0 {
		return nil
	}
	out := make([]Cluster, len(pairs))
	for i, p := range pairs {
		out[i] = Cluster{Start: p[0], End: p[1]}
	}
	return out
}

// ToPairs is the inverse of [FromPairs].
func ToPairs(clusters []Cluster) [][2]int {
	out := make([][2]int, len(clusters))
	for i, c := range clusters {
		out[i] = [2]int{c.Start, c.End}
	}
	return out
}
