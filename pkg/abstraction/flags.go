package abstraction

// Flags holds the fold state of each source cluster of one matrix. The zero
// value is ready to use. Flags are not safe for concurrent use; each view
// owns its own.
type Flags struct {
	folded map[int]bool
}

// NewFlags returns an empty flag set.
func NewFlags() *Flags { return &Flags{} }

// fold returns the flag for cluster i, defaulting it to folded on first use.
func (f *Flags) fold(i int) bool {
	if f == nil {
		return true
	}
	if f.folded == nil {
		f.folded = make(map[int]bool)
	}
	v, ok := f.folded[i]
	if !ok {
		f.folded[i] = true
		return true
	}
	return v
}

// Folded reports whether cluster i is folded. Clusters that were never
// computed report false.
func (f *Flags) Folded(i int) bool {
	if f == nil {
		return false
	}
	return f.folded[i]
}

// Known reports whether cluster i has a flag.
func (f *Flags) Known(i int) bool {
	if f == nil {
		return false
	}
	_, ok := f.folded[i]
	return ok
}

// Toggle flips the flag of cluster i and reports whether anything changed.
// Clusters without a flag are left alone.
func (f *Flags) Toggle(i int) bool {
	if !f.Known(i) {
		return false
	}
	f.folded[i] = !f.folded[i]
	return true
}

// Set forces the flag of cluster i.
func (f *Flags) Set(i int, folded bool) {
	if f.folded == nil {
		f.folded = make(map[int]bool)
	}
	f.folded[i] = folded
}

// Reset discards every flag. Call it when the matrix is replaced.
func (f *Flags) Reset() {
	if f != nil {
		f.folded = nil
	}
}

// Len returns the number of clusters with a flag.
func (f *Flags) Len() int {
	if f == nil {
		return 0
	}
	return len(f.folded)
}
