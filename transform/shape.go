package transform

// computeStrides returns row-major strides for a length vector: the last
// entry's stride is 1, and stride[d] = stride[d+1]*lens[d+1] - the same
// recurrence spec §4.9 states for both the full-variable stride plan and
// its post-dim_grouping collapse to G group-lengths, since groups are
// contiguous by construction (dimgroup.Parse's contiguity invariant).
func computeStrides(lens []int) []int {
	n := len(lens)
	strides := make([]int, n)
	if n == 0 {
		return strides
	}
	strides[n-1] = 1
	for d := n - 2; d >= 0; d-- {
		strides[d] = strides[d+1] * lens[d+1]
	}
	return strides
}

func product(lens []int) int {
	p := 1
	for _, l := range lens {
		p *= l
	}
	return p
}

// sliceIterator walks every combination of indices over the group axes
// other than pos, in row-major order, yielding the flat base offset (in
// the space described by lens/strides) for each combination - the start
// of the 1-D run along axis pos.
type sliceIterator struct {
	otherDims []int
	lens      []int
	strides   []int
	idx       []int
	total     int
}

func newSliceIterator(lens, strides []int, pos int) *sliceIterator {
	var other []int
	for d := range lens {
		if d != pos {
			other = append(other, d)
		}
	}
	total := 1
	for _, d := range other {
		total *= lens[d]
	}
	return &sliceIterator{otherDims: other, lens: lens, strides: strides, idx: make([]int, len(other)), total: total}
}

// at decodes slice index s (row-major over otherDims) into a flat base
// offset using the iterator's strides.
func (it *sliceIterator) at(s int) int {
	rem := s
	for k := len(it.otherDims) - 1; k >= 0; k-- {
		d := it.otherDims[k]
		it.idx[k] = rem % it.lens[d]
		rem /= it.lens[d]
	}
	base := 0
	for k, d := range it.otherDims {
		base += it.idx[k] * it.strides[d]
	}
	return base
}

// baseWith recomputes the same combination's flat offset against a
// different strides vector over the same otherDims (used to translate an
// input-shape base into the corresponding output-shape base: the "other"
// group indices are shared between input and output shape, only the
// transformed axis's length differs).
func (it *sliceIterator) baseWith(s int, strides []int) int {
	rem := s
	base := 0
	idx := make([]int, len(it.otherDims))
	for k := len(it.otherDims) - 1; k >= 0; k-- {
		d := it.otherDims[k]
		idx[k] = rem % it.lens[d]
		rem /= it.lens[d]
	}
	for k, d := range it.otherDims {
		base += idx[k] * strides[d]
	}
	return base
}
