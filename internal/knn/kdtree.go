package knn

import (
	"math"
	"sort"
)

// KDTree indexes a PointSet for k-th-neighbor distance queries and open-ball
// range counts in expected O(log N) per query. The tree assumes a fully
// continuous metric; mixed discrete point sets go through the scan searcher.
type KDTree struct {
	ps    PointSet
	nodes []kdNode
	root  int32
}

type kdNode struct {
	idx         int
	dim         int
	left, right int32
}

// NewKDTree builds the index by recursive median splits, cycling dimensions
func NewKDTree(ps PointSet) *KDTree {
	t := &KDTree{ps: ps, nodes: make([]kdNode, 0, ps.Len())}
	idxs := make([]int, ps.Len())
	for i := range idxs {
		idxs[i] = i
	}
	t.root = t.build(idxs, 0)
	return t
}

func (t *KDTree) build(idxs []int, depth int) int32 {
	if len(idxs) == 0 {
		return -1
	}
	dim := depth % t.ps.Dims()
	col := t.ps.cols[dim]
	sort.Slice(idxs, func(a, b int) bool { return col[idxs[a]] < col[idxs[b]] })
	m := len(idxs) / 2

	node := int32(len(t.nodes))
	t.nodes = append(t.nodes, kdNode{idx: idxs[m], dim: dim})
	left := t.build(idxs[:m], depth+1)
	right := t.build(idxs[m+1:], depth+1)
	t.nodes[node].left = left
	t.nodes[node].right = right
	return node
}

// KthDistance returns the Chebyshev distance from point i to its k-th
// nearest neighbor, excluding i itself. Returns +Inf when fewer than k
// other points exist.
func (t *KDTree) KthDistance(i, k int) float64 {
	if k < 1 || k > t.ps.Len()-1 {
		return math.Inf(1)
	}
	q := t.ps.At(i, make([]float64, t.ps.Dims()))
	h := newBoundedHeap(k)
	t.nearest(t.root, q, i, h)
	return h.max()
}

func (t *KDTree) nearest(node int32, q []float64, excl int, h *boundedHeap) {
	if node < 0 {
		return
	}
	n := t.nodes[node]
	if n.idx != excl {
		h.push(t.distTo(n.idx, q))
	}

	diff := q[n.dim] - t.ps.cols[n.dim][n.idx]
	near, far := n.left, n.right
	if diff > 0 {
		near, far = n.right, n.left
	}
	t.nearest(near, q, excl, h)
	// Points across the split plane are at least |diff| away in this
	// dimension, hence at least |diff| away in the max metric.
	if !h.full() || math.Abs(diff) < h.max() {
		t.nearest(far, q, excl, h)
	}
}

// CountWithin returns the number of points j != i strictly within distance r
// of point i. The open ball matters: neighbors tied exactly at r would bias
// the digamma correction and are excluded.
func (t *KDTree) CountWithin(i int, r float64) int {
	if r <= 0 {
		return 0
	}
	q := t.ps.At(i, make([]float64, t.ps.Dims()))
	return t.countWithin(t.root, q, i, r)
}

func (t *KDTree) countWithin(node int32, q []float64, excl int, r float64) int {
	if node < 0 {
		return 0
	}
	n := t.nodes[node]
	count := 0
	if n.idx != excl && t.distTo(n.idx, q) < r {
		count++
	}

	diff := q[n.dim] - t.ps.cols[n.dim][n.idx]
	near, far := n.left, n.right
	if diff > 0 {
		near, far = n.right, n.left
	}
	count += t.countWithin(near, q, excl, r)
	if math.Abs(diff) < r {
		count += t.countWithin(far, q, excl, r)
	}
	return count
}

func (t *KDTree) distTo(idx int, q []float64) float64 {
	best := 0.0
	for d, col := range t.ps.cols {
		if diff := math.Abs(col[idx] - q[d]); diff > best {
			best = diff
		}
	}
	return best
}

// boundedHeap keeps the k smallest distances seen so far. k stays tiny for
// this estimator, so an insertion-sorted slice beats a real heap.
type boundedHeap struct {
	dists []float64
	k     int
}

func newBoundedHeap(k int) *boundedHeap {
	return &boundedHeap{dists: make([]float64, 0, k), k: k}
}

func (h *boundedHeap) full() bool { return len(h.dists) == h.k }

func (h *boundedHeap) max() float64 {
	if len(h.dists) == 0 {
		return math.Inf(1)
	}
	return h.dists[len(h.dists)-1]
}

func (h *boundedHeap) push(d float64) {
	if h.full() && d >= h.max() {
		return
	}
	pos := sort.SearchFloat64s(h.dists, d)
	if h.full() {
		h.dists = h.dists[:h.k-1]
	}
	h.dists = append(h.dists, 0)
	copy(h.dists[pos+1:], h.dists[pos:])
	h.dists[pos] = d
}
