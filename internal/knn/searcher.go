package knn

import "math"

// Searcher answers the two neighbor queries the estimators need: the
// distance to the k-th nearest neighbor of a point, and the strictly-open
// range count around it. Both exclude the query point itself.
type Searcher interface {
	KthDistance(i, k int) float64
	CountWithin(i int, r float64) int
}

// bruteThreshold is the point count below which the direct scan wins over
// building a tree.
const bruteThreshold = 64

// NewSearcher picks the spatial index for the point set: a k-d tree for
// continuous data of meaningful size, the direct scan for small sets and for
// the exact-match discrete metric (which the tree cannot prune).
func NewSearcher(ps PointSet) Searcher {
	if ps.HasDiscrete() || ps.Len() < bruteThreshold {
		return NewScanSearcher(ps)
	}
	return NewKDTree(ps)
}

// ScanSearcher is the O(N) per query fallback. It handles every metric the
// point set can express, including mixed discrete dimensions.
type ScanSearcher struct {
	ps PointSet
}

// NewScanSearcher builds a direct-scan searcher
func NewScanSearcher(ps PointSet) *ScanSearcher {
	return &ScanSearcher{ps: ps}
}

// KthDistance scans all points for the k-th smallest distance to point i.
// Returns +Inf when fewer than k other points exist, same as the tree.
func (s *ScanSearcher) KthDistance(i, k int) float64 {
	if k < 1 || k > s.ps.Len()-1 {
		return math.Inf(1)
	}
	h := newBoundedHeap(k)
	for j := 0; j < s.ps.Len(); j++ {
		if j == i {
			continue
		}
		h.push(s.ps.Dist(i, j))
	}
	return h.max()
}

// CountWithin counts points strictly within r of point i
func (s *ScanSearcher) CountWithin(i int, r float64) int {
	if r <= 0 {
		return 0
	}
	count := 0
	for j := 0; j < s.ps.Len(); j++ {
		if j == i {
			continue
		}
		if s.ps.Dist(i, j) < r {
			count++
		}
	}
	return count
}
