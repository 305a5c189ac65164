package design

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// clusterAverageLinkage partitions n points into k clusters by agglomerative
// clustering with average linkage over a precomputed distance matrix.
//
// Merging is deterministic: the cluster pair with the smallest average
// cross-pair distance merges first, ties broken by lowest member indices.
// The returned clusters hold sorted member indices and are ordered by their
// smallest member ascending.
func clusterAverageLinkage(d *mat.SymDense, k int) [][]int {
	n, _ := d.Dims()
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}

	clusters := make([][]int, n)
	for i := range clusters {
		clusters[i] = []int{i}
	}

	for len(clusters) > k {
		bestA, bestB := 0, 1
		bestDist := averageLinkage(d, clusters[0], clusters[1])
		for a := 0; a < len(clusters); a++ {
			for b := a + 1; b < len(clusters); b++ {
				if dist := averageLinkage(d, clusters[a], clusters[b]); dist < bestDist {
					bestDist = dist
					bestA, bestB = a, b
				}
			}
		}
		merged := append(append([]int{}, clusters[bestA]...), clusters[bestB]...)
		sort.Ints(merged)
		clusters[bestA] = merged
		clusters = append(clusters[:bestB], clusters[bestB+1:]...)
	}

	sort.Slice(clusters, func(a, b int) bool { return clusters[a][0] < clusters[b][0] })
	return clusters
}

// averageLinkage returns the mean distance over all cross pairs of two
// clusters.
func averageLinkage(d *mat.SymDense, a, b []int) float64 {
	sum := 0.0
	for _, i := range a {
		for _, j := range b {
			sum += d.At(i, j)
		}
	}
	return sum / float64(len(a)*len(b))
}

// medoid returns the cluster member minimizing its mean distance to the other
// members. Singleton clusters trivially keep their one member; ties favor the
// lowest sample index.
func medoid(d *mat.SymDense, members []int) int {
	if len(members) == 1 {
		return members[0]
	}
	best := members[0]
	bestMean := meanDistance(d, members[0], members)
	for _, m := range members[1:] {
		if mean := meanDistance(d, m, members); mean < bestMean {
			bestMean = mean
			best = m
		}
	}
	return best
}

// meanDistance averages d(i, j) over all j in members, including i itself
// (a zero term shared by every member, so rankings are unaffected).
func meanDistance(d *mat.SymDense, i int, members []int) float64 {
	sum := 0.0
	for _, j := range members {
		sum += d.At(i, j)
	}
	return sum / float64(len(members))
}
