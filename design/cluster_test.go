package design

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

// lineDistances builds the pairwise distance matrix of points on a line.
func lineDistances(points []float64) *mat.SymDense {
	n := len(points)
	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d.SetSym(i, j, math.Abs(points[i]-points[j]))
		}
	}
	return d
}

func TestClusterAverageLinkage_SeparatedGroups(t *testing.T) {
	// Two tight pairs and one outlier.
	d := lineDistances([]float64{0, 0.1, 5, 5.1, 10})

	clusters := clusterAverageLinkage(d, 3)
	assert.Equal(t, [][]int{{0, 1}, {2, 3}, {4}}, clusters)
}

func TestClusterAverageLinkage_DegenerateK(t *testing.T) {
	d := lineDistances([]float64{0, 1, 2})

	// k=1 merges everything.
	assert.Equal(t, [][]int{{0, 1, 2}}, clusterAverageLinkage(d, 1))
	// k below 1 is clamped to 1.
	assert.Equal(t, [][]int{{0, 1, 2}}, clusterAverageLinkage(d, 0))
	// k at or above n keeps singletons.
	assert.Equal(t, [][]int{{0}, {1}, {2}}, clusterAverageLinkage(d, 5))
}

func TestMedoid_MinimizesMeanDistance(t *testing.T) {
	// Points 0, 1, 10: the middle point has the lowest mean distance.
	d := lineDistances([]float64{0, 1, 10})
	assert.Equal(t, 1, medoid(d, []int{0, 1, 2}))
}

func TestMedoid_TieFavorsLowestIndex(t *testing.T) {
	// A symmetric pair has equal mean distances.
	d := lineDistances([]float64{0, 2})
	assert.Equal(t, 0, medoid(d, []int{0, 1}))

	assert.Equal(t, 3, medoid(d, []int{3}), "singleton keeps its member")
}
