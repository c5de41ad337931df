package boosting

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/lifeexp/core/parallel"
)

// TreeNode is one node of a regression tree. Exported fields for gob
// encoding of fitted models.
type TreeNode struct {
	Feature   int // split feature index, -1 for leaves
	Threshold float64
	Left      *TreeNode
	Right     *TreeNode
	Value     float64 // leaf prediction
}

// RegressionTree is a depth-limited least-squares regression tree fitted on
// boosting residuals.
type RegressionTree struct {
	Root *TreeNode
}

// treeParams bundles the growth constraints shared by every node.
type treeParams struct {
	maxDepth       int
	minSamplesLeaf int
	minGainToSplit float64
}

// buildTree grows a regression tree on the rows selected by indices.
// X is row-major; residuals holds the regression targets.
func buildTree(X [][]float64, residuals []float64, indices []int, params treeParams) *RegressionTree {
	root := growNode(X, residuals, indices, 0, params)
	return &RegressionTree{Root: root}
}

func growNode(X [][]float64, residuals []float64, indices []int, depth int, params treeParams) *TreeNode {
	mean := meanOf(residuals, indices)

	if depth >= params.maxDepth || len(indices) < 2*params.minSamplesLeaf {
		return &TreeNode{Feature: -1, Value: mean}
	}

	feature, threshold, gain := bestSplit(X, residuals, indices, params)
	if feature < 0 || gain <= params.minGainToSplit {
		return &TreeNode{Feature: -1, Value: mean}
	}

	var left, right []int
	for _, idx := range indices {
		if X[idx][feature] <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	if len(left) < params.minSamplesLeaf || len(right) < params.minSamplesLeaf {
		return &TreeNode{Feature: -1, Value: mean}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      growNode(X, residuals, left, depth+1, params),
		Right:     growNode(X, residuals, right, depth+1, params),
		Value:     mean,
	}
}

// splitCandidate is the best split one feature offers.
type splitCandidate struct {
	threshold float64
	gain      float64
}

// parallelSplitThreshold is the feature count below which the split search
// stays sequential.
const parallelSplitThreshold = 8

// bestSplit scans every feature with a sorted prefix-sum sweep and returns
// the split with the largest SSE reduction. Features are scanned in parallel
// but reduced in index order with ascending thresholds, so ties resolve
// deterministically regardless of scheduling.
func bestSplit(X [][]float64, residuals []float64, indices []int, params treeParams) (int, float64, float64) {
	n := len(indices)
	nFeatures := len(X[indices[0]])

	var totalSum, totalSqSum float64
	for _, idx := range indices {
		r := residuals[idx]
		totalSum += r
		totalSqSum += r * r
	}
	parentSSE := totalSqSum - totalSum*totalSum/float64(n)

	candidates := make([]splitCandidate, nFeatures)
	parallel.ParallelizeWithThreshold(nFeatures, parallelSplitThreshold, func(start, end int) {
		order := make([]int, n)
		for j := start; j < end; j++ {
			copy(order, indices)
			candidates[j] = scanFeature(X, residuals, order, j, totalSum, totalSqSum, parentSSE, params)
		}
	})

	bestFeature := -1
	bestThreshold := 0.0
	bestGain := 0.0
	for j, cand := range candidates {
		if cand.gain > bestGain {
			bestGain = cand.gain
			bestFeature = j
			bestThreshold = cand.threshold
		}
	}
	return bestFeature, bestThreshold, bestGain
}

// scanFeature finds the best threshold of one feature. order is scratch space
// holding the row indices, resorted in place.
func scanFeature(X [][]float64, residuals []float64, order []int, j int, totalSum, totalSqSum, parentSSE float64, params treeParams) splitCandidate {
	n := len(order)
	sort.Slice(order, func(a, b int) bool {
		if X[order[a]][j] != X[order[b]][j] {
			return X[order[a]][j] < X[order[b]][j]
		}
		return order[a] < order[b]
	})

	best := splitCandidate{}
	var leftSum, leftSqSum float64
	for k := 0; k < n-1; k++ {
		r := residuals[order[k]]
		leftSum += r
		leftSqSum += r * r

		// Can only split between distinct feature values.
		cur, next := X[order[k]][j], X[order[k+1]][j]
		if cur == next {
			continue
		}

		nLeft := k + 1
		nRight := n - nLeft
		if nLeft < params.minSamplesLeaf || nRight < params.minSamplesLeaf {
			continue
		}

		rightSum := totalSum - leftSum
		rightSqSum := totalSqSum - leftSqSum
		leftSSE := leftSqSum - leftSum*leftSum/float64(nLeft)
		rightSSE := rightSqSum - rightSum*rightSum/float64(nRight)

		gain := parentSSE - leftSSE - rightSSE
		if gain > best.gain {
			best.gain = gain
			best.threshold = cur + (next-cur)/2
		}
	}
	return best
}

// predict walks the tree for a single row.
func (t *RegressionTree) predict(row []float64) float64 {
	node := t.Root
	for node.Feature >= 0 {
		if row[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

func meanOf(values []float64, indices []int) float64 {
	if len(indices) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, idx := range indices {
		sum += values[idx]
	}
	return sum / float64(len(indices))
}
