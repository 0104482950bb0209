package automl

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
)

// minGain is the smallest SSE reduction accepted for a split.
const minGain = 1e-12

// treeParams bound the growth of one regression tree. mtry <= 0 considers
// every feature at each split.
type treeParams struct {
	maxDepth int
	minLeaf  int
	mtry     int
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) predict(x []float64) float64 {
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// growTree fits a CART regression tree on the rows at idx by greedy
// variance reduction.
func growTree(x [][]float64, y []float64, idx []int, p treeParams, rng *rand.Rand, depth int) *treeNode {
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	leaf := &treeNode{leaf: true, value: sum / float64(len(idx))}
	if depth >= p.maxDepth || len(idx) < 2*p.minLeaf {
		return leaf
	}

	feature, threshold, ok := bestSplit(x, y, idx, p, rng)
	if !ok {
		return leaf
	}

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      growTree(x, y, left, p, rng, depth+1),
		right:     growTree(x, y, right, p, rng, depth+1),
	}
}

func bestSplit(x [][]float64, y []float64, idx []int, p treeParams, rng *rand.Rand) (int, float64, bool) {
	nFeatures := len(x[idx[0]])
	features := make([]int, nFeatures)
	for j := range features {
		features[j] = j
	}
	if p.mtry > 0 && p.mtry < nFeatures {
		rng.Shuffle(nFeatures, func(a, b int) { features[a], features[b] = features[b], features[a] })
		features = features[:p.mtry]
	}

	n := len(idx)
	var total, totalSq float64
	for _, i := range idx {
		total += y[i]
		totalSq += y[i] * y[i]
	}
	parentSSE := totalSq - total*total/float64(n)

	bestSSE := parentSSE - minGain
	bestFeature, bestThreshold, found := -1, 0.0, false
	sorted := make([]int, n)

	for _, f := range features {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool { return x[sorted[a]][f] < x[sorted[b]][f] })

		var leftSum, leftSq float64
		for s := 1; s < n; s++ {
			v := y[sorted[s-1]]
			leftSum += v
			leftSq += v * v
			if s < p.minLeaf || n-s < p.minLeaf {
				continue
			}
			lo, hi := x[sorted[s-1]][f], x[sorted[s]][f]
			if lo == hi {
				continue
			}
			nl, nr := float64(s), float64(n-s)
			rightSum, rightSq := total-leftSum, totalSq-leftSq
			sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if sse < bestSSE {
				bestSSE, bestFeature, bestThreshold, found = sse, f, (lo+hi)/2, true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

func allRows(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// forestLearner bags trees grown on bootstrap samples with per-split
// feature subsampling.
type forestLearner struct {
	trees int
	tree  treeParams
	seed  int64
}

type ensemble struct {
	base  float64
	scale float64
	trees []*treeNode
}

func (e *ensemble) predict(x []float64) float64 {
	v := 0.0
	for _, t := range e.trees {
		v += t.predict(x)
	}
	return e.base + e.scale*v
}

func (l forestLearner) params() string {
	return fmt.Sprintf("ntrees=%d,max_depth=%d,mtries=%d", l.trees, l.tree.maxDepth, l.tree.mtry)
}

func (l forestLearner) fit(ctx context.Context, x [][]float64, y []float64) (regressor, error) {
	rng := rand.New(rand.NewSource(l.seed)) //nolint:gosec // reproducible bagging
	n := len(y)
	e := &ensemble{scale: 1 / float64(l.trees), trees: make([]*treeNode, 0, l.trees)}
	boot := make([]int, n)
	for t := 0; t < l.trees; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i := range boot {
			boot[i] = rng.Intn(n)
		}
		e.trees = append(e.trees, growTree(x, y, boot, l.tree, rng, 0))
	}
	return e, nil
}

// gbmLearner fits shallow trees to residuals with shrinkage.
type gbmLearner struct {
	trees        int
	learningRate float64
	tree         treeParams
	seed         int64
}

func (l gbmLearner) params() string {
	return fmt.Sprintf("ntrees=%d,max_depth=%d,learn_rate=%g", l.trees, l.tree.maxDepth, l.learningRate)
}

func (l gbmLearner) fit(ctx context.Context, x [][]float64, y []float64) (regressor, error) {
	rng := rand.New(rand.NewSource(l.seed)) //nolint:gosec // only used when mtry is set
	n := len(y)
	var base float64
	for _, v := range y {
		base += v
	}
	base /= float64(n)

	e := &ensemble{base: base, scale: l.learningRate, trees: make([]*treeNode, 0, l.trees)}
	fitted := make([]float64, n)
	residual := make([]float64, n)
	for i := range fitted {
		fitted[i] = base
	}
	idx := allRows(n)
	for t := 0; t < l.trees; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i := range residual {
			residual[i] = y[i] - fitted[i]
		}
		tree := growTree(x, residual, idx, l.tree, rng, 0)
		e.trees = append(e.trees, tree)
		for i := range fitted {
			fitted[i] += l.learningRate * tree.predict(x[i])
		}
	}
	return e, nil
}
