package classifier

import (
	"cmp"
	"math/rand"
	"slices"
)

const leafFeature = -1

// Node is a flattened tree node. Leaves carry the weighted class
// distribution of the training samples that reached them.
type Node struct {
	Feature   int       `json:"f"`
	Threshold float64   `json:"t,omitempty"`
	Left      int       `json:"l,omitempty"`
	Right     int       `json:"r,omitempty"`
	Value     []float64 `json:"v,omitempty"`
}

func (n Node) leaf() bool { return n.Feature == leafFeature }

type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t *Tree) predict(x []float64) []float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.leaf() {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

type treeBuilder struct {
	x        [][]float64
	y        []int
	weight   []float64
	classes  int
	maxDepth int
	minSplit int
	minLeaf  int
	mtry     int
	rng      *rand.Rand
	nodes    []Node
}

type split struct {
	feature   int
	threshold float64
	cost      float64
}

func (b *treeBuilder) distribution(idx []int) ([]float64, float64) {
	dist := make([]float64, b.classes)
	var total float64
	for _, i := range idx {
		dist[b.y[i]] += b.weight[i]
		total += b.weight[i]
	}
	return dist, total
}

func pure(dist []float64) bool {
	seen := 0
	for _, d := range dist {
		if d > 0 {
			seen++
		}
	}
	return seen <= 1
}

func normalize(dist []float64, total float64) []float64 {
	out := make([]float64, len(dist))
	if total <= 0 {
		return out
	}
	for c, d := range dist {
		out[c] = d / total
	}
	return out
}

// weightedGini returns total * gini(dist).
func weightedGini(dist []float64, total float64) float64 {
	if total <= 0 {
		return 0
	}
	var sq float64
	for _, d := range dist {
		sq += d * d
	}
	return total - sq/total
}

func (b *treeBuilder) build(idx []int, depth int) int {
	dist, total := b.distribution(idx)
	id := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: leafFeature})

	stop := len(idx) < b.minSplit || pure(dist) || total <= 0
	if b.maxDepth > 0 && depth >= b.maxDepth {
		stop = true
	}
	if !stop {
		if s, ok := b.bestSplit(idx); ok {
			var left, right []int
			for _, i := range idx {
				if b.x[i][s.feature] <= s.threshold {
					left = append(left, i)
				} else {
					right = append(right, i)
				}
			}
			b.nodes[id].Feature = s.feature
			b.nodes[id].Threshold = s.threshold
			l := b.build(left, depth+1)
			r := b.build(right, depth+1)
			b.nodes[id].Left = l
			b.nodes[id].Right = r
			return id
		}
	}

	b.nodes[id].Value = normalize(dist, total)
	return id
}

// bestSplit samples features without replacement and keeps drawing past
// mtry until at least one non-constant feature has been seen.
func (b *treeBuilder) bestSplit(idx []int) (split, bool) {
	width := len(b.x[idx[0]])
	order := b.rng.Perm(width)
	sorted := make([]int, len(idx))

	best := split{cost: -1}
	found := false
	visited := 0

	for _, f := range order {
		if visited >= b.mtry && found {
			break
		}
		copy(sorted, idx)
		slices.SortFunc(sorted, func(a, c int) int {
			return cmp.Compare(b.x[a][f], b.x[c][f])
		})
		if b.x[sorted[0]][f] == b.x[sorted[len(sorted)-1]][f] {
			continue
		}
		visited++

		right, rightTotal := b.distribution(sorted)
		left := make([]float64, b.classes)
		var leftTotal float64

		for pos := 0; pos < len(sorted)-1; pos++ {
			i := sorted[pos]
			left[b.y[i]] += b.weight[i]
			right[b.y[i]] -= b.weight[i]
			leftTotal += b.weight[i]
			rightTotal -= b.weight[i]

			cur, next := b.x[i][f], b.x[sorted[pos+1]][f]
			if cur == next {
				continue
			}
			if pos+1 < b.minLeaf || len(sorted)-pos-1 < b.minLeaf {
				continue
			}
			cost := weightedGini(left, leftTotal) + weightedGini(right, rightTotal)
			if !found || cost < best.cost {
				threshold := cur + (next-cur)/2
				if threshold == next {
					threshold = cur
				}
				best = split{feature: f, threshold: threshold, cost: cost}
				found = true
			}
		}
	}
	return best, found
}
