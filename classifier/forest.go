package classifier

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
)

// Params controls forest training.
type Params struct {
	Trees           int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	// MaxFeatures is the number of features tried per split. Zero means sqrt(width).
	MaxFeatures int
	Seed        int64
	// Balanced weights each class by n / (classes * count).
	Balanced bool
	Workers  int
}

func DefaultParams() Params {
	return Params{
		Trees:           200,
		MaxDepth:        10,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Seed:            42,
		Balanced:        true,
	}
}

// Forest is a bagged ensemble of CART trees.
type Forest struct {
	Classes int    `json:"classes"`
	Width   int    `json:"width"`
	Trees   []Tree `json:"trees"`
}

// ClassWeights returns the per-class sample weights for y.
func ClassWeights(y []int, classes int, balanced bool) []float64 {
	w := make([]float64, classes)
	if !balanced {
		for c := range w {
			w[c] = 1
		}
		return w
	}
	counts := make([]int, classes)
	for _, label := range y {
		counts[label]++
	}
	for c, n := range counts {
		if n > 0 {
			w[c] = float64(len(y)) / float64(classes*n)
		}
	}
	return w
}

// FitForest trains a forest on a dense matrix. Labels must lie in [0, classes).
func FitForest(x [][]float64, y []int, classes int, p Params) (*Forest, error) {
	if len(x) == 0 {
		return nil, errors.New("no training samples")
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("sample count mismatch: %d rows, %d labels", len(x), len(y))
	}
	if classes < 2 {
		return nil, errors.New("at least two classes are required")
	}
	if p.Trees <= 0 {
		return nil, errors.New("tree count must be positive")
	}
	width := len(x[0])
	if width == 0 {
		return nil, errors.New("no features")
	}
	for i, row := range x {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), width)
		}
		for _, v := range row {
			if !finite(v) {
				return nil, fmt.Errorf("row %d contains a non-finite value", i)
			}
		}
		if y[i] < 0 || y[i] >= classes {
			return nil, fmt.Errorf("row %d has label %d outside [0,%d)", i, y[i], classes)
		}
	}

	mtry := p.MaxFeatures
	if mtry <= 0 {
		mtry = int(math.Sqrt(float64(width)))
	}
	mtry = max(1, min(mtry, width))
	minSplit := max(2, p.MinSamplesSplit)
	minLeaf := max(1, p.MinSamplesLeaf)

	classWeight := ClassWeights(y, classes, p.Balanced)

	master := rand.New(rand.NewSource(p.Seed))
	seeds := make([]int64, p.Trees)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	forest := &Forest{Classes: classes, Width: width, Trees: make([]Tree, p.Trees)}

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				rng := rand.New(rand.NewSource(seeds[t]))
				n := len(y)
				idx := make([]int, n)
				for i := range idx {
					idx[i] = rng.Intn(n)
				}
				weight := make([]float64, n)
				for i, label := range y {
					weight[i] = classWeight[label]
				}
				b := &treeBuilder{
					x:        x,
					y:        y,
					weight:   weight,
					classes:  classes,
					maxDepth: p.MaxDepth,
					minSplit: minSplit,
					minLeaf:  minLeaf,
					mtry:     mtry,
					rng:      rng,
				}
				b.build(idx, 0)
				forest.Trees[t] = Tree{Nodes: b.nodes}
			}
		}()
	}
	for t := 0; t < p.Trees; t++ {
		jobs <- t
	}
	close(jobs)
	wg.Wait()

	return forest, nil
}

// PredictProba averages the leaf distributions of every tree.
func (f *Forest) PredictProba(x []float64) ([]float64, error) {
	if len(x) != f.Width {
		return nil, fmt.Errorf("%w: got %d features, want %d", ErrInference, len(x), f.Width)
	}
	for _, v := range x {
		if !finite(v) {
			return nil, fmt.Errorf("%w: non-finite feature value", ErrInference)
		}
	}
	out := make([]float64, f.Classes)
	for i := range f.Trees {
		for c, p := range f.Trees[i].predict(x) {
			out[c] += p
		}
	}
	n := float64(len(f.Trees))
	for c := range out {
		out[c] /= n
	}
	return out, nil
}

func (f *Forest) validate() error {
	if f.Classes < 2 || f.Width <= 0 || len(f.Trees) == 0 {
		return errors.New("empty forest")
	}
	for ti, t := range f.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, n := range t.Nodes {
			if n.leaf() {
				if len(n.Value) != f.Classes {
					return fmt.Errorf("tree %d node %d: leaf has %d classes", ti, ni, len(n.Value))
				}
				continue
			}
			if n.Feature < 0 || n.Feature >= f.Width {
				return fmt.Errorf("tree %d node %d: feature %d out of range", ti, ni, n.Feature)
			}
			if n.Left <= ni || n.Left >= len(t.Nodes) || n.Right <= ni || n.Right >= len(t.Nodes) {
				return fmt.Errorf("tree %d node %d: bad child index", ti, ni)
			}
		}
	}
	return nil
}
