package classifier

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func separable(n int) ([][]float64, []int) {
	x := make([][]float64, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		a := float64(i % 20)
		x[i] = []float64{a, float64((i * 7) % 13)}
		if a >= 10 {
			y[i] = 1
		}
	}
	return x, y
}

func smallParams() Params {
	p := DefaultParams()
	p.Trees = 25
	p.MaxDepth = 5
	p.MaxFeatures = 8
	return p
}

func TestNewRecord_OrderAndMissing(t *testing.T) {
	cells := map[string]Value{"b": Num(2), "a": Cat("x")}

	r, err := NewRecord([]string{"b", "a"}, cells)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, r.Columns)
	assert.Equal(t, Num(2), r.Values[0])

	_, err = NewRecord([]string{"a", "c"}, cells)
	assert.ErrorIs(t, err, ErrMissingFeature)
}

func TestFitForest_LearnsThreshold(t *testing.T) {
	x, y := separable(200)
	f, err := FitForest(x, y, 2, smallParams())
	require.NoError(t, err)

	high, err := f.PredictProba([]float64{15, 3})
	require.NoError(t, err)
	low, err := f.PredictProba([]float64{2, 3})
	require.NoError(t, err)

	assert.Greater(t, high[1], 0.9)
	assert.Less(t, low[1], 0.1)
	assert.InDelta(t, 1.0, high[0]+high[1], 1e-9)
}

func TestFitForest_Deterministic(t *testing.T) {
	x, y := separable(120)
	p := smallParams()
	p.Workers = 4

	a, err := FitForest(x, y, 2, p)
	require.NoError(t, err)
	p.Workers = 1
	b, err := FitForest(x, y, 2, p)
	require.NoError(t, err)

	for _, probe := range [][]float64{{9.5, 0}, {10, 12}, {3, 6}} {
		pa, _ := a.PredictProba(probe)
		pb, _ := b.PredictProba(probe)
		assert.Equal(t, pa, pb)
	}
}

func TestFitForest_RejectsBadInput(t *testing.T) {
	_, err := FitForest(nil, nil, 2, smallParams())
	assert.Error(t, err)

	_, err = FitForest([][]float64{{1}, {math.NaN()}}, []int{0, 1}, 2, smallParams())
	assert.Error(t, err)

	_, err = FitForest([][]float64{{1}, {2}}, []int{0, 2}, 2, smallParams())
	assert.Error(t, err)
}

func TestClassWeights_Balanced(t *testing.T) {
	w := ClassWeights([]int{0, 0, 0, 1}, 2, true)
	assert.InDelta(t, 4.0/6.0, w[0], 1e-12)
	assert.InDelta(t, 2.0, w[1], 1e-12)

	assert.Equal(t, []float64{1, 1}, ClassWeights([]int{0, 1}, 2, false))
}

func fitToyPipeline(t *testing.T) *Pipeline {
	t.Helper()
	columns := []Column{
		{Name: "score", Kind: Numeric},
		{Name: "grade", Kind: Categorical},
	}
	var rows []Record
	var y []int
	for i := 0; i < 100; i++ {
		grade := "low"
		label := 0
		if i%2 == 0 {
			grade = "high"
			label = 1
		}
		r, err := NewRecord([]string{"score", "grade"}, map[string]Value{
			"score": Num(float64(i % 7)),
			"grade": Cat(grade),
		})
		require.NoError(t, err)
		rows = append(rows, r)
		y = append(y, label)
	}
	p, err := FitPipeline(columns, rows, y, smallParams())
	require.NoError(t, err)
	return p
}

func TestPipeline_EncodingLayout(t *testing.T) {
	p := fitToyPipeline(t)
	assert.Equal(t, []string{"high", "low"}, p.Columns[1].Categories)
	assert.Equal(t, 3, p.EncodedWidth())

	r, _ := NewRecord([]string{"grade", "score"}, map[string]Value{"grade": Cat("low"), "score": Num(4)})
	x, err := p.Transform(r)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 4}, x)

	unknown, _ := NewRecord([]string{"score", "grade"}, map[string]Value{"grade": Cat("medium"), "score": Num(4)})
	x, err = p.Transform(unknown)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 4}, x)
}

func TestPipeline_PositiveProbability(t *testing.T) {
	p := fitToyPipeline(t)

	high, _ := NewRecord([]string{"score", "grade"}, map[string]Value{"score": Num(1), "grade": Cat("high")})
	prob, err := p.PositiveProbability(high)
	require.NoError(t, err)
	assert.Greater(t, prob, 0.9)
}

func TestPipeline_InferenceErrors(t *testing.T) {
	p := fitToyPipeline(t)

	cases := map[string]Record{
		"missing":     {Columns: []string{"score"}, Values: []Value{Num(1)}},
		"nan":         {Columns: []string{"score", "grade"}, Values: []Value{Num(math.NaN()), Cat("high")}},
		"inf":         {Columns: []string{"score", "grade"}, Values: []Value{Num(math.Inf(1)), Cat("high")}},
		"wrong kind":  {Columns: []string{"score", "grade"}, Values: []Value{Cat("1"), Cat("high")}},
		"numeric cat": {Columns: []string{"score", "grade"}, Values: []Value{Num(1), Num(0)}},
	}
	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := p.PositiveProbability(r)
			assert.ErrorIs(t, err, ErrInference)
		})
	}
}

func TestArtifact_SaveLoad(t *testing.T) {
	p := fitToyPipeline(t)
	a := &Artifact{Pipeline: p, Features: p.InputNames(), Threshold: 0.7}
	path := filepath.Join(t.TempDir(), "models", "model.json.gz")

	require.NoError(t, a.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"score", "grade"}, loaded.Features)
	assert.Equal(t, 0.7, loaded.Threshold)

	r, err := loaded.Record(map[string]Value{"score": Num(3), "grade": Cat("low")})
	require.NoError(t, err)
	want, _ := a.PredictProba(r)
	got, err := loaded.PredictProba(r)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "absent.json.gz"))
	assert.ErrorIs(t, err, ErrArtifactNotFound)

	garbage := filepath.Join(dir, "garbage.json.gz")
	require.NoError(t, os.WriteFile(garbage, []byte("not gzip"), 0o644))
	_, err = Load(garbage)
	assert.ErrorIs(t, err, ErrArtifactCorrupt)

	p := fitToyPipeline(t)
	a := &Artifact{Pipeline: p, Features: []string{"grade", "score"}, Threshold: 0.5}
	assert.Error(t, a.Save(filepath.Join(dir, "mismatch.json.gz")))
}

func TestStratifiedSplit(t *testing.T) {
	y := make([]int, 100)
	for i := 0; i < 30; i++ {
		y[i] = 1
	}
	train, test, err := StratifiedSplit(y, 0.2, 42)
	require.NoError(t, err)
	assert.Len(t, test, 20)
	assert.Len(t, train, 80)

	pos := 0
	for _, i := range test {
		pos += y[i]
	}
	assert.Equal(t, 6, pos)

	again, _, _ := StratifiedSplit(y, 0.2, 42)
	assert.Equal(t, train, again)

	_, _, err = StratifiedSplit([]int{0, 0, 1}, 0.2, 42)
	assert.Error(t, err)
}

func TestROCAUC(t *testing.T) {
	auc, err := ROCAUC([]int{0, 0, 1, 1}, []float64{0.1, 0.2, 0.8, 0.9})
	require.NoError(t, err)
	assert.Equal(t, 1.0, auc)

	auc, _ = ROCAUC([]int{1, 1, 0, 0}, []float64{0.1, 0.2, 0.8, 0.9})
	assert.Equal(t, 0.0, auc)

	auc, _ = ROCAUC([]int{0, 1, 0, 1}, []float64{0.5, 0.5, 0.5, 0.5})
	assert.Equal(t, 0.5, auc)

	_, err = ROCAUC([]int{1, 1}, []float64{0.1, 0.2})
	assert.Error(t, err)
}

func TestClassificationReport_Format(t *testing.T) {
	yTrue := []int{0, 0, 1, 1}
	yPred := Threshold([]float64{0.2, 0.8, 0.7, 0.9}, 0.7)
	assert.Equal(t, []int{0, 1, 1, 1}, yPred)
	assert.Equal(t, 0.75, Accuracy(yTrue, yPred))

	out := ClassificationReport(yTrue, yPred, 2).String()
	lines := strings.Split(out, "\n")

	assert.Equal(t, "              precision    recall  f1-score   support", lines[0])
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "           0      1.000     0.500     0.667         2", lines[2])
	assert.Equal(t, []string{"1", "0.667", "1.000", "0.800", "2"}, strings.Fields(lines[3]))
	assert.Equal(t, []string{"accuracy", "0.750", "4"}, strings.Fields(lines[5]))
	assert.Equal(t, []string{"macro", "avg", "0.833", "0.750", "0.733", "4"}, strings.Fields(lines[6]))
	assert.Equal(t, []string{"weighted", "avg", "0.833", "0.750", "0.733", "4"}, strings.Fields(lines[7]))
}
