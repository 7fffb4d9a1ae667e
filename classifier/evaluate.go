package classifier

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strconv"
	"strings"
)

// StratifiedSplit partitions sample indices into train and test sets,
// preserving class proportions. Each class needs at least two samples.
func StratifiedSplit(y []int, testSize float64, seed int64) (train, test []int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size %v outside (0,1)", testSize)
	}
	byClass := map[int][]int{}
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}
	labels := make([]int, 0, len(byClass))
	for label := range byClass {
		labels = append(labels, label)
	}
	slices.Sort(labels)

	rng := rand.New(rand.NewSource(seed))
	for _, label := range labels {
		idx := byClass[label]
		if len(idx) < 2 {
			return nil, nil, fmt.Errorf("class %d has %d sample(s), need at least 2", label, len(idx))
		}
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		nTest := int(float64(len(idx))*testSize + 0.5)
		nTest = max(1, min(nTest, len(idx)-1))
		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}
	slices.Sort(train)
	slices.Sort(test)
	return train, test, nil
}

// Threshold turns scores into labels with score >= t as positive.
func Threshold(scores []float64, t float64) []int {
	out := make([]int, len(scores))
	for i, s := range scores {
		if s >= t {
			out[i] = 1
		}
	}
	return out
}

func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	hit := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hit++
		}
	}
	return float64(hit) / float64(len(yTrue))
}

// ROCAUC is the Mann-Whitney statistic over positive-class scores, with
// tied scores sharing their average rank.
func ROCAUC(yTrue []int, scores []float64) (float64, error) {
	if len(yTrue) != len(scores) {
		return 0, errors.New("label and score counts differ")
	}
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(scores[a], scores[b]) })

	ranks := make([]float64, len(scores))
	for i := 0; i < len(order); {
		j := i
		for j+1 < len(order) && scores[order[j+1]] == scores[order[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		i = j + 1
	}

	var pos, neg, rankSum float64
	for i, label := range yTrue {
		if label == 1 {
			pos++
			rankSum += ranks[i]
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0, errors.New("ROC-AUC needs both classes present")
	}
	return (rankSum - pos*(pos+1)/2) / (pos * neg), nil
}

type ClassMetrics struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

type Report struct {
	Classes     []ClassMetrics
	Accuracy    float64
	MacroAvg    ClassMetrics
	WeightedAvg ClassMetrics
	Total       int
}

// ClassificationReport computes per-class precision, recall and F1.
// Undefined ratios are reported as zero.
func ClassificationReport(yTrue, yPred []int, classes int) Report {
	tp := make([]int, classes)
	predicted := make([]int, classes)
	support := make([]int, classes)
	for i := range yTrue {
		support[yTrue[i]]++
		predicted[yPred[i]]++
		if yTrue[i] == yPred[i] {
			tp[yTrue[i]]++
		}
	}
	ratio := func(a, b int) float64 {
		if b == 0 {
			return 0
		}
		return float64(a) / float64(b)
	}

	r := Report{Accuracy: Accuracy(yTrue, yPred), Total: len(yTrue)}
	r.MacroAvg = ClassMetrics{Label: "macro avg", Support: len(yTrue)}
	r.WeightedAvg = ClassMetrics{Label: "weighted avg", Support: len(yTrue)}
	for c := 0; c < classes; c++ {
		m := ClassMetrics{
			Label:     strconv.Itoa(c),
			Precision: ratio(tp[c], predicted[c]),
			Recall:    ratio(tp[c], support[c]),
			Support:   support[c],
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		r.Classes = append(r.Classes, m)

		r.MacroAvg.Precision += m.Precision / float64(classes)
		r.MacroAvg.Recall += m.Recall / float64(classes)
		r.MacroAvg.F1 += m.F1 / float64(classes)
		if len(yTrue) > 0 {
			w := float64(m.Support) / float64(len(yTrue))
			r.WeightedAvg.Precision += m.Precision * w
			r.WeightedAvg.Recall += m.Recall * w
			r.WeightedAvg.F1 += m.F1 * w
		}
	}
	return r
}

// Format renders the report in the familiar fixed-width text layout.
func (r Report) Format(digits int) string {
	width := len("weighted avg")
	for _, c := range r.Classes {
		width = max(width, len(c.Label))
	}
	width = max(width, digits)

	var b strings.Builder
	fmt.Fprintf(&b, "%*s ", width, "")
	for _, h := range []string{"precision", "recall", "f1-score", "support"} {
		fmt.Fprintf(&b, " %9s", h)
	}
	b.WriteString("\n\n")

	row := func(m ClassMetrics) {
		fmt.Fprintf(&b, "%*s  %9.*f %9.*f %9.*f %9d\n", width, m.Label,
			digits, m.Precision, digits, m.Recall, digits, m.F1, m.Support)
	}
	for _, c := range r.Classes {
		row(c)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s  %9s %9s %9.*f %9d\n", width, "accuracy", "", "", digits, r.Accuracy, r.Total)
	row(r.MacroAvg)
	row(r.WeightedAvg)
	return b.String()
}

func (r Report) String() string { return r.Format(3) }
