package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"loan-approval/classifier"
	"loan-approval/domain"
	"loan-approval/features"
)

type fakeSource struct {
	direct string
	parts  []string
}

func (f fakeSource) DirectText() string { return f.direct }
func (f fakeSource) CandidateTexts() []string { return f.parts }

type panickySource struct{}

func (panickySource) DirectText() string { panic("response blocked") }
func (panickySource) CandidateTexts() []string { return nil }

type fakeGenerator struct {
	mu         sync.Mutex
	src        TextSource
	err        error
	panicWith  interface{}
	calls      int
	lastPrompt string
	lastOpts   GenerationOptions
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string, opts GenerationOptions) (TextSource, error) {
	g.mu.Lock()
	g.calls++
	g.lastPrompt = prompt
	g.lastOpts = opts
	g.mu.Unlock()
	if g.panicWith != nil {
		panic(g.panicWith)
	}
	return g.src, g.err
}

func (g *fakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

var testOptions = GenerationOptions{Model: "gemini-1.5-flash", Temperature: 0.3, TopP: 0.9, MaxOutputTokens: 512}

// constantArtifact scores every applicant with probability p.
func constantArtifact(p float64, threshold float64) *classifier.Artifact {
	cols := features.ServiceColumns()
	cols[5].Categories = []string{"Graduate", "Not Graduate"}
	cols[6].Categories = []string{"No", "Yes"}
	pipe := &classifier.Pipeline{
		Columns: cols,
		Forest: &classifier.Forest{
			Classes: 2,
			Width:   9,
			Trees:   []classifier.Tree{{Nodes: []classifier.Node{{Feature: -1, Value: []float64{1 - p, p}}}}},
		},
	}
	return &classifier.Artifact{Pipeline: pipe, Features: pipe.InputNames(), Threshold: threshold}
}

// trainedArtifact learns "approve when cibil_score >= 600".
func trainedArtifact(t *testing.T) *classifier.Artifact {
	t.Helper()
	var rows []classifier.Record
	var y []int
	names := append(append([]string{}, features.NumericFeatures...), features.CategoricalFeatures...)
	for i := 0; i < 120; i++ {
		rec := domain.ApplicantRecord{
			NoOfDependents: i % 4,
			Education:      []string{"Graduate", "Not Graduate"}[i%2],
			SelfEmployed:   []string{"No", "Yes"}[(i/2)%2],
			IncomeAnnum:    float64(300000 + (i%10)*50000),
			LoanAmount:     100000 + (i%7)*100000,
			LoanTerm:       2 + i%18,
			CibilScore:     300 + (i*5)%600,
		}
		row, err := classifier.NewRecord(names, features.ApplicantCells(rec))
		require.NoError(t, err)
		rows = append(rows, row)
		label := 0
		if rec.CibilScore >= 600 {
			label = 1
		}
		y = append(y, label)
	}
	params := classifier.DefaultParams()
	params.Trees = 15
	params.MaxFeatures = 9
	pipe, err := classifier.FitPipeline(features.ServiceColumns(), rows, y, params)
	require.NoError(t, err)
	return &classifier.Artifact{Pipeline: pipe, Features: pipe.InputNames(), Threshold: 0.7}
}

func exampleRecord() domain.ApplicantRecord {
	return domain.ApplicantRecord{
		NoOfDependents: 2,
		Education:      "Graduate",
		SelfEmployed:   "No",
		IncomeAnnum:    720000.0,
		LoanAmount:     500000,
		LoanTerm:       12,
		CibilScore:     750,
	}
}
