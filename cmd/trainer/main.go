// Command trainer fits a loan approval forest from a CSV file, prints its
// hold-out metrics and saves the artifact.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"loan-approval/classifier"
	"loan-approval/logger"
)

const (
	schemaService = "service"
	schemaBatch   = "batch"
)

type options struct {
	data      string
	out       string
	schema    string
	testSize  float64
	threshold float64
	params    classifier.Params
}

func parseFlags(args []string) (options, error) {
	defaults := classifier.DefaultParams()

	fs := flag.NewFlagSet("trainer", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	data := fs.String("data", filepath.Join("data", "loan.csv"), "training CSV")
	out := fs.String("out", "", "artifact path (default depends on -schema)")
	schema := fs.String("schema", schemaService, "dataset layout: service or batch")
	trees := fs.Int("trees", defaults.Trees, "number of trees")
	depth := fs.Int("depth", defaults.MaxDepth, "maximum tree depth")
	seed := fs.Int64("seed", defaults.Seed, "random seed for the split and the forest")
	testSize := fs.Float64("test-size", 0.2, "hold-out fraction")
	threshold := fs.Float64("threshold", -1, "evaluation threshold (default 0.7 for service, 0.5 for batch)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts := options{
		data:      *data,
		out:       *out,
		schema:    *schema,
		testSize:  *testSize,
		threshold: *threshold,
		params:    defaults,
	}
	opts.params.Trees = *trees
	opts.params.MaxDepth = *depth
	opts.params.Seed = *seed

	switch opts.schema {
	case schemaService:
		if opts.out == "" {
			opts.out = filepath.Join("models", "loan_approval_model.json.gz")
		}
		if opts.threshold < 0 {
			opts.threshold = 0.7
		}
	case schemaBatch:
		if opts.out == "" {
			opts.out = "model.json.gz"
		}
		if opts.threshold < 0 {
			opts.threshold = 0.5
		}
	default:
		return options{}, fmt.Errorf("unknown schema %q", opts.schema)
	}
	if opts.threshold > 1 {
		return options{}, fmt.Errorf("threshold %v outside [0,1]", opts.threshold)
	}
	if opts.params.Trees <= 0 {
		return options{}, errors.New("trees must be positive")
	}
	return opts, nil
}

// evaluation holds the hold-out metrics of one training run.
type evaluation struct {
	accuracy float64
	auc      float64
	report   classifier.Report
}

func (e evaluation) write(w io.Writer) {
	fmt.Fprintf(w, "Accuracy: %.4f\n", e.accuracy)
	fmt.Fprintf(w, "ROC-AUC : %.4f\n", e.auc)
	fmt.Fprintf(w, "\nClassification report:\n%s\n", e.report.Format(3))
}

// train splits ds, fits the pipeline on the training part and scores the
// hold-out part at threshold.
func train(ds *dataset, opts options) (*classifier.Artifact, evaluation, error) {
	trainIdx, testIdx, err := classifier.StratifiedSplit(ds.y, opts.testSize, opts.params.Seed)
	if err != nil {
		return nil, evaluation{}, err
	}

	rows := make([]classifier.Record, len(trainIdx))
	y := make([]int, len(trainIdx))
	for i, idx := range trainIdx {
		rows[i] = ds.rows[idx]
		y[i] = ds.y[idx]
	}
	pipe, err := classifier.FitPipeline(ds.columns, rows, y, opts.params)
	if err != nil {
		return nil, evaluation{}, err
	}

	yTrue := make([]int, len(testIdx))
	scores := make([]float64, len(testIdx))
	for i, idx := range testIdx {
		p, err := pipe.PositiveProbability(ds.rows[idx])
		if err != nil {
			return nil, evaluation{}, err
		}
		yTrue[i] = ds.y[idx]
		scores[i] = p
	}
	yPred := classifier.Threshold(scores, opts.threshold)

	auc, err := classifier.ROCAUC(yTrue, scores)
	if err != nil {
		return nil, evaluation{}, err
	}
	eval := evaluation{
		accuracy: classifier.Accuracy(yTrue, yPred),
		auc:      auc,
		report:   classifier.ClassificationReport(yTrue, yPred, 2),
	}

	artifact := &classifier.Artifact{
		Pipeline:  pipe,
		Features:  pipe.InputNames(),
		Threshold: opts.threshold,
		Schema:    opts.schema,
		TrainedAt: time.Now().UTC(),
	}
	return artifact, eval, nil
}

func run(args []string, stdout io.Writer, log logger.Logger) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	f, err := os.Open(opts.data)
	if err != nil {
		return fmt.Errorf("CSV not found at %s: %w", opts.data, err)
	}
	defer f.Close()

	t, err := readTable(f)
	if err != nil {
		return err
	}

	var ds *dataset
	if opts.schema == schemaBatch {
		ds, err = batchDataset(t, log)
	} else {
		ds, err = serviceDataset(t)
	}
	if err != nil {
		return err
	}
	log.Info("Training", map[string]interface{}{
		"schema": opts.schema,
		"rows":   len(ds.rows),
		"trees":  opts.params.Trees,
		"depth":  opts.params.MaxDepth,
	})

	artifact, eval, err := train(ds, opts)
	if err != nil {
		return err
	}
	eval.write(stdout)

	if err := artifact.Save(opts.out); err != nil {
		return err
	}
	abs, err := filepath.Abs(opts.out)
	if err != nil {
		abs = opts.out
	}
	fmt.Fprintf(stdout, "\nSaved model → %s\n", abs)
	return nil
}

func main() {
	log := logger.NewStderr(os.Getenv("LOG_LEVEL"))
	defer log.Sync()

	if err := run(os.Args[1:], os.Stdout, log); err != nil {
		log.Error("Training failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}
