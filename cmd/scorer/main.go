// Command scorer reads one applicant as JSON on stdin and writes the batch
// model's prediction as JSON on stdout.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"loan-approval/classifier"
	"loan-approval/domain"
	"loan-approval/features"
	"loan-approval/logger"
)

func main() {
	log := logger.NewStderr(os.Getenv("LOG_LEVEL"))
	defer log.Sync()
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, log))
}

func run(args []string, stdin io.Reader, stdout io.Writer, log logger.Logger) int {
	fs := flag.NewFlagSet("scorer", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	modelPath := fs.String("model", "model.json.gz", "path to the batch model artifact")
	if err := fs.Parse(args); err != nil {
		return fail(stdout, log, fmt.Sprintf("Invalid input: %v", err))
	}

	raw, err := io.ReadAll(stdin)
	if err != nil {
		return fail(stdout, log, fmt.Sprintf("Invalid input: %v", err))
	}
	input, err := features.ValidateBatchJSON(bytes.TrimSpace(raw))
	if err != nil {
		return fail(stdout, log, fmt.Sprintf("Invalid input: %v", err))
	}
	record, err := features.PrepareBatch(input)
	if err != nil {
		return fail(stdout, log, fmt.Sprintf("Invalid input: %v", err))
	}

	artifact, err := classifier.Load(*modelPath)
	if err != nil {
		if errors.Is(err, classifier.ErrArtifactNotFound) {
			return fail(stdout, log, fmt.Sprintf("Model file not found: %s", *modelPath))
		}
		return fail(stdout, log, fmt.Sprintf("Error loading model: %v", err))
	}

	proba, err := artifact.PredictProba(record)
	if err != nil {
		return fail(stdout, log, fmt.Sprintf("Prediction error: %v", err))
	}

	result := domain.BatchPrediction{Probability: domain.RoundTo(math.Max(proba[0], proba[1]), 3)}
	if proba[1] > proba[0] {
		result.Prediction = 1
	}
	log.Debug("Scored applicant", map[string]interface{}{
		"model":       *modelPath,
		"prediction":  result.Prediction,
		"probability": result.Probability,
	})
	if err := json.NewEncoder(stdout).Encode(result); err != nil {
		log.Error("Failed to write result", map[string]interface{}{"error": err.Error()})
		return 1
	}
	return 0
}

func fail(stdout io.Writer, log logger.Logger, msg string) int {
	log.Error("Scoring failed", map[string]interface{}{"error": msg})
	_ = json.NewEncoder(stdout).Encode(domain.BatchError{Error: msg})
	return 1
}
