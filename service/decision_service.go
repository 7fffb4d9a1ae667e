package service

import (
	"fmt"
	"time"

	"loan-approval/classifier"
	"loan-approval/domain"
	"loan-approval/features"
	"loan-approval/logger"
	"loan-approval/metrics"
)

// DecisionService scores applicant records against the loaded artifact.
// The artifact is read-only after construction and safe to share.
type DecisionService struct {
	artifact *classifier.Artifact
	log      logger.Logger
}

func NewDecisionService(artifact *classifier.Artifact, log logger.Logger) *DecisionService {
	if artifact.Threshold != ServingThreshold {
		log.Warn("artifact threshold differs from serving threshold", map[string]interface{}{
			"artifact_threshold": artifact.Threshold,
			"serving_threshold":  ServingThreshold,
		})
	}
	return &DecisionService{artifact: artifact, log: log}
}

// Features lists the artifact's expected feature order.
func (s *DecisionService) Features() []string {
	return append([]string(nil), s.artifact.Features...)
}

// Decide approves when the positive-class probability is at least ServingThreshold.
func (s *DecisionService) Decide(record domain.ApplicantRecord) (domain.Decision, error) {
	start := time.Now()

	row, err := s.artifact.Record(features.ApplicantCells(record))
	if err != nil {
		return domain.Decision{}, fmt.Errorf("build model input: %w", err)
	}
	p, err := s.artifact.Pipeline.PositiveProbability(row)
	if err != nil {
		return domain.Decision{}, err
	}
	metrics.DecisionDuration.Observe(time.Since(start).Seconds())

	d := domain.Decision{Probability: p, Approved: p >= ServingThreshold}
	metrics.Decisions.WithLabelValues(metrics.Outcome(d.Approved)).Inc()
	return d, nil
}
