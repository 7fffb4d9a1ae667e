package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"loan-approval/domain"
	"loan-approval/features"
	"loan-approval/logger"
	"loan-approval/repository"
)

// AssessmentService runs the full request flow: normalize, decide,
// quote repayment, fetch an insight and optionally record the decision.
type AssessmentService struct {
	decisions *DecisionService
	insights  *InsightService
	loans     *LoanService
	audit     repository.DecisionRepository
	log       logger.Logger
	now       func() time.Time
}

// NewAssessmentService wires the flow. audit may be nil to disable recording.
func NewAssessmentService(
	decisions *DecisionService,
	insights *InsightService,
	loans *LoanService,
	audit repository.DecisionRepository,
	log logger.Logger,
) *AssessmentService {
	return &AssessmentService{
		decisions: decisions,
		insights:  insights,
		loans:     loans,
		audit:     audit,
		log:       log,
		now:       time.Now,
	}
}

// Assess returns an error only when scoring fails.
func (s *AssessmentService) Assess(ctx context.Context, form domain.ApplicantForm) (domain.Assessment, error) {
	record := features.BuildApplicantRecord(form)
	id := uuid.NewString()
	log := s.log.With(map[string]interface{}{"assessment_id": id})

	decision, err := s.decisions.Decide(record)
	if err != nil {
		log.WithError(err).Error("decision failed", nil)
		return domain.Assessment{}, err
	}

	a := domain.Assessment{
		ID:        id,
		FullName:  features.DisplayName(form),
		Decision:  decision,
		Record:    record,
		Repayment: s.loans.Estimate(record),
		Insight:   s.insights.Insight(ctx, decision, record),
	}

	if s.audit != nil {
		err := s.audit.Save(ctx, domain.DecisionRecord{
			ID:          id,
			FullName:    a.FullName,
			Record:      record,
			Probability: decision.Probability,
			Approved:    decision.Approved,
			CreatedAt:   s.now().UTC(),
		})
		if err != nil {
			log.WithError(err).Warn("failed to record decision", nil)
		}
	}

	log.Info("application assessed", map[string]interface{}{
		"approved":    decision.Approved,
		"probability": decision.Probability,
	})
	return a, nil
}
