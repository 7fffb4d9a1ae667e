package domain

import "time"

type Decision struct {
	Probability float64 `json:"probability"`
	Approved    bool    `json:"approved"`
}

// Label is the wording used in prompts and pages.
func (d Decision) Label() string {
	if d.Approved {
		return "Approved"
	}
	return "Rejected"
}

// Percent is the probability as a percentage rounded to two decimals.
func (d Decision) Percent() float64 {
	return RoundTo(d.Probability*100, 2)
}

// Assessment is everything returned to the applicant for one request.
type Assessment struct {
	ID        string             `json:"id"`
	FullName  string             `json:"full_name"`
	Decision  Decision           `json:"decision"`
	Record    ApplicantRecord    `json:"details"`
	Repayment *RepaymentEstimate `json:"repayment,omitempty"`
	Insight   string             `json:"insight"`
}

// DecisionRecord is the audit row written when a decision sink is configured.
type DecisionRecord struct {
	ID          string
	FullName    string
	Record      ApplicantRecord
	Probability float64
	Approved    bool
	CreatedAt   time.Time
}
