package features

import (
	"strings"

	"loan-approval/classifier"
	"loan-approval/domain"
)

// Form field names.
const (
	FieldFullName      = "full_name"
	FieldDependents    = "dependents"
	FieldEducation     = "education"
	FieldSelfEmployed  = "self_employed"
	FieldMonthlyIncome = "monthly_income"
	FieldCoappIncome   = "coapp_income"
	FieldLoanAmount    = "loan_amount"
	FieldLoanTerm      = "loan_term"
	FieldCibilScore    = "cibil_score"
)

// Model feature names, in the order the service model is trained on.
const (
	NoOfDependents = "no_of_dependents"
	IncomeAnnum    = "income_annum"
	LoanAmount     = "loan_amount"
	LoanTerm       = "loan_term"
	CibilScore     = "cibil_score"
	Education      = "education"
	SelfEmployed   = "self_employed"
)

const (
	DefaultEducation    = "Graduate"
	DefaultSelfEmployed = "No"
	DefaultFullName     = "Applicant"
)

var (
	NumericFeatures     = []string{NoOfDependents, IncomeAnnum, LoanAmount, LoanTerm, CibilScore}
	CategoricalFeatures = []string{Education, SelfEmployed}
)

// ServiceColumns is the column layout of the service pipeline.
func ServiceColumns() []classifier.Column {
	cols := make([]classifier.Column, 0, len(NumericFeatures)+len(CategoricalFeatures))
	for _, n := range NumericFeatures {
		cols = append(cols, classifier.Column{Name: n, Kind: classifier.Numeric})
	}
	for _, n := range CategoricalFeatures {
		cols = append(cols, classifier.Column{Name: n, Kind: classifier.Categorical})
	}
	return cols
}

// BuildApplicantRecord normalizes raw form values. Education and
// self-employment fall back to their defaults only when the field was not
// submitted at all; an empty submitted value is kept.
func BuildApplicantRecord(form domain.ApplicantForm) domain.ApplicantRecord {
	education := DefaultEducation
	if form.Has(FieldEducation) {
		education = strings.TrimSpace(form.Education)
	}
	selfEmployed := DefaultSelfEmployed
	if form.Has(FieldSelfEmployed) {
		selfEmployed = strings.TrimSpace(form.SelfEmployed)
	}

	return domain.ApplicantRecord{
		NoOfDependents: ParseInt(form.Dependents, 0),
		Education:      education,
		SelfEmployed:   selfEmployed,
		IncomeAnnum:    AnnualIncome(ParseFloat(form.MonthlyIncome, 0), ParseFloat(form.CoappIncome, 0)),
		LoanAmount:     ParseInt(form.LoanAmount, 0),
		LoanTerm:       ParseInt(form.LoanTerm, 0),
		CibilScore:     ParseInt(form.CibilScore, 0),
	}
}

// DisplayName trims the submitted name and substitutes a placeholder when empty.
func DisplayName(form domain.ApplicantForm) string {
	if name := strings.TrimSpace(form.FullName); name != "" {
		return name
	}
	return DefaultFullName
}

// ApplicantCells maps a record onto named model cells.
func ApplicantCells(r domain.ApplicantRecord) map[string]classifier.Value {
	return map[string]classifier.Value{
		NoOfDependents: classifier.Num(float64(r.NoOfDependents)),
		IncomeAnnum:    classifier.Num(r.IncomeAnnum),
		LoanAmount:     classifier.Num(float64(r.LoanAmount)),
		LoanTerm:       classifier.Num(float64(r.LoanTerm)),
		CibilScore:     classifier.Num(float64(r.CibilScore)),
		Education:      classifier.Cat(r.Education),
		SelfEmployed:   classifier.Cat(r.SelfEmployed),
	}
}
