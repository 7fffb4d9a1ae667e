package domain

// ApplicantForm carries the raw form values exactly as submitted.
// Present reports whether a field appeared in the submission at all,
// which matters for the fields that only default when absent.
type ApplicantForm struct {
	FullName      string
	Dependents    string
	Education     string
	SelfEmployed  string
	MonthlyIncome string
	CoappIncome   string
	LoanAmount    string
	LoanTerm      string
	CibilScore    string

	Present map[string]bool
}

// Has reports whether the named form field was submitted.
func (f ApplicantForm) Has(field string) bool {
	return f.Present[field]
}

// ApplicantRecord is the fixed seven-feature schema the service model was trained on.
type ApplicantRecord struct {
	NoOfDependents int     `json:"no_of_dependents"`
	Education      string  `json:"education"`
	SelfEmployed   string  `json:"self_employed"`
	IncomeAnnum    float64 `json:"income_annum"`
	LoanAmount     int     `json:"loan_amount"`
	LoanTerm       int     `json:"loan_term"`
	CibilScore     int     `json:"cibil_score"`
}
