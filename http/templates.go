package http

import (
	"embed"
	"fmt"
	"html/template"

	"loan-approval/domain"
	"loan-approval/features"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type indexView struct {
	TermUnit string
}

type detailRow struct {
	Name  string
	Value string
}

type resultView struct {
	ID          string
	FullName    string
	Approved    bool
	Probability float64
	Details     []detailRow
	Repayment   *domain.RepaymentEstimate
	Insight     string
}

func newResultView(a domain.Assessment) resultView {
	r := a.Record
	return resultView{
		ID:          a.ID,
		FullName:    a.FullName,
		Approved:    a.Decision.Approved,
		Probability: a.Decision.Percent(),
		Details: []detailRow{
			{features.NoOfDependents, fmt.Sprint(r.NoOfDependents)},
			{features.Education, r.Education},
			{features.SelfEmployed, r.SelfEmployed},
			{features.IncomeAnnum, fmt.Sprintf("%.1f", r.IncomeAnnum)},
			{features.LoanAmount, fmt.Sprint(r.LoanAmount)},
			{features.LoanTerm, fmt.Sprint(r.LoanTerm)},
			{features.CibilScore, fmt.Sprint(r.CibilScore)},
		},
		Repayment: a.Repayment,
		Insight:   a.Insight,
	}
}
