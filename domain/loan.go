package domain

import "math"

type LoanInput struct {
	Amount       float64
	InterestRate float64
	TermMonths   int
}

// RepaymentEstimate is an amortized view of the requested loan.
// LoanToIncome is a multiple of annual income, PaymentToIncome a
// percentage of monthly income.
type RepaymentEstimate struct {
	AnnualRate      float64 `json:"annual_rate"`
	TermMonths      int     `json:"term_months"`
	MonthlyPayment  float64 `json:"monthly_payment"`
	TotalPayment    float64 `json:"total_payment"`
	TotalInterest   float64 `json:"total_interest"`
	LoanToIncome    float64 `json:"loan_to_income"`
	PaymentToIncome float64 `json:"payment_to_income"`
}

// RoundTo rounds half away from zero to the given number of decimals.
func RoundTo(value float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(value*p) / p
}
