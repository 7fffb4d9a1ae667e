package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-approval/domain"
)

func TestCalculateLoan_WithInterest(t *testing.T) {
	s := NewLoanService(8.5, "months")

	result, err := s.CalculateLoan(domain.LoanInput{Amount: 10000, InterestRate: 12, TermMonths: 24})
	require.NoError(t, err)

	assert.Equal(t, 470.73, result.MonthlyPayment)
	assert.InDelta(t, 11297.63, result.TotalPayment, 0.01)
	assert.InDelta(t, 1297.63, result.TotalInterest, 0.01)
}

func TestCalculateLoan_ZeroInterest(t *testing.T) {
	s := NewLoanService(0, "months")

	result, err := s.CalculateLoan(domain.LoanInput{Amount: 1200, InterestRate: 0, TermMonths: 12})
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.MonthlyPayment)
	assert.Equal(t, 0.0, result.TotalInterest)
}

func TestCalculateLoan_InvalidInput(t *testing.T) {
	s := NewLoanService(8.5, "months")

	for name, in := range map[string]domain.LoanInput{
		"zero amount":   {Amount: 0, InterestRate: 10, TermMonths: 12},
		"huge amount":   {Amount: MaxLoanAmount * 2, InterestRate: 10, TermMonths: 12},
		"negative rate": {Amount: 1000, InterestRate: -1, TermMonths: 12},
		"zero term":     {Amount: 1000, InterestRate: 10, TermMonths: 0},
		"long term":     {Amount: 1000, InterestRate: 10, TermMonths: MaxTermMonths + 1},
	} {
		_, err := s.CalculateLoan(in)
		assert.Error(t, err, name)
	}
}

func TestEstimate_YearsTerm(t *testing.T) {
	s := NewLoanService(8.5, "years")

	est := s.Estimate(exampleRecord())
	require.NotNil(t, est)
	assert.Equal(t, 144, est.TermMonths)
	assert.Equal(t, 8.5, est.AnnualRate)
	assert.Greater(t, est.MonthlyPayment, 500000.0/144)
	assert.Equal(t, 0.69, est.LoanToIncome)
	assert.Equal(t, domain.RoundTo(est.MonthlyPayment/60000*100, 2), est.PaymentToIncome)
}

func TestEstimate_MonthsTermAndNoIncome(t *testing.T) {
	s := NewLoanService(8.5, "months")
	rec := exampleRecord()
	rec.IncomeAnnum = 0

	est := s.Estimate(rec)
	require.NotNil(t, est)
	assert.Equal(t, 12, est.TermMonths)
	assert.Equal(t, 0.0, est.LoanToIncome)
	assert.Equal(t, 0.0, est.PaymentToIncome)
}

func TestEstimate_Unquotable(t *testing.T) {
	s := NewLoanService(8.5, "years")

	rec := exampleRecord()
	rec.LoanAmount = 0
	assert.Nil(t, s.Estimate(rec))

	rec = exampleRecord()
	rec.LoanTerm = 0
	assert.Nil(t, s.Estimate(rec))
}
