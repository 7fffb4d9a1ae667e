package service

import (
	"errors"
	"fmt"
	"math"

	"loan-approval/domain"
)

type LoanService struct {
	annualRate float64
	termUnit   string
}

// NewLoanService creates a LoanService quoting at annualRate percent.
// termUnit says whether applicant loan terms are in "months" or "years".
func NewLoanService(annualRate float64, termUnit string) *LoanService {
	return &LoanService{annualRate: annualRate, termUnit: termUnit}
}

// CalculateLoan amortizes a loan with a fixed monthly installment.
func (s *LoanService) CalculateLoan(input domain.LoanInput) (domain.RepaymentEstimate, error) {
	if input.Amount <= 0 {
		return domain.RepaymentEstimate{}, errors.New("invalid amount")
	}
	if input.Amount > MaxLoanAmount {
		return domain.RepaymentEstimate{}, fmt.Errorf("amount exceeds the maximum of %.2f", MaxLoanAmount)
	}
	if input.InterestRate < 0 {
		return domain.RepaymentEstimate{}, errors.New("invalid interest rate")
	}
	if input.InterestRate > MaxInterestRate {
		return domain.RepaymentEstimate{}, fmt.Errorf("interest rate exceeds the maximum of %.2f%%", MaxInterestRate)
	}
	if input.TermMonths < MinTermMonths {
		return domain.RepaymentEstimate{}, errors.New("invalid term")
	}
	if input.TermMonths > MaxTermMonths {
		return domain.RepaymentEstimate{}, fmt.Errorf("term exceeds the maximum of %d months", MaxTermMonths)
	}

	var installment float64
	n := float64(input.TermMonths)

	if input.InterestRate == 0 {
		installment = input.Amount / n
	} else {
		monthlyRate := (input.InterestRate / 100) / 12
		growth := math.Pow(1+monthlyRate, n)
		installment = input.Amount * monthlyRate * growth / (growth - 1)
	}

	total := installment * n

	return domain.RepaymentEstimate{
		AnnualRate:     input.InterestRate,
		TermMonths:     input.TermMonths,
		MonthlyPayment: domain.RoundTo(installment, 2),
		TotalPayment:   domain.RoundTo(total, 2),
		TotalInterest:  domain.RoundTo(total-input.Amount, 2),
	}, nil
}

// Estimate quotes the applicant's requested loan at the configured rate.
// It returns nil when the amount or term cannot be amortized.
func (s *LoanService) Estimate(record domain.ApplicantRecord) *domain.RepaymentEstimate {
	months := record.LoanTerm
	if s.termUnit == "years" {
		months *= 12
	}
	est, err := s.CalculateLoan(domain.LoanInput{
		Amount:       float64(record.LoanAmount),
		InterestRate: s.annualRate,
		TermMonths:   months,
	})
	if err != nil {
		return nil
	}

	if record.IncomeAnnum > 0 {
		est.LoanToIncome = domain.RoundTo(float64(record.LoanAmount)/record.IncomeAnnum, 2)
		est.PaymentToIncome = domain.RoundTo(est.MonthlyPayment/(record.IncomeAnnum/12)*100, 2)
	}
	return &est
}
