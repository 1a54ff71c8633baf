// Package scoring derives a credit-worthiness score from a financial snapshot.
package scoring

import (
	"fmt"
	"math"
)

const (
	baseScore = 50.0

	maxSavingsBonus = 30.0
	maxDebtPenalty  = 25.0
	heavyDebtRatio  = 2.0
	heavyDebtCharge = 20.0
	noIncomeCharge  = 20.0

	lowExpenseRatio   = 0.5
	highExpenseRatio  = 0.8
	lowExpenseBonus   = 10.0
	highExpenseCharge = 15.0

	largeSavings      = 1000.0
	largeSavingsBonus = 10.0
	someSavings       = 500.0
	someSavingsBonus  = 5.0

	projectionBase   = 60.0
	projectionWeight = 0.001

	MinScore = 0
	MaxScore = 100
)

// Snapshot is one set of financial figures. Callers validate that every
// field is non-negative and finite.
type Snapshot struct {
	Savings  float64 `json:"savings"`
	Loans    float64 `json:"loans"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

// Score returns rawScore rounded half away from zero, an integer in [0, 100].
func Score(s Snapshot) int {
	return int(math.Round(rawScore(s)))
}

// rawScore is the clamped score before rounding. Rating tiers compare
// against it.
//
// Starting from 50, a positive income adds up to 30 for the savings ratio,
// subtracts up to 25 for the debt ratio (plus a flat 20 when the ratio
// exceeds 2) and moves by the expense ratio. No income costs a flat 20
// instead. Savings above 500 and 1000 earn a bonus either way.
func rawScore(s Snapshot) float64 {
	score := baseScore

	if s.Income > 0 {
		score += math.Min(maxSavingsBonus, s.Savings/s.Income*100)

		debtRatio := s.Loans / s.Income
		if debtRatio > heavyDebtRatio {
			score -= heavyDebtCharge
		}
		score -= math.Min(maxDebtPenalty, debtRatio*50)

		expenseRatio := s.Expenses / s.Income
		switch {
		case expenseRatio < lowExpenseRatio:
			score += lowExpenseBonus
		case expenseRatio > highExpenseRatio:
			score -= highExpenseCharge
		}
	} else {
		score -= noIncomeCharge
	}

	switch {
	case s.Savings > largeSavings:
		score += largeSavingsBonus
	case s.Savings > someSavings:
		score += someSavingsBonus
	}

	return clamp(score, MinScore, MaxScore)
}

// Project estimates a future score from savings alone after months of
// saving monthlySave. It ignores loans, income and expenses.
func Project(savings float64, months int, monthlySave float64) float64 {
	projected := savings + monthlySave*float64(months)
	return clamp(projectionBase+projected*projectionWeight, MinScore, MaxScore)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// Validate reports the first field that is negative or not finite.
func (s Snapshot) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"savings", s.Savings},
		{"loans", s.Loans},
		{"income", s.Income},
		{"expenses", s.Expenses},
	}
	for _, f := range fields {
		if err := checkAmount(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

// ValidateProjection checks the inputs of Project.
func ValidateProjection(savings float64, months int, monthlySave float64) error {
	if err := checkAmount("savings", savings); err != nil {
		return err
	}
	if months < 0 {
		return fmt.Errorf("months must be a whole number of at least 0, got %d", months)
	}
	return checkAmount("monthly_save", monthlySave)
}

func checkAmount(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be a finite number", name)
	}
	if v < 0 {
		return fmt.Errorf("%s cannot be negative", name)
	}
	return nil
}
