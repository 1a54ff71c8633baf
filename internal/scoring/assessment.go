package scoring

import (
	"fmt"
	"math"
)

// Rating is the risk tier derived from a score.
type Rating string

const (
	RatingExcellent Rating = "excellent"
	RatingGood      Rating = "good"
	RatingFair      Rating = "fair"
	RatingPoor      Rating = "poor"
)

// Loan limit used for approved tiers when there is no income to scale.
const noIncomeLoanLimit = 1000.0

// Assessment is a score with the advice that goes with it.
type Assessment struct {
	Score          int     `json:"score"`
	Rating         Rating  `json:"rating"`
	Summary        string  `json:"summary"`
	LoanLimit      float64 `json:"loan_limit"`
	Recommendation string  `json:"recommendation"`

	// DebtToIncome is nil when the ratio is unbounded.
	DebtToIncome *float64 `json:"debt_to_income"`
}

// Assess scores s and attaches the rating tier and loan advice. The tier is
// picked from the unrounded score, so 79.5 reports 80 but rates good.
func Assess(s Snapshot) *Assessment {
	score := rawScore(s)
	a := &Assessment{Score: int(math.Round(score))}
	if dti := DebtToIncome(s); !math.IsInf(dti, 1) {
		a.DebtToIncome = &dti
	}

	var multiplier float64
	switch {
	case score >= 80:
		a.Rating, a.Summary, multiplier = RatingExcellent, "Low risk borrower", 3
	case score >= 60:
		a.Rating, a.Summary, multiplier = RatingGood, "Moderate risk borrower", 2
	case score >= 40:
		a.Rating, a.Summary, multiplier = RatingFair, "Higher risk, consider smaller amounts", 1
	default:
		a.Rating, a.Summary = RatingPoor, "Focus on building savings first"
		a.Recommendation = "Recommend savings program before loans"
		return a
	}

	a.LoanLimit = noIncomeLoanLimit
	if s.Income > 0 {
		a.LoanLimit = s.Income * multiplier
	}
	a.Recommendation = fmt.Sprintf("Approved for loans up to R%.0f", a.LoanLimit)
	return a
}

// DebtToIncome returns loans as a percentage of income. With no income it
// is +Inf when there are loans and 0 otherwise.
func DebtToIncome(s Snapshot) float64 {
	if s.Income > 0 {
		return s.Loans / s.Income * 100
	}
	if s.Loans > 0 {
		return math.Inf(1)
	}
	return 0
}
