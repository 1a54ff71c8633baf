package scoring

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		in   Snapshot
		want int
	}{
		{"all zero", Snapshot{}, 30},
		{"strong saver", Snapshot{Savings: 1200, Loans: 0, Income: 1000, Expenses: 200}, 100},
		{"debt ratio exactly 2", Snapshot{Loans: 2000, Income: 1000}, 35},
		{"debt ratio above 2", Snapshot{Loans: 2010, Income: 1000}, 15},
		{"expense ratio just below 0.5", Snapshot{Income: 1000, Expenses: 499}, 60},
		{"expense ratio 0.5", Snapshot{Income: 1000, Expenses: 500}, 50},
		{"expense ratio 0.8", Snapshot{Income: 1000, Expenses: 800}, 50},
		{"expense ratio above 0.8", Snapshot{Income: 1000, Expenses: 801}, 35},
		{"savings 500 earns nothing", Snapshot{Savings: 500}, 30},
		{"savings above 500", Snapshot{Savings: 501}, 35},
		{"savings 1000", Snapshot{Savings: 1000}, 35},
		{"savings above 1000", Snapshot{Savings: 1001}, 40},
		{"clamped at zero", Snapshot{Loans: 1000, Income: 1, Expenses: 1000}, 0},
		{"half rounds up", Snapshot{Savings: 5, Income: 1000}, 61},
		{"below half rounds down", Snapshot{Savings: 4, Income: 1000}, 60},
		{"79.5 rounds up", Snapshot{Savings: 195, Income: 1000, Expenses: 100}, 80},
		{"59.5 rounds up", Snapshot{Savings: 95, Income: 1000, Expenses: 600}, 60},
		{"39.5 rounds up", Snapshot{Savings: 45, Income: 1000, Expenses: 900}, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.in))
		})
	}
}

func TestScoreMonotonicInSavings(t *testing.T) {
	prev := -1
	for savings := 0.0; savings <= 2000; savings += 10 {
		got := Score(Snapshot{Savings: savings, Loans: 100, Income: 1000, Expenses: 600})
		require.GreaterOrEqual(t, got, prev, "savings=%v", savings)
		prev = got
	}
}

func TestScoreBounded(t *testing.T) {
	values := []float64{0, 0.01, 1, 499, 500, 501, 999, 1000, 1001, 1e6, 1e12}
	for _, s := range values {
		for _, l := range values {
			for _, i := range values {
				for _, e := range values {
					got := Score(Snapshot{Savings: s, Loans: l, Income: i, Expenses: e})
					if got < MinScore || got > MaxScore {
						t.Fatalf("Score(%v, %v, %v, %v) = %d out of range", s, l, i, e, got)
					}
				}
			}
		}
	}
}

func TestProject(t *testing.T) {
	assert.InDelta(t, 60.0, Project(0, 0, 0), 1e-9)
	assert.InDelta(t, 62.2, Project(1000, 12, 100), 1e-9)
	assert.InDelta(t, 61.0, Project(1000, 0, 500), 1e-9)
	assert.Equal(t, 100.0, Project(50000, 0, 0))
	assert.Equal(t, 100.0, Project(0, 120, 1000))
}

func TestAssess(t *testing.T) {
	tests := []struct {
		name      string
		in        Snapshot
		score     int
		rating    Rating
		loanLimit float64
		advice    string
	}{
		{"excellent", Snapshot{Savings: 1200, Income: 1000, Expenses: 200}, 100, RatingExcellent, 3000, "Approved for loans up to R3000"},
		{"good", Snapshot{Income: 1000}, 60, RatingGood, 2000, "Approved for loans up to R2000"},
		{"fair without income", Snapshot{Savings: 1001}, 40, RatingFair, 1000, "Approved for loans up to R1000"},
		{"poor", Snapshot{}, 30, RatingPoor, 0, "Recommend savings program before loans"},
		{"79.5 stays good", Snapshot{Savings: 195, Income: 1000, Expenses: 100}, 80, RatingGood, 2000, "Approved for loans up to R2000"},
		{"59.5 stays fair", Snapshot{Savings: 95, Income: 1000, Expenses: 600}, 60, RatingFair, 1000, "Approved for loans up to R1000"},
		{"39.5 stays poor", Snapshot{Savings: 45, Income: 1000, Expenses: 900}, 40, RatingPoor, 0, "Recommend savings program before loans"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Assess(tt.in)
			assert.Equal(t, tt.score, a.Score)
			assert.Equal(t, tt.rating, a.Rating)
			assert.Equal(t, tt.loanLimit, a.LoanLimit)
			assert.Equal(t, tt.advice, a.Recommendation)
			assert.NotEmpty(t, a.Summary)
		})
	}
}

func TestDebtToIncome(t *testing.T) {
	assert.InDelta(t, 50.0, DebtToIncome(Snapshot{Loans: 500, Income: 1000}), 1e-9)
	assert.Equal(t, 0.0, DebtToIncome(Snapshot{}))
	assert.True(t, math.IsInf(DebtToIncome(Snapshot{Loans: 10}), 1))
}

func TestAssessmentUnboundedDebtEncodes(t *testing.T) {
	a := Assess(Snapshot{Loans: 10})
	assert.Nil(t, a.DebtToIncome)

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"debt_to_income":null`)

	b := Assess(Snapshot{Loans: 500, Income: 1000})
	require.NotNil(t, b.DebtToIncome)
	assert.InDelta(t, 50.0, *b.DebtToIncome, 1e-9)
}

func TestSnapshotValidate(t *testing.T) {
	assert.NoError(t, Snapshot{}.Validate())
	assert.NoError(t, Snapshot{Savings: 1, Loans: 2, Income: 3, Expenses: 4}.Validate())

	err := Snapshot{Income: 10, Expenses: -1}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expenses")

	err = Snapshot{Loans: math.Inf(1)}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loans")

	assert.Error(t, Snapshot{Savings: math.NaN()}.Validate())
}

func TestValidateProjection(t *testing.T) {
	assert.NoError(t, ValidateProjection(0, 0, 0))
	assert.NoError(t, ValidateProjection(100, 12, 50))
	assert.Error(t, ValidateProjection(-1, 12, 50))
	assert.Error(t, ValidateProjection(100, -1, 50))
	assert.Error(t, ValidateProjection(100, 12, -50))
}
