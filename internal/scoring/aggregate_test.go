package scoring

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateFormula(t *testing.T) {
	results := []SegmentResult{
		{Type: TypePC, Point: 100, Day: 1},
		{Type: TypePCG, Point: 80, Day: 1},
		{Type: TypeCO, Point: 500, Day: 2},
		{Type: TypePC, Point: 60, Day: 2},
	}
	coef := Coefficients{Competition: 1.2, Age: 1.05}

	total, err := Aggregate(Competitor{Bib: 3, Class: "A"}, results, coef, 25, StatusNone)
	require.NoError(t, err)

	assert.Equal(t, 740, total.PurePoint)
	want := int(math.Trunc(240*1.2*1.05 + 500))
	assert.Equal(t, want, total.WeightedPoint)
	assert.Equal(t, 25, total.Penalty)
	assert.Equal(t, want-25, total.TotalPoint)
	assert.Equal(t, "A", total.Class)

	require.Len(t, total.Days, 2)
	assert.Equal(t, DaySubtotal{Day: 1, WeightedPoint: int(math.Trunc(180 * 1.2 * 1.05))}, total.Days[0])
	assert.Equal(t, DaySubtotal{Day: 2, WeightedPoint: int(math.Trunc(60*1.2*1.05 + 500))}, total.Days[1])
}

func TestAggregateZeroPenaltyIsExplicit(t *testing.T) {
	total, err := Aggregate(Competitor{Bib: 12}, []SegmentResult{{Type: TypePC, Point: 40}}, Coefficients{Competition: 1, Age: 1}, 0, StatusNone)
	require.NoError(t, err)
	assert.Equal(t, 0, total.Penalty)
	assert.Equal(t, 40, total.TotalPoint)
}

func TestAggregateRejectsNegativePenalty(t *testing.T) {
	_, err := Aggregate(Competitor{Bib: 4}, nil, Coefficients{Competition: 1, Age: 1}, -5, StatusNone)
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "penalty", vErr.Field)
	assert.Equal(t, 4, vErr.Bib)
}

func TestAggregateRejectsBrokenCoefficients(t *testing.T) {
	for _, coef := range []Coefficients{
		{Competition: math.NaN(), Age: 1},
		{Competition: 1, Age: -1},
		{Competition: math.Inf(1), Age: 1},
	} {
		_, err := Aggregate(Competitor{Bib: 1}, nil, coef, 0, StatusNone)
		var cErr *ConfigurationError
		assert.True(t, errors.As(err, &cErr))
	}
}

func TestTotalStatusKeepsScore(t *testing.T) {
	results := []SegmentResult{{Type: TypePC, Point: 1000}, {Type: TypeCO, Point: 300}}
	coef := Coefficients{Competition: 1, Age: 1}

	plain, err := Aggregate(Competitor{Bib: 10}, results, coef, 0, StatusNone)
	require.NoError(t, err)
	retired, err := Aggregate(Competitor{Bib: 10}, results, coef, 0, StatusRetired)
	require.NoError(t, err)

	assert.Equal(t, 1300, retired.WeightedPoint)
	assert.Equal(t, 1300, retired.TotalPoint)
	assert.Equal(t, plain.TotalPoint, retired.TotalPoint)
	assert.Equal(t, StatusRetired, retired.Status)
}

func TestWeightedPointTruncates(t *testing.T) {
	w, err := weightedPoint(1, 7, 0, Coefficients{Competition: 1.15, Age: 1})
	require.NoError(t, err)
	assert.Equal(t, 8, w)

	w, err = weightedPoint(1, 99, 300, Coefficients{Competition: 1.01, Age: 1})
	require.NoError(t, err)
	assert.Equal(t, 399, w)
}

func TestWeightedPointOutOfRange(t *testing.T) {
	_, err := Aggregate(Competitor{Bib: 8}, []SegmentResult{{Type: TypePC, Point: 100}}, Coefficients{Competition: 1e300, Age: 1}, 0, StatusNone)
	var cErr *ConfigurationError
	require.True(t, errors.As(err, &cErr))
	assert.Equal(t, 8, cErr.Bib)
	assert.Contains(t, cErr.Reason, "out of range")
}
