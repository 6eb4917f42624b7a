package scoring

import (
	"fmt"
	"math"
	"sort"

	"fortio.org/safecast"
)

// Aggregate folds the segment results of one competitor into a total.
//
//	pure     = PC + PCG + CO
//	weighted = (PC + PCG) * competition * age + CO, truncated toward zero
//	total    = weighted - penalty
//
// The Total-Result status is carried but never alters the score; it only
// matters for ranking.
func Aggregate(c Competitor, results []SegmentResult, coef Coefficients, penalty int, totalStatus Status) (CompetitorTotal, error) {
	if penalty < 0 {
		return CompetitorTotal{}, &ValidationError{Bib: c.Bib, Field: "penalty", Reason: fmt.Sprintf("%d is negative", penalty)}
	}
	if err := checkCoefficients(c.Bib, coef); err != nil {
		return CompetitorTotal{}, err
	}

	var ranked, co int
	for _, res := range results {
		if res.Type.Ranked() {
			ranked += res.Point
		} else {
			co += res.Point
		}
	}

	weighted, err := weightedPoint(c.Bib, ranked, co, coef)
	if err != nil {
		return CompetitorTotal{}, err
	}

	days, err := daySubtotals(c.Bib, results, coef)
	if err != nil {
		return CompetitorTotal{}, err
	}

	return CompetitorTotal{
		Bib:           c.Bib,
		Class:         c.Class,
		PurePoint:     ranked + co,
		WeightedPoint: weighted,
		Penalty:       penalty,
		TotalPoint:    weighted - penalty,
		Status:        totalStatus,
		Days:          days,
	}, nil
}

func checkCoefficients(bib int, coef Coefficients) error {
	for _, v := range []float64{coef.Competition, coef.Age} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return &ConfigurationError{Bib: bib, Reason: fmt.Sprintf("coefficient %v is not a finite non-negative number", v)}
		}
	}
	return nil
}

func weightedPoint(bib, ranked, co int, coef Coefficients) (int, error) {
	f := float64(ranked)*coef.Competition*coef.Age + float64(co)
	w, err := safecast.Truncate[int](f)
	if err != nil {
		return 0, &ConfigurationError{Bib: bib, Reason: fmt.Sprintf("weighted point %v out of range: %v", f, err)}
	}
	return w, nil
}

// daySubtotals applies the weighted formula per race day. Segments without
// a day contribute to no subtotal.
func daySubtotals(bib int, results []SegmentResult, coef Coefficients) ([]DaySubtotal, error) {
	type sums struct{ ranked, co int }
	byDay := make(map[int]*sums)
	for _, res := range results {
		if res.Day <= 0 {
			continue
		}
		s, ok := byDay[res.Day]
		if !ok {
			s = &sums{}
			byDay[res.Day] = s
		}
		if res.Type.Ranked() {
			s.ranked += res.Point
		} else {
			s.co += res.Point
		}
	}
	if len(byDay) == 0 {
		return nil, nil
	}

	days := make([]DaySubtotal, 0, len(byDay))
	for d, s := range byDay {
		w, err := weightedPoint(bib, s.ranked, s.co, coef)
		if err != nil {
			return nil, err
		}
		days = append(days, DaySubtotal{Day: d, WeightedPoint: w})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day < days[j].Day })
	return days, nil
}
