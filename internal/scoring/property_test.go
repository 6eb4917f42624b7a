package scoring

import (
	"context"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var statusGen = gen.OneConstOf(StatusNone, StatusRetired, StatusNoClassification, StatusBlank)

// TestSegmentStatusContract checks that overridden competitors never score
// and never hold a position, while N.C. keeps the timing of a clean run.
func TestSegmentStatusContract(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("status overrides follow the resolver table", prop.ForAll(
		func(statuses []Status, offsets []int) bool {
			n := min(len(statuses), len(offsets))
			seg := Segment{ID: "PC1", Type: TypePC, Reference: 10 * time.Minute}
			base := clock(9, 0, 0)
			inputs := make([]SegmentInput, n)
			for i := 0; i < n; i++ {
				inputs[i] = SegmentInput{
					Bib:       i + 1,
					Status:    statuses[i],
					Record:    PassageRecord{Start: base, Goal: base + 10*time.Minute + time.Duration(offsets[i])*time.Second},
					HasRecord: true,
				}
			}
			res, err := ComputeSegment(seg, SegmentRules{Points: testPoints}, inputs)
			if err != nil {
				return false
			}

			positions := map[int]bool{}
			for i, r := range res {
				st := statuses[i]
				if st.Set() {
					if r.Point != 0 || r.Rank != 0 || r.RankToken != st.Token() {
						return false
					}
				} else {
					if r.Rank < 1 || positions[r.Rank] {
						return false
					}
					positions[r.Rank] = true
				}
				if st == StatusNoClassification {
					clean, err := Measure(seg, SegmentRules{Points: testPoints}, SegmentInput{Bib: r.Bib, Record: inputs[i].Record, HasRecord: true})
					if err != nil || clean.Duration != r.Duration || clean.Diff != r.Diff {
						return false
					}
				}
			}
			return len(positions) == countNone(statuses[:n])
		},
		gen.SliceOf(statusGen),
		gen.SliceOf(gen.IntRange(-600, 600)),
	))

	properties.TestingRun(t)
}

// TestAggregateProperties checks the aggregate formula and that a
// Total-Result status never changes the total point.
func TestAggregateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("pure, weighted and total follow the formula", prop.ForAll(
		func(pc, pcg, co []int, compCoef, ageCoef float64, penalty int, st Status) bool {
			var results []SegmentResult
			var sumRanked, sumCO int
			for _, p := range pc {
				results = append(results, SegmentResult{Type: TypePC, Point: p})
				sumRanked += p
			}
			for _, p := range pcg {
				results = append(results, SegmentResult{Type: TypePCG, Point: p})
				sumRanked += p
			}
			for _, p := range co {
				results = append(results, SegmentResult{Type: TypeCO, Point: p})
				sumCO += p
			}
			coef := Coefficients{Competition: compCoef, Age: ageCoef}

			total, err := Aggregate(Competitor{Bib: 1}, results, coef, penalty, st)
			if err != nil {
				return false
			}
			plain, err := Aggregate(Competitor{Bib: 1}, results, coef, penalty, StatusNone)
			if err != nil {
				return false
			}

			weighted := int(math.Trunc(float64(sumRanked)*compCoef*ageCoef + float64(sumCO)))
			return total.PurePoint == sumRanked+sumCO &&
				total.WeightedPoint == weighted &&
				total.TotalPoint == weighted-penalty &&
				total.TotalPoint == plain.TotalPoint
		},
		gen.SliceOf(gen.IntRange(0, 100)),
		gen.SliceOf(gen.IntRange(0, 100)),
		gen.SliceOf(gen.IntRange(0, 500)),
		gen.Float64Range(0.5, 2),
		gen.Float64Range(0.5, 2),
		gen.IntRange(0, 1000),
		statusGen,
	))

	properties.TestingRun(t)
}

// TestRankingProperties checks that excluded totals never take a position
// and eligible ones are numbered 1..k by descending total.
func TestRankingProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("eligible entries are numbered 1..k", prop.ForAll(
		func(points []int, statuses []Status) bool {
			n := min(len(points), len(statuses))
			totals := make([]CompetitorTotal, n)
			for i := 0; i < n; i++ {
				totals[i] = CompetitorTotal{Bib: i + 1, TotalPoint: points[i], Status: statuses[i]}
			}
			got := Rank(totals)
			if len(got) != n {
				return false
			}
			k := countNone(statuses[:n])
			for i, s := range got {
				if i < k {
					if s.Rank != i+1 || s.Status.Set() {
						return false
					}
					if i > 0 && got[i-1].TotalPoint < s.TotalPoint {
						return false
					}
				} else if s.Rank != 0 || s.RankToken != s.Status.Token() {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(-100, 2000)),
		gen.SliceOf(statusGen),
	))

	properties.TestingRun(t)
}

// TestPipelineIdempotence runs the engine twice on identical input.
func TestPipelineIdempotence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("identical input gives identical output", prop.ForAll(
		func(n int, retiredBib int) bool {
			timing, cfg := newRace(n)
			cfg.setStatus(retiredBib%n+1, "PC2", StatusRetired)
			a, errA := NewEngine(timing, cfg).Compute(context.Background())
			b, errB := NewEngine(timing, cfg).Compute(context.Background())
			if errA != nil || errB != nil {
				return false
			}
			return reflect.DeepEqual(a, b)
		},
		gen.IntRange(1, 12),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}

func countNone(statuses []Status) int {
	n := 0
	for _, s := range statuses {
		if !s.Set() {
			n++
		}
	}
	return n
}
