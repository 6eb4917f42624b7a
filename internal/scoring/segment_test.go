package scoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pcSegment(id string, ref time.Duration) Segment {
	return Segment{ID: id, Type: TypePC, Reference: ref}
}

func normal(bib int, start, goal time.Duration) SegmentInput {
	return SegmentInput{Bib: bib, Record: PassageRecord{Start: start, Goal: goal}, HasRecord: true}
}

func TestComputeSegmentRanksByAbsoluteDiff(t *testing.T) {
	seg := pcSegment("PC1", 10*time.Minute)
	base := clock(9, 0, 0)
	inputs := []SegmentInput{
		normal(1, base, base+10*time.Minute+3*time.Second), // +3
		normal(2, base, base+10*time.Minute-1*time.Second), // -1
		normal(3, base, base+10*time.Minute+2*time.Second), // +2
	}

	res, err := ComputeSegment(seg, SegmentRules{Points: testPoints}, inputs)
	require.NoError(t, err)
	require.Len(t, res, 3)

	assert.Equal(t, 3, res[0].Rank)
	assert.Equal(t, 1, res[1].Rank)
	assert.Equal(t, 2, res[2].Rank)
	assert.Equal(t, []int{60, 100, 80}, []int{res[0].Point, res[1].Point, res[2].Point})
	assert.Equal(t, "1", res[1].RankToken)
	assert.Equal(t, -time.Second, res[1].Diff)
}

func TestComputeSegmentTieBreaksOnBib(t *testing.T) {
	seg := pcSegment("PC1", 10*time.Minute)
	base := clock(9, 0, 0)
	inputs := []SegmentInput{
		normal(7, base, base+10*time.Minute+2*time.Second),
		normal(4, base, base+10*time.Minute-2*time.Second),
	}
	res, err := ComputeSegment(seg, SegmentRules{Points: testPoints}, inputs)
	require.NoError(t, err)
	assert.Equal(t, 2, res[0].Rank)
	assert.Equal(t, 1, res[1].Rank)
}

func TestComputeSegmentPositionBeyondTableScoresZero(t *testing.T) {
	seg := pcSegment("PC1", time.Minute)
	base := clock(8, 0, 0)
	inputs := []SegmentInput{
		normal(1, base, base+time.Minute),
		normal(2, base, base+time.Minute+time.Second),
	}
	res, err := ComputeSegment(seg, SegmentRules{Points: PointTable{1: 10}}, inputs)
	require.NoError(t, err)
	assert.Equal(t, 10, res[0].Point)
	assert.Equal(t, 2, res[1].Rank)
	assert.Equal(t, 0, res[1].Point)
}

func TestRetiredAndBlankAreTokens(t *testing.T) {
	seg := pcSegment("PC2", 10*time.Minute)
	base := clock(9, 0, 0)
	for _, st := range []Status{StatusRetired, StatusBlank} {
		t.Run(st.Token(), func(t *testing.T) {
			in := normal(5, base, base+10*time.Minute)
			in.Status = st
			res, err := ComputeSegment(seg, SegmentRules{Points: testPoints}, []SegmentInput{in, normal(6, base, base+11*time.Minute)})
			require.NoError(t, err)

			r := res[0]
			assert.Equal(t, 0, r.Point)
			assert.Equal(t, 0, r.Rank)
			assert.Equal(t, st.Token(), r.RankToken)
			assert.Equal(t, st.Token(), r.TimeCell())
			assert.Equal(t, st.Token(), r.DiffCell())
			assert.False(t, r.HasTime)

			// the remaining competitor moves up to first place
			assert.Equal(t, 1, res[1].Rank)
			assert.Equal(t, 100, res[1].Point)
		})
	}
}

func TestNoClassificationKeepsTiming(t *testing.T) {
	seg := pcSegment("PC3", clock(1, 24, 20))
	in := normal(10, clock(9, 15, 30), clock(10, 45, 20))
	in.Status = StatusNoClassification

	res, err := ComputeSegment(seg, SegmentRules{Points: testPoints}, []SegmentInput{in})
	require.NoError(t, err)

	r := res[0]
	assert.Equal(t, clock(1, 29, 50), r.Duration)
	assert.Equal(t, 330*time.Second, r.Diff)
	assert.Equal(t, 0, r.Point)
	assert.Equal(t, "N.C.", r.RankToken)
	assert.Equal(t, "01:29:50.00", r.TimeCell())
	assert.Equal(t, "+00:05:30.00", r.DiffCell())
}

func TestNoClassificationWithoutRecord(t *testing.T) {
	seg := pcSegment("PC1", time.Minute)
	res, err := ComputeSegment(seg, SegmentRules{Points: testPoints}, []SegmentInput{{Bib: 3, Status: StatusNoClassification}})
	require.NoError(t, err)
	assert.False(t, res[0].HasTime)
	assert.Equal(t, Absent, res[0].TimeCell())
	assert.Equal(t, "N.C.", res[0].RankToken)
}

func TestCOClearWindow(t *testing.T) {
	seg := Segment{ID: "CO1", Type: TypeCO, Window: ClearWindow{Min: 5 * time.Minute, Max: 5*time.Minute + time.Minute}}
	base := clock(11, 0, 0)
	inputs := []SegmentInput{
		normal(1, base, base+5*time.Minute),                                       // lower bound, inside
		normal(2, base, base+6*time.Minute),                                       // upper bound, outside
		normal(3, base, base+4*time.Minute+59*time.Second),                        // early
		normal(4, base, base+5*time.Minute+59*time.Second+900*time.Millisecond), // just inside
	}
	res, err := ComputeSegment(seg, SegmentRules{COPoint: 500}, inputs)
	require.NoError(t, err)

	assert.Equal(t, []int{500, 0, 0, 500}, []int{res[0].Point, res[1].Point, res[2].Point, res[3].Point})
	assert.True(t, res[0].Cleared)
	assert.False(t, res[1].Cleared)
	for _, r := range res {
		assert.False(t, r.HasDiff)
		assert.Equal(t, 0, r.Rank)
		assert.Equal(t, Absent, r.RankToken)
	}
}

func TestCONoClassificationScoresZero(t *testing.T) {
	seg := Segment{ID: "CO1", Type: TypeCO, Window: ClearWindow{Min: 0, Max: time.Minute}}
	in := normal(1, clock(9, 0, 0), clock(9, 0, 30))
	in.Status = StatusNoClassification
	res, err := ComputeSegment(seg, SegmentRules{COPoint: 500}, []SegmentInput{in})
	require.NoError(t, err)
	assert.True(t, res[0].Cleared)
	assert.Equal(t, 0, res[0].Point)
}

func TestMissingRecordFailsFast(t *testing.T) {
	seg := pcSegment("PC1", time.Minute)
	_, err := ComputeSegment(seg, SegmentRules{Points: testPoints}, []SegmentInput{{Bib: 8}, {Bib: 9}})
	require.Error(t, err)

	var mErr *MissingDataError
	require.True(t, errors.As(err, &mErr))
	assert.Equal(t, "PC1", mErr.Segment)
	assert.Contains(t, err.Error(), "bib 8")
	assert.Contains(t, err.Error(), "bib 9")
}

func TestConfigurationErrors(t *testing.T) {
	tests := []struct {
		name  string
		seg   Segment
		rules SegmentRules
	}{
		{"empty point table", pcSegment("PC1", time.Minute), SegmentRules{}},
		{"zero position", pcSegment("PC1", time.Minute), SegmentRules{Points: PointTable{0: 10}}},
		{"empty window", Segment{ID: "CO1", Type: TypeCO}, SegmentRules{COPoint: 1}},
		{"negative CO point", Segment{ID: "CO1", Type: TypeCO, Window: ClearWindow{Max: time.Minute}}, SegmentRules{COPoint: -1}},
		{"unknown type", Segment{ID: "X1", Type: "XX"}, SegmentRules{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeSegment(tt.seg, tt.rules, nil)
			var cErr *ConfigurationError
			assert.True(t, errors.As(err, &cErr), "got %v", err)
		})
	}
}

func TestDayWrapInSegment(t *testing.T) {
	seg := pcSegment("PC9", 20*time.Minute)
	res, err := ComputeSegment(seg, SegmentRules{Points: testPoints}, []SegmentInput{normal(1, clock(23, 50, 0), clock(0, 10, 5))})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, res[0].Diff)
}
