package scoring

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// SegmentInput is what one competitor brings to a segment.
type SegmentInput struct {
	Bib       int
	Status    Status
	Record    PassageRecord
	HasRecord bool
}

// SegmentRules are the scoring tables of one segment.
type SegmentRules struct {
	Points  PointTable // PC and PCG
	COPoint int        // CO pass
}

// ComputeSegment scores the whole roster of a segment. Results come back in
// input order.
//
// PC and PCG points depend on the finishing position, so every diff is
// measured first and only then ranked and mapped through the point table.
// CO points are local to each competitor.
func ComputeSegment(seg Segment, rules SegmentRules, inputs []SegmentInput) ([]SegmentResult, error) {
	if err := checkRules(seg, rules); err != nil {
		return nil, err
	}

	results := make([]SegmentResult, len(inputs))
	var missing []error
	for i, in := range inputs {
		res, err := Measure(seg, rules, in)
		if err != nil {
			var mErr *MissingDataError
			if errors.As(err, &mErr) {
				missing = append(missing, err)
				continue
			}
			return nil, err
		}
		results[i] = res
	}
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}

	if seg.Type.Ranked() {
		assignPositions(results, rules.Points)
	}
	return results, nil
}

func checkRules(seg Segment, rules SegmentRules) error {
	switch seg.Type {
	case TypePC, TypePCG:
		if len(rules.Points) == 0 {
			return &ConfigurationError{Segment: seg.ID, Reason: "point table is empty"}
		}
		for pos := range rules.Points {
			if pos < 1 {
				return &ConfigurationError{Segment: seg.ID, Reason: fmt.Sprintf("point table position %d is not 1-based", pos)}
			}
		}
	case TypeCO:
		if !seg.Window.Valid() {
			return &ConfigurationError{Segment: seg.ID, Reason: fmt.Sprintf("clear window [%s, %s) is empty", seg.Window.Min, seg.Window.Max)}
		}
		if rules.COPoint < 0 {
			return &ConfigurationError{Segment: seg.ID, Reason: "CO point is negative"}
		}
	default:
		return &ConfigurationError{Segment: seg.ID, Reason: fmt.Sprintf("unknown segment type %q", seg.Type)}
	}
	return nil
}

// Measure computes the position independent part of a segment result:
// timing, diff, CO outcome and status tokens. Ranked points are assigned
// later by ComputeSegment.
func Measure(seg Segment, rules SegmentRules, in SegmentInput) (SegmentResult, error) {
	res := SegmentResult{
		Bib:       in.Bib,
		SegmentID: seg.ID,
		Type:      seg.Type,
		Day:       seg.Day,
		Status:    in.Status,
	}
	contract := Resolve(in.Status)
	if contract.RankAsToken {
		res.RankToken = in.Status.Token()
	} else {
		res.RankToken = Absent
	}

	if contract.Time == FieldToken {
		return res, nil
	}
	if !in.HasRecord {
		if !in.Status.Set() {
			return SegmentResult{}, &MissingDataError{Bib: in.Bib, Segment: seg.ID}
		}
		return res, nil
	}

	res.HasTime = true
	res.Duration = Elapsed(in.Record.Start, in.Record.Goal)

	switch seg.Type {
	case TypePC, TypePCG:
		res.HasDiff = true
		res.Diff = res.Duration - seg.Reference
	case TypeCO:
		res.Cleared = seg.Window.Contains(res.Duration)
		if res.Cleared && !contract.ZeroPoint {
			res.Point = rules.COPoint
		}
	}
	return res, nil
}

type rankedDiff struct {
	idx int
	bib int
	abs time.Duration
}

// assignPositions ranks eligible results by absolute diff, ties broken by
// ascending bib, and maps each position through the point table.
func assignPositions(results []SegmentResult, points PointTable) {
	ranked := make([]rankedDiff, 0, len(results))
	for i, res := range results {
		if !Resolve(res.Status).Eligible || !res.HasDiff {
			continue
		}
		abs := res.Diff
		if abs < 0 {
			abs = -abs
		}
		ranked = append(ranked, rankedDiff{idx: i, bib: res.Bib, abs: abs})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].abs != ranked[j].abs {
			return ranked[i].abs < ranked[j].abs
		}
		return ranked[i].bib < ranked[j].bib
	})

	for i, r := range ranked {
		pos := i + 1
		res := &results[r.idx]
		res.Rank = pos
		res.RankToken = strconv.Itoa(pos)
		res.Point = points.PointAt(pos)
	}
}
