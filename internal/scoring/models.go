package scoring

import (
	"fmt"
	"strings"
	"time"
)

// SegmentType is the scoring discipline of a segment.
type SegmentType string

const (
	TypePC  SegmentType = "PC"
	TypePCG SegmentType = "PCG"
	TypeCO  SegmentType = "CO"
)

// ParseSegmentType accepts "PC", "PCG" or "CO" in any case.
func ParseSegmentType(s string) (SegmentType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PC":
		return TypePC, nil
	case "PCG":
		return TypePCG, nil
	case "CO":
		return TypeCO, nil
	}
	return "", fmt.Errorf("unknown segment type %q", s)
}

// Ranked reports whether points on this segment depend on the finishing position.
func (t SegmentType) Ranked() bool {
	return t == TypePC || t == TypePCG
}

// Competitor is one entry of the race. Bib is the unique key.
type Competitor struct {
	Bib          int
	DriverName   string
	CoDriverName string
	CarName      string
	CarYear      int
	Class        string
}

// ClearWindow is the half-open range [Min, Max) a CO passage must fall into.
type ClearWindow struct {
	Min time.Duration
	Max time.Duration
}

func (w ClearWindow) Valid() bool {
	return w.Max > w.Min
}

func (w ClearWindow) Contains(d time.Duration) bool {
	return d >= w.Min && d < w.Max
}

// Segment is one timed section of the course.
type Segment struct {
	ID        string
	Name      string
	Type      SegmentType
	Position  int
	Group     int
	Day       int
	Reference time.Duration // target passage time for PC/PCG
	Window    ClearWindow   // CO only

	// SpanFrom/SpanTo name the PC segments whose START and GOAL time a PCG
	// when it has no record of its own.
	SpanFrom string
	SpanTo   string
}

// PassageRecord holds clock readings as offsets from midnight.
type PassageRecord struct {
	Start time.Duration
	Goal  time.Duration
}

// Coefficients are the handicap multipliers applied to PC and PCG points.
type Coefficients struct {
	Competition float64
	Age         float64
}

// PointTable maps a finishing position (1-based) to a point value.
// Positions outside the table score 0.
type PointTable map[int]int

func (t PointTable) PointAt(position int) int {
	return t[position]
}

// SegmentResult is the outcome of one competitor on one segment.
type SegmentResult struct {
	Bib       int
	SegmentID string
	Type      SegmentType
	Day       int
	Status    Status

	HasTime  bool
	Duration time.Duration
	HasDiff  bool
	Diff     time.Duration // signed, Duration - Reference
	Cleared  bool          // CO only

	Point     int
	Rank      int // 0 when not ranked
	RankToken string
}

// TimeCell renders the passage time as the display contract of the status dictates.
func (r SegmentResult) TimeCell() string {
	if Resolve(r.Status).Time == FieldToken {
		return r.Status.Token()
	}
	if !r.HasTime {
		return Absent
	}
	return FormatClock(r.Duration)
}

// DiffCell renders the signed diff, or the status token.
func (r SegmentResult) DiffCell() string {
	if Resolve(r.Status).Diff == FieldToken {
		return r.Status.Token()
	}
	if !r.HasDiff {
		return Absent
	}
	return FormatDiff(r.Diff)
}

// DaySubtotal is the weighted point restricted to one race day.
type DaySubtotal struct {
	Day           int
	WeightedPoint int
}

// CompetitorTotal aggregates all segment results of one competitor.
type CompetitorTotal struct {
	Bib           int
	Class         string
	PurePoint     int
	WeightedPoint int
	Penalty       int
	TotalPoint    int
	Status        Status // Total-Result status, independent of segment statuses

	Rank           int
	RankToken      string
	ClassRank      int
	ClassRankToken string

	Days []DaySubtotal
}

// Standing is one line of a ranked list.
type Standing struct {
	Bib        int
	Rank       int // 0 for excluded entries
	RankToken  string
	TotalPoint int
	Status     Status
}

// ClassStanding is the ranked list of one class.
type ClassStanding struct {
	Class     string
	Standings []Standing
}

// CompetitorRow bundles everything computed for one competitor.
// Segments follows the order of Results.Segments.
type CompetitorRow struct {
	Competitor Competitor
	Segments   []SegmentResult
	Total      CompetitorTotal
}

// Results is the full output of one computation pass.
type Results struct {
	Segments []Segment
	Rows     []CompetitorRow // ascending bib
	Overall  []Standing
	Classes  []ClassStanding // ascending class label
}

// Row returns the row of a bib.
func (r *Results) Row(bib int) (*CompetitorRow, bool) {
	for i := range r.Rows {
		if r.Rows[i].Competitor.Bib == bib {
			return &r.Rows[i], true
		}
	}
	return nil, false
}

// Result returns the segment result for a bib and a segment id.
func (r *Results) Result(bib int, segmentID string) (SegmentResult, bool) {
	row, ok := r.Row(bib)
	if !ok {
		return SegmentResult{}, false
	}
	for _, res := range row.Segments {
		if res.SegmentID == segmentID {
			return res, true
		}
	}
	return SegmentResult{}, false
}

// Class returns the standings of a class label.
func (r *Results) Class(label string) (ClassStanding, bool) {
	for _, c := range r.Classes {
		if c.Class == label {
			return c, true
		}
	}
	return ClassStanding{}, false
}
