package parser

import (
	"sort"
	"time"

	"github.com/user/pc_scorer_go/internal/scoring"
)

// Timing point kinds found in race file names.
const (
	KindStart = "START"
	KindGoal  = "GOAL"
)

// RaceData holds the clocks read from a race folder.
// Start and Goal are keyed by bib, then by segment id.
type RaceData struct {
	Start map[int]map[string]time.Duration
	Goal  map[int]map[string]time.Duration
	Files []string // base names of every CSV seen
	// Order lists the bibs of each timing point ("PC1START") in file row order.
	Order       map[string][]int
	ParseErrors []string // non-fatal problems
}

func NewRaceData() *RaceData {
	return &RaceData{
		Start:       make(map[int]map[string]time.Duration),
		Goal:        make(map[int]map[string]time.Duration),
		Order:       make(map[string][]int),
		ParseErrors: make([]string, 0),
	}
}

func (d *RaceData) record(bib int, tok FileToken, clock time.Duration) {
	target := d.Start
	if tok.Kind == KindGoal {
		target = d.Goal
	}
	if target[bib] == nil {
		target[bib] = make(map[string]time.Duration)
	}
	target[bib][tok.Segment] = clock
	d.Order[tok.String()] = append(d.Order[tok.String()], bib)
}

func (d *RaceData) StartOf(bib int, segment string) (time.Duration, bool) {
	c, ok := d.Start[bib][segment]
	return c, ok
}

func (d *RaceData) GoalOf(bib int, segment string) (time.Duration, bool) {
	c, ok := d.Goal[bib][segment]
	return c, ok
}

// Passage returns the START and GOAL of a bib on a segment. A PCG without
// its own record is timed across its group, from the START of the first PC
// to the GOAL of the last one.
func (d *RaceData) Passage(bib int, seg scoring.Segment) (scoring.PassageRecord, bool) {
	start, okStart := d.StartOf(bib, seg.ID)
	goal, okGoal := d.GoalOf(bib, seg.ID)
	if okStart && okGoal {
		return scoring.PassageRecord{Start: start, Goal: goal}, true
	}
	if seg.Type != scoring.TypePCG || seg.SpanFrom == "" || seg.SpanTo == "" {
		return scoring.PassageRecord{}, false
	}
	start, okStart = d.StartOf(bib, seg.SpanFrom)
	goal, okGoal = d.GoalOf(bib, seg.SpanTo)
	if !okStart || !okGoal {
		return scoring.PassageRecord{}, false
	}
	return scoring.PassageRecord{Start: start, Goal: goal}, true
}

// Bibs returns every bib with at least one clock, ascending.
func (d *RaceData) Bibs() []int {
	seen := make(map[int]bool)
	for bib := range d.Start {
		seen[bib] = true
	}
	for bib := range d.Goal {
		seen[bib] = true
	}
	bibs := make([]int, 0, len(seen))
	for bib := range seen {
		bibs = append(bibs, bib)
	}
	sort.Ints(bibs)
	return bibs
}

// Entry is one row of the entries file.
type Entry struct {
	scoring.Competitor
	Coefficients scoring.Coefficients
}

// Settings is the content of a settings folder.
type Settings struct {
	Entries       []Entry // ascending bib
	Points        scoring.PointTable
	SegmentPoints map[string]scoring.PointTable // per-segment overrides
	Segments      []scoring.Segment             // file order
	HasDay        bool
}

func (s *Settings) Entry(bib int) (Entry, bool) {
	i := sort.Search(len(s.Entries), func(i int) bool { return s.Entries[i].Bib >= bib })
	if i < len(s.Entries) && s.Entries[i].Bib == bib {
		return s.Entries[i], true
	}
	return Entry{}, false
}

// PointTable returns the table of a segment, falling back to the shared one.
func (s *Settings) PointTable(segmentID string) scoring.PointTable {
	if pt, ok := s.SegmentPoints[segmentID]; ok {
		return pt
	}
	return s.Points
}
