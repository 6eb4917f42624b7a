package scoring

import "time"

func clock(h, m, s int) time.Duration {
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
}

type fakeTiming map[int]map[string]PassageRecord

func (f fakeTiming) Passage(bib int, seg Segment) (PassageRecord, bool) {
	rec, ok := f[bib][seg.ID]
	return rec, ok
}

func (f fakeTiming) set(bib int, seg string, start, goal time.Duration) {
	if f[bib] == nil {
		f[bib] = make(map[string]PassageRecord)
	}
	f[bib][seg] = PassageRecord{Start: start, Goal: goal}
}

type fakeConfig struct {
	segments    []Segment
	competitors []Competitor
	points      PointTable
	coPoint     int
	coef        map[int]Coefficients
	segStatus   map[int]map[string]Status
	total       map[int]Status
	penalty     map[int]int
}

func (f *fakeConfig) Segments() []Segment       { return f.segments }
func (f *fakeConfig) Competitors() []Competitor { return f.competitors }

func (f *fakeConfig) PointTable(string) (PointTable, bool) {
	return f.points, f.points != nil
}

func (f *fakeConfig) COPoint(string) (int, bool) { return f.coPoint, true }

func (f *fakeConfig) Coefficients(bib int) (Coefficients, bool) {
	if f.coef == nil {
		return Coefficients{Competition: 1, Age: 1}, true
	}
	c, ok := f.coef[bib]
	return c, ok
}

func (f *fakeConfig) SegmentStatus(bib int, seg string) Status { return f.segStatus[bib][seg] }
func (f *fakeConfig) TotalStatus(bib int) Status              { return f.total[bib] }
func (f *fakeConfig) Penalty(bib int) int                     { return f.penalty[bib] }

func (f *fakeConfig) setStatus(bib int, seg string, s Status) {
	if f.segStatus == nil {
		f.segStatus = make(map[int]map[string]Status)
	}
	if f.segStatus[bib] == nil {
		f.segStatus[bib] = make(map[string]Status)
	}
	f.segStatus[bib][seg] = s
}

var testPoints = PointTable{1: 100, 2: 80, 3: 60, 4: 50, 5: 40}

// newRace builds three PC segments, one CO and bibs 1..n with clean passages.
// Bib b finishes every PC b seconds late.
func newRace(n int) (fakeTiming, *fakeConfig) {
	cfg := &fakeConfig{
		segments: []Segment{
			{ID: "PC1", Type: TypePC, Position: 1, Day: 1, Reference: 10 * time.Minute},
			{ID: "PC2", Type: TypePC, Position: 2, Day: 1, Reference: 10 * time.Minute},
			{ID: "CO1", Type: TypeCO, Position: 3, Day: 2, Window: ClearWindow{Min: 5 * time.Minute, Max: 5*time.Minute + time.Minute}},
			{ID: "PC3", Type: TypePC, Position: 4, Day: 2, Reference: 10 * time.Minute},
		},
		points:  testPoints,
		coPoint: 500,
		total:   map[int]Status{},
		penalty: map[int]int{},
	}
	timing := fakeTiming{}
	for b := 1; b <= n; b++ {
		class := "A"
		if b%2 == 0 {
			class = "B"
		}
		cfg.competitors = append(cfg.competitors, Competitor{Bib: b, Class: class})
		start := clock(9, b, 0)
		for _, id := range []string{"PC1", "PC2", "PC3"} {
			timing.set(b, id, start, start+10*time.Minute+time.Duration(b)*time.Second)
		}
		timing.set(b, "CO1", start, start+5*time.Minute+30*time.Second)
	}
	return timing, cfg
}
