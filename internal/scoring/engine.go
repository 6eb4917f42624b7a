package scoring

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// TimingRepository supplies passage records.
type TimingRepository interface {
	Passage(bib int, seg Segment) (PassageRecord, bool)
}

// ConfigRepository supplies segments, scoring tables, coefficients, class
// labels and the status/penalty overlay.
type ConfigRepository interface {
	Segments() []Segment
	Competitors() []Competitor
	PointTable(segmentID string) (PointTable, bool)
	COPoint(segmentID string) (int, bool)
	Coefficients(bib int) (Coefficients, bool)
	SegmentStatus(bib int, segmentID string) Status
	TotalStatus(bib int) Status
	Penalty(bib int) int
}

// Engine runs the scoring pipeline over a closed batch of inputs.
type Engine struct {
	timing TimingRepository
	config ConfigRepository
	jobs   int
	logger *slog.Logger
}

type Option func(*Engine)

// WithJobs bounds the number of segments scored concurrently.
func WithJobs(n int) Option {
	return func(e *Engine) { e.jobs = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func NewEngine(timing TimingRepository, config ConfigRepository, opts ...Option) *Engine {
	e := &Engine{
		timing: timing,
		config: config,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.jobs <= 0 {
		e.jobs = runtime.GOMAXPROCS(0)
	}
	return e
}

// Compute scores every segment, aggregates every competitor and ranks them
// overall and per class. Nothing is returned unless the whole run succeeds.
func (e *Engine) Compute(ctx context.Context) (*Results, error) {
	segments := append([]Segment(nil), e.config.Segments()...)
	if len(segments) == 0 {
		return nil, &ConfigurationError{Reason: "no segments configured"}
	}
	sort.SliceStable(segments, func(i, j int) bool { return segments[i].Position < segments[j].Position })

	competitors := append([]Competitor(nil), e.config.Competitors()...)
	sort.Slice(competitors, func(i, j int) bool { return competitors[i].Bib < competitors[j].Bib })
	for i := 1; i < len(competitors); i++ {
		if competitors[i].Bib == competitors[i-1].Bib {
			return nil, &ConfigurationError{Bib: competitors[i].Bib, Reason: "bib listed twice"}
		}
	}

	perSegment, err := e.scoreSegments(ctx, segments, competitors)
	if err != nil {
		return nil, err
	}

	rows := make([]CompetitorRow, len(competitors))
	totals := make([]CompetitorTotal, len(competitors))
	var errs []error
	for j, c := range competitors {
		segResults := make([]SegmentResult, len(segments))
		for i := range segments {
			segResults[i] = perSegment[i][j]
		}
		coef, ok := e.config.Coefficients(c.Bib)
		if !ok {
			errs = append(errs, &ConfigurationError{Bib: c.Bib, Reason: "no coefficients"})
			continue
		}
		total, err := Aggregate(c, segResults, coef, e.config.Penalty(c.Bib), e.config.TotalStatus(c.Bib))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rows[j] = CompetitorRow{Competitor: c, Segments: segResults}
		totals[j] = total
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	overall := Rank(totals)
	classes := RankByClass(totals)
	applyStandings(totals, overall, classes)
	for j := range rows {
		rows[j].Total = totals[j]
	}

	e.logger.Debug("scoring complete", "segments", len(segments), "competitors", len(competitors))
	return &Results{
		Segments: segments,
		Rows:     rows,
		Overall:  overall,
		Classes:  classes,
	}, nil
}

// scoreSegments scores segments concurrently. Each segment is a barrier for
// its own roster only; segments share no state.
func (e *Engine) scoreSegments(ctx context.Context, segments []Segment, competitors []Competitor) ([][]SegmentResult, error) {
	perSegment := make([][]SegmentResult, len(segments))
	segErrs := make([]error, len(segments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(e.jobs, len(segments)))
	for i, seg := range segments {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rules, err := e.rulesFor(seg)
			if err != nil {
				segErrs[i] = err
				return nil
			}
			inputs := make([]SegmentInput, len(competitors))
			for j, c := range competitors {
				rec, ok := e.timing.Passage(c.Bib, seg)
				inputs[j] = SegmentInput{
					Bib:       c.Bib,
					Status:    e.config.SegmentStatus(c.Bib, seg.ID),
					Record:    rec,
					HasRecord: ok,
				}
			}
			res, err := ComputeSegment(seg, rules, inputs)
			if err != nil {
				segErrs[i] = err
				return nil
			}
			perSegment[i] = res
			e.logger.Debug("segment scored", "segment", seg.ID, "type", string(seg.Type), "competitors", len(res))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scoring interrupted: %w", err)
	}
	if err := errors.Join(segErrs...); err != nil {
		return nil, err
	}
	return perSegment, nil
}

func (e *Engine) rulesFor(seg Segment) (SegmentRules, error) {
	switch seg.Type {
	case TypePC, TypePCG:
		pt, ok := e.config.PointTable(seg.ID)
		if !ok {
			return SegmentRules{}, &ConfigurationError{Segment: seg.ID, Reason: "no point table"}
		}
		return SegmentRules{Points: pt}, nil
	case TypeCO:
		p, ok := e.config.COPoint(seg.ID)
		if !ok {
			return SegmentRules{}, &ConfigurationError{Segment: seg.ID, Reason: "no CO point"}
		}
		return SegmentRules{COPoint: p}, nil
	}
	return SegmentRules{}, &ConfigurationError{Segment: seg.ID, Reason: fmt.Sprintf("unknown segment type %q", seg.Type)}
}

func applyStandings(totals []CompetitorTotal, overall []Standing, classes []ClassStanding) {
	index := make(map[int]int, len(totals))
	for i, t := range totals {
		index[t.Bib] = i
	}
	for _, s := range overall {
		t := &totals[index[s.Bib]]
		t.Rank = s.Rank
		t.RankToken = s.RankToken
	}
	for _, cs := range classes {
		for _, s := range cs.Standings {
			t := &totals[index[s.Bib]]
			t.ClassRank = s.Rank
			t.ClassRankToken = s.RankToken
		}
	}
}
