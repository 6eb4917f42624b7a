package config

import (
	"errors"

	"github.com/user/pc_scorer_go/internal/parser"
	"github.com/user/pc_scorer_go/internal/scoring"
)

var _ scoring.ConfigRepository = (*Repository)(nil)

// Repository serves the scoring rules of one event: the settings folder,
// the CO rules of the app config and the organizer's overlay.
type Repository struct {
	settings *parser.Settings
	scoring  Scoring
	overlay  *Overlay
	segments []scoring.Segment
}

// NewRepository fails with one ConfigurationError per overlay entry that
// names an unknown bib or segment.
func NewRepository(settings *parser.Settings, cfg *AppConfig, overlay *Overlay) (*Repository, error) {
	if overlay == nil {
		overlay = NewOverlay()
	}
	if unknown := overlay.UnknownKeys(settings); len(unknown) > 0 {
		errs := make([]error, len(unknown))
		for i, k := range unknown {
			errs[i] = &scoring.ConfigurationError{
				Segment: k.Segment,
				Bib:     k.Bib,
				Reason:  "overlay " + k.Section + ": " + k.Reason(),
			}
		}
		return nil, errors.Join(errs...)
	}
	from, to := cfg.Scoring.Window()
	segments := make([]scoring.Segment, len(settings.Segments))
	for i, seg := range settings.Segments {
		if seg.Type == scoring.TypeCO {
			seg.Window = scoring.ClearWindow{Min: seg.Reference + from, Max: seg.Reference + to}
		}
		segments[i] = seg
	}
	return &Repository{
		settings: settings,
		scoring:  cfg.Scoring,
		overlay:  overlay,
		segments: segments,
	}, nil
}

func (r *Repository) Segments() []scoring.Segment {
	return r.segments
}

func (r *Repository) Competitors() []scoring.Competitor {
	out := make([]scoring.Competitor, len(r.settings.Entries))
	for i, e := range r.settings.Entries {
		out[i] = e.Competitor
	}
	return out
}

func (r *Repository) PointTable(segmentID string) (scoring.PointTable, bool) {
	pt := r.settings.PointTable(segmentID)
	return pt, len(pt) > 0
}

func (r *Repository) COPoint(segmentID string) (int, bool) {
	if p, ok := r.scoring.COPoints[segmentID]; ok {
		return p, true
	}
	return r.scoring.COPoint, true
}

func (r *Repository) Coefficients(bib int) (scoring.Coefficients, bool) {
	e, ok := r.settings.Entry(bib)
	if !ok {
		return scoring.Coefficients{}, false
	}
	return e.Coefficients, true
}

func (r *Repository) SegmentStatus(bib int, segmentID string) scoring.Status {
	return r.overlay.SegmentStatus(bib, segmentID)
}

func (r *Repository) TotalStatus(bib int) scoring.Status {
	return r.overlay.TotalStatus(bib)
}

func (r *Repository) Penalty(bib int) int {
	return r.overlay.Penalty(bib)
}
