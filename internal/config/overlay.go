package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user/pc_scorer_go/internal/parser"
	"github.com/user/pc_scorer_go/internal/scoring"
)

// Overlay holds the status overrides and penalties entered by the organizer.
type Overlay struct {
	segments map[int]map[string]scoring.Status
	total    map[int]scoring.Status
	penalty  map[int]int
}

type overlayFile struct {
	Segments map[int]map[string]string `yaml:"segments,omitempty"`
	Total    map[int]string            `yaml:"total,omitempty"`
	Penalty  map[int]int               `yaml:"penalty,omitempty"`
}

// SegmentOverride is one per-segment status entry.
type SegmentOverride struct {
	Bib     int
	Segment string
	Status  scoring.Status
}

func NewOverlay() *Overlay {
	return &Overlay{
		segments: make(map[int]map[string]scoring.Status),
		total:    make(map[int]scoring.Status),
		penalty:  make(map[int]int),
	}
}

// LoadOverlay reads a YAML overlay. A missing file is an empty overlay.
func LoadOverlay(path string) (*Overlay, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewOverlay(), nil
		}
		return nil, fmt.Errorf("failed to read overlay: %w", err)
	}
	return ParseOverlay(raw)
}

func ParseOverlay(raw []byte) (*Overlay, error) {
	var f overlayFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse overlay: %w", err)
	}

	o := NewOverlay()
	for bib, segs := range f.Segments {
		for seg, tok := range segs {
			s, err := scoring.ParseStatus(tok)
			if err != nil {
				return nil, &scoring.ValidationError{Bib: bib, Field: "status of " + seg, Reason: err.Error()}
			}
			if err := o.SetSegmentStatus(bib, seg, s); err != nil {
				return nil, err
			}
		}
	}
	for bib, tok := range f.Total {
		s, err := scoring.ParseStatus(tok)
		if err != nil {
			return nil, &scoring.ValidationError{Bib: bib, Field: "total status", Reason: err.Error()}
		}
		if err := o.SetTotalStatus(bib, s); err != nil {
			return nil, err
		}
	}
	for bib, p := range f.Penalty {
		if err := o.SetPenalty(bib, p); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Save writes the overlay as YAML.
func (o *Overlay) Save(path string) error {
	raw, err := o.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write overlay: %w", err)
	}
	return nil
}

func (o *Overlay) Marshal() ([]byte, error) {
	f := overlayFile{
		Segments: make(map[int]map[string]string),
		Total:    make(map[int]string),
		Penalty:  make(map[int]int),
	}
	for bib, segs := range o.segments {
		m := make(map[string]string, len(segs))
		for seg, s := range segs {
			m[seg] = s.Token()
		}
		f.Segments[bib] = m
	}
	for bib, s := range o.total {
		f.Total[bib] = s.Token()
	}
	for bib, p := range o.penalty {
		f.Penalty[bib] = p
	}
	raw, err := yaml.Marshal(&f)
	if err != nil {
		return nil, fmt.Errorf("failed to encode overlay: %w", err)
	}
	return raw, nil
}

// SetSegmentStatus records s for bib on segment. StatusNone clears it.
func (o *Overlay) SetSegmentStatus(bib int, segment string, s scoring.Status) error {
	if bib <= 0 {
		return &scoring.ValidationError{Field: "bib", Reason: fmt.Sprintf("%d is not a bib number", bib)}
	}
	if segment == "" {
		return &scoring.ValidationError{Bib: bib, Field: "segment", Reason: "empty segment id"}
	}
	if !s.Set() {
		delete(o.segments[bib], segment)
		if len(o.segments[bib]) == 0 {
			delete(o.segments, bib)
		}
		return nil
	}
	if o.segments[bib] == nil {
		o.segments[bib] = make(map[string]scoring.Status)
	}
	o.segments[bib][segment] = s
	return nil
}

// SetTotalStatus records the Total-Result status of bib. StatusNone clears it.
func (o *Overlay) SetTotalStatus(bib int, s scoring.Status) error {
	if bib <= 0 {
		return &scoring.ValidationError{Field: "bib", Reason: fmt.Sprintf("%d is not a bib number", bib)}
	}
	if !s.Set() {
		delete(o.total, bib)
		return nil
	}
	o.total[bib] = s
	return nil
}

func (o *Overlay) SetPenalty(bib, points int) error {
	if bib <= 0 {
		return &scoring.ValidationError{Field: "bib", Reason: fmt.Sprintf("%d is not a bib number", bib)}
	}
	if points < 0 {
		return &scoring.ValidationError{Bib: bib, Field: "penalty", Reason: fmt.Sprintf("%d is negative", points)}
	}
	if points == 0 {
		delete(o.penalty, bib)
		return nil
	}
	o.penalty[bib] = points
	return nil
}

func (o *Overlay) SegmentStatus(bib int, segment string) scoring.Status {
	return o.segments[bib][segment]
}

func (o *Overlay) TotalStatus(bib int) scoring.Status {
	return o.total[bib]
}

func (o *Overlay) Penalty(bib int) int {
	return o.penalty[bib]
}

// SegmentOverrides lists every per-segment status by bib, then segment.
func (o *Overlay) SegmentOverrides() []SegmentOverride {
	var out []SegmentOverride
	for bib, segs := range o.segments {
		for seg, s := range segs {
			out = append(out, SegmentOverride{Bib: bib, Segment: seg, Status: s})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bib != out[j].Bib {
			return out[i].Bib < out[j].Bib
		}
		return out[i].Segment < out[j].Segment
	})
	return out
}

// UnknownKey is an overlay entry that names a bib without an entry or a
// segment the event does not have.
type UnknownKey struct {
	Section    string // segments, total or penalty
	Bib        int
	Segment    string
	BibUnknown bool
	Suggest    string // configured segment differing only in case
}

func (k UnknownKey) Reason() string {
	if k.BibUnknown {
		return "no entry for this bib"
	}
	if k.Suggest != "" {
		return fmt.Sprintf("unknown segment, did you mean %s?", k.Suggest)
	}
	return "unknown segment"
}

func (k UnknownKey) String() string {
	if k.Segment != "" {
		return fmt.Sprintf("%s: bib %d on %s: %s", k.Section, k.Bib, k.Segment, k.Reason())
	}
	return fmt.Sprintf("%s: bib %d: %s", k.Section, k.Bib, k.Reason())
}

// UnknownKeys lists entries that would never reach scoring, by section,
// then bib, then segment.
func (o *Overlay) UnknownKeys(settings *parser.Settings) []UnknownKey {
	segments := make(map[string]bool, len(settings.Segments))
	for _, seg := range settings.Segments {
		segments[seg.ID] = true
	}
	hasEntry := func(bib int) bool {
		_, ok := settings.Entry(bib)
		return ok
	}

	var out []UnknownKey
	for _, so := range o.SegmentOverrides() {
		switch {
		case !hasEntry(so.Bib):
			out = append(out, UnknownKey{Section: "segments", Bib: so.Bib, Segment: so.Segment, BibUnknown: true})
		case !segments[so.Segment]:
			k := UnknownKey{Section: "segments", Bib: so.Bib, Segment: so.Segment}
			for _, seg := range settings.Segments {
				if strings.EqualFold(seg.ID, so.Segment) {
					k.Suggest = seg.ID
					break
				}
			}
			out = append(out, k)
		}
	}
	for _, bib := range slices.Sorted(maps.Keys(o.total)) {
		if !hasEntry(bib) {
			out = append(out, UnknownKey{Section: "total", Bib: bib, BibUnknown: true})
		}
	}
	for _, bib := range slices.Sorted(maps.Keys(o.penalty)) {
		if !hasEntry(bib) {
			out = append(out, UnknownKey{Section: "penalty", Bib: bib, BibUnknown: true})
		}
	}
	return out
}
