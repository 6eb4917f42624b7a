// Package validate runs consistency checks over race data before scoring.
// Findings never stop a run; they are reported to the organizer.
package validate

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/user/pc_scorer_go/internal/config"
	"github.com/user/pc_scorer_go/internal/parser"
	"github.com/user/pc_scorer_go/internal/scoring"
)

type Kind string

const (
	KindDuplicateToken Kind = "csv_duplicate"
	KindSectionOrder   Kind = "section_order"
	KindBibOrder       Kind = "bib_order"
	KindInvalidStatus  Kind = "invalid_status"
	KindUnknownBib     Kind = "unknown_bib"
	KindUnknownOverlay Kind = "unknown_overlay"
)

// Issue is one finding.
type Issue struct {
	Kind    Kind
	Segment string
	Bib     int
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s", i.Kind, i.Message)
}

// Run checks race data against the configured segments and overlay.
func Run(data *parser.RaceData, rules scoring.ConfigRepository) []Issue {
	segments := append([]scoring.Segment(nil), rules.Segments()...)
	sort.SliceStable(segments, func(i, j int) bool { return segments[i].Position < segments[j].Position })

	var issues []Issue
	issues = append(issues, duplicateTokens(data)...)
	issues = append(issues, unknownBibs(data, rules)...)
	issues = append(issues, sectionOrder(data, segments, rules)...)
	issues = append(issues, bibOrder(data, segments, rules)...)
	issues = append(issues, invalidStatus(data, segments, rules)...)
	return issues
}

// Overlay reports overlay entries naming a bib without an entry or a
// segment that is not configured. A repository cannot be built while any
// are left, so this runs on the raw settings.
func Overlay(overlay *config.Overlay, settings *parser.Settings) []Issue {
	unknown := overlay.UnknownKeys(settings)
	issues := make([]Issue, 0, len(unknown))
	for _, k := range unknown {
		issues = append(issues, Issue{
			Kind:    KindUnknownOverlay,
			Segment: k.Segment,
			Bib:     k.Bib,
			Message: "overlay " + k.String(),
		})
	}
	return issues
}

// duplicateTokens reports a timing point named by more than one file.
func duplicateTokens(data *parser.RaceData) []Issue {
	files := make(map[string][]string)
	for _, name := range data.Files {
		for _, tok := range parser.FileTokens(name) {
			files[tok.String()] = append(files[tok.String()], name)
		}
	}
	tokens := make([]string, 0, len(files))
	for tok, names := range files {
		if len(names) > 1 {
			tokens = append(tokens, tok)
		}
	}
	sort.Strings(tokens)

	issues := make([]Issue, 0, len(tokens))
	for _, tok := range tokens {
		issues = append(issues, Issue{
			Kind:    KindDuplicateToken,
			Message: fmt.Sprintf("timing point %s appears in several files: %s", tok, strings.Join(files[tok], ", ")),
		})
	}
	return issues
}

func unknownBibs(data *parser.RaceData, rules scoring.ConfigRepository) []Issue {
	known := make(map[int]bool)
	for _, c := range rules.Competitors() {
		known[c.Bib] = true
	}
	var issues []Issue
	for _, bib := range data.Bibs() {
		if !known[bib] {
			issues = append(issues, Issue{
				Kind:    KindUnknownBib,
				Bib:     bib,
				Message: fmt.Sprintf("bib %d has passages but no entry, ignored", bib),
			})
		}
	}
	return issues
}

// passageOrder returns the bibs that reached the goal of a segment, in file
// order, skipping bibs with a status override. A segment with no goal file
// falls back to its start file.
func passageOrder(data *parser.RaceData, seg scoring.Segment, rules scoring.ConfigRepository) []int {
	order, ok := data.Order[parser.FileToken{Segment: seg.ID, Kind: parser.KindGoal}.String()]
	if !ok {
		order = data.Order[parser.FileToken{Segment: seg.ID, Kind: parser.KindStart}.String()]
	}
	out := make([]int, 0, len(order))
	for _, bib := range order {
		if !rules.SegmentStatus(bib, seg.ID).Set() {
			out = append(out, bib)
		}
	}
	return out
}

func groups(segments []scoring.Segment) ([]int, map[int][]scoring.Segment) {
	byGroup := make(map[int][]scoring.Segment)
	var ids []int
	for _, s := range segments {
		if s.Group <= 0 {
			continue
		}
		if _, ok := byGroup[s.Group]; !ok {
			ids = append(ids, s.Group)
		}
		byGroup[s.Group] = append(byGroup[s.Group], s)
	}
	sort.Ints(ids)
	return ids, byGroup
}

// sectionOrder compares the passage order of every segment of a group with
// the first segment of that group.
func sectionOrder(data *parser.RaceData, segments []scoring.Segment, rules scoring.ConfigRepository) []Issue {
	var issues []Issue
	ids, byGroup := groups(segments)
	for _, g := range ids {
		segs := byGroup[g]
		if len(segs) < 2 {
			continue
		}
		base := segs[0]
		baseOrder := passageOrder(data, base, rules)
		if len(baseOrder) == 0 {
			continue
		}
		baseSet := toSet(baseOrder)
		for _, seg := range segs[1:] {
			order := passageOrder(data, seg, rules)
			if len(order) == 0 {
				continue
			}
			set := toSet(order)

			common := make(map[int]bool)
			for bib := range set {
				if baseSet[bib] {
					common[bib] = true
				}
			}
			if len(common) >= 2 {
				want, got := filter(baseOrder, common), filter(order, common)
				if !slices.Equal(want, got) {
					issues = append(issues, Issue{
						Kind:    KindSectionOrder,
						Segment: seg.ID,
						Message: fmt.Sprintf("group %d: passage order of %s %v differs from %s %v", g, seg.ID, got, base.ID, want),
					})
				}
			}
			if missing := difference(baseSet, set); len(missing) > 0 {
				issues = append(issues, Issue{
					Kind:    KindSectionOrder,
					Segment: seg.ID,
					Message: fmt.Sprintf("group %d: %s is missing bibs %v present on %s", g, seg.ID, missing, base.ID),
				})
			}
			if extra := difference(set, baseSet); len(extra) > 0 {
				issues = append(issues, Issue{
					Kind:    KindSectionOrder,
					Segment: seg.ID,
					Message: fmt.Sprintf("group %d: %s has bibs %v absent from %s", g, seg.ID, extra, base.ID),
				})
			}
		}
	}
	return issues
}

// bibOrder reports a bib whose start clocks inside a group do not follow the
// configured segment order.
func bibOrder(data *parser.RaceData, segments []scoring.Segment, rules scoring.ConfigRepository) []Issue {
	var issues []Issue
	ids, byGroup := groups(segments)
	for _, bib := range data.Bibs() {
		for _, g := range ids {
			var expected []scoring.Segment
			for _, seg := range byGroup[g] {
				if rules.SegmentStatus(bib, seg.ID).Set() {
					continue
				}
				if _, ok := data.StartOf(bib, seg.ID); ok {
					expected = append(expected, seg)
				}
			}
			if len(expected) < 2 {
				continue
			}
			actual := append([]scoring.Segment(nil), expected...)
			sort.SliceStable(actual, func(i, j int) bool {
				a, _ := data.StartOf(bib, actual[i].ID)
				b, _ := data.StartOf(bib, actual[j].ID)
				return a < b
			})
			if segmentIDs(actual) != segmentIDs(expected) {
				issues = append(issues, Issue{
					Kind:    KindBibOrder,
					Bib:     bib,
					Message: fmt.Sprintf("bib %d passed group %d as %s, expected %s", bib, g, segmentIDs(actual), segmentIDs(expected)),
				})
			}
		}
	}
	return issues
}

// invalidStatus reports a status that hides the clock (RIT, BLNK) set on a
// segment the bib has clocks for.
func invalidStatus(data *parser.RaceData, segments []scoring.Segment, rules scoring.ConfigRepository) []Issue {
	var issues []Issue
	for _, c := range rules.Competitors() {
		for _, seg := range segments {
			s := rules.SegmentStatus(c.Bib, seg.ID)
			if !s.Set() || scoring.Resolve(s).Time != scoring.FieldToken {
				continue
			}
			_, hasStart := data.StartOf(c.Bib, seg.ID)
			_, hasGoal := data.GoalOf(c.Bib, seg.ID)
			var what string
			switch {
			case hasStart && hasGoal:
				what = "START and GOAL"
			case hasStart:
				what = "START"
			case hasGoal:
				what = "GOAL"
			default:
				continue
			}
			issues = append(issues, Issue{
				Kind:    KindInvalidStatus,
				Segment: seg.ID,
				Bib:     c.Bib,
				Message: fmt.Sprintf("bib %d is %s on %s but has a %s clock", c.Bib, s.Token(), seg.ID, what),
			})
		}
	}
	return issues
}

func toSet(bibs []int) map[int]bool {
	set := make(map[int]bool, len(bibs))
	for _, b := range bibs {
		set[b] = true
	}
	return set
}

func filter(bibs []int, keep map[int]bool) []int {
	out := make([]int, 0, len(keep))
	for _, b := range bibs {
		if keep[b] {
			out = append(out, b)
		}
	}
	return out
}

func difference(a, b map[int]bool) []int {
	var out []int
	for bib := range a {
		if !b[bib] {
			out = append(out, bib)
		}
	}
	sort.Ints(out)
	return out
}

func segmentIDs(segs []scoring.Segment) string {
	ids := make([]string, len(segs))
	for i, s := range segs {
		ids[i] = s.ID
	}
	return strings.Join(ids, " -> ")
}
