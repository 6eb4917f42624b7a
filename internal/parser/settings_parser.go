package parser

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/user/pc_scorer_go/internal/scoring"
)

// findOne locates the single file of a settings folder matching pattern.
func findOne(dir, pattern string) (string, error) {
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", err
	}
	switch len(files) {
	case 0:
		return "", fmt.Errorf("no %s file in %s", pattern, dir)
	case 1:
		return files[0], nil
	}
	sort.Strings(files)
	return "", fmt.Errorf("several %s files in %s: %s", pattern, dir, strings.Join(files, ", "))
}

// header maps trimmed column names to their index.
type header map[string]int

func newHeader(row []string) header {
	h := make(header, len(row))
	for i, col := range row {
		h[strings.TrimSpace(col)] = i
	}
	return h
}

// col returns the index of the first name present.
func (h header) col(names ...string) int {
	for _, n := range names {
		if i, ok := h[n]; ok {
			return i
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// LoadSettings reads entries*.csv, point*.csv and section*.csv from dir.
func LoadSettings(dir string) (*Settings, error) {
	s := &Settings{SegmentPoints: make(map[string]scoring.PointTable)}

	path, err := findOne(dir, "entries*.csv")
	if err != nil {
		return nil, err
	}
	if s.Entries, err = loadEntries(path); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	if path, err = findOne(dir, "point*.csv"); err != nil {
		return nil, err
	}
	if s.Points, s.SegmentPoints, err = loadPoints(path); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	if path, err = findOne(dir, "section*.csv"); err != nil {
		return nil, err
	}
	if s.Segments, s.HasDay, err = loadSections(path); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return s, nil
}

func loadEntries(path string) ([]Entry, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("file is empty")
	}
	h := newHeader(rows[0])
	noCol := h.col("No")
	coefCol := h.col("係数", "Coef")
	ageCol := h.col("年齢係数", "AgeCoef")
	var missing []string
	if noCol < 0 {
		missing = append(missing, "No")
	}
	if coefCol < 0 {
		missing = append(missing, "係数")
	}
	if ageCol < 0 {
		missing = append(missing, "年齢係数")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	driverCol := h.col("DriverName")
	coDriverCol := h.col("CoDriverName")
	carCol := h.col("CarName")
	yearCol := h.col("車製造年", "車両製造年", "CarYear")
	classCol := h.col("CarClass")

	entries := make([]Entry, 0, len(rows)-1)
	seen := make(map[int]bool)
	for i, row := range rows[1:] {
		line := i + 2
		noStr := cell(row, noCol)
		if noStr == "" {
			continue
		}
		f, err := strconv.ParseFloat(noStr, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid No %q", line, noStr)
		}
		bib := int(f)
		if bib == 0 {
			continue
		}
		if seen[bib] {
			return nil, fmt.Errorf("row %d: bib %d listed twice", line, bib)
		}
		seen[bib] = true

		coef, err := coefficient(cell(row, coefCol))
		if err != nil {
			return nil, fmt.Errorf("row %d: 係数: %w", line, err)
		}
		age, err := coefficient(cell(row, ageCol))
		if err != nil {
			return nil, fmt.Errorf("row %d: 年齢係数: %w", line, err)
		}
		year, _ := strconv.Atoi(cell(row, yearCol))

		entries = append(entries, Entry{
			Competitor: scoring.Competitor{
				Bib:          bib,
				DriverName:   cell(row, driverCol),
				CoDriverName: cell(row, coDriverCol),
				CarName:      cell(row, carCol),
				CarYear:      year,
				Class:        cell(row, classCol),
			},
			Coefficients: scoring.Coefficients{Competition: coef, Age: age},
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Bib < entries[j].Bib })
	return entries, nil
}

// coefficient reads a multiplier; a blank cell means 1.0.
func coefficient(s string) (float64, error) {
	if s == "" {
		return 1.0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

func loadPoints(path string) (scoring.PointTable, map[string]scoring.PointTable, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("file is empty")
	}
	h := newHeader(rows[0])
	orderCol, pointCol := h.col("Order"), h.col("Point")
	if orderCol < 0 || pointCol < 0 {
		return nil, nil, fmt.Errorf("missing required columns: Order, Point")
	}
	sectionCol := h.col("section", "Section")

	shared := make(scoring.PointTable)
	perSegment := make(map[string]scoring.PointTable)
	for i, row := range rows[1:] {
		orderStr, pointStr := cell(row, orderCol), cell(row, pointCol)
		if orderStr == "" && pointStr == "" {
			continue
		}
		order, err := strconv.Atoi(orderStr)
		if err != nil || order < 1 {
			return nil, nil, fmt.Errorf("row %d: invalid Order %q", i+2, orderStr)
		}
		point, err := strconv.Atoi(pointStr)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: invalid Point %q", i+2, pointStr)
		}
		table := shared
		if seg := cell(row, sectionCol); seg != "" {
			if perSegment[seg] == nil {
				perSegment[seg] = make(scoring.PointTable)
			}
			table = perSegment[seg]
		}
		table[order] = point
	}
	return shared, perSegment, nil
}

func loadSections(path string) ([]scoring.Segment, bool, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, fmt.Errorf("file is empty")
	}
	h := newHeader(rows[0])
	var missing []string
	for _, c := range []string{"type", "section", "name", "time", "GROUP"} {
		if h.col(c) < 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, false, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	typeCol, sectionCol, nameCol, timeCol, groupCol := h.col("type"), h.col("section"), h.col("name"), h.col("time"), h.col("GROUP")
	dayCol := h.col("DAY")

	var segments []scoring.Segment
	seen := make(map[string]bool)
	for i, row := range rows[1:] {
		line := i + 2
		id := cell(row, sectionCol)
		if id == "" {
			continue
		}
		if seen[id] {
			return nil, false, fmt.Errorf("row %d: section %s listed twice", line, id)
		}
		seen[id] = true

		segType, err := scoring.ParseSegmentType(cell(row, typeCol))
		if err != nil {
			if segType, err = typeFromName(id); err != nil {
				return nil, false, fmt.Errorf("row %d: %w", line, err)
			}
		}
		ref, err := referenceTime(cell(row, timeCol))
		if err != nil {
			return nil, false, fmt.Errorf("row %d: %w", line, err)
		}
		group, err := optionalInt(cell(row, groupCol))
		if err != nil {
			return nil, false, fmt.Errorf("row %d: GROUP: %w", line, err)
		}
		d, err := optionalInt(cell(row, dayCol))
		if err != nil {
			return nil, false, fmt.Errorf("row %d: DAY: %w", line, err)
		}

		segments = append(segments, scoring.Segment{
			ID:        id,
			Name:      cell(row, nameCol),
			Type:      segType,
			Position:  len(segments) + 1,
			Group:     group,
			Day:       d,
			Reference: ref,
		})
	}
	linkSpans(segments)
	return segments, dayCol >= 0, nil
}

// linkSpans times every PCG from the first to the last PC of its group.
// Groups with fewer than two PCs leave the PCG on its own record.
func linkSpans(segments []scoring.Segment) {
	pcs := make(map[int][]string)
	for _, s := range segments {
		if s.Type == scoring.TypePC && s.Group > 0 {
			pcs[s.Group] = append(pcs[s.Group], s.ID)
		}
	}
	for i := range segments {
		s := &segments[i]
		if s.Type != scoring.TypePCG {
			continue
		}
		if ids := pcs[s.Group]; len(ids) >= 2 {
			s.SpanFrom, s.SpanTo = ids[0], ids[len(ids)-1]
		}
	}
}

func typeFromName(id string) (scoring.SegmentType, error) {
	switch {
	case strings.HasPrefix(id, "PCG"):
		return scoring.TypePCG, nil
	case strings.HasPrefix(id, "PC"):
		return scoring.TypePC, nil
	case strings.HasPrefix(id, "CO"):
		return scoring.TypeCO, nil
	}
	return "", fmt.Errorf("cannot tell the type of section %s", id)
}

// referenceTime accepts whole seconds or a HH:MM:SS duration.
func referenceTime(s string) (time.Duration, error) {
	if strings.Contains(s, ":") {
		return ParseClock(s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return time.Duration(v * float64(time.Second)), nil
}

func optionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return int(f), nil
}
