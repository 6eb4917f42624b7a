package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"github.com/user/pc_scorer_go/internal/scoring"
)

// Tables renders result tables. Cells are colored before layout so the
// table style only pads.
type Tables struct {
	colors    *palette
	nameWidth int
}

func (t *Tables) newTable(headers ...string) *table.Table {
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style { return cell })
}

func (t *Tables) name(s string) string {
	return truncate(s, t.nameWidth)
}

// rank colors a rank cell: the leader green, a status token red.
func (t *Tables) rank(token string, status scoring.Status, rank int) string {
	switch {
	case status.Set():
		return t.colors.token.Sprint(token)
	case rank == 1:
		return t.colors.lead.Sprint(token)
	}
	return token
}

// Standings renders the overall standings, or those of class when it is set.
func (t *Tables) Standings(res *scoring.Results, class string) (string, error) {
	standings := res.Overall
	if class != "" {
		cs, ok := res.Class(class)
		if !ok {
			return "", fmt.Errorf("unknown class %q", class)
		}
		standings = cs.Standings
	}

	tbl := t.newTable("Rank", "No", "Driver", "Car", "Class", "Pure", "H.C.L.", "Pen.", "Total", "Cls")
	for _, st := range standings {
		row, ok := res.Row(st.Bib)
		if !ok {
			return "", fmt.Errorf("standing for bib %d has no row", st.Bib)
		}
		tot := row.Total
		tbl.Row(
			t.rank(st.RankToken, st.Status, st.Rank),
			strconv.Itoa(st.Bib),
			t.name(row.Competitor.DriverName),
			t.name(row.Competitor.CarName),
			tot.Class,
			strconv.Itoa(tot.PurePoint),
			strconv.Itoa(tot.WeightedPoint),
			strconv.Itoa(tot.Penalty),
			strconv.Itoa(tot.TotalPoint),
			t.rank(tot.ClassRankToken, tot.Status, tot.ClassRank),
		)
	}
	return tbl.Render(), nil
}

// Segment renders every competitor's result on one segment.
func (t *Tables) Segment(res *scoring.Results, segmentID string) (string, error) {
	var seg *scoring.Segment
	for i := range res.Segments {
		if res.Segments[i].ID == segmentID {
			seg = &res.Segments[i]
			break
		}
	}
	if seg == nil {
		return "", fmt.Errorf("unknown segment %s", segmentID)
	}

	tbl := t.newTable("No", "Time", "Diff", "Rank", "Point")
	if seg.Type == scoring.TypeCO {
		tbl = t.newTable("No", "Time", "Clear", "Point")
	}
	for _, row := range res.Rows {
		sr, ok := res.Result(row.Competitor.Bib, seg.ID)
		if !ok {
			continue
		}
		bib := strconv.Itoa(row.Competitor.Bib)
		timeCell := t.cell(sr, sr.TimeCell())
		if seg.Type == scoring.TypeCO {
			tbl.Row(bib, timeCell, t.clear(sr), strconv.Itoa(sr.Point))
			continue
		}
		tbl.Row(bib, timeCell, t.diff(sr), t.rank(sr.RankToken, sr.Status, sr.Rank), strconv.Itoa(sr.Point))
	}
	return fmt.Sprintf("%s %s (%s)\n%s", seg.ID, seg.Name, seg.Type, tbl.Render()), nil
}

// Matrix renders rank and point of every competitor on every segment.
func (t *Tables) Matrix(res *scoring.Results) string {
	headers := []string{"No"}
	for _, seg := range res.Segments {
		headers = append(headers, seg.ID)
	}
	tbl := t.newTable(headers...)
	for _, row := range res.Rows {
		cells := []string{strconv.Itoa(row.Competitor.Bib)}
		for _, sr := range row.Segments {
			cells = append(cells, t.matrixCell(sr))
		}
		tbl.Row(cells...)
	}
	return tbl.Render()
}

func (t *Tables) matrixCell(sr scoring.SegmentResult) string {
	if scoring.Resolve(sr.Status).RankAsToken {
		return t.colors.token.Sprint(sr.Status.Token())
	}
	if sr.Type == scoring.TypeCO {
		return strconv.Itoa(sr.Point)
	}
	return fmt.Sprintf("%s/%d", sr.RankToken, sr.Point)
}

// cell colors a field that may carry a status token.
func (t *Tables) cell(sr scoring.SegmentResult, value string) string {
	if sr.Status.Set() && value == sr.Status.Token() {
		return t.colors.token.Sprint(value)
	}
	return value
}

func (t *Tables) diff(sr scoring.SegmentResult) string {
	v := sr.DiffCell()
	switch {
	case scoring.Resolve(sr.Status).Diff == scoring.FieldToken:
		return t.colors.token.Sprint(v)
	case strings.HasPrefix(v, "-") && v != scoring.Absent:
		return t.colors.early.Sprint(v)
	case strings.HasPrefix(v, "+"):
		return t.colors.late.Sprint(v)
	}
	return v
}

func (t *Tables) clear(sr scoring.SegmentResult) string {
	switch {
	case scoring.Resolve(sr.Status).Time == scoring.FieldToken:
		return t.colors.token.Sprint(sr.Status.Token())
	case !sr.HasTime:
		return scoring.Absent
	case sr.Cleared:
		return "OK"
	}
	return "NG"
}

// truncate shortens value to width terminal columns; wide characters count
// twice.
func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
