// Package export writes computed results to files: a spreadsheet friendly
// CSV and a binary snapshot.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/user/pc_scorer_go/internal/scoring"
)

// WriteCSV writes one line per competitor in overall order. The output is
// UTF-8 with a byte order mark so spreadsheet tools detect the encoding.
func WriteCSV(w io.Writer, res *scoring.Results) error {
	bw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(bw)

	days := dayColumns(res)
	if err := cw.Write(header(res, days)); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, st := range res.Overall {
		row, ok := res.Row(st.Bib)
		if !ok {
			return fmt.Errorf("standing for bib %d has no row", st.Bib)
		}
		if err := cw.Write(line(row, days)); err != nil {
			return fmt.Errorf("failed to write CSV row for bib %d: %w", st.Bib, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	if err := bw.Close(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// dayColumns lists the race days that carry a subtotal, ascending.
func dayColumns(res *scoring.Results) []int {
	seen := make(map[int]bool)
	var days []int
	for _, row := range res.Rows {
		for _, d := range row.Total.Days {
			if !seen[d.Day] {
				seen[d.Day] = true
				days = append(days, d.Day)
			}
		}
	}
	sort.Ints(days)
	return days
}

func header(res *scoring.Results, days []int) []string {
	h := []string{"Rank", "No", "DriverName", "CoDriverName", "CarName", "CarYear", "CarClass", "ClassRank"}
	for _, seg := range res.Segments {
		switch seg.Type {
		case scoring.TypeCO:
			h = append(h, seg.ID+" Time", seg.ID+" Point")
		default:
			h = append(h, seg.ID+" Time", seg.ID+" Diff", seg.ID+" Rank", seg.ID+" Point")
		}
	}
	for _, d := range days {
		h = append(h, fmt.Sprintf("DAY%d", d))
	}
	return append(h, "PurePoint", "H.C.L.", "Penalty", "TotalPoint")
}

func line(row *scoring.CompetitorRow, days []int) []string {
	c, t := row.Competitor, row.Total
	year := ""
	if c.CarYear != 0 {
		year = strconv.Itoa(c.CarYear)
	}
	out := []string{t.RankToken, strconv.Itoa(c.Bib), c.DriverName, c.CoDriverName, c.CarName, year, c.Class, t.ClassRankToken}
	for _, sr := range row.Segments {
		point := strconv.Itoa(sr.Point)
		switch sr.Type {
		case scoring.TypeCO:
			out = append(out, sr.TimeCell(), point)
		default:
			out = append(out, sr.TimeCell(), sr.DiffCell(), sr.RankToken, point)
		}
	}
	for _, d := range days {
		out = append(out, daySubtotal(t, d))
	}
	return append(out,
		strconv.Itoa(t.PurePoint),
		strconv.Itoa(t.WeightedPoint),
		strconv.Itoa(t.Penalty),
		strconv.Itoa(t.TotalPoint),
	)
}

func daySubtotal(t scoring.CompetitorTotal, day int) string {
	for _, d := range t.Days {
		if d.Day == day {
			return strconv.Itoa(d.WeightedPoint)
		}
	}
	return scoring.Absent
}
