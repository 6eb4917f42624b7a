package report

import (
	"bytes"
	"fmt"
	"image/color"
	"strconv"

	"github.com/user/pc_scorer_go/internal/scoring"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var plotColors = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 255}, // Blue
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 255}, // Orange
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 255}, // Green
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 255}, // Red
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 255}, // Purple
	color.RGBA{R: 0x17, G: 0xbe, B: 0xcf, A: 255}, // Teal
}

// renderPNG encodes p as a PNG of the given size in points.
func renderPNG(p *plot.Plot, width, height vg.Length) ([]byte, error) {
	writer, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %w", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

// CreateDiffPlot plots the signed diff of every timed bib on a PC or PCG
// segment, in seconds. Bibs with a token diff or no time are left out.
func CreateDiffPlot(res *scoring.Results, segmentID string) ([]byte, error) {
	if res == nil || len(res.Rows) == 0 {
		return nil, fmt.Errorf("no results to plot")
	}
	var seg *scoring.Segment
	for i := range res.Segments {
		if res.Segments[i].ID == segmentID {
			seg = &res.Segments[i]
			break
		}
	}
	if seg == nil {
		return nil, fmt.Errorf("unknown segment %s", segmentID)
	}
	if !seg.Type.Ranked() {
		return nil, fmt.Errorf("segment %s is %s and has no diff", seg.ID, seg.Type)
	}

	pts := make(plotter.XYs, 0, len(res.Rows))
	minBib, maxBib := 0, 0
	for _, row := range res.Rows {
		r, ok := res.Result(row.Competitor.Bib, seg.ID)
		if !ok || !r.HasDiff || scoring.Resolve(r.Status).Diff == scoring.FieldToken {
			continue
		}
		bib := row.Competitor.Bib
		pts = append(pts, plotter.XY{X: float64(bib), Y: r.Diff.Seconds()})
		if len(pts) == 1 || bib < minBib {
			minBib = bib
		}
		if bib > maxBib {
			maxBib = bib
		}
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("segment %s has no timed passage", seg.ID)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s Diff from Reference", seg.ID)
	p.X.Label.Text = "Bib"
	p.Y.Label.Text = "Diff (s)"
	p.X.Min = float64(minBib) - 1
	p.X.Max = float64(maxBib) + 1
	p.X.Tick.Marker = plot.ConstantTicks(bibTicks(minBib, maxBib))
	p.Add(plotter.NewGrid())

	zeroLine, err := plotter.NewLine(plotter.XYs{{X: p.X.Min, Y: 0}, {X: p.X.Max, Y: 0}})
	if err != nil {
		return nil, fmt.Errorf("failed to create zero line: %w", err)
	}
	zeroLine.Color = color.Gray{Y: 128}
	zeroLine.LineStyle.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	p.Add(zeroLine)

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to create scatter for %s: %w", seg.ID, err)
	}
	scatter.Color = plotColors[0]
	scatter.Radius = vg.Points(3)
	p.Add(scatter)
	p.Legend.Add("Diff", scatter)
	p.Legend.Top = true

	return renderPNG(p, vg.Points(800), vg.Points(400))
}

// CreateTotalsBarChart draws the total point of every ranked bib in rank
// order. A non-empty class restricts the chart to that class.
func CreateTotalsBarChart(res *scoring.Results, class string) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("no results to plot")
	}
	standings := res.Overall
	title := "Total Points"
	if class != "" {
		cs, ok := res.Class(class)
		if !ok {
			return nil, fmt.Errorf("unknown class %q", class)
		}
		standings = cs.Standings
		title = fmt.Sprintf("Total Points (Class %s)", class)
	}

	values := make(plotter.Values, 0, len(standings))
	labels := make([]string, 0, len(standings))
	for _, s := range standings {
		if s.Rank == 0 {
			continue
		}
		values = append(values, float64(s.TotalPoint))
		labels = append(labels, strconv.Itoa(s.Bib))
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no ranked competitor to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Bib (by rank)"
	p.Y.Label.Text = "Total Point"
	p.Add(plotter.NewGrid())

	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return nil, fmt.Errorf("failed to create bar chart: %w", err)
	}
	bars.Color = plotColors[0]
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)

	return renderPNG(p, vg.Points(800), vg.Points(400))
}

// bibTicks labels about ten evenly spaced bibs.
func bibTicks(minBib, maxBib int) []plot.Tick {
	step := (maxBib - minBib) / 10
	if step < 1 {
		step = 1
	}
	var ticks []plot.Tick
	for b := minBib; b <= maxBib; b += step {
		ticks = append(ticks, plot.Tick{Value: float64(b), Label: strconv.Itoa(b)})
	}
	return ticks
}
