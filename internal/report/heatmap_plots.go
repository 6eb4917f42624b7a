package report

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/user/pc_scorer_go/internal/scoring"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// pointGrid lays segment points out as a plotter.GridXYZ: columns are
// segments, rows are bibs. Cells shown as a status token hold NaN.
type pointGrid struct {
	z    [][]float64 // [row][col]
	cols int
}

func (g *pointGrid) Dims() (c, r int)   { return g.cols, len(g.z) }
func (g *pointGrid) Z(c, r int) float64 { return g.z[r][c] }
func (g *pointGrid) X(c int) float64    { return float64(c) }
func (g *pointGrid) Y(r int) float64    { return float64(r) }

func newPointGrid(res *scoring.Results) *pointGrid {
	g := &pointGrid{z: make([][]float64, len(res.Rows)), cols: len(res.Segments)}
	for r, row := range res.Rows {
		g.z[r] = make([]float64, g.cols)
		for c, sr := range row.Segments {
			if c >= g.cols {
				break
			}
			if scoring.Resolve(sr.Status).ZeroPoint {
				g.z[r][c] = math.NaN()
				continue
			}
			g.z[r][c] = float64(sr.Point)
		}
	}
	return g
}

// CreatePointsHeatmap draws the point of every bib on every segment.
func CreatePointsHeatmap(res *scoring.Results) ([]byte, error) {
	if res == nil || len(res.Rows) == 0 || len(res.Segments) == 0 {
		return nil, fmt.Errorf("no results to plot heatmap")
	}
	grid := newPointGrid(res)

	maxPoint := 0.0
	for _, row := range grid.z {
		for _, v := range row {
			if !math.IsNaN(v) && v > maxPoint {
				maxPoint = v
			}
		}
	}
	if maxPoint == 0 {
		maxPoint = 1
	}

	p := plot.New()
	p.Title.Text = "Points per Segment"
	p.X.Label.Text = "Segment"
	p.Y.Label.Text = "Bib"

	xTicks := make([]plot.Tick, len(res.Segments))
	for i, seg := range res.Segments {
		xTicks[i] = plot.Tick{Value: float64(i), Label: seg.ID}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.X.Min = -0.5
	p.X.Max = float64(len(res.Segments)) - 0.5

	// Label every row when few, otherwise about twenty of them.
	step := len(res.Rows)/20 + 1
	var yTicks []plot.Tick
	for i := 0; i < len(res.Rows); i += step {
		yTicks = append(yTicks, plot.Tick{Value: float64(i), Label: strconv.Itoa(res.Rows[i].Competitor.Bib)})
	}
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
	p.Y.Min = -0.5
	p.Y.Max = float64(len(res.Rows)) - 0.5

	hm := plotter.NewHeatMap(grid, palette.Heat(16, 1))
	hm.Min = 0
	hm.Max = maxPoint
	hm.NaN = color.Gray{Y: 200} // status token cells
	p.Add(hm)

	return renderPNG(p, vg.Points(1000), vg.Points(500))
}
