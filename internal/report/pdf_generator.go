package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/user/pc_scorer_go/internal/scoring"
)

const (
	pdfPageWidthLandscape  = 297.0 // A4 landscape
	pdfPageHeightLandscape = 210.0
	pdfMargin              = 12.0
	pdfContentWidth        = pdfPageWidthLandscape - (2 * pdfMargin)

	matrixSegmentsPerPage = 8
)

// Chart keys understood by BuildPDFReport.
const (
	ChartTotals  = "bar_totals"
	ChartHeatmap = "heatmap_points"
	chartDiff    = "diff_"
)

func DiffChartKey(segmentID string) string {
	return chartDiff + segmentID
}

// Options tune the PDF report.
type Options struct {
	Title string
	RunID string
	// FontFile is a UTF-8 TrueType font used for every text. Without it the
	// core Arial font is used and characters outside cp1252 are lost.
	FontFile string
}

// pdfStyler holds reusable styling and state for PDF generation
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	family      string
	tr          func(string) string
	styles      map[string]func()
	lineHeight  float64
	currentY    float64
	pageHeight  float64
	contentTopY float64
}

func newPDFStyler(pdf *gofpdf.Fpdf, fontFile string) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		family:      "Arial",
		tr:          pdf.UnicodeTranslatorFromDescriptor(""),
		styles:      make(map[string]func()),
		lineHeight:  6,
		pageHeight:  pdfPageHeightLandscape - pdfMargin,
		contentTopY: pdfMargin,
	}
	if fontFile != "" {
		pdf.AddUTF8Font("body", "", fontFile)
		pdf.AddUTF8Font("body", "B", fontFile)
		s.family = "body"
		s.tr = func(t string) string { return t }
	}
	s.currentY = s.contentTopY
	s.defineStyles()
	return s
}

func (s *pdfStyler) defineStyles() {
	s.styles["h1"] = func() {
		s.pdf.SetFont(s.family, "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont(s.family, "B", 13)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont(s.family, "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["small"] = func() {
		s.pdf.SetFont(s.family, "", 8)
		s.pdf.SetTextColor(90, 90, 90)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont(s.family, "B", 8)
		s.pdf.SetFillColor(200, 200, 200)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont(s.family, "", 8)
		s.pdf.SetTextColor(50, 50, 50)
	}
	s.styles["tableCellRed"] = func() { // status tokens
		s.pdf.SetFont(s.family, "B", 8)
		s.pdf.SetTextColor(200, 0, 0)
	}
}

func (s *pdfStyler) applyStyle(styleName string) {
	if fn, ok := s.styles[styleName]; ok {
		fn()
	} else {
		s.styles["normal"]()
	}
}

func (s *pdfStyler) newPage() {
	s.pdf.AddPage()
	s.currentY = s.contentTopY
}

func (s *pdfStyler) checkAddPage(neededHeight float64) bool {
	if s.currentY+neededHeight > s.pageHeight {
		s.newPage()
		return true
	}
	return false
}

func (s *pdfStyler) writeParagraph(text string, styleName string, align string) {
	s.applyStyle(styleName)
	text = s.tr(text)
	lines := s.pdf.SplitLines([]byte(text), pdfContentWidth)
	s.checkAddPage(float64(len(lines)) * s.lineHeight)

	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, text, "", align, false)
	s.currentY = s.pdf.GetY() + 1
}

func (s *pdfStyler) addSpacer(height float64) {
	if !s.checkAddPage(height) {
		s.currentY += height
	}
}

func (s *pdfStyler) addImage(imageBytes []byte, imageName string, width float64, height float64, caption string) {
	s.pdf.RegisterImageReader(imageName, "PNG", bytes.NewReader(imageBytes))
	if width > pdfContentWidth {
		ratio := pdfContentWidth / width
		width = pdfContentWidth
		height *= ratio
	}
	captionHeight := 0.0
	if caption != "" {
		captionHeight = s.lineHeight + 1
	}
	s.checkAddPage(height + captionHeight)

	s.pdf.Image(imageName, pdfMargin+(pdfContentWidth-width)/2, s.currentY, width, height, false, "PNG", 0, "")
	s.currentY += height
	if caption != "" {
		s.addSpacer(1)
		s.writeParagraph(caption, "small", "C")
	}
	s.addSpacer(2)
}

// table draws rows under headers, repeating the header after a page break.
// cellStyle picks the style of a body cell.
func (s *pdfStyler) table(headers []string, widthsRel []float64, rows [][]string, cellStyle func(row, col int) string) {
	widths := make([]float64, len(widthsRel))
	for i, rel := range widthsRel {
		widths[i] = rel * pdfContentWidth
	}
	header := func() {
		s.applyStyle("tableHeader")
		x := pdfMargin
		for i, h := range headers {
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(widths[i], s.lineHeight, s.tr(h), "1", 0, "C", true, 0, "")
			x += widths[i]
		}
		s.currentY += s.lineHeight
	}

	s.checkAddPage(2 * s.lineHeight)
	header()
	for r, row := range rows {
		if s.checkAddPage(s.lineHeight) {
			header()
		}
		x := pdfMargin
		for c, cellData := range row {
			style := "tableCell"
			if cellStyle != nil {
				style = cellStyle(r, c)
			}
			s.applyStyle(style)
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(widths[c], s.lineHeight, s.tr(cellData), "1", 0, "C", false, 0, "")
			x += widths[c]
		}
		s.currentY += s.lineHeight
	}
}

// BuildPDFReport writes the results report: overall standings, class
// standings, the segment matrix and the charts found in plotImages.
func BuildPDFReport(w io.Writer, res *scoring.Results, opts Options, plotImages map[string][]byte) error {
	if opts.FontFile != "" {
		if _, err := os.Stat(opts.FontFile); err != nil {
			return fmt.Errorf("font file: %w", err)
		}
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)

	styler := newPDFStyler(pdf, opts.FontFile)
	if opts.RunID != "" {
		pdf.SetFooterFunc(func() {
			pdf.SetY(-pdfMargin + 2)
			styler.applyStyle("small")
			pdf.CellFormat(0, 5, fmt.Sprintf("run %s  page %d", opts.RunID, pdf.PageNo()), "", 0, "R", false, 0, "")
		})
	}
	styler.newPage()

	title := opts.Title
	if title == "" {
		title = "Results"
	}
	styler.writeParagraph(title, "h1", "C")
	styler.addSpacer(3)

	if res == nil || len(res.Rows) == 0 {
		styler.writeParagraph("No results to display.", "normal", "L")
		return finish(pdf, w)
	}
	styler.writeParagraph(fmt.Sprintf("%d competitors, %d segments", len(res.Rows), len(res.Segments)), "normal", "L")
	styler.addSpacer(3)

	writeOverall(styler, res)
	writeClasses(styler, res)
	writeMatrix(styler, res)
	writeCharts(styler, res, plotImages)

	return finish(pdf, w)
}

func finish(pdf *gofpdf.Fpdf, w io.Writer) error {
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func names(res *scoring.Results, bib int) (driver, car string) {
	row, ok := res.Row(bib)
	if !ok {
		return "", ""
	}
	return row.Competitor.DriverName, row.Competitor.CarName
}

func writeOverall(s *pdfStyler, res *scoring.Results) {
	s.writeParagraph("Overall Standings", "h2", "L")
	headers := []string{"Rank", "Bib", "Driver", "Car", "Class", "Pure", "H.C.L.", "Penalty", "Total", "Class Rank"}
	widths := []float64{0.06, 0.06, 0.2, 0.2, 0.08, 0.08, 0.08, 0.08, 0.08, 0.08}

	rows := make([][]string, 0, len(res.Overall))
	tokens := make([]bool, 0, len(res.Overall))
	for _, st := range res.Overall {
		row, ok := res.Row(st.Bib)
		if !ok {
			continue
		}
		t := row.Total
		driver, car := names(res, st.Bib)
		rows = append(rows, []string{
			st.RankToken,
			strconv.Itoa(st.Bib),
			driver,
			car,
			t.Class,
			strconv.Itoa(t.PurePoint),
			strconv.Itoa(t.WeightedPoint),
			strconv.Itoa(t.Penalty),
			strconv.Itoa(t.TotalPoint),
			t.ClassRankToken,
		})
		tokens = append(tokens, st.Status.Set())
	}
	s.table(headers, widths, rows, func(r, c int) string {
		if c == 0 && tokens[r] {
			return "tableCellRed"
		}
		return "tableCell"
	})
	s.addSpacer(5)
}

func writeClasses(s *pdfStyler, res *scoring.Results) {
	if len(res.Classes) == 0 {
		return
	}
	s.newPage()
	s.writeParagraph("Class Standings", "h1", "C")
	headers := []string{"Rank", "Bib", "Driver", "Car", "Total"}
	widths := []float64{0.1, 0.1, 0.3, 0.3, 0.2}
	for _, cs := range res.Classes {
		s.writeParagraph("Class "+cs.Class, "h2", "L")
		rows := make([][]string, len(cs.Standings))
		for i, st := range cs.Standings {
			driver, car := names(res, st.Bib)
			rows[i] = []string{st.RankToken, strconv.Itoa(st.Bib), driver, car, strconv.Itoa(st.TotalPoint)}
		}
		s.table(headers, widths, rows, func(r, c int) string {
			if c == 0 && cs.Standings[r].Status.Set() {
				return "tableCellRed"
			}
			return "tableCell"
		})
		s.addSpacer(4)
	}
}

// segmentCell renders one matrix cell: rank and point on PC/PCG, the point
// on CO, or the status token.
func segmentCell(sr scoring.SegmentResult) string {
	if scoring.Resolve(sr.Status).RankAsToken {
		return sr.Status.Token()
	}
	if sr.Type == scoring.TypeCO {
		return strconv.Itoa(sr.Point)
	}
	return fmt.Sprintf("%s / %d", sr.RankToken, sr.Point)
}

func writeMatrix(s *pdfStyler, res *scoring.Results) {
	for start := 0; start < len(res.Segments); start += matrixSegmentsPerPage {
		end := min(start+matrixSegmentsPerPage, len(res.Segments))
		segs := res.Segments[start:end]

		s.newPage()
		s.writeParagraph(fmt.Sprintf("Segment Results (%s to %s)", segs[0].ID, segs[len(segs)-1].ID), "h2", "L")

		headers := []string{"Bib"}
		widths := []float64{0.08}
		colWidth := 0.92 / float64(len(segs))
		for _, seg := range segs {
			headers = append(headers, fmt.Sprintf("%s %s", seg.ID, seg.Type))
			widths = append(widths, colWidth)
		}

		rows := make([][]string, len(res.Rows))
		for r, row := range res.Rows {
			cells := []string{strconv.Itoa(row.Competitor.Bib)}
			for _, sr := range row.Segments[start:end] {
				cells = append(cells, segmentCell(sr))
			}
			rows[r] = cells
		}
		s.table(headers, widths, rows, func(r, c int) string {
			if c > 0 && res.Rows[r].Segments[start+c-1].Status.Set() {
				return "tableCellRed"
			}
			return "tableCell"
		})
	}
}

func writeCharts(s *pdfStyler, res *scoring.Results, plotImages map[string][]byte) {
	if len(plotImages) == 0 {
		return
	}
	s.newPage()
	s.writeParagraph("Charts", "h1", "C")
	s.addSpacer(3)

	imgWidth := pdfContentWidth * 0.85
	imgHeight := imgWidth / 2

	charts := []struct{ key, caption string }{
		{ChartTotals, "Total point of every ranked competitor"},
		{ChartHeatmap, "Point per segment; grey cells carry a status"},
	}
	for _, seg := range res.Segments {
		if seg.Type.Ranked() {
			charts = append(charts, struct{ key, caption string }{DiffChartKey(seg.ID), fmt.Sprintf("%s diff from reference (s)", seg.ID)})
		}
	}
	for _, c := range charts {
		img, ok := plotImages[c.key]
		if !ok || len(img) == 0 {
			continue
		}
		s.addImage(img, c.key, imgWidth, imgHeight, c.caption)
	}
}

// CreateCharts renders every chart BuildPDFReport knows about. Charts that
// cannot be drawn are skipped and reported.
func CreateCharts(res *scoring.Results) (map[string][]byte, []string) {
	images := make(map[string][]byte)
	var skipped []string
	add := func(key string, img []byte, err error) {
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("%s: %v", key, err))
			return
		}
		images[key] = img
	}

	img, err := CreateTotalsBarChart(res, "")
	add(ChartTotals, img, err)
	img, err = CreatePointsHeatmap(res)
	add(ChartHeatmap, img, err)
	for _, seg := range res.Segments {
		if !seg.Type.Ranked() {
			continue
		}
		img, err = CreateDiffPlot(res, seg.ID)
		add(DiffChartKey(seg.ID), img, err)
	}
	return images, skipped
}
