package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/atlaspack/internal/model"
)

// rgb is a fill color for a placed sprite.
type rgb struct {
	R, G, B int
}

// spriteColors is the palette shared by the PDF report and the preview.
var spriteColors = []rgb{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	qrSize       = 30.0
	rowHeight    = 6.0
)

// ReportSummary is the atlas summary encoded into the report's QR code.
type ReportSummary struct {
	Title       string  `json:"title"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Sprites     int     `json:"sprites"`
	Padding     int     `json:"padding"`
	Utilization float64 `json:"utilization"`
}

func NewReportSummary(title string, result model.PackResult, padding int) ReportSummary {
	return ReportSummary{
		Title:       title,
		Width:       result.Width,
		Height:      result.Height,
		Sprites:     len(result.Placements),
		Padding:     padding,
		Utilization: math.Round(result.Utilization()*10000) / 10000,
	}
}

// ExportReportPDF writes a PDF with the atlas layout on the first page and
// a frame table on the following pages.
func ExportReportPDF(path, title string, result model.PackResult, padding int) error {
	if len(result.Placements) == 0 {
		return ErrNothingToExport
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	// Core fonts are cp1252; sprite names and titles are UTF-8.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	if err := renderLayoutPage(pdf, tr, title, result, padding); err != nil {
		return err
	}

	renderFrameTable(pdf, tr, NewDescriptor(title, result, padding))

	return pdf.OutputFileAndClose(path)
}

// renderLayoutPage draws the atlas diagram, stats line and QR summary.
func renderLayoutPage(pdf *fpdf.Fpdf, tr func(string) string, title string, result model.PackResult, padding int) error {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	heading := tr(fmt.Sprintf("Atlas: %s (%d x %d px)", title, result.Width, result.Height))
	pdf.CellFormat(pageWidth-marginLeft-marginRight-qrSize, headerHeight, heading, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Sprites: %d | Used area: %d sq px | Container area: %d sq px | Utilization: %.1f%% | Padding: %d px",
		len(result.Placements), result.UsedArea, result.Area(), result.Utilization()*100, padding)
	pdf.CellFormat(pageWidth-marginLeft-marginRight-qrSize, 5, stats, "", 0, "L", false, 0, "")

	if err := drawSummaryQR(pdf, NewReportSummary(title, result, padding)); err != nil {
		return err
	}

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - 5
	scale := math.Min(drawWidth/float64(result.Width), drawHeight/float64(result.Height))

	canvasW := float64(result.Width) * scale
	canvasH := float64(result.Height) * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	pdf.SetFillColor(235, 235, 235)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	for i, p := range result.Placements {
		col := spriteColors[i%len(spriteColors)]
		pw := float64(p.Rect.Width) * scale
		ph := float64(p.Rect.Height) * scale
		px := offsetX + float64(p.X)*scale
		py := offsetY + float64(p.Y)*scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.2)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 15 && ph > 8 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)

			name := tr(p.Rect.Name)
			dims := fmt.Sprintf("%dx%d", p.Rect.Width-2*padding, p.Rect.Height-2*padding)
			nameW := pdf.GetStringWidth(name)
			dimsW := pdf.GetStringWidth(dims)

			if nameW < pw-2 {
				pdf.SetXY(px+(pw-nameW)/2, py+ph/2-4)
				pdf.CellFormat(nameW, 4, name, "", 0, "C", false, 0, "")
			}
			if ph > 14 && dimsW < pw-2 {
				pdf.SetXY(px+(pw-dimsW)/2, py+ph/2)
				pdf.CellFormat(dimsW, 4, dims, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, result, offsetX, offsetY, canvasW, canvasH)
	return nil
}

// drawSummaryQR places a QR code of the summary JSON in the top-right corner.
func drawSummaryQR(pdf *fpdf.Fpdf, summary ReportSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal report summary: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(data), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("summary_qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("summary_qr", pageWidth-marginRight-qrSize, marginTop-5, qrSize, qrSize, false, opts, 0, "")
	return nil
}

// drawDimensionAnnotations labels the container width below and height to the left.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, result model.PackResult, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%d px", result.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%d px", result.Height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// frameColumns are the frame table headers and widths in mm.
var frameColumns = []struct {
	title string
	width float64
}{
	{"#", 12},
	{"Name", 70},
	{"Box (x, y, w, h)", 55},
	{"Frame (x, y, w, h)", 55},
	{"UV (u0, v0, u1, v1)", 75},
}

// renderFrameTable lists every frame, starting a new page whenever the
// current one is full.
func renderFrameTable(pdf *fpdf.Fpdf, tr func(string) string, d Descriptor) {
	y := pageHeight
	for i, f := range d.Frames {
		if y+rowHeight > pageHeight-marginBottom {
			pdf.AddPage()
			y = renderFrameTableHeader(pdf)
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		cells := []string{
			fmt.Sprintf("%d", i+1),
			f.Name,
			fmt.Sprintf("%d, %d, %d, %d", f.Box.X, f.Box.Y, f.Box.W, f.Box.H),
			fmt.Sprintf("%d, %d, %d, %d", f.Frame.X, f.Frame.Y, f.Frame.W, f.Frame.H),
			fmt.Sprintf("%.4f, %.4f, %.4f, %.4f", f.UV.U0, f.UV.V0, f.UV.U1, f.UV.V1),
		}

		pdf.SetFont("Helvetica", "", 8)
		x := marginLeft
		for j, cell := range cells {
			pdf.SetXY(x, y)
			pdf.CellFormat(frameColumns[j].width, rowHeight, truncate(pdf, tr, cell, frameColumns[j].width-2), "1", 0, "C", true, 0, "")
			x += frameColumns[j].width
		}
		y += rowHeight
	}
}

func renderFrameTableHeader(pdf *fpdf.Fpdf) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(100, 7, "Frames", "", 0, "L", false, 0, "")

	y := marginTop + 9
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	x := marginLeft
	for _, c := range frameColumns {
		pdf.SetXY(x, y)
		pdf.CellFormat(c.width, rowHeight, c.title, "1", 0, "C", true, 0, "")
		x += c.width
	}
	return y + rowHeight
}

// truncate translates s for the current font, shortening it rune by rune
// with an ellipsis until it fits in width.
func truncate(pdf *fpdf.Fpdf, tr func(string) string, s string, width float64) string {
	if out := tr(s); pdf.GetStringWidth(out) <= width {
		return out
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(tr(string(runes)+"...")) > width {
		runes = runes[:len(runes)-1]
	}
	return tr(string(runes) + "...")
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
