package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/atlaspack/internal/model"
)

// buildLayoutResult creates a layout without source images; the report
// never reads pixels.
func buildLayoutResult(n int) model.PackResult {
	res := model.PackResult{}
	x := 0
	for i := 0; i < n; i++ {
		r := model.Rect{ID: fmt.Sprintf("r%d", i), Name: fmt.Sprintf("sprite_%03d.png", i), Width: 32 + i%5, Height: 24}
		res.Placements = append(res.Placements, model.Placement{Index: i, Rect: r, X: x, Y: 0})
		x += r.Width
		res.UsedArea += r.Area()
	}
	res.Width = x
	res.Height = 24
	return res
}

func assertPDF(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("output file not created: %v", err)
	}
	if len(data) < 5 || string(data[:5]) != "%PDF-" {
		t.Errorf("output is not a PDF, starts with %q", data[:min(len(data), 5)])
	}
}

func TestExportReportPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")

	if err := ExportReportPDF(path, "ui", buildLayoutResult(3), 1); err != nil {
		t.Fatalf("ExportReportPDF returned error: %v", err)
	}
	assertPDF(t, path)
}

func TestExportReportPDF_ManyFramesPaginates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many.pdf")

	// More rows than fit on one table page.
	if err := ExportReportPDF(path, "big", buildLayoutResult(120), 0); err != nil {
		t.Fatalf("ExportReportPDF returned error: %v", err)
	}
	assertPDF(t, path)
}

func TestExportReportPDF_EmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	err := ExportReportPDF(path, "none", model.PackResult{}, 0)
	if !errors.Is(err, ErrNothingToExport) {
		t.Errorf("expected ErrNothingToExport, got %v", err)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		t.Error("no file should be written for an empty result")
	}
}

func TestNewReportSummary(t *testing.T) {
	res := model.PackResult{Width: 50, Height: 50, UsedArea: 2000, Placements: make([]model.Placement, 3)}
	s := NewReportSummary("ui", res, 2)

	if s.Title != "ui" || s.Sprites != 3 || s.Padding != 2 || s.Width != 50 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if s.Utilization != 0.8 {
		t.Errorf("expected utilization 0.8, got %f", s.Utilization)
	}
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct {
		w, h float64
		want float64
	}{
		{100, 50, 8},
		{30, 25, 7},
		{16, 10, 6},
	}
	for _, tc := range tests {
		if got := labelFontSize(tc.w, tc.h); got != tc.want {
			t.Errorf("labelFontSize(%.0f, %.0f) = %.0f, want %.0f", tc.w, tc.h, got, tc.want)
		}
	}
}

func TestTruncate_KeepsWholeRunes(t *testing.T) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 8)
	identity := func(s string) string { return s }

	name := strings.Repeat("é", 40) + ".png"
	got := truncate(pdf, identity, name, 20)

	if !utf8.ValidString(got) {
		t.Errorf("truncated name is not valid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "...") || len(got) >= len(name) {
		t.Errorf("expected a shortened name with ellipsis, got %q", got)
	}
	if short := truncate(pdf, identity, "a.png", 20); short != "a.png" {
		t.Errorf("names that fit should be unchanged, got %q", short)
	}
}

func TestTruncate_TranslatesForCoreFont(t *testing.T) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 8)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// cp1252 encodes é as the single byte 0xE9.
	if got := truncate(pdf, tr, "hé.png", 50); got != "h\xe9.png" {
		t.Errorf("expected cp1252 output, got %q", got)
	}
}

func TestExportReportPDF_UnicodeNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unicode.pdf")
	res := buildLayoutResult(2)
	res.Placements[0].Rect.Name = "héros_über_long_sprite_name_that_needs_truncation.png"

	if err := ExportReportPDF(path, "café", res, 0); err != nil {
		t.Fatalf("ExportReportPDF returned error: %v", err)
	}
	assertPDF(t, path)
}
