package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/piwi3910/atlaspack/internal/model"
)

// Box is an axis-aligned pixel rectangle.
type Box struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	W int `json:"w" yaml:"w"`
	H int `json:"h" yaml:"h"`
}

// UV is a box in normalized texture coordinates, origin top-left.
type UV struct {
	U0 float64 `json:"u0" yaml:"u0"`
	V0 float64 `json:"v0" yaml:"v0"`
	U1 float64 `json:"u1" yaml:"u1"`
	V1 float64 `json:"v1" yaml:"v1"`
}

// Frame describes where one sprite sits in the atlas. Box includes the
// padding, Frame and UV cover the sprite pixels only.
type Frame struct {
	Name  string `json:"name" yaml:"name"`
	Path  string `json:"path,omitempty" yaml:"path,omitempty"`
	Box   Box    `json:"box" yaml:"box"`
	Frame Box    `json:"frame" yaml:"frame"`
	UV    UV     `json:"uv" yaml:"uv"`
}

// Descriptor is the full frame listing for one atlas.
type Descriptor struct {
	Image       string  `json:"image" yaml:"image"`
	Width       int     `json:"width" yaml:"width"`
	Height      int     `json:"height" yaml:"height"`
	Padding     int     `json:"padding" yaml:"padding"`
	Utilization float64 `json:"utilization" yaml:"utilization"`
	Frames      []Frame `json:"frames" yaml:"frames"`
}

// NewDescriptor builds the descriptor for a pack result. Frames are in
// placement order.
func NewDescriptor(image string, result model.PackResult, padding int) Descriptor {
	d := Descriptor{
		Image:       image,
		Width:       result.Width,
		Height:      result.Height,
		Padding:     padding,
		Utilization: result.Utilization(),
		Frames:      make([]Frame, 0, len(result.Placements)),
	}

	for _, p := range result.Placements {
		content := contentRect(p, padding)
		f := Frame{
			Name:  p.Rect.Name,
			Path:  p.Rect.Path,
			Box:   Box{X: p.X, Y: p.Y, W: p.Rect.Width, H: p.Rect.Height},
			Frame: Box{X: content.Min.X, Y: content.Min.Y, W: content.Dx(), H: content.Dy()},
		}
		if result.Width > 0 && result.Height > 0 {
			aw, ah := float64(result.Width), float64(result.Height)
			f.UV = UV{
				U0: float64(content.Min.X) / aw,
				V0: float64(content.Min.Y) / ah,
				U1: float64(content.Max.X) / aw,
				V1: float64(content.Max.Y) / ah,
			}
		}
		d.Frames = append(d.Frames, f)
	}
	return d
}

// WriteDescriptorsTXT writes one "name, x, y, w, h" line per frame using
// the padded box.
func WriteDescriptorsTXT(w io.Writer, d Descriptor) error {
	bw := bufio.NewWriter(w)
	for _, f := range d.Frames {
		if _, err := fmt.Fprintf(bw, "%s, %d, %d, %d, %d\n", f.Name, f.Box.X, f.Box.Y, f.Box.W, f.Box.H); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func WriteDescriptorsJSON(w io.Writer, d Descriptor) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

func WriteDescriptorsYAML(w io.Writer, d Descriptor) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}

// xlsxHeaders are the column titles of the frames sheet.
var xlsxHeaders = []string{"Name", "X", "Y", "W", "H", "Frame X", "Frame Y", "Frame W", "Frame H", "U0", "V0", "U1", "V1"}

// WriteDescriptorsXLSX writes the frames as a spreadsheet, one row per frame.
func WriteDescriptorsXLSX(path string, d Descriptor) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Frames"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := make([][]interface{}, 0, len(d.Frames)+1)
	header := make([]interface{}, len(xlsxHeaders))
	for i, h := range xlsxHeaders {
		header[i] = h
	}
	rows = append(rows, header)
	for _, fr := range d.Frames {
		rows = append(rows, []interface{}{
			fr.Name, fr.Box.X, fr.Box.Y, fr.Box.W, fr.Box.H,
			fr.Frame.X, fr.Frame.Y, fr.Frame.W, fr.Frame.H,
			fr.UV.U0, fr.UV.V0, fr.UV.U1, fr.UV.V1,
		})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	return f.SaveAs(path)
}

// DescriptorPath returns the descriptor file name for a base path and format.
func DescriptorPath(basePath, format string) string {
	return basePath + "." + format
}

// WriteDescriptors writes the descriptor for format next to basePath and
// returns the file written.
func WriteDescriptors(basePath, format string, d Descriptor) (string, error) {
	format = strings.ToLower(format)
	if !model.ValidFormat(format) {
		return "", fmt.Errorf("unknown descriptor format %q", format)
	}
	path := DescriptorPath(basePath, format)

	if format == model.FormatXLSX {
		return path, WriteDescriptorsXLSX(path, d)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create descriptor file: %w", err)
	}

	switch format {
	case model.FormatJSON:
		err = WriteDescriptorsJSON(out, d)
	case model.FormatYAML:
		err = WriteDescriptorsYAML(out, d)
	default:
		err = WriteDescriptorsTXT(out, d)
	}
	if err != nil {
		out.Close()
		return "", fmt.Errorf("failed to write descriptors: %w", err)
	}
	return path, out.Close()
}
