package export

import (
	"image"
	"image/color"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"github.com/piwi3910/atlaspack/internal/model"
)

// Preview sizing. Small atlases are scaled up so labels fit, large ones
// are scaled down so the preview stays a reasonable size.
const (
	previewMinSide = 256
	previewMaxSide = 2048
	previewFontPt  = 11
)

var (
	previewBackground = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	previewOutline    = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	previewText       = color.RGBA{A: 255}
)

// previewFace returns the label font, Go Regular when it parses and the
// built-in bitmap face otherwise.
func previewFace() font.Face {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return basicfont.Face7x13
	}
	return truetype.NewFace(f, &truetype.Options{Size: previewFontPt, DPI: 72, Hinting: font.HintingFull})
}

// previewScale picks the factor applied to atlas pixels.
func previewScale(w, h int) float64 {
	side := float64(max(w, h))
	switch {
	case side < previewMinSide:
		return previewMinSide / side
	case side > previewMaxSide:
		return previewMaxSide / side
	}
	return 1
}

// RenderPreview draws the layout of a pack result: every placement as a
// colored box with an outline and, where it fits, its name.
func RenderPreview(result model.PackResult) (*image.RGBA, error) {
	if len(result.Placements) == 0 || result.Width <= 0 || result.Height <= 0 {
		return nil, ErrNothingToExport
	}

	scale := previewScale(result.Width, result.Height)
	sx := func(v int) int { return int(float64(v) * scale) }

	img := image.NewRGBA(image.Rect(0, 0, max(sx(result.Width), 1), max(sx(result.Height), 1)))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: previewBackground}, image.Point{}, draw.Src)

	face := previewFace()
	defer face.Close()

	for i, p := range result.Placements {
		r := image.Rect(sx(p.X), sx(p.Y), sx(p.Right()), sx(p.Bottom()))
		c := spriteColors[i%len(spriteColors)]
		draw.Draw(img, r, &image.Uniform{C: color.RGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 255}}, image.Point{}, draw.Src)
		drawOutline(img, r, previewOutline)
		drawLabel(img, r, p.Rect.Name, face)
	}
	return img, nil
}

// drawOutline draws a one pixel border just inside r.
func drawOutline(img *image.RGBA, r image.Rectangle, c color.Color) {
	if r.Empty() {
		return
	}
	src := &image.Uniform{C: c}
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1),
		image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y),
		image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(img, e, src, image.Point{}, draw.Src)
	}
}

// drawLabel centers text in r, skipping it when it does not fit.
func drawLabel(img *image.RGBA, r image.Rectangle, text string, face font.Face) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{C: previewText},
		Face: face,
	}
	metrics := face.Metrics()
	textW := drawer.MeasureString(text).Ceil()
	textH := (metrics.Ascent + metrics.Descent).Ceil()
	if textW+4 > r.Dx() || textH+2 > r.Dy() {
		return
	}

	x := r.Min.X + (r.Dx()-textW)/2
	baseline := r.Min.Y + (r.Dy()-textH)/2 + metrics.Ascent.Ceil()
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

// WritePreviewPNG renders the preview of result and writes it to path.
func WritePreviewPNG(path string, result model.PackResult) error {
	img, err := RenderPreview(result)
	if err != nil {
		return err
	}
	return WriteAtlasPNG(path, img)
}
