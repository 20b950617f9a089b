// Package export writes packed atlases: the composed atlas image, frame
// descriptors in several formats, a PDF layout report and a preview image.
package export

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/piwi3910/atlaspack/internal/model"
)

// ErrNothingToExport is returned when the pack result has no placements.
var ErrNothingToExport = errors.New("nothing to export")

// ErrPaddingTooLarge is returned when padding does not fit inside a rect.
var ErrPaddingTooLarge = errors.New("padding larger than packed rect")

// DecodeImage reads a png, jpeg, gif or webp file.
func DecodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// ComposeAtlas draws every placed sprite into one image the size of the
// container. Each rect is the sprite grown by padding on every side, so the
// sprite goes in at (x+padding, y+padding). The source file is read from
// the rect's Path. A source whose size no longer matches the packed rect is
// scaled to fit.
func ComposeAtlas(result model.PackResult, padding int) (*image.NRGBA, error) {
	if len(result.Placements) == 0 {
		return nil, ErrNothingToExport
	}

	atlas := image.NewNRGBA(image.Rect(0, 0, result.Width, result.Height))
	for _, p := range result.Placements {
		if p.Rect.Width <= 2*padding || p.Rect.Height <= 2*padding {
			return nil, fmt.Errorf("%s is %dx%d with padding %d: %w",
				p.Rect.Name, p.Rect.Width, p.Rect.Height, padding, ErrPaddingTooLarge)
		}

		target := contentRect(p, padding)
		src, err := DecodeImage(p.Rect.Path)
		if err != nil {
			return nil, err
		}

		if src.Bounds().Size() == target.Size() {
			xdraw.Copy(atlas, target.Min, src, src.Bounds(), xdraw.Src, nil)
		} else {
			xdraw.CatmullRom.Scale(atlas, target, src, src.Bounds(), xdraw.Src, nil)
		}
	}
	return atlas, nil
}

// contentRect returns the area inside a placement that holds the sprite
// itself, without padding.
func contentRect(p model.Placement, padding int) image.Rectangle {
	return image.Rect(
		p.X+padding,
		p.Y+padding,
		p.Right()-padding,
		p.Bottom()-padding,
	)
}

// WriteAtlasPNG encodes img as PNG at path, creating parent directories.
func WriteAtlasPNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create atlas file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode atlas: %w", err)
	}
	return f.Close()
}
