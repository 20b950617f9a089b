package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/piwi3910/atlaspack/internal/model"
)

// Outputs lists the files written by ExportProject.
type Outputs struct {
	Base       string
	Image      string
	Descriptor string
}

// BasePath strips a trailing extension so "out/ui.png" and "out/ui" both
// export to "out/ui.png" plus "out/ui.<format>".
func BasePath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// ExportProject composes the atlas and writes it as <base>.png next to its
// descriptor <base>.<format>.
func ExportProject(path string, result model.PackResult, padding int, format string) (Outputs, error) {
	if len(result.Placements) == 0 {
		return Outputs{}, ErrNothingToExport
	}
	if !model.ValidFormat(format) {
		return Outputs{}, fmt.Errorf("unknown descriptor format %q", format)
	}

	base := BasePath(path)
	out := Outputs{Base: base, Image: base + ".png"}

	atlas, err := ComposeAtlas(result, padding)
	if err != nil {
		return Outputs{}, err
	}
	if err := WriteAtlasPNG(out.Image, atlas); err != nil {
		return Outputs{}, err
	}

	d := NewDescriptor(filepath.Base(out.Image), result, padding)
	out.Descriptor, err = WriteDescriptors(base, format, d)
	if err != nil {
		return Outputs{}, err
	}
	return out, nil
}
