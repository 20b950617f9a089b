package importer

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/piwi3910/atlaspack/internal/model"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned for files that are not a decodable image type.
var ErrUnsupportedImage = errors.New("unsupported image type")

// imageTypes are the sniffed content types LoadImage accepts.
var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// imageExts are the file extensions ScanDir picks up.
var imageExts = map[string]bool{
	".png":  true,
	".webp": true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// IsImageFile reports whether path has an image extension ScanDir would pick up.
func IsImageFile(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// LoadImage reads the size of the image at path without decoding the pixels.
func LoadImage(path string) (model.Sprite, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Sprite{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return model.Sprite{}, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	contentType := http.DetectContentType(head[:n])
	if !imageTypes[contentType] {
		return model.Sprite{}, fmt.Errorf("%s (%s): %w", path, contentType, ErrUnsupportedImage)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return model.Sprite{}, fmt.Errorf("failed to rewind image %s: %w", path, err)
	}
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return model.Sprite{}, fmt.Errorf("failed to decode image header %s: %w", path, err)
	}

	return model.NewSprite(path, cfg.Width, cfg.Height), nil
}

// LoadImages loads every path into a sprite. Paths that no longer exist are
// skipped with a warning; unreadable files are reported as errors. Sprites
// come back sorted by name.
func LoadImages(paths []string) ImportResult {
	result := ImportResult{}

	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped missing file %s", path))
			continue
		}

		sprite, err := LoadImage(path)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Sprites = append(result.Sprites, sprite)
	}

	SortSprites(result.Sprites)
	return result
}

// SortSprites orders sprites alphabetically by name, then by path.
func SortSprites(sprites []model.Sprite) {
	sort.SliceStable(sprites, func(i, j int) bool {
		if sprites[i].Name != sprites[j].Name {
			return sprites[i].Name < sprites[j].Name
		}
		return sprites[i].Path < sprites[j].Path
	})
}

// ScanDir returns the image files directly inside dir, sorted by path.
func ScanDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !IsImageFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// ExpandPaths replaces every directory in paths with the images it contains.
// Files are passed through unchanged.
func ExpandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			out = append(out, p)
			continue
		}
		found, err := ScanDir(p)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}
