// Package project persists atlas projects, application config and presets
// as JSON files.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/piwi3910/atlaspack/internal/importer"
	"github.com/piwi3910/atlaspack/internal/model"
)

var (
	// ErrNotAtlasProject is returned when a file lacks the project identifier.
	ErrNotAtlasProject = errors.New("not an atlas project")
	// ErrNoPath is returned by Save for a project that was never saved.
	ErrNoPath = errors.New("project has no path")
	// ErrNothingToRemove is returned when RemoveImages matches no image.
	ErrNothingToRemove = errors.New("nothing to remove")
	// ErrInvalidPadding is returned for negative padding.
	ErrInvalidPadding = errors.New("padding must not be negative")
)

// Save writes the project back to the path it was loaded from.
func Save(p *model.Project) error {
	if p.Path == "" {
		return ErrNoPath
	}
	return SaveAs(p, p.Path)
}

// SaveAs writes the project to path, adding the project extension if it is
// missing, and makes that the project's path.
func SaveAs(p *model.Project, path string) error {
	if !strings.EqualFold(filepath.Ext(path), model.ProjectExt) {
		path += model.ProjectExt
	}

	p.ID = model.ProjectID
	if p.FileNames == nil {
		p.FileNames = []string{}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	p.Path = path
	return nil
}

// Load reads a project file. Folders that no longer exist are cleared.
// Images are not read; call LoadImages for that.
func Load(path string) (*model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}
	var p model.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse project file %s (%v): %w", path, err, ErrNotAtlasProject)
	}
	if p.ID != model.ProjectID {
		return nil, fmt.Errorf("%s has id %q: %w", path, p.ID, ErrNotAtlasProject)
	}

	if p.FileNames == nil {
		p.FileNames = []string{}
	}
	if !dirExists(p.ImageFolder) {
		p.ImageFolder = ""
	}
	if !dirExists(p.ExportFolder) {
		p.ExportFolder = ""
	}
	p.Path = path
	return &p, nil
}

func dirExists(dir string) bool {
	if dir == "" {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// LoadImages reads the size of every image in the project into p.Images.
// Files that are missing or unreadable are dropped from FileNames, the
// rest are kept sorted by name.
func LoadImages(p *model.Project) importer.ImportResult {
	result := importer.LoadImages(p.FileNames)

	p.Images = result.Sprites
	p.FileNames = make([]string, len(result.Sprites))
	for i, s := range result.Sprites {
		p.FileNames[i] = s.Path
	}
	return result
}

// AddImages adds image paths to the project. Paths already in the project
// are returned as duplicates and not added again. The image folder is set to
// the folder of the last added image.
func AddImages(p *model.Project, paths []string) (added, duplicates []string) {
	existing := make(map[string]bool, len(p.FileNames))
	for _, f := range p.FileNames {
		existing[f] = true
	}

	for _, path := range paths {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if existing[path] {
			duplicates = append(duplicates, path)
			continue
		}
		existing[path] = true
		p.FileNames = append(p.FileNames, path)
		added = append(added, path)
	}

	if len(added) > 0 {
		p.ImageFolder = filepath.Dir(added[len(added)-1])
		sortPaths(p.FileNames)
	}
	return added, duplicates
}

// sortPaths orders paths by file name, then by full path.
func sortPaths(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		bi, bj := filepath.Base(paths[i]), filepath.Base(paths[j])
		if bi != bj {
			return bi < bj
		}
		return paths[i] < paths[j]
	})
}

// RemoveImages removes images matched by file name or full path and returns
// how many were removed.
func RemoveImages(p *model.Project, names []string) (int, error) {
	match := make(map[string]bool, len(names))
	for _, n := range names {
		match[n] = true
	}
	matches := func(path string) bool {
		return match[path] || match[filepath.Base(path)]
	}

	kept := p.FileNames[:0]
	removed := 0
	for _, f := range p.FileNames {
		if matches(f) {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	p.FileNames = kept

	if len(p.Images) > 0 {
		images := p.Images[:0]
		for _, s := range p.Images {
			if !matches(s.Path) {
				images = append(images, s)
			}
		}
		p.Images = images
	}

	if removed == 0 {
		return 0, fmt.Errorf("%s: %w", strings.Join(names, ", "), ErrNothingToRemove)
	}
	return removed, nil
}

// TogglePadding switches the padding between 0 and 1 and returns the new value.
func TogglePadding(p *model.Project) int {
	if p.Padding == 0 {
		p.Padding = 1
	} else {
		p.Padding = 0
	}
	return p.Padding
}

// SetPadding sets the padding to an explicit value.
func SetPadding(p *model.Project, padding int) error {
	if padding < 0 {
		return fmt.Errorf("padding %d: %w", padding, ErrInvalidPadding)
	}
	p.Padding = padding
	return nil
}
