package model

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ProjectID identifies an AtlasPack project file. Files without it are rejected on load.
const ProjectID = "atlasapp"

// ProjectExt is the file extension used for project files.
const ProjectExt = ".aap"

// Rect is a rectangle to be packed. Width and Height already include any
// padding the caller wants baked in. ID, Name and Path are opaque payload:
// the packer copies them into the result and never inspects them.
type Rect struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Path   string `json:"path,omitempty"`
	Width  int    `json:"width"`  // px
	Height int    `json:"height"` // px
}

func NewRect(name string, w, h int) Rect {
	return Rect{
		ID:     uuid.New().String()[:8],
		Name:   name,
		Width:  w,
		Height: h,
	}
}

// Area returns Width * Height.
func (r Rect) Area() int {
	return r.Width * r.Height
}

// Placement records where one input rect ended up in the container.
type Placement struct {
	Index int  `json:"index"` // Position of the rect in the packed input slice
	Rect  Rect `json:"rect"`
	X     int  `json:"x"` // Offset from left edge (px)
	Y     int  `json:"y"` // Offset from top edge (px)
}

// Right returns the exclusive right edge.
func (p Placement) Right() int {
	return p.X + p.Rect.Width
}

// Bottom returns the exclusive bottom edge.
func (p Placement) Bottom() int {
	return p.Y + p.Rect.Height
}

// Overlaps reports whether two placements share any interior area.
// Placements that only touch along an edge do not overlap.
func (p Placement) Overlaps(o Placement) bool {
	return p.X < o.Right() && o.X < p.Right() &&
		p.Y < o.Bottom() && o.Y < p.Bottom()
}

// PackResult is the outcome of a single pack. It is a value: packing again
// produces a new result and never mutates an old one.
type PackResult struct {
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	UsedArea   int         `json:"used_area"` // Sum of input rect areas
	Placements []Placement `json:"placements"`
}

// Dimensions returns the container width and height.
func (r PackResult) Dimensions() (int, int) {
	return r.Width, r.Height
}

// Area returns the container area. This is the bounding box, not the
// area covered by rects; see UsedArea for that.
func (r PackResult) Area() int {
	return r.Width * r.Height
}

// Utilization returns the fraction of the container covered by rects.
func (r PackResult) Utilization() float64 {
	ca := r.Area()
	if ca == 0 {
		return 0
	}
	return float64(r.UsedArea) / float64(ca)
}

// PlacementFor looks up the placement of the rect with the given ID.
func (r PackResult) PlacementFor(id string) (Placement, bool) {
	for _, p := range r.Placements {
		if p.Rect.ID == id {
			return p, true
		}
	}
	return Placement{}, false
}

// PackSettings holds packer configuration.
type PackSettings struct {
	Padding int `json:"padding"` // px added on every side of each sprite
}

func DefaultPackSettings() PackSettings {
	return PackSettings{Padding: 0}
}

// Sprite is a source image that goes into the atlas.
type Sprite struct {
	Name   string `json:"name"` // File name with extension, e.g. "hero.png"
	Path   string `json:"path"` // Full path to the file
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func NewSprite(path string, w, h int) Sprite {
	return Sprite{
		Name:   filepath.Base(path),
		Path:   path,
		Width:  w,
		Height: h,
	}
}

// PackRect returns the rect used to pack this sprite, grown by padding on
// every side. The sprite path doubles as the rect ID since paths are unique
// within a project.
func (s Sprite) PackRect(padding int) Rect {
	return Rect{
		ID:     s.Path,
		Name:   s.Name,
		Path:   s.Path,
		Width:  s.Width + padding*2,
		Height: s.Height + padding*2,
	}
}

// Project is the on-disk atlas project. Only the image paths are stored;
// sizes are read from the files when the project is opened.
type Project struct {
	ID           string   `json:"id"`
	Padding      int      `json:"padding"`
	FileNames    []string `json:"fileNames"`
	ImageFolder  string   `json:"imageFolder"`
	ExportFolder string   `json:"exportFolder"`

	Path   string   `json:"-"` // Where the project was loaded from / saved to
	Images []Sprite `json:"-"` // Loaded sprites, not persisted
}

func NewProject() Project {
	return Project{
		ID:        ProjectID,
		Padding:   0,
		FileNames: []string{},
	}
}

// Name returns the project file name without directory or extension.
func (p Project) Name() string {
	if p.Path == "" {
		return "Untitled"
	}
	base := filepath.Base(p.Path)
	return base[:len(base)-len(filepath.Ext(base))]
}

// Settings returns the pack settings stored in the project.
func (p Project) Settings() PackSettings {
	return PackSettings{Padding: p.Padding}
}

// BuildRecord describes one completed export.
type BuildRecord struct {
	ID          string    `json:"id"`
	Project     string    `json:"project"`
	CreatedAt   time.Time `json:"created_at"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Sprites     int       `json:"sprites"`
	Padding     int       `json:"padding"`
	Utilization float64   `json:"utilization"`
	Output      string    `json:"output"` // Base path of the written files
}

func NewBuildRecord(project string, result PackResult, padding int, output string) BuildRecord {
	return BuildRecord{
		ID:          uuid.New().String()[:8],
		Project:     project,
		CreatedAt:   time.Now().UTC(),
		Width:       result.Width,
		Height:      result.Height,
		Sprites:     len(result.Placements),
		Padding:     padding,
		Utilization: result.Utilization(),
		Output:      output,
	}
}
