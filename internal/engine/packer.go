package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/piwi3910/atlaspack/internal/model"
)

// fillFactor shrinks the area used to estimate the container width so the
// result comes out roughly square instead of tall and thin.
const fillFactor = 0.95

// unbounded stands in for the infinite height of the initial free space.
const unbounded = math.MaxInt

var (
	// ErrInvalidRect is returned when a rect has a non-positive width or height.
	ErrInvalidRect = errors.New("rect dimensions must be positive")
	// ErrInvalidPadding is returned for negative padding.
	ErrInvalidPadding = errors.New("padding must not be negative")
	// ErrNoFreeSpace means the placement loop found no free space for a rect.
	// The seeded space is wide enough for every rect and unbounded in height,
	// so this only happens if the packer itself is broken.
	ErrNoFreeSpace = errors.New("no free space fits rect")
)

// Packer packs rectangles and remembers the most recent result.
// A Packer is meant to have a single owner; the accessors may be read from
// other goroutines while a pack runs and see either the old or new result.
type Packer struct {
	Settings model.PackSettings

	mu   sync.RWMutex
	last model.PackResult
}

func New(settings model.PackSettings) *Packer {
	return &Packer{Settings: settings}
}

// Pack packs rects and records the result. On error the previous result is kept.
func (p *Packer) Pack(rects []model.Rect) (model.PackResult, error) {
	result, err := Pack(rects)
	if err != nil {
		return model.PackResult{}, err
	}
	p.mu.Lock()
	p.last = result
	p.mu.Unlock()
	return result, nil
}

// PackSprites grows every sprite by the configured padding and packs the
// resulting rects. Placements are in sprite order.
func (p *Packer) PackSprites(sprites []model.Sprite) (model.PackResult, error) {
	rects, err := spriteRects(sprites, p.Settings.Padding)
	if err != nil {
		return model.PackResult{}, err
	}
	return p.Pack(rects)
}

// Result returns the last successful pack result.
func (p *Packer) Result() model.PackResult {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// Width returns the container width of the last pack.
func (p *Packer) Width() int {
	return p.Result().Width
}

// Height returns the container height of the last pack.
func (p *Packer) Height() int {
	return p.Result().Height
}

// Dimensions returns the container width and height of the last pack.
func (p *Packer) Dimensions() (int, int) {
	return p.Result().Dimensions()
}

// Area returns the container area (width * height) of the last pack.
func (p *Packer) Area() int {
	return p.Result().Area()
}

// Utilization returns the covered fraction of the last container, or 0
// before anything was packed.
func (p *Packer) Utilization() float64 {
	return p.Result().Utilization()
}

func spriteRects(sprites []model.Sprite, padding int) ([]model.Rect, error) {
	if padding < 0 {
		return nil, fmt.Errorf("padding %d: %w", padding, ErrInvalidPadding)
	}
	rects := make([]model.Rect, len(sprites))
	for i, s := range sprites {
		rects[i] = s.PackRect(padding)
	}
	return rects, nil
}

// space is a free region left in the container.
type space struct {
	x, y, w, h int
}

// Pack computes placements for rects inside a roughly square container.
// It is a single greedy pass: rects are taken tallest first and each goes
// into the first free space that fits, scanning the most recently created
// spaces first. The input slice is not modified; the returned placements
// are in input order. Pack is safe for concurrent use.
func Pack(rects []model.Rect) (model.PackResult, error) {
	for i, r := range rects {
		if r.Width <= 0 || r.Height <= 0 {
			return model.PackResult{}, fmt.Errorf("rect %d (%q) is %dx%d: %w", i, r.Name, r.Width, r.Height, ErrInvalidRect)
		}
	}

	result := model.PackResult{Placements: make([]model.Placement, len(rects))}
	if len(rects) == 0 {
		return result, nil
	}

	// Sort indices rather than rects so the caller's slice stays untouched.
	order := make([]int, len(rects))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rects[order[a]].Height > rects[order[b]].Height
	})

	maxWidth := 0
	for _, r := range rects {
		result.UsedArea += r.Area()
		maxWidth = max(maxWidth, r.Width)
	}

	startWidth := int(math.Ceil(math.Sqrt(float64(result.UsedArea) / fillFactor)))
	spaces := []space{{x: 0, y: 0, w: max(startWidth, maxWidth), h: unbounded}}

	for _, idx := range order {
		r := rects[idx]

		i := findSpace(spaces, r.Width, r.Height)
		if i < 0 {
			return model.PackResult{}, fmt.Errorf("rect %d (%q) %dx%d, %d free spaces: %w",
				idx, r.Name, r.Width, r.Height, len(spaces), ErrNoFreeSpace)
		}

		s := spaces[i]
		result.Placements[idx] = model.Placement{Index: idx, Rect: r, X: s.x, Y: s.y}
		result.Width = max(result.Width, s.x+r.Width)
		result.Height = max(result.Height, s.y+r.Height)

		spaces = splitSpace(spaces, i, r.Width, r.Height)
	}

	return result, nil
}

// findSpace returns the index of the last space that can hold a w x h rect, or -1.
func findSpace(spaces []space, w, h int) int {
	for i := len(spaces) - 1; i >= 0; i-- {
		if w <= spaces[i].w && h <= spaces[i].h {
			return i
		}
	}
	return -1
}

// splitSpace updates the free spaces after a w x h rect was put in the
// top-left corner of spaces[i].
func splitSpace(spaces []space, i, w, h int) []space {
	s := spaces[i]
	switch {
	case w == s.w && h == s.h:
		// Exact fit: drop the space. Order does not matter, so swap with last.
		last := len(spaces) - 1
		spaces[i] = spaces[last]
		spaces = spaces[:last]

	case h == s.h:
		// Same height: what is left is the strip to the right.
		spaces[i].x += w
		spaces[i].w -= w

	case w == s.w:
		// Same width: what is left is the strip below.
		spaces[i].y += h
		spaces[i].h -= h

	default:
		// The rect splits the space into a strip to its right and the
		// remainder below it.
		spaces = append(spaces, space{x: s.x + w, y: s.y, w: s.w - w, h: h})
		spaces[i].y += h
		spaces[i].h -= h
	}
	return spaces
}
