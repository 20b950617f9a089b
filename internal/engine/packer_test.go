package engine

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/piwi3910/atlaspack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rectsOf(sizes ...[2]int) []model.Rect {
	rects := make([]model.Rect, len(sizes))
	for i, s := range sizes {
		rects[i] = model.Rect{ID: fmt.Sprintf("r%d", i), Name: fmt.Sprintf("r%d", i), Width: s[0], Height: s[1]}
	}
	return rects
}

func randomRects(seed int64, n, maxSide int) []model.Rect {
	rng := rand.New(rand.NewSource(seed))
	sizes := make([][2]int, n)
	for i := range sizes {
		sizes[i] = [2]int{1 + rng.Intn(maxSide), 1 + rng.Intn(maxSide)}
	}
	return rectsOf(sizes...)
}

// assertValidPacking checks the invariants every packing must satisfy.
func assertValidPacking(t *testing.T, rects []model.Rect, res model.PackResult) {
	t.Helper()

	require.Len(t, res.Placements, len(rects))

	used := 0
	for i, p := range res.Placements {
		assert.Equal(t, i, p.Index, "placements must be in input order")
		assert.Equal(t, rects[i], p.Rect, "payload must pass through unchanged")
		assert.GreaterOrEqual(t, p.X, 0)
		assert.GreaterOrEqual(t, p.Y, 0)
		assert.LessOrEqual(t, p.Right(), res.Width, "rect %d exceeds container width", i)
		assert.LessOrEqual(t, p.Bottom(), res.Height, "rect %d exceeds container height", i)
		used += rects[i].Area()
	}
	assert.Equal(t, used, res.UsedArea)

	for i := 0; i < len(res.Placements); i++ {
		for j := i + 1; j < len(res.Placements); j++ {
			a, b := res.Placements[i], res.Placements[j]
			assert.False(t, a.Overlaps(b), "rect %d at (%d,%d) overlaps rect %d at (%d,%d)", i, a.X, a.Y, j, b.X, b.Y)
		}
	}

	if len(rects) > 0 {
		assert.GreaterOrEqual(t, res.Area(), res.UsedArea, "container smaller than total rect area")
		assert.Greater(t, res.Utilization(), 0.0)
		assert.LessOrEqual(t, res.Utilization(), 1.0)
	}
}

// ─── Scenario Tests ────────────────────────────────────

func TestPack_TwoEqualSquares(t *testing.T) {
	rects := rectsOf([2]int{10, 10}, [2]int{10, 10})

	res, err := Pack(rects)
	require.NoError(t, err)
	assertValidPacking(t, rects, res)

	// Seed width is ceil(sqrt(200/0.95)) = 15, too narrow for a second
	// square beside the first, so they stack.
	assert.Equal(t, 0, res.Placements[0].X)
	assert.Equal(t, 0, res.Placements[0].Y)
	assert.Equal(t, 0, res.Placements[1].X)
	assert.Equal(t, 10, res.Placements[1].Y)
	assert.Equal(t, 10, res.Width)
	assert.Equal(t, 20, res.Height)
	assert.InDelta(t, 1.0, res.Utilization(), 1e-9)
}

func TestPack_ThreeDescendingHeights(t *testing.T) {
	rects := rectsOf([2]int{50, 30}, [2]int{20, 20}, [2]int{10, 10})

	res, err := Pack(rects)
	require.NoError(t, err)
	assertValidPacking(t, rects, res)

	assert.Equal(t, model.Placement{Index: 0, Rect: rects[0], X: 0, Y: 0}, res.Placements[0])
	assert.Equal(t, 0, res.Placements[1].X)
	assert.Equal(t, 30, res.Placements[1].Y)
	// The 10x10 lands in the strip split off to the right of the 20x20.
	assert.Equal(t, 20, res.Placements[2].X)
	assert.Equal(t, 30, res.Placements[2].Y)

	assert.Equal(t, 50, res.Width)
	assert.Equal(t, 50, res.Height)
	assert.GreaterOrEqual(t, res.Area(), 2000)
	assert.InDelta(t, 0.8, res.Utilization(), 1e-9)
}

func TestPack_SingleRect(t *testing.T) {
	rects := rectsOf([2]int{100, 50})

	res, err := Pack(rects)
	require.NoError(t, err)
	assertValidPacking(t, rects, res)

	assert.Equal(t, 100, res.Width)
	assert.Equal(t, 50, res.Height)
	assert.Equal(t, 5000, res.Area())
	assert.InDelta(t, 1.0, res.Utilization(), 1e-9)
}

func TestPack_EmptyInput(t *testing.T) {
	for _, rects := range [][]model.Rect{nil, {}} {
		res, err := Pack(rects)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Width)
		assert.Equal(t, 0, res.Height)
		assert.Equal(t, 0, res.Area())
		assert.Equal(t, 0, res.UsedArea)
		assert.Equal(t, 0.0, res.Utilization())
		assert.Empty(t, res.Placements)
	}
}

func TestPack_EqualHeightsKeepInputOrder(t *testing.T) {
	rects := rectsOf([2]int{5, 10}, [2]int{7, 10}, [2]int{3, 10})

	res, err := Pack(rects)
	require.NoError(t, err)
	assertValidPacking(t, rects, res)

	// Seed width 13: a at the origin, b fills the strip to its right,
	// c no longer fits in the 1px leftover and starts the next row.
	assert.Equal(t, [2]int{0, 0}, [2]int{res.Placements[0].X, res.Placements[0].Y})
	assert.Equal(t, [2]int{5, 0}, [2]int{res.Placements[1].X, res.Placements[1].Y})
	assert.Equal(t, [2]int{0, 10}, [2]int{res.Placements[2].X, res.Placements[2].Y})
	assert.Equal(t, 12, res.Width)
	assert.Equal(t, 20, res.Height)
}

func TestPack_TallestFirst(t *testing.T) {
	rects := rectsOf([2]int{10, 5}, [2]int{10, 40}, [2]int{10, 20})

	res, err := Pack(rects)
	require.NoError(t, err)
	assertValidPacking(t, rects, res)

	assert.Equal(t, 0, res.Placements[1].X, "tallest rect goes first")
	assert.Equal(t, 0, res.Placements[1].Y, "tallest rect goes first")
}

func TestPack_ExactFitRemovesSpace(t *testing.T) {
	// Seed width 11: 4 + 4 + 3 fills the first row exactly.
	rects := rectsOf([2]int{4, 10}, [2]int{4, 10}, [2]int{3, 10})

	res, err := Pack(rects)
	require.NoError(t, err)
	assertValidPacking(t, rects, res)

	assert.Equal(t, 8, res.Placements[2].X)
	assert.Equal(t, 0, res.Placements[2].Y)
	assert.Equal(t, 11, res.Width)
	assert.Equal(t, 10, res.Height)
	assert.InDelta(t, 1.0, res.Utilization(), 1e-9)
}

func TestPack_WideRectWidensContainer(t *testing.T) {
	// One rect is wider than the square estimate; the seed must take it.
	rects := rectsOf([2]int{200, 2}, [2]int{5, 5}, [2]int{5, 5})

	res, err := Pack(rects)
	require.NoError(t, err)
	assertValidPacking(t, rects, res)
	assert.Equal(t, 200, res.Width)
}

func TestPack_DoesNotModifyInput(t *testing.T) {
	rects := rectsOf([2]int{3, 1}, [2]int{2, 9}, [2]int{4, 4})
	before := make([]model.Rect, len(rects))
	copy(before, rects)

	_, err := Pack(rects)
	require.NoError(t, err)
	assert.Equal(t, before, rects)
}

// ─── Invalid Input Tests ───────────────────────────────

func TestPack_RejectsNonPositiveSizes(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"zero width", 0, 10},
		{"zero height", 10, 0},
		{"negative width", -5, 10},
		{"negative height", 10, -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rects := rectsOf([2]int{10, 10}, [2]int{tc.w, tc.h})
			_, err := Pack(rects)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRect)
		})
	}
}

// ─── Property Tests ────────────────────────────────────

func TestPack_RandomInputsAreValid(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		rects := randomRects(seed, 150, 64)
		res, err := Pack(rects)
		require.NoError(t, err, "seed %d", seed)
		assertValidPacking(t, rects, res)
	}
}

func TestPack_Deterministic(t *testing.T) {
	rects := randomRects(42, 300, 100)

	first, err := Pack(rects)
	require.NoError(t, err)
	second, err := Pack(rects)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPack_RoughlySquare(t *testing.T) {
	sizes := make([][2]int, 100)
	for i := range sizes {
		sizes[i] = [2]int{16, 16}
	}
	res, err := Pack(rectsOf(sizes...))
	require.NoError(t, err)

	ratio := float64(res.Width) / float64(res.Height)
	assert.InDelta(t, 1.0, ratio, 0.35, "expected a squarish container, got %dx%d", res.Width, res.Height)
}

func TestPack_ConcurrentCalls(t *testing.T) {
	rects := randomRects(7, 100, 50)
	want, err := Pack(rects)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Pack(rects)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}

// ─── Free Space Tests ──────────────────────────────────

func TestFindSpace_ScansNewestFirst(t *testing.T) {
	spaces := []space{
		{x: 0, y: 0, w: 100, h: 100},
		{x: 0, y: 0, w: 50, h: 50},
		{x: 0, y: 0, w: 5, h: 5},
	}
	assert.Equal(t, 1, findSpace(spaces, 10, 10), "first fit from the end, not best fit")
	assert.Equal(t, 2, findSpace(spaces, 5, 5))
	assert.Equal(t, 0, findSpace(spaces, 60, 10))
	assert.Equal(t, -1, findSpace(spaces, 101, 1))
}

func TestSplitSpace(t *testing.T) {
	tests := []struct {
		name string
		in   []space
		i    int
		w, h int
		want []space
	}{
		{
			name: "exact match swaps with last",
			in:   []space{{0, 0, 10, 10}, {20, 0, 4, 4}, {30, 0, 6, 6}},
			i:    0, w: 10, h: 10,
			want: []space{{30, 0, 6, 6}, {20, 0, 4, 4}},
		},
		{
			name: "exact match of last space",
			in:   []space{{0, 0, 10, 10}, {20, 0, 4, 4}},
			i:    1, w: 4, h: 4,
			want: []space{{0, 0, 10, 10}},
		},
		{
			name: "height match keeps strip to the right",
			in:   []space{{0, 0, 10, 4}},
			i:    0, w: 3, h: 4,
			want: []space{{3, 0, 7, 4}},
		},
		{
			name: "width match keeps strip below",
			in:   []space{{0, 0, 10, 40}},
			i:    0, w: 10, h: 15,
			want: []space{{0, 15, 10, 25}},
		},
		{
			name: "general split adds right strip and shrinks down",
			in:   []space{{2, 3, 10, 40}},
			i:    0, w: 4, h: 5,
			want: []space{{2, 8, 10, 35}, {6, 3, 6, 5}},
		},
		{
			name: "unbounded height stays huge",
			in:   []space{{0, 0, 10, unbounded}},
			i:    0, w: 10, h: 7,
			want: []space{{0, 7, 10, unbounded - 7}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := splitSpace(tc.in, tc.i, tc.w, tc.h)
			assert.Equal(t, tc.want, got)
		})
	}
}

// ─── Packer Tests ──────────────────────────────────────

func TestPacker_ZeroBeforePack(t *testing.T) {
	p := New(model.DefaultPackSettings())

	assert.Equal(t, 0, p.Width())
	assert.Equal(t, 0, p.Height())
	assert.Equal(t, 0, p.Area())
	assert.Equal(t, 0.0, p.Utilization())
	w, h := p.Dimensions()
	assert.Equal(t, 0, w)
	assert.Equal(t, 0, h)
}

func TestPacker_AccessorsReflectLastPack(t *testing.T) {
	p := New(model.DefaultPackSettings())

	_, err := p.Pack(rectsOf([2]int{100, 50}))
	require.NoError(t, err)
	assert.Equal(t, 100, p.Width())
	assert.Equal(t, 50, p.Height())
	assert.Equal(t, 5000, p.Area())
	assert.InDelta(t, 1.0, p.Utilization(), 1e-9)

	_, err = p.Pack(rectsOf([2]int{50, 30}, [2]int{20, 20}, [2]int{10, 10}))
	require.NoError(t, err)
	w, h := p.Dimensions()
	assert.Equal(t, 50, w)
	assert.Equal(t, 50, h)
	assert.Equal(t, 2500, p.Area())
	assert.InDelta(t, 0.8, p.Utilization(), 1e-9)
}

func TestPacker_FailedPackKeepsPreviousResult(t *testing.T) {
	p := New(model.DefaultPackSettings())

	_, err := p.Pack(rectsOf([2]int{100, 50}))
	require.NoError(t, err)

	_, err = p.Pack(rectsOf([2]int{10, 10}, [2]int{0, 10}))
	require.ErrorIs(t, err, ErrInvalidRect)

	assert.Equal(t, 100, p.Width())
	assert.Equal(t, 50, p.Height())
}

func TestPacker_EmptyPackResetsResult(t *testing.T) {
	p := New(model.DefaultPackSettings())

	_, err := p.Pack(rectsOf([2]int{100, 50}))
	require.NoError(t, err)
	_, err = p.Pack(nil)
	require.NoError(t, err)

	assert.Equal(t, 0, p.Area())
	assert.Equal(t, 0.0, p.Utilization())
}

func TestPacker_PackSpritesAppliesPadding(t *testing.T) {
	p := New(model.PackSettings{Padding: 1})
	sprites := []model.Sprite{model.NewSprite("/art/a.png", 30, 20)}

	res, err := p.PackSprites(sprites)
	require.NoError(t, err)

	require.Len(t, res.Placements, 1)
	assert.Equal(t, 32, res.Placements[0].Rect.Width)
	assert.Equal(t, 22, res.Placements[0].Rect.Height)
	assert.Equal(t, "/art/a.png", res.Placements[0].Rect.ID)
	assert.Equal(t, 32, p.Width())
	assert.Equal(t, 22, p.Height())
}

func TestPacker_PackSpritesRejectsNegativePadding(t *testing.T) {
	p := New(model.PackSettings{Padding: -1})
	_, err := p.PackSprites([]model.Sprite{model.NewSprite("a.png", 4, 4)})
	assert.ErrorIs(t, err, ErrInvalidPadding)
}

func TestPacker_PackSpritesRejectsEmptyImage(t *testing.T) {
	p := New(model.DefaultPackSettings())
	_, err := p.PackSprites([]model.Sprite{model.NewSprite("empty.png", 0, 0)})
	assert.ErrorIs(t, err, ErrInvalidRect)
}
