package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromCornersNormalizes(t *testing.T) {
	r := FromCorners(Point{X: 100, Y: 80}, Point{X: 40, Y: 120})
	assert.Equal(t, Rect{X: 40, Y: 80, W: 60, H: 40}, r)
}

func TestRectContainsAndIntersects(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 100, H: 50}

	assert.True(t, r.Contains(Point{X: 10, Y: 10}), "edge inclusive")
	assert.True(t, r.Contains(Point{X: 60, Y: 35}))
	assert.False(t, r.Contains(Point{X: 111, Y: 35}))

	assert.True(t, r.Intersects(Rect{X: 100, Y: 50, W: 50, H: 50}))
	assert.False(t, r.Intersects(Rect{X: 110, Y: 10, W: 20, H: 20}), "touching edges do not overlap")
}

func TestResizeSignRules(t *testing.T) {
	start := Rect{X: 100, Y: 100, W: 200, H: 100}
	anchor := Point{X: 300, Y: 200}
	min := Size{W: 20, H: 20}

	tests := []struct {
		name string
		dir  Direction
		to   Point
		want Rect
	}{
		{"east grows width only", East, Point{X: 330, Y: 250}, Rect{X: 100, Y: 100, W: 230, H: 100}},
		{"west moves origin", West, Point{X: 280, Y: 250}, Rect{X: 80, Y: 100, W: 220, H: 100}},
		{"south grows height only", South, Point{X: 350, Y: 230}, Rect{X: 100, Y: 100, W: 200, H: 130}},
		{"north moves origin and height", North, Point{X: 350, Y: 180}, Rect{X: 100, Y: 80, W: 200, H: 120}},
		{"nw moves position and size", NorthWest, Point{X: 290, Y: 190}, Rect{X: 90, Y: 90, W: 210, H: 110}},
		{"se changes size only", SouthEast, Point{X: 310, Y: 210}, Rect{X: 100, Y: 100, W: 210, H: 110}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resize(start, anchor, tt.to, tt.dir, min)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResizeClampsToMinimum(t *testing.T) {
	start := Rect{X: 100, Y: 100, W: 200, H: 100}
	anchor := Point{X: 100, Y: 100}
	min := Size{W: 50, H: 40}

	// Drag the NW handle far past the SE corner.
	got := Resize(start, anchor, Point{X: 500, Y: 500}, NorthWest, min)

	assert.Equal(t, min.W, got.W)
	assert.Equal(t, min.H, got.H)
	// Opposite edges stay fixed when the moving edge is clamped.
	assert.Equal(t, start.X+start.W-min.W, got.X)
	assert.Equal(t, start.Y+start.H-min.H, got.Y)
}

func TestResizeNeverBelowMinimum(t *testing.T) {
	start := Rect{X: 0, Y: 0, W: 60, H: 60}
	min := Size{W: 20, H: 20}
	for _, dir := range []Direction{North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest} {
		got := Resize(start, Point{X: 30, Y: 30}, Point{X: -400, Y: -400}, dir, min)
		assert.GreaterOrEqual(t, got.W, min.W, "dir %s", dir)
		assert.GreaterOrEqual(t, got.H, min.H, "dir %s", dir)
	}
}
