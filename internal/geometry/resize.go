package geometry

// Direction identifies one of the eight resize handles by compass point.
type Direction string

const (
	North     Direction = "n"
	South     Direction = "s"
	East      Direction = "e"
	West      Direction = "w"
	NorthEast Direction = "ne"
	NorthWest Direction = "nw"
	SouthEast Direction = "se"
	SouthWest Direction = "sw"
)

// Valid reports whether d names one of the eight handles.
func (d Direction) Valid() bool {
	switch d {
	case North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest:
		return true
	}
	return false
}

// horizontal reports whether the direction moves the east or west edge.
func (d Direction) horizontal() (east, west bool) {
	switch d {
	case East, NorthEast, SouthEast:
		east = true
	case West, NorthWest, SouthWest:
		west = true
	}
	return
}

// vertical reports whether the direction moves the north or south edge.
func (d Direction) vertical() (south, north bool) {
	switch d {
	case South, SouthEast, SouthWest:
		south = true
	case North, NorthEast, NorthWest:
		north = true
	}
	return
}

// Resize applies a pointer delta to the start box according to the handle's
// sign rules: east/south grow with the pointer, west/north move the origin and
// shrink the extent. The result is clamped so neither dimension drops below
// min; a clamped west/north edge keeps the opposite edge fixed.
func Resize(start Rect, anchor, current Point, dir Direction, min Size) Rect {
	dx := current.X - anchor.X
	dy := current.Y - anchor.Y

	out := start
	east, west := dir.horizontal()
	south, north := dir.vertical()

	switch {
	case east:
		out.W = start.W + dx
	case west:
		out.X = start.X + dx
		out.W = start.W - dx
	}
	switch {
	case south:
		out.H = start.H + dy
	case north:
		out.Y = start.Y + dy
		out.H = start.H - dy
	}

	if out.W < min.W {
		if west {
			out.X = start.X + start.W - min.W
		}
		out.W = min.W
	}
	if out.H < min.H {
		if north {
			out.Y = start.Y + start.H - min.H
		}
		out.H = min.H
	}
	return out
}
