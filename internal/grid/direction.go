package grid

// Direction is one of the four cardinal facings, in cyclic order.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

// DirectionFrom maps an arbitrary byte onto a valid Direction (modulo 4).
func DirectionFrom(b byte) Direction {
	return Direction(b % 4)
}

// Next returns the facing one step clockwise when right is true,
// one step counter-clockwise otherwise.
func (d Direction) Next(right bool) Direction {
	if right {
		return Direction((uint8(d) + 1) % 4)
	}
	return Direction((uint8(d) + 3) % 4)
}

// Opposite returns the 180 degree rotation.
func (d Direction) Opposite() Direction {
	return Direction((uint8(d) + 2) % 4)
}

// Add combines two directions modulo 4. Used to rotate a relative side
// into an absolute one, or to negate one.
func (d Direction) Add(o Direction) Direction {
	return Direction((uint8(d) + uint8(o)) % 4)
}

func (d Direction) String() string {
	switch d % 4 {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	default:
		return "west"
	}
}
