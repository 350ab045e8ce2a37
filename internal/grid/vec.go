package grid

import "fmt"

// Vec2i is a block coordinate in world space.
type Vec2i struct {
	X int32
	Y int32
}

func (v Vec2i) Add(o Vec2i) Vec2i {
	return Vec2i{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2i) Sub(o Vec2i) Vec2i {
	return Vec2i{X: v.X - o.X, Y: v.Y - o.Y}
}

// AddDirectional offsets the coordinate by steps blocks along dir.
// North decreases y and South increases it; East decreases x and West
// increases it. The horizontal axis is mirrored; every consumer of the
// grid shares this convention.
func (v Vec2i) AddDirectional(dir Direction, steps int32) Vec2i {
	switch dir {
	case North:
		v.Y -= steps
	case South:
		v.Y += steps
	case East:
		v.X -= steps
	case West:
		v.X += steps
	}
	return v
}

func (v Vec2i) String() string {
	return fmt.Sprintf("%d, %d", v.X, v.Y)
}
