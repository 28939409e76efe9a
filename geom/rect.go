// Package geom has rectangle arithmetic used by layout. Coordinates follow
// PDF convention: y grows upwards, Y is the bottom edge of a rectangle and
// Top() = Y + Height.
package geom

import "fmt"

type Rect struct {
	X, Y          float32
	Width, Height float32
}

func NewRect(x, y, width, height float32) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

func (r Rect) Top() float32 {
	return r.Y + r.Height
}

func (r Rect) Bottom() float32 {
	return r.Y
}

func (r Rect) Right() float32 {
	return r.X + r.Width
}

// MoveDown shifts rectangle down keeping its size.
func (r *Rect) MoveDown(d float32) *Rect {
	r.Y -= d
	return r
}

// MoveUp shifts rectangle up keeping its size.
func (r *Rect) MoveUp(d float32) *Rect {
	r.Y += d
	return r
}

func (r *Rect) IncreaseHeight(d float32) *Rect {
	r.Height += d
	return r
}

func (r *Rect) DecreaseHeight(d float32) *Rect {
	r.Height -= d
	return r
}

// ApplyMargins shrinks rectangle by given indents. When reverse is set
// rectangle is expanded instead.
func (r *Rect) ApplyMargins(top, right, bottom, left float32, reverse bool) *Rect {
	if reverse {
		top, right, bottom, left = -top, -right, -bottom, -left
	}
	r.X += left
	r.Width -= left + right
	r.Y += bottom
	r.Height -= top + bottom
	return r
}

// Union returns smallest rectangle containing both a and b.
func Union(a, b Rect) Rect {
	x := min(a.X, b.X)
	y := min(a.Y, b.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  max(a.Right(), b.Right()) - x,
		Height: max(a.Top(), b.Top()) - y,
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("[x=%.2f y=%.2f w=%.2f h=%.2f]", r.X, r.Y, r.Width, r.Height)
}
