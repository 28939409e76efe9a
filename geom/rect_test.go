package geom

import "testing"

func TestApplyMargins(t *testing.T) {
	r := NewRect(0, 0, 100, 200)
	r.ApplyMargins(10, 5, 20, 5, false)
	if r != NewRect(5, 20, 90, 170) {
		t.Fatalf("shrink: got %v", r)
	}
	r.ApplyMargins(10, 5, 20, 5, true)
	if r != NewRect(0, 0, 100, 200) {
		t.Fatalf("expand: got %v", r)
	}
}

func TestMoves(t *testing.T) {
	r := NewRect(0, 50, 10, 10)
	r.MoveDown(20).IncreaseHeight(5)
	if r.Y != 30 || r.Height != 15 || r.Top() != 45 {
		t.Fatalf("unexpected rect %v", r)
	}
	r.MoveUp(10).DecreaseHeight(15)
	if r.Y != 40 || r.Height != 0 || r.Top() != 40 {
		t.Fatalf("unexpected rect %v", r)
	}
}

func TestUnion(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"disjoint", NewRect(0, 100, 50, 0), NewRect(0, 60, 50, 20), NewRect(0, 60, 50, 40)},
		{"contained", NewRect(0, 0, 100, 100), NewRect(10, 10, 10, 10), NewRect(0, 0, 100, 100)},
		{"wider", NewRect(10, 0, 10, 10), NewRect(0, 5, 40, 10), NewRect(0, 0, 40, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Union(tt.a, tt.b); got != tt.want {
				t.Errorf("Union() = %v, want %v", got, tt.want)
			}
		})
	}
}
