package canvas

import "testing"

func TestEaseOut(t *testing.T) {
	if got := easeOut.At(0); got != 0 {
		t.Errorf("At(0) = %v", got)
	}
	if got := easeOut.At(1); got != 1 {
		t.Errorf("At(1) = %v", got)
	}
	prev := 0.0
	for i := 1; i < 100; i++ {
		x := float64(i) / 100
		y := easeOut.At(x)
		if y < prev {
			t.Fatalf("not monotonic at %v: %v < %v", x, y, prev)
		}
		if y < x-1e-6 {
			t.Errorf("ease-out should lead linear progress at %v, got %v", x, y)
		}
		prev = y
	}
}
