package geom

import (
	"math"
	"testing"
)

func TestVec3Finite(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		want bool
	}{
		{"zero", Vec3{}, true},
		{"regular", V3(1, -2.5, 3), true},
		{"nan", V3(math.NaN(), 0, 0), false},
		{"inf y", V3(0, math.Inf(1), 0), false},
		{"neg inf z", V3(0, 0, math.Inf(-1)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Finite(); got != tt.want {
				t.Errorf("Finite(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestVec3Arithmetic(t *testing.T) {
	a, b := V3(1, 2, 3), V3(0.5, 0.5, 0.5)
	if got := a.Add(b); got != V3(1.5, 2.5, 3.5) {
		t.Errorf("Add = %v", got)
	}
	if got := a.Sub(b); got != V3(0.5, 1.5, 2.5) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.WithY(0.25); got != V3(1, 0.25, 3) {
		t.Errorf("WithY = %v", got)
	}
}

func TestIdentity(t *testing.T) {
	if !Identity.IsIdentity() {
		t.Fatal("Identity is not identity")
	}
	if (Quat{X: 0.1, W: 0.99}).IsIdentity() {
		t.Fatal("rotated quaternion reported as identity")
	}
}
