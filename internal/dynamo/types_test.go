package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestVec3_IsFinite(t *testing.T) {
	tests := []struct {
		name  string
		v     Vec3
		valid bool
	}{
		{"zeros", Vec3{}, true},
		{"normal", Vec3{1.0, 2.0, 3.0}, true},
		{"with NaN", Vec3{1.0, math.NaN(), 0}, false},
		{"with +Inf", Vec3{math.Inf(1), 0, 0}, false},
		{"with -Inf", Vec3{0, 0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsFinite(); got != tt.valid {
				t.Errorf("IsFinite() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestVec3_Norm(t *testing.T) {
	tests := []struct {
		v        Vec3
		expected float64
	}{
		{Vec3{3, 4, 0}, 5.0},
		{Vec3{1, 0, 0}, 1.0},
		{Vec3{0, 0, 0}, 0.0},
		{Vec3{2, 3, 6}, 7.0},
	}

	for _, tt := range tests {
		if got := tt.v.Norm(); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("Norm(%v) = %v, want %v", tt.v, got, tt.expected)
		}
	}
}

func TestVec3_Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	if sum := a.Add(b); sum != (Vec3{5, 7, 9}) {
		t.Errorf("Add failed: got %v", sum)
	}
	if diff := b.Sub(a); diff != (Vec3{3, 3, 3}) {
		t.Errorf("Sub failed: got %v", diff)
	}
	if scaled := a.Scale(2); scaled != (Vec3{2, 4, 6}) {
		t.Errorf("Scale failed: got %v", scaled)
	}
	if dot := a.Dot(b); dot != 32 {
		t.Errorf("Dot failed: got %v", dot)
	}
}

func TestSnapshot_CloneIsIndependent(t *testing.T) {
	s := Snapshot{Tick: 3, Records: []Record{{Density: 1}, {Density: 2}}}
	c := s.Clone()
	c.Records[0].Density = 99

	if s.Records[0].Density != 1 {
		t.Error("clone aliases the original records")
	}
	if c.Tick != 3 || c.Len() != 2 {
		t.Errorf("clone lost fields: %+v", c)
	}
}

func TestSnapshot_DensityRange(t *testing.T) {
	s := Snapshot{Records: []Record{{Density: 2}, {Density: 0.5}, {Density: 7}}}
	lo, hi := s.DensityRange()
	if lo != 0.5 || hi != 7 {
		t.Errorf("DensityRange() = (%v, %v), want (0.5, 7)", lo, hi)
	}

	lo, hi = Snapshot{}.DensityRange()
	if lo != 0 || hi != 0 {
		t.Errorf("empty DensityRange() = (%v, %v)", lo, hi)
	}
}

func TestConfigError_Unwrap(t *testing.T) {
	err := &ConfigError{Field: "h", Value: -1.0, Wrapped: ErrInvalidRadius}
	if !errors.Is(err, ErrInvalidRadius) {
		t.Error("ConfigError should unwrap to its sentinel")
	}
	if err.Error() == "" {
		t.Error("empty error message")
	}
}
