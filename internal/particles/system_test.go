package particles

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/sphsim/internal/dynamo"
)

func zeros(n int) []dynamo.Vec3 { return make([]dynamo.Vec3, n) }

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		mass []float64
		pos  []dynamo.Vec3
		want error
	}{
		{"empty", nil, nil, dynamo.ErrNoParticles},
		{"zero mass", []float64{1, 0}, zeros(2), dynamo.ErrInvalidMass},
		{"negative mass", []float64{-1}, zeros(1), dynamo.ErrInvalidMass},
		{"NaN mass", []float64{math.NaN()}, zeros(1), dynamo.ErrInvalidMass},
		{"Inf mass", []float64{math.Inf(1)}, zeros(1), dynamo.ErrInvalidMass},
		{"length mismatch", []float64{1, 1}, zeros(1), dynamo.ErrDimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, err := New(tt.mass, tt.pos, zeros(len(tt.pos)), zeros(len(tt.pos)))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if sys != nil {
				t.Error("expected no system on error")
			}
		})
	}
}

func TestNew_CopiesInput(t *testing.T) {
	mass := []float64{1, 2}
	pos := []dynamo.Vec3{{1, 0, 0}, {0, 1, 0}}
	sys, err := New(mass, pos, zeros(2), zeros(2))
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	mass[0] = 50
	pos[0] = dynamo.Vec3{9, 9, 9}

	if sys.Mass[0] != 1 || sys.Position[0] != (dynamo.Vec3{1, 0, 0}) {
		t.Error("system aliases caller slices")
	}
	if sys.Len() != 2 || sys.TotalMass() != 3 {
		t.Errorf("unexpected len/total mass: %d %f", sys.Len(), sys.TotalMass())
	}
}

func TestKineticEnergy(t *testing.T) {
	sys, _ := New([]float64{2}, zeros(1), []dynamo.Vec3{{3, 4, 0}}, zeros(1))
	if got := sys.KineticEnergy(); math.Abs(got-25) > 1e-12 {
		t.Errorf("expected 25, got %f", got)
	}
}

func TestIsFinite(t *testing.T) {
	sys, _ := New([]float64{1}, zeros(1), zeros(1), zeros(1))
	if !sys.IsFinite() {
		t.Error("expected finite state")
	}
	sys.Velocity[0][1] = math.NaN()
	if sys.IsFinite() {
		t.Error("expected NaN to be detected")
	}
}

func TestClone(t *testing.T) {
	sys, _ := New([]float64{1}, []dynamo.Vec3{{1, 2, 3}}, zeros(1), zeros(1))
	c := sys.Clone()
	c.Position[0][0] = 100

	if sys.Position[0][0] != 1 {
		t.Error("clone shares position storage")
	}
}
