package floatutils_test

import (
	"testing"

	"github.com/samuelfneumann/goppo/utils/floatutils"
)

func TestClip(t *testing.T) {
	tests := []struct {
		value, min, max float64
		want            float64
	}{
		{0.5, 0.0, 1.0, 0.5},
		{-1.2, 0.0, 1.0, 0.0},
		{3.7, 0.0, 1.0, 1.0},
		{1.0, 1.0, 1.0, 1.0},
		{-0.5, -1.0, -0.25, -0.5},
	}
	for _, test := range tests {
		got := floatutils.Clip(test.value, test.min, test.max)
		if got != test.want {
			t.Errorf("clip(%v, %v, %v): expected %v, got %v", test.value,
				test.min, test.max, test.want, got)
		}
	}
}

func TestOnes(t *testing.T) {
	ones := floatutils.Ones(5)
	if len(ones) != 5 {
		t.Fatalf("expected length 5, got %v", len(ones))
	}
	for i, val := range ones {
		if val != 1.0 {
			t.Errorf("expected 1.0 at index %v, got %v", i, val)
		}
	}

	if empty := floatutils.Ones(0); len(empty) != 0 {
		t.Errorf("expected empty slice, got %v", empty)
	}
}
