package rating

import (
	"math"
	"testing"
)

func TestExpected_EqualRatings(t *testing.T) {
	if e := Expected(1200, 1200); math.Abs(e-0.5) > 1e-9 {
		t.Errorf("Expected(1200, 1200) = %v, want 0.5", e)
	}
}

func TestExpected_Symmetry(t *testing.T) {
	// Expected scores of two opponents always sum to 1.
	pairs := [][2]int{{1200, 1200}, {1216, 1184}, {2000, 100}, {0, 3000}}
	for _, p := range pairs {
		sum := Expected(p[0], p[1]) + Expected(p[1], p[0])
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("Expected(%d,%d)+Expected(%d,%d) = %v, want 1",
				p[0], p[1], p[1], p[0], sum)
		}
	}
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name          string
		winner, loser int
		wantW, wantL  int
	}{
		{"equal ratings swing 16", 1200, 1200, 1216, 1184},
		{"second equal match", 1216, 1184, 1231, 1169},
		{"huge favorite gains nothing", 2000, 0, 2000, 0},
		{"floor at zero", 10, 10, 26, 0},
		{"both zero", 0, 0, 16, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotW, gotL := Update(tt.winner, tt.loser)
			if gotW != tt.wantW || gotL != tt.wantL {
				t.Errorf("Update(%d, %d) = (%d, %d), want (%d, %d)",
					tt.winner, tt.loser, gotW, gotL, tt.wantW, tt.wantL)
			}
		})
	}
}

func TestUpdate_NeverNegative(t *testing.T) {
	for w := 0; w <= 100; w += 10 {
		for l := 0; l <= 100; l += 10 {
			gotW, gotL := Update(w, l)
			if gotW < 0 || gotL < 0 {
				t.Errorf("Update(%d, %d) = (%d, %d), ratings must not go below 0",
					w, l, gotW, gotL)
			}
		}
	}
}

func TestUpdate_Deterministic(t *testing.T) {
	w1, l1 := Update(1473, 912)
	w2, l2 := Update(1473, 912)
	if w1 != w2 || l1 != l2 {
		t.Errorf("Update is not deterministic: (%d,%d) vs (%d,%d)", w1, l1, w2, l2)
	}
}
