package engine

import (
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

func TestPickPlatform_NoneWhenExhausted(t *testing.T) {
	r := NewRand(7)
	quotas := Quotas{1: 2, 2: 1}

	if _, ok := PickPlatform(r, quotas, map[int64]int{1: 2, 2: 1}); ok {
		t.Error("expected none when every quota is consumed")
	}
	if _, ok := PickPlatform(r, quotas, map[int64]int{1: 5, 2: 3}); ok {
		t.Error("expected none when consumed exceeds quota")
	}
	if _, ok := PickPlatform(r, Quotas{}, nil); ok {
		t.Error("expected none for empty quotas")
	}
}

func TestPickPlatform_NeverPicksExhaustedPlatform(t *testing.T) {
	r := NewRand(11)
	quotas := Quotas{1: 3, 2: 4, 3: 0, 4: 2}
	consumed := map[int64]int{1: 3, 4: 1}

	for i := 0; i < 5000; i++ {
		id, ok := PickPlatform(r, quotas, consumed)
		if !ok {
			t.Fatal("expected a platform")
		}
		if Remaining(quotas[id], consumed[id]) == 0 {
			t.Fatalf("picked platform %d with nothing remaining", id)
		}
	}
}

// The picked share of each platform must match remaining/total.
func TestPickPlatform_Distribution(t *testing.T) {
	r := NewRand(2024)
	quotas := Quotas{1: 5, 2: 3, 3: 2}
	consumed := map[int64]int{1: 1}
	remaining := map[int64]float64{1: 4, 2: 3, 3: 2}
	const draws = 90000

	counts := map[int64]int{}
	for i := 0; i < draws; i++ {
		id, _ := PickPlatform(r, quotas, consumed)
		counts[id]++
	}

	var stat float64
	for id, rem := range remaining {
		expected := draws * rem / 9
		diff := float64(counts[id]) - expected
		stat += diff * diff / expected
	}

	chi := distuv.ChiSquared{K: float64(len(remaining) - 1)}
	pValue := 1 - chi.CDF(stat)
	if pValue < 0.001 {
		t.Errorf("distribution rejected: chi2=%.2f p=%.5f counts=%v", stat, pValue, counts)
	}
}

func TestMustSatisfyWestern(t *testing.T) {
	tests := []struct {
		name                           string
		target, satisfied, pool, drawn int
		want                           bool
	}{
		{"no requirement", 0, 0, 10, 0, false},
		{"plenty of room", 2, 0, 10, 0, false},
		{"deadline reached", 2, 0, 10, 8, true},
		{"deadline passed", 3, 0, 10, 8, true},
		{"already satisfied", 2, 2, 10, 9, false},
		{"target equals pool", 10, 0, 10, 0, true},
		{"last slot", 1, 0, 5, 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MustSatisfyWestern(tt.target, tt.satisfied, tt.pool, tt.drawn); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNewRand_SeedIsReproducible(t *testing.T) {
	a, b := NewRand(99), NewRand(99)
	for i := 0; i < 10; i++ {
		if a.IntN(1000) != b.IntN(1000) {
			t.Fatalf("sequences diverged at %d", i)
		}
	}
}
