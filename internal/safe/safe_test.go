package safe

import (
	"encoding/json"
	"math"
	"testing"
)

func TestNumber(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want float64
	}{
		{"nil", nil, 0},
		{"float", 12.5, 12.5},
		{"int", 7, 7},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 0},
		{"numeric string", " 42 ", 42},
		{"garbage string", "abc", 0},
		{"empty string", "", 0},
		{"bool", true, 0},
		{"object", map[string]any{"a": 1}, 0},
		{"json number", json.Number("3"), 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Number(tc.in); got != tc.want {
				t.Fatalf("Number(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestDivideGuardsZeroDenominator(t *testing.T) {
	if got := Divide(5, 0); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := Divide(math.Inf(1), 2); got != 0 {
		t.Fatalf("expected 0 for infinite numerator, got %v", got)
	}
	if got := Divide(3, 4); got != 0.75 {
		t.Fatalf("expected 0.75, got %v", got)
	}
}

func TestNonNegative(t *testing.T) {
	if got := NonNegative(-3); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := NonNegative(math.NaN()); got != 0 {
		t.Fatalf("expected 0 for NaN, got %v", got)
	}
	if got := NonNegative(2); got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
}
