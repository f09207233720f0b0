package core

import (
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
	}{
		{"120", 120},
		{" 60.5 ", 60.5},
		{"₱1,250.75", 1250.75},
		{"₱ 80", 80},
		{"", 0},
		{"abc", 0},
		{"-5", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"1.2.3", 0},
	}
	for _, tc := range cases {
		if got := ParseAmount(tc.in); got != tc.out {
			t.Fatalf("%q: got %v, want %v", tc.in, got, tc.out)
		}
	}
}

func TestFormatPeso(t *testing.T) {
	cases := []struct {
		in  float64
		out string
	}{
		{0, "₱0.00"},
		{37.5, "₱37.50"},
		{16.666666, "₱16.67"},
		{1234.5, "₱1,234.50"},
		{1234567.891, "₱1,234,567.89"},
		{-75, "-₱75.00"},
		{math.NaN(), "₱0.00"},
	}
	for _, tc := range cases {
		if got := FormatPeso(tc.in); got != tc.out {
			t.Fatalf("FormatPeso(%v) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestRoundCents(t *testing.T) {
	if got := RoundCents(200.005).StringFixed(2); got != "200.01" {
		t.Fatalf("RoundCents = %s", got)
	}
}
