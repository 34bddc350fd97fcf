package util

import "testing"

func TestParseIntDefault(t *testing.T) {
	cases := map[string]int{
		"":     7,
		"abc":  7,
		"42":   42,
		"-3":   -3,
		"4.2":  7,
		" 42 ": 7,
	}
	for in, want := range cases {
		if got := ParseIntDefault(in, 7); got != want {
			t.Fatalf("ParseIntDefault(%q) = %d, want %d", in, got, want)
		}
	}
}
