package core

import "testing"

func TestParseWeightKg(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"1.0", 1, true},
		{"1.25", 1.25, true},
		{"1,25", 1.25, true},
		{"0.01", 0.01, true},
		{".5", 0.5, true},
		{" 2.50 ", 2.5, true},
		{"50.0001", 50.0001, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.000", 0, false},
		{"abc", 0, false},
		{"1e3", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1.2.3", 0, false},
		{".", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseWeightKg(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}
