package model

import "testing"

func TestMergeIdentity(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{"two empties", []string{"", ""}, "C"},
		{"single W", []string{"W", ""}, "W"},
		{"order preserved", []string{"U", "W"}, "WU"},
		{"full set", []string{"W", "U", "B", "R", "G"}, "WUBRG"},
		{"already sorted", []string{"W", "U", "B", "R", "G", "W"}, "WUBRG"},
		{"fragments merge", []string{"WU", "BR", "G", "WG"}, "WUBRG"},
		{"non-wubrg letter ignored", []string{"S"}, "C"},
		{"mixed with ignored letter", []string{"S", "R"}, "R"},
		{"lowercase normalised", []string{"r", "g"}, "RG"},
		{"lowercase order preserved", []string{"g", "r"}, "RG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeIdentity(tt.in)
			if got != tt.want {
				t.Fatalf("MergeIdentity(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
