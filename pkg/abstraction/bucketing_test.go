package abstraction

import (
	"testing"
)

func TestStrengthBucket(t *testing.T) {
	tests := []struct {
		equity float64
		want   int
	}{
		{0, 0},
		{0.19, 0},
		{0.20, 1},
		{0.55, 3},
		{0.56, 4},
		{0.72, 5},
		{0.899, 6},
		{0.90, 7},
		{1, 7},
	}
	for _, tt := range tests {
		if got := StrengthBucket(tt.equity); got != tt.want {
			t.Errorf("StrengthBucket(%v) = %d, want %d", tt.equity, got, tt.want)
		}
	}
}

func TestPressureBucket(t *testing.T) {
	tests := []struct {
		toCall, pot float64
		want        int
	}{
		{0, 100, 0},
		{-5, 100, 0},
		{10, 100, 1},  // 0.091
		{20, 100, 2},  // 0.167
		{40, 100, 3},  // 0.286
		{75, 100, 4},  // 0.429
		{5, 0, 4},     // pot+toCall floors at 1
		{100, 100, 4}, // 0.5
	}
	for _, tt := range tests {
		if got := PressureBucket(tt.toCall, tt.pot); got != tt.want {
			t.Errorf("PressureBucket(%v, %v) = %d, want %d", tt.toCall, tt.pot, got, tt.want)
		}
	}
}

func TestSPRBucket(t *testing.T) {
	tests := []struct {
		stack, pot float64
		want       int
	}{
		{100, 100, 0},
		{140, 100, 1},
		{299, 100, 1},
		{300, 100, 2},
		{599, 100, 2},
		{600, 100, 3},
		{380, 0, 3},
	}
	for _, tt := range tests {
		if got := SPRBucket(tt.stack, tt.pot); got != tt.want {
			t.Errorf("SPRBucket(%v, %v) = %d, want %d", tt.stack, tt.pot, got, tt.want)
		}
	}
}

func TestParseAggressor(t *testing.T) {
	tests := []struct {
		in      string
		want    Aggressor
		wantErr bool
	}{
		{"", AggressorNone, false},
		{"none", AggressorNone, false},
		{"SELF", AggressorSelf, false},
		{"opp", AggressorOpponent, false},
		{"opponent", AggressorOpponent, false},
		{"maybe", AggressorNone, true},
	}
	for _, tt := range tests {
		got, err := ParseAggressor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAggressor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAggressor(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if got.Bucket() != int(tt.want) {
			t.Errorf("Bucket() = %d, want %d", got.Bucket(), tt.want)
		}
	}
}
