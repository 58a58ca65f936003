package abstraction

import (
	"fmt"
	"strings"
)

// Bucket cardinalities of the postflop abstraction
const (
	StrengthBuckets  = 8
	PressureBuckets  = 5
	SPRBuckets       = 4
	WetnessBuckets   = 4
	PositionBuckets  = 2
	AggressorBuckets = 3
)

// StrengthThresholds are the equity cut points between strength buckets
var StrengthThresholds = [StrengthBuckets - 1]float64{0.20, 0.32, 0.44, 0.56, 0.68, 0.80, 0.90}

// StrengthBucket maps an equity in [0,1] to the number of thresholds it reaches
func StrengthBucket(equity float64) int {
	bucket := 0
	for i, th := range StrengthThresholds {
		if equity >= th {
			bucket = i + 1
		}
	}
	return bucket
}

// PressureBucket classifies the price of continuing: 0 when there is nothing
// to call, otherwise by the share toCall/(pot+toCall)
func PressureBucket(toCall, pot float64) int {
	if toCall <= 0 {
		return 0
	}
	p := toCall / max(1, pot+toCall)
	switch {
	case p < 0.12:
		return 1
	case p < 0.24:
		return 2
	case p < 0.42:
		return 3
	default:
		return 4
	}
}

// SPRBucket classifies the stack-to-pot ratio of the effective stack
func SPRBucket(effectiveStack, pot float64) int {
	spr := effectiveStack / max(1, pot)
	switch {
	case spr < 1.4:
		return 0
	case spr < 3:
		return 1
	case spr < 6:
		return 2
	default:
		return 3
	}
}

// PositionBucket is 1 in position and 0 out of position
func PositionBucket(inPosition bool) int {
	if inPosition {
		return 1
	}
	return 0
}

// Aggressor identifies who made the last voluntary raise on the street
type Aggressor uint8

const (
	AggressorNone Aggressor = iota
	AggressorSelf
	AggressorOpponent
)

// Bucket returns the aggressor coordinate
func (a Aggressor) Bucket() int {
	if a > AggressorOpponent {
		return 0
	}
	return int(a)
}

func (a Aggressor) String() string {
	switch a {
	case AggressorSelf:
		return "self"
	case AggressorOpponent:
		return "opponent"
	default:
		return "none"
	}
}

// ParseAggressor accepts none/self/opponent and the short forms n/s/o/opp
func ParseAggressor(s string) (Aggressor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "n":
		return AggressorNone, nil
	case "self", "s", "hero":
		return AggressorSelf, nil
	case "opponent", "opp", "o", "villain":
		return AggressorOpponent, nil
	default:
		return AggressorNone, fmt.Errorf("unknown aggressor: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (a Aggressor) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Aggressor) UnmarshalText(text []byte) error {
	parsed, err := ParseAggressor(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
