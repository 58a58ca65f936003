package solver

import (
	"testing"

	"github.com/behrlich/postflop-solver/pkg/abstraction"
)

func TestNewParams(t *testing.T) {
	tests := []struct {
		name   string
		coords abstraction.Coords
		want   Params
	}{
		{
			name:   "river unopened, in position, self aggressor",
			coords: abstraction.Coords{Street: abstraction.River, Pressure: 0, SPR: 2, Position: 1, Aggressor: 1},
			// factor 0.82+0.06+0.05 = 0.93
			want: Params{Pot: 100, ToCall: 0, RaiseTo: 93, MinRaise: 8, EffectiveStack: 450,
				RaiseAvailable: true, EquityDiscount: 0, PotIfCall: 100, PotIfRaiseCall: 286},
		},
		{
			name:   "flop facing a half-pot bet out of position",
			coords: abstraction.Coords{Street: abstraction.Flop, Pressure: 2, SPR: 1, Position: 0, Aggressor: 2},
			// toCall 32, minRaise 16, factor 0.82-0.028-0.05 = 0.742, raw round(132*0.742)=98
			want: Params{Pot: 100, ToCall: 32, RaiseTo: 98, MinRaise: 16, EffectiveStack: 250,
				RaiseAvailable: true, EquityDiscount: 0.23, PotIfCall: 164, PotIfRaiseCall: 264},
		},
		{
			name:   "short stack cannot raise an overbet",
			coords: abstraction.Coords{Street: abstraction.Turn, Pressure: 4, SPR: 0, Position: 1, Aggressor: 0},
			// toCall 95, stack max(97, 140)=140, raiseTo min(140, max(95+48, round(195*0.982)=191)) = 140
			want: Params{Pot: 100, ToCall: 95, RaiseTo: 140, MinRaise: 48, EffectiveStack: 140,
				RaiseAvailable: true, EquityDiscount: 0.43, PotIfCall: 290, PotIfRaiseCall: 285},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewParams(tt.coords)
			if !paramsClose(got, tt.want) {
				t.Errorf("NewParams() =\n  %+v\nwant\n  %+v", got, tt.want)
			}
		})
	}
}

func TestNewParams_AllStates(t *testing.T) {
	for _, street := range abstraction.PostflopStreets {
		for p := 0; p < abstraction.PressureBuckets; p++ {
			for r := 0; r < abstraction.SPRBuckets; r++ {
				for i := 0; i < abstraction.PositionBuckets; i++ {
					for a := 0; a < abstraction.AggressorBuckets; a++ {
						c := abstraction.Coords{Street: street, Pressure: p, SPR: r, Position: i, Aggressor: a}
						got := NewParams(c)
						if got.EquityDiscount < 0 || got.EquityDiscount > 0.75 {
							t.Errorf("%s: discount %v out of range", c.Key(), got.EquityDiscount)
						}
						if got.RaiseTo > got.EffectiveStack {
							t.Errorf("%s: raiseTo %v exceeds stack %v", c.Key(), got.RaiseTo, got.EffectiveStack)
						}
						if (p == 0) != (got.ToCall == 0) {
							t.Errorf("%s: toCall %v inconsistent with pressure", c.Key(), got.ToCall)
						}
						if got.RaiseAvailable != (got.RaiseTo > got.ToCall) {
							t.Errorf("%s: RaiseAvailable inconsistent", c.Key())
						}
						enabled := got.HeroEnabled()
						if enabled[0] != (p > 0) || !enabled[1] {
							t.Errorf("%s: HeroEnabled = %v", c.Key(), enabled)
						}
					}
				}
			}
		}
	}
}

func paramsClose(a, b Params) bool {
	near := func(x, y float64) bool { return x-y < 1e-9 && y-x < 1e-9 }
	return near(a.Pot, b.Pot) && near(a.ToCall, b.ToCall) && near(a.RaiseTo, b.RaiseTo) &&
		near(a.MinRaise, b.MinRaise) && near(a.EffectiveStack, b.EffectiveStack) &&
		a.RaiseAvailable == b.RaiseAvailable && near(a.EquityDiscount, b.EquityDiscount) &&
		near(a.PotIfCall, b.PotIfCall) && near(a.PotIfRaiseCall, b.PotIfRaiseCall)
}
