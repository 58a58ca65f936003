package resolver

import (
	"strconv"

	"github.com/behrlich/postflop-solver/pkg/abstraction"
)

// ActionLog is one entry of a hand's action history
type ActionLog struct {
	Street abstraction.Street
	// ActorID is empty for table events such as dealing
	ActorID     string
	Action      Action
	Amount      float64
	ForcedBlind bool
}

func (l ActionLog) voluntary() bool {
	return l.ActorID != "" && !l.ForcedBlind
}

// ClassifyAggressor reports who made the last voluntary raise of the hand
// relative to actorID
func ClassifyAggressor(history []ActionLog, actorID string) abstraction.Aggressor {
	for i := len(history) - 1; i >= 0; i-- {
		l := history[i]
		if !l.voluntary() || l.Action != Raise || l.Amount <= 0 {
			continue
		}
		if l.ActorID == actorID {
			return abstraction.AggressorSelf
		}
		return abstraction.AggressorOpponent
	}
	return abstraction.AggressorNone
}

// RiverActionPath encodes the heads-up river betting so far as override
// node tokens: f (fold), c (check or call), b<amount> (bet into no bet)
// and r<amount> (raise size above the call). Amounts are chip deltas.
func RiverActionPath(history []ActionLog, heroID, villainID string, heroInPosition bool) []string {
	if heroID == "" || villainID == "" {
		return nil
	}
	oopID, ipID := heroID, villainID
	if heroInPosition {
		oopID, ipID = villainID, heroID
	}

	var oop, ip float64
	path := []string{}
	for _, l := range history {
		if l.Street != abstraction.River || !l.voluntary() {
			continue
		}
		isOOP := l.ActorID == oopID
		if !isOOP && l.ActorID != ipID {
			continue
		}

		contrib := &ip
		if isOOP {
			contrib = &oop
		}
		toCall := max(oop, ip) - *contrib

		switch l.Action {
		case Fold:
			path = append(path, "f")
		case Check:
			path = append(path, "c")
		case Call:
			path = append(path, "c")
			*contrib += max(0, l.Amount)
		case Raise:
			delta := max(0, l.Amount)
			if toCall <= 0 {
				path = append(path, "b"+formatChips(delta))
			} else {
				path = append(path, "r"+formatChips(max(0, delta-toCall)))
			}
			*contrib += delta
		}
	}
	return path
}

func formatChips(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
