package override

import (
	"strings"

	"github.com/behrlich/postflop-solver/pkg/strategy"
)

// Provenance describes where an imported profile came from
type Provenance struct {
	Repo         string   `json:"repo,omitempty"`
	StrategyFile string   `json:"strategy_file,omitempty"`
	ConfigFile   *string  `json:"config_file,omitempty"`
	PlayerIndex  *int     `json:"player_index,omitempty"`
	ProfileKey   string   `json:"profile_key,omitempty"`
	Algo         *string  `json:"algo,omitempty"`
	ToCall       *float64 `json:"to_call,omitempty"`
	Pot          *float64 `json:"pot,omitempty"`
	Stack        *float64 `json:"stack,omitempty"`
}

// Profile is one imported strategy for a spot: a root mix plus optional
// mixes for deeper decision nodes, keyed by action path.
type Profile struct {
	RootKey string               `json:"root_key,omitempty"`
	RootMix []float64            `json:"root_mix_bp"`
	NodeMix map[string][]float64 `json:"node_mix_bp,omitempty"`
	Source  *Provenance          `json:"source,omitempty"`
}

// NamedProfile pairs a profile with its key in the spot
type NamedProfile struct {
	Key     string
	Profile *Profile
}

// LegacyProfileKey names the profile of a legacy single-profile spot
const LegacyProfileKey = "legacy"

// Resolution is the profile chosen for a caller
type Resolution struct {
	Key      string
	Profile  *Profile
	Fallback bool
}

// Node is the mix chosen for a decision node of a profile
type Node struct {
	Key          string
	Mix          [strategy.NumActions]float64
	RootFallback bool
}

// Node returns the mix for the node reached by path. An empty path means
// the profile's root node. Missing nodes fall back to the root mix.
func (p *Profile) Node(path []string) Node {
	key := strings.Join(path, "/")
	if len(path) == 0 {
		key = p.RootKey
		if key == "" {
			key = "root"
		}
	}

	if mix, ok := p.NodeMix[key]; ok && mix != nil {
		return Node{Key: key, Mix: normalizeMix(mix)}
	}
	return Node{Key: key, Mix: normalizeMix(p.RootMix), RootFallback: true}
}

// normalizeMix keeps the first three entries, clamps them at zero and
// rescales to probabilities. An all-zero mix stays all zero.
func normalizeMix(values []float64) [strategy.NumActions]float64 {
	var v [strategy.NumActions]float64
	copy(v[:], values)
	return strategy.Normalize(v)
}

// profileCandidates lists the keys tried for a caller, in order and
// without duplicates: the explicit key as given, upper-cased and
// lower-cased, then the position default.
func profileCandidates(inPosition bool, explicit string) []string {
	var out []string
	add := func(k string) {
		for _, existing := range out {
			if existing == k {
				return
			}
		}
		out = append(out, k)
	}

	if explicit = strings.TrimSpace(explicit); explicit != "" {
		add(explicit)
		add(strings.ToUpper(explicit))
		add(strings.ToLower(explicit))
	}
	if inPosition {
		add("p1")
	} else {
		add("p0")
	}
	return out
}
