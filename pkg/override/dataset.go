package override

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/behrlich/postflop-solver/pkg/abstraction"
)

// Kind distinguishes the two override datasets
type Kind uint8

const (
	River Kind = iota
	Multiway
)

func (k Kind) String() string {
	if k == Multiway {
		return "multiway"
	}
	return "river"
}

// Shape is the schema variant a spot was stored in
type Shape uint8

const (
	// Profiled spots carry named profiles
	Profiled Shape = iota
	// Legacy spots carry a single root-level mix
	Legacy
)

// Meta describes the tool run that produced a dataset
type Meta struct {
	Name        string `json:"name,omitempty"`
	Version     int    `json:"version,omitempty"`
	GeneratedAt string `json:"generated_at,omitempty"`
	Converter   string `json:"converter,omitempty"`
	Note        string `json:"note,omitempty"`
}

// Spot is one override entry, normalized at load time
type Spot struct {
	Key   abstraction.SpotKey
	Board []string
	Shape Shape

	// Profiles are kept in document order; set when Shape is Profiled
	Profiles []NamedProfile
	// Legacy is the root-level profile; set when Shape is Legacy
	Legacy *Profile
}

// ResolveProfile picks the profile serving a caller. Exact candidate
// matches win, then case-insensitive matches, then the first profile of
// the spot. Legacy spots always resolve to their root-level profile.
func (s *Spot) ResolveProfile(inPosition bool, explicit string) (Resolution, bool) {
	if s.Shape == Legacy {
		if s.Legacy == nil {
			return Resolution{}, false
		}
		return Resolution{Key: LegacyProfileKey, Profile: s.Legacy}, true
	}
	if len(s.Profiles) == 0 {
		return Resolution{}, false
	}

	candidates := profileCandidates(inPosition, explicit)
	for _, c := range candidates {
		for _, np := range s.Profiles {
			if np.Key == c {
				return Resolution{Key: np.Key, Profile: np.Profile}, true
			}
		}
	}

	byLower := make(map[string]NamedProfile, len(s.Profiles))
	for _, np := range s.Profiles {
		byLower[strings.ToLower(np.Key)] = np
	}
	for _, c := range candidates {
		if np, ok := byLower[strings.ToLower(c)]; ok {
			return Resolution{Key: np.Key, Profile: np.Profile, Fallback: np.Key != c}, true
		}
	}

	first := s.Profiles[0]
	return Resolution{Key: first.Key, Profile: first.Profile, Fallback: true}, true
}

// Dataset is a read-only override dataset keyed by spot key string
type Dataset struct {
	Kind  Kind
	Meta  Meta
	Spots map[string]*Spot

	// Skipped lists spot keys dropped as malformed, sorted
	Skipped []string
}

// Empty returns a dataset with no spots
func Empty(kind Kind) *Dataset {
	return &Dataset{Kind: kind, Spots: map[string]*Spot{}}
}

// Len returns the number of usable spots
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Spots)
}

// Lookup returns the spot stored under key
func (d *Dataset) Lookup(key abstraction.SpotKey) (*Spot, bool) {
	if d == nil {
		return nil, false
	}
	s, ok := d.Spots[key.String()]
	return s, ok
}

// Match is a resolved override mix
type Match struct {
	// Key is "<spot key>#<profile key>:<node key>"
	Key             string
	Mix             [3]float64
	ProfileFallback bool
	NodeFallback    bool
}

// Resolve looks up a spot and resolves its profile and node mix
func (d *Dataset) Resolve(key abstraction.SpotKey, inPosition bool, profileKey string, path []string) (Match, bool) {
	spot, ok := d.Lookup(key)
	if !ok {
		return Match{}, false
	}
	res, ok := spot.ResolveProfile(inPosition, profileKey)
	if !ok {
		return Match{}, false
	}
	node := res.Profile.Node(path)
	return Match{
		Key:             fmt.Sprintf("%s#%s:%s", key, res.Key, node.Key),
		Mix:             node.Mix,
		ProfileFallback: res.Fallback,
		NodeFallback:    node.RootFallback,
	}, true
}

type rawDataset struct {
	Meta  Meta                       `json:"meta"`
	Spots map[string]json.RawMessage `json:"spots"`
}

type rawSpot struct {
	Street        string               `json:"street,omitempty"`
	Board         []string             `json:"board"`
	ActivePlayers int                  `json:"active_players,omitempty"`
	Pressure      int                  `json:"pressure_bucket"`
	SPR           int                  `json:"spr_bucket"`
	Position      int                  `json:"position_bucket"`
	Aggressor     int                  `json:"aggressor_bucket"`
	Profiles      json.RawMessage      `json:"profiles,omitempty"`
	RootKey       string               `json:"root_key,omitempty"`
	RootMix       []float64            `json:"root_mix_bp,omitempty"`
	NodeMix       map[string][]float64 `json:"node_mix_bp,omitempty"`
	Source        *Provenance          `json:"source,omitempty"`
}

// Parse decodes an override dataset. A malformed top level is an error;
// malformed spots are dropped and listed in Skipped.
func Parse(data []byte, kind Kind) (*Dataset, error) {
	var raw rawDataset
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s overrides: %w", kind, err)
	}

	d := &Dataset{Kind: kind, Meta: raw.Meta, Spots: make(map[string]*Spot, len(raw.Spots))}
	for key, body := range raw.Spots {
		spot, err := parseSpot(kind, key, body)
		if err != nil {
			d.Skipped = append(d.Skipped, key)
			continue
		}
		d.Spots[key] = spot
	}
	sort.Strings(d.Skipped)
	return d, nil
}

// LoadFile reads and parses an override dataset file
func LoadFile(path string, kind Kind) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, kind)
}

var errNoMix = errors.New("spot has neither profiles nor a root mix")

func parseSpot(kind Kind, key string, body json.RawMessage) (*Spot, error) {
	sk, err := abstraction.ParseSpotKey(key)
	if err != nil {
		return nil, err
	}
	if sk.String() != key {
		return nil, fmt.Errorf("spot key %q is not canonical", key)
	}
	switch kind {
	case River:
		if sk.Multiway() || sk.Street != abstraction.River {
			return nil, fmt.Errorf("spot key %q is not a river key", key)
		}
	case Multiway:
		if !sk.Multiway() || sk.Street == abstraction.Flop {
			return nil, fmt.Errorf("spot key %q is not a turn/river multiway key", key)
		}
	}

	var raw rawSpot
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	spot := &Spot{Key: sk, Board: raw.Board}
	profiles, err := decodeProfiles(raw.Profiles)
	if err != nil {
		return nil, err
	}
	switch {
	case len(profiles) > 0:
		spot.Shape = Profiled
		spot.Profiles = profiles
	case raw.RootMix != nil:
		spot.Shape = Legacy
		spot.Legacy = &Profile{
			RootKey: raw.RootKey,
			RootMix: raw.RootMix,
			NodeMix: raw.NodeMix,
			Source:  raw.Source,
		}
	default:
		return nil, errNoMix
	}
	return spot, nil
}

// decodeProfiles reads the profiles object preserving key order, since
// the first profile is the last-resort fallback.
func decodeProfiles(raw json.RawMessage) ([]NamedProfile, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("profiles must be an object")
	}

	var out []NamedProfile
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected profile key %v", tok)
		}
		var p Profile
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("profile %q: %w", key, err)
		}
		if p.RootMix == nil {
			return nil, fmt.Errorf("profile %q: missing root_mix_bp", key)
		}
		// A repeated key keeps its first position and its last value
		if i, dup := index[key]; dup {
			out[i].Profile = &p
			continue
		}
		index[key] = len(out)
		out = append(out, NamedProfile{Key: key, Profile: &p})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}
