package scenario

import (
	"fmt"
)

// Source records how a strength bucket's scenarios were obtained
type Source uint8

const (
	// Exact buckets were filled by the main sampling pass.
	Exact Source = iota
	// Backfilled buckets were empty after the main pass and filled by top-up sampling.
	Backfilled
	// Borrowed buckets reuse the nearest non-empty bucket's scenarios.
	Borrowed
	// GlobalFallback buckets use every scenario of the texture.
	GlobalFallback
)

func (s Source) String() string {
	switch s {
	case Exact:
		return "exact"
	case Backfilled:
		return "backfilled"
	case Borrowed:
		return "borrowed"
	case GlobalFallback:
		return "global"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Source) UnmarshalText(text []byte) error {
	switch string(text) {
	case "exact":
		*s = Exact
	case "backfilled":
		*s = Backfilled
	case "borrowed":
		*s = Borrowed
	case "global":
		*s = GlobalFallback
	default:
		return fmt.Errorf("unknown coverage source %q", text)
	}
	return nil
}

// Degraded reports whether the bucket is served by another bucket's scenarios
func (s Source) Degraded() bool {
	return s == Borrowed || s == GlobalFallback
}

// BucketCoverage describes one strength bucket of a texture pool.
//
// SourceBucket is the bucket whose scenarios were used: the target itself
// unless borrowed, and the target for GlobalFallback as well. Distance is
// set only for Borrowed.
type BucketCoverage struct {
	Target       int    `json:"target"`
	SourceBucket int    `json:"source"`
	Kind         Source `json:"kind"`
	Distance     int    `json:"distance,omitempty"`
	Size         int    `json:"size"`
}

// String renders e.g. "s3<-s2 borrowed(1) n=57"
func (c BucketCoverage) String() string {
	switch c.Kind {
	case Borrowed:
		return fmt.Sprintf("s%d<-s%d borrowed(%d) n=%d", c.Target, c.SourceBucket, c.Distance, c.Size)
	default:
		return fmt.Sprintf("s%d %s n=%d", c.Target, c.Kind, c.Size)
	}
}
