package scenario

import (
	"fmt"
	"math/rand"

	"github.com/behrlich/postflop-solver/pkg/abstraction"
	"github.com/behrlich/postflop-solver/pkg/cards"
)

// Scenario is one dealt hand on a board of the pool's texture, with the
// hero's Monte Carlo equity against a random holding.
type Scenario struct {
	Hole   [2]cards.Card
	Board  []cards.Card
	Equity float64
}

// Pool holds the scenarios of one (street, wetness) texture, binned by
// strength bucket. Every bucket is non-empty once the pool is built.
type Pool struct {
	Street    abstraction.Street
	Wetness   int
	Generated int
	Attempts  int
	Coverage  [abstraction.StrengthBuckets]BucketCoverage

	bins [abstraction.StrengthBuckets][]Scenario
	all  []Scenario
}

// PoolKey names a texture pool, e.g. "turn|w2"
func PoolKey(street abstraction.Street, wetness int) string {
	return fmt.Sprintf("%s|w%d", street, wetness)
}

// Key returns the pool's texture key
func (p *Pool) Key() string {
	return PoolKey(p.Street, p.Wetness)
}

// Bucket returns the scenarios serving a strength bucket
func (p *Pool) Bucket(strength int) []Scenario {
	if strength < 0 || strength >= abstraction.StrengthBuckets {
		return nil
	}
	return p.bins[strength]
}

// All returns every scenario sampled for the texture
func (p *Pool) All() []Scenario {
	return p.all
}

// Degraded returns the coverage of buckets served by borrowed or global scenarios
func (p *Pool) Degraded() []BucketCoverage {
	var out []BucketCoverage
	for _, c := range p.Coverage {
		if c.Kind.Degraded() {
			out = append(out, c)
		}
	}
	return out
}

// Pick draws n scenarios from a strength bucket uniformly with replacement
func (p *Pool) Pick(rng *rand.Rand, strength, n int) []Scenario {
	bin := p.Bucket(strength)
	if len(bin) == 0 || n <= 0 {
		return nil
	}
	out := make([]Scenario, n)
	for i := range out {
		out[i] = bin[rng.Intn(len(bin))]
	}
	return out
}

// nearestBucket finds the closest non-empty bucket to target, checking the
// lower neighbour before the higher one at each distance. It returns -1 when
// every bucket is empty.
func nearestBucket(bins *[abstraction.StrengthBuckets][]Scenario, target int) (bucket, distance int) {
	if len(bins[target]) > 0 {
		return target, 0
	}
	for d := 1; d < abstraction.StrengthBuckets; d++ {
		if lo := target - d; lo >= 0 && len(bins[lo]) > 0 {
			return lo, d
		}
		if hi := target + d; hi < abstraction.StrengthBuckets && len(bins[hi]) > 0 {
			return hi, d
		}
	}
	return -1, 0
}
