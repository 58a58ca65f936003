package scenario

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/behrlich/postflop-solver/pkg/abstraction"
	"github.com/behrlich/postflop-solver/pkg/cards"
	"github.com/behrlich/postflop-solver/pkg/equity"
)

// ExhaustionError reports a texture whose pool could not be populated.
// Bucket is -1 when the main pass produced nothing at all.
type ExhaustionError struct {
	Street   abstraction.Street
	Wetness  int
	Bucket   int
	Attempts int
}

func (e *ExhaustionError) Error() string {
	if e.Bucket < 0 {
		return fmt.Sprintf("no scenarios generated for %s/wetness=%d after %d attempts", e.Street, e.Wetness, e.Attempts)
	}
	return fmt.Sprintf("no scenarios for %s/wetness=%d strength bucket %d after %d attempts", e.Street, e.Wetness, e.Bucket, e.Attempts)
}

// Builder samples texture pools. A Builder owns its random source and is
// not safe for concurrent use; build pools in parallel with one Builder each.
type Builder struct {
	cfg  Config
	rng  *rand.Rand
	est  *equity.Estimator
	log  zerolog.Logger
	deck []cards.Card
}

// Option configures a Builder
type Option func(*Builder)

// WithLogger routes coverage diagnostics to log
func WithLogger(log zerolog.Logger) Option {
	return func(b *Builder) {
		b.log = log
	}
}

// WithEvaluator selects the showdown evaluator behind equity estimates
func WithEvaluator(eval equity.Evaluator) Option {
	return func(b *Builder) {
		b.est = equity.NewEstimatorWithRand(b.rng, eval)
	}
}

// NewBuilder creates a pool builder with a seeded random source
func NewBuilder(cfg Config, seed int64, opts ...Option) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario config: %w", err)
	}
	rng := rand.New(rand.NewSource(seed))
	b := &Builder{
		cfg:  cfg,
		rng:  rng,
		est:  equity.NewEstimatorWithRand(rng, nil),
		log:  zerolog.Nop(),
		deck: cards.Deck(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Build samples the pool for one street and wetness bucket
func (b *Builder) Build(ctx context.Context, street abstraction.Street, wetness int) (*Pool, error) {
	if !street.Postflop() {
		return nil, fmt.Errorf("cannot build scenario pool for %s", street)
	}
	if wetness < 0 || wetness > street.MaxWetness() {
		return nil, fmt.Errorf("wetness %d out of range for %s (max %d)", wetness, street, street.MaxWetness())
	}

	pool := &Pool{Street: street, Wetness: wetness}
	log := b.log.With().Str("texture", pool.Key()).Logger()

	// Main pass
	budget := b.cfg.attempts()
	for len(pool.all) < b.cfg.Candidates && pool.Attempts < budget {
		if pool.Attempts%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		pool.Attempts++
		sc, bucket, ok := b.sample(street, wetness)
		if !ok {
			continue
		}
		pool.bins[bucket] = append(pool.bins[bucket], sc)
		pool.all = append(pool.all, sc)
	}

	if len(pool.all) == 0 {
		return nil, &ExhaustionError{Street: street, Wetness: wetness, Bucket: -1, Attempts: pool.Attempts}
	}

	var kinds [abstraction.StrengthBuckets]Source

	// Top up buckets the main pass left empty
	for bucket := range pool.bins {
		if len(pool.bins[bucket]) > 0 {
			continue
		}
		tries := 0
		for len(pool.bins[bucket]) < b.cfg.TopUpTarget && tries < b.cfg.MaxTopUpAttempts {
			if tries%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			tries++
			sc, got, ok := b.sample(street, wetness)
			if !ok || got != bucket {
				continue
			}
			pool.bins[bucket] = append(pool.bins[bucket], sc)
			pool.all = append(pool.all, sc)
		}
		pool.Attempts += tries
		if len(pool.bins[bucket]) > 0 {
			kinds[bucket] = Backfilled
			log.Debug().Int("bucket", bucket).Int("size", len(pool.bins[bucket])).Int("attempts", tries).Msg("bucket backfilled")
		}
	}
	pool.Generated = len(pool.all)

	// Borrow for whatever is still empty. Sources are chosen against the
	// sampled bins only, never against bins borrowed earlier in this loop.
	sampled := pool.bins
	for bucket := range pool.bins {
		if len(sampled[bucket]) > 0 {
			pool.Coverage[bucket] = BucketCoverage{
				Target:       bucket,
				SourceBucket: bucket,
				Kind:         kinds[bucket],
				Size:         len(sampled[bucket]),
			}
			continue
		}

		if b.cfg.RequireCoverage {
			return nil, &ExhaustionError{Street: street, Wetness: wetness, Bucket: bucket, Attempts: pool.Attempts}
		}

		src, dist := nearestBucket(&sampled, bucket)
		cov := BucketCoverage{Target: bucket}
		if src >= 0 {
			pool.bins[bucket] = sampled[src]
			cov.SourceBucket, cov.Kind, cov.Distance = src, Borrowed, dist
		} else {
			pool.bins[bucket] = pool.all
			cov.SourceBucket, cov.Kind = bucket, GlobalFallback
		}
		cov.Size = len(pool.bins[bucket])
		pool.Coverage[bucket] = cov

		log.Warn().Int("bucket", bucket).Str("source", cov.Kind.String()).
			Int("from", cov.SourceBucket).Int("distance", cov.Distance).
			Msg("strength bucket has no native scenarios")
	}

	log.Debug().Int("generated", pool.Generated).Int("attempts", pool.Attempts).Msg("texture pool built")
	return pool, nil
}

// sample deals one board and hole pair, rejecting boards of the wrong texture
func (b *Builder) sample(street abstraction.Street, wetness int) (Scenario, int, bool) {
	n := street.BoardSize()
	for i := 0; i < n+2; i++ {
		j := i + b.rng.Intn(len(b.deck)-i)
		b.deck[i], b.deck[j] = b.deck[j], b.deck[i]
	}

	board := b.deck[:n]
	if abstraction.Wetness(board) != wetness {
		return Scenario{}, 0, false
	}

	sc := Scenario{
		Hole:  [2]cards.Card{b.deck[n], b.deck[n+1]},
		Board: append([]cards.Card(nil), board...),
	}
	sc.Equity = b.est.Estimate(sc.Hole, sc.Board, b.cfg.EquitySamples).Equity()
	return sc, abstraction.StrengthBucket(sc.Equity), true
}
