package dataset

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/behrlich/postflop-solver/pkg/abstraction"
	"github.com/behrlich/postflop-solver/pkg/equity"
	"github.com/behrlich/postflop-solver/pkg/scenario"
	"github.com/behrlich/postflop-solver/pkg/solver"
)

// Config controls a table build
type Config struct {
	Iterations        int
	ScenariosPerState int
	Seed              int64
	Workers           int    // 0 means GOMAXPROCS
	Evaluator         string // "native" or "table"
	Scenario          scenario.Config
}

// DefaultConfig returns the parameters used for production tables
func DefaultConfig() Config {
	return Config{
		Iterations:        solver.DefaultIterations,
		ScenariosPerState: 120,
		Seed:              1,
		Scenario:          scenario.DefaultConfig(),
	}
}

// Validate ensures the configuration is usable
func (c Config) Validate() error {
	if c.Iterations <= 0 {
		return errors.New("iterations must be > 0")
	}
	if c.ScenariosPerState <= 0 {
		return errors.New("scenarios per state must be > 0")
	}
	if c.Workers < 0 {
		return errors.New("workers cannot be negative")
	}
	if _, ok := equity.EvaluatorByName(c.Evaluator); !ok {
		return fmt.Errorf("unknown evaluator %q", c.Evaluator)
	}
	return c.Scenario.Validate()
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Phase names a stage of the build
type Phase string

const (
	PhasePools  Phase = "pools"
	PhaseStates Phase = "states"
)

// Progress is emitted as pools and states complete
type Progress struct {
	Phase Phase
	Done  int
	Total int
}

// Builder computes a full strategy table
type Builder struct {
	cfg  Config
	eval equity.Evaluator
	log  zerolog.Logger
	now  func() time.Time
}

// Option configures a Builder
type Option func(*Builder)

// WithLogger routes build diagnostics to log
func WithLogger(log zerolog.Logger) Option {
	return func(b *Builder) {
		b.log = log
	}
}

// NewBuilder creates a table builder
func NewBuilder(cfg Config, opts ...Option) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid build config: %w", err)
	}
	eval, _ := equity.EvaluatorByName(cfg.Evaluator)
	b := &Builder{
		cfg:  cfg,
		eval: eval,
		log:  zerolog.Nop(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Coordinates enumerates every abstract state in build order:
// street, strength, pressure, spr, position, aggressor, wetness.
func Coordinates() []abstraction.Coords {
	out := make([]abstraction.Coords, 0, StateCount)
	for _, street := range abstraction.PostflopStreets {
		for s := 0; s < abstraction.StrengthBuckets; s++ {
			for p := 0; p < abstraction.PressureBuckets; p++ {
				for r := 0; r < abstraction.SPRBuckets; r++ {
					for i := 0; i < abstraction.PositionBuckets; i++ {
						for a := 0; a < abstraction.AggressorBuckets; a++ {
							for w := 0; w < abstraction.WetnessBuckets; w++ {
								out = append(out, abstraction.Coords{
									Street: street, Strength: s, Pressure: p, SPR: r,
									Wetness: w, Position: i, Aggressor: a,
								})
							}
						}
					}
				}
			}
		}
	}
	return out
}

// StateCount is the number of states in a complete table
const StateCount = 3 * abstraction.StrengthBuckets * abstraction.PressureBuckets * abstraction.SPRBuckets *
	abstraction.PositionBuckets * abstraction.AggressorBuckets * abstraction.WetnessBuckets

type poolTask struct {
	street  abstraction.Street
	wetness int
}

// Build samples every texture pool, then solves every state. The result
// depends only on the config, never on the worker count. A nil progress
// callback is allowed; calls to it are serialized.
func (b *Builder) Build(ctx context.Context, progress func(Progress)) (*Table, error) {
	start := b.now()
	report := newTracker(progress)

	pools, err := b.buildPools(ctx, report)
	if err != nil {
		return nil, err
	}

	coords := Coordinates()
	mixes := make([]State, len(coords))
	solved := make([]bool, len(coords))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.workers())
	mccfr := solver.NewMCCFR(b.cfg.Iterations)

	const chunk = 96
	for lo := 0; lo < len(coords); lo += chunk {
		lo, hi := lo, min(lo+chunk, len(coords))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				c := coords[i]
				pool := pools[poolTask{c.Street, min(c.Wetness, c.Street.MaxWetness())}]
				key := c.Key()

				rng := rand.New(rand.NewSource(deriveSeed(b.cfg.Seed, key)))
				res, err := mccfr.Solve(pool.Pick(rng, c.Strength, b.cfg.ScenariosPerState), solver.NewParams(c))
				if errors.Is(err, solver.ErrNoScenarios) {
					continue
				}
				if err != nil {
					return fmt.Errorf("solve %s: %w", key, err)
				}
				mixes[i] = State{MixBP: res.Mix}
				solved[i] = true
			}
			report.add(PhaseStates, hi-lo, len(coords))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table := NewTable()
	for i, c := range coords {
		if solved[i] {
			table.States[c.Key()] = mixes[i]
		} else {
			table.Meta.Unreachable = append(table.Meta.Unreachable, c.Key())
		}
	}
	sort.Strings(table.Meta.Unreachable)
	b.fillMeta(table, pools)

	b.log.Info().
		Int("states", table.Len()).
		Int("unreachable", len(table.Meta.Unreachable)).
		Dur("elapsed", b.now().Sub(start)).
		Str("run_id", table.Meta.RunID).
		Msg("strategy table built")
	return table, nil
}

func (b *Builder) buildPools(ctx context.Context, report *tracker) (map[poolTask]*scenario.Pool, error) {
	var tasks []poolTask
	for _, street := range abstraction.PostflopStreets {
		for w := 0; w <= street.MaxWetness(); w++ {
			tasks = append(tasks, poolTask{street, w})
		}
	}

	results := make([]*scenario.Pool, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.workers())

	for i, task := range tasks {
		g.Go(func() error {
			key := scenario.PoolKey(task.street, task.wetness)
			pb, err := scenario.NewBuilder(b.cfg.Scenario, deriveSeed(b.cfg.Seed, key),
				scenario.WithLogger(b.log.With().Str("pool", key).Logger()),
				scenario.WithEvaluator(b.eval))
			if err != nil {
				return err
			}
			pool, err := pb.Build(gctx, task.street, task.wetness)
			if err != nil {
				return fmt.Errorf("build pool %s: %w", key, err)
			}
			results[i] = pool
			b.log.Debug().Str("pool", key).Int("generated", pool.Generated).Int("attempts", pool.Attempts).Msg("pool ready")
			report.add(PhasePools, 1, len(tasks))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pools := make(map[poolTask]*scenario.Pool, len(tasks))
	for i, task := range tasks {
		pools[task] = results[i]
	}
	return pools, nil
}

func (b *Builder) fillMeta(t *Table, pools map[poolTask]*scenario.Pool) {
	cfg := b.cfg
	t.Meta.Iterations = cfg.Iterations
	t.Meta.Sampling = &Sampling{
		TextureCandidates:   cfg.Scenario.Candidates,
		EquitySamples:       cfg.Scenario.EquitySamples,
		ScenariosPerState:   cfg.ScenariosPerState,
		MissingBucketTarget: cfg.Scenario.TopUpTarget,
	}
	t.Meta.TextureCoverage = make(map[string]TextureCoverage, len(pools))
	for _, pool := range pools {
		t.Meta.TextureCoverage[pool.Key()] = TextureCoverage{
			Generated: pool.Generated,
			Attempts:  pool.Attempts,
			Buckets:   append([]scenario.BucketCoverage(nil), pool.Coverage[:]...),
		}
	}
	t.Meta.GeneratedAt = b.now().UTC().Format(time.RFC3339)
	t.Meta.RunID = uuid.NewString()
	t.Meta.Seed = cfg.Seed
}

// tracker serializes progress callbacks from worker goroutines
type tracker struct {
	mu   sync.Mutex
	fn   func(Progress)
	done map[Phase]int
}

func newTracker(fn func(Progress)) *tracker {
	return &tracker{fn: fn, done: make(map[Phase]int)}
}

func (t *tracker) add(phase Phase, n, total int) {
	if t.fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done[phase] += n
	t.fn(Progress{Phase: phase, Done: t.done[phase], Total: total})
}

// deriveSeed gives every task its own stream so results do not depend on
// scheduling order
func deriveSeed(seed int64, key string) int64 {
	h := fnv.New64a()
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(seed >> (8 * i))
	}
	h.Write(buf[:])
	h.Write([]byte(key))
	return int64(h.Sum64())
}
