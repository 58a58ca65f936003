package resolver

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/behrlich/postflop-solver/pkg/abstraction"
	"github.com/behrlich/postflop-solver/pkg/cards"
	"github.com/behrlich/postflop-solver/pkg/equity"
)

// EquityCache memoizes hero equity per hole cards and board. River
// equities are enumerated exactly; earlier streets use Monte Carlo.
// It is safe for concurrent use.
type EquityCache struct {
	samples int
	eval    equity.Evaluator

	mu  sync.Mutex // guards est
	est *equity.Estimator

	cache *lru.Cache[string, float64]
}

// NewEquityCache creates a cache holding up to size entries
func NewEquityCache(size, samples int, seed int64, eval equity.Evaluator) (*EquityCache, error) {
	if samples <= 0 {
		return nil, errors.New("equity samples must be > 0")
	}
	cache, err := lru.New[string, float64](size)
	if err != nil {
		return nil, fmt.Errorf("create equity cache: %w", err)
	}
	if eval == nil {
		eval = equity.NativeEvaluator{}
	}
	return &EquityCache{
		samples: samples,
		eval:    eval,
		est:     equity.NewEstimator(seed, eval),
		cache:   cache,
	}, nil
}

// Equity returns the hero's equity against a random holding
func (c *EquityCache) Equity(hole [2]cards.Card, board []cards.Card) (float64, error) {
	switch len(board) {
	case 0, 3, 4, 5:
	default:
		return 0, fmt.Errorf("board must have 0, 3, 4 or 5 cards, got %d", len(board))
	}
	var seen uint64
	for _, card := range append(hole[:], board...) {
		if !card.Valid() || seen&(1<<card) != 0 {
			return 0, fmt.Errorf("invalid or duplicate card %s", card)
		}
		seen |= 1 << card
	}

	key := cacheKey(hole, board)
	if eq, ok := c.cache.Get(key); ok {
		return eq, nil
	}

	var eq float64
	if len(board) == 5 {
		res, err := equity.Enumerate(c.eval, hole, board)
		if err != nil {
			return 0, err
		}
		eq = res.Equity()
	} else {
		c.mu.Lock()
		eq = c.est.Estimate(hole, board, c.samples).Equity()
		c.mu.Unlock()
	}

	c.cache.Add(key, eq)
	return eq, nil
}

// Len returns the number of cached equities
func (c *EquityCache) Len() int {
	return c.cache.Len()
}

// cacheKey is independent of hole card order and board order
func cacheKey(hole [2]cards.Card, board []cards.Card) string {
	a, b := hole[0], hole[1]
	if a > b {
		a, b = b, a
	}
	var sb strings.Builder
	sb.WriteString(a.String())
	sb.WriteString(b.String())
	sb.WriteByte('|')
	sb.WriteString(abstraction.BoardKey(board))
	return sb.String()
}
