package scenario

import (
	"errors"
)

// Config controls how many scenarios are sampled per texture and how hard
// the builder tries to fill empty strength buckets.
type Config struct {
	// Candidates is the number of accepted scenarios the main pass aims for.
	Candidates int

	// EquitySamples is the Monte Carlo sample count behind each scenario's equity.
	EquitySamples int

	// MaxAttempts caps main-pass deals, including those rejected for texture.
	// Zero means Candidates * 80.
	MaxAttempts int

	// TopUpTarget is how many scenarios a bucket left empty by the main pass
	// is refilled with.
	TopUpTarget int

	// MaxTopUpAttempts caps deals per empty bucket during top-up.
	MaxTopUpAttempts int

	// RequireCoverage turns borrowed and global-fallback buckets into errors
	// instead of logged degradations.
	RequireCoverage bool
}

// DefaultConfig returns the sampling parameters used for production tables.
func DefaultConfig() Config {
	return Config{
		Candidates:       4000,
		EquitySamples:    160,
		TopUpTarget:      50,
		MaxTopUpAttempts: 180000,
	}
}

// attempts returns the effective main-pass budget
func (c Config) attempts() int {
	if c.MaxAttempts > 0 {
		return c.MaxAttempts
	}
	return c.Candidates * 80
}

// Validate ensures the sampling parameters are usable.
func (c Config) Validate() error {
	if c.Candidates <= 0 {
		return errors.New("candidates must be > 0")
	}
	if c.EquitySamples <= 0 {
		return errors.New("equity samples must be > 0")
	}
	if c.MaxAttempts < 0 {
		return errors.New("max attempts cannot be negative")
	}
	if c.TopUpTarget < 0 {
		return errors.New("top-up target cannot be negative")
	}
	if c.MaxTopUpAttempts < 0 {
		return errors.New("top-up attempts cannot be negative")
	}
	return nil
}
