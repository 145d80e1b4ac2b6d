package balancer

import (
	"fmt"
	"strings"
)

// Strategy selects the algorithm used by Balancer.
type Strategy int

const (
	// RoundRobinStrategy selects up nodes one after another.
	RoundRobinStrategy Strategy = iota
	// RandomStrategy selects up nodes randomly.
	RandomStrategy
	// SmoothWeightedStrategy selects up nodes proportionally to their
	// weights using smooth weighted round robin.
	SmoothWeightedStrategy
	// ConsistentHashStrategy selects nodes by consistent hashing of a key.
	// It ignores nodes' down flag.
	ConsistentHashStrategy
)

var strategyNames = [...]string{
	RoundRobinStrategy:     "round_robin",
	RandomStrategy:         "random",
	SmoothWeightedStrategy: "smooth_weighted",
	ConsistentHashStrategy: "consistent_hash",
}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
	return strategyNames[s]
}

// ParseStrategy returns the strategy named s. Dashes and underscores are
// interchangeable and case is ignored.
func ParseStrategy(s string) (Strategy, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for i, x := range strategyNames {
		if x == name {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("balancer: unknown strategy %q: %w", s, ErrInvalidParameter)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(p []byte) error {
	x, err := ParseStrategy(string(p))
	if err != nil {
		return err
	}
	*s = x
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(strategyNames) {
		return nil, fmt.Errorf("balancer: unknown strategy %d: %w", int(s), ErrInvalidParameter)
	}
	return []byte(strategyNames[s]), nil
}
