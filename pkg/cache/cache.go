// Package cache stores computed hole sequences keyed by their inputs.
// Sequencing is deterministic, so a (polygon, constraints) pair always
// maps to the same sequence; re-running a layout reuses cached
// per-polygon results instead of recomputing offsets.
package cache

import (
	"context"
	"time"
)

// TTLs per entry kind. Sequences are pure functions of their key, so
// their TTL only bounds disk growth.
const (
	TTLSequence = 30 * 24 * time.Hour
	TTLProgram  = 7 * 24 * time.Hour
)

// Cache is the storage backend interface. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl stores without expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys from sequencing inputs.
type Keyer interface {
	// SequenceKey identifies one polygon's hole sequence: the polygon's
	// vertices plus the planner constraints.
	SequenceKey(vertices any, opts SequenceKeyOpts) string

	// ProgramKey identifies a rendered NC program for an assembled
	// layout sequence.
	ProgramKey(sequenceHash string, opts ProgramKeyOpts) string
}

// SequenceKeyOpts are the planner inputs that change the sequence.
type SequenceKeyOpts struct {
	MinInitial    float64 `json:"min_initial"`
	TargetInitial float64 `json:"target_initial"`
	TargetFinal   float64 `json:"target_final"`
}

// ProgramKeyOpts are the writer inputs that change the program text.
type ProgramKeyOpts struct {
	Dialect     string  `json:"dialect"`
	Policy      string  `json:"policy"`
	PulseCount  int     `json:"pulse_count"`
	FrequencyHz int     `json:"frequency_hz"`
	Feedrate    float64 `json:"feedrate"`
}

// DefaultKeyer hashes inputs into namespaced keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SequenceKey implements Keyer.
func (k *DefaultKeyer) SequenceKey(vertices any, opts SequenceKeyOpts) string {
	return hashKey("seq", vertices, opts)
}

// ProgramKey implements Keyer.
func (k *DefaultKeyer) ProgramKey(sequenceHash string, opts ProgramKeyOpts) string {
	return hashKey("prog", sequenceHash, opts)
}
