package ledger

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const transactionIDPrefix = "tx_"

// IDGenerator issues transaction identifiers that are unique for the lifetime
// of the process. Identifiers are ULIDs drawn from a shared monotonic entropy
// source, and the timestamp never moves backwards, so two calls within the
// same millisecond (or across a clock step back) still yield distinct,
// increasing values.
type IDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	lastMS  uint64
}

// NewIDGenerator builds a generator seeded from crypto/rand.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Next returns a new identifier stamped with t.
func (g *IDGenerator) Next(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := ulid.Timestamp(t)
	if ms < g.lastMS {
		ms = g.lastMS
	}
	g.lastMS = ms

	return transactionIDPrefix + ulid.MustNew(ms, g.entropy).String()
}
