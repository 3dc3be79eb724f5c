package utils

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NewID generates a new random identifier
func NewID() string {
	return uuid.NewString()
}

// ParseUUID parses a string into a UUID
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// SaleIDGenerator issues time-derived sale identifiers of the form
// SALE-<unix millis>. Two calls within the same millisecond get
// consecutive values, so identifiers never repeat within a process.
type SaleIDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewSaleIDGenerator creates a generator reading time from now.
// A nil now uses time.Now.
func NewSaleIDGenerator(now func() time.Time) *SaleIDGenerator {
	if now == nil {
		now = time.Now
	}
	return &SaleIDGenerator{now: now}
}

// Next returns a fresh identifier
func (g *SaleIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return "SALE-" + strconv.FormatInt(ms, 10)
}
