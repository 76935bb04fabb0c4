package ingress

import (
	"fmt"
	"sync/atomic"
)

// IDGenerator hands out monotonically increasing order IDs for requests
// that don't bring their own. Safe for concurrent use across handlers.
type IDGenerator struct {
	seq    atomic.Int64
	prefix string
}

func NewIDGenerator(prefix string) *IDGenerator {
	return &IDGenerator{prefix: prefix}
}

func (g *IDGenerator) Next() string {
	n := g.seq.Add(1)
	return fmt.Sprintf("%s-%d", g.prefix, n)
}
