package engine

import (
	"container/heap"
	"sort"
)

// priceLevel is one price node in a side of the book: a price plus the
// FIFO of orders resting there. This is the unit the original C++ engine
// kept in a std::map<Price, OrderQueue>; here it is the element of a
// container/heap so "best price" is always the root.
type priceLevel struct {
	price     int64
	isBid     bool
	queue     OrderQueue
	heapIndex int
}

// levelHeap orders priceLevels best-first: highest price first for the
// bid side, lowest price first for the ask side. It is the direct
// generalization of the teacher's order-level priceTimeQueue, moved up
// one layer so each heap entry is a price node rather than a single order.
type levelHeap []*priceLevel

func (h levelHeap) Len() int { return len(h) }

func (h levelHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.isBid {
		return a.price > b.price
	}
	return a.price < b.price
}

func (h levelHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *levelHeap) Push(x interface{}) {
	lvl := x.(*priceLevel)
	lvl.heapIndex = len(*h)
	*h = append(*h, lvl)
}

func (h *levelHeap) Pop() interface{} {
	old := *h
	n := len(old)
	lvl := old[n-1]
	old[n-1] = nil
	lvl.heapIndex = -1
	*h = old[:n-1]
	return lvl
}

// bookSide is one half of an OrderBook: the heap of price levels plus a
// price-keyed index so cancel and insert can find a level in O(1)
// without walking the heap.
type bookSide struct {
	isBid  bool
	heap   levelHeap
	levels map[int64]*priceLevel
}

func newBookSide(isBid bool) *bookSide {
	s := &bookSide{isBid: isBid, levels: make(map[int64]*priceLevel)}
	heap.Init(&s.heap)
	return s
}

func (s *bookSide) peek() *priceLevel {
	if len(s.heap) == 0 {
		return nil
	}
	return s.heap[0]
}

func (s *bookSide) levelCount() int { return len(s.heap) }

func (s *bookSide) getOrCreate(price int64) *priceLevel {
	if lvl, ok := s.levels[price]; ok {
		return lvl
	}
	lvl := &priceLevel{price: price, isBid: s.isBid}
	s.levels[price] = lvl
	heap.Push(&s.heap, lvl)
	return lvl
}

// removeTop pops the best price node. Callers only use this once they've
// confirmed the top node's queue emptied out — no-empty-price-node is an
// invariant of the book, never of the heap by itself.
func (s *bookSide) removeTop() {
	lvl := heap.Pop(&s.heap).(*priceLevel)
	delete(s.levels, lvl.price)
}

// removeLevel drops an arbitrary (possibly non-root) price node, used
// when a cancel empties a level that isn't currently the best price.
func (s *bookSide) removeLevel(lvl *priceLevel) {
	heap.Remove(&s.heap, lvl.heapIndex)
	delete(s.levels, lvl.price)
}

// sortedLevels returns the side's price nodes ordered best-first. The
// heap array itself is only partially ordered, so snapshot reads sort a
// copy rather than relying on heap internals — snapshots are rare next
// to matches, so the O(n log n) here doesn't matter.
func (s *bookSide) sortedLevels() []*priceLevel {
	out := make([]*priceLevel, len(s.heap))
	copy(out, s.heap)
	sortLevels(out)
	return out
}

func sortLevels(levels []*priceLevel) {
	sort.Slice(levels, func(i, j int) bool {
		return levelLess(levels[i], levels[j])
	})
}

func levelLess(a, b *priceLevel) bool {
	if a.isBid {
		return a.price > b.price
	}
	return a.price < b.price
}
