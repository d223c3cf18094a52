package arbitrage

import (
	"sync"

	"github.com/hxuan190/arb-engine/internal/domain"
)

// History keeps the most recent cycle reports in a fixed size ring.
type History struct {
	mu    sync.RWMutex
	buf   []domain.CycleReport
	next  int
	count int
	stats domain.CycleStats
}

func NewHistory(size int) *History {
	if size <= 0 {
		size = 1
	}
	return &History{
		buf:   make([]domain.CycleReport, size),
		stats: domain.CycleStats{ByOutcome: make(map[domain.Outcome]int)},
	}
}

func (h *History) Add(r domain.CycleReport) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf[h.next] = r
	h.next = (h.next + 1) % len(h.buf)
	if h.count < len(h.buf) {
		h.count++
	}

	h.stats.Total++
	h.stats.ByOutcome[r.Outcome]++
	if h.stats.Total == 1 || r.Profit > h.stats.BestProfit {
		h.stats.BestProfit = r.Profit
	}
	if r.Outcome == domain.OutcomeSubmitted {
		h.stats.TipsPaid += r.Tip
	}
	started := r.StartedAt
	h.stats.LastCycleAt = &started
}

// Recent returns up to limit reports, newest first. A limit <= 0 returns
// everything retained.
func (h *History) Recent(limit int) []domain.CycleReport {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if limit <= 0 || limit > h.count {
		limit = h.count
	}
	out := make([]domain.CycleReport, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (h.next - i + len(h.buf)) % len(h.buf)
		out = append(out, h.buf[idx])
	}
	return out
}

// Stats covers every cycle seen, not only the retained ones.
func (h *History) Stats() domain.CycleStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := h.stats
	stats.ByOutcome = make(map[domain.Outcome]int, len(h.stats.ByOutcome))
	for k, v := range h.stats.ByOutcome {
		stats.ByOutcome[k] = v
	}
	return stats
}
