package decision

import "sync/atomic"

// nanosPerDollar converts between float dollar amounts and the integer
// nanodollar representation used so cost accumulation stays atomic.
const nanosPerDollar = 1e9

// Metrics tracks per-tier decision counts and accumulated spend.  All
// counters are atomic; one Metrics instance is safe to share across
// concurrent Decide calls.
type Metrics struct {
	tier1 atomic.Int64
	tier2 atomic.Int64
	tier3 atomic.Int64
	tier4 atomic.Int64
	none  atomic.Int64

	accepted   atomic.Int64
	rejected   atomic.Int64
	held       atomic.Int64
	costNanos  atomic.Int64
	totalCount atomic.Int64
}

// NewMetrics returns a zeroed Metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Record registers one finished decision.  Default decisions count under
// "none" so tier counters only reflect tiers that actually evaluated.
func (m *Metrics) Record(d Decision) {
	if m == nil {
		return
	}

	switch {
	case d.Default:
		m.none.Add(1)
	case d.Tier == Tier1Rules:
		m.tier1.Add(1)
	case d.Tier == Tier2Patterns:
		m.tier2.Add(1)
	case d.Tier == Tier3Embeddings:
		m.tier3.Add(1)
	case d.Tier == Tier4LLM:
		m.tier4.Add(1)
	default:
		m.none.Add(1)
	}

	switch d.Outcome {
	case Accept:
		m.accepted.Add(1)
	case Hold:
		m.held.Add(1)
	default:
		m.rejected.Add(1)
	}

	m.costNanos.Add(int64(d.Cost * nanosPerDollar))
	m.totalCount.Add(1)
}

// TotalDecisions returns the number of recorded decisions.
func (m *Metrics) TotalDecisions() int64 {
	return m.totalCount.Load()
}

// TotalCost returns the accumulated spend in dollars.
func (m *Metrics) TotalCost() float64 {
	return float64(m.costNanos.Load()) / nanosPerDollar
}

// CostPerDecision returns the average spend per decision, zero when nothing
// has been recorded.
func (m *Metrics) CostPerDecision() float64 {
	n := m.totalCount.Load()
	if n == 0 {
		return 0
	}
	return m.TotalCost() / float64(n)
}

// Snapshot is a point-in-time copy of the counters, for stats endpoints and
// logs.
type Snapshot struct {
	TierCounts      map[string]int64 `json:"tier_counts"`
	Accepted        int64            `json:"accepted"`
	Rejected        int64            `json:"rejected"`
	Held            int64            `json:"held"`
	TotalDecisions  int64            `json:"total_decisions"`
	TotalCost       float64          `json:"total_cost"`
	CostPerDecision float64          `json:"cost_per_decision"`
}

// Snapshot copies the counters.  Individual loads are atomic; the snapshot
// as a whole is approximate under concurrent writes, which is fine for
// reporting.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		TierCounts: map[string]int64{
			Tier1Rules.String():      m.tier1.Load(),
			Tier2Patterns.String():   m.tier2.Load(),
			Tier3Embeddings.String(): m.tier3.Load(),
			Tier4LLM.String():        m.tier4.Load(),
			"none":                   m.none.Load(),
		},
		Accepted:        m.accepted.Load(),
		Rejected:        m.rejected.Load(),
		Held:            m.held.Load(),
		TotalDecisions:  m.totalCount.Load(),
		TotalCost:       m.TotalCost(),
		CostPerDecision: m.CostPerDecision(),
	}
}
