package application

import (
	"sync"
	"time"

	"github.com/bnema/boardroom/internal/domain"
	"github.com/bnema/boardroom/internal/ports"
)

// AnalyticsAggregator keeps running usage counters for the process lifetime.
type AnalyticsAggregator struct {
	mu    sync.Mutex
	clock ports.Clock

	total        int64
	personaUsage map[domain.PersonaID]int64
	dailyStats   map[string]int64
	latencySum   time.Duration
	latencyCount int64
}

func NewAnalyticsAggregator(clock ports.Clock) *AnalyticsAggregator {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &AnalyticsAggregator{
		clock:        clock,
		personaUsage: map[domain.PersonaID]int64{},
		dailyStats:   map[string]int64{},
	}
}

// Record counts one conversation. ids may contain duplicates; each occurrence
// increments the persona's usage.
func (a *AnalyticsAggregator) Record(ids []domain.PersonaID, elapsed time.Duration) {
	day := a.clock.Now().Local().Format(domain.DayBucketLayout)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	for _, id := range ids {
		a.personaUsage[id]++
	}
	a.dailyStats[day]++
	a.latencySum += elapsed
	a.latencyCount++
}

func (a *AnalyticsAggregator) TotalConversations() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.total
}

func (a *AnalyticsAggregator) Summarize() domain.AnalyticsSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snapshot := domain.AnalyticsSnapshot{
		TotalConversations: a.total,
		PersonaUsage:       make(map[domain.PersonaID]int64, len(a.personaUsage)),
		DailyStats:         make(map[string]int64, len(a.dailyStats)),
	}
	for id, count := range a.personaUsage {
		snapshot.PersonaUsage[id] = count
	}
	for day, count := range a.dailyStats {
		snapshot.DailyStats[day] = count
	}
	if a.latencyCount > 0 {
		mean := a.latencySum.Seconds() / float64(a.latencyCount)
		snapshot.AverageResponseTime = domain.RoundSeconds(mean)
	}
	snapshot.MostUsedPersona = mostUsed(a.personaUsage)

	return snapshot
}

// mostUsed picks the highest count; ties go to the lexicographically smallest id.
func mostUsed(usage map[domain.PersonaID]int64) *domain.PersonaID {
	var (
		best      domain.PersonaID
		bestCount int64
		found     bool
	)
	for id, count := range usage {
		if count <= 0 {
			continue
		}
		if !found || count > bestCount || (count == bestCount && id < best) {
			best = id
			bestCount = count
			found = true
		}
	}
	if !found {
		return nil
	}

	return &best
}
