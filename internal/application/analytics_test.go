package application

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/boardroom/internal/domain"
	"github.com/bnema/boardroom/internal/ports/mocks"
)

func fixedAnalyticsClock(t *testing.T, now time.Time) *mocks.MockClock {
	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().Return(now).Maybe()
	return clock
}

func TestAnalyticsRecordTwiceCountsEachPersona(t *testing.T) {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.Local)
	analytics := NewAnalyticsAggregator(fixedAnalyticsClock(t, now))

	analytics.Record([]domain.PersonaID{"x", "y"}, time.Second)
	analytics.Record([]domain.PersonaID{"x", "y"}, time.Second)

	snapshot := analytics.Summarize()
	assert.Equal(t, int64(2), snapshot.TotalConversations)
	assert.Equal(t, int64(2), snapshot.PersonaUsage["x"])
	assert.Equal(t, int64(2), snapshot.PersonaUsage["y"])
	assert.Equal(t, map[string]int64{"2026-02-14": 2}, snapshot.DailyStats)
}

func TestAnalyticsRecordCountsDuplicateOccurrences(t *testing.T) {
	analytics := NewAnalyticsAggregator(fixedAnalyticsClock(t, time.Now()))

	analytics.Record([]domain.PersonaID{"steve", "steve"}, 0)

	assert.Equal(t, int64(2), analytics.Summarize().PersonaUsage["steve"])
	assert.Equal(t, int64(1), analytics.TotalConversations())
}

func TestAnalyticsEmptyRecordStillCountsConversation(t *testing.T) {
	analytics := NewAnalyticsAggregator(fixedAnalyticsClock(t, time.Now()))

	analytics.Record(nil, 500*time.Millisecond)

	snapshot := analytics.Summarize()
	assert.Equal(t, int64(1), snapshot.TotalConversations)
	assert.Empty(t, snapshot.PersonaUsage)
	assert.Nil(t, snapshot.MostUsedPersona)
	assert.Equal(t, 0.5, snapshot.AverageResponseTime)
}

func TestAnalyticsSummarizeWithoutSamples(t *testing.T) {
	analytics := NewAnalyticsAggregator(nil)

	snapshot := analytics.Summarize()

	assert.Zero(t, snapshot.TotalConversations)
	assert.Zero(t, snapshot.AverageResponseTime)
	assert.Nil(t, snapshot.MostUsedPersona)
	assert.NotNil(t, snapshot.PersonaUsage)
	assert.NotNil(t, snapshot.DailyStats)
}

func TestAnalyticsAverageIsRoundedToTwoDecimals(t *testing.T) {
	analytics := NewAnalyticsAggregator(fixedAnalyticsClock(t, time.Now()))

	analytics.Record([]domain.PersonaID{"steve"}, 1234*time.Millisecond)
	analytics.Record([]domain.PersonaID{"steve"}, 2*time.Second)

	assert.Equal(t, 1.62, analytics.Summarize().AverageResponseTime)
}

func TestAnalyticsMostUsedTieBreaksOnSmallestID(t *testing.T) {
	analytics := NewAnalyticsAggregator(fixedAnalyticsClock(t, time.Now()))

	analytics.Record([]domain.PersonaID{"steve", "melon", "xander"}, 0)
	analytics.Record([]domain.PersonaID{"steve", "melon"}, 0)

	for i := 0; i < 10; i++ {
		most := analytics.Summarize().MostUsedPersona
		require.NotNil(t, most)
		assert.Equal(t, domain.PersonaID("melon"), *most)
	}

	analytics.Record([]domain.PersonaID{"steve"}, 0)
	assert.Equal(t, domain.PersonaID("steve"), *analytics.Summarize().MostUsedPersona)
}

func TestAnalyticsBucketsByLocalDay(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 2, 14, 23, 0, 0, 0, time.Local), 2*time.Hour)
	analytics := NewAnalyticsAggregator(clock)

	analytics.Record(nil, 0)
	analytics.Record(nil, 0)

	assert.Equal(t, map[string]int64{"2026-02-14": 1, "2026-02-15": 1}, analytics.Summarize().DailyStats)
}

func TestAnalyticsSnapshotIsDetached(t *testing.T) {
	analytics := NewAnalyticsAggregator(fixedAnalyticsClock(t, time.Now()))
	analytics.Record([]domain.PersonaID{"steve"}, 0)

	snapshot := analytics.Summarize()
	snapshot.PersonaUsage["steve"] = 99

	assert.Equal(t, int64(1), analytics.Summarize().PersonaUsage["steve"])
}

func TestAnalyticsConcurrentRecords(t *testing.T) {
	analytics := NewAnalyticsAggregator(fixedAnalyticsClock(t, time.Now()))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			analytics.Record([]domain.PersonaID{"steve"}, time.Second)
		}()
	}
	wg.Wait()

	snapshot := analytics.Summarize()
	assert.Equal(t, int64(100), snapshot.TotalConversations)
	assert.Equal(t, int64(100), snapshot.PersonaUsage["steve"])
	assert.Equal(t, 1.0, snapshot.AverageResponseTime)
}
