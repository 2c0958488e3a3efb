package domain

import (
	"fmt"
	"math"
)

const DayBucketLayout = "2006-01-02"

type AnalyticsSnapshot struct {
	TotalConversations  int64
	PersonaUsage        map[PersonaID]int64
	DailyStats          map[string]int64
	AverageResponseTime float64
	MostUsedPersona     *PersonaID
}

// RoundSeconds rounds a latency to two decimal places.
func RoundSeconds(v float64) float64 {
	return math.Round(v*100) / 100
}

func CompactCount(v int64) string {
	if v < 1_000 {
		return fmt.Sprintf("%d", v)
	}

	if v < 1_000_000 {
		return fmt.Sprintf("%.1fk", float64(v)/1_000)
	}

	return fmt.Sprintf("%.1fM", float64(v)/1_000_000)
}
