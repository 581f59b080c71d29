package metrics

import (
	"sort"

	"github.com/opscore/support-sim/internal/models"
)

// SuccessRate returns successful/total and whether the rate is defined.
// An empty run has no meaningful rate; callers must report that explicitly
// instead of emitting NaN.
func SuccessRate(results []models.ConversationResult) (float64, bool) {
	if len(results) == 0 {
		return 0, false
	}

	successful := 0
	for _, result := range results {
		if result.Success {
			successful++
		}
	}
	return float64(successful) / float64(len(results)), true
}

// AverageTurns is the arithmetic mean of customer turns, 0 for an empty run.
func AverageTurns(results []models.ConversationResult) float64 {
	if len(results) == 0 {
		return 0
	}

	total := 0
	for _, result := range results {
		total += result.TotalTurns
	}
	return float64(total) / float64(len(results))
}

// AverageResponseTimeMs is the mean of every recorded per-turn response time
// across all conversations; turns without a recorded time are skipped.
func AverageResponseTimeMs(results []models.ConversationResult) float64 {
	var sum int64
	count := 0
	for _, result := range results {
		for _, turn := range result.Turns {
			if turn.ResponseTimeMs > 0 {
				sum += turn.ResponseTimeMs
				count++
			}
		}
	}
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count)
}

// IntentFrequency counts intents across all turns, sorted by count descending
// with ties kept in first-seen order.
func IntentFrequency(results []models.ConversationResult) []models.IntentCount {
	counts := make(map[string]int)
	var order []string

	for _, result := range results {
		for _, turn := range result.Turns {
			if turn.Intent == "" {
				continue
			}
			if _, seen := counts[turn.Intent]; !seen {
				order = append(order, turn.Intent)
			}
			counts[turn.Intent]++
		}
	}

	frequency := make([]models.IntentCount, 0, len(order))
	for _, label := range order {
		frequency = append(frequency, models.IntentCount{Intent: label, Count: counts[label]})
	}

	sort.SliceStable(frequency, func(i, j int) bool {
		return frequency[i].Count > frequency[j].Count
	})
	return frequency
}

// ErrorSummary counts distinct error strings across all conversations,
// sorted by count descending with ties in first-seen order.
func ErrorSummary(results []models.ConversationResult) []models.ErrorCount {
	counts := make(map[string]int)
	var order []string

	for _, result := range results {
		for _, errText := range result.Errors {
			if _, seen := counts[errText]; !seen {
				order = append(order, errText)
			}
			counts[errText]++
		}
	}

	summary := make([]models.ErrorCount, 0, len(order))
	for _, errText := range order {
		summary = append(summary, models.ErrorCount{Error: errText, Count: counts[errText]})
	}

	sort.SliceStable(summary, func(i, j int) bool {
		return summary[i].Count > summary[j].Count
	})
	return summary
}
