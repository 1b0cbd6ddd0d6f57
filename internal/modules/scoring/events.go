package scoring

import (
	"strings"

	"github.com/aristath/relval/internal/domain"
)

// EventClass labels the single category a headline belongs to.
type EventClass string

const (
	EventOrderWin   EventClass = "order_win"
	EventEarnings   EventClass = "earnings"
	EventRegulatory EventClass = "regulatory"
	EventMNA        EventClass = "mna"
	EventManagement EventClass = "management"
	EventProduct    EventClass = "product"
	EventNoise      EventClass = "noise"
)

// orderKeywords are checked before the event classes; an order win outranks
// any other classification.
var orderKeywords = []string{
	"order",
	"contract",
	"award",
	"secured",
	"tender",
	"project",
	"win",
	"appointed",
	"framework agreement",
	"letter of award",
}

// eventKeywordEntry keeps the classification tables ordered so that
// first-match-wins is deterministic.
type eventKeywordEntry struct {
	Class    EventClass
	Keywords []string
}

var eventKeywords = []eventKeywordEntry{
	{EventEarnings, []string{"earnings", "revenue", "profit", "guidance", "forecast", "outlook"}},
	{EventRegulatory, []string{"lawsuit", "probe", "regulator", "antitrust", "investigation", "fine"}},
	{EventMNA, []string{"acquire", "acquisition", "merger", "buyout", "takeover"}},
	{EventManagement, []string{"ceo", "cfo", "resigns", "steps down", "appoints", "succession"}},
	{EventProduct, []string{"launch", "releases", "unveils", "product", "service"}},
}

// EventWeights scales each event class's contribution to the weighted
// sentiment average. Noise is excluded entirely.
var EventWeights = map[EventClass]float64{
	EventOrderWin:   1.5,
	EventEarnings:   1.2,
	EventRegulatory: 1.2,
	EventMNA:        1.0,
	EventManagement: 0.8,
	EventProduct:    0.6,
	EventNoise:      0.0,
}

// ClassifyEvent assigns a headline to exactly one event class. The first
// matching keyword wins; order keywords are checked before event classes.
func ClassifyEvent(headline string) EventClass {
	h := strings.ToLower(headline)

	for _, kw := range orderKeywords {
		if strings.Contains(h, kw) {
			return EventOrderWin
		}
	}

	for _, entry := range eventKeywords {
		for _, kw := range entry.Keywords {
			if strings.Contains(h, kw) {
				return entry.Class
			}
		}
	}

	return EventNoise
}

// SentimentScore computes the event-weighted average sentiment across the
// headlines and the count of material (non-noise) events. Headlines
// classified as noise contribute nothing.
func SentimentScore(analyzer domain.SentimentAnalyzer, headlines []string) (float64, int) {
	weightedSum := 0.0
	totalWeight := 0.0
	eventCount := 0

	for _, h := range headlines {
		event := ClassifyEvent(h)
		weight := EventWeights[event]
		if weight == 0 {
			continue
		}

		weightedSum += analyzer.Compound(h) * weight
		totalWeight += weight
		eventCount++
	}

	if totalWeight == 0 {
		return 0.0, 0
	}
	return weightedSum / totalWeight, eventCount
}

// QualScore maps weighted sentiment and event count onto a -3..+3
// conviction ladder. Zero events is always noise.
func QualScore(sentiment float64, eventCount int) float64 {
	if eventCount == 0 {
		return 0
	}

	abs := sentiment
	if abs < 0 {
		abs = -abs
	}

	sign := 1.0
	if sentiment < 0 {
		sign = -1.0
	}

	switch {
	case abs >= 0.5 && eventCount >= 3:
		return 3 * sign
	case abs >= 0.3 && eventCount >= 2:
		return 2 * sign
	case abs >= 0.15:
		return 1 * sign
	default:
		return 0
	}
}
