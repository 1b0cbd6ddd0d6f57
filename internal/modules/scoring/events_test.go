package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubAnalyzer scores headlines by a simple keyword lookup so tests stay
// deterministic without the external model.
type stubAnalyzer struct{}

func (stubAnalyzer) Compound(headline string) float64 {
	lower := strings.ToLower(headline)
	switch {
	case strings.Contains(lower, "surge"), strings.Contains(lower, "wins"):
		return 0.7
	case strings.Contains(lower, "probe"), strings.Contains(lower, "lawsuit"):
		return -0.6
	default:
		return 0.0
	}
}

func TestClassifyEvent(t *testing.T) {
	tests := []struct {
		headline string
		want     EventClass
	}{
		{"Company wins major contract from ministry", EventOrderWin},
		{"Q3 earnings beat guidance", EventEarnings},
		{"Regulator opens probe into pricing", EventRegulatory},
		{"Board agrees to takeover offer", EventMNA},
		{"CFO steps down after eight years", EventManagement},
		{"Firm unveils new logistics service", EventProduct},
		{"Shares trade sideways in thin volume", EventNoise},
	}

	for _, tt := range tests {
		t.Run(tt.headline, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyEvent(tt.headline))
		})
	}
}

func TestClassifyEventFirstMatchWins(t *testing.T) {
	// Both an order keyword and an earnings keyword appear; order wins
	// because it is checked first.
	assert.Equal(t, EventOrderWin, ClassifyEvent("Contract win lifts earnings outlook"))
}

func TestSentimentScore(t *testing.T) {
	t.Run("noise contributes nothing", func(t *testing.T) {
		score, count := SentimentScore(stubAnalyzer{}, []string{
			"Shares trade sideways in thin volume",
		})
		assert.Zero(t, score)
		assert.Zero(t, count)
	})

	t.Run("weighted average across classes", func(t *testing.T) {
		score, count := SentimentScore(stubAnalyzer{}, []string{
			"Company wins major contract", // order win, +0.7 * 1.5
			"Regulator opens probe",       // regulatory, -0.6 * 1.2
		})
		want := (0.7*1.5 + -0.6*1.2) / (1.5 + 1.2)
		assert.InDelta(t, want, score, 1e-9)
		assert.Equal(t, 2, count)
	})

	t.Run("empty headline list", func(t *testing.T) {
		score, count := SentimentScore(stubAnalyzer{}, nil)
		assert.Zero(t, score)
		assert.Zero(t, count)
	})
}

func TestQualScore(t *testing.T) {
	tests := []struct {
		name      string
		sentiment float64
		events    int
		want      float64
	}{
		{"strong positive with volume", 0.6, 4, 3},
		{"strong negative with volume", -0.6, 3, -3},
		{"moderate positive", 0.35, 2, 2},
		{"weak positive", 0.2, 1, 1},
		{"weak negative", -0.2, 1, -1},
		{"below threshold", 0.1, 2, 0},
		{"no events is always zero", 0.9, 0, 0},
		{"strong sentiment but single event", 0.6, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QualScore(tt.sentiment, tt.events))
		})
	}
}

func TestCatalystScoreSumsAllMatches(t *testing.T) {
	score, triggers := CatalystScore([]string{
		"Company secures contract for infrastructure tender",
		"Board launches strategic review of non-core assets",
	})

	// contract 2.0 + tender 1.5 + strategic review 2.5 = 6.0, capped at 5.
	assert.InDelta(t, MaxCatalystScore, score, 1e-9)
	assert.Contains(t, triggers, "contract")
	assert.Contains(t, triggers, "tender")
	assert.Contains(t, triggers, "strategic review")
}

func TestCatalystScoreNoMatches(t *testing.T) {
	score, triggers := CatalystScore([]string{"Quiet session for the counter"})
	assert.Zero(t, score)
	assert.Empty(t, triggers)
}

func TestOrderMomentum(t *testing.T) {
	t.Run("strong momentum", func(t *testing.T) {
		score, signal := OrderMomentum([]string{
			"Wins contract for rail works",
			"Secures tender from port authority",
			"Appointed main contractor for new terminal",
		})
		assert.Equal(t, 2.0, score)
		assert.Equal(t, "Strong order momentum", signal)
	})

	t.Run("initial recovery", func(t *testing.T) {
		score, signal := OrderMomentum([]string{"Secures small maintenance contract"})
		assert.Equal(t, 1.0, score)
		assert.Equal(t, "Initial order recovery", signal)
	})

	t.Run("no orders", func(t *testing.T) {
		score, signal := OrderMomentum([]string{"Releases sustainability report"})
		assert.Zero(t, score)
		assert.Empty(t, signal)
	})
}
