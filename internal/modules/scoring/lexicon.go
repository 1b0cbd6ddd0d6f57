package scoring

import "strings"

// LexiconAnalyzer is a small wordlist-based sentiment scorer used when no
// external language model is wired in. It implements
// domain.SentimentAnalyzer.
type LexiconAnalyzer struct{}

var positiveWords = map[string]float64{
	"wins":       0.8,
	"win":        0.7,
	"secures":    0.7,
	"beats":      0.7,
	"beat":       0.6,
	"surges":     0.8,
	"surge":      0.7,
	"jumps":      0.6,
	"record":     0.5,
	"strong":     0.5,
	"growth":     0.4,
	"upgrade":    0.6,
	"upgraded":   0.6,
	"raises":     0.5,
	"expands":    0.4,
	"awarded":    0.7,
	"profit":     0.3,
	"recovery":   0.4,
	"dividend":   0.3,
	"buyback":    0.5,
	"approval":   0.5,
	"positive":   0.4,
	"outperform": 0.6,
}

var negativeWords = map[string]float64{
	"falls":         0.6,
	"drops":         0.6,
	"plunges":       0.8,
	"slumps":        0.7,
	"misses":        0.7,
	"miss":          0.6,
	"loss":          0.6,
	"losses":        0.6,
	"lawsuit":       0.7,
	"probe":         0.7,
	"downgrade":     0.6,
	"downgraded":    0.6,
	"warns":         0.6,
	"warning":       0.6,
	"cuts":          0.5,
	"weak":          0.5,
	"decline":       0.5,
	"fine":          0.5,
	"fraud":         0.9,
	"investigation": 0.7,
	"resigns":       0.4,
	"negative":      0.4,
	"default":       0.8,
}

// Compound scores a headline in [-1, 1]: the signed sum of matched word
// weights, squashed by the total magnitude so long headlines do not
// saturate.
func (LexiconAnalyzer) Compound(headline string) float64 {
	score := 0.0
	magnitude := 0.0

	for _, word := range strings.Fields(strings.ToLower(headline)) {
		word = strings.Trim(word, ".,;:!?'\"()")
		if w, ok := positiveWords[word]; ok {
			score += w
			magnitude += w
		}
		if w, ok := negativeWords[word]; ok {
			score -= w
			magnitude += w
		}
	}

	if magnitude == 0 {
		return 0
	}
	return score / (magnitude + 1)
}
