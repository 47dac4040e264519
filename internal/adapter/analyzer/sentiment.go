package analyzer

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

var negators = map[string]struct{}{
	"tidak": {}, "bukan": {}, "kurang": {}, "gak": {}, "ga": {}, "nggak": {},
	"belum": {}, "not": {}, "never": {},
}

// SentimentAnalyzer is a lexicon scorer. A negator directly before a
// sentiment word flips it ("tidak bagus" counts as negative).
type SentimentAnalyzer struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

// NewSentimentAnalyzer creates an analyzer from positive and negative word lists.
func NewSentimentAnalyzer(positive, negative []string) *SentimentAnalyzer {
	return &SentimentAnalyzer{
		positive: toSet(positive),
		negative: toSet(negative),
	}
}

// Analyze labels text positive, negative or neutral.
func (s *SentimentAnalyzer) Analyze(text string) string {
	score := 0
	words := Words(foldText(text))
	for i, w := range words {
		polarity := 0
		if _, ok := s.positive[w]; ok {
			polarity = 1
		} else if _, ok := s.negative[w]; ok {
			polarity = -1
		}
		if polarity == 0 {
			continue
		}
		if i > 0 {
			if _, neg := negators[words[i-1]]; neg {
				polarity = -polarity
			}
		}
		score += polarity
	}

	switch {
	case score > 0:
		return SentimentPositive
	case score < 0:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
