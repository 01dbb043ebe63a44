// Package sentiment computes a bounded polarity score for article text.
// Scoring is pure and stateless: the same text always yields the same result,
// and no call depends on a previous one.
package sentiment

import (
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/pressmood/pressmood/internal/domain"
)

const (
	// Label thresholds on the normalized score.
	negativeThreshold = -0.05
	positiveThreshold = 0.05

	// Texts with fewer tokens than this are scored neutral outright.
	minTokens = 3

	// Dampening constant for the normalization curve. Larger values push
	// scores toward zero for texts with few sentiment-bearing words.
	normalizationAlpha = 15.0

	// A negation flips the polarity of a sentiment word at most this many
	// tokens ahead.
	negationWindow = 3
)

// negations flip the sign of a following sentiment word ("not good").
var negations = map[string]struct{}{
	"no": {}, "not": {}, "nor": {}, "neither": {}, "never": {},
	"isnt": {}, "wasnt": {}, "arent": {}, "dont": {}, "doesnt": {},
	"didnt": {}, "wont": {}, "wouldnt": {}, "couldnt": {}, "cant": {},
}

// Scorer scores text against the embedded polarity lexicon.
type Scorer struct {
	lexicon map[string]float64
	now     func() time.Time
}

// NewScorer builds a Scorer with the default lexicon.
func NewScorer() *Scorer {
	return &Scorer{lexicon: defaultLexicon, now: time.Now}
}

// Score computes the polarity of text and derives the categorical label.
// Empty or very short text yields a zero score and a neutral label. The
// embedded lexicon cannot fail, so the error is always nil; it is part of
// the signature because scorer implementations may sit behind a network.
func (s *Scorer) Score(articleID, text string) (domain.SentimentResult, error) {
	res := domain.SentimentResult{
		ArticleID: articleID,
		Label:     domain.LabelNeutral,
		ScoredAt:  s.now().UTC(),
	}

	tokens := tokenize(text)
	if len(tokens) < minTokens {
		return res, nil
	}

	var sum float64
	pendingNegation := 0
	for _, tok := range tokens {
		if _, neg := negations[tok]; neg {
			pendingNegation = negationWindow
			continue
		}

		weight, hit := s.lexicon[tok]
		if hit {
			if pendingNegation > 0 {
				weight = -weight
				pendingNegation = 0
			}
			sum += weight
		}
		if pendingNegation > 0 {
			pendingNegation--
		}
	}

	res.Score = normalize(sum)
	res.Label = labelFor(res.Score)
	return res, nil
}

// normalize maps the raw lexicon sum into [-1, 1].
func normalize(sum float64) float64 {
	if sum == 0 {
		return 0
	}
	score := sum / math.Sqrt(sum*sum+normalizationAlpha)
	return math.Max(-1, math.Min(1, score))
}

func labelFor(score float64) string {
	switch {
	case score < negativeThreshold:
		return domain.LabelNegative
	case score > positiveThreshold:
		return domain.LabelPositive
	default:
		return domain.LabelNeutral
	}
}

// tokenize lowercases and splits on non-letter runes, dropping apostrophes so
// contractions match the negation set ("don't" -> "dont").
func tokenize(text string) []string {
	text = strings.ToLower(text)
	text = strings.ReplaceAll(text, "'", "")
	text = strings.ReplaceAll(text, "’", "")

	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
