package match

import "strings"

// Match weights form a deliberate ordinal scale: exact > containment >
// token overlap > none. This is not an edit-distance metric; equal-weight
// ties are expected and resolved by taxonomy ordering.
const (
	weightExact       = 1.0
	weightContainment = 0.85
	weightTokenShare  = 0.6

	// priorityBoost is the multiplicative bump per manual priority point,
	// letting operators nudge common items ahead of rare homonyms without
	// overriding exact matches elsewhere.
	priorityBoost = 0.05
)

// Weight computes the match weight between a normalized vision label and
// a normalized taxonomy term.
//
//	1.0  exact equality
//	0.85 one string contains the other ("cherry tomato" vs "tomato")
//	0.6  at least one shared whitespace token, no containment
//	0    unrelated
func Weight(normalizedLabel, normalizedTerm string) float64 {
	if normalizedLabel == "" || normalizedTerm == "" {
		return 0
	}
	if normalizedLabel == normalizedTerm {
		return weightExact
	}
	if strings.Contains(normalizedLabel, normalizedTerm) || strings.Contains(normalizedTerm, normalizedLabel) {
		return weightContainment
	}

	labelTokens := Tokenize(normalizedLabel)
	termTokens := Tokenize(normalizedTerm)
	for token := range labelTokens {
		if _, ok := termTokens[token]; ok {
			return weightTokenShare
		}
	}
	return 0
}

// Score combines a tag confidence, a match weight, and an item's manual
// priority into the final per-(tag,item) score. The result is a relative
// ranking value and is unbounded above; it is not a probability.
func Score(confidence, weight float64, priority int) float64 {
	return confidence * weight * (1 + float64(priority)*priorityBoost)
}
