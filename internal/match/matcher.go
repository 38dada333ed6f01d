// Package match implements the produce identification core: label
// normalization, weighted fuzzy scoring against the taxonomy, and the
// cached taxonomy snapshot the scoring runs over.
package match

import (
	"context"
	"sort"

	log "github.com/sirupsen/logrus"

	"farmstand/internal/models"
	"farmstand/internal/vision"
)

const (
	// topLabels bounds scoring cost: only the most confident tags are
	// considered. The vision client already sorts by confidence.
	topLabels = 10
	// topCandidates is the length of the ranked audit list.
	topCandidates = 5
)

// Candidate is one entry of the ranked audit list: an item's single best
// score across all tag/term pairings.
type Candidate struct {
	ItemID    int64   `json:"itemId"`
	Canonical string  `json:"canonical"`
	Score     float64 `json:"score"`
}

// Result is the outcome of one match run. Item is nil when nothing
// cleared the threshold; Score and Candidates are still populated for
// diagnostics so a no-match stays distinguishable from an empty taxonomy.
type Result struct {
	Item       *models.ProduceItem
	Score      float64
	Threshold  float64
	Candidates []Candidate
	Reasons    []models.MatchReason
}

// Matcher scores vision tags against the cached taxonomy.
type Matcher struct {
	cache *TaxonomyCache
}

func NewMatcher(cache *TaxonomyCache) *Matcher {
	return &Matcher{cache: cache}
}

// Match scores the top tags against every active taxonomy item and picks
// a winner against the threshold (inclusive lower bound).
//
// An item's final score is its single best tag/term pairing, not a sum:
// repeated weak signals do not outscore one strong signal. Equal scores
// keep the earlier item, so taxonomy ordering (priority desc, canonical
// asc) is the tie-breaker.
func (m *Matcher) Match(ctx context.Context, tags []vision.Tag, threshold float64) (*Result, error) {
	items, err := m.cache.Load(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Threshold:  threshold,
		Candidates: []Candidate{},
		Reasons:    []models.MatchReason{},
	}
	if len(items) == 0 {
		log.Warn("Produce matching ran against an empty taxonomy")
		return result, nil
	}

	topTags := tags
	if len(topTags) > topLabels {
		topTags = topTags[:topLabels]
	}

	var (
		bestItem  *models.ProduceItem
		bestScore float64
		itemBest  = make(map[int64]float64, len(items))
	)

	for _, tag := range topTags {
		if tag.Label == "" {
			continue
		}
		normalizedTag := Normalize(tag.Label)

		for _, item := range items {
			terms := append([]string{item.Canonical}, item.Synonyms...)
			for _, term := range terms {
				weight := Weight(normalizedTag, Normalize(term))
				if weight == 0 {
					continue
				}
				score := Score(tag.Confidence, weight, item.Priority)
				if score > itemBest[item.ID] {
					itemBest[item.ID] = score
				}
				if score > bestScore {
					bestScore = score
					bestItem = item
				}
			}
		}

		result.Reasons = append(result.Reasons, models.MatchReason{
			Desc:       tag.Label,
			Score:      tag.Confidence,
			Topicality: tag.Topicality,
		})
	}

	result.Score = bestScore
	result.Candidates = rankCandidates(items, itemBest)

	if bestItem == nil || bestScore < threshold {
		log.Debugf("No produce match: best score %.4f below threshold %.4f", bestScore, threshold)
		return result, nil
	}

	result.Item = bestItem
	return result, nil
}

// rankCandidates turns per-item best scores into the top ranked audit
// list, ordered by score desc then canonical asc for determinism.
func rankCandidates(items []*models.ProduceItem, itemBest map[int64]float64) []Candidate {
	candidates := make([]Candidate, 0, len(itemBest))
	for _, item := range items {
		score, ok := itemBest[item.ID]
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{
			ItemID:    item.ID,
			Canonical: item.Canonical,
			Score:     score,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Canonical < candidates[j].Canonical
	})
	if len(candidates) > topCandidates {
		candidates = candidates[:topCandidates]
	}
	return candidates
}
