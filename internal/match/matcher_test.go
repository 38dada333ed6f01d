package match

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmstand/internal/models"
	"farmstand/internal/vision"
)

func newTestMatcher(items ...*models.ProduceItem) *Matcher {
	fake := &fakeTaxonomyStore{items: items}
	return NewMatcher(NewTaxonomyCache(fake, 0, nil))
}

func TestMatchExactTag(t *testing.T) {
	m := newTestMatcher(
		taxonomyItem(1, "tomato"),
		taxonomyItem(2, "cucumber"),
	)

	tags := []vision.Tag{
		{Label: "tomato", Confidence: 0.92},
		{Label: "vegetable", Confidence: 0.88},
		{Label: "food", Confidence: 0.85},
	}
	result, err := m.Match(context.Background(), tags, 0.6)
	require.NoError(t, err)

	require.NotNil(t, result.Item)
	assert.Equal(t, "tomato", result.Item.Canonical)
	assert.InDelta(t, 0.92, result.Score, 1e-9)
	assert.Len(t, result.Reasons, 3)
	assert.Equal(t, "tomato", result.Reasons[0].Desc)
}

func TestMatchSynonymContainment(t *testing.T) {
	m := newTestMatcher(taxonomyItem(1, "tomato", "cherry tomato"))

	// "cherry tomato" tag vs the synonym is exact (1.0); vs the canonical
	// it is containment (0.85). The best pairing wins.
	tags := []vision.Tag{{Label: "cherry tomato", Confidence: 0.8}}
	result, err := m.Match(context.Background(), tags, 0.6)
	require.NoError(t, err)

	require.NotNil(t, result.Item)
	assert.InDelta(t, 0.8, result.Score, 1e-9)
}

func TestMatchBelowThresholdReturnsDiagnostics(t *testing.T) {
	m := newTestMatcher(taxonomyItem(1, "tomato"))

	// 0.7 x 0.85 = 0.595, just under the 0.6 threshold.
	tags := []vision.Tag{{Label: "cherry tomato", Confidence: 0.7}}
	result, err := m.Match(context.Background(), tags, 0.6)
	require.NoError(t, err)

	assert.Nil(t, result.Item)
	assert.InDelta(t, 0.595, result.Score, 1e-9)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "tomato", result.Candidates[0].Canonical)
	assert.Len(t, result.Reasons, 1)

	// Lowering the threshold past the score flips the outcome.
	result, err = m.Match(context.Background(), tags, 0.59)
	require.NoError(t, err)
	assert.NotNil(t, result.Item)
}

func TestMatchThresholdIsInclusive(t *testing.T) {
	m := newTestMatcher(taxonomyItem(1, "tomato"))

	tags := []vision.Tag{{Label: "tomato", Confidence: 0.6}}
	result, err := m.Match(context.Background(), tags, 0.6)
	require.NoError(t, err)

	require.NotNil(t, result.Item)
	assert.InDelta(t, 0.6, result.Score, 1e-9)
}

func TestMatchItemScoreIsBestNotSum(t *testing.T) {
	m := newTestMatcher(taxonomyItem(1, "tomato"))

	// Two weak signals for the same item must not accumulate past the
	// threshold.
	tags := []vision.Tag{
		{Label: "tomato", Confidence: 0.4},
		{Label: "cherry tomato", Confidence: 0.45},
	}
	result, err := m.Match(context.Background(), tags, 0.6)
	require.NoError(t, err)

	assert.Nil(t, result.Item)
	require.Len(t, result.Candidates, 1)
	assert.InDelta(t, 0.4, result.Candidates[0].Score, 1e-9)
}

func TestMatchPriorityBreaksNearTies(t *testing.T) {
	boosted := taxonomyItem(2, "heirloom tomato")
	boosted.Priority = 2
	m := newTestMatcher(taxonomyItem(1, "cherry tomato"), boosted)

	// Both items see the tag as containment; priority lifts the second.
	tags := []vision.Tag{{Label: "tomato", Confidence: 0.9}}
	result, err := m.Match(context.Background(), tags, 0.6)
	require.NoError(t, err)

	require.NotNil(t, result.Item)
	assert.Equal(t, "heirloom tomato", result.Item.Canonical)
	assert.InDelta(t, 0.9*0.85*1.1, result.Score, 1e-9)
}

func TestMatchEqualScoreKeepsEarlierItem(t *testing.T) {
	// Taxonomy ordering is the tie-breaker: the list comes back priority
	// desc, canonical asc, and the first equal score wins.
	m := newTestMatcher(taxonomyItem(1, "green squash"), taxonomyItem(2, "yellow squash"))

	// Containment on both items yields identical scores.
	tags := []vision.Tag{{Label: "squash", Confidence: 0.9}}
	result, err := m.Match(context.Background(), tags, 0.6)
	require.NoError(t, err)

	require.NotNil(t, result.Item)
	assert.Equal(t, int64(1), result.Item.ID)
}

func TestMatchCandidatesCappedAtFive(t *testing.T) {
	items := make([]*models.ProduceItem, 0, 6)
	for i := 1; i <= 6; i++ {
		items = append(items, taxonomyItem(int64(i), fmt.Sprintf("pepper %d", i)))
	}
	m := newTestMatcher(items...)

	tags := []vision.Tag{{Label: "pepper", Confidence: 0.9}}
	result, err := m.Match(context.Background(), tags, 0.6)
	require.NoError(t, err)

	assert.Len(t, result.Candidates, 5)
	// Ranked by score desc, canonical asc.
	assert.Equal(t, "pepper 1", result.Candidates[0].Canonical)
}

func TestMatchOnlyTopTagsScored(t *testing.T) {
	m := newTestMatcher(taxonomyItem(1, "tomato"))

	// An exact hit in position 11 is never considered.
	tags := make([]vision.Tag, 0, 11)
	for i := 0; i < 10; i++ {
		tags = append(tags, vision.Tag{Label: "background", Confidence: 0.99})
	}
	tags = append(tags, vision.Tag{Label: "tomato", Confidence: 0.99})

	result, err := m.Match(context.Background(), tags, 0.6)
	require.NoError(t, err)

	assert.Nil(t, result.Item)
	assert.Zero(t, result.Score)
	assert.Len(t, result.Reasons, 10)
}

func TestMatchSkipsEmptyLabels(t *testing.T) {
	m := newTestMatcher(taxonomyItem(1, "tomato"))

	tags := []vision.Tag{
		{Label: "", Confidence: 0.99},
		{Label: "tomato", Confidence: 0.9},
	}
	result, err := m.Match(context.Background(), tags, 0.6)
	require.NoError(t, err)

	require.NotNil(t, result.Item)
	assert.Len(t, result.Reasons, 1)
}

func TestMatchEmptyTaxonomy(t *testing.T) {
	m := newTestMatcher()

	tags := []vision.Tag{{Label: "tomato", Confidence: 0.95}}
	result, err := m.Match(context.Background(), tags, 0.6)
	require.NoError(t, err)

	assert.Nil(t, result.Item)
	assert.Zero(t, result.Score)
	assert.Empty(t, result.Candidates)
	assert.Empty(t, result.Reasons)
}

func TestMatchStoreErrorPropagates(t *testing.T) {
	fake := &fakeTaxonomyStore{listErr: errors.New("connection refused")}
	m := NewMatcher(NewTaxonomyCache(fake, 0, nil))

	result, err := m.Match(context.Background(), []vision.Tag{{Label: "tomato", Confidence: 0.9}}, 0.6)
	assert.Error(t, err)
	assert.Nil(t, result)
}
