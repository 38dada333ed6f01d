package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightExact(t *testing.T) {
	assert.Equal(t, 1.0, Weight("tomato", "tomato"))
	assert.Equal(t, 1.0, Weight("cherry tomato", "cherry tomato"))
}

func TestWeightContainment(t *testing.T) {
	// Either direction counts.
	assert.Equal(t, 0.85, Weight("cherry tomato", "tomato"))
	assert.Equal(t, 0.85, Weight("tomato", "cherry tomato"))
}

func TestWeightTokenOverlap(t *testing.T) {
	// Shared token but no substring relation.
	assert.Equal(t, 0.6, Weight("green bell pepper", "pepper chili"))
	assert.Equal(t, 0.6, Weight("tomato plant", "heirloom tomato"))
}

func TestWeightUnrelated(t *testing.T) {
	assert.Equal(t, 0.0, Weight("red car", "tomato"))
	assert.Equal(t, 0.0, Weight("", "tomato"))
	assert.Equal(t, 0.0, Weight("tomato", ""))
}

// The ordinal scale must stay strictly ordered: exact > containment >
// token overlap > none.
func TestWeightOrdering(t *testing.T) {
	exact := Weight("tomato", "tomato")
	containment := Weight("cherry tomato", "tomato")
	overlap := Weight("tomato plant", "heirloom tomato")
	none := Weight("red car", "tomato")

	assert.Greater(t, exact, containment)
	assert.Greater(t, containment, overlap)
	assert.Greater(t, overlap, none)
}

func TestScore(t *testing.T) {
	// No priority: plain confidence x weight.
	assert.InDelta(t, 0.92, Score(0.92, 1.0, 0), 1e-9)
	// Containment case from the cherry tomato scenario.
	assert.InDelta(t, 0.595, Score(0.7, 0.85, 0), 1e-9)
	// Priority adds 5% per point, multiplicatively.
	assert.InDelta(t, 0.92*1.1, Score(0.92, 1.0, 2), 1e-9)
	// Scores can exceed 1.0; they are rankings, not probabilities.
	assert.Greater(t, Score(1.0, 1.0, 5), 1.0)
}
