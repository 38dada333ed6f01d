package vision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelTags(t *testing.T) {
	tags, err := parseModelTags("openai", `{"tags":[{"name":"basil","confidence":0.7},{"name":"herb","confidence":0.9}]}`)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "herb", tags[0].Label)
	assert.Equal(t, "basil", tags[1].Label)
}

func TestParseModelTagsStripsCodeFences(t *testing.T) {
	content := "```json\n{\"tags\":[{\"name\":\"tomato\",\"confidence\":0.9}]}\n```"
	tags, err := parseModelTags("gemini", content)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "tomato", tags[0].Label)
}

func TestParseModelTagsClampsConfidence(t *testing.T) {
	tags, err := parseModelTags("openai", `{"tags":[{"name":"a","confidence":1.4},{"name":"b","confidence":-0.2}]}`)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, 1.0, tags[0].Confidence)
	assert.Equal(t, 0.0, tags[1].Confidence)
}

func TestParseModelTagsRejectsNonJSON(t *testing.T) {
	_, err := parseModelTags("openai", "Sure! Here are the tags you asked for.")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "openai", upstream.Provider)
}

func TestParseModelTagsMissingTagsField(t *testing.T) {
	_, err := parseModelTags("openai", `{"labels":[]}`)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Contains(t, upstream.Msg, "missing tags field")
}

func TestOpenAIClientNotConfigured(t *testing.T) {
	client := NewOpenAIClient("", "")
	_, err := client.GetTags(context.Background(), []byte("jpegbytes"))
	assert.ErrorIs(t, err, ErrNotConfigured)
}
