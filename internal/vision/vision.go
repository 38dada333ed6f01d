// Package vision adapts external image-tagging services to a single
// internal contract: raw image bytes in, a confidence-ranked tag list out.
// Provider payload shapes never leak past this package.
package vision

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Tag is one label returned by a tagging backend, with its confidence
// in [0,1]. Topicality is only populated by backends that report it.
type Tag struct {
	Label      string
	Confidence float64
	Topicality *float64
}

// Client is a tagging backend. Implementations must return tags sorted
// by descending confidence and fail hard on any upstream error; an empty
// tag list means the service answered and found nothing.
type Client interface {
	// Name identifies the backend, e.g. "azure". Recorded on each draft.
	Name() string
	GetTags(ctx context.Context, image []byte) ([]Tag, error)
}

// ErrNotConfigured indicates missing credentials or endpoint. It is
// detected before any network call is made.
var ErrNotConfigured = errors.New("vision: provider not configured")

// UpstreamError indicates the tagging service answered with a non-success
// status or an unusable payload. Distinct from "zero tags found".
type UpstreamError struct {
	Provider string
	Status   int
	Msg      string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("vision: %s upstream failure (http %d): %s", e.Provider, e.Status, e.Msg)
	}
	return fmt.Sprintf("vision: %s upstream failure: %s", e.Provider, e.Msg)
}

// sortTags orders tags by descending confidence in place and returns them.
func sortTags(tags []Tag) []Tag {
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].Confidence > tags[j].Confidence
	})
	return tags
}
