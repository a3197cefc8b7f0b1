package model

// AggregateState is the materialized social state for one target, derived
// from folding the full event history. It is never persisted incrementally;
// every snapshot recomputes it from the source.
type AggregateState struct {
	TargetID     string
	LikedBy      map[string]struct{}
	RepostedBy   map[string]struct{}
	ViewerSet    map[string]struct{}
	TypingSet    map[string]struct{}
	CommentCount int
}

// NewAggregateState returns an empty state for a target.
func NewAggregateState(targetID string) *AggregateState {
	return &AggregateState{
		TargetID:   targetID,
		LikedBy:    make(map[string]struct{}),
		RepostedBy: make(map[string]struct{}),
		ViewerSet:  make(map[string]struct{}),
		TypingSet:  make(map[string]struct{}),
	}
}
