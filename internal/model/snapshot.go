package model

import "time"

// SnapshotRecord is the persisted projection of one target's AggregateState.
// Member slices are sorted so repeated folds of the same input serialize
// identically.
type SnapshotRecord struct {
	TargetID     string    `json:"target_id"`
	LikeCount    int       `json:"like_count"`
	RepostCount  int       `json:"repost_count"`
	CommentCount int       `json:"comment_count"`
	ViewerCount  int       `json:"viewer_count"`
	TyperCount   int       `json:"typer_count"`
	LikedBy      []string  `json:"liked_by"`
	RepostedBy   []string  `json:"reposted_by"`
	Typing       []string  `json:"typing"`
	ComputedAt   time.Time `json:"computed_at"`
}
