package aggregate

import (
	"sort"
	"strings"
	"time"

	"socialpulse/internal/model"
)

// SnapshotView is a read-only projection over folded aggregate state. All
// methods are pure reads; none trigger I/O or mutate state.
type SnapshotView struct {
	states map[string]*model.AggregateState
}

// NewSnapshotView wraps folded states in a view.
func NewSnapshotView(states map[string]*model.AggregateState) *SnapshotView {
	if states == nil {
		states = make(map[string]*model.AggregateState)
	}
	return &SnapshotView{states: states}
}

// Snapshot folds events and returns the view over the result.
func Snapshot(events []model.CanonicalEvent) *SnapshotView {
	return NewSnapshotView(Fold(events))
}

// LikeCount is the cardinality of the liked-by set, not the raw number of
// like events.
func (v *SnapshotView) LikeCount(targetID string) int {
	if s, ok := v.states[targetID]; ok {
		return len(s.LikedBy)
	}
	return 0
}

// RepostCount is the cardinality of the reposted-by set.
func (v *SnapshotView) RepostCount(targetID string) int {
	if s, ok := v.states[targetID]; ok {
		return len(s.RepostedBy)
	}
	return 0
}

// CommentCount is the total number of comment events for the target.
func (v *SnapshotView) CommentCount(targetID string) int {
	if s, ok := v.states[targetID]; ok {
		return s.CommentCount
	}
	return 0
}

// ViewerCount is the number of distinct actors that viewed the target.
func (v *SnapshotView) ViewerCount(targetID string) int {
	if s, ok := v.states[targetID]; ok {
		return len(s.ViewerSet)
	}
	return 0
}

// IsLikedBy reports membership in the liked-by set, case-insensitive on the
// actor address.
func (v *SnapshotView) IsLikedBy(targetID, actor string) bool {
	s, ok := v.states[targetID]
	if !ok {
		return false
	}
	_, liked := s.LikedBy[strings.ToLower(actor)]
	return liked
}

// IsRepostedBy reports membership in the reposted-by set.
func (v *SnapshotView) IsRepostedBy(targetID, actor string) bool {
	s, ok := v.states[targetID]
	if !ok {
		return false
	}
	_, reposted := s.RepostedBy[strings.ToLower(actor)]
	return reposted
}

// ActiveTypers returns the actors currently typing on the target. The order
// is sorted for stable output; callers must not attach meaning to it.
func (v *SnapshotView) ActiveTypers(targetID string) []string {
	s, ok := v.states[targetID]
	if !ok {
		return nil
	}
	return sortedMembers(s.TypingSet)
}

// Targets returns all known target ids, sorted.
func (v *SnapshotView) Targets() []string {
	out := make([]string, 0, len(v.states))
	for id := range v.states {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Record materializes one target's snapshot for persistence.
func (v *SnapshotView) Record(targetID string, computedAt time.Time) model.SnapshotRecord {
	rec := model.SnapshotRecord{
		TargetID:   targetID,
		ComputedAt: computedAt,
	}
	s, ok := v.states[targetID]
	if !ok {
		rec.LikedBy = []string{}
		rec.RepostedBy = []string{}
		rec.Typing = []string{}
		return rec
	}

	rec.LikedBy = sortedMembers(s.LikedBy)
	rec.RepostedBy = sortedMembers(s.RepostedBy)
	rec.Typing = sortedMembers(s.TypingSet)
	rec.LikeCount = len(s.LikedBy)
	rec.RepostCount = len(s.RepostedBy)
	rec.CommentCount = s.CommentCount
	rec.ViewerCount = len(s.ViewerSet)
	rec.TyperCount = len(s.TypingSet)
	return rec
}

func sortedMembers(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for member := range set {
		out = append(out, member)
	}
	sort.Strings(out)
	return out
}
