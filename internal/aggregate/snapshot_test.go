package aggregate

import (
	"reflect"
	"testing"
	"time"

	"socialpulse/internal/model"
)

func TestSnapshotRecord(t *testing.T) {
	view := Snapshot([]model.CanonicalEvent{
		ev(model.KindLike, "t1", userB, 100, 0),
		ev(model.KindLike, "t1", userA, 110, 1),
		ev(model.KindRepost, "t1", userA, 120, 2),
		ev(model.KindComment, "t1", userC, 130, 3),
		ev(model.KindViewStart, "t1", userC, 140, 4),
		ev(model.KindTypingStart, "t1", userB, 150, 5),
	})

	computedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := view.Record("t1", computedAt)

	if rec.LikeCount != 2 || rec.RepostCount != 1 || rec.CommentCount != 1 {
		t.Fatalf("counts mismatch: %+v", rec)
	}
	if rec.ViewerCount != 1 || rec.TyperCount != 1 {
		t.Fatalf("presence counts mismatch: %+v", rec)
	}
	if want := []string{userA, userB}; !reflect.DeepEqual(rec.LikedBy, want) {
		t.Fatalf("liked_by mismatch: %v", rec.LikedBy)
	}
	if !rec.ComputedAt.Equal(computedAt) {
		t.Fatalf("computed_at mismatch: %v", rec.ComputedAt)
	}
}

func TestSnapshotRecordUnknownTarget(t *testing.T) {
	view := Snapshot(nil)
	rec := view.Record("missing", time.Now())

	if rec.TargetID != "missing" {
		t.Fatalf("target mismatch: %s", rec.TargetID)
	}
	if rec.LikeCount != 0 || len(rec.LikedBy) != 0 {
		t.Fatalf("expected empty record: %+v", rec)
	}
}

func TestViewReadsDoNotMutate(t *testing.T) {
	events := []model.CanonicalEvent{
		ev(model.KindTypingStart, "t1", userA, 1, 0),
	}
	view := Snapshot(events)

	typers := view.ActiveTypers("t1")
	typers[0] = "mutated"

	if got := view.ActiveTypers("t1"); got[0] != userA {
		t.Fatalf("caller mutation leaked into view: %v", got)
	}
}
