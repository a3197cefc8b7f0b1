package aggregate

import (
	"math/rand"
	"reflect"
	"testing"

	"socialpulse/internal/model"
)

const (
	userA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	userB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	userC = "0xcccccccccccccccccccccccccccccccccccccccc"
)

func ev(kind model.EventKind, target, actor string, ts int64, seq uint64) model.CanonicalEvent {
	return model.CanonicalEvent{Timestamp: ts, TargetID: target, Actor: actor, Kind: kind, Seq: seq}
}

func TestLikeThenUnlike(t *testing.T) {
	view := Snapshot([]model.CanonicalEvent{
		ev(model.KindLike, "t1", userA, 100, 0),
		ev(model.KindUnlike, "t1", userA, 200, 1),
	})

	if got := view.LikeCount("t1"); got != 0 {
		t.Fatalf("like count mismatch: %d", got)
	}
	if view.IsLikedBy("t1", userA) {
		t.Fatalf("expected unliked state")
	}
}

func TestOutOfOrderArrivalLatestTimestampWins(t *testing.T) {
	view := Snapshot([]model.CanonicalEvent{
		ev(model.KindLike, "t1", userA, 100, 0),
		ev(model.KindUnlike, "t1", userA, 50, 1),
	})

	if !view.IsLikedBy("t1", userA) {
		t.Fatalf("expected the t=100 like to win over the earlier unlike")
	}
	if got := view.LikeCount("t1"); got != 1 {
		t.Fatalf("like count mismatch: %d", got)
	}
}

func TestTimestampTieBreaksOnSequence(t *testing.T) {
	view := Snapshot([]model.CanonicalEvent{
		ev(model.KindUnlike, "t1", userA, 100, 5),
		ev(model.KindLike, "t1", userA, 100, 2),
	})

	// Equal timestamps: the later-fetched event (seq 5) wins.
	if view.IsLikedBy("t1", userA) {
		t.Fatalf("expected the higher-sequence unlike to win the tie")
	}
}

func TestViewersAccumulate(t *testing.T) {
	view := Snapshot([]model.CanonicalEvent{
		ev(model.KindViewStart, "t1", userA, 10, 0),
		ev(model.KindViewStart, "t1", userB, 20, 1),
		ev(model.KindViewStart, "t1", userB, 30, 2),
	})

	if got := view.ViewerCount("t1"); got != 2 {
		t.Fatalf("viewer count mismatch: %d", got)
	}
}

func TestTypingStartStop(t *testing.T) {
	view := Snapshot([]model.CanonicalEvent{
		ev(model.KindTypingStart, "t1", userA, 1, 0),
		ev(model.KindTypingStart, "t1", userB, 2, 1),
		ev(model.KindTypingStart, "t1", userC, 3, 2),
		ev(model.KindTypingStop, "t1", userA, 4, 3),
	})

	want := []string{userB, userC}
	if got := view.ActiveTypers("t1"); !reflect.DeepEqual(got, want) {
		t.Fatalf("typers mismatch: %v != %v", got, want)
	}
}

func TestCommentsCountEachEvent(t *testing.T) {
	view := Snapshot([]model.CanonicalEvent{
		ev(model.KindComment, "t1", userA, 1, 0),
		ev(model.KindComment, "t1", userA, 2, 1),
		ev(model.KindComment, "t1", userA, 3, 2),
	})

	if got := view.CommentCount("t1"); got != 3 {
		t.Fatalf("comment count mismatch: %d", got)
	}
}

func TestCaseInsensitiveActorIdentity(t *testing.T) {
	view := Snapshot([]model.CanonicalEvent{
		ev(model.KindLike, "t1", "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", 100, 0),
		ev(model.KindLike, "t1", userA, 200, 1),
	})

	if got := view.LikeCount("t1"); got != 1 {
		t.Fatalf("expected one actor across case variants, got %d", got)
	}
	if !view.IsLikedBy("t1", "0xAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAa") {
		t.Fatalf("membership test should be case-insensitive")
	}
}

func TestUnknownKindAndMissingFieldsExcluded(t *testing.T) {
	view := Snapshot([]model.CanonicalEvent{
		ev(model.KindLike, "t1", userA, 100, 0),
		ev(model.KindUnknown, "t1", userB, 100, 1),
		ev(model.KindLike, "", userB, 100, 2),
		ev(model.KindLike, "t1", "", 100, 3),
	})

	if got := view.LikeCount("t1"); got != 1 {
		t.Fatalf("expected excluded events to have no effect, got %d", got)
	}
}

func TestFoldIsOrderIndependent(t *testing.T) {
	events := []model.CanonicalEvent{
		ev(model.KindLike, "t1", userA, 100, 0),
		ev(model.KindUnlike, "t1", userA, 200, 1),
		ev(model.KindLike, "t1", userB, 150, 2),
		ev(model.KindRepost, "t1", userA, 120, 3),
		ev(model.KindComment, "t1", userC, 90, 4),
		ev(model.KindTypingStart, "t2", userA, 10, 5),
		ev(model.KindTypingStop, "t2", userA, 11, 6),
		ev(model.KindViewStart, "t2", userB, 12, 7),
	}

	base := Fold(events)

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]model.CanonicalEvent, len(events))
		copy(shuffled, events)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		got := Fold(shuffled)
		if !statesEqual(base, got) {
			t.Fatalf("fold differs under shuffle %d", trial)
		}
	}
}

func TestFoldIsIdempotent(t *testing.T) {
	events := []model.CanonicalEvent{
		ev(model.KindLike, "t1", userA, 100, 0),
		ev(model.KindComment, "t1", userB, 110, 1),
		ev(model.KindViewStart, "t1", userC, 120, 2),
	}

	first := Fold(events)
	second := Fold(events)
	if !statesEqual(first, second) {
		t.Fatalf("re-running the fold changed the result")
	}
}

func TestEmptySourceYieldsEmptyState(t *testing.T) {
	view := Snapshot(nil)
	if got := view.LikeCount("t1"); got != 0 {
		t.Fatalf("like count mismatch: %d", got)
	}
	if got := view.ActiveTypers("t1"); got != nil {
		t.Fatalf("expected nil typers, got %v", got)
	}
	if got := len(view.Targets()); got != 0 {
		t.Fatalf("expected no targets, got %d", got)
	}
}

func statesEqual(a, b map[string]*model.AggregateState) bool {
	if len(a) != len(b) {
		return false
	}
	for id, sa := range a {
		sb, ok := b[id]
		if !ok {
			return false
		}
		if !reflect.DeepEqual(sa, sb) {
			return false
		}
	}
	return true
}
