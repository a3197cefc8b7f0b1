package aggregate

import (
	"strings"

	"socialpulse/internal/model"
)

// toggleKey addresses the retained latest toggle event for one actor within
// one toggle pair on one target.
type toggleKey struct {
	target string
	actor  string
	pair   togglePair
}

type togglePair int

const (
	pairLike togglePair = iota
	pairRepost
	pairTyping
)

type latestToggle struct {
	kind model.EventKind
	ts   int64
	seq  uint64
}

// Reducer folds an unordered collection of canonical events into per-target
// aggregate state. It is a pure function of its input: feeding the same
// events again, in any order, produces identical state.
type Reducer struct {
	states  map[string]*model.AggregateState
	toggles map[toggleKey]latestToggle
	order   []string
}

func NewReducer() *Reducer {
	return &Reducer{
		states:  make(map[string]*model.AggregateState),
		toggles: make(map[toggleKey]latestToggle),
	}
}

// Fold reduces events into a map of aggregate states keyed by target id.
func Fold(events []model.CanonicalEvent) map[string]*model.AggregateState {
	r := NewReducer()
	for _, event := range events {
		r.Apply(event)
	}
	return r.States()
}

// Apply folds one event. Events with an unknown kind or missing actor or
// target are excluded from all state, never rejected loudly.
func (r *Reducer) Apply(event model.CanonicalEvent) {
	if event.TargetID == "" || event.Actor == "" || !event.Kind.Known() {
		return
	}
	actor := strings.ToLower(event.Actor)
	state := r.state(event.TargetID)

	switch event.Kind {
	case model.KindComment:
		// Comments never toggle: every one counts, repeats included.
		state.CommentCount++
	case model.KindViewStart:
		// Presence is monotonic: no event kind removes a viewer.
		state.ViewerSet[actor] = struct{}{}
	case model.KindLike, model.KindUnlike:
		r.applyToggle(event, actor, pairLike, state.LikedBy, model.KindLike)
	case model.KindRepost, model.KindUnrepost:
		r.applyToggle(event, actor, pairRepost, state.RepostedBy, model.KindRepost)
	case model.KindTypingStart, model.KindTypingStop:
		r.applyToggle(event, actor, pairTyping, state.TypingSet, model.KindTypingStart)
	}
}

// applyToggle retains only the latest event per actor per toggle pair. An
// event replaces the retained one when its timestamp is later, or on an
// equal timestamp when its fetch sequence is not older.
func (r *Reducer) applyToggle(event model.CanonicalEvent, actor string, pair togglePair, set map[string]struct{}, onKind model.EventKind) {
	key := toggleKey{target: event.TargetID, actor: actor, pair: pair}

	cur, seen := r.toggles[key]
	if seen {
		if event.Timestamp < cur.ts {
			return
		}
		if event.Timestamp == cur.ts && event.Seq < cur.seq {
			return
		}
	}

	r.toggles[key] = latestToggle{kind: event.Kind, ts: event.Timestamp, seq: event.Seq}
	if event.Kind == onKind {
		set[actor] = struct{}{}
	} else {
		delete(set, actor)
	}
}

func (r *Reducer) state(targetID string) *model.AggregateState {
	state, ok := r.states[targetID]
	if !ok {
		state = model.NewAggregateState(targetID)
		r.states[targetID] = state
		r.order = append(r.order, targetID)
	}
	return state
}

// States returns the folded states keyed by target id.
func (r *Reducer) States() map[string]*model.AggregateState {
	return r.states
}

// Targets returns target ids in first-seen order.
func (r *Reducer) Targets() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
