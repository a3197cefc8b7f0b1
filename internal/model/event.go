package model

// EventKind identifies one of the fixed canonical event categories.
type EventKind string

const (
	KindLike        EventKind = "like"
	KindUnlike      EventKind = "unlike"
	KindComment     EventKind = "comment"
	KindRepost      EventKind = "repost"
	KindUnrepost    EventKind = "unrepost"
	KindViewStart   EventKind = "view_start"
	KindTypingStart EventKind = "typing_start"
	KindTypingStop  EventKind = "typing_stop"

	// KindUnknown marks a kind value outside the enumeration. Events
	// carrying it are excluded from every aggregate set.
	KindUnknown EventKind = ""
)

// Known reports whether the kind belongs to the fixed enumeration.
func (k EventKind) Known() bool {
	switch k {
	case KindLike, KindUnlike, KindComment, KindRepost, KindUnrepost,
		KindViewStart, KindTypingStart, KindTypingStop:
		return true
	default:
		return false
	}
}

// CanonicalEvent is the normalized form of one raw record. It is immutable
// once decoded; Actor is always lowercase.
type CanonicalEvent struct {
	Timestamp int64     `json:"timestamp"`
	TargetID  string    `json:"target_id"`
	Actor     string    `json:"actor"`
	Kind      EventKind `json:"kind"`
	Content   string    `json:"content,omitempty"`
	Seq       uint64    `json:"seq"`
}
