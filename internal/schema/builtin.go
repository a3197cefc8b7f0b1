package schema

import (
	"fmt"

	"socialpulse/internal/model"
)

// SocialInteractions is the interaction-log schema: likes, comments and
// reposts against posts and playlists.
func SocialInteractions() *EventSchema {
	return &EventSchema{
		ID: "social_interactions",
		Fields: []Field{
			{Name: "id", Type: FieldString},
			{Name: "timestamp", Type: FieldUint},
			{Name: "interactionType", Type: FieldString},
			{Name: "targetId", Type: FieldString},
			{Name: "targetType", Type: FieldString},
			{Name: "fromUser", Type: FieldAddress},
			{Name: "content", Type: FieldString},
			{Name: "parentId", Type: FieldString},
			{Name: "tipAmount", Type: FieldUint},
		},
		TimestampField: "timestamp",
		TargetField:    "targetId",
		ActorField:     "fromUser",
		KindField:      "interactionType",
		ContentField:   "content",
		KindMap: map[string]model.EventKind{
			"like":     model.KindLike,
			"unlike":   model.KindUnlike,
			"comment":  model.KindComment,
			"repost":   model.KindRepost,
			"unrepost": model.KindUnrepost,
		},
	}
}

// Presence is the live-activity schema: viewing and typing signals.
func Presence() *EventSchema {
	return &EventSchema{
		ID: "presence",
		Fields: []Field{
			{Name: "timestamp", Type: FieldUint},
			{Name: "postId", Type: FieldString},
			{Name: "userAddress", Type: FieldAddress},
			{Name: "action", Type: FieldString},
		},
		TimestampField: "timestamp",
		TargetField:    "postId",
		ActorField:     "userAddress",
		KindField:      "action",
		KindMap: map[string]model.EventKind{
			"view_start":   model.KindViewStart,
			"typing_start": model.KindTypingStart,
			"typing_stop":  model.KindTypingStop,
		},
	}
}

// ByID resolves a built-in schema by identifier.
func ByID(id string) (*EventSchema, error) {
	switch id {
	case "social_interactions":
		return SocialInteractions(), nil
	case "presence":
		return Presence(), nil
	default:
		return nil, fmt.Errorf("unknown schema: %s", id)
	}
}
