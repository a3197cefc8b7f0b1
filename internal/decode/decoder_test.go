package decode

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"socialpulse/internal/model"
	"socialpulse/internal/schema"
)

func socialRecord(t *testing.T, fields interface{}) model.RawRecord {
	t.Helper()
	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal fields: %v", err)
	}
	return model.RawRecord{
		SchemaID:  "social_interactions",
		Publisher: "0x9999999999999999999999999999999999999999",
		Seq:       7,
		Fields:    data,
	}
}

func TestDecodePositional(t *testing.T) {
	decoder, err := NewDecoder(schema.SocialInteractions())
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	record := socialRecord(t, []interface{}{
		"evt-1", "1700000000123", "like", "post-1", "post",
		"0xAbCdEF0123456789abcdef0123456789ABCDEF01", "", "", "0",
	})

	event, err := decoder.Decode(record)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if event.Timestamp != 1700000000123 {
		t.Fatalf("timestamp mismatch: %d", event.Timestamp)
	}
	if event.TargetID != "post-1" {
		t.Fatalf("target mismatch: %s", event.TargetID)
	}
	if event.Kind != model.KindLike {
		t.Fatalf("kind mismatch: %s", event.Kind)
	}
	if event.Actor != "0xabcdef0123456789abcdef0123456789abcdef01" {
		t.Fatalf("actor not lowercased: %s", event.Actor)
	}
	if event.Seq != 7 {
		t.Fatalf("seq mismatch: %d", event.Seq)
	}
}

func TestDecodeNamed(t *testing.T) {
	decoder, err := NewDecoder(schema.SocialInteractions())
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	record := socialRecord(t, map[string]interface{}{
		"id":              "evt-2",
		"timestamp":       float64(42),
		"interactionType": "comment",
		"targetId":        "post-2",
		"targetType":      "post",
		"fromUser":        "0x1111111111111111111111111111111111111111",
		"content":         "great track",
		"parentId":        "",
		"tipAmount":       "0",
	})

	event, err := decoder.Decode(record)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.Kind != model.KindComment {
		t.Fatalf("kind mismatch: %s", event.Kind)
	}
	if event.Content != "great track" {
		t.Fatalf("content mismatch: %q", event.Content)
	}
}

func TestDecodeNestedValueWrappers(t *testing.T) {
	decoder, err := NewDecoder(schema.Presence())
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	wrap := func(v interface{}, levels int) interface{} {
		for i := 0; i < levels; i++ {
			v = map[string]interface{}{"value": v}
		}
		return v
	}

	record := model.RawRecord{
		SchemaID: "presence",
		Fields: mustJSON(t, map[string]interface{}{
			"timestamp":   wrap("1700000000500", 3),
			"postId":      wrap("post-9", 5),
			"userAddress": wrap("0x2222222222222222222222222222222222222222", 1),
			"action":      wrap("typing_start", 2),
		}),
	}

	event, err := decoder.Decode(record)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.Timestamp != 1700000000500 {
		t.Fatalf("timestamp mismatch: %d", event.Timestamp)
	}
	if event.Kind != model.KindTypingStart {
		t.Fatalf("kind mismatch: %s", event.Kind)
	}
}

func TestDecodeWrapperDepthBound(t *testing.T) {
	decoder, err := NewDecoder(schema.Presence())
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	deep := interface{}("post-1")
	for i := 0; i < maxUnwrapDepth+2; i++ {
		deep = map[string]interface{}{"value": deep}
	}

	record := model.RawRecord{
		SchemaID: "presence",
		Fields: mustJSON(t, map[string]interface{}{
			"timestamp":   "1",
			"postId":      deep,
			"userAddress": "0x2222222222222222222222222222222222222222",
			"action":      "view_start",
		}),
	}

	_, err = decoder.Decode(record)
	if err == nil {
		t.Fatalf("expected depth error")
	}

	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Field != "postId" {
		t.Fatalf("expected postId field error, got %v", err)
	}
}

func TestDecodeNumericParseFailureDefaultsZero(t *testing.T) {
	decoder, err := NewDecoder(schema.SocialInteractions())
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	record := socialRecord(t, map[string]interface{}{
		"id":              "evt-3",
		"timestamp":       "not-a-number",
		"interactionType": "like",
		"targetId":        "post-3",
		"targetType":      "post",
		"fromUser":        "0x1111111111111111111111111111111111111111",
		"content":         "",
		"parentId":        "",
		"tipAmount":       "",
	})

	event, err := decoder.Decode(record)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.Timestamp != 0 {
		t.Fatalf("expected zero timestamp, got %d", event.Timestamp)
	}
}

func TestDecodeUnknownKindPassesThrough(t *testing.T) {
	decoder, err := NewDecoder(schema.SocialInteractions())
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	record := socialRecord(t, map[string]interface{}{
		"id":              "evt-4",
		"timestamp":       "5",
		"interactionType": "superlike",
		"targetId":        "post-4",
		"targetType":      "post",
		"fromUser":        "0x1111111111111111111111111111111111111111",
		"content":         "",
		"parentId":        "",
		"tipAmount":       "0",
	})

	event, err := decoder.Decode(record)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.Kind.Known() {
		t.Fatalf("expected unknown kind, got %s", event.Kind)
	}
}

func TestDecodeInvalidActorFails(t *testing.T) {
	decoder, err := NewDecoder(schema.SocialInteractions())
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	record := socialRecord(t, map[string]interface{}{
		"id":              "evt-5",
		"timestamp":       "5",
		"interactionType": "like",
		"targetId":        "post-5",
		"targetType":      "post",
		"fromUser":        "not-an-address",
		"content":         "",
		"parentId":        "",
		"tipAmount":       "0",
	})

	if _, err := decoder.Decode(record); err == nil {
		t.Fatalf("expected decode failure for invalid actor")
	}
}

func TestDecodeMalformedRecordDoesNotAbortBatch(t *testing.T) {
	decoder, err := NewDecoder(schema.SocialInteractions())
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	records := make([]model.RawRecord, 0, 6)
	for i := 0; i < 5; i++ {
		records = append(records, socialRecord(t, []interface{}{
			fmt.Sprintf("evt-%d", i), fmt.Sprintf("%d", 100+i), "like", "post-1", "post",
			fmt.Sprintf("0x%040d", i), "", "", "0",
		}))
	}
	records = append(records, model.RawRecord{SchemaID: "social_interactions", Fields: json.RawMessage(`"rubbish"`)})

	var events []model.CanonicalEvent
	for _, record := range records {
		event, err := decoder.Decode(record)
		if err != nil {
			continue
		}
		events = append(events, event)
	}

	if len(events) != 5 {
		t.Fatalf("expected 5 decoded events, got %d", len(events))
	}
}

func TestCanDecode(t *testing.T) {
	decoder, err := NewDecoder(schema.Presence())
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}
	if !decoder.CanDecode("presence") {
		t.Fatalf("expected presence records to be decodable")
	}
	if decoder.CanDecode("social_interactions") {
		t.Fatalf("expected foreign schema to be rejected")
	}
}

func TestNormalizeAddressPrefix(t *testing.T) {
	a, err := normalizeAddress("0xABCDEF0123456789ABCDEF0123456789ABCDEF01")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	b, err := normalizeAddress("abcdef0123456789abcdef0123456789abcdef01")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if a != b {
		t.Fatalf("address forms mismatch: %s != %s", a, b)
	}
	if !strings.HasPrefix(a, "0x") {
		t.Fatalf("expected 0x prefix: %s", a)
	}
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}
