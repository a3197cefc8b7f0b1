package decode

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"socialpulse/internal/model"
	"socialpulse/internal/schema"
)

// FieldError is a decode failure scoped to one declared field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Decoder normalizes raw records of one schema into canonical events. It has
// no aggregation semantics: shape handling ends here.
type Decoder struct {
	schema *schema.EventSchema
}

// NewDecoder builds a decoder for a validated schema.
func NewDecoder(s *schema.EventSchema) (*Decoder, error) {
	if s == nil {
		return nil, fmt.Errorf("schema is nil")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Decoder{schema: s}, nil
}

// CanDecode checks whether the record belongs to this decoder's schema.
func (d *Decoder) CanDecode(schemaID string) bool {
	return schemaID == d.schema.ID
}

// Decode converts a RawRecord into a CanonicalEvent. A record whose required
// fields cannot be extracted fails as a unit; the caller skips it and moves
// on to the rest of the batch.
func (d *Decoder) Decode(record model.RawRecord) (model.CanonicalEvent, error) {
	var event model.CanonicalEvent

	fields, err := parseFields(record.Fields)
	if err != nil {
		return event, err
	}

	ts, err := d.fieldValue(fields, d.schema.TimestampField)
	if err != nil {
		return event, err
	}
	target, err := d.fieldValue(fields, d.schema.TargetField)
	if err != nil {
		return event, err
	}
	actor, err := d.fieldValue(fields, d.schema.ActorField)
	if err != nil {
		return event, err
	}
	rawKind, err := d.fieldValue(fields, d.schema.KindField)
	if err != nil {
		return event, err
	}

	targetID := strings.TrimSpace(asString(target))
	if targetID == "" {
		return event, &FieldError{Field: d.schema.TargetField, Err: fmt.Errorf("empty target id")}
	}

	address, err := normalizeAddress(asString(actor))
	if err != nil {
		return event, &FieldError{Field: d.schema.ActorField, Err: err}
	}

	event = model.CanonicalEvent{
		Timestamp: asUint(ts),
		TargetID:  targetID,
		Actor:     address,
		Kind:      d.schema.Kind(asString(rawKind)),
		Seq:       record.Seq,
	}

	if d.schema.ContentField != "" {
		if content, err := d.fieldValue(fields, d.schema.ContentField); err == nil {
			event.Content = asString(content)
		}
	}

	return event, nil
}

// fieldValue extracts and unwraps one declared field from either record form.
func (d *Decoder) fieldValue(fields recordFields, name string) (interface{}, error) {
	idx := d.schema.Index(name)
	if idx < 0 {
		return nil, &FieldError{Field: name, Err: fmt.Errorf("not declared in schema %s", d.schema.ID)}
	}

	raw, ok := fields.at(idx, name)
	if !ok {
		return nil, &FieldError{Field: name, Err: fmt.Errorf("missing")}
	}

	value, err := unwrap(raw)
	if err != nil {
		return nil, &FieldError{Field: name, Err: err}
	}
	return value, nil
}

// recordFields abstracts over positional and named record forms so one
// schema drives both.
type recordFields struct {
	positional []interface{}
	named      map[string]interface{}
}

func (f recordFields) at(idx int, name string) (interface{}, bool) {
	if f.positional != nil {
		if idx >= len(f.positional) {
			return nil, false
		}
		return f.positional[idx], true
	}
	v, ok := f.named[name]
	return v, ok
}

func parseFields(raw json.RawMessage) (recordFields, error) {
	if len(raw) == 0 {
		return recordFields{}, fmt.Errorf("record has no fields")
	}

	var positional []interface{}
	if err := json.Unmarshal(raw, &positional); err == nil {
		return recordFields{positional: positional}, nil
	}

	var named map[string]interface{}
	if err := json.Unmarshal(raw, &named); err != nil {
		return recordFields{}, fmt.Errorf("parse fields: %w", err)
	}
	return recordFields{named: named}, nil
}

// normalizeAddress lowercases a wallet address. This is the single
// normalization point for the case-insensitive actor identity invariant.
func normalizeAddress(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("empty address")
	}
	if !common.IsHexAddress(input) {
		return "", fmt.Errorf("invalid address: %s", input)
	}
	return strings.ToLower(common.HexToAddress(input).Hex()), nil
}
