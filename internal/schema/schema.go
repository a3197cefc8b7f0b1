package schema

import (
	"fmt"
	"strings"

	"socialpulse/internal/model"
)

// FieldType is the semantic type of a declared field.
type FieldType string

const (
	FieldUint    FieldType = "uint"
	FieldString  FieldType = "string"
	FieldAddress FieldType = "address"
	FieldBool    FieldType = "bool"
)

// Field declares one named, typed position in a record schema.
type Field struct {
	Name string
	Type FieldType
}

// EventSchema declares the field order of one event category and how its
// fields map onto the canonical event. Schemas are supplied by configuration,
// never inferred from data.
type EventSchema struct {
	ID     string
	Fields []Field

	// Role bindings: field names carrying each canonical attribute.
	TimestampField string
	TargetField    string
	ActorField     string
	KindField      string
	ContentField   string

	// KindMap translates raw kind values (lowercased) into the canonical
	// enumeration. Values outside the map decode to KindUnknown.
	KindMap map[string]model.EventKind
}

// Index returns the position of a field name, or -1.
func (s *EventSchema) Index(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// FieldByName returns the declared field, or false.
func (s *EventSchema) FieldByName(name string) (Field, bool) {
	idx := s.Index(name)
	if idx < 0 {
		return Field{}, false
	}
	return s.Fields[idx], true
}

// Kind resolves a raw kind value against the kind map.
func (s *EventSchema) Kind(raw string) model.EventKind {
	kind, ok := s.KindMap[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return model.KindUnknown
	}
	return kind
}

// Validate checks the schema declaration is internally consistent.
func (s *EventSchema) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("schema id is required")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("schema %s: at least one field is required", s.ID)
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("schema %s: field name is required", s.ID)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("schema %s: duplicate field %s", s.ID, f.Name)
		}
		seen[f.Name] = struct{}{}
		switch f.Type {
		case FieldUint, FieldString, FieldAddress, FieldBool:
		default:
			return fmt.Errorf("schema %s: field %s has unknown type %s", s.ID, f.Name, f.Type)
		}
	}

	required := map[string]string{
		"timestamp": s.TimestampField,
		"target":    s.TargetField,
		"actor":     s.ActorField,
		"kind":      s.KindField,
	}
	for role, name := range required {
		if name == "" {
			return fmt.Errorf("schema %s: %s field binding is required", s.ID, role)
		}
		if s.Index(name) < 0 {
			return fmt.Errorf("schema %s: %s field %s is not declared", s.ID, role, name)
		}
	}
	if s.ContentField != "" && s.Index(s.ContentField) < 0 {
		return fmt.Errorf("schema %s: content field %s is not declared", s.ID, s.ContentField)
	}
	if len(s.KindMap) == 0 {
		return fmt.Errorf("schema %s: kind map is required", s.ID)
	}
	return nil
}

// ApplyKindOverrides merges extra raw-value mappings into the kind map.
// Unknown canonical names are rejected so a typo cannot silently route
// events to KindUnknown.
func (s *EventSchema) ApplyKindOverrides(overrides map[string]string) error {
	for raw, name := range overrides {
		kind := model.EventKind(strings.ToLower(strings.TrimSpace(name)))
		if !kind.Known() {
			return fmt.Errorf("unsupported kind in kind map: %s", name)
		}
		raw = strings.ToLower(strings.TrimSpace(raw))
		if raw == "" {
			continue
		}
		s.KindMap[raw] = kind
	}
	return nil
}
