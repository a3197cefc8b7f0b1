package decode

import (
	"fmt"
	"strconv"
	"strings"
)

// maxUnwrapDepth bounds recursive {value: ...} unwrapping. Wrappers deeper
// than this are treated as malformed rather than followed forever.
const maxUnwrapDepth = 10

// unwrap peels nested {value: X} containers until a non-container value is
// reached. Observed source records wrap field values this way up to several
// levels deep.
func unwrap(v interface{}) (interface{}, error) {
	for depth := 0; ; depth++ {
		m, ok := v.(map[string]interface{})
		if !ok {
			return v, nil
		}
		inner, ok := m["value"]
		if !ok {
			return v, nil
		}
		if depth >= maxUnwrapDepth {
			return nil, fmt.Errorf("value wrapper exceeds depth %d", maxUnwrapDepth)
		}
		v = inner
	}
}

// asUint parses a numeric field value. Large integers arrive as decimal
// strings; anything unparseable yields 0 so one malformed number cannot sink
// the batch.
func asUint(v interface{}) int64 {
	switch typed := v.(type) {
	case float64:
		if typed < 0 {
			return 0
		}
		return int64(typed)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil || parsed < 0 {
			return 0
		}
		return parsed
	case int64:
		if typed < 0 {
			return 0
		}
		return typed
	default:
		return 0
	}
}

// asString renders a field value as a string.
func asString(v interface{}) string {
	switch typed := v.(type) {
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", typed)
	}
}

// asBool parses a boolean field value.
func asBool(v interface{}) bool {
	switch typed := v.(type) {
	case bool:
		return typed
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
		if err != nil {
			return false
		}
		return parsed
	case float64:
		return typed != 0
	default:
		return false
	}
}
