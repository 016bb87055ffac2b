package homework

import (
	"encoding/json"
	"fmt"
	"math"
)

// ExtractRecords checks the shape of raw and returns its "homeworks" list unchanged.
// Elements are not inspected; use AsRecord on the one being reported.
// An empty slice with a nil error means there is nothing new since the cursor.
func ExtractRecords(raw RawResponse) ([]any, error) {
	if apiErr := reportedError(raw); apiErr != nil {
		return nil, &FetchError{Kind: FetchKindAPIError, Err: apiErr}
	}

	value, ok := raw[FieldHomeworks]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingField, FieldHomeworks)
	}

	switch items := value.(type) {
	case []any:
		return items, nil
	case []Record:
		out := make([]any, len(items))
		for i, rec := range items {
			out[i] = rec
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q is %T, want a list", ErrWrongShape, FieldHomeworks, value)
	}
}

// AsRecord converts a "homeworks" element into a Record.
func AsRecord(item any) (Record, error) {
	switch rec := item.(type) {
	case map[string]any:
		return Record(rec), nil
	case Record:
		return rec, nil
	default:
		return nil, fmt.Errorf("%w: homework is %T, want an object", ErrWrongShape, item)
	}
}

// NextCursor returns the server-supplied cursor, if raw carries a usable one.
func NextCursor(raw RawResponse) (int64, bool) {
	value, ok := raw[FieldCurrentDate]
	if !ok {
		return 0, false
	}

	var cursor int64
	switch v := value.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		cursor = n
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		cursor = int64(v)
	case int:
		cursor = int64(v)
	case int64:
		cursor = v
	default:
		return 0, false
	}

	if cursor < 0 {
		return 0, false
	}
	return cursor, true
}

// reportedError returns the server-side error carried in the body, if any.
func reportedError(raw RawResponse) error {
	code, hasCode := raw[FieldCode]
	msg, hasErr := raw[FieldError]
	switch {
	case hasCode && hasErr:
		return fmt.Errorf("code=%v error=%v", code, msg)
	case hasCode:
		return fmt.Errorf("code=%v", code)
	case hasErr:
		return fmt.Errorf("error=%v", msg)
	}
	return nil
}
