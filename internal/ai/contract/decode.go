package contract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// validator is implemented by result types with range checks beyond presence.
type validator interface {
	Validate() error
}

// CleanJSON strips surrounding whitespace and markdown code fences.
func CleanJSON(input string) string {
	clean := strings.TrimSpace(input)

	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")

	return strings.TrimSpace(clean)
}

// DecodeObject parses a JSON object into T, failing when any required key is
// absent or null. Every failure wraps ErrInvalidResponse; nothing is defaulted.
func DecodeObject[T any](raw string, required ...string) (T, error) {
	var zero T
	data := []byte(CleanJSON(raw))
	if len(data) == 0 {
		return zero, fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if err := checkRequired(fields, required); err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if v, ok := any(out).(validator); ok {
		if err := v.Validate(); err != nil {
			return zero, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}
	return out, nil
}

// DecodeArray parses a JSON array of objects, applying the required check to each element.
func DecodeArray[T any](raw string, required ...string) ([]T, error) {
	data := []byte(CleanJSON(raw))
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(elems) == 0 {
		return nil, fmt.Errorf("%w: empty array", ErrInvalidResponse)
	}

	out := make([]T, 0, len(elems))
	for i, elem := range elems {
		v, err := DecodeObject[T](string(elem), required...)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func checkRequired(fields map[string]json.RawMessage, required []string) error {
	for _, name := range required {
		v, ok := fields[name]
		if !ok || string(v) == "null" {
			return fmt.Errorf("%w: missing required field %q", ErrInvalidResponse, name)
		}
	}
	return nil
}
