package store

import (
	"encoding/json"
	"fmt"
)

// Decode converts a generic record into a typed struct through its JSON tags.
func Decode(rec Record, out any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	return nil
}

// DecodeAll converts a slice of generic records into a slice of typed structs.
func DecodeAll[T any](recs []Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		var v T
		if err := Decode(rec, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Encode converts a typed struct into a generic record through its JSON tags.
func Encode(in any) (Record, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return rec, nil
}
