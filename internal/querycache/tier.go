package querycache

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tier is a shared second level behind the in-memory cache. Values cross
// it as JSON, so a tier hit yields json.RawMessage; use As to decode.
type Tier interface {
	Get(ctx context.Context, key Key) (json.RawMessage, bool, error)
	Set(ctx context.Context, key Key, data any) error
	DeletePrefix(ctx context.Context, prefix Key) error
}

// As converts cached data to T. Data that came from a tier (or any other
// shape) is round-tripped through JSON.
func As[T any](data any) (T, error) {
	var out T
	switch v := data.(type) {
	case T:
		return v, nil
	case json.RawMessage:
		if err := json.Unmarshal(v, &out); err != nil {
			return out, fmt.Errorf("failed to decode cached data: %w", err)
		}
		return out, nil
	case nil:
		return out, nil
	}

	b, err := json.Marshal(data)
	if err != nil {
		return out, fmt.Errorf("failed to encode cached data: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("failed to decode cached data: %w", err)
	}
	return out, nil
}
