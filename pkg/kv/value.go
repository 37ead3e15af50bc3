package kv

import (
	"context"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// GetValue reads key and msgpack-decodes it into v.
func GetValue(ctx context.Context, s Store, key Key, v any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("kv: decode %s: %w", key, err)
	}
	return nil
}

// SetValue msgpack-encodes v and stores it under key.
func SetValue(ctx context.Context, s Store, key Key, v any) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("kv: encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
