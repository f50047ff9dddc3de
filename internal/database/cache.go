package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

// CacheItem is a typed wrapper around one cache key. HashPattern, when set,
// is applied to the key with Sprintf so concerns can namespace their keys.
type CacheItem[T any] struct {
	Cache       CacheClient
	Key         string
	Value       T
	Expiry      *time.Duration
	HashPattern *string
}

func (ci CacheItem[T]) cacheKey() string {
	if ci.HashPattern != nil {
		return fmt.Sprintf(*ci.HashPattern, ci.Key)
	}
	return ci.Key
}

func SetValue[T any](ctx context.Context, ci CacheItem[T]) error {
	payload, err := json.Marshal(ci.Value)
	if err != nil {
		return err
	}

	builder := ci.Cache.B().Set().Key(ci.cacheKey()).Value(string(payload))
	if ci.Expiry != nil {
		return ci.Cache.Do(ctx, builder.Ex(*ci.Expiry).Build()).Error()
	}
	return ci.Cache.Do(ctx, builder.Build()).Error()
}

// GetValue returns the cached value and whether the key existed.
func GetValue[T any](ctx context.Context, ci CacheItem[T]) (T, bool, error) {
	var out T

	raw, err := ci.Cache.Do(ctx, ci.Cache.B().Get().Key(ci.cacheKey()).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return out, false, nil
		}
		return out, false, err
	}

	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, false, err
	}
	return out, true, nil
}

func DeleteCachedValue[T any](ctx context.Context, ci CacheItem[T]) error {
	return ci.Cache.Do(ctx, ci.Cache.B().Del().Key(ci.cacheKey()).Build()).Error()
}
