package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

// CacheBuilder stores JSON values in valkey. A builder over a nil client is
// valid: Set and Delete do nothing and Get always misses, so callers work
// the same with or without a cache server.
type CacheBuilder struct {
	client CacheClient
	key    string
	value  any
	ttl    time.Duration
	ctx    context.Context
}

func NewCacheBuilder(client CacheClient, key string) *CacheBuilder {
	return &CacheBuilder{
		client: client,
		key:    key,
		ctx:    context.Background(),
	}
}

func (b *CacheBuilder) WithStruct(value any) *CacheBuilder {
	b.value = value
	return b
}

func (b *CacheBuilder) WithTTL(ttl time.Duration) *CacheBuilder {
	b.ttl = ttl
	return b
}

func (b *CacheBuilder) WithContext(ctx context.Context) *CacheBuilder {
	if ctx != nil {
		b.ctx = ctx
	}
	return b
}

// WithHashPattern prefixes the key, e.g. "dashboard:%s".
func (b *CacheBuilder) WithHashPattern(pattern string) *CacheBuilder {
	b.key = fmt.Sprintf(pattern, b.key)
	return b
}

func (b *CacheBuilder) Key() string {
	return b.key
}

func (b *CacheBuilder) Set() error {
	if b.client == nil {
		return nil
	}
	if b.key == "" {
		return fmt.Errorf("cache key is empty")
	}

	data, err := json.Marshal(b.value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value for %s: %w", b.key, err)
	}

	set := b.client.B().Set().Key(b.key).Value(valkey.BinaryString(data))
	if b.ttl >= time.Second {
		err = b.client.Do(b.ctx, set.ExSeconds(int64(b.ttl/time.Second)).Build()).Error()
	} else {
		err = b.client.Do(b.ctx, set.Build()).Error()
	}

	if err != nil {
		return fmt.Errorf("failed to set cache value for %s: %w", b.key, err)
	}
	return nil
}

func (b *CacheBuilder) Get(out any) (bool, error) {
	if b.client == nil {
		return false, nil
	}

	data, err := b.client.Do(b.ctx, b.client.B().Get().Key(b.key).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get cache value for %s: %w", b.key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value for %s: %w", b.key, err)
	}
	return true, nil
}

func (b *CacheBuilder) Delete() error {
	if b.client == nil {
		return nil
	}

	if err := b.client.Do(b.ctx, b.client.B().Del().Key(b.key).Build()).Error(); err != nil {
		return fmt.Errorf("failed to delete cache value for %s: %w", b.key, err)
	}
	return nil
}
