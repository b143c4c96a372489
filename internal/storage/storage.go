// Package storage provides the key-value backends the client persists its
// session and search history in.
package storage

import "context"

// KeyValue is a string key-value store. Get reports ok=false for a missing key.
type KeyValue interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
