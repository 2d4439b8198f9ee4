// Package recordstore persists named collections of records. Every save
// rewrites the whole collection; there is no locking, callers serialize
// read-modify-save themselves.
package recordstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// Money is written as a JSON number, the way hand-kept collection files
	// spell it. Decoding accepts both numbers and quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Backend stores one encoded document per collection name.
type Backend interface {
	Read(ctx context.Context, name string) ([]byte, bool, error)
	Write(ctx context.Context, name string, data []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// Load returns the persisted collection name. An absent collection is created
// from def, persisted, and returned.
func Load[T any](ctx context.Context, b Backend, name string, def []T) ([]T, error) {
	data, ok, err := b.Read(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if !ok {
		if err := Save(ctx, b, name, def); err != nil {
			return nil, err
		}
		return def, nil
	}

	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Save overwrites the persisted collection name with records.
func Save[T any](ctx context.Context, b Backend, name string, records []T) error {
	if records == nil {
		records = []T{}
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := b.Write(ctx, name, data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
