package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrExists       = errors.New("document already exists")
	ErrStaleVersion = errors.New("document was modified concurrently")
)

// AnyVersion disables the version check on Replace.
const AnyVersion int64 = -1

// Document is a JSON object addressed by its top-level fields. Replace
// overwrites the given fields and leaves the others alone.
type Document map[string]json.RawMessage

func Encode(v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("value does not encode to a JSON object: %w", err)
	}
	return doc, nil
}

func (d Document) Decode(v any) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Pick returns a document holding only the named fields.
func (d Document) Pick(fields ...string) Document {
	picked := make(Document, len(fields))
	for _, f := range fields {
		if v, ok := d[f]; ok {
			picked[f] = v
		}
	}
	return picked
}

func (d Document) merge(fields Document) Document {
	merged := make(Document, len(d)+len(fields))
	for k, v := range d {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return merged
}

type Snapshot struct {
	ID       string
	Version  int64
	Document Document
}

// Store keeps board documents. Every write bumps the document version by
// one.
type Store interface {
	// Create stores a new document under id.
	Create(ctx context.Context, id string, doc Document) (int64, error)
	Get(ctx context.Context, id string) (*Snapshot, error)
	// Replace merges fields into the stored document. Unless expect is
	// AnyVersion the write fails with ErrStaleVersion when the stored
	// version differs from expect.
	Replace(ctx context.Context, id string, fields Document, expect int64) (int64, error)
	// Subscribe streams the current snapshot and every later one until ctx
	// is done. Slow readers only see the latest snapshot.
	Subscribe(ctx context.Context, id string) (<-chan Snapshot, error)
	Ping(ctx context.Context) error
}

// offer hands the snapshot to a subscriber without blocking, replacing an
// undelivered older one.
func offer(ch chan Snapshot, s Snapshot) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}
