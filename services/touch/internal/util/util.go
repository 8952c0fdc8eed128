// Package util holds small helpers shared by the touch service and its
// config package.
package util

import (
	"bytes"
	"encoding/json"
	"time"
)

// ResetTimer stops t, discards a pending fire and re-arms it for d.
// Negative d fires immediately.
func ResetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		DrainTimer(t)
	}
	t.Reset(max(d, 0))
}

// DrainTimer discards a fire left in t.C, if any.
func DrainTimer(t *time.Timer) {
	select {
	case <-t.C:
	default:
	}
}

// DecodeJSON decodes src ([]byte, string, or any value that marshals to a
// JSON object) into dst. Unknown fields are an error.
func DecodeJSON[T any](src any, dst *T) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		raw = b
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// Every reports whether the n-th occurrence (1-based) should be surfaced when
// only the first and every k-th are wanted.
func Every(n, k uint32) bool {
	if k <= 1 {
		return true
	}
	return n == 1 || n%k == 0
}
