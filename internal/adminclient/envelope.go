// Package adminclient is the data layer of the admin dashboard: it talks to
// the admin API, normalizes list envelopes, caches collections and runs the
// moderation mutations with optimistic updates.
package adminclient

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"adminhub/internal/middleware"
)

// NormalizeEnvelope extracts the record list from any of the shapes the API
// has used over time:
//
//	[...]
//	{"data": [...]}
//	{"data": {"data": [...]}}
//	{"body": [...]}
//	{"body": {"data": [...]}}
//
// Anything else yields an empty list and a warning.
func NormalizeEnvelope(payload []byte) []json.RawMessage {
	records, ok := unwrap(bytes.TrimSpace(payload), 0)
	if !ok {
		middleware.Logger.Warn("unrecognized response envelope",
			slog.String("payload", preview(payload)))
		return []json.RawMessage{}
	}
	return records
}

func unwrap(raw []byte, depth int) ([]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	switch raw[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, false
		}
		if list == nil {
			list = []json.RawMessage{}
		}
		return list, true
	case '{':
		if depth > 0 {
			var inner struct {
				Data json.RawMessage `json:"data"`
			}
			if err := json.Unmarshal(raw, &inner); err != nil || len(inner.Data) == 0 {
				return nil, false
			}
			return unwrapList(inner.Data)
		}
		var outer struct {
			Data json.RawMessage `json:"data"`
			Body json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &outer); err != nil {
			return nil, false
		}
		for _, field := range []json.RawMessage{outer.Data, outer.Body} {
			if len(field) == 0 || bytes.Equal(field, []byte("null")) {
				continue
			}
			return unwrap(bytes.TrimSpace(field), depth+1)
		}
	}
	return nil, false
}

func unwrapList(raw []byte) ([]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	return unwrap(raw, 1)
}

// DecodeList normalizes payload and decodes each record into T. Records
// that do not decode are skipped and logged.
func DecodeList[T any](payload []byte) []T {
	return decodeRecords[T](NormalizeEnvelope(payload))
}

func decodeRecords[T any](records []json.RawMessage) []T {
	out := make([]T, 0, len(records))
	for i, rec := range records {
		var v T
		if err := json.Unmarshal(rec, &v); err != nil {
			middleware.Logger.Warn("skipping undecodable record",
				slog.Int("index", i),
				slog.String("error", err.Error()))
			continue
		}
		out = append(out, v)
	}
	return out
}

func preview(b []byte) string {
	const limit = 120
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit]) + "..."
}
