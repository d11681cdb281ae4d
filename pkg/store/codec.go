package store

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"
)

// toFields returns the top-level JSON fields of r.
func toFields[T Record](r T) (map[string]any, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// fromFields decodes fields into a T.
func fromFields[T Record](fields map[string]any) (T, error) {
	var out T
	b, err := json.Marshal(fields)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(b, &out)
	return out, err
}

// cloneAll deep-copies records through JSON.
func cloneAll[T Record](items []T) []T {
	if items == nil {
		return []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return append([]T{}, items...)
	}
	out := []T{}
	if err := json.Unmarshal(b, &out); err != nil {
		return append([]T{}, items...)
	}
	return out
}

func indexOf[T Record](items []T, id string) int {
	for i, it := range items {
		if it.GetID() == id {
			return i
		}
	}
	return -1
}

// idGenerator issues millisecond-timestamp ids that never repeat within a process.
type idGenerator struct {
	mu   sync.Mutex
	last int64
}

func (g *idGenerator) next(now time.Time, taken func(string) bool) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := now.UnixMilli()
	if n <= g.last {
		n = g.last + 1
	}
	for taken(strconv.FormatInt(n, 10)) {
		n++
	}
	g.last = n
	return strconv.FormatInt(n, 10)
}
