package trials

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Tally counts occurrences per key and remembers the order keys were first seen.
type Tally struct {
	keys   []string
	counts map[string]int
}

type TallyEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

func NewTally() Tally {
	return Tally{counts: make(map[string]int)}
}

func (t *Tally) Add(key string) {
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	if _, ok := t.counts[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.counts[key]++
}

func (t Tally) Get(key string) int {
	return t.counts[key]
}

func (t Tally) Len() int {
	return len(t.keys)
}

// Keys returns the keys in first-seen order.
func (t Tally) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

func (t Tally) Sum() int {
	total := 0
	for _, c := range t.counts {
		total += c
	}
	return total
}

func (t Tally) Entries() []TallyEntry {
	out := make([]TallyEntry, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, TallyEntry{Key: k, Count: t.counts[k]})
	}
	return out
}

// MarshalJSON writes the tally as an object whose members keep first-seen order.
func (t Tally) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range t.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", t.counts[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (t *Tally) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("tally: expected object, got %v", tok)
	}
	*t = NewTally()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("tally: unexpected key %v", keyTok)
		}
		var count int
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("tally: count for %q: %w", key, err)
		}
		if _, seen := t.counts[key]; !seen {
			t.keys = append(t.keys, key)
		}
		t.counts[key] = count
	}
	_, err = dec.Token()
	return err
}
