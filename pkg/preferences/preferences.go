// Package preferences stores per-session dashboard settings.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/synaptica-ai/trialscope/pkg/filters"
)

type FontSize string

const (
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"
)

var fontCycle = []FontSize{FontSmall, FontMedium, FontLarge}

var ErrInvalidSession = errors.New("session id is required")

func ParseFontSize(value string) (FontSize, error) {
	switch size := FontSize(strings.ToLower(strings.TrimSpace(value))); size {
	case FontSmall, FontMedium, FontLarge:
		return size, nil
	case "":
		return FontMedium, nil
	default:
		return "", fmt.Errorf("invalid font size %q", value)
	}
}

// Next returns the following size in small, medium, large order, wrapping
// around. An unrecognised size is treated as medium.
func (f FontSize) Next() FontSize {
	for i, size := range fontCycle {
		if size == f {
			return fontCycle[(i+1)%len(fontCycle)]
		}
	}
	return FontMedium.Next()
}

type Preferences struct {
	FontSize FontSize         `json:"font_size"`
	Filters  *filters.Request `json:"filters,omitempty"`
}

func Default() Preferences {
	return Preferences{FontSize: FontMedium}
}

// Normalize fills defaults and rejects values outside the closed sets.
func (p Preferences) Normalize() (Preferences, error) {
	size, err := ParseFontSize(string(p.FontSize))
	if err != nil {
		return Preferences{}, err
	}
	p.FontSize = size
	if p.Filters != nil {
		if _, err := p.Filters.ToCriteria(); err != nil {
			return Preferences{}, err
		}
	}
	return p, nil
}

// Store keeps preferences by session id. Get on an unknown session returns
// Default.
type Store interface {
	Get(ctx context.Context, session string) (Preferences, error)
	Save(ctx context.Context, session string, prefs Preferences) error
}

type MemoryStore struct {
	mu    sync.RWMutex
	prefs map[string]Preferences
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: map[string]Preferences{}}
}

func (m *MemoryStore) Get(ctx context.Context, session string) (Preferences, error) {
	if session == "" {
		return Preferences{}, ErrInvalidSession
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.prefs[session]; ok {
		return p, nil
	}
	return Default(), nil
}

func (m *MemoryStore) Save(ctx context.Context, session string, prefs Preferences) error {
	if session == "" {
		return ErrInvalidSession
	}
	m.mu.Lock()
	m.prefs[session] = prefs
	m.mu.Unlock()
	return nil
}

// ToggleFontSize advances the session's font size and saves it.
func ToggleFontSize(ctx context.Context, store Store, session string) (Preferences, error) {
	prefs, err := store.Get(ctx, session)
	if err != nil {
		return Preferences{}, err
	}
	prefs.FontSize = prefs.FontSize.Next()
	if err := store.Save(ctx, session, prefs); err != nil {
		return Preferences{}, err
	}
	return prefs, nil
}
