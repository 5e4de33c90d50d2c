package theme

import (
	"context"
	"fmt"
)

// PreferenceKey is the storage key of the color scheme preference.
const PreferenceKey = "colorScheme"

// Storage persists the scheme preference.
type Storage interface {
	GetPreference(ctx context.Context, key string) (string, bool, error)
	SetPreference(ctx context.Context, key, value string) error
}

// Surface receives the applied scheme. Every widget renders from it.
type Surface interface {
	ApplyTheme(scheme Scheme, palette Palette)
}

// Store owns the active scheme for one rendering surface.
type Store struct {
	storage Storage
	surface Surface
	current Scheme
}

// NewStore constructs a Store. Nothing is applied until Load, Cycle or Set.
func NewStore(storage Storage, surface Surface) *Store {
	return &Store{storage: storage, surface: surface, current: Default}
}

// Current returns the active scheme.
func (s *Store) Current() Scheme {
	return s.current
}

// Load resolves the persisted scheme and applies it. Absent, unknown or
// unreadable values resolve to Default; a read error is still returned.
func (s *Store) Load(ctx context.Context) (Scheme, error) {
	scheme := Default
	var loadErr error
	if s.storage != nil {
		value, ok, err := s.storage.GetPreference(ctx, PreferenceKey)
		switch {
		case err != nil:
			loadErr = fmt.Errorf("failed to load color scheme: %w", err)
		case ok:
			if parsed, perr := ParseScheme(value); perr == nil {
				scheme = parsed
			}
		}
	}
	s.apply(scheme)
	return scheme, loadErr
}

// Cycle advances to the next scheme, applies it and persists it.
func (s *Store) Cycle(ctx context.Context) (Scheme, error) {
	next := Next(s.current)
	return next, s.Set(ctx, next)
}

// Set applies and persists scheme. The scheme stays applied if persisting fails.
func (s *Store) Set(ctx context.Context, scheme Scheme) error {
	if _, err := ParseScheme(string(scheme)); err != nil {
		return err
	}
	s.apply(scheme)
	if s.storage == nil {
		return nil
	}
	if err := s.storage.SetPreference(ctx, PreferenceKey, string(scheme)); err != nil {
		return fmt.Errorf("failed to save color scheme: %w", err)
	}
	return nil
}

func (s *Store) apply(scheme Scheme) {
	s.current = scheme
	if s.surface != nil {
		s.surface.ApplyTheme(scheme, PaletteFor(scheme))
	}
}
