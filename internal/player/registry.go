package player

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type entry struct {
	videoId string
	player  Player
}

// Registry maps video ids to player handles and applies bulk operations to them.
// Handles are not owned by the registry.
type Registry struct {
	handles  map[string]Player
	syncSeek bool
	mu       sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		handles: make(map[string]Player),
	}
}

// Register adds or replaces the handle for videoId. The replaced handle, if any, is returned.
func (r *Registry) Register(videoId string, p Player) (Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, replaced := r.handles[videoId]
	r.handles[videoId] = p

	return prev, replaced
}

// Unregister removes the handle for videoId. Missing ids are ignored.
func (r *Registry) Unregister(videoId string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handles[videoId]; !ok {
		return false
	}
	delete(r.handles, videoId)

	return true
}

func (r *Registry) ToggleSyncSeek() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.syncSeek = !r.syncSeek

	return r.syncSeek
}

func (r *Registry) SetSyncSeek(syncSeek bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.syncSeek = syncSeek
}

func (r *Registry) SyncSeek() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.syncSeek
}

func (r *Registry) Get(videoId string) (Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.handles[videoId]
	return p, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.handles)
}

// IDs returns registered video ids in ascending order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := maps.Keys(r.handles)
	slices.Sort(ids)

	return ids
}

// Handles returns a copy of the mapping.
func (r *Registry) Handles() map[string]Player {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return maps.Clone(r.handles)
}

func (r *Registry) PlayAll(ctx context.Context) error {
	return r.forEach(func(videoId string, p Player) error {
		if err := p.Play(ctx); err != nil {
			return fmt.Errorf("failed to play %s: %w", videoId, err)
		}
		return nil
	})
}

func (r *Registry) PauseAll(ctx context.Context) error {
	return r.forEach(func(videoId string, p Player) error {
		if err := p.Pause(ctx); err != nil {
			return fmt.Errorf("failed to pause %s: %w", videoId, err)
		}
		return nil
	})
}

func (r *Registry) MuteAll(ctx context.Context) error {
	return r.forEach(func(videoId string, p Player) error {
		if err := p.Mute(ctx); err != nil {
			return fmt.Errorf("failed to mute %s: %w", videoId, err)
		}
		return nil
	})
}

// UnmuteExclusive unmutes the handle registered as targetId and mutes every other one.
// If targetId is not registered every handle ends up muted.
func (r *Registry) UnmuteExclusive(ctx context.Context, targetId string) error {
	return r.forEach(func(videoId string, p Player) error {
		if videoId == targetId {
			if err := p.Unmute(ctx); err != nil {
				return fmt.Errorf("failed to unmute %s: %w", videoId, err)
			}
			return nil
		}

		if err := p.Mute(ctx); err != nil {
			return fmt.Errorf("failed to mute %s: %w", videoId, err)
		}
		return nil
	})
}

// SeekOffsetAll moves every handle by offset seconds from its current position.
// The target is not clamped; the sync-seek flag is not consulted.
func (r *Registry) SeekOffsetAll(ctx context.Context, offset float64) error {
	return r.forEach(func(videoId string, p Player) error {
		current, err := p.CurrentTime(ctx)
		if err != nil {
			return fmt.Errorf("failed to get current time of %s: %w", videoId, err)
		}

		if err := p.SeekTo(ctx, current+offset, true); err != nil {
			return fmt.Errorf("failed to seek %s: %w", videoId, err)
		}
		return nil
	})
}

func (r *Registry) snapshot() []entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := maps.Keys(r.handles)
	slices.Sort(ids)

	entries := make([]entry, 0, len(ids))
	for _, videoId := range ids {
		entries = append(entries, entry{videoId: videoId, player: r.handles[videoId]})
	}

	return entries
}

// forEach calls fn for every handle outside the lock and keeps going after failures.
func (r *Registry) forEach(fn func(videoId string, p Player) error) error {
	var err error
	for _, e := range r.snapshot() {
		err = multierr.Append(err, fn(e.videoId, e.player))
	}

	return err
}
