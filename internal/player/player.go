package player

import "context"

// Player controls one embedded video player instance.
type Player interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Mute(ctx context.Context) error
	Unmute(ctx context.Context) error
	// CurrentTime returns the playback position in seconds.
	CurrentTime(ctx context.Context) (float64, error)
	SeekTo(ctx context.Context, seconds float64, allowSeekAhead bool) error
}
