package remote

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	CommandPlay   = "play"
	CommandPause  = "pause"
	CommandMute   = "mute"
	CommandUnmute = "unmute"
	CommandSeek   = "seek"

	commandMessageType = "PLAYER_COMMAND"
)

type Sender interface {
	WriteJSON(v any) error
}

type CommandPayload struct {
	VideoId        string   `json:"video_id"`
	Command        string   `json:"command"`
	Seconds        *float64 `json:"seconds,omitempty"`
	AllowSeekAhead *bool    `json:"allow_seek_ahead,omitempty"`
}

type command struct {
	Type    string         `json:"type"`
	Payload CommandPayload `json:"payload"`
}

// State is the last known state of the embedded widget.
type State struct {
	CurrentTime  float64   `json:"current_time"`
	IsPlaying    bool      `json:"is_playing"`
	PlaybackRate float64   `json:"playback_rate"`
	IsMuted      bool      `json:"is_muted"`
	Volume       int       `json:"volume"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Player drives a widget embedded in a connected page. It implements player.Player.
type Player struct {
	videoId string
	sender  Sender
	now     func() time.Time
	state   State
	mu      sync.Mutex
}

type Option func(*Player)

func WithClock(now func() time.Time) Option {
	return func(p *Player) {
		p.now = now
	}
}

func New(videoId string, sender Sender, opts ...Option) *Player {
	p := &Player{
		videoId: videoId,
		sender:  sender,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.state = State{
		PlaybackRate: 1,
		Volume:       100,
		UpdatedAt:    p.now(),
	}

	return p
}

// Report replaces the cached state with one reported by the page.
func (p *Player) Report(state State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if state.PlaybackRate <= 0 {
		state.PlaybackRate = 1
	}
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = p.now()
	}
	p.state = state
}

// State returns the cached state with CurrentTime advanced to now.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	state := p.state
	state.CurrentTime = p.currentTimeLocked()

	return state
}

func (p *Player) Play(ctx context.Context) error {
	return p.send(ctx, CommandPayload{Command: CommandPlay}, func(s *State) {
		s.IsPlaying = true
	})
}

func (p *Player) Pause(ctx context.Context) error {
	return p.send(ctx, CommandPayload{Command: CommandPause}, func(s *State) {
		s.IsPlaying = false
	})
}

func (p *Player) Mute(ctx context.Context) error {
	return p.send(ctx, CommandPayload{Command: CommandMute}, func(s *State) {
		s.IsMuted = true
	})
}

func (p *Player) Unmute(ctx context.Context) error {
	return p.send(ctx, CommandPayload{Command: CommandUnmute}, func(s *State) {
		s.IsMuted = false
	})
}

func (p *Player) CurrentTime(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.currentTimeLocked(), nil
}

func (p *Player) SeekTo(ctx context.Context, seconds float64, allowSeekAhead bool) error {
	return p.send(ctx, CommandPayload{
		Command:        CommandSeek,
		Seconds:        &seconds,
		AllowSeekAhead: &allowSeekAhead,
	}, func(s *State) {
		s.CurrentTime = seconds
	})
}

func (p *Player) currentTimeLocked() float64 {
	if !p.state.IsPlaying {
		return p.state.CurrentTime
	}

	elapsed := p.now().Sub(p.state.UpdatedAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	return p.state.CurrentTime + elapsed*p.state.PlaybackRate
}

// send writes the command and applies update to the cached state once the write succeeded.
func (p *Player) send(ctx context.Context, payload CommandPayload, update func(*State)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload.VideoId = p.videoId
	if err := p.sender.WriteJSON(&command{
		Type:    commandMessageType,
		Payload: payload,
	}); err != nil {
		return fmt.Errorf("failed to send %s command: %w", payload.Command, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// freeze the extrapolated position before changing playback
	p.state.CurrentTime = p.currentTimeLocked()
	p.state.UpdatedAt = p.now()
	update(&p.state)

	return nil
}
