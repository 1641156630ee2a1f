// Package playback advances sprite animations over decoded sheets.
//
// A Player steps through the frames of a spritefile.Sheet using the
// per-frame durations stored in the file. It owns no clock and renders
// nothing: callers feed it elapsed time via Update and read the current
// frame via Frame, so it slots into any game loop or encoder.
package playback

import (
	"errors"
	"time"

	"github.com/spriteforge/stitch/spritefile"
)

// DefaultFrameDuration is used for frames whose stored duration is zero.
const DefaultFrameDuration = 100 * time.Millisecond

// ErrNoFrames is returned by NewPlayer for a nil or empty sheet.
var ErrNoFrames = errors.New("playback: sheet has no frames")

// Mode selects what happens when the last frame completes.
type Mode uint8

const (
	// Loop wraps back to the first frame.
	Loop Mode = iota

	// Once freezes on the last frame.
	Once
)

// String returns the name of the mode.
func (m Mode) String() string {
	switch m {
	case Loop:
		return "Loop"
	case Once:
		return "Once"
	default:
		return "Unknown"
	}
}

// Player tracks the current frame of an animation over time.
//
// There is no global animation manager; callers call Update themselves,
// typically once per tick with the time since the previous tick.
type Player struct {
	sheet   *spritefile.Sheet
	mode    Mode
	index   int
	elapsed time.Duration // time spent in the current frame
	looped  bool
}

// NewPlayer creates a player positioned on the first frame of the sheet.
func NewPlayer(sheet *spritefile.Sheet, mode Mode) (*Player, error) {
	if sheet == nil || len(sheet.Frames) == 0 {
		return nil, ErrNoFrames
	}
	return &Player{sheet: sheet, mode: mode}, nil
}

// Update advances the animation by dt. Negative dt is ignored. A dt
// spanning several frames carries the remainder into the frame it lands
// on, so slow ticks do not stretch the animation.
func (p *Player) Update(dt time.Duration) {
	if dt <= 0 || p.Done() {
		return
	}

	p.elapsed += dt
	for p.elapsed >= p.frameDuration(p.index) {
		p.elapsed -= p.frameDuration(p.index)
		if p.index+1 < len(p.sheet.Frames) {
			p.index++
			continue
		}
		p.looped = true
		if p.mode == Once {
			// Park on the last frame; further Update calls no-op.
			p.elapsed = 0
			return
		}
		p.index = 0
	}
}

// Frame returns the current frame record (rect into the sheet canvas,
// anchor, duration).
func (p *Player) Frame() spritefile.Frame {
	return p.sheet.Frames[p.index]
}

// Index returns the index of the current frame.
func (p *Player) Index() int {
	return p.index
}

// Len returns the number of frames in the animation.
func (p *Player) Len() int {
	return len(p.sheet.Frames)
}

// Done reports whether a Once player has completed. Loop players are
// never done.
func (p *Player) Done() bool {
	return p.mode == Once && p.looped
}

// Looped reports whether the animation has completed at least one full
// pass, in either mode.
func (p *Player) Looped() bool {
	return p.looped
}

// Restart rewinds to the first frame and clears the completion state.
func (p *Player) Restart() {
	p.index = 0
	p.elapsed = 0
	p.looped = false
}

// Duration returns the length of one full pass over the sheet, with
// zero-duration frames counted at DefaultFrameDuration.
func (p *Player) Duration() time.Duration {
	var total time.Duration
	for i := range p.sheet.Frames {
		total += p.frameDuration(i)
	}
	return total
}

func (p *Player) frameDuration(i int) time.Duration {
	if d := p.sheet.Frames[i].Duration; d > 0 {
		return d
	}
	return DefaultFrameDuration
}
