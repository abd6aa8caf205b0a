package bridge

import (
	"context"
	"io"
	"sync"
)

// Actuator applies the horn state.
type Actuator interface {
	Set(ctx context.Context, on bool) error
}

// SoundActuator is the software horn: it tracks the state and, when sound is
// enabled, rings the terminal bell on activation.
type SoundActuator struct {
	mu     sync.Mutex
	out    io.Writer
	sound  bool
	active bool
}

// NewSoundActuator creates a software horn writing bells to out.
func NewSoundActuator(out io.Writer, sound bool) *SoundActuator {
	return &SoundActuator{out: out, sound: sound}
}

// Set switches the horn on or off.
func (a *SoundActuator) Set(_ context.Context, on bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if on && a.sound && a.out != nil {
		if _, err := io.WriteString(a.out, "\a"); err != nil {
			return err
		}
	}
	a.active = on
	return nil
}

// Active reports the last state set.
func (a *SoundActuator) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}
