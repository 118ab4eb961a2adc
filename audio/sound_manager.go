// Package audio plays short interaction cues through the system speaker.
package audio

import (
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/drift/parameter"
)

const sampleRate = beep.SampleRate(parameter.AudioSampleRate)

// SoundManager mixes cue streams into one speaker output
// Every method is a no-op until Initialize succeeds
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool
}

// NewSoundManager creates a manager with linear volume in [0,1]
func NewSoundManager(volume float64) *SoundManager {
	return &SoundManager{
		mixer:  &beep.Mixer{},
		volume: volume,
	}
}

// Initialize opens the speaker and starts the mixer
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(parameter.AudioBufferDuration)); err != nil {
		return err
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup clears pending cues; beep keeps the speaker open for the process lifetime
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	sm.initialized = false
}

// Initialized reports whether cues reach the speaker
func (sm *SoundManager) Initialized() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.initialized
}

// PlayFling plays the release whoosh for a tile thrown at speed units/sec
func (sm *SoundManager) PlayFling(speed float64) {
	sm.play(func() beep.Streamer { return CreateFlingSound(speed, sm.volume, sampleRate) })
}

// PlaySettle plays the settle tick
func (sm *SoundManager) PlaySettle() {
	sm.play(func() beep.Streamer { return CreateSettleSound(sm.volume, sampleRate) })
}

func (sm *SoundManager) play(build func() beep.Streamer) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || sm.volume <= 0 {
		return
	}

	s := build()
	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()
}
