package parameter

import "time"

// Audio cues
const (
	// AudioSampleRate is the output sample rate in Hz
	AudioSampleRate = 48000

	// AudioBufferDuration is the speaker buffer length
	AudioBufferDuration = 100 * time.Millisecond

	// AudioVolume scales every cue, 0 mutes
	AudioVolume = 0.6

	// FlingCueDuration is the length of the release whoosh
	FlingCueDuration = 180 * time.Millisecond

	// SettleCueDuration is the length of the settle tick
	SettleCueDuration = 60 * time.Millisecond

	// SettleCueFrequency is the pitch of the settle tick in Hz
	SettleCueFrequency = 660.0
)
