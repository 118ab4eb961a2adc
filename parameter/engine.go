package parameter

import "time"

// Loop & Timing
const (
	// FrameUpdateInterval is the frame loop tick interval (~60 FPS)
	FrameUpdateInterval = 16 * time.Millisecond

	// MaxFrameDelta caps dt after a stall so integration stays stable
	MaxFrameDelta = 50 * time.Millisecond

	// SettleDelay is the quiet period after scroll or drag before settling resumes
	SettleDelay = 700 * time.Millisecond

	// EventQueueSize is the capacity of the engine's input queue
	EventQueueSize = 256
)
