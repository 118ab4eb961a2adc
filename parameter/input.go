package parameter

import "time"

const (
	// MinPointerElapsed floors the elapsed time between pointer samples
	MinPointerElapsed = time.Millisecond

	// FlingSpeedCue is the release speed above which a fling cue fires (units/sec)
	FlingSpeedCue = 400.0
)
