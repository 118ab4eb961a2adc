package parameter

// Spring & drift constants, units are surface units and seconds

// Wide viewport spring
const (
	// SpringStiffnessWide pulls tiles toward their stack target
	SpringStiffnessWide = 6.0

	// SpringDampingWide is the per-frame velocity retention at 60 Hz
	SpringDampingWide = 0.35
)

// Narrow viewport spring, softer to hide overlap correction jitter
const (
	SpringStiffnessNarrow = 3.0
	SpringDampingNarrow   = 0.25
)

// Free drift
const (
	// DriftFriction is the per-frame velocity retention at 60 Hz
	DriftFriction = 0.92

	// RestEpsilon zeroes velocity components below it (units/sec)
	RestEpsilon = 0.01
)

// Settle snap
const (
	// SnapDistance is the target distance under which a tile may snap
	SnapDistance = 0.5

	// SnapSpeed is the velocity magnitude under which a tile may snap
	SnapSpeed = 0.05
)
