package physics

// Profile holds the integration constants for one viewport class
// Profiles are built from config and copied by value
type Profile struct {
	Stiffness    float64 // Spring pull per unit distance
	Damping      float64 // Spring velocity retention per 60 Hz frame
	Friction     float64 // Drift velocity retention per 60 Hz frame
	RestEpsilon  float64 // Drift components below this are zeroed
	SnapDistance float64 // Spring snaps when closer than this...
	SnapSpeed    float64 // ...and slower than this
}
