package engine

import "time"

// Debounce is a single cancelable deadline
// Arm replaces any pending deadline, so at most one fire is ever in flight
// It is polled rather than timer-driven so it runs on the engine goroutine
type Debounce struct {
	deadline time.Time
	armed    bool
}

// Arm sets the deadline to now+delay, replacing a pending one
func (d *Debounce) Arm(now time.Time, delay time.Duration) {
	d.deadline = now.Add(delay)
	d.armed = true
}

// Cancel drops the pending deadline
func (d *Debounce) Cancel() {
	d.armed = false
}

// Pending reports whether a deadline is armed
func (d *Debounce) Pending() bool {
	return d.armed
}

// Due consumes and reports a deadline that has passed
func (d *Debounce) Due(now time.Time) bool {
	if !d.armed || now.Before(d.deadline) {
		return false
	}
	d.armed = false
	return true
}
