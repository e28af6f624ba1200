package clock

import "time"

// Frozen is a Clock pinned to a fixed instant. Tests move it forward
// explicitly instead of sleeping.
type Frozen struct {
	now time.Time
}

func Freeze(at time.Time) *Frozen {
	return &Frozen{now: at.UTC()}
}

func (f *Frozen) Now() time.Time { return f.now }

func (f *Frozen) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}
