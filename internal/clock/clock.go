package clock

import "time"

// Clock supplies the current time. Services take it as a dependency so
// retention math can be tested against a frozen timestamp.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	offset time.Duration
}

// System returns a wall-clock Clock shifted by offset. A zero offset is
// production behavior; staging sets an offset to simulate elapsed time.
func System(offset time.Duration) Clock {
	return systemClock{offset: offset}
}

func (c systemClock) Now() time.Time {
	return time.Now().Add(c.offset)
}

type fixedClock struct {
	t time.Time
}

// Fixed returns a Clock frozen at t.
func Fixed(t time.Time) Clock {
	return fixedClock{t: t}
}

func (c fixedClock) Now() time.Time {
	return c.t
}
