package stepper

import "time"

// Clock supplies the current time to the engine's transition debounce.
// Injected so tests can step time deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
