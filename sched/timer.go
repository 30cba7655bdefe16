package sched

import "time"

// timer measures minimization stage durations for the progress log.
type timer struct {
	start time.Time
}

func startTimer() timer { return timer{start: time.Now()} }

func (t timer) elapsed() time.Duration { return time.Since(t.start) }
