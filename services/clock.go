package services

import "time"

// Clock — источник текущего времени. В тестах подменяется фиксированным.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
