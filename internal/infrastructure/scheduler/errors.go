package scheduler

import "errors"

var (
	// ErrJobNotFound is returned when a job name is not registered.
	ErrJobNotFound = errors.New("job not found")

	// ErrJobRunning is returned by RunNow while the job is already executing.
	ErrJobRunning = errors.New("job already running")

	// ErrInvalidJob is returned when a job has no name, function or interval.
	ErrInvalidJob = errors.New("invalid job")
)
