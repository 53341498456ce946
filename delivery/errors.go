package delivery

import (
	"errors"
	"fmt"
)

var (
	ErrUpstreamLookup   = errors.New("upstream lookup failed")
	ErrNoSuitableStream = errors.New("no suitable stream found")
	ErrEmptyDownload    = errors.New("downloaded file is empty")
)

// Stage is a step of the linear download pipeline
type Stage int

const (
	StageResolving Stage = iota
	StageFetching
	StageSelecting
	StageMaterializing
	StageResponding
)

func (s Stage) String() string {
	switch s {
	case StageResolving:
		return "resolving"
	case StageFetching:
		return "fetching"
	case StageSelecting:
		return "selecting"
	case StageMaterializing:
		return "materializing"
	case StageResponding:
		return "responding"
	default:
		return "unknown"
	}
}

// StageError records which stage ended a request
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func failAt(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the stage an error was raised in, if it carries one
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return 0, false
}

// Kind names the error class for logs and the journal
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUpstreamLookup):
		return "upstream_lookup_failed"
	case errors.Is(err, ErrNoSuitableStream):
		return "no_suitable_stream"
	case errors.Is(err, ErrEmptyDownload):
		return "empty_download"
	default:
		return "internal"
	}
}

func upstreamErr(err error) error {
	return fmt.Errorf("%w: %v", ErrUpstreamLookup, err)
}
