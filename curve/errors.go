package curve

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyPointCloud is returned when a search is asked to fit zero points.
	ErrEmptyPointCloud = errors.New("point cloud is empty")
	// ErrLengthMismatch is returned when x and y columns differ in length.
	ErrLengthMismatch = errors.New("x and y lengths differ")
	// ErrNonFinitePoint is returned for NaN or infinite coordinates.
	ErrNonFinitePoint = errors.New("point has non-finite coordinate")
	// ErrNonFiniteObjective is returned when a candidate scores NaN.
	ErrNonFiniteObjective = errors.New("objective is NaN")
	// ErrInvalidRange is returned for ranges that cannot be enumerated.
	ErrInvalidRange = errors.New("invalid search range")
	// ErrMissingColumn is returned when a CSV header lacks a required column.
	ErrMissingColumn = errors.New("missing column")
)

// SearchError reports the stage and candidate that aborted a search.
type SearchError struct {
	Stage     Stage
	Candidate Params
	Err       error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("%s stage aborted at theta=%g M=%g X=%g: %v",
		e.Stage, e.Candidate.Theta, e.Candidate.M, e.Candidate.X, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}
