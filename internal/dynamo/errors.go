package dynamo

import "errors"

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with non-finite values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a construction parameter outside its valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownEntity indicates a handle that does not name a live entity.
	ErrUnknownEntity = errors.New("dynamo: unknown entity")

	// ErrTickInProgress indicates a tick was requested while another was running.
	ErrTickInProgress = errors.New("dynamo: tick already in progress")
)
