package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Structural integrity errors
	ErrCyclicCitations    = errors.New("citation graph contains a cycle")
	ErrInsideNodeMismatch = errors.New("operand graphs disagree on contraction nodes")
	ErrNoRecordedVotes    = errors.New("decision has no recorded votes")

	// Lookup errors
	ErrNodeNotFound     = errors.New("node not found")
	ErrMissingAttribute = errors.New("missing node attribute")
	ErrUnknownNetwork   = errors.New("unknown agreement network")

	// Data errors
	ErrInsufficientData = errors.New("insufficient data for analysis")
)

// Error constructors with context
func NewCycleError(node string) error {
	return fmt.Errorf("%w: decision %s never becomes scorable", ErrCyclicCitations, node)
}

func NewMissingAttributeError(node, attribute string) error {
	return fmt.Errorf("%w: %s on node %s", ErrMissingAttribute, attribute, node)
}

func NewNoVotesError(decision string) error {
	return fmt.Errorf("%w: %s", ErrNoRecordedVotes, decision)
}

// IsIntegrityError reports whether err comes from malformed graph structure rather than
// from configuration or I/O.
func IsIntegrityError(err error) bool {
	return errors.Is(err, ErrCyclicCitations) ||
		errors.Is(err, ErrInsideNodeMismatch) ||
		errors.Is(err, ErrNoRecordedVotes) ||
		errors.Is(err, ErrMissingAttribute)
}
