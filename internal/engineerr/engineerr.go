// Package engineerr defines the error kinds shared across the engine's
// core packages (spec §7). Callers compare with errors.Is; wrapping
// context is added with fmt.Errorf("...: %w", engineerr.NotFound).
package engineerr

import (
	"errors"
	"fmt"
)

var (
	// NotFound is returned for an unknown Uid/TrackUid/PatternUid/
	// ArrangementUid/PathUid.
	NotFound = errors.New("not found")

	// DuplicateKey is returned by the entity registry on a repeated
	// registration, including any registration attempted after sealing.
	DuplicateKey = errors.New("duplicate key")

	// InvalidArgument covers malformed TimeSignature, out-of-range track
	// positions, and negative MusicalTime operations.
	InvalidArgument = errors.New("invalid argument")

	// Cycle is returned when the MIDI router detects a same-channel
	// reflection loop.
	Cycle = errors.New("cycle detected")

	// IOError wraps save/load file errors and WAV writer errors.
	IOError = errors.New("io error")

	// SerializationError wraps malformed project file errors.
	SerializationError = errors.New("serialization error")
)

// WrapSerialization wraps err with SerializationError so callers can
// test the result with errors.Is(err, SerializationError) regardless of
// the underlying encoder's concrete error type.
func WrapSerialization(err error) error {
	return fmt.Errorf("%w: %v", SerializationError, err)
}

// WrapIO wraps err with IOError for the same reason.
func WrapIO(err error) error {
	return fmt.Errorf("%w: %v", IOError, err)
}
