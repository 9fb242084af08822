// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"github.com/pkg/errors"
)

// ErrFatal is matched (through errors.Is) by every error
// that leaves the engine unusable.
// Once RenderFrame fails with such an error, every
// subsequent call returns the same error. The only valid
// operation left is Shutdown.
var ErrFatal = errors.New("engine: fatal error")

// ErrHung means that a bounded wait on a fence or image
// acquisition did not complete within Config.FenceTimeout.
// It is always wrapped by a FatalError.
var ErrHung = errors.New("engine: GPU did not respond in time")

// ErrShutdown means that the engine was shut down.
var ErrShutdown = errors.New("engine: use after Shutdown")

// ErrZeroExtent means that the surface has no area, which
// prevents the engine from being created.
var ErrZeroExtent = errors.New("engine: surface has zero extent")

// FatalError is the error returned when an operation
// fails in a way that cannot be recovered from.
type FatalError struct {
	// Op is the operation that failed
	// (e.g., "acquire", "submit").
	Op string
	// Err is the underlying error, usually one of
	// the driver package's errors.
	Err error
}

func (e *FatalError) Error() string { return "engine: " + e.Op + ": " + e.Err.Error() }

// Unwrap returns e.Err.
func (e *FatalError) Unwrap() error { return e.Err }

// Is reports whether target is ErrFatal.
func (e *FatalError) Is(target error) bool { return target == ErrFatal }
