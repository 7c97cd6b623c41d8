package repair

import "errors"

// Sentinel errors for the pipeline's error taxonomy: callers discriminate
// with errors.Is rather than matching on error strings.
var (
	// ErrInputType names the non-string-input error kind. Every public
	// entry point takes a Go string, so none of them returns it.
	ErrInputType = errors.New("jsonmend: input must be a string")

	// ErrLayerFailure marks an internal invariant violation inside a
	// layer (e.g. a delimiter-stack underflow no rule covers).
	ErrLayerFailure = errors.New("jsonmend: layer failure")

	// ErrUnrepairable marks that every layer ran but L4 still refused
	// the result.
	ErrUnrepairable = errors.New("jsonmend: validation failed")

	// ErrStrictViolation marks a strict_mode rejection.
	ErrStrictViolation = errors.New("jsonmend: strict mode violation")

	// ErrIO marks a failure reading input at the from_file boundary.
	ErrIO = errors.New("jsonmend: io error")
)
