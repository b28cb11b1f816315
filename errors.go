package vantage

import "errors"

// Error kinds returned by index construction and query operations. All
// errors surface synchronously at the call site; none are recovered
// internally, and a failing batch query never yields partial data.
var (
	// ErrEmptyIndex is returned by a 1-NN query issued against an index
	// that has never been populated, or was populated with zero rows.
	ErrEmptyIndex = errors.New("vantage: index is empty")

	// ErrDimensionMismatch is returned when a query's width does not match
	// the index's built dimension, or a fixed-width variant receives a
	// mismatched width at Set.
	ErrDimensionMismatch = errors.New("vantage: dimension mismatch")

	// ErrTypeMismatch is returned when an input's element type does not
	// match the index's metric domain (float32 vs byte).
	ErrTypeMismatch = errors.New("vantage: element type mismatch")

	// ErrShape is returned when input is not a well-formed 2-D matrix
	// (ragged rows, for instance).
	ErrShape = errors.New("vantage: input is not a 2-D matrix")

	// ErrCorruptInput is returned by UnmarshalBinary on an unknown magic or
	// version, a mismatched CRC, or a truncated payload.
	ErrCorruptInput = errors.New("vantage: corrupt or truncated serialized index")

	// ErrInvalidArgument is returned for out-of-range parameters such as
	// k < 1 or a negative threshold.
	ErrInvalidArgument = errors.New("vantage: invalid argument")
)
