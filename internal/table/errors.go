package table

import "errors"

var (
	// ErrMissingColumn is returned when a required column is absent from a relation.
	ErrMissingColumn = errors.New("missing column")

	// ErrTypeMismatch is returned when a cell does not hold the type its column requires.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrParse is returned when a day or time value cannot be interpreted.
	ErrParse = errors.New("parse error")
)
