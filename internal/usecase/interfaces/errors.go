package interfaces

import "errors"

// Storage adapters translate their conditional-write failures into these.
var (
	ErrVersionConflict = errors.New("version conflict")
	ErrAlreadyExists   = errors.New("already exists")
	ErrConditionFailed = errors.New("condition failed")
)
