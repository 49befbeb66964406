package model

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument is returned when an entity is constructed from
	// arguments that cannot be normalized.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState is returned by IsValid.
	ErrInvalidState = errors.New("invalid entity")
	// ErrJoinKeyNotFound is returned when looking up a join key the entity
	// does not have.
	ErrJoinKeyNotFound = errors.New("join key not found")
	// ErrNotAnEntity is returned when an entity is compared with a value of
	// another type.
	ErrNotAnEntity = errors.New("not an entity")
)
