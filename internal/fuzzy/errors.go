package fuzzy

import (
	"errors"
	"strings"
)

var (
	ErrOutOfRange      = errors.New("input outside variable universe")
	ErrMissingInput    = errors.New("missing input")
	ErrEmptyAggregate  = errors.New("aggregated membership is zero everywhere")
	ErrUnknownVariable = errors.New("unknown variable")
	ErrUnknownTerm     = errors.New("unknown term")
	ErrNotComputed     = errors.New("outputs not computed")
	ErrFrozen          = errors.New("variable is frozen")
	ErrUnboundTerm     = errors.New("term not bound to a rule base")
	ErrInvalidUniverse = errors.New("invalid universe")
	ErrDuplicate       = errors.New("duplicate definition")
)

// EmptyAggregateError reports the output variables for which no rule fired.
// It matches ErrEmptyAggregate under errors.Is.
type EmptyAggregateError struct {
	Variables []string
}

func (e *EmptyAggregateError) Error() string {
	return ErrEmptyAggregate.Error() + ": " + strings.Join(e.Variables, ", ")
}

func (e *EmptyAggregateError) Is(target error) bool {
	return target == ErrEmptyAggregate
}
