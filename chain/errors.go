package chain

import (
	"errors"
	"fmt"
)

// Error kinds mirror the revert categories of the on-chain contracts. Callers
// match with errors.Is; the reason string is what a node would surface as the
// revert reason.
var (
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInvalidState     = errors.New("invalid state")
	ErrComplianceDenied = errors.New("compliance denied")
)

// RevertError aborts the whole transaction; the node guarantees no state from
// the failed submission survives.
type RevertError struct {
	Kind   error
	Reason string
}

func (e *RevertError) Error() string {
	return e.Reason
}

func (e *RevertError) Unwrap() error {
	return e.Kind
}

func revert(kind error, format string, args ...any) error {
	return &RevertError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}
