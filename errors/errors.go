// Package errors provides the planner's user-visible error type, covering
// exactly the two outcomes the access-path planner can produce.
package errors

import "fmt"

type ErrorCode int32

const (
	// NoIndexedPlan means no tagged predicate could be turned into an
	// indexed access path. Recoverable: the caller falls back to a
	// collection scan.
	NoIndexedPlan ErrorCode = iota + 1
	// InvariantViolation means the input predicate tree's tagging was
	// ill-formed (a missing tag, a mismatched leaf kind, an exhausted
	// iterator). Always fatal.
	InvariantViolation
)

func (c ErrorCode) String() string {
	switch c {
	case NoIndexedPlan:
		return "no_indexed_plan"
	case InvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}

// Error is the planner's error interface: a code, a fatality verdict, an
// optional cause, and an optional structured payload.
type Error interface {
	error
	Code() ErrorCode
	IsFatal() bool
	Cause() error
	Object() map[string]interface{}
}

type plannerError struct {
	code   ErrorCode
	msg    string
	cause  error
	object map[string]interface{}
}

func (e *plannerError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

func (e *plannerError) Code() ErrorCode                  { return e.code }
func (e *plannerError) IsFatal() bool                    { return e.code == InvariantViolation }
func (e *plannerError) Cause() error                     { return e.cause }
func (e *plannerError) Object() map[string]interface{}   { return e.object }

// NewNoIndexedPlan reports that no tagged predicate could be planned onto
// an index; reason is a short diagnostic (e.g. "OR has non-indexed
// child").
func NewNoIndexedPlan(reason string, object map[string]interface{}) Error {
	return &plannerError{code: NoIndexedPlan, msg: reason, object: object}
}

// NewInvariantViolation wraps an internal inconsistency (malformed
// tagging, an exhausted key-pattern iterator, a mismatched leaf kind) as a
// fatal error. cause may be nil.
func NewInvariantViolation(msg string, cause error) Error {
	return &plannerError{code: InvariantViolation, msg: msg, cause: cause}
}

// IsNoIndexedPlan reports whether err is a NoIndexedPlan Error.
func IsNoIndexedPlan(err error) bool {
	e, ok := err.(Error)
	return ok && e.Code() == NoIndexedPlan
}
