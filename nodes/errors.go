package nodes

import (
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
)

var (
	// ErrDuplicateAlias reports a reference, stack or nest name that is
	// already registered in its scope.
	ErrDuplicateAlias = errors.New("duplicate alias")

	// ErrFieldNotFound reports a field name that resolves neither locally
	// nor anywhere up the parent manager chain.
	ErrFieldNotFound = errors.New("field not found")

	// ErrLogic reports builder misuse: the wrong finalizer for the current
	// sub-query mode, a missing parent, recursive ancestry or an unknown
	// operator.
	ErrLogic = errors.New("logic error")

	// ErrUnexpectedType reports a parent that lacks the capability a
	// finalizer needs.
	ErrUnexpectedType = errors.New("unexpected type")

	// ErrUnknownSource reports a source name the catalog cannot provide.
	ErrUnknownSource = errors.New("unknown source")
)

// DuplicateAliasError wraps ErrDuplicateAlias with the offending scope and name.
func DuplicateAliasError(scope, name string) error {
	return fmt.Errorf("%w: %s %q", ErrDuplicateAlias, scope, name)
}

// FieldNotFoundError wraps ErrFieldNotFound with the unresolved name.
func FieldNotFoundError(name string) error {
	return fmt.Errorf("%w: %q", ErrFieldNotFound, name)
}

// UnknownSourceError wraps ErrUnknownSource with the unresolved name.
func UnknownSourceError(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownSource, name)
}

// Logicf formats a message wrapped in ErrLogic.
func Logicf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrLogic, fmt.Sprintf(format, args...))
}

// UnexpectedTypef formats a message wrapped in ErrUnexpectedType.
func UnexpectedTypef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnexpectedType, fmt.Sprintf(format, args...))
}

var aliasSeq atomic.Uint64

// UniqueAlias returns prefix followed by a number that is never handed out
// twice within the process.
func UniqueAlias(prefix string) string {
	return prefix + strconv.FormatUint(aliasSeq.Add(1), 10)
}
