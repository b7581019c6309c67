package translate

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind groups translation errors by taxonomy. Every failure is
// terminal for the current call: there is no partial result and no
// recovery path, and retrying with the same input never succeeds.
type ErrorKind string

const (
	// KindStructural marks a malformed or unsupported tree shape.
	KindStructural ErrorKind = "structural"

	// KindClassification marks an ambiguous or absent operator
	// classification in a bracket expression.
	KindClassification ErrorKind = "classification"

	// KindConstraint marks a violated output constraint, such as a
	// missing required alias.
	KindConstraint ErrorKind = "constraint"

	// KindPolicy marks a statement that is well-formed but disallowed,
	// such as multi-resource FROM clauses.
	KindPolicy ErrorKind = "policy"
)

// ErrorCode identifies the specific translation failure.
type ErrorCode string

const (
	// ErrCodeUnsupportedNodeKind indicates a node kind the translator
	// has no handler for.
	ErrCodeUnsupportedNodeKind ErrorCode = "UNSUPPORTED_NODE_KIND"

	// ErrCodeMalformedCondition indicates a condition bracket without
	// the expected operand, operator, operand children.
	ErrCodeMalformedCondition ErrorCode = "MALFORMED_CONDITION"

	// ErrCodeInvalidWhereClause indicates an empty WHERE clause or one
	// that does not reduce to conditions.
	ErrCodeInvalidWhereClause ErrorCode = "INVALID_WHERE_CLAUSE"

	// ErrCodeInvalidOrderClause indicates an ORDER entry that cannot be
	// sorted on, such as a wildcard.
	ErrCodeInvalidOrderClause ErrorCode = "INVALID_ORDER_CLAUSE"

	// ErrCodeMaxDepthExceeded indicates the tree nests deeper than the
	// translator's recursion bound.
	ErrCodeMaxDepthExceeded ErrorCode = "MAX_DEPTH_EXCEEDED"

	// ErrCodeAmbiguousOperatorMix indicates a bracket whose operators
	// span more than one vocabulary.
	ErrCodeAmbiguousOperatorMix ErrorCode = "AMBIGUOUS_OPERATOR_MIX"

	// ErrCodeNoValidOperator indicates a bracket whose operators match
	// no vocabulary at all.
	ErrCodeNoValidOperator ErrorCode = "NO_VALID_OPERATOR"

	// ErrCodeMixedGroupOperators indicates a single group mixing "and"
	// and "or" without an explicit nested bracket.
	ErrCodeMixedGroupOperators ErrorCode = "MIXED_GROUP_OPERATORS"

	// ErrCodeUnaliasedExpression indicates an expression or aggregate
	// without the required alias.
	ErrCodeUnaliasedExpression ErrorCode = "UNALIASED_EXPRESSION"

	// ErrCodeEmptyAggregate indicates an aggregate call with no
	// operands.
	ErrCodeEmptyAggregate ErrorCode = "EMPTY_AGGREGATE"

	// ErrCodeUnknownReservedWord indicates a reserved word other than
	// TRUE or FALSE.
	ErrCodeUnknownReservedWord ErrorCode = "UNKNOWN_RESERVED_WORD"

	// ErrCodeConflictingResource indicates both an external resource id
	// and a FROM clause were supplied.
	ErrCodeConflictingResource ErrorCode = "CONFLICTING_RESOURCE"

	// ErrCodeTooManyResources indicates a multi-entry FROM clause while
	// joins are disabled.
	ErrCodeTooManyResources ErrorCode = "TOO_MANY_RESOURCES"

	// ErrCodeJoinsNotSupported indicates a multi-entry FROM clause with
	// joins enabled: accepted by policy but not yet implemented.
	ErrCodeJoinsNotSupported ErrorCode = "JOINS_NOT_SUPPORTED"
)

// Error is a translation failure with enough context to report the
// offending clause or operator precisely.
type Error struct {
	// Kind is the taxonomy category.
	Kind ErrorKind

	// Code identifies the specific failure.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Context carries additional key/value detail (clause, operator,
	// node kind).
	Context map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s=%s", k, e.Context[k])
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(pairs, ", "))
}

func newError(kind ErrorKind, code ErrorCode, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// withContext attaches one key/value pair, allocating the map lazily.
func (e *Error) withContext(key, value string) *Error {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// CodeOf extracts the translation error code from err, or "" when err
// is not a translation error. Uses errors.As to handle wrapping.
func CodeOf(err error) ErrorCode {
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// KindOf extracts the taxonomy kind from err, or "" when err is not a
// translation error.
func KindOf(err error) ErrorKind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// IsCode reports whether err is a translation error with the given
// code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
