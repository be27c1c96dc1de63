package ast

import (
	"fmt"
	"strings"
)

// Operator names the operation of an OperatorExpression. The textual form
// is only used at the serialization boundary.
type Operator int

const (
	OpInvalid Operator = iota

	// Arithmetic. OpAdd, OpSub and OpInvert also serve as unary operators.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpFloorDiv
	OpMod
	OpMatMul
	OpPow
	OpInvert

	// Boolean
	OpNot
	OpAnd
	OpOr

	// Comparison
	OpEq
	OpNotEq
	OpLt
	OpLtE
	OpGt
	OpGtE
	OpIn
	OpNotIn
	OpIs
	OpIsNot

	// Bitwise
	OpBitOr
	OpBitXor
	OpBitAnd
	OpLShift
	OpRShift

	// Postfix
	OpFieldAccess
	OpInvoke
	OpSlice

	// Slice construction, named by which of start/stop/step are present
	OpCreateSlice
	OpCreateSliceStart
	OpCreateSliceStop
	OpCreateSliceStep
	OpCreateSliceStartStop
	OpCreateSliceStartStep
	OpCreateSliceStopStep
	OpCreateSliceStartStopStep

	// Other expressions
	OpTernary
	OpAwait
	OpYield
	OpYieldFrom
	OpList
	OpSet
	OpDict
	OpKeyValuePair
	OpUnpackIterable
	OpUnpackMapping
	OpKeywordArgument

	// Comprehensions
	OpListComprehension
	OpSetComprehension
	OpDictComprehension
	OpGeneratorExpression
	OpForIfClause
	OpAsyncForIfClause

	// Strings
	OpConcat
	OpFString
	OpReplacementField
	OpFormatConversion
	OpFormatSpec

	// Loops, context managers and imports
	OpForEach
	OpAsyncForEach
	OpAs

	// Patterns
	OpGuard
	OpSequencePattern
	OpMappingPattern
	OpClassPattern
	OpOrPattern
	OpAsPattern
	OpStarPattern
	OpDoubleStarPattern
	OpKeywordPattern

	// Declaration modifiers
	OpMetaclass
	OpClassKeyword
	OpTypeParameter
	OpTypeBound
	OpTypeDefault
	OpAsync

	numOperators
)

var operatorNames = [...]string{
	OpInvalid: "invalid",

	OpAdd:      "+",
	OpSub:      "-",
	OpMul:      "*",
	OpDiv:      "/",
	OpFloorDiv: "//",
	OpMod:      "%",
	OpMatMul:   "@",
	OpPow:      "**",
	OpInvert:   "~",

	OpNot: "not",
	OpAnd: "and",
	OpOr:  "or",

	OpEq:    "==",
	OpNotEq: "!=",
	OpLt:    "<",
	OpLtE:   "<=",
	OpGt:    ">",
	OpGtE:   ">=",
	OpIn:    "in",
	OpNotIn: "not in",
	OpIs:    "is",
	OpIsNot: "is not",

	OpBitOr:  "|",
	OpBitXor: "^",
	OpBitAnd: "&",
	OpLShift: "<<",
	OpRShift: ">>",

	OpFieldAccess: "field-access",
	OpInvoke:      "invoke",
	OpSlice:       "slice",

	OpCreateSlice:              "create-slice",
	OpCreateSliceStart:         "create-slice-start",
	OpCreateSliceStop:          "create-slice-stop",
	OpCreateSliceStep:          "create-slice-step",
	OpCreateSliceStartStop:     "create-slice-start-stop",
	OpCreateSliceStartStep:     "create-slice-start-step",
	OpCreateSliceStopStep:      "create-slice-stop-step",
	OpCreateSliceStartStopStep: "create-slice-start-stop-step",

	OpTernary:         "ternary",
	OpAwait:           "await",
	OpYield:           "yield",
	OpYieldFrom:       "yield-from",
	OpList:            "list",
	OpSet:             "set",
	OpDict:            "dict",
	OpKeyValuePair:    "key-value-pair",
	OpUnpackIterable:  "unpack-iterable",
	OpUnpackMapping:   "unpack-mapping",
	OpKeywordArgument: "keyword-argument",

	OpListComprehension:   "list-comprehension",
	OpSetComprehension:    "set-comprehension",
	OpDictComprehension:   "dict-comprehension",
	OpGeneratorExpression: "generator-expression",
	OpForIfClause:         "for-if-clause",
	OpAsyncForIfClause:    "async-for-if-clause",

	OpConcat:           "concat",
	OpFString:          "f-string",
	OpReplacementField: "replacement-field",
	OpFormatConversion: "format-conversion",
	OpFormatSpec:       "format-spec",

	OpForEach:      "for-each",
	OpAsyncForEach: "async-for-each",
	OpAs:           "as",

	OpGuard:             "guard",
	OpSequencePattern:   "sequence-pattern",
	OpMappingPattern:    "mapping-pattern",
	OpClassPattern:      "class-pattern",
	OpOrPattern:         "or-pattern",
	OpAsPattern:         "as-pattern",
	OpStarPattern:       "star-pattern",
	OpDoubleStarPattern: "double-star-pattern",
	OpKeywordPattern:    "keyword-pattern",

	OpMetaclass:     "metaclass",
	OpClassKeyword:  "class-keyword",
	OpTypeParameter: "type-parameter",
	OpTypeBound:     "type-bound",
	OpTypeDefault:   "type-default",
	OpAsync:         "async",
}

// String returns the serialized name of the operator.
func (op Operator) String() string {
	if op >= 0 && op < numOperators && operatorNames[op] != "" {
		return operatorNames[op]
	}
	return fmt.Sprintf("Operator(%d)", int(op))
}

var operatorsByName = func() map[string]Operator {
	byName := make(map[string]Operator, numOperators)
	for op := OpInvalid + 1; op < numOperators; op++ {
		byName[operatorNames[op]] = op
	}
	return byName
}()

// ParseOperator returns the operator serialized as name.
func ParseOperator(name string) (Operator, bool) {
	op, ok := operatorsByName[name]
	return op, ok
}

// Operators returns every valid operator in declaration order.
func Operators() []Operator {
	ops := make([]Operator, 0, numOperators-1)
	for op := OpInvalid + 1; op < numOperators; op++ {
		ops = append(ops, op)
	}
	return ops
}

// ============================================================
// Markers
// ============================================================

// markerPrefix cannot start a Python identifier, so marker calls never
// collide with user functions.
const markerPrefix = "@"

// Marker identifies a synthetic statement encoded as a function call to a
// reserved name.
type Marker int

const (
	MarkerImport Marker = iota
	MarkerImportFrom
	MarkerMatch
	MarkerCase
	MarkerTry
	MarkerExcept
	MarkerExceptStar
	MarkerFinally
	MarkerWith
	MarkerDelete
	MarkerRaise
	MarkerAssert
	MarkerGlobal
	MarkerNonlocal
	MarkerTypeAlias
	MarkerLastLoopFinished

	numMarkers
)

var markerNames = [...]string{
	MarkerImport:           "import",
	MarkerImportFrom:       "import-from",
	MarkerMatch:            "match",
	MarkerCase:             "case",
	MarkerTry:              "try",
	MarkerExcept:           "except",
	MarkerExceptStar:       "except-star",
	MarkerFinally:          "finally",
	MarkerWith:             "with",
	MarkerDelete:           "delete",
	MarkerRaise:            "raise",
	MarkerAssert:           "assert",
	MarkerGlobal:           "global",
	MarkerNonlocal:         "nonlocal",
	MarkerTypeAlias:        "type-alias",
	MarkerLastLoopFinished: "last-loop-finished",
}

// String returns the reserved call name of the marker, e.g. "@try".
func (m Marker) String() string {
	if m >= 0 && m < numMarkers {
		return markerPrefix + markerNames[m]
	}
	return fmt.Sprintf("Marker(%d)", int(m))
}

// IsMarkerName reports whether name is the reserved call name of a marker.
func IsMarkerName(name string) bool {
	if !strings.HasPrefix(name, markerPrefix) {
		return false
	}
	_, ok := ParseMarker(name)
	return ok
}

// ParseMarker returns the marker whose call name is name.
func ParseMarker(name string) (Marker, bool) {
	for m := Marker(0); m < numMarkers; m++ {
		if m.String() == name {
			return m, true
		}
	}
	return 0, false
}
