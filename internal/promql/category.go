package promql

import "fmt"

// Category is a syntactic category of a tree node.
type Category uint8

const (
	// Error is a node covering malformed input the parser recovered from.
	Error Category = iota
	Query

	// Literals.
	NumberLiteral
	StringLiteral

	// Selectors.
	VectorSelector
	MetricIdentifier
	LabelMatchers
	LabelMatcher
	LabelName
	MatchOp
	MatrixSelector
	SubqueryExpr
	Duration

	// Modifiers.
	OffsetExpr
	StepInvariantExpr
	AtModifierPreprocessor

	// Aggregations and calls.
	AggregateExpr
	AggregateOp
	AggregateModifier
	By
	Without
	GroupingLabels
	FunctionCall
	FunctionIdentifier
	FunctionArgs

	UnaryExpr
	BinaryExpr
	ParenExpr

	// Binary operators.
	Add
	Sub
	Mul
	Div
	Mod
	Pow
	Atan2
	Eql
	Neq
	Gtr
	Gte
	Lss
	Lte
	And
	Or
	Unless

	// Binary operator modifiers.
	BoolModifier
	MatchingModifierClause
	On
	Ignoring
	GroupModifier
	GroupLeft
	GroupRight

	categoryCount
)

var categoryNames = [categoryCount]string{
	Error:                  "Error",
	Query:                  "Query",
	NumberLiteral:          "NumberLiteral",
	StringLiteral:          "StringLiteral",
	VectorSelector:         "VectorSelector",
	MetricIdentifier:       "MetricIdentifier",
	LabelMatchers:          "LabelMatchers",
	LabelMatcher:           "LabelMatcher",
	LabelName:              "LabelName",
	MatchOp:                "MatchOp",
	MatrixSelector:         "MatrixSelector",
	SubqueryExpr:           "SubqueryExpr",
	Duration:               "Duration",
	OffsetExpr:             "OffsetExpr",
	StepInvariantExpr:      "StepInvariantExpr",
	AtModifierPreprocessor: "AtModifierPreprocessor",
	AggregateExpr:          "AggregateExpr",
	AggregateOp:            "AggregateOp",
	AggregateModifier:      "AggregateModifier",
	By:                     "By",
	Without:                "Without",
	GroupingLabels:         "GroupingLabels",
	FunctionCall:           "FunctionCall",
	FunctionIdentifier:     "FunctionIdentifier",
	FunctionArgs:           "FunctionArgs",
	UnaryExpr:              "UnaryExpr",
	BinaryExpr:             "BinaryExpr",
	ParenExpr:              "ParenExpr",
	Add:                    "Add",
	Sub:                    "Sub",
	Mul:                    "Mul",
	Div:                    "Div",
	Mod:                    "Mod",
	Pow:                    "Pow",
	Atan2:                  "Atan2",
	Eql:                    "Eql",
	Neq:                    "Neq",
	Gtr:                    "Gtr",
	Gte:                    "Gte",
	Lss:                    "Lss",
	Lte:                    "Lte",
	And:                    "And",
	Or:                     "Or",
	Unless:                 "Unless",
	BoolModifier:           "BoolModifier",
	MatchingModifierClause: "MatchingModifierClause",
	On:                     "On",
	Ignoring:               "Ignoring",
	GroupModifier:          "GroupModifier",
	GroupLeft:              "GroupLeft",
	GroupRight:             "GroupRight",
}

// String implements fmt.Stringer.
func (c Category) String() string {
	if c < categoryCount {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// IsBinaryOperator whether category is a binary operator token.
func (c Category) IsBinaryOperator() bool {
	return c >= Add && c <= Unless
}

// IsSetOperator whether category is a set operator token (and, or, unless).
func (c Category) IsSetOperator() bool {
	return c >= And && c <= Unless
}

// IsComparisonOperator whether category is a comparison operator token.
func (c Category) IsComparisonOperator() bool {
	return c >= Eql && c <= Lte
}

// IsExpr whether category is an expression.
func (c Category) IsExpr() bool {
	switch c {
	case NumberLiteral,
		StringLiteral,
		VectorSelector,
		MatrixSelector,
		SubqueryExpr,
		OffsetExpr,
		StepInvariantExpr,
		AggregateExpr,
		FunctionCall,
		UnaryExpr,
		BinaryExpr,
		ParenExpr:
		return true
	default:
		return false
	}
}

// Precedence returns binary operator precedence.
//
// Returns zero for non-operators.
func (c Category) Precedence() int {
	switch c {
	case Or:
		return 1
	case And, Unless:
		return 2
	case Eql, Neq, Gtr, Gte, Lss, Lte:
		return 3
	case Add, Sub:
		return 4
	case Mul, Div, Mod, Atan2:
		return 5
	case Pow:
		return 6
	default:
		return 0
	}
}

// IsRightAssociative whether binary operator is right-associative.
func (c Category) IsRightAssociative() bool {
	return c == Pow
}
