// Package promqlcheck implements PromQL semantic analysis: type resolution,
// vector matching and diagnostics.
package promqlcheck

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/yaml"
	"github.com/prometheus/prometheus/promql/parser"
)

// ValueType is a type of PromQL expression result.
type ValueType int

const (
	ValueTypeNone ValueType = iota
	ValueTypeScalar
	ValueTypeVector
	ValueTypeMatrix
	ValueTypeString
)

// String implements fmt.Stringer.
func (t ValueType) String() string {
	switch t {
	case ValueTypeNone:
		return "none"
	case ValueTypeScalar:
		return "scalar"
	case ValueTypeVector:
		return "vector"
	case ValueTypeMatrix:
		return "matrix"
	case ValueTypeString:
		return "string"
	default:
		return fmt.Sprintf("<unknown type %d>", int(t))
	}
}

// DocumentedType returns the type name used in user-facing messages.
func (t ValueType) DocumentedType() string {
	switch t {
	case ValueTypeVector:
		return "instant vector"
	case ValueTypeMatrix:
		return "range vector"
	default:
		return t.String()
	}
}

// ParseValueType parses value type name.
//
// Both short ("vector") and documented ("instant vector") names are accepted.
func ParseValueType(s string) (ValueType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return ValueTypeNone, nil
	case "scalar":
		return ValueTypeScalar, nil
	case "vector", "instant vector":
		return ValueTypeVector, nil
	case "matrix", "range vector":
		return ValueTypeMatrix, nil
	case "string":
		return ValueTypeString, nil
	default:
		return 0, errors.Errorf("unknown value type %q", s)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *ValueType) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := ParseValueType(s)
	if err != nil {
		return errors.Wrapf(err, "line %d", n.Line)
	}
	*t = v
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (t ValueType) MarshalYAML() (any, error) {
	return t.String(), nil
}

func fromPrometheusType(t parser.ValueType) (ValueType, error) {
	switch t {
	case parser.ValueTypeNone:
		return ValueTypeNone, nil
	case parser.ValueTypeScalar:
		return ValueTypeScalar, nil
	case parser.ValueTypeVector:
		return ValueTypeVector, nil
	case parser.ValueTypeMatrix:
		return ValueTypeMatrix, nil
	case parser.ValueTypeString:
		return ValueTypeString, nil
	default:
		return 0, errors.Errorf("unknown prometheus value type %q", t)
	}
}
