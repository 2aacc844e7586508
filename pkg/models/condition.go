// Package models provides condition evaluation for triggers and actions.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ConditionOperator enumerates the supported comparison operators.
type ConditionOperator string

const (
	OperatorEquals      ConditionOperator = "equals"
	OperatorNotEquals   ConditionOperator = "not_equals"
	OperatorContains    ConditionOperator = "contains"
	OperatorGreaterThan ConditionOperator = "greater_than"
	OperatorLessThan    ConditionOperator = "less_than"
	OperatorIn          ConditionOperator = "in"
)

// Condition is a declarative predicate over a single context field.
// A nil or zero condition always holds.
type Condition struct {
	Field    string            `json:"field"    validate:"required"`
	Operator ConditionOperator `json:"operator" validate:"required"`
	Value    any               `json:"value"`
}

// IsZero reports whether the condition is absent or empty.
func (c *Condition) IsZero() bool {
	return c == nil || (c.Field == "" && c.Operator == "")
}

// Evaluate resolves the condition against the given context map. The field is
// looked up by direct key; a missing field yields nil as the actual value.
// A non-nil error is a diagnostic (unknown operator, incomparable operands);
// the boolean result is false in that case so callers can log and proceed.
func (c *Condition) Evaluate(data map[string]any) (bool, error) {
	if c.IsZero() {
		return true, nil
	}

	actual := data[c.Field]

	switch c.Operator {
	case OperatorEquals:
		return looseEqual(actual, c.Value), nil
	case OperatorNotEquals:
		return !looseEqual(actual, c.Value), nil
	case OperatorContains:
		return strings.Contains(fmt.Sprint(actual), fmt.Sprint(c.Value)), nil
	case OperatorGreaterThan:
		return compareNumeric(actual, c.Value, func(a, b float64) bool { return a > b })
	case OperatorLessThan:
		return compareNumeric(actual, c.Value, func(a, b float64) bool { return a < b })
	case OperatorIn:
		return containsMember(c.Value, actual)
	default:
		return false, fmt.Errorf("unknown condition operator %q: %w", c.Operator, ErrUnknownOperator)
	}
}

var (
	// ErrUnknownOperator is returned when a condition uses an unsupported operator.
	ErrUnknownOperator = errors.New("unknown condition operator")
	// ErrIncomparable is returned when ordering operators receive non-numeric operands.
	ErrIncomparable = errors.New("operands are not comparable")
)

func compareNumeric(actual, expected any, cmp func(a, b float64) bool) (bool, error) {
	a, aok := toFloat(actual)
	b, bok := toFloat(expected)

	if !aok || !bok {
		return false, fmt.Errorf("cannot order %T against %T: %w", actual, expected, ErrIncomparable)
	}

	return cmp(a, b), nil
}

// containsMember implements the "in" operator: actual must be a member of the
// expected collection. A string collection means substring membership.
func containsMember(collection, actual any) (bool, error) {
	switch col := collection.(type) {
	case string:
		return strings.Contains(col, fmt.Sprint(actual)), nil
	case nil:
		return false, nil
	}

	value := reflect.ValueOf(collection)
	if value.Kind() != reflect.Slice && value.Kind() != reflect.Array {
		return false, fmt.Errorf("%T is not a collection: %w", collection, ErrIncomparable)
	}

	for i := range value.Len() {
		if looseEqual(value.Index(i).Interface(), actual) {
			return true, nil
		}
	}

	return false, nil
}

// looseEqual compares two values numerically when both are numeric, otherwise
// by deep equality with a string-form fallback. JSON decoding turns all
// numbers into float64, so cross-type numeric equality must hold.
func looseEqual(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}

	if reflect.DeepEqual(a, b) {
		return true
	}

	if a == nil || b == nil {
		return false
	}

	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()

		return f, err == nil
	default:
		return 0, false
	}
}
