package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCondition_Evaluate_EmptyAlwaysTrue(t *testing.T) {
	var nilCond *Condition

	result, err := nilCond.Evaluate(map[string]any{"priority": "high"})
	require.NoError(t, err)
	assert.True(t, result)

	result, err = (&Condition{}).Evaluate(nil)
	require.NoError(t, err)
	assert.True(t, result)
}

func TestCondition_Evaluate_Operators(t *testing.T) {
	tests := []struct {
		name     string
		cond     Condition
		data     map[string]any
		expected bool
	}{
		{
			name:     "equals match",
			cond:     Condition{Field: "priority", Operator: OperatorEquals, Value: "critical"},
			data:     map[string]any{"priority": "critical"},
			expected: true,
		},
		{
			name:     "equals mismatch",
			cond:     Condition{Field: "priority", Operator: OperatorEquals, Value: "critical"},
			data:     map[string]any{"priority": "low"},
			expected: false,
		},
		{
			name:     "equals missing field",
			cond:     Condition{Field: "priority", Operator: OperatorEquals, Value: "critical"},
			data:     map[string]any{},
			expected: false,
		},
		{
			name:     "equals numeric cross type",
			cond:     Condition{Field: "points", Operator: OperatorEquals, Value: float64(5)},
			data:     map[string]any{"points": 5},
			expected: true,
		},
		{
			name:     "not_equals",
			cond:     Condition{Field: "status", Operator: OperatorNotEquals, Value: "done"},
			data:     map[string]any{"status": "todo"},
			expected: true,
		},
		{
			name:     "contains",
			cond:     Condition{Field: "title", Operator: OperatorContains, Value: "urgent"},
			data:     map[string]any{"title": "an urgent deployment"},
			expected: true,
		},
		{
			name:     "contains stringifies both sides",
			cond:     Condition{Field: "code", Operator: OperatorContains, Value: 42},
			data:     map[string]any{"code": 14242},
			expected: true,
		},
		{
			name:     "greater_than",
			cond:     Condition{Field: "estimate", Operator: OperatorGreaterThan, Value: float64(3)},
			data:     map[string]any{"estimate": float64(5)},
			expected: true,
		},
		{
			name:     "less_than",
			cond:     Condition{Field: "estimate", Operator: OperatorLessThan, Value: float64(3)},
			data:     map[string]any{"estimate": float64(5)},
			expected: false,
		},
		{
			name:     "in slice",
			cond:     Condition{Field: "status", Operator: OperatorIn, Value: []any{"todo", "blocked"}},
			data:     map[string]any{"status": "blocked"},
			expected: true,
		},
		{
			name:     "in slice miss",
			cond:     Condition{Field: "status", Operator: OperatorIn, Value: []any{"todo", "blocked"}},
			data:     map[string]any{"status": "done"},
			expected: false,
		},
		{
			name:     "in string substring",
			cond:     Condition{Field: "tag", Operator: OperatorIn, Value: "backend,frontend"},
			data:     map[string]any{"tag": "backend"},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.cond.Evaluate(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCondition_Evaluate_EqualsNegatesNotEquals(t *testing.T) {
	data := map[string]any{"priority": "high", "estimate": float64(3)}

	for _, field := range []string{"priority", "estimate", "missing"} {
		eq := Condition{Field: field, Operator: OperatorEquals, Value: "high"}
		ne := Condition{Field: field, Operator: OperatorNotEquals, Value: "high"}

		eqResult, err := eq.Evaluate(data)
		require.NoError(t, err)

		neResult, err := ne.Evaluate(data)
		require.NoError(t, err)

		assert.Equal(t, eqResult, !neResult, "field %q", field)
	}
}

func TestCondition_Evaluate_UnknownOperator(t *testing.T) {
	cond := Condition{Field: "priority", Operator: "matches_regex", Value: ".*"}

	result, err := cond.Evaluate(map[string]any{"priority": "high"})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnknownOperator)
	assert.False(t, result)
}

func TestCondition_Evaluate_IncomparableOperands(t *testing.T) {
	tests := []struct {
		name string
		cond Condition
		data map[string]any
	}{
		{
			name: "greater_than on strings",
			cond: Condition{Field: "priority", Operator: OperatorGreaterThan, Value: "high"},
			data: map[string]any{"priority": "low"},
		},
		{
			name: "less_than on missing field",
			cond: Condition{Field: "estimate", Operator: OperatorLessThan, Value: float64(3)},
			data: map[string]any{},
		},
		{
			name: "in on scalar",
			cond: Condition{Field: "status", Operator: OperatorIn, Value: 42},
			data: map[string]any{"status": "todo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.cond.Evaluate(tt.data)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrIncomparable)
			assert.False(t, result)
		})
	}
}
