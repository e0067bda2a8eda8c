package tool

import (
	"context"
	"strconv"
)

var operands = ObjectSchema(
	Param{Name: "a", Type: "number", Description: "First operand", Required: true},
	Param{Name: "b", Type: "number", Description: "Second operand", Required: true},
)

func arithmetic(name, description string, op func(a, b float64) string) *Func {
	return NewFunc(name, description, operands, func(_ context.Context, args Args) (string, error) {
		a, err := args.Float("a")
		if err != nil {
			return "", err
		}
		b, err := args.Float("b")
		if err != nil {
			return "", err
		}
		return op(a, b), nil
	})
}

// FormatNumber prints v without a trailing ".0" for whole numbers.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Add returns the add tool.
func Add() *Func {
	return arithmetic("add", "Adds a and b.", func(a, b float64) string {
		return FormatNumber(a + b)
	})
}

// Subtract returns the subtract tool.
func Subtract() *Func {
	return arithmetic("subtract", "Subtracts b from a.", func(a, b float64) string {
		return FormatNumber(a - b)
	})
}

// Multiply returns the multiply tool.
func Multiply() *Func {
	return arithmetic("multiply", "Multiplies a and b.", func(a, b float64) string {
		return FormatNumber(a * b)
	})
}

// Divide returns the divide tool. Division by zero is reported to the model
// as a result, not as an error.
func Divide() *Func {
	return arithmetic("divide", "Divides a by b.", func(a, b float64) string {
		if b == 0 {
			return "Error: Division by zero"
		}
		return FormatNumber(a / b)
	})
}
