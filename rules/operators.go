package rules

import "fmt"

// Operator is a comparison between the two sides of a condition. Only the
// four inequality symbols are valid; anything else is rejected at
// construction time, never silently ignored.
type Operator string

const (
	LessThan         Operator = "<"
	LessThanEqual    Operator = "<="
	GreaterThan      Operator = ">"
	GreaterThanEqual Operator = ">="
)

// ParseOperator validates an operator symbol.
func ParseOperator(s string) (Operator, error) {
	op := Operator(s)
	if err := op.Validate(); err != nil {
		return "", err
	}
	return op, nil
}

// Validate reports whether the operator is one of the supported symbols.
func (op Operator) Validate() error {
	switch op {
	case LessThan, LessThanEqual, GreaterThan, GreaterThanEqual:
		return nil
	}
	return fmt.Errorf("unsupported operator %q", string(op))
}

// Compare applies the operator with strict/inclusive semantics matching the
// symbol exactly.
func (op Operator) Compare(left, right float64) bool {
	switch op {
	case LessThan:
		return left < right
	case LessThanEqual:
		return left <= right
	case GreaterThan:
		return left > right
	case GreaterThanEqual:
		return left >= right
	}
	return false
}
