package rules

import "fmt"

// Condition is an atomic inequality between two time-lagged, coefficient
// scaled state values. The second operand is either a reference to another
// state or a normalized literal in [0,1] rescaled through the first state's
// calibration; which one applies is decided by whether SecondStateKey exists
// in the bound state map.
//
// The json tags are a backward-compatibility contract with previously
// evolved policies and must not change.
type Condition struct {
	FirstStateKey         string   `json:"first_state"`
	FirstStateCoefficient float64  `json:"first_state_coefficient"`
	FirstStateExponent    int      `json:"first_state_exponent"`
	FirstStateLookback    int      `json:"first_state_lookback"`
	Operator              Operator `json:"operator"`

	SecondStateKey         string  `json:"second_state"`
	SecondStateCoefficient float64 `json:"second_state_coefficient"`
	SecondStateExponent    int     `json:"second_state_exponent"`
	SecondStateLookback    int     `json:"second_state_lookback"`
	SecondStateValue       float64 `json:"second_state_value"`
}

// Validate normalizes and checks the condition. Normalization mutates the
// receiver: exponents at zero are rewritten to 1 before the range checks,
// so persisted records and hand-written fixtures that omit them come out
// ready to evaluate. Loading paths rely on this rewrite; this is not a
// pure check.
func (c *Condition) Validate() error {
	if c.FirstStateKey == "" {
		return fmt.Errorf("condition: empty first state key")
	}
	if err := c.Operator.Validate(); err != nil {
		return fmt.Errorf("condition %q: %w", c.FirstStateKey, err)
	}
	if c.FirstStateLookback < 0 || c.SecondStateLookback < 0 {
		return fmt.Errorf("condition %q: negative lookback", c.FirstStateKey)
	}
	if c.FirstStateExponent == 0 {
		c.FirstStateExponent = 1
	}
	if c.SecondStateExponent == 0 {
		c.SecondStateExponent = 1
	}
	if c.FirstStateExponent < 1 || c.SecondStateExponent < 1 {
		return fmt.Errorf("condition %q: exponent must be >= 1", c.FirstStateKey)
	}
	return nil
}

// IsLiteral reports whether the second operand is a normalized literal
// threshold rather than a state reference, given the bound state map.
func (c *Condition) IsLiteral(states map[string]string) bool {
	_, ok := states[c.SecondStateKey]
	return !ok
}
