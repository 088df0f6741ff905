package rules

import (
	"fmt"
	"math"

	"github.com/evoframe/rulekit/model"
)

// ConditionEvaluator decides whether a single condition holds against an
// observation history. It is stateless apart from the bound state map, so
// one instance can be shared across any number of concurrent evaluations.
type ConditionEvaluator struct {
	states map[string]string
}

// NewConditionEvaluator binds the evaluator to an encoded index → name state
// map. Membership of a condition's second key in this map is what decides
// between the state-reference and literal operand kinds.
func NewConditionEvaluator(states map[string]string) *ConditionEvaluator {
	return &ConditionEvaluator{states: states}
}

// Evaluate returns whether the condition holds on the history, most recent
// observation last. Insufficient history for either lookback is a plain
// non-match, never an error. A literal threshold whose first state has no
// calibration entry is a configuration error and aborts the evaluation.
func (e *ConditionEvaluator) Evaluate(c *Condition, history model.History, minMaxes model.Calibration) (bool, error) {
	steps := len(history) - 1
	if steps < c.FirstStateLookback {
		return false, nil
	}

	left := operandValue(history.At(c.FirstStateLookback), c.FirstStateKey,
		c.FirstStateCoefficient, c.FirstStateExponent)

	var right float64
	if c.IsLiteral(e.states) {
		mm, ok := minMaxes[c.FirstStateKey]
		if !ok {
			return false, fmt.Errorf("condition %q: literal threshold but no calibration for first state",
				c.FirstStateKey)
		}
		// Literal thresholds are always rescaled against the FIRST
		// operand's range, even though the value conceptually belongs
		// to the second side.
		right = mm.Rescale(c.SecondStateValue)
	} else {
		if steps < c.SecondStateLookback {
			return false, nil
		}
		right = operandValue(history.At(c.SecondStateLookback), c.SecondStateKey,
			c.SecondStateCoefficient, c.SecondStateExponent)
	}

	return c.Operator.Compare(left, right), nil
}

// operandValue computes coefficient * value^exponent for one side of the
// inequality. The exponent is applied here and in the renderer alike, so
// the explanation string describes the comparison actually performed.
func operandValue(obs model.Observation, key string, coefficient float64, exponent int) float64 {
	value := obs[key]
	if exponent > 1 {
		value = math.Pow(value, float64(exponent))
	}
	return coefficient * value
}
