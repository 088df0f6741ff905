package rules

import "github.com/evoframe/rulekit/model"

// OutcomeKind tags the result of evaluating one rule.
type OutcomeKind int

const (
	// NoMatch: a condition failed or history was too short. The rule's
	// counter is untouched.
	NoMatch OutcomeKind = iota
	// Fired: every condition held and the rule names a fresh action.
	Fired
	// Deferred: every condition held but the rule echoes the action chosen
	// Lookback steps ago instead of naming one.
	Deferred
)

// Outcome is the tagged result of RuleEvaluator.Evaluate. Action is set for
// Fired, Lookback for Deferred.
type Outcome struct {
	Kind     OutcomeKind
	Action   string
	Lookback int
}

// RuleEvaluator evaluates a rule's conjunction left to right with
// short-circuiting. Condition order never changes the boolean result, only
// how much work a miss costs.
type RuleEvaluator struct {
	conditions *ConditionEvaluator
}

// NewRuleEvaluator binds the evaluator to an encoded state map. The
// condition evaluator is stateless, so building it once here is fine.
func NewRuleEvaluator(states map[string]string) *RuleEvaluator {
	return &RuleEvaluator{conditions: NewConditionEvaluator(states)}
}

// Evaluate runs the rule against the history. TimesApplied is incremented
// only when the rule actually fires (Fired or Deferred); a rule whose
// conditions hold but whose action lookback reaches past the start of
// history is a NoMatch and leaves the counter alone.
func (e *RuleEvaluator) Evaluate(r *Rule, history model.History, minMaxes model.Calibration) (Outcome, error) {
	for _, c := range r.Conditions {
		held, err := e.conditions.Evaluate(c, history, minMaxes)
		if err != nil {
			return Outcome{Kind: NoMatch}, err
		}
		if !held {
			return Outcome{Kind: NoMatch}, nil
		}
	}

	if len(history)-1 < r.ActionLookback {
		return Outcome{Kind: NoMatch}, nil
	}

	r.TimesApplied++
	if r.ActionLookback == 0 {
		return Outcome{Kind: Fired, Action: r.Action}, nil
	}
	return Outcome{Kind: Deferred, Lookback: r.ActionLookback}, nil
}
