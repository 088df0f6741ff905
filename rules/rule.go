package rules

import "fmt"

// Rule is an ordered conjunction of conditions plus the action it votes for.
// A positive ActionLookback means the rule does not name a fresh action but
// echoes the action that was chosen that many steps in the past.
//
// TimesApplied is mutated by RuleEvaluator under the single-writer contract:
// exactly one goroutine may evaluate a given rule set at a time.
type Rule struct {
	Conditions     []*Condition `json:"condition"`
	Action         string       `json:"action"`
	ActionLookback int          `json:"action_lookback"`
	TimesApplied   int          `json:"times_applied"`
}

// Validate checks the rule and all its conditions.
func (r *Rule) Validate() error {
	if len(r.Conditions) == 0 {
		return fmt.Errorf("rule: no conditions")
	}
	if r.ActionLookback < 0 {
		return fmt.Errorf("rule: negative action lookback")
	}
	if r.Action == "" {
		return fmt.Errorf("rule: empty action")
	}
	for i, c := range r.Conditions {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("rule condition %d: %w", i, err)
		}
	}
	return nil
}

// Clone returns a deep copy of the rule.
func (r *Rule) Clone() *Rule {
	out := &Rule{
		Action:         r.Action,
		ActionLookback: r.ActionLookback,
		TimesApplied:   r.TimesApplied,
	}
	out.Conditions = make([]*Condition, len(r.Conditions))
	for i, c := range r.Conditions {
		cc := *c
		out.Conditions[i] = &cc
	}
	return out
}
