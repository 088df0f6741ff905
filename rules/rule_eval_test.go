package rules

import (
	"testing"

	"github.com/evoframe/rulekit/model"
)

// alwaysTrue is a condition that holds on any history with at least one
// observation carrying state "0".
func alwaysTrue(t *testing.T) *Condition {
	t.Helper()
	c := &Condition{
		FirstStateKey:         "0",
		FirstStateCoefficient: 1.0,
		Operator:              GreaterThanEqual,
		SecondStateKey:        "none",
		SecondStateValue:      0.0,
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	return c
}

func alwaysFalse(t *testing.T) *Condition {
	t.Helper()
	c := &Condition{
		FirstStateKey:         "0",
		FirstStateCoefficient: 1.0,
		Operator:              LessThan,
		SecondStateKey:        "none",
		SecondStateValue:      0.0,
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	return c
}

var testMinMaxes = model.Calibration{"0": {Min: 0, Max: 100}}

func TestRuleFires(t *testing.T) {
	r := &Rule{Conditions: []*Condition{alwaysTrue(t)}, Action: "1"}
	e := NewRuleEvaluator(testStates)

	outcome, err := e.Evaluate(r, model.History{{"0": 50}}, testMinMaxes)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if outcome.Kind != Fired || outcome.Action != "1" {
		t.Errorf("outcome = %+v, want Fired action \"1\"", outcome)
	}
	if r.TimesApplied != 1 {
		t.Errorf("TimesApplied = %d, want 1", r.TimesApplied)
	}
}

func TestRuleShortCircuits(t *testing.T) {
	r := &Rule{Conditions: []*Condition{alwaysFalse(t), alwaysTrue(t)}, Action: "1"}
	e := NewRuleEvaluator(testStates)

	outcome, err := e.Evaluate(r, model.History{{"0": 50}}, testMinMaxes)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if outcome.Kind != NoMatch {
		t.Errorf("outcome = %+v, want NoMatch", outcome)
	}
	if r.TimesApplied != 0 {
		t.Errorf("TimesApplied = %d, want 0 on non-match", r.TimesApplied)
	}
}

func TestRuleDeferredAction(t *testing.T) {
	r := &Rule{Conditions: []*Condition{alwaysTrue(t)}, Action: "1", ActionLookback: 2}
	e := NewRuleEvaluator(testStates)
	history := model.History{{"0": 1}, {"0": 2}, {"0": 3}}

	outcome, err := e.Evaluate(r, history, testMinMaxes)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if outcome.Kind != Deferred || outcome.Lookback != 2 {
		t.Errorf("outcome = %+v, want Deferred lookback 2", outcome)
	}
	if r.TimesApplied != 1 {
		t.Errorf("TimesApplied = %d, want 1", r.TimesApplied)
	}
}

func TestRuleActionLookbackGuard(t *testing.T) {
	// Conditions hold, but only two steps of history exist for lookback 5.
	r := &Rule{Conditions: []*Condition{alwaysTrue(t)}, Action: "1", ActionLookback: 5}
	e := NewRuleEvaluator(testStates)

	outcome, err := e.Evaluate(r, model.History{{"0": 1}, {"0": 2}}, testMinMaxes)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if outcome.Kind != NoMatch {
		t.Errorf("outcome = %+v, want NoMatch when history shorter than action lookback", outcome)
	}
	if r.TimesApplied != 0 {
		t.Errorf("TimesApplied = %d, want 0 when the guard trips", r.TimesApplied)
	}
}

func TestRuleValidate(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
	}{
		{"no conditions", Rule{Action: "1"}},
		{"negative lookback", Rule{Conditions: []*Condition{{FirstStateKey: "0", Operator: LessThan}}, Action: "1", ActionLookback: -1}},
		{"empty action", Rule{Conditions: []*Condition{{FirstStateKey: "0", Operator: LessThan}}}},
		{"bad condition", Rule{Conditions: []*Condition{{Operator: LessThan}}, Action: "1"}},
	}
	for _, tc := range tests {
		rule := tc.rule
		if err := rule.Validate(); err == nil {
			t.Errorf("%s: Validate succeeded, want error", tc.name)
		}
	}
}
