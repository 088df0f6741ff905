package rules

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/evoframe/rulekit/model"
	"github.com/evoframe/rulekit/schema"
)

// RuleSet is an evolved rule-based policy: an ordered rule list, the default
// action attributed when nothing fires, and a private min/max calibration
// used to rescale normalized literal thresholds. The calibration is copied
// at construction so the caller's original is never aliased, and widens as
// evaluation encounters new data.
//
// TimesApplied counts default-action attributions; AgeState belongs to the
// evolutionary loop that owns the set between evaluation epochs. Neither is
// synchronized here: one writer per set at a time.
type RuleSet struct {
	UID                      string            `json:"uid"`
	Rules                    []*Rule           `json:"rules"`
	DefaultAction            string            `json:"default_action"`
	DefaultActionCoefficient float64           `json:"default_action_coefficient"`
	MinMaxes                 model.Calibration `json:"min_maxes"`
	TimesApplied             int               `json:"times_applied"`
	AgeState                 int               `json:"age_state"`
}

// NewRuleSet creates an empty rule set calibrated with a copy of minMaxes.
// A nil calibration is allowed when nothing is known about the data yet.
func NewRuleSet(minMaxes model.Calibration) *RuleSet {
	return &RuleSet{
		UID:      uuid.NewString(),
		MinMaxes: minMaxes.Clone(),
	}
}

// Validate normalizes the set for evaluation and then checks it. The
// normalization mutates the receiver: a nil calibration becomes an empty
// one (persisted records may omit min_maxes entirely) and unset condition
// exponents default to 1. Loading paths rely on these rewrites.
func (rs *RuleSet) Validate() error {
	if rs.MinMaxes == nil {
		rs.MinMaxes = model.Calibration{}
	}
	if rs.DefaultAction == "" {
		return fmt.Errorf("rule set %s: empty default action", rs.UID)
	}
	for i, r := range rs.Rules {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("rule set %s: rule %d: %w", rs.UID, i, err)
		}
	}
	return nil
}

// Clone returns a deep copy, counters included.
func (rs *RuleSet) Clone() *RuleSet {
	out := &RuleSet{
		UID:                      rs.UID,
		DefaultAction:            rs.DefaultAction,
		DefaultActionCoefficient: rs.DefaultActionCoefficient,
		MinMaxes:                 rs.MinMaxes.Clone(),
		TimesApplied:             rs.TimesApplied,
		AgeState:                 rs.AgeState,
	}
	out.Rules = make([]*Rule, len(rs.Rules))
	for i, r := range rs.Rules {
		out.Rules[i] = r.Clone()
	}
	return out
}

// Binding pairs a rule set with the input/output schema it was evolved
// against, so columnar sample data can be decoded and evaluated without the
// caller re-deriving the index maps.
type Binding struct {
	Rules   *RuleSet
	States  []schema.Variable
	Actions []schema.Variable
}

// NewBinding deep-copies the rule set so evaluation bookkeeping never leaks
// back into the caller's instance.
func NewBinding(rs *RuleSet, states, actions []schema.Variable) *Binding {
	return &Binding{
		Rules:   rs.Clone(),
		States:  append([]schema.Variable(nil), states...),
		Actions: append([]schema.Variable(nil), actions...),
	}
}
