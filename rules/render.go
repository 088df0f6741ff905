package rules

import (
	"fmt"
	"math"
	"strings"

	"github.com/evoframe/rulekit/model"
	"github.com/evoframe/rulekit/schema"
)

// Granularity is the coarseness of evolved coefficients; the number of
// decimal digits shown in explanations derives from it.
const Granularity = 100

// Renderer turns conditions, rules and rule sets into deterministic
// human-readable text using the bound name maps. It never mutates what it
// renders.
type Renderer struct {
	states  map[string]string
	actions map[string]string
	digits  int
}

// NewRenderer builds a renderer over encoded state/action name maps with
// the default fixed precision.
func NewRenderer(states, actions map[string]string) *Renderer {
	return &Renderer{
		states:  states,
		actions: actions,
		digits:  int(math.Log10(Granularity)),
	}
}

// WithDigits overrides the decimal precision.
func (r *Renderer) WithDigits(digits int) *Renderer {
	clone := *r
	clone.digits = digits
	return &clone
}

// Condition renders one condition. Categorical first states use the one-hot
// phrasing ("race is Hispanic", "race[2] is not Hispanic"); everything else
// is the inequality with coefficient, lookback and exponent decorations.
func (r *Renderer) Condition(c *Condition, minMaxes model.Calibration) string {
	if name, ok := r.states[c.FirstStateKey]; ok && schema.IsCategorical(name) {
		return r.categorical(c, name)
	}
	return r.continuous(c, minMaxes)
}

// categorical phrasing relies on the one-hot convention: the comparison is
// against 1.0, so "<" reads as "is not" and ">=" as "is".
func (r *Renderer) categorical(c *Condition, encoded string) string {
	name := schema.ExtractName(encoded)
	category, _ := schema.ExtractCategory(encoded)

	lookback := ""
	if c.FirstStateLookback > 0 {
		lookback = fmt.Sprintf("[%d]", c.FirstStateLookback)
	}
	verb := "is"
	if c.Operator == LessThan {
		verb = "is not"
	}
	return fmt.Sprintf("%s%s %s %s", name, lookback, verb, category)
}

func (r *Renderer) continuous(c *Condition, minMaxes model.Calibration) string {
	first := r.operand(c.FirstStateCoefficient, c.FirstStateKey, c.FirstStateLookback, c.FirstStateExponent)

	var second string
	switch {
	case !c.IsLiteral(r.states):
		second = r.operand(c.SecondStateCoefficient, c.SecondStateKey, c.SecondStateLookback, c.SecondStateExponent)
	default:
		mm, ok := minMaxes[c.FirstStateKey]
		if ok {
			second = fmt.Sprintf("%.*f {%g..%g}", r.digits, mm.Rescale(c.SecondStateValue), mm.Min, mm.Max)
		} else {
			second = fmt.Sprintf("%.*f", r.digits, c.SecondStateValue)
		}
	}

	return fmt.Sprintf("%s %s %s", first, c.Operator, second)
}

// operand renders one side as coefficient*name[lookback]^exponent, omitting
// the lookback when 0 and the exponent when <= 1.
func (r *Renderer) operand(coefficient float64, key string, lookback, exponent int) string {
	name := key
	if mapped, ok := r.states[key]; ok {
		name = mapped
	}
	part := fmt.Sprintf("%.*f*%s", r.digits, coefficient, name)
	if lookback > 0 {
		part = fmt.Sprintf("%s[%d]", part, lookback)
	}
	if exponent > 1 {
		part = fmt.Sprintf("%s^%d", part, exponent)
	}
	return part
}

// Rule renders the conjunction joined by " AND ", prefixed with the rule's
// times-applied marker and suffixed with its action. A positive action
// lookback renders as lb[N]: the rule repeats a past decision rather than
// naming one.
func (r *Renderer) Rule(rule *Rule, minMaxes model.Calibration) string {
	parts := make([]string, len(rule.Conditions))
	for i, c := range rule.Conditions {
		parts[i] = r.Condition(c, minMaxes)
	}

	action := rule.Action
	if mapped, ok := r.actions[rule.Action]; ok {
		action = mapped
	}
	if rule.ActionLookback > 0 {
		action = fmt.Sprintf("lb[%d]", rule.ActionLookback)
	}

	return fmt.Sprintf("%s%s -> %s", applied(rule.TimesApplied), strings.Join(parts, " AND "), action)
}

// RuleSet renders every rule on its own line followed by the default-action
// line with the set's own counter and coefficient.
func (r *Renderer) RuleSet(rs *RuleSet) string {
	var b strings.Builder
	for _, rule := range rs.Rules {
		b.WriteString(r.Rule(rule, rs.MinMaxes))
		b.WriteString("\n")
	}

	name := rs.DefaultAction
	if mapped, ok := r.actions[rs.DefaultAction]; ok {
		name = mapped
	}
	fmt.Fprintf(&b, "%sDefault Action: %.*f*%s\n", applied(rs.TimesApplied), r.digits, rs.DefaultActionCoefficient, name)
	return b.String()
}

// applied renders a times-applied counter in angle brackets, empty when the
// entity never fired.
func applied(times int) string {
	if times > 0 {
		return fmt.Sprintf(" <%d> ", times)
	}
	return " <> "
}
