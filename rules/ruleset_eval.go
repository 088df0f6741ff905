package rules

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/evoframe/rulekit/model"
	"github.com/evoframe/rulekit/schema"
)

// Vote accumulates one action's support across the rule list.
type Vote struct {
	Count          int
	CoefficientSum float64
}

// RuleSetEvaluator aggregates every rule's contribution into per-action
// scores. Construct one per bound schema and share it freely; all mutable
// state lives on the rule set being evaluated.
type RuleSetEvaluator struct {
	states  map[string]string
	actions map[string]string
	rules   *RuleEvaluator
}

// NewRuleSetEvaluator binds the evaluator to encoded state and action maps.
func NewRuleSetEvaluator(states, actions map[string]string) *RuleSetEvaluator {
	return &RuleSetEvaluator{
		states:  states,
		actions: actions,
		rules:   NewRuleEvaluator(states),
	}
}

// ChooseAction walks the rule list in order and returns every known
// action's vote tally. A rule that fires adds the set's default coefficient
// to its action's sum; a deferred rule resolves its action against the
// caller's action log and abstains when the log is too short. When nothing
// fires the default action is attributed and the set's own counter ticks.
//
// Before any rule runs, the set's calibration widens to cover the newest
// observation, so literal thresholds keep tracking the data actually seen.
func (e *RuleSetEvaluator) ChooseAction(rs *RuleSet, history model.History, log model.ActionLog) (map[string]Vote, error) {
	if latest := history.Latest(); latest != nil {
		// Sets built by hand may never have been validated; widening into
		// a nil map would panic.
		if rs.MinMaxes == nil {
			rs.MinMaxes = model.Calibration{}
		}
		rs.MinMaxes.Widen(latest)
	}

	votes := make(map[string]Vote, len(e.actions))
	for key := range e.actions {
		votes[key] = Vote{}
	}

	fired := false
	for i, r := range rs.Rules {
		outcome, err := e.rules.Evaluate(r, history, rs.MinMaxes)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}

		action := ""
		switch outcome.Kind {
		case NoMatch:
			continue
		case Fired:
			action = outcome.Action
		case Deferred:
			past, ok := log.At(outcome.Lookback)
			if !ok {
				continue
			}
			action = past
		}

		fired = true
		slog.Debug("rule fired", "rule", i, "action", action, "lookback", outcome.Lookback)
		v := votes[action]
		v.Count++
		v.CoefficientSum += rs.DefaultActionCoefficient
		votes[action] = v
	}

	if !fired {
		rs.TimesApplied++
		v := votes[rs.DefaultAction]
		v.Count++
		v.CoefficientSum += rs.DefaultActionCoefficient
		votes[rs.DefaultAction] = v
	}

	return votes, nil
}

// Scores converts vote tallies into the continuous per-action strength
// vector: coefficient sum averaged over the vote count, zero when nothing
// voted. Division by zero is defined away, not an error.
func (e *RuleSetEvaluator) Scores(votes map[string]Vote) map[string]float64 {
	scores := make(map[string]float64, len(votes))
	for action, v := range votes {
		if v.Count > 0 {
			scores[action] = v.CoefficientSum / float64(v.Count)
		} else {
			scores[action] = 0.0
		}
	}
	return scores
}

// Best returns the highest-scoring action key, breaking ties by key order
// so repeated evaluations stay deterministic.
func Best(scores map[string]float64) string {
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best := ""
	bestScore := 0.0
	for _, k := range keys {
		if best == "" || scores[k] > bestScore {
			best = k
			bestScore = scores[k]
		}
	}
	return best
}

// EvaluateBatch runs a binding over columnar sample data laid out as
// data[stateIndex][sampleIndex] and returns one score vector per sample,
// ordered by encoded action index. Each sample is an independent
// single-timestep history, so lookback rules never fire here.
func EvaluateBatch(b *Binding, data [][]float64) ([][]float64, error) {
	states, err := schema.Encode(b.States)
	if err != nil {
		return nil, fmt.Errorf("evaluate batch: states: %w", err)
	}
	actions, err := schema.Encode(b.Actions)
	if err != nil {
		return nil, fmt.Errorf("evaluate batch: actions: %w", err)
	}
	if len(data) != len(states) {
		return nil, fmt.Errorf("evaluate batch: %d data columns for %d encoded states", len(data), len(states))
	}

	samples := 0
	if len(data) > 0 {
		samples = len(data[0])
		for i, col := range data {
			if len(col) != samples {
				return nil, fmt.Errorf("evaluate batch: column %d has %d samples, want %d", i, len(col), samples)
			}
		}
	}

	evaluator := NewRuleSetEvaluator(states, actions)
	out := make([][]float64, 0, samples)
	for s := 0; s < samples; s++ {
		obs := make(model.Observation, len(states))
		for key := range states {
			idx, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("evaluate batch: bad state index %q", key)
			}
			obs[key] = data[idx][s]
		}

		votes, err := evaluator.ChooseAction(b.Rules, model.History{obs}, nil)
		if err != nil {
			return nil, fmt.Errorf("evaluate batch: sample %d: %w", s, err)
		}
		scores := evaluator.Scores(votes)

		vector := make([]float64, len(actions))
		for a := range vector {
			vector[a] = scores[strconv.Itoa(a)]
		}
		out = append(out, vector)
	}
	return out, nil
}
