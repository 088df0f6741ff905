package agent

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/evoframe/rulekit/ipc"
	"github.com/evoframe/rulekit/model"
)

// ObsEnv wraps the observation history and exposes helper methods callable
// from derived-state expressions, e.g. `Delta("temp") > 0 ? 1.0 : 0.0` or
// `State("power_in") - State("power_out")`.
type ObsEnv struct {
	history model.History
	keys    map[string]string // state name → encoded index
}

// State returns the named state's value at the most recent timestep.
func (e ObsEnv) State(name string) float64 {
	return e.lookup(name, 0)
}

// Lag returns the named state's value lookback steps ago, or 0 when the
// history is too short.
func (e ObsEnv) Lag(name string, lookback int) float64 {
	return e.lookup(name, lookback)
}

// Delta returns the change in the named state since the previous step.
func (e ObsEnv) Delta(name string) float64 {
	if len(e.history) < 2 {
		return 0
	}
	return e.lookup(name, 0) - e.lookup(name, 1)
}

// Mean averages the named state over the last n steps (fewer if the
// history is shorter).
func (e ObsEnv) Mean(name string, n int) float64 {
	if n <= 0 || len(e.history) == 0 {
		return 0
	}
	if n > len(e.history) {
		n = len(e.history)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += e.lookup(name, i)
	}
	return sum / float64(n)
}

func (e ObsEnv) lookup(name string, lookback int) float64 {
	obs := e.history.At(lookback)
	if obs == nil {
		return 0
	}
	key, ok := e.keys[name]
	if !ok {
		return 0
	}
	return obs[key]
}

// derivedState is one compiled synthetic state.
type derivedState struct {
	name    string
	program *vm.Program
}

// compileDerived compiles every derived-state expression up front so a bad
// expression fails the bind, not the thousandth observation.
func compileDerived(specs []ipc.DerivedSpec) ([]derivedState, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make([]derivedState, len(specs))
	for i, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("derived state %d: empty name", i)
		}
		program, err := expr.Compile(spec.Expr, expr.Env(ObsEnv{}), expr.AsFloat64())
		if err != nil {
			return nil, fmt.Errorf("compile derived state %q: %w", spec.Name, err)
		}
		out[i] = derivedState{name: spec.Name, program: program}
	}
	return out, nil
}

// applyDerived computes every derived state against the current history and
// writes the results into the newest observation. Derived states are
// evaluated in declaration order, so later ones can read earlier ones.
func applyDerived(derived []derivedState, keys map[string]string, history model.History) error {
	if len(derived) == 0 {
		return nil
	}
	latest := history.Latest()
	if latest == nil {
		return nil
	}
	env := ObsEnv{history: history, keys: keys}
	for _, d := range derived {
		result, err := vm.Run(d.program, env)
		if err != nil {
			return fmt.Errorf("derived state %q: %w", d.name, err)
		}
		value, ok := result.(float64)
		if !ok {
			return fmt.Errorf("derived state %q: non-numeric result %T", d.name, result)
		}
		key, ok := keys[d.name]
		if !ok {
			return fmt.Errorf("derived state %q: not in schema", d.name)
		}
		latest[key] = value
	}
	return nil
}
