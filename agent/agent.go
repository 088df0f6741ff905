package agent

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/evoframe/rulekit/ipc"
	"github.com/evoframe/rulekit/model"
	"github.com/evoframe/rulekit/persist"
	"github.com/evoframe/rulekit/rules"
	"github.com/evoframe/rulekit/schema"
)

// MemoryCells caps how many past observations and chosen actions a session
// retains; lookbacks beyond it can never resolve.
const MemoryCells = 100

// Agent owns the evaluation session for a single connection: the bound
// schema, the rule set being evaluated, the observation history and the
// action log that deferred rules resolve against.
type Agent struct {
	Conn   *ipc.Connection
	Client string

	store *Store // fallback rule-set source for binds without an inline set

	mu      sync.Mutex
	session *session
}

// session is everything derived from one bind message.
type session struct {
	states    map[string]string // encoded index → name
	actions   map[string]string
	nameToKey map[string]string // raw/derived state name → encoded index
	set       *rules.RuleSet
	evaluator *rules.RuleSetEvaluator
	renderer  *rules.Renderer
	derived   []derivedState
	history   model.History
	log       model.ActionLog
	diag      diagnostics
}

// New creates an agent for a connection. store may be nil when the daemon
// has no default rule set; binds must then carry one inline.
func New(conn *ipc.Connection, store *Store) *Agent {
	return &Agent{Conn: conn, store: store}
}

// HandleBind builds a fresh session from the schema and rule set in the
// message. Rebinding mid-connection discards the previous session wholesale.
func (a *Agent) HandleBind(env ipc.Envelope) (*ipc.Envelope, error) {
	var bind ipc.BindMessage
	if err := json.Unmarshal(env.Data, &bind); err != nil {
		return nil, fmt.Errorf("unmarshal bind: %w", err)
	}

	sess, err := a.newSession(bind)
	if err != nil {
		return nil, fmt.Errorf("bind: %w", err)
	}

	a.mu.Lock()
	a.Client = bind.Client
	a.session = sess
	a.mu.Unlock()
	a.Conn.Client = bind.Client

	slog.Info("session bound",
		"client", bind.Client,
		"states", len(sess.states),
		"actions", len(sess.actions),
		"rules", len(sess.set.Rules),
		"derived", len(sess.derived),
	)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok"})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

func (a *Agent) newSession(bind ipc.BindMessage) (*session, error) {
	stateVars := toVariables(bind.States)
	// Derived states are appended as scalar variables so conditions can
	// reference them by index like any native state.
	for _, d := range bind.Derived {
		stateVars = append(stateVars, schema.Variable{Name: d.Name, Size: 1})
	}

	states, err := schema.Encode(stateVars)
	if err != nil {
		return nil, fmt.Errorf("states: %w", err)
	}
	actions, err := schema.Encode(toVariables(bind.Actions))
	if err != nil {
		return nil, fmt.Errorf("actions: %w", err)
	}

	var set *rules.RuleSet
	switch {
	case len(bind.RuleSet) > 0:
		set, err = persist.Unmarshal(bind.RuleSet)
		if err != nil {
			return nil, err
		}
	case a.store != nil:
		set = a.store.Get()
		if set == nil {
			return nil, fmt.Errorf("no rule set in bind and none loaded")
		}
	default:
		return nil, fmt.Errorf("no rule set in bind")
	}

	derived, err := compileDerived(bind.Derived)
	if err != nil {
		return nil, err
	}

	nameToKey := make(map[string]string, len(states))
	for key, name := range states {
		nameToKey[name] = key
	}

	return &session{
		states:    states,
		actions:   actions,
		nameToKey: nameToKey,
		set:       set,
		evaluator: rules.NewRuleSetEvaluator(states, actions),
		renderer:  rules.NewRenderer(states, actions),
		derived:   derived,
	}, nil
}

// HandleObserve appends one timestep and replies with the per-action score
// vector and the chosen action.
func (a *Agent) HandleObserve(env ipc.Envelope) (*ipc.Envelope, error) {
	var obs ipc.ObserveMessage
	if err := json.Unmarshal(env.Data, &obs); err != nil {
		return nil, fmt.Errorf("unmarshal observe: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	sess := a.session
	if sess == nil {
		return nil, fmt.Errorf("observe before bind")
	}

	encoded := make(model.Observation, len(obs.Values))
	for name, value := range obs.Values {
		key, ok := sess.nameToKey[name]
		if !ok {
			return nil, fmt.Errorf("observe: unknown state %q", name)
		}
		encoded[key] = value
	}
	sess.history = sess.history.Push(encoded, MemoryCells)

	if err := applyDerived(sess.derived, sess.nameToKey, sess.history); err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}

	// The set's own counter ticks exactly when no rule fires, so the
	// delta tells diagnostics whether this step fell to the default.
	defaultsBefore := sess.set.TimesApplied
	votes, err := sess.evaluator.ChooseAction(sess.set, sess.history, sess.log)
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}
	scores := sess.evaluator.Scores(votes)
	chosen := rules.Best(scores)
	sess.log = sess.log.Push(chosen, MemoryCells)

	sess.diag.observe(obs.Step, sess.set, sess.set.TimesApplied > defaultsBefore)

	named := make(map[string]float64, len(scores))
	for key, score := range scores {
		named[actionName(sess.actions, key)] = score
	}

	reply, err := ipc.NewEnvelope(ipc.TypeScores, ipc.ScoresMessage{
		Step:   obs.Step,
		Scores: named,
		Chosen: actionName(sess.actions, chosen),
	})
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// HandleRender replies with the bound policy's explainability text.
func (a *Agent) HandleRender(env ipc.Envelope) (*ipc.Envelope, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return nil, fmt.Errorf("render before bind")
	}

	reply, err := ipc.NewEnvelope(ipc.TypeRender, ipc.RenderedMessage{
		Text: a.session.renderer.RuleSet(a.session.set),
	})
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// Swap replaces the session's rule set in place, keeping history and the
// action log so deferred rules continue to resolve. Called by the reloader.
func (a *Agent) Swap(set *rules.RuleSet) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return
	}
	a.session.set = set.Clone()
	slog.Info("rule set swapped", "client", a.Client, "uid", set.UID, "rules", len(set.Rules))
}

func toVariables(specs []ipc.VariableSpec) []schema.Variable {
	out := make([]schema.Variable, len(specs))
	for i, s := range specs {
		out[i] = schema.Variable{Name: s.Name, Size: s.Size, Values: s.Values}
	}
	return out
}

func actionName(actions map[string]string, key string) string {
	if name, ok := actions[key]; ok {
		return name
	}
	return key
}
