package ipc

import "encoding/json"

// Message type constants — harnesses match on these strings, so they are
// part of the wire contract.
const (
	TypeBind    = "bind"
	TypeAck     = "ack"
	TypeObserve = "observe"
	TypeScores  = "action_scores"
	TypeRender  = "render"
)

// BindMessage opens an evaluation session: the domain schema, the persisted
// rule set to evaluate, and optional derived-state definitions computed on
// every observation before the rules see it.
type BindMessage struct {
	Client  string          `json:"client"`
	States  []VariableSpec  `json:"states"`
	Actions []VariableSpec  `json:"actions"`
	RuleSet json.RawMessage `json:"rule_set,omitempty"`
	Derived []DerivedSpec   `json:"derived,omitempty"`
}

// VariableSpec mirrors the domain's declared input/output descriptors.
type VariableSpec struct {
	Name   string   `json:"name"`
	Size   int      `json:"size"`
	Values []string `json:"values,omitempty"`
}

// DerivedSpec declares a synthetic state computed from an expression over
// the observation history.
type DerivedSpec struct {
	Name string `json:"name"`
	Expr string `json:"expr"`
}

// ObserveMessage carries one timestep of raw state values keyed by the
// domain's state names (not encoded indices).
type ObserveMessage struct {
	Step   int                `json:"step"`
	Values map[string]float64 `json:"values"`
}

type AckMessage struct {
	Status string `json:"status"`
}
