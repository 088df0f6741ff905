package ipc

// Outbound reply types — must stay in sync with harness-side decoders.

// ScoresMessage is the reply to an observation: continuous per-action
// scores plus the chosen (argmax) action, keyed by action name.
type ScoresMessage struct {
	Step   int                `json:"step"`
	Scores map[string]float64 `json:"scores"`
	Chosen string             `json:"chosen"`
}

// RenderedMessage carries the bound policy's explainability text.
type RenderedMessage struct {
	Text string `json:"text"`
}
