package model

// Observation is one timestep of encoded state values, keyed by the
// stringified state index produced by schema.Encode.
type Observation map[string]float64

// Clone returns an independent copy of the observation.
func (o Observation) Clone() Observation {
	out := make(Observation, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// History is an ordered sequence of observations, most recent last.
type History []Observation

// Latest returns the most recent observation, or nil for empty history.
func (h History) Latest() Observation {
	if len(h) == 0 {
		return nil
	}
	return h[len(h)-1]
}

// At returns the observation lookback steps before the most recent one.
// Returns nil when the history is too short.
func (h History) At(lookback int) Observation {
	idx := len(h) - 1 - lookback
	if idx < 0 || lookback < 0 {
		return nil
	}
	return h[idx]
}

// Push appends an observation, dropping the oldest entries so at most
// capacity remain. A capacity <= 0 means unbounded.
func (h History) Push(o Observation, capacity int) History {
	h = append(h, o)
	if capacity > 0 && len(h) > capacity {
		h = h[len(h)-capacity:]
	}
	return h
}

// ActionLog records the encoded action key chosen at each past timestep,
// most recent last. Rules with a positive action lookback resolve against it.
type ActionLog []string

// At returns the action chosen lookback steps ago (lookback 1 = previous
// step). The second return is false when the log is too short.
func (l ActionLog) At(lookback int) (string, bool) {
	idx := len(l) - lookback
	if lookback < 1 || idx < 0 {
		return "", false
	}
	return l[idx], true
}

// Push appends a chosen action, dropping the oldest entries so at most
// capacity remain. A capacity <= 0 means unbounded.
func (l ActionLog) Push(action string, capacity int) ActionLog {
	l = append(l, action)
	if capacity > 0 && len(l) > capacity {
		l = l[len(l)-capacity:]
	}
	return l
}
