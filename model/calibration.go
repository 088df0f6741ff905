package model

// MinMax is the calibration range of a single state, used to rescale
// normalized literal thresholds into the state's native units.
type MinMax struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Rescale maps a normalized value in [0,1] into the range.
func (m MinMax) Rescale(normalized float64) float64 {
	return m.Min + normalized*(m.Max-m.Min)
}

// Calibration maps a state key to its known min/max range.
type Calibration map[string]MinMax

// Clone returns an independent copy so callers' originals are never aliased.
func (c Calibration) Clone() Calibration {
	out := make(Calibration, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Widen grows the ranges to cover the values in the observation, creating a
// degenerate [v,v] range for states not yet calibrated. Evaluation calls
// this as data streams in so thresholds stay meaningful on drifting inputs.
func (c Calibration) Widen(o Observation) {
	for key, value := range o {
		mm, ok := c[key]
		if !ok {
			c[key] = MinMax{Min: value, Max: value}
			continue
		}
		if value < mm.Min {
			mm.Min = value
		}
		if value > mm.Max {
			mm.Max = value
		}
		c[key] = mm
	}
}
