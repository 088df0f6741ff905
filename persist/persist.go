// Package persist saves and restores rule sets as JSON under the fixed
// field-name contract that previously evolved policies were written with.
// Storage mechanisms beyond the local filesystem belong to outside
// collaborators; this package only owns the encoding.
package persist

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/evoframe/rulekit/rules"
)

// Version tags every persisted rule set so a loader can refuse records it
// does not understand.
const Version = "RuleSet-1.0"

// envelope wraps the rule set with its format version on disk.
type envelope struct {
	Version string         `json:"version"`
	RuleSet *rules.RuleSet `json:"rule_set"`
}

// Marshal encodes a rule set, fixed field names and all.
func Marshal(rs *rules.RuleSet) ([]byte, error) {
	raw, err := json.MarshalIndent(envelope{Version: Version, RuleSet: rs}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal rule set: %w", err)
	}
	return raw, nil
}

// Unmarshal decodes and validates a persisted rule set. Unknown versions
// and structurally invalid sets are rejected before anything evaluates.
func Unmarshal(raw []byte) (*rules.RuleSet, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal rule set: %w", err)
	}
	if env.Version != Version {
		return nil, fmt.Errorf("unmarshal rule set: version %q, want %q", env.Version, Version)
	}
	if env.RuleSet == nil {
		return nil, fmt.Errorf("unmarshal rule set: empty record")
	}
	if err := env.RuleSet.Validate(); err != nil {
		return nil, fmt.Errorf("unmarshal rule set: %w", err)
	}
	return env.RuleSet, nil
}

// Save writes the rule set to path, replacing any previous file.
func Save(rs *rules.RuleSet, path string) error {
	raw, err := Marshal(rs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("save rule set: %w", err)
	}
	return nil
}

// Load reads a rule set from path.
func Load(path string) (*rules.RuleSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load rule set: %w", err)
	}
	return Unmarshal(raw)
}
