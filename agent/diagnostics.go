package agent

import (
	"log/slog"

	"github.com/evoframe/rulekit/rules"
)

// Diagnostics thresholds. Reporting is throttled so a chatty harness
// doesn't drown the log.
const (
	defaultStreakThreshold = 25
	reportInterval         = 100
	dominanceShare         = 0.9
)

// diagnostics watches evaluation telemetry for the "why is the policy doing
// nothing?" class of questions: long default-action streaks, one rule
// drowning out the rest, and how often they occur.
type diagnostics struct {
	defaultStreak   int
	streakReported  bool
	lastReportStep  int
	hitsAtLastCheck []int
}

// observe ingests one evaluation step. usedDefault is whether the step fell
// through to the default action.
func (d *diagnostics) observe(step int, rs *rules.RuleSet, usedDefault bool) {
	if usedDefault {
		d.defaultStreak++
		if d.defaultStreak >= defaultStreakThreshold && !d.streakReported {
			d.streakReported = true
			slog.Warn("default-action streak",
				"streak", d.defaultStreak,
				"step", step,
				"rules", len(rs.Rules),
			)
		}
	} else {
		d.defaultStreak = 0
		d.streakReported = false
	}

	if step-d.lastReportStep < reportInterval {
		return
	}
	d.lastReportStep = step
	d.report(step, rs)
}

// report fires every reportInterval steps: rule-hit distribution since the
// last report, flagging a single rule carrying nearly all applications.
func (d *diagnostics) report(step int, rs *rules.RuleSet) {
	hits := make([]int, len(rs.Rules))
	total := 0
	for i, r := range rs.Rules {
		h := r.TimesApplied
		if i < len(d.hitsAtLastCheck) {
			h -= d.hitsAtLastCheck[i]
		}
		hits[i] = h
		total += h
	}

	topRule, topHits := -1, 0
	for i, h := range hits {
		if h > topHits {
			topRule, topHits = i, h
		}
	}

	if total > 0 && float64(topHits)/float64(total) >= dominanceShare {
		slog.Warn("rule dominance",
			"rule", topRule,
			"hits", topHits,
			"total", total,
			"step", step,
		)
	}

	slog.Info("evaluation diagnostics",
		"step", step,
		"ruleHits", total,
		"defaults", rs.TimesApplied,
		"calibratedStates", len(rs.MinMaxes),
	)

	d.hitsAtLastCheck = d.hitsAtLastCheck[:0]
	for _, r := range rs.Rules {
		d.hitsAtLastCheck = append(d.hitsAtLastCheck, r.TimesApplied)
	}
}
