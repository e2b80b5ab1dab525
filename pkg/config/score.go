package config

import "sort"

// Overall score statuses.
const (
	StatusNotAvailable = "na"
	StatusBad          = "bad"
	StatusOK           = "ok"
	StatusGood         = "good"
)

// ScoreRule maps every score up to and including Max to Status.
type ScoreRule struct {
	Max    float64 `json:"max" yaml:"max"`
	Status string  `json:"status" yaml:"status"`
}

// ScoreRules converts a stored SEO status (0–10) into a status name.
type ScoreRules []ScoreRule

// DefaultScoreRules returns the standard thresholds.
func DefaultScoreRules() ScoreRules {
	return ScoreRules{
		{Max: 0, Status: StatusNotAvailable},
		{Max: 4, Status: StatusBad},
		{Max: 7, Status: StatusOK},
		{Max: 10, Status: StatusGood},
	}
}

// Status returns the status of the first rule whose Max is not below score.
// Scores above every rule take the highest rule.
func (r ScoreRules) Status(score float64) string {
	if len(r) == 0 {
		return StatusNotAvailable
	}
	rules := append(ScoreRules(nil), r...)
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Max < rules[j].Max })
	for _, rule := range rules {
		if score <= rule.Max {
			return rule.Status
		}
	}
	return rules[len(rules)-1].Status
}
