package policy

import (
	"fmt"
	"sort"
)

// Tier names a cancellation-refund schedule.
type Tier string

const (
	TierFlexible Tier = "FLEXIBLE"
	TierModerate Tier = "MODERATE"
	TierStrict   Tier = "STRICT"
)

// Rule grants a refund percentage when the cancellation happens at least
// MinHoursBefore hours ahead of the event.
type Rule struct {
	MinHoursBefore int `yaml:"min_hours_before"`
	Percent        int `yaml:"percent"`
}

// Table maps tiers to their ordered rule lists. Rules are kept sorted by
// threshold descending so the largest satisfied threshold wins on lookup.
type Table struct {
	rules map[Tier][]Rule
}

// DefaultRules is the built-in schedule, overridable via configuration.
var DefaultRules = map[Tier][]Rule{
	TierFlexible: {
		{MinHoursBefore: 24, Percent: 100},
		{MinHoursBefore: 12, Percent: 50},
		{MinHoursBefore: 0, Percent: 0},
	},
	TierModerate: {
		{MinHoursBefore: 72, Percent: 100},
		{MinHoursBefore: 24, Percent: 50},
		{MinHoursBefore: 0, Percent: 0},
	},
	TierStrict: {
		{MinHoursBefore: 168, Percent: 50},
		{MinHoursBefore: 72, Percent: 25},
		{MinHoursBefore: 0, Percent: 0},
	},
}

// NewTable builds a table from per-tier rule lists, validating percentages
// and normalizing rule order. Tiers absent from overrides fall back to the
// default schedule.
func NewTable(overrides map[Tier][]Rule) (*Table, error) {
	t := &Table{rules: make(map[Tier][]Rule)}
	for tier, rules := range DefaultRules {
		t.rules[tier] = normalize(rules)
	}
	for tier, rules := range overrides {
		if _, ok := DefaultRules[tier]; !ok {
			return nil, fmt.Errorf("unknown policy tier %q", tier)
		}
		if len(rules) == 0 {
			continue
		}
		for _, r := range rules {
			if r.Percent < 0 || r.Percent > 100 {
				return nil, fmt.Errorf("tier %s: refund percent %d out of range", tier, r.Percent)
			}
			if r.MinHoursBefore < 0 {
				return nil, fmt.Errorf("tier %s: negative hours threshold %d", tier, r.MinHoursBefore)
			}
		}
		t.rules[tier] = normalize(rules)
	}
	return t, nil
}

// DefaultTable returns a table holding only the built-in schedule.
func DefaultTable() *Table {
	t, _ := NewTable(nil)
	return t
}

// Rules returns the normalized rule list for a tier.
func (t *Table) Rules(tier Tier) ([]Rule, error) {
	rules, ok := t.rules[tier]
	if !ok {
		return nil, fmt.Errorf("unknown policy tier %q", tier)
	}
	return rules, nil
}

func normalize(rules []Rule) []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MinHoursBefore > out[j].MinHoursBefore
	})
	return out
}
