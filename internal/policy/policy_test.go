package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable(t *testing.T) {
	t.Run("Defaults cover all tiers", func(t *testing.T) {
		table := DefaultTable()
		for _, tier := range []Tier{TierFlexible, TierModerate, TierStrict} {
			rules, err := table.Rules(tier)
			require.NoError(t, err)
			assert.NotEmpty(t, rules)
		}
	})

	t.Run("Overrides are normalized descending", func(t *testing.T) {
		table, err := NewTable(map[Tier][]Rule{
			TierStrict: {
				{MinHoursBefore: 0, Percent: 0},
				{MinHoursBefore: 240, Percent: 75},
				{MinHoursBefore: 48, Percent: 10},
			},
		})
		require.NoError(t, err)

		rules, err := table.Rules(TierStrict)
		require.NoError(t, err)
		require.Len(t, rules, 3)
		assert.Equal(t, 240, rules[0].MinHoursBefore)
		assert.Equal(t, 48, rules[1].MinHoursBefore)
		assert.Equal(t, 0, rules[2].MinHoursBefore)
	})

	t.Run("Override leaves other tiers at defaults", func(t *testing.T) {
		table, err := NewTable(map[Tier][]Rule{
			TierFlexible: {{MinHoursBefore: 1, Percent: 100}},
		})
		require.NoError(t, err)

		moderate, err := table.Rules(TierModerate)
		require.NoError(t, err)
		assert.Equal(t, DefaultRules[TierModerate][0], moderate[0])
	})

	t.Run("Rejects unknown tier", func(t *testing.T) {
		_, err := NewTable(map[Tier][]Rule{Tier("GOLD"): {{MinHoursBefore: 1, Percent: 10}}})
		assert.Error(t, err)
	})

	t.Run("Rejects out-of-range percent", func(t *testing.T) {
		_, err := NewTable(map[Tier][]Rule{TierStrict: {{MinHoursBefore: 1, Percent: 150}}})
		assert.Error(t, err)
	})

	t.Run("Rejects negative threshold", func(t *testing.T) {
		_, err := NewTable(map[Tier][]Rule{TierStrict: {{MinHoursBefore: -1, Percent: 10}}})
		assert.Error(t, err)
	})
}
