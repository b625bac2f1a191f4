package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrowthRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		total       int64
		recent      int64
		windowYears int
		want        float64
	}{
		{
			// Older pace (90-30)/3 = 20/yr, recent pace 30/2 = 15/yr.
			name:  "declining bucket",
			total: 90, recent: 30, windowYears: 5,
			want: (15.0 - 20.0) / 20.0,
		},
		{
			// Older pace 10/yr, recent pace 25/yr.
			name:  "growing bucket",
			total: 80, recent: 50, windowYears: 5,
			want: (25.0 - 10.0) / 10.0,
		},
		{name: "window too short", total: 100, recent: 50, windowYears: 2, want: 0},
		{name: "all activity recent", total: 40, recent: 40, windowYears: 5, want: 0},
		{name: "empty bucket", total: 0, recent: 0, windowYears: 5, want: 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, growthRate(tt.total, tt.recent, tt.windowYears), 1e-12)
		})
	}
}

func TestDeclineRatio(t *testing.T) {
	t.Parallel()

	// Historical pace 50/5 = 10/yr, recent pace 4/2 = 2/yr.
	assert.InDelta(t, 0.8, declineRatio(50, 4), 1e-12)
	// Growth clamps to zero.
	assert.Zero(t, declineRatio(10, 20))
	// No historical activity scores zero, never divides by zero.
	assert.Zero(t, declineRatio(0, 10))
	// Complete abandonment.
	assert.InDelta(t, 1.0, declineRatio(25, 0), 1e-12)
}

func TestImpactFactor(t *testing.T) {
	t.Parallel()

	assert.Zero(t, impactFactor(0))
	assert.InDelta(t, 0.4, impactFactor(2), 1e-12)
	assert.InDelta(t, 1.0, impactFactor(5), 1e-12)
	assert.InDelta(t, 1.0, impactFactor(12), 1e-12)
}

func TestClassifyOpportunity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		decline    float64
		highImpact int64
		recent     int64
		want       string
	}{
		{name: "steep decline with foundations", decline: 0.8, highImpact: 3, recent: 10, want: OpportunityAbandonedGoldmine},
		{name: "steep decline few foundations", decline: 0.8, highImpact: 2, recent: 2, want: OpportunityDormant},
		{name: "moderate decline quiet field", decline: 0.6, highImpact: 1, recent: 3, want: OpportunityDormant},
		{name: "moderate decline busy field", decline: 0.6, highImpact: 1, recent: 20, want: OpportunityEmergingGap},
		{name: "many foundations mild decline", decline: 0.4, highImpact: 6, recent: 20, want: OpportunityConsolidation},
		{name: "mild decline", decline: 0.35, highImpact: 1, recent: 20, want: OpportunityEmergingGap},
		{name: "barely any decline", decline: 0.1, highImpact: 9, recent: 50, want: OpportunityMinorGap},
		{name: "zero everything", decline: 0, highImpact: 0, recent: 0, want: OpportunityMinorGap},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, classifyOpportunity(tt.decline, tt.highImpact, tt.recent))
		})
	}
}

func TestGapScore(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.6, gapScore(1, 0), 1e-12)
	assert.InDelta(t, 0.4, gapScore(0, 1), 1e-12)
	assert.InDelta(t, 1.0, gapScore(1, 1), 1e-12)
	assert.InDelta(t, 0.6*0.5+0.4*0.25, gapScore(0.5, 0.25), 1e-12)
}

func TestCrossDomainScores(t *testing.T) {
	t.Parallel()

	t.Run("existing combination", func(t *testing.T) {
		t.Parallel()
		// Combo citations double the candidate's standalone average.
		assert.InDelta(t, 1.0, existingComboScore(20, 10), 1e-12)
		assert.InDelta(t, 0.25, existingComboScore(5, 10), 1e-12)
		assert.Zero(t, existingComboScore(5, 0))
	})

	t.Run("untapped combination", func(t *testing.T) {
		t.Parallel()
		assert.InDelta(t, 0.55, untappedComboScore(50), 1e-12)
		assert.InDelta(t, 1.0, untappedComboScore(500), 1e-12)
		assert.InDelta(t, 1.0, untappedComboScore(2000), 1e-12)
	})
}

func TestMomentumAndTrend(t *testing.T) {
	t.Parallel()

	// Section holds 20% of total but 40% of recent filings.
	m := momentum(200, 1000, 80, 200)
	assert.InDelta(t, 2.0, m, 1e-12)
	assert.Equal(t, "growing", trendLabel(m))

	// Matching shares sit in the stable band.
	assert.Equal(t, "stable", trendLabel(momentum(200, 1000, 40, 200)))

	assert.Equal(t, "declining", trendLabel(momentum(200, 1000, 10, 200)))
	assert.Zero(t, momentum(0, 1000, 0, 200))
	assert.Zero(t, momentum(200, 0, 40, 200))
}
