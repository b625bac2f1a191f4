package analytics

// Opportunity labels assigned to white-space buckets, ordered from the
// strongest signal to the weakest.
const (
	OpportunityAbandonedGoldmine = "abandoned_goldmine"
	OpportunityDormant           = "dormant"
	OpportunityConsolidation     = "consolidation"
	OpportunityEmergingGap       = "emerging_gap"
	OpportunityMinorGap          = "minor_gap"
)

// Cross-domain combination statuses.
const (
	ComboEmerging = "emerging"
	ComboUntapped = "untapped"
)

const (
	// highImpactCitations is the cited-by count at which a historical patent
	// counts as high impact.
	highImpactCitations = 10

	// declineWeight and impactWeight blend the two gap-score components.
	declineWeight = 0.6
	impactWeight  = 0.4

	// historicalYears and recentYears are the annualization divisors for the
	// white-space windows.  They intentionally differ from the coverage
	// growth-rate divisors; both sets are tuned heuristics.
	historicalYears = 5.0
	recentYears     = 2.0
)

// growthRate is the coverage heuristic: recent activity annualized over two
// years versus older activity annualized over the remaining window.  Windows
// of two years or less, and buckets with no older activity, report zero.
func growthRate(total, recent int64, windowYears int) float64 {
	if windowYears <= 2 {
		return 0
	}
	olderAnnualized := float64(total-recent) / float64(windowYears-2)
	if olderAnnualized <= 0 {
		return 0
	}
	recentAnnualized := float64(recent) / 2.0
	return (recentAnnualized - olderAnnualized) / olderAnnualized
}

// declineRatio measures how far a bucket's recent filing pace has fallen
// below its historical pace, clamped at zero so growth never scores.
func declineRatio(historical, recent int64) float64 {
	historicalAnnualized := float64(historical) / historicalYears
	if historicalAnnualized <= 0 {
		return 0
	}
	recentAnnualized := float64(recent) / recentYears
	ratio := (historicalAnnualized - recentAnnualized) / historicalAnnualized
	if ratio < 0 {
		return 0
	}
	return ratio
}

// impactFactor saturates at five high-impact patents.
func impactFactor(highImpact int64) float64 {
	f := float64(highImpact) / 5.0
	if f > 1 {
		return 1
	}
	return f
}

// gapScore blends decline and impact into the white-space ranking score.
func gapScore(decline, impact float64) float64 {
	return declineWeight*decline + impactWeight*impact
}

// classifyOpportunity assigns exactly one label per bucket; the first
// matching rule wins.
func classifyOpportunity(decline float64, highImpact, recent int64) string {
	switch {
	case decline > 0.7 && highImpact >= 3:
		return OpportunityAbandonedGoldmine
	case decline > 0.5 && recent < 5:
		return OpportunityDormant
	case highImpact >= 5 && decline > 0.3:
		return OpportunityConsolidation
	case decline > 0.3:
		return OpportunityEmergingGap
	default:
		return OpportunityMinorGap
	}
}

// existingComboScore scores a candidate prefix that already co-occurs with
// the source: combinations outperforming the candidate's standalone citation
// average score higher.  Candidates with no standalone citations score zero.
func existingComboScore(comboAvgCitations, candidateAvgCitations float64) float64 {
	if candidateAvgCitations <= 0 {
		return 0
	}
	score := (comboAvgCitations / candidateAvgCitations) * 0.5
	if score > 1 {
		return 1
	}
	return score
}

// untappedComboScore scores a candidate prefix that never co-occurs with the
// source; sheer standalone activity pushes the score above the 0.5 floor.
func untappedComboScore(candidateCount int64) float64 {
	score := 0.5 + float64(candidateCount)/1000.0
	if score > 1 {
		return 1
	}
	return score
}

// momentum compares a section's share of recent activity against its share
// of total activity.  Sections with no total share report zero.
func momentum(count, totalCount, recent, totalRecent int64) float64 {
	if totalCount == 0 || totalRecent == 0 || count == 0 {
		return 0
	}
	share := float64(count) / float64(totalCount)
	recentShare := float64(recent) / float64(totalRecent)
	return recentShare / share
}

// trendLabel buckets momentum into growing, stable, or declining.
func trendLabel(m float64) string {
	switch {
	case m > 1.1:
		return "growing"
	case m < 0.9:
		return "declining"
	default:
		return "stable"
	}
}
