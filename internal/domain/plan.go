package domain

// Feature identifiers used for plan gating. The capability list per plan is a
// closed mapping; unknown plans fall back to the starter list.
const (
	FeatureJobTracking       = "job_tracking"
	FeatureCandidatePipeline = "candidate_pipeline"
	FeatureDailySummary      = "daily_summary"
	FeatureOutreachDrafts    = "outreach_drafts"
	FeatureInterviewInvites  = "interview_invites"
	FeatureStalledDetection  = "stalled_detection"
	FeatureCandidateExport   = "candidate_export"
	FeatureTeamSeats         = "team_seats"
	FeatureReporting         = "reporting"
	FeatureCustomBranding    = "custom_branding"
)

// Plan represents a subscription tier.
type Plan struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	PriceUSD int      `json:"priceUsd"` // Monthly price in USD cents (4900 = $49)
	JobLimit int      `json:"jobLimit"` // Max concurrently active job orders
	Popular  bool     `json:"popular"`
	Features []string `json:"features"`
}

// AvailablePlans returns all plan tiers, cheapest first.
func AvailablePlans() []Plan {
	return []Plan{
		{
			ID:       "starter",
			Name:     "Solo Accelerator",
			PriceUSD: 4900,
			JobLimit: 1,
			Features: []string{
				FeatureJobTracking,
				FeatureCandidatePipeline,
				FeatureDailySummary,
			},
		},
		{
			ID:       "pro",
			Name:     "Boutique Office",
			PriceUSD: 14900,
			JobLimit: 10,
			Popular:  true,
			Features: []string{
				FeatureJobTracking,
				FeatureCandidatePipeline,
				FeatureDailySummary,
				FeatureOutreachDrafts,
				FeatureInterviewInvites,
				FeatureStalledDetection,
				FeatureCandidateExport,
			},
		},
		{
			ID:       "agency",
			Name:     "Velocity Scale",
			PriceUSD: 49900,
			JobLimit: 1000,
			Features: []string{
				FeatureJobTracking,
				FeatureCandidatePipeline,
				FeatureDailySummary,
				FeatureOutreachDrafts,
				FeatureInterviewInvites,
				FeatureStalledDetection,
				FeatureCandidateExport,
				FeatureTeamSeats,
				FeatureReporting,
				FeatureCustomBranding,
			},
		},
	}
}

// GetPlan returns the plan for a given ID, or the starter plan if not found.
func GetPlan(id string) Plan {
	for _, p := range AvailablePlans() {
		if p.ID == id {
			return p
		}
	}
	return AvailablePlans()[0]
}

// productPlanMap maps payment-provider product permalinks to plan IDs.
var productPlanMap = map[string]string{
	"recruiterops":        "pro",
	"recruiterops-solo":   "starter",
	"recruiterops-agency": "agency",
}

// PlanForProduct resolves a provider product permalink to a plan ID.
// Unrecognized permalinks default to the pro tier.
func PlanForProduct(permalink string) string {
	if plan, ok := productPlanMap[permalink]; ok {
		return plan
	}
	return "pro"
}
