package domain

// CredibilityFactors holds a vendor's raw trust signals by name
type CredibilityFactors map[string]float64

const (
	FactorRatingsScore      = "ratingsScore"
	FactorReviewCount       = "reviewCount"
	FactorRecency           = "recency"
	FactorVerifiedID        = "verifiedId"
	FactorVerifiedDocuments = "verifiedDocuments"
)

// Factor weights
const (
	weightRatings       = 0.5
	weightReviewCount   = 0.3
	weightRecency       = 0.2
	weightVerifiedID    = 2.0
	weightDocument      = 1.0
	documentFactorScale = 0.5
)

// Score combines the factors into a single credibility score.
// verifiedId counts when greater than zero; verifiedDocuments is a document count.
func (f CredibilityFactors) Score() float64 {
	score := weightRatings*f[FactorRatingsScore] +
		weightReviewCount*f[FactorReviewCount] +
		weightRecency*f[FactorRecency]
	if f[FactorVerifiedID] > 0 {
		score += weightVerifiedID * 1.0
	}
	score += f[FactorVerifiedDocuments] * weightDocument * documentFactorScale
	return score
}

// WithRating returns a copy with the rating factors replaced
func (f CredibilityFactors) WithRating(average float64, count int) CredibilityFactors {
	out := make(CredibilityFactors, len(f)+2)
	for k, v := range f {
		out[k] = v
	}
	out[FactorRatingsScore] = average
	out[FactorReviewCount] = float64(count)
	return out
}
