package models

/* =================================================================================
							SKIN ANALYSIS DOMAIN TYPES
=================================================================================*/

// SkinAnalysis is the structured result of one photo analysis.
// It is embedded verbatim into every ProgressEntry.
type SkinAnalysis struct {
	SkinType   string   `json:"skinType"`
	Conditions []string `json:"conditions"`
	Concerns   []string `json:"concerns"`
}

// Product is a single recommended skincare product.
// Two products with the same Name are the same favorite.
type Product struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Brand       string `json:"brand"`
	Benefits    string `json:"benefits"`
}

// ProductRecommendations is the output of the recommendation stage.
type ProductRecommendations struct {
	Products []Product `json:"products"`
}

// ProgressEntry is one persisted record of a completed analysis.
type ProgressEntry struct {
	ID           string       `json:"id"`   // creation timestamp, sortable
	Date         string       `json:"date"` // localized creation date
	PhotoDataURI string       `json:"photoDataUri"`
	Analysis     SkinAnalysis `json:"analysis"`
}

// NewProgressEntry is a ProgressEntry before the store assigns ID and Date.
type NewProgressEntry struct {
	PhotoDataURI string       `json:"photoDataUri" validate:"required"`
	Analysis     SkinAnalysis `json:"analysis"`
}

// AnalysisResult pairs an analysis with the recommendations derived from it.
type AnalysisResult struct {
	Analysis        SkinAnalysis           `json:"analysis"`
	Recommendations ProductRecommendations `json:"recommendations"`
}
