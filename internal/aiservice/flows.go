package aiservice

import (
	"context"
	"strings"

	"Lumi_V0.1/internal/models"
)

// Flows holds the two compiled prompts of the skin pipeline.
type Flows struct {
	analyze   *Prompt[AnalyzePhotoInput, models.SkinAnalysis]
	recommend *Prompt[RecommendProductsInput, models.ProductRecommendations]
}

// NewFlows compiles both prompts against model.
func NewFlows(model Model) *Flows {
	return &Flows{
		analyze: MustDefinePrompt[AnalyzePhotoInput, models.SkinAnalysis](model, PromptDef[AnalyzePhotoInput]{
			Name:     "analyzeUploadedSkinPhoto",
			System:   AnalysisSystemPrompt,
			Template: AnalysisPromptTemplate,
			Image:    func(in AnalyzePhotoInput) string { return in.PhotoDataURI },
			Output:   AnalysisSchema,
		}),
		recommend: MustDefinePrompt[RecommendProductsInput, models.ProductRecommendations](model, PromptDef[RecommendProductsInput]{
			Name:     "recommendPersonalizedProducts",
			System:   RecommendationSystemPrompt,
			Template: RecommendationPromptTemplate,
			Output:   RecommendationSchema,
		}),
	}
}

// AnalyzeSkinPhoto identifies skin type, conditions and concerns in a photo.
// It does not check that the result is non-empty; callers decide what is usable.
func (f *Flows) AnalyzeSkinPhoto(ctx context.Context, photoDataURI string) (models.SkinAnalysis, error) {
	return f.analyze.Run(ctx, AnalyzePhotoInput{PhotoDataURI: photoDataURI})
}

// RecommendProducts asks for products suited to skinType and the comma-separated concerns.
// An empty product list is a valid result.
func (f *Flows) RecommendProducts(ctx context.Context, skinType, skinConcerns string) (models.ProductRecommendations, error) {
	return f.recommend.Run(ctx, RecommendProductsInput{SkinType: skinType, SkinConcerns: skinConcerns})
}

// JoinConcerns renders a concerns list the way the recommendation prompt expects.
func JoinConcerns(concerns []string) string {
	return strings.Join(concerns, ", ")
}
