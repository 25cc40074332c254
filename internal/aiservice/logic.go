package aiservice

import (
	"context"
	"fmt"

	"Lumi_V0.1/internal/models"
	"github.com/rs/zerolog/log"
)

// User-facing messages of the analysis action.
const (
	MsgNoPhoto        = "No photo data provided."
	MsgAnalysisFailed = "Failed to analyze skin from the image."
	MsgUnknown        = "An unknown error occurred during the analysis."
)

// ErrorKind classifies why the action failed.
type ErrorKind int

const (
	// KindNone means the action succeeded.
	KindNone ErrorKind = iota
	// KindValidation is bad caller input, detected before any model call.
	KindValidation
	// KindUpstream is a model failure or unusable model output.
	KindUpstream
	// KindUnknown is anything that did not surface as an error value.
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindUpstream:
		return "upstream"
	case KindUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ActionResult carries exactly one of Data or Error.
type ActionResult struct {
	Data  *models.AnalysisResult `json:"data"`
	Error *string                `json:"error"`
	Kind  ErrorKind              `json:"-"`
}

// OK reports whether the action produced data.
func (r ActionResult) OK() bool { return r.Data != nil }

// Message returns the error message, or "" on success.
func (r ActionResult) Message() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}

func failed(kind ErrorKind, msg string) ActionResult {
	return ActionResult{Error: &msg, Kind: kind}
}

// SkinStages is the two-stage model pipeline the action drives.
type SkinStages interface {
	AnalyzeSkinPhoto(ctx context.Context, photoDataURI string) (models.SkinAnalysis, error)
	RecommendProducts(ctx context.Context, skinType, skinConcerns string) (models.ProductRecommendations, error)
}

// Analyzer runs analysis -> recommendation and collapses failures into an ActionResult.
type Analyzer struct {
	stages SkinStages
}

// NewAnalyzer wraps stages.
func NewAnalyzer(stages SkinStages) *Analyzer {
	return &Analyzer{stages: stages}
}

// AnalyzeSkinAndRecommendProducts is the only entry point the HTTP layer uses.
// Stages run strictly in sequence; there are no retries or partial results.
func (a *Analyzer) AnalyzeSkinAndRecommendProducts(ctx context.Context, photoDataURI string) (result ActionResult) {
	logger := log.Ctx(ctx)

	// 1. Input check, no network call
	if photoDataURI == "" {
		return failed(KindValidation, MsgNoPhoto)
	}

	// Anything that escapes the steps below lands here.
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		logger.Error().Interface("panic", r).Msg("Skin analysis action panicked")
		if err, ok := r.(error); ok && err.Error() != "" {
			result = failed(KindUnknown, err.Error())
			return
		}
		result = failed(KindUnknown, MsgUnknown)
	}()

	// 2. Analysis. A thrown error and incomplete output are reported the same way.
	analysis, err := a.stages.AnalyzeSkinPhoto(ctx, photoDataURI)
	if err != nil {
		logger.Error().Err(err).Msg("Skin analysis stage failed")
		return failed(KindUpstream, MsgAnalysisFailed)
	}
	if analysis.SkinType == "" || len(analysis.Concerns) == 0 {
		logger.Warn().
			Str("skin_type", analysis.SkinType).
			Int("concerns", len(analysis.Concerns)).
			Msg("Skin analysis returned incomplete result")
		return failed(KindUpstream, MsgAnalysisFailed)
	}

	// 3. Recommendation
	recommendations, err := a.stages.RecommendProducts(ctx, analysis.SkinType, JoinConcerns(analysis.Concerns))
	if err != nil {
		logger.Error().Err(err).Msg("Product recommendation stage failed")
		return failed(KindUpstream, errorMessage(err))
	}

	// 4. Success
	logger.Info().
		Str("skin_type", analysis.SkinType).
		Int("products", len(recommendations.Products)).
		Msg("Skin analysis completed")

	return ActionResult{
		Data: &models.AnalysisResult{
			Analysis:        analysis,
			Recommendations: recommendations,
		},
		Kind: KindNone,
	}
}

// errorMessage surfaces err's own text, falling back to the generic message.
func errorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return MsgUnknown
	}
	return err.Error()
}
