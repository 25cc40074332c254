package aiservice

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"Lumi_V0.1/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStages records what the action asked for.
type fakeStages struct {
	analysis     models.SkinAnalysis
	analysisErr  error
	products     models.ProductRecommendations
	recommendErr error
	panicWith    any

	analyzeCalls   int
	recommendCalls int
	gotSkinType    string
	gotConcerns    string
}

func (f *fakeStages) AnalyzeSkinPhoto(_ context.Context, _ string) (models.SkinAnalysis, error) {
	f.analyzeCalls++
	return f.analysis, f.analysisErr
}

func (f *fakeStages) RecommendProducts(_ context.Context, skinType, concerns string) (models.ProductRecommendations, error) {
	f.recommendCalls++
	f.gotSkinType = skinType
	f.gotConcerns = concerns
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	return f.products, f.recommendErr
}

var oily = models.SkinAnalysis{
	SkinType:   "oily",
	Conditions: []string{"acne"},
	Concerns:   []string{"large pores", "shine"},
}

func TestAnalyzer_EmptyPhoto(t *testing.T) {
	stages := &fakeStages{}
	res := NewAnalyzer(stages).AnalyzeSkinAndRecommendProducts(context.Background(), "")

	assert.Nil(t, res.Data)
	assert.Equal(t, MsgNoPhoto, res.Message())
	assert.Equal(t, KindValidation, res.Kind)
	assert.Zero(t, stages.analyzeCalls)
	assert.Zero(t, stages.recommendCalls)
}

func TestAnalyzer_Success(t *testing.T) {
	products := models.ProductRecommendations{Products: []models.Product{{Name: "Clay Mask", Brand: "Acme"}}}
	stages := &fakeStages{analysis: oily, products: products}

	res := NewAnalyzer(stages).AnalyzeSkinAndRecommendProducts(context.Background(), testPhoto)

	require.True(t, res.OK())
	assert.Nil(t, res.Error)
	assert.Equal(t, KindNone, res.Kind)
	assert.Equal(t, oily, res.Data.Analysis)
	assert.Equal(t, products, res.Data.Recommendations)

	assert.Equal(t, "oily", stages.gotSkinType)
	assert.Equal(t, "large pores, shine", stages.gotConcerns)
}

func TestAnalyzer_AnalysisFailures(t *testing.T) {
	testCases := []struct {
		name   string
		stages *fakeStages
	}{
		{name: "stage error", stages: &fakeStages{analysisErr: errors.New("upstream 500")}},
		{name: "empty skin type", stages: &fakeStages{analysis: models.SkinAnalysis{Concerns: []string{"acne"}}}},
		{name: "empty concerns", stages: &fakeStages{analysis: models.SkinAnalysis{SkinType: "dry", Concerns: []string{}}}},
		{name: "nil concerns", stages: &fakeStages{analysis: models.SkinAnalysis{SkinType: "dry"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := NewAnalyzer(tc.stages).AnalyzeSkinAndRecommendProducts(context.Background(), testPhoto)

			assert.Nil(t, res.Data)
			assert.Equal(t, MsgAnalysisFailed, res.Message())
			assert.Equal(t, KindUpstream, res.Kind)
			assert.Zero(t, tc.stages.recommendCalls)
		})
	}
}

func TestAnalyzer_RecommendationErrorIsSurfaced(t *testing.T) {
	stages := &fakeStages{analysis: oily, recommendErr: errors.New("recommendPersonalizedProducts: quota exceeded")}

	res := NewAnalyzer(stages).AnalyzeSkinAndRecommendProducts(context.Background(), testPhoto)

	assert.Nil(t, res.Data)
	assert.Equal(t, "recommendPersonalizedProducts: quota exceeded", res.Message())
	assert.Equal(t, KindUpstream, res.Kind)
}

func TestAnalyzer_RecommendationEmptyErrorMessage(t *testing.T) {
	stages := &fakeStages{analysis: oily, recommendErr: errors.New("")}

	res := NewAnalyzer(stages).AnalyzeSkinAndRecommendProducts(context.Background(), testPhoto)

	assert.Equal(t, MsgUnknown, res.Message())
}

func TestAnalyzer_Panics(t *testing.T) {
	testCases := []struct {
		name    string
		value   any
		wantMsg string
	}{
		{name: "error value", value: errors.New("index out of range"), wantMsg: "index out of range"},
		{name: "non-error value", value: 42, wantMsg: MsgUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stages := &fakeStages{analysis: oily, panicWith: tc.value}

			res := NewAnalyzer(stages).AnalyzeSkinAndRecommendProducts(context.Background(), testPhoto)

			assert.Nil(t, res.Data)
			assert.Equal(t, tc.wantMsg, res.Message())
			assert.Equal(t, KindUnknown, res.Kind)
		})
	}
}

func TestAnalyzer_ResultJSONShape(t *testing.T) {
	res := NewAnalyzer(&fakeStages{}).AnalyzeSkinAndRecommendProducts(context.Background(), "")

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":null,"error":"No photo data provided."}`, string(b))
}

// The whole pipeline against one fake model: the recommendation prompt must
// carry the analysed skin type and the joined concerns.
func TestAnalyzer_WithFlows(t *testing.T) {
	model := &recordingModel{answers: []string{
		`{"skinType":"oily","conditions":["acne"],"concerns":["large pores","shine"]}`,
		`{"products":[{"name":"Niacinamide Serum","description":"Pore refining","brand":"Acme","benefits":"Less shine"}]}`,
	}}

	res := NewAnalyzer(NewFlows(model)).AnalyzeSkinAndRecommendProducts(context.Background(), "data:image/png;base64,iVBORw0KGgo=")

	require.True(t, res.OK(), res.Message())
	require.Len(t, model.calls, 2)
	assert.Contains(t, model.calls[1].Prompt, "skin type (oily)")
	assert.Contains(t, model.calls[1].Prompt, "skin concerns (large pores, shine)")
	assert.Equal(t, "Niacinamide Serum", res.Data.Recommendations.Products[0].Name)
}

func TestAnalyzer_WithFlows_IncompleteAnalysisSkipsRecommendation(t *testing.T) {
	model := &recordingModel{answers: []string{
		`{"skinType":"","conditions":[],"concerns":[]}`,
		`{"products":[]}`,
	}}

	res := NewAnalyzer(NewFlows(model)).AnalyzeSkinAndRecommendProducts(context.Background(), testPhoto)

	assert.Equal(t, MsgAnalysisFailed, res.Message())
	assert.Len(t, model.calls, 1)
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "upstream", KindUpstream.String())
	assert.Equal(t, "unknown", KindUnknown.String())
	assert.Equal(t, "ErrorKind(9)", ErrorKind(9).String())
}
