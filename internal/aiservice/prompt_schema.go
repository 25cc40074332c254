package aiservice

/* =================================================================================
							PROMPT INPUTS
=================================================================================*/

// AnalyzePhotoInput is the input of the analysis prompt.
type AnalyzePhotoInput struct {
	// PhotoDataURI must look like data:<mimetype>;base64,<encoded_data>.
	PhotoDataURI string `json:"photoDataUri" validate:"required,datauri"`
}

// RecommendProductsInput is the input of the recommendation prompt.
type RecommendProductsInput struct {
	// SkinType is e.g. oily, dry, combination.
	SkinType string `json:"skinType" validate:"required"`
	// SkinConcerns is a comma-separated list, e.g. "acne, wrinkles".
	SkinConcerns string `json:"skinConcerns"`
}

/* =================================================================================
						PROMPT ENGINEERING
=================================================================================*/

// AnalysisSystemPrompt defines the persona of the analysis stage.
const AnalysisSystemPrompt = `You are an AI skin analysis expert.
You MUST answer with the exact JSON structure requested. Do NOT add markdown or preamble.`

// AnalysisPromptTemplate is rendered with AnalyzePhotoInput; the photo is attached as inline data.
const AnalysisPromptTemplate = `Analyze the provided skin photo to determine the skin type, potential conditions, and specific concerns.

Photo: attached image.

Provide the skin type, a list of potential skin conditions, and a list of specific skin concerns.`

// RecommendationSystemPrompt defines the persona of the recommendation stage.
const RecommendationSystemPrompt = `You are a skincare product advisor.
You MUST answer with the exact JSON structure requested. Do NOT add markdown or preamble.`

// RecommendationPromptTemplate is rendered with RecommendProductsInput.
const RecommendationPromptTemplate = `Based on the user's skin type ({{.SkinType}}) and skin concerns ({{.SkinConcerns}}), recommend a list of skincare products tailored to their needs. Provide the product name, a brief description, the brand, and the specific benefits for the user. Respond in JSON format.`

/* =================================================================================
						OUTPUT SCHEMAS
=================================================================================*/

// AnalysisSchema is the shape of models.SkinAnalysis.
var AnalysisSchema = &Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		"skinType": {
			Type:        TypeString,
			Description: "The identified skin type (e.g., oily, dry, combination).",
		},
		"conditions": {
			Type:        TypeArray,
			Description: "A list of potential skin conditions identified in the photo.",
			Items:       &Schema{Type: TypeString},
		},
		"concerns": {
			Type:        TypeArray,
			Description: "A list of specific skin concerns identified (e.g., wrinkles, acne, dark spots).",
			Items:       &Schema{Type: TypeString},
		},
	},
	Required: []string{"skinType", "conditions", "concerns"},
}

// RecommendationSchema is the shape of models.ProductRecommendations.
var RecommendationSchema = &Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		"products": {
			Type:        TypeArray,
			Description: "A list of personalized skincare product recommendations.",
			Items: &Schema{
				Type: TypeObject,
				Properties: map[string]*Schema{
					"name":        {Type: TypeString, Description: "The name of the product."},
					"description": {Type: TypeString, Description: "A brief description of the product."},
					"brand":       {Type: TypeString, Description: "The brand of the product."},
					"benefits":    {Type: TypeString, Description: "The benefits of using the product for the user."},
				},
				Required: []string{"name", "description", "brand", "benefits"},
			},
		},
	},
	Required: []string{"products"},
}
