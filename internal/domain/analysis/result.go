package analysis

// Result is the validated, typed outcome of one analysis call.
type Result interface {
	AnalysisKind() Kind
}

// ProductSuggestion is one recommended makeup product.
type ProductSuggestion struct {
	Category    string `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
}

// FaceResult is the face-kind analysis outcome.
type FaceResult struct {
	FaceAnalysis       string              `json:"faceAnalysis"`
	ProductSuggestions []ProductSuggestion `json:"productSuggestions"`
	ApplicationTips    []string            `json:"applicationTips"`
}

func (FaceResult) AnalysisKind() Kind { return KindFace }

// StyleRecommendation is one recommended clothing item or accessory.
type StyleRecommendation struct {
	ItemType         string `json:"itemType"`
	ItemDescription  string `json:"itemDescription"`
	StylingRationale string `json:"stylingRationale"`
	PotentialColors  string `json:"potentialColors,omitempty"`
	ExampleURL       string `json:"exampleUrl,omitempty"`
}

// BodyResult is the body-kind analysis outcome. BodyAnalysisSummary
// carries the whole-body visibility statement verbatim from the model.
type BodyResult struct {
	BodyAnalysisSummary  string                `json:"bodyAnalysisSummary"`
	StyleRecommendations []StyleRecommendation `json:"styleRecommendations"`
	GeneralStylingTips   []string              `json:"generalStylingTips"`
}

func (BodyResult) AnalysisKind() Kind { return KindBody }
