package analysis

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// Parse turns raw model output into a typed result. Steps: strip
// incidental markdown fences, structural JSON parse, then per-kind
// schema validation with field-specific errors.
func Parse(raw string, kind Kind) (Result, error) {
	if _, err := ProfileFor(kind); err != nil {
		return nil, err
	}

	clean := StripFences(raw)

	var payload map[string]interface{}
	if err := sonic.UnmarshalString(clean, &payload); err != nil {
		return nil, &ParseError{RawText: raw, Cause: err}
	}

	switch kind {
	case KindFace:
		return parseFace(payload)
	default:
		return parseBody(payload)
	}
}

// StripFences removes markdown code-fence markers, with or without a
// language tag. Providers are told not to emit them; some do anyway.
func StripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.ReplaceAll(trimmed, "```", "")
	return strings.TrimSpace(trimmed)
}

func parseFace(payload map[string]interface{}) (Result, error) {
	analysis, err := requireString(payload, "faceAnalysis")
	if err != nil {
		return nil, err
	}
	suggestions, err := requireArray(payload, "productSuggestions")
	if err != nil {
		return nil, err
	}
	tips, err := requireArray(payload, "applicationTips")
	if err != nil {
		return nil, err
	}

	result := FaceResult{
		FaceAnalysis:       analysis,
		ProductSuggestions: make([]ProductSuggestion, 0, len(suggestions)),
		ApplicationTips:    stringItems(tips),
	}

	for _, item := range suggestions {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		result.ProductSuggestions = append(result.ProductSuggestions, ProductSuggestion{
			Category:    optionalString(entry, "category"),
			Name:        optionalString(entry, "name"),
			Description: optionalString(entry, "description"),
			URL:         optionalString(entry, "url"),
		})
	}

	return result, nil
}

func parseBody(payload map[string]interface{}) (Result, error) {
	summary, err := requireString(payload, "bodyAnalysisSummary")
	if err != nil {
		return nil, err
	}
	recommendations, err := requireArray(payload, "styleRecommendations")
	if err != nil {
		return nil, err
	}
	tips, err := requireArray(payload, "generalStylingTips")
	if err != nil {
		return nil, err
	}

	result := BodyResult{
		BodyAnalysisSummary:  summary,
		StyleRecommendations: make([]StyleRecommendation, 0, len(recommendations)),
		GeneralStylingTips:   stringItems(tips),
	}

	for _, item := range recommendations {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		result.StyleRecommendations = append(result.StyleRecommendations, StyleRecommendation{
			ItemType:         optionalString(entry, "itemType"),
			ItemDescription:  optionalString(entry, "itemDescription"),
			StylingRationale: optionalString(entry, "stylingRationale"),
			PotentialColors:  flexibleString(entry["potentialColors"]),
			ExampleURL:       optionalString(entry, "exampleUrl"),
		})
	}

	return result, nil
}

func requireString(payload map[string]interface{}, field string) (string, error) {
	value, ok := payload[field]
	if !ok || value == nil {
		return "", &SchemaError{Field: field, Reason: "is missing"}
	}
	str, ok := value.(string)
	if !ok {
		return "", &SchemaError{Field: field, Reason: "is not a string"}
	}
	if strings.TrimSpace(str) == "" {
		return "", &SchemaError{Field: field, Reason: "is empty"}
	}
	return str, nil
}

func requireArray(payload map[string]interface{}, field string) ([]interface{}, error) {
	value, ok := payload[field]
	if !ok || value == nil {
		return nil, &SchemaError{Field: field, Reason: "is missing"}
	}
	arr, ok := value.([]interface{})
	if !ok {
		return nil, &SchemaError{Field: field, Reason: "is not an array"}
	}
	return arr, nil
}

// stringItems extracts the string elements of a model-supplied array,
// rendering non-string scalars best-effort instead of failing the run.
func stringItems(items []interface{}) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case float64, bool:
			out = append(out, fmt.Sprintf("%v", v))
		}
	}
	return out
}

func optionalString(entry map[string]interface{}, field string) string {
	if value, ok := entry[field].(string); ok {
		return value
	}
	return ""
}

// flexibleString accepts either a string or an array of strings; some
// models answer "potentialColors" as a list.
func flexibleString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}
