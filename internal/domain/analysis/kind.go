package analysis

import "fmt"

// Kind selects which analysis pipeline variant runs.
type Kind string

const (
	KindFace Kind = "face"
	KindBody Kind = "body"
)

// CaptureSpec is published to clients so their pickers use the same
// framing the instruction templates were written for.
type CaptureSpec struct {
	AspectWidth  int     `json:"aspect_width"`
	AspectHeight int     `json:"aspect_height"`
	Quality      float64 `json:"quality"`
}

// Profile bundles everything kind-specific: the fixed instruction
// templates, the client identification title, the capture framing and
// the response schema validation.
type Profile struct {
	Kind          Kind
	DisplayName   string
	ClientTitle   string
	SystemPrompt  string
	UserDirective string
	Capture       CaptureSpec
}

var profiles = map[Kind]Profile{
	KindFace: {
		Kind:          KindFace,
		DisplayName:   "GlamAI Face Analysis",
		ClientTitle:   "GlamAI Makeup Assistant",
		SystemPrompt:  faceSystemPrompt,
		UserDirective: faceUserDirective,
		Capture:       CaptureSpec{AspectWidth: 3, AspectHeight: 4, Quality: 0.8},
	},
	KindBody: {
		Kind:          KindBody,
		DisplayName:   "StyleSavvy Body Analysis",
		ClientTitle:   "StyleSavvy AI Assistant",
		SystemPrompt:  bodySystemPrompt,
		UserDirective: bodyUserDirective,
		Capture:       CaptureSpec{AspectWidth: 3, AspectHeight: 5, Quality: 0.8},
	},
}

// ProfileFor resolves the profile for a kind.
func ProfileFor(kind Kind) (Profile, error) {
	profile, ok := profiles[kind]
	if !ok {
		return Profile{}, fmt.Errorf("unknown analysis kind: %s", kind)
	}
	return profile, nil
}

// ParseKind validates a kind supplied over the wire.
func ParseKind(raw string) (Kind, error) {
	kind := Kind(raw)
	if _, ok := profiles[kind]; !ok {
		return "", fmt.Errorf("unknown analysis kind: %s", raw)
	}
	return kind, nil
}

// Kinds lists the supported analysis kinds.
func Kinds() []Kind {
	return []Kind{KindFace, KindBody}
}
