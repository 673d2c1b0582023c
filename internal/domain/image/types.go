package image

import "io"

// CapturedImage is the transient value representing a user-selected
// photo, normalized and ready for submission. Replaced wholesale on
// each new selection, never mutated.
type CapturedImage struct {
	URI    string `json:"uri,omitempty"`
	Base64 string `json:"-"`
	Bytes  []byte `json:"-"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"`
}

// Source describes where an image payload comes from. Exactly one of
// Reader, Inline or URL must be set.
type Source struct {
	Reader         io.Reader
	Inline         string // base64 payload, optionally with a data-URI prefix
	URL            string
	URI            string // caller-side resource handle, carried through for display
	DeclaredFormat string
}

// ValidationResult captures the outcome of payload validation.
type ValidationResult struct {
	IsValid  bool
	Format   string
	Width    int
	Height   int
	FileSize int64
	Error    error
	Risk     string
}
