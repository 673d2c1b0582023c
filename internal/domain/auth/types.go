package auth

import "fmt"

// User is the account record held by the hosted auth backend. The
// backend schema is opaque beyond these fields; unknown fields are
// ignored on decode.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Verified bool   `json:"verified"`
	Created  string `json:"created,omitempty"`
	Updated  string `json:"updated,omitempty"`
}

// Credentials are the fields collected from the sign-in form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration carries the sign-up form fields. The backend enforces
// that Password and PasswordConfirm match; we forward them untouched.
type Registration struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// BackendError is a non-2xx reply from the auth backend, surfaced
// with the backend's own message so the caller can show it verbatim.
type BackendError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("auth backend replied %d: %s", e.Status, e.Message)
}
