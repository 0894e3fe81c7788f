package types

// Identity is the caller resolved from a bearer token by the identity provider.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
}
