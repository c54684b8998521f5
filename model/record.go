package model

// Record is the content management system's representation of a published
// recipe. It is passed through to the client as-is, the service only relies
// on the identifier.
type Record struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes,omitempty"`
}
