package models

// Answer is a synthesized response paired with the document it was drawn from.
// Like Question it is ephemeral.
type Answer struct {
	Source   string `json:"closest_document"`
	Text     string `json:"answer"`
	Language string `json:"-"`
}
