package models

// Question is an incoming user question. It is ephemeral and never persisted.
type Question struct {
	Question string `json:"question"`
}
