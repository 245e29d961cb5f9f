// Package models defines data structures shared across the extraction pipeline.
package models

// Document is one unit of input text. Documents are read once at startup
// and never mutated afterwards.
type Document struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// ExchangeResult is the persisted record of one document's trip through the
// backend: the prompt that was sent, the raw reply, and the parsed JSON
// payload (nil when the backend refused or the reply could not be parsed).
type ExchangeResult struct {
	ID       int64  `json:"id"`
	Text     string `json:"text"`
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
	Data     any    `json:"data"`
}
