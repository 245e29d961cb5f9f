// Package prompt assembles the instruction sent to the backend for each
// document.
package prompt

import "fmt"

// Build embeds the cleaned document text and the schema's JSON text into a
// single instruction. Pure function of its inputs; the same document and
// schema always produce the same prompt.
func Build(text, schema string) string {
	return fmt.Sprintf("```%s```\n\nFor the given text, can you provide a JSON representation that strictly follows this schema:\n\n```%s```", text, schema)
}
