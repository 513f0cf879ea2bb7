// Package llm provides the extraction chain that turns raw linter output
// into structured issues.
package llm

import "context"

// Issue is one structured diagnostic extracted by the model. The field names
// follow the JSON contract the model is prompted to produce.
type Issue struct {
	FileName    string `json:"file_name"`
	Description string `json:"full_issue_description"`
}

// Chain turns a document of raw diagnostic text into structured issues.
type Chain interface {
	Extract(ctx context.Context, doc string) ([]Issue, error)
}
