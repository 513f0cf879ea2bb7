package analyzer

import (
	"fmt"
	"strings"
)

// Finding is one error-severity diagnostic attributed to a file.
type Finding struct {
	FileName    string `json:"file_name"`
	Description string `json:"description"`
}

// Status reports how a run ended. A soft failure and a clean run with no
// findings both produce an empty findings list; Status is the only way to
// tell them apart.
type Status string

const (
	StatusOK      Status = "ok"
	StatusAborted Status = "aborted"
)

// Result is the output of one analysis run.
type Result struct {
	Findings []Finding `json:"findings"`
	Status   Status    `json:"status"`
}

// Legacy renders the findings as a single comma-joined string of
// "file_name: description" entries, the format older callers consume.
func (r *Result) Legacy() string {
	entries := make([]string, 0, len(r.Findings))
	for _, f := range r.Findings {
		entries = append(entries, fmt.Sprintf("%s: %s", f.FileName, f.Description))
	}
	return strings.Join(entries, ",")
}
