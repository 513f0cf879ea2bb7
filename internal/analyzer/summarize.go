package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/lucasnoah/tfanalyzer/internal/llm"
)

// BuildDocument concatenates the rectified tool streams into one labeled
// document for the extraction chain. Each tool gets a section header, with
// its stdout before its stderr.
func BuildDocument(res ToolResults) string {
	var b strings.Builder
	b.WriteString("terraform validate output:\n")
	b.WriteString(res.Validate.Stdout)
	b.WriteString("\n")
	b.WriteString(res.Validate.Stderr)
	b.WriteString("\n\n")
	b.WriteString("tflint output:\n")
	b.WriteString(res.Lint.Stdout)
	b.WriteString("\n")
	b.WriteString(res.Lint.Stderr)
	return b.String()
}

// Summarizer condenses raw diagnostic text into structured findings via an
// extraction chain. The extraction rules (keep every detail, strip line
// numbers, drop warnings) are enforced by the chain's prompt, not by
// post-processing here.
type Summarizer struct {
	chain llm.Chain
}

// NewSummarizer creates a Summarizer backed by the given chain.
func NewSummarizer(chain llm.Chain) *Summarizer {
	return &Summarizer{chain: chain}
}

// Summarize submits the document and returns the findings in the order the
// chain emitted them. Errors are never swallowed: an unverifiable
// summarization must not be presented as "no issues found".
func (s *Summarizer) Summarize(ctx context.Context, doc string) ([]Finding, error) {
	issues, err := s.chain.Extract(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("summarize diagnostics: %w", err)
	}

	findings := make([]Finding, 0, len(issues))
	for _, issue := range issues {
		findings = append(findings, Finding{
			FileName:    issue.FileName,
			Description: issue.Description,
		})
	}
	return findings, nil
}
