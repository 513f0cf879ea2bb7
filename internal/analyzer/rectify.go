package analyzer

import "strings"

// Rectify replaces every renamed file name in text with its original name.
// With an empty mapping the text passes through unchanged.
func Rectify(text string, renames map[string]string) string {
	if text == "" || len(renames) == 0 {
		return text
	}
	for newName, origName := range renames {
		text = strings.ReplaceAll(text, newName, origName)
	}
	return text
}

// Rectified returns a copy of the tool results with all four streams passed
// through Rectify.
func (r ToolResults) Rectified(renames map[string]string) ToolResults {
	r.Validate.Stdout = Rectify(r.Validate.Stdout, renames)
	r.Validate.Stderr = Rectify(r.Validate.Stderr, renames)
	r.Lint.Stdout = Rectify(r.Lint.Stdout, renames)
	r.Lint.Stderr = Rectify(r.Lint.Stderr, renames)
	return r
}
